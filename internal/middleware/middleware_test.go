package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/config"
	"github.com/iliyamo/venue-box-office/internal/utils"
)

func serve(t *testing.T, h echo.HandlerFunc, authHeader string, mw ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/p", h, mw...)
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken("k", 9, "sam", role, 5, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok.Token
}

func TestJWTAuthSetsIdentity(t *testing.T) {
	var got Identity
	h := func(c echo.Context) error {
		got, _ = CurrentUser(c)
		return c.NoContent(http.StatusNoContent)
	}
	rec := serve(t, h, bearer(t, "STAFF"), JWTAuth("k"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	if got.ID != 9 || got.Username != "sam" || got.Role != "STAFF" || got.Owner() != "9" {
		t.Fatalf("identity = %+v", got)
	}
}

func TestJWTAuthRejects(t *testing.T) {
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	for name, header := range map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"bad token":    "Bearer nope",
		"wrong secret": bearer(t, "STAFF") + "x",
	} {
		if rec := serve(t, ok, header, JWTAuth("k")); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d", name, rec.Code)
		}
	}
}

func TestRequireRole(t *testing.T) {
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	guard := []echo.MiddlewareFunc{JWTAuth("k"), RequireRole("MANAGER", "DEPUTY")}
	if rec := serve(t, ok, bearer(t, "DEPUTY"), guard...); rec.Code != http.StatusNoContent {
		t.Errorf("deputy: status = %d", rec.Code)
	}
	if rec := serve(t, ok, bearer(t, "STAFF"), guard...); rec.Code != http.StatusForbidden {
		t.Errorf("staff: status = %d", rec.Code)
	}
	if rec := serve(t, ok, "", RequireRole("MANAGER")); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d", rec.Code)
	}
}

func TestRateLimitPassThroughWithoutRedis(t *testing.T) {
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	cfg := config.RateLimitConfig{Enabled: true, Limit: 1, Window: time.Minute, Prefix: "rl"}
	log := logrus.New()
	for i := 0; i < 3; i++ {
		if rec := serve(t, ok, "", RateLimit(cfg, nil, log)); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
}

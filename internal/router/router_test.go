package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/booking"
	"github.com/iliyamo/venue-box-office/internal/config"
	"github.com/iliyamo/venue-box-office/internal/discount"
	"github.com/iliyamo/venue-box-office/internal/handler"
	"github.com/iliyamo/venue-box-office/internal/inventory"
	"github.com/iliyamo/venue-box-office/internal/memstore"
	"github.com/iliyamo/venue-box-office/internal/model"
	"github.com/iliyamo/venue-box-office/internal/refund"
	"github.com/iliyamo/venue-box-office/internal/router"
	"github.com/iliyamo/venue-box-office/internal/session"
	"github.com/iliyamo/venue-box-office/internal/utils"
)

const secret = "test-secret"

var day = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

type app struct {
	e     *echo.Echo
	store *memstore.Store
}

func newApp(t *testing.T) *app {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	ev := model.Event{ID: "EVT002", Name: "Event B", Type: "Conference", Price: decimal.RequireFromString("75.50"), HallType: model.SmallHall, Date: day, Time: "14:00"}
	store := memstore.New(ev)
	for _, u := range []struct{ name, role string }{{"sam", model.RoleStaff}, {"max", model.RoleManager}} {
		hash, err := utils.HashPassword("pw", 4)
		if err != nil {
			t.Fatal(err)
		}
		store.AddUser(model.User{Username: u.name, PasswordHash: hash, Role: u.role, IsActive: true})
	}
	store.AddUser(model.User{Username: "old", PasswordHash: "x", Role: model.RoleStaff})
	store.AddFriend(model.Friend{ID: 7, Name: "Zoe Hart", Email: "zoe@lancaster.test"})
	store.AddFriend(model.Friend{ID: 3, Name: "Alan Pike", Email: "alan@lancaster.test", Phone: "01524 000111"})

	inv := inventory.New(store, log)
	resolver := discount.NewResolver(store, log)
	sessions := session.NewManager(resolver, log)
	t.Cleanup(sessions.Shutdown)
	committer := booking.NewCommitter(store, log)

	e := echo.New()
	router.RegisterRoutes(e, router.Deps{
		Auth:      handler.NewAuthHandler(config.Config{JWTSecret: secret, AccessTTLMin: 5}, store, log),
		Events:    handler.NewEventHandler(store, inv, log),
		Sessions:  handler.NewSessionHandler(sessions, store, inv, committer, log),
		Discounts: handler.NewDiscountHandler(resolver, log),
		Tickets:   handler.NewTicketHandler(store, refund.NewService(store, nil, log), log),
		Friends:   handler.NewFriendHandler(store, log),
		JWTSecret: secret,
		Log:       log,
	})
	return &app{e: e, store: store}
}

func (a *app) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *app) login(t *testing.T, user string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{"username": user, "password": "pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", user, rec.Code, rec.Body)
	}
	var out struct {
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
	}
	decode(t, rec, &out)
	return out.Access.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body, err)
	}
}

func expect(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, code, rec.Body)
	}
}

func TestHealthAndLogin(t *testing.T) {
	a := newApp(t)
	expect(t, a.do(t, http.MethodGet, "/healthz", "", nil), http.StatusOK)
	expect(t, a.do(t, http.MethodGet, "/readyz", "", nil), http.StatusOK)

	expect(t, a.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{"username": "sam", "password": "nope"}), http.StatusUnauthorized)
	expect(t, a.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{"username": "ghost", "password": "pw"}), http.StatusUnauthorized)
	expect(t, a.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{"username": "old", "password": "pw"}), http.StatusUnauthorized)
	expect(t, a.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{"username": "sam"}), http.StatusBadRequest)

	tok := a.login(t, "sam")
	rec := a.do(t, http.MethodGet, "/v1/me", tok, nil)
	expect(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"username":"sam"`) {
		t.Fatalf("me = %s", rec.Body)
	}
	expect(t, a.do(t, http.MethodGet, "/v1/events", "", nil), http.StatusUnauthorized)
}

func TestEventsAndSeating(t *testing.T) {
	a := newApp(t)
	tok := a.login(t, "sam")

	rec := a.do(t, http.MethodGet, "/v1/events", tok, nil)
	expect(t, rec, http.StatusOK)
	var list struct {
		Items []struct {
			ID    string `json:"id"`
			Date  string `json:"date"`
			Price string `json:"price"`
		} `json:"items"`
	}
	decode(t, rec, &list)
	if len(list.Items) != 1 || list.Items[0].ID != "EVT002" || list.Items[0].Date != "2025-06-01" || list.Items[0].Price != "75.50" {
		t.Fatalf("events = %+v", list.Items)
	}

	var seating struct {
		Hall      string `json:"hall"`
		Pricing   string `json:"pricing"`
		Capacity  int    `json:"capacity"`
		Available int    `json:"available"`
		Seats     []struct {
			ID    string `json:"id"`
			Price string `json:"price"`
		} `json:"seats"`
	}
	rec = a.do(t, http.MethodGet, "/v1/events/EVT002/seating", tok, nil)
	expect(t, rec, http.StatusOK)
	decode(t, rec, &seating)
	if seating.Pricing != "flat" || seating.Capacity == 0 || seating.Available != seating.Capacity || len(seating.Seats) != seating.Capacity {
		t.Fatalf("seating = %+v", seating)
	}
	for _, s := range seating.Seats {
		if s.Price != "75.50" {
			t.Fatalf("flat price of %s = %s", s.ID, s.Price)
		}
	}

	expect(t, a.do(t, http.MethodGet, "/v1/events/EVT002/seating?pricing=tiered", tok, nil), http.StatusOK)
	expect(t, a.do(t, http.MethodGet, "/v1/events/EVT002/seating?pricing=bogus", tok, nil), http.StatusBadRequest)
	expect(t, a.do(t, http.MethodGet, "/v1/events/EVT999/seating", tok, nil), http.StatusNotFound)
}

type sessionResp struct {
	ID       string   `json:"id"`
	Status   string   `json:"status"`
	Selected []string `json:"selected"`
	Subtotal string   `json:"subtotal"`
	Final    string   `json:"final"`
	Checkout bool     `json:"checkout"`
}

func TestBookingAndRefundFlow(t *testing.T) {
	a := newApp(t)
	staff := a.login(t, "sam")

	rec := a.do(t, http.MethodPost, "/v1/sessions", staff, map[string]any{"event_id": "EVT002", "quantity": 2})
	expect(t, rec, http.StatusCreated)
	var sess sessionResp
	decode(t, rec, &sess)
	base := "/v1/sessions/" + sess.ID

	// another staff member cannot see the session
	manager := a.login(t, "max")
	expect(t, a.do(t, http.MethodGet, base, manager, nil), http.StatusNotFound)

	expect(t, a.do(t, http.MethodPost, base+"/seats/F5", staff, nil), http.StatusOK)
	expect(t, a.do(t, http.MethodPost, base+"/seats/F6", staff, nil), http.StatusOK)
	expect(t, a.do(t, http.MethodPost, base+"/seats/F7", staff, nil), http.StatusConflict)
	expect(t, a.do(t, http.MethodPost, base+"/seats/Z99", staff, nil), http.StatusConflict)
	expect(t, a.do(t, http.MethodPost, base+"/seats/5F", staff, nil), http.StatusBadRequest)

	rec = a.do(t, http.MethodPost, base+"/discount", staff, map[string]string{"code": "NOPE"})
	expect(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"warning"`) {
		t.Fatalf("discount = %s", rec.Body)
	}

	rec = a.do(t, http.MethodPost, base+"/proceed", staff, nil)
	expect(t, rec, http.StatusOK)
	decode(t, rec, &sess)
	if !sess.Checkout || sess.Subtotal != "151.00" {
		t.Fatalf("after proceed = %+v", sess)
	}
	expect(t, a.do(t, http.MethodPost, base+"/seats/F5", staff, nil), http.StatusConflict)

	expect(t, a.do(t, http.MethodPost, base+"/commit", staff, map[string]string{"name": "Kim", "email": "kim@", "phone": "07700 900123"}), http.StatusBadRequest)

	rec = a.do(t, http.MethodPost, base+"/commit", staff, map[string]string{"name": "Kim", "email": "kim@example.com", "phone": "07700 900123"})
	expect(t, rec, http.StatusCreated)
	var booked struct {
		TicketID string   `json:"ticket_id"`
		Seats    []string `json:"seats"`
		Total    string   `json:"total"`
	}
	decode(t, rec, &booked)
	if booked.Total != "151.00" || len(booked.Seats) != 2 {
		t.Fatalf("booking = %+v", booked)
	}

	rec = a.do(t, http.MethodGet, base, staff, nil)
	expect(t, rec, http.StatusOK)
	decode(t, rec, &sess)
	if sess.Status != session.StatusCommitted.String() {
		t.Fatalf("status = %s", sess.Status)
	}

	rec = a.do(t, http.MethodGet, "/v1/events/EVT002/seating", staff, nil)
	expect(t, rec, http.StatusOK)
	var seating struct {
		Seats []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"seats"`
	}
	decode(t, rec, &seating)
	nBooked := 0
	for _, s := range seating.Seats {
		if s.Status == string(session.SeatBooked) {
			nBooked++
			if s.ID != "F5" && s.ID != "F6" {
				t.Fatalf("unexpected booked seat %s", s.ID)
			}
		}
	}
	if nBooked != 2 {
		t.Fatalf("booked seats = %d", nBooked)
	}

	rec = a.do(t, http.MethodGet, "/v1/tickets/"+booked.TicketID+"/receipt", staff, nil)
	expect(t, rec, http.StatusOK)
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/pdf" || !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("receipt content type %q", ct)
	}

	body := map[string]string{"reason": refund.ReasonUnableToAttend}
	expect(t, a.do(t, http.MethodDelete, "/v1/tickets/"+booked.TicketID, staff, body), http.StatusForbidden)
	expect(t, a.do(t, http.MethodDelete, "/v1/tickets/"+booked.TicketID, manager, map[string]string{"reason": "bored"}), http.StatusBadRequest)
	expect(t, a.do(t, http.MethodDelete, "/v1/tickets/"+booked.TicketID, manager, body), http.StatusOK)
	expect(t, a.do(t, http.MethodGet, "/v1/tickets/"+booked.TicketID, manager, nil), http.StatusNotFound)
	if n := len(a.store.BookedSeatRows()); n != 0 {
		t.Fatalf("%d booked seats left", n)
	}
}

func TestSessionShowingAndCancel(t *testing.T) {
	a := newApp(t)
	tok := a.login(t, "sam")

	expect(t, a.do(t, http.MethodPost, "/v1/sessions", tok, map[string]any{"event_id": "EVT002", "date": "2025-06-02", "quantity": 1}), http.StatusBadRequest)
	expect(t, a.do(t, http.MethodPost, "/v1/sessions", tok, map[string]any{"event_id": "EVT002", "time": "19:00", "quantity": 1}), http.StatusBadRequest)
	expect(t, a.do(t, http.MethodPost, "/v1/sessions", tok, map[string]any{"event_id": "EVT002", "quantity": 0}), http.StatusBadRequest)
	expect(t, a.do(t, http.MethodPost, "/v1/sessions", tok, map[string]any{"event_id": "EVT404", "quantity": 1}), http.StatusNotFound)

	rec := a.do(t, http.MethodPost, "/v1/sessions", tok, map[string]any{"event_id": "EVT002", "date": "2025-06-01", "time": "14:00", "quantity": 1})
	expect(t, rec, http.StatusCreated)
	var sess sessionResp
	decode(t, rec, &sess)
	base := "/v1/sessions/" + sess.ID

	expect(t, a.do(t, http.MethodPost, base+"/seats/A1", tok, nil), http.StatusOK)
	rec = a.do(t, http.MethodPut, base+"/options", tok, map[string]any{"quantity": 3})
	expect(t, rec, http.StatusOK)
	decode(t, rec, &sess)
	if len(sess.Selected) != 0 {
		t.Fatalf("selection kept after quantity change: %v", sess.Selected)
	}
	expect(t, a.do(t, http.MethodPost, base+"/proceed", tok, nil), http.StatusBadRequest)

	expect(t, a.do(t, http.MethodPut, base+"/showing", tok, map[string]any{"event_id": "EVT002"}), http.StatusOK)
	expect(t, a.do(t, http.MethodDelete, base, tok, nil), http.StatusNoContent)
	expect(t, a.do(t, http.MethodGet, base, tok, nil), http.StatusNotFound)
}

func TestDiscountGeneration(t *testing.T) {
	a := newApp(t)
	staff, manager := a.login(t, "sam"), a.login(t, "max")

	rec := a.do(t, http.MethodGet, "/v1/discounts/reasons", staff, nil)
	expect(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "NHS Personnel") {
		t.Fatalf("reasons = %s", rec.Body)
	}

	expect(t, a.do(t, http.MethodPost, "/v1/discounts", staff, map[string]string{"reason": "Student"}), http.StatusForbidden)
	expect(t, a.do(t, http.MethodPost, "/v1/discounts", manager, map[string]string{"reason": "Pensioner"}), http.StatusBadRequest)

	rec = a.do(t, http.MethodPost, "/v1/discounts", manager, map[string]string{"reason": "Student"})
	expect(t, rec, http.StatusCreated)
	var d struct {
		Code       string `json:"code"`
		Percentage int    `json:"percentage"`
	}
	decode(t, rec, &d)
	if d.Percentage != 10 || !strings.HasPrefix(d.Code, "STU-10-") {
		t.Fatalf("discount = %+v", d)
	}

	rec = a.do(t, http.MethodPost, "/v1/sessions", staff, map[string]any{"event_id": "EVT002", "quantity": 2})
	expect(t, rec, http.StatusCreated)
	var sess sessionResp
	decode(t, rec, &sess)
	base := "/v1/sessions/" + sess.ID
	expect(t, a.do(t, http.MethodPost, base+"/seats/B1", staff, nil), http.StatusOK)
	expect(t, a.do(t, http.MethodPost, base+"/seats/B2", staff, nil), http.StatusOK)
	rec = a.do(t, http.MethodPost, base+"/discount", staff, map[string]string{"code": d.Code})
	expect(t, rec, http.StatusOK)
	var out struct {
		Session sessionResp `json:"session"`
	}
	decode(t, rec, &out)
	if out.Session.Final != "135.90" {
		t.Fatalf("final = %s", out.Session.Final)
	}
}

func TestFriendsListForManagersOnly(t *testing.T) {
	a := newApp(t)
	staff, manager := a.login(t, "sam"), a.login(t, "max")

	expect(t, a.do(t, http.MethodGet, "/v1/friends", staff, nil), http.StatusForbidden)
	expect(t, a.do(t, http.MethodGet, "/v1/friends/3", staff, nil), http.StatusForbidden)

	rec := a.do(t, http.MethodGet, "/v1/friends", manager, nil)
	expect(t, rec, http.StatusOK)
	var list struct {
		Items []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"items"`
		Count int `json:"count"`
	}
	decode(t, rec, &list)
	if list.Count != 2 || len(list.Items) != 2 || list.Items[0].Name != "Alan Pike" || list.Items[1].ID != 7 {
		t.Fatalf("friends = %+v", list)
	}

	rec = a.do(t, http.MethodGet, "/v1/friends/3", manager, nil)
	expect(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"phone":"01524 000111"`) {
		t.Fatalf("friend = %s", rec.Body)
	}
	expect(t, a.do(t, http.MethodGet, "/v1/friends/99", manager, nil), http.StatusNotFound)
	expect(t, a.do(t, http.MethodGet, "/v1/friends/abc", manager, nil), http.StatusBadRequest)
}

package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/discount"
	"github.com/iliyamo/venue-box-office/internal/middleware"
)

// DiscountHandler lists discount reasons and generates codes.
type DiscountHandler struct {
	Resolver *discount.Resolver
	Log      logrus.FieldLogger
}

func NewDiscountHandler(r *discount.Resolver, log logrus.FieldLogger) *DiscountHandler {
	return &DiscountHandler{Resolver: r, Log: log.WithField("component", "http")}
}

type generateReq struct {
	Reason string `json:"reason"`
}

// Reasons handles GET /v1/discounts/reasons.
func (h *DiscountHandler) Reasons(c echo.Context) error {
	rs := discount.Reasons()
	out := make([]discountView, 0, len(rs))
	for _, r := range rs {
		out = append(out, discountView{Percentage: r.Percentage, Reason: r.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Generate handles POST /v1/discounts.  Managers and deputies only.
func (h *DiscountHandler) Generate(c echo.Context) error {
	var req generateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	d, err := h.Resolver.Generate(ctx, req.Reason)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if u, ok := middleware.CurrentUser(c); ok {
		h.Log.WithFields(logrus.Fields{"code": d.Code, "by": u.Username}).Info("discount issued")
	}
	return c.JSON(http.StatusCreated, discountView{Code: d.Code, Percentage: d.Percentage, Reason: d.Reason})
}

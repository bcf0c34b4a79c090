package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/model"
)

// FriendSource reads the Friends of Lancaster membership list.
type FriendSource interface {
	ListFriends(ctx context.Context) ([]model.Friend, error)
	GetFriend(ctx context.Context, id int) (model.Friend, error)
}

// FriendHandler lists supporters programme members for managers.
type FriendHandler struct {
	Friends FriendSource
	Log     logrus.FieldLogger
}

func NewFriendHandler(f FriendSource, log logrus.FieldLogger) *FriendHandler {
	return &FriendHandler{Friends: f, Log: log.WithField("component", "http")}
}

type friendView struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

func newFriendView(f model.Friend) friendView {
	return friendView{ID: f.ID, Name: f.Name, Email: f.Email, Phone: f.Phone}
}

// List handles GET /v1/friends.
func (h *FriendHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	fs, err := h.Friends.ListFriends(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make([]friendView, 0, len(fs))
	for _, f := range fs {
		out = append(out, newFriendView(f))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out, "count": len(out)})
}

// Get handles GET /v1/friends/:id.
func (h *FriendHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid friend id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	f, err := h.Friends.GetFriend(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newFriendView(f))
}

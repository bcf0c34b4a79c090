package handler // handler defines the HTTP handlers of the box office API

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/booking"
	"github.com/iliyamo/venue-box-office/internal/discount"
	"github.com/iliyamo/venue-box-office/internal/inventory"
	"github.com/iliyamo/venue-box-office/internal/refund"
	"github.com/iliyamo/venue-box-office/internal/repository"
	"github.com/iliyamo/venue-box-office/internal/session"
)

// selection-rule errors answered with 409
var selectionErrors = []error{
	session.ErrSelectionLimitExceeded,
	session.ErrNoCompanionSeatAvailable,
	session.ErrUnknownSeat,
	session.ErrSeatUnavailable,
	session.ErrSeatBlocked,
	session.ErrSelectionLocked,
	session.ErrCommitInProgress,
	session.ErrClosed,
}

var notFoundErrors = []error{
	session.ErrSessionNotFound,
	repository.ErrEventNotFound,
	repository.ErrTicketNotFound,
	repository.ErrFriendNotFound,
	discount.ErrNotFound,
}

var badRequestErrors = []error{
	discount.ErrUnknownReason,
	refund.ErrEmptyTicketID,
	inventory.ErrUnknownHall,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// fail writes the JSON error response for err.  Transactional and
// unexpected errors are logged and answered with a generic message.
func fail(c echo.Context, log logrus.FieldLogger, err error) error {
	var ve *session.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error(), "field": ve.Field})
	}
	var conflict *booking.SeatConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, echo.Map{"error": conflict.Error(), "seats": conflict.Seats})
	}
	switch {
	case errors.Is(err, session.ErrAlreadyExpired):
		return c.JSON(http.StatusGone, echo.Map{"error": err.Error()})
	case isAny(err, selectionErrors):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case isAny(err, notFoundErrors):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case isAny(err, badRequestErrors):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var aborted *booking.TransactionAbortedError
	entry := log.WithError(err).WithFields(logrus.Fields{"method": c.Request().Method, "path": c.Path()})
	if errors.As(err, &aborted) {
		entry.Error("booking transaction aborted")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking could not be completed"})
	}
	entry.Error("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

package handler

import (
	"github.com/iliyamo/venue-box-office/internal/inventory"
	"github.com/iliyamo/venue-box-office/internal/model"
	"github.com/iliyamo/venue-box-office/internal/session"
)

// ----- DTOs -----

type eventView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Price         string `json:"price"`
	Hall          string `json:"hall"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	TicketRevenue string `json:"ticket_revenue"`
	TicketNumbers int    `json:"ticket_numbers"`
}

func newEventView(ev model.Event) eventView {
	return eventView{
		ID:            ev.ID,
		Name:          ev.Name,
		Type:          ev.Type,
		Price:         ev.Price.StringFixed(2),
		Hall:          ev.HallType,
		Date:          ev.Date.Format(dateLayout),
		Time:          ev.Time,
		TicketRevenue: ev.TicketRevenue.StringFixed(2),
		TicketNumbers: ev.TicketNumbers,
	}
}

type seatView struct {
	ID         model.SeatID       `json:"id"`
	Row        string             `json:"row"`
	Number     int                `json:"number"`
	Section    string             `json:"section"`
	Wheelchair bool               `json:"wheelchair_accessible"`
	VIP        bool               `json:"vip"`
	Restricted bool               `json:"restricted_view"`
	Price      string             `json:"price"`
	Status     session.SeatStatus `json:"status"`
}

type discountView struct {
	Code       string `json:"code,omitempty"`
	Percentage int    `json:"percentage"`
	Reason     string `json:"reason,omitempty"`
}

type sessionView struct {
	ID               string                        `json:"id"`
	Status           session.Status                `json:"status"`
	EventID          string                        `json:"event_id"`
	EventName        string                        `json:"event_name"`
	Hall             string                        `json:"hall"`
	Date             string                        `json:"date"`
	Time             string                        `json:"time"`
	Quantity         int                           `json:"quantity"`
	Wheelchair       bool                          `json:"wheelchair"`
	Checkout         bool                          `json:"checkout"`
	RemainingSeconds int                           `json:"remaining_seconds"`
	Selected         []model.SeatID                `json:"selected"`
	Blocked          map[model.SeatID]model.SeatID `json:"blocked"`
	Subtotal         string                        `json:"subtotal"`
	Discount         discountView                  `json:"discount"`
	Final            string                        `json:"final"`
	Degraded         bool                          `json:"degraded,omitempty"`
	Warning          string                        `json:"warning,omitempty"`
	Seats            []seatView                    `json:"seats,omitempty"`
}

func newSessionView(st session.State, withSeats bool) sessionView {
	v := sessionView{
		ID:               st.ID,
		Status:           st.Status,
		EventID:          st.Showing.EventID,
		EventName:        st.Event.Name,
		Hall:             inventory.NormalizeHall(st.Event.HallType),
		Date:             st.Showing.Date.Format(dateLayout),
		Time:             st.Showing.Time,
		Quantity:         st.Quantity,
		Wheelchair:       st.Wheelchair,
		Checkout:         st.Checkout,
		RemainingSeconds: st.RemainingSeconds,
		Selected:         st.Selected,
		Blocked:          st.Blocked,
		Subtotal:         st.Subtotal.StringFixed(2),
		Discount:         discountView{Code: st.Discount.Code, Percentage: st.Discount.Percentage, Reason: st.Discount.Reason},
		Final:            st.Final.StringFixed(2),
		Degraded:         st.Degraded,
		Warning:          st.Warning,
	}
	if v.Selected == nil {
		v.Selected = []model.SeatID{}
	}
	if withSeats {
		v.Seats = make([]seatView, len(st.Seats))
		for i, s := range st.Seats {
			v.Seats[i] = seatView{
				ID:         s.ID,
				Row:        s.Row,
				Number:     s.Number,
				Section:    s.Section,
				Wheelchair: s.WheelchairAccessible,
				VIP:        s.VIP,
				Restricted: s.RestrictedView,
				Price:      s.Price.StringFixed(2),
				Status:     s.Status,
			}
		}
	}
	return v
}

package booking

import (
	"regexp"
	"strings"

	"github.com/iliyamo/venue-box-office/internal/model"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)

// CustomerInfo is what the counter collects before committing a booking.
// CustomerID is optional; a new id is generated for unknown customers.
type CustomerInfo struct {
	CustomerID  string `json:"customer_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	OptIn       bool   `json:"opt_in"`
	PaymentType string `json:"payment_type"`
	Gender      string `json:"gender"`
	PostalCode  string `json:"postal_code"`
}

// Normalize trims every field and lower-cases the email.
func (c CustomerInfo) Normalize() CustomerInfo {
	c.CustomerID = strings.TrimSpace(c.CustomerID)
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.PaymentType = strings.TrimSpace(c.PaymentType)
	c.Gender = strings.TrimSpace(c.Gender)
	c.PostalCode = strings.TrimSpace(c.PostalCode)
	return c
}

// Validate checks the required fields.
func (c CustomerInfo) Validate() error {
	c = c.Normalize()
	switch {
	case c.Name == "":
		return &ValidationError{Field: "name", Reason: "required"}
	case !strings.Contains(c.Email, "@"):
		return &ValidationError{Field: "email", Reason: "must contain @"}
	case c.Phone == "":
		return &ValidationError{Field: "phone", Reason: "required"}
	case !phonePattern.MatchString(c.Phone):
		return &ValidationError{Field: "phone", Reason: "digits, spaces, ( ) - and a leading + only"}
	}
	return nil
}

func (c CustomerInfo) record(id string) model.Customer {
	return model.Customer{
		ID:          id,
		Name:        c.Name,
		OptIn:       c.OptIn,
		PaymentType: c.PaymentType,
		Gender:      c.Gender,
		PostalCode:  c.PostalCode,
		Email:       c.Email,
		Phone:       c.Phone,
	}
}

// Package model defines the core domain types for the reservation system.
package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar day (UTC midnight) that marshals as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its UTC calendar day.
func NewDate(t time.Time) Date {
	t = t.UTC()
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON renders the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON accepts a quoted YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Booking is a persisted reservation tied to a unique calendar date.
type Booking struct {
	ID          int       `json:"id"`
	Service     string    `json:"service"`
	BookingDate Date      `json:"booking_date"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReservationRequest is the payload posted by the reservation form.
// Field names match the public site; the form serializes every value as a
// string, including the party size.
type ReservationRequest struct {
	Service   string `json:"service"`
	Date      string `json:"date"`
	Personnes string `json:"personnes"`
	Nom       string `json:"nom"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
	Message   string `json:"message"`
}

// LoginRequest is the payload for the admin login endpoint.
type LoginRequest struct {
	Password string `json:"password"`
}

// AdminRequest carries the shared secret re-sent on every admin call.
type AdminRequest struct {
	Password string `json:"password"`
}

// DeleteBookingRequest identifies a booking to cancel. The admin page sends
// the id as a string.
type DeleteBookingRequest struct {
	Password string `json:"password"`
	ID       string `json:"id"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

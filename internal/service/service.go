// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asiacuisine/reservation-api/internal/clock"
	"github.com/asiacuisine/reservation-api/internal/model"
	"github.com/asiacuisine/reservation-api/internal/notify"
	"github.com/asiacuisine/reservation-api/internal/repository"
	"github.com/asiacuisine/reservation-api/internal/schedule"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ErrUnauthorized is returned when the admin credential is wrong.
var ErrUnauthorized = errors.New("mot de passe incorrect")

// ValidationError reports a rejected reservation request. Nothing is
// persisted when one is returned.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func missingField(field string) *ValidationError {
	return &ValidationError{
		Field: field,
		Msg:   fmt.Sprintf("Les champs obligatoires doivent être remplis (champ manquant : %s).", field),
	}
}

// BookingStore is the persistence surface the services depend on.
type BookingStore interface {
	Insert(ctx context.Context, b model.Booking) (model.Booking, error)
	ListBookedDates(ctx context.Context) ([]time.Time, error)
	ListAll(ctx context.Context) ([]model.Booking, error)
	Delete(ctx context.Context, id int) error
}

// ─── Availability ─────────────────────────────────────────────────────────────

// AvailabilityService exposes the set of dates the booking form must block.
type AvailabilityService struct {
	store BookingStore
	clock clock.Clock
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(store BookingStore, clk clock.Clock) *AvailabilityService {
	return &AvailabilityService{store: store, clock: clk}
}

// UnavailableDates returns the union of already-booked dates and the weekly
// closure dates over the next 90 days, deduplicated, as YYYY-MM-DD strings.
// A missing bookings table (first deployment) is not an error: the closure
// dates alone are returned.
func (s *AvailabilityService) UnavailableDates(ctx context.Context) ([]string, error) {
	booked, err := s.store.ListBookedDates(ctx)
	if err != nil && !errors.Is(err, repository.ErrTableMissing) {
		return nil, fmt.Errorf("list booked dates: %w", err)
	}

	seen := make(map[string]struct{})
	dates := make([]string, 0, len(booked))
	add := func(t time.Time) {
		key := model.NewDate(t).String()
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		dates = append(dates, key)
	}

	for _, d := range booked {
		add(d)
	}
	for _, d := range schedule.ClosedDates(s.clock.Now(), schedule.HorizonDays, schedule.DefaultClosedWeekdays) {
		add(d)
	}
	return dates, nil
}

// ─── Booking ──────────────────────────────────────────────────────────────────

// BookingService validates and persists reservation requests.
type BookingService struct {
	store  BookingStore
	mailer notify.Mailer
	logger *zap.Logger
}

// NewBookingService constructs a BookingService.
func NewBookingService(store BookingStore, mailer notify.Mailer, logger *zap.Logger) *BookingService {
	return &BookingService{store: store, mailer: mailer, logger: logger}
}

// Submit validates the request, persists the booking, and dispatches the
// notification emails in the background. Ordering is deliberate: persistence
// first, mail best-effort second. A mail failure never fails the booking —
// the row is already committed and the caller is told so.
func (s *BookingService) Submit(ctx context.Context, req model.ReservationRequest) (model.Booking, error) {
	req.Service = strings.TrimSpace(req.Service)
	req.Date = strings.TrimSpace(req.Date)
	req.Nom = strings.TrimSpace(req.Nom)
	req.Email = strings.TrimSpace(req.Email)

	switch {
	case req.Service == "":
		return model.Booking{}, missingField("service")
	case req.Date == "":
		return model.Booking{}, missingField("date")
	case req.Nom == "":
		return model.Booking{}, missingField("nom")
	case req.Email == "":
		return model.Booking{}, missingField("email")
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		return model.Booking{}, &ValidationError{Field: "date", Msg: "La date demandée est invalide."}
	}

	booking := model.Booking{
		Service:     req.Service,
		BookingDate: date,
		Name:        req.Nom,
		Email:       req.Email,
		Phone:       strings.TrimSpace(req.Telephone),
		Message:     strings.TrimSpace(req.Message),
	}

	created, err := s.store.Insert(ctx, booking)
	if err != nil {
		if errors.Is(err, repository.ErrDateTaken) {
			return model.Booking{}, repository.ErrDateTaken
		}
		return model.Booking{}, fmt.Errorf("persist booking: %w", err)
	}

	// The response must not wait on mail delivery.
	go func() {
		mailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		if err := s.mailer.BookingReceived(mailCtx, created, req.Personnes); err != nil {
			s.logger.Error("booking notification failed",
				zap.Int("booking_id", created.ID),
				zap.Error(err),
			)
		}
	}()

	return created, nil
}

// ─── Admin ────────────────────────────────────────────────────────────────────

const tokenTTL = 12 * time.Hour

// AdminService gates read/delete access to bookings behind the shared admin
// secret. Every call re-validates the credential; no session state is held.
type AdminService struct {
	store    BookingStore
	password string
	secret   []byte
	clock    clock.Clock
}

// NewAdminService constructs an AdminService. jwtSecret may be empty, in
// which case login does not issue tokens and only the password is accepted.
func NewAdminService(store BookingStore, password, jwtSecret string, clk clock.Clock) *AdminService {
	return &AdminService{
		store:    store,
		password: password,
		secret:   []byte(jwtSecret),
		clock:    clk,
	}
}

// Login checks the password and, when a signing secret is configured,
// returns a short-lived token the admin page can use instead of re-sending
// the password.
func (s *AdminService) Login(password string) (string, error) {
	if !s.passwordMatches(password) {
		return "", ErrUnauthorized
	}
	if len(s.secret) == 0 {
		return "", nil
	}

	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// ListBookings returns all bookings, newest booking date first.
func (s *AdminService) ListBookings(ctx context.Context, password, token string) ([]model.Booking, error) {
	if err := s.authorize(password, token); err != nil {
		return nil, err
	}
	bookings, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// DeleteBooking cancels the booking with the given id.
func (s *AdminService) DeleteBooking(ctx context.Context, password, token string, id int) error {
	if err := s.authorize(password, token); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}

func (s *AdminService) authorize(password, token string) error {
	if s.passwordMatches(password) || s.tokenValid(token) {
		return nil
	}
	return ErrUnauthorized
}

func (s *AdminService) passwordMatches(password string) bool {
	if password == "" || s.password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
}

func (s *AdminService) tokenValid(token string) bool {
	if token == "" || len(s.secret) == 0 {
		return false
	}
	parsed, err := jwt.Parse(token,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(s.clock.Now),
	)
	return err == nil && parsed.Valid
}

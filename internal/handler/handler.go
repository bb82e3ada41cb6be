// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/asiacuisine/reservation-api/internal/model"
	"github.com/asiacuisine/reservation-api/internal/repository"
	"github.com/asiacuisine/reservation-api/internal/service"
)

// The handlers depend on narrow service interfaces so tests can stub them.

// AvailabilityService is the read projection behind the booking calendar.
type AvailabilityService interface {
	UnavailableDates(ctx context.Context) ([]string, error)
}

// BookingService accepts reservation submissions.
type BookingService interface {
	Submit(ctx context.Context, req model.ReservationRequest) (model.Booking, error)
}

// AdminService gates the admin read/delete surface.
type AdminService interface {
	Login(password string) (string, error)
	ListBookings(ctx context.Context, password, token string) ([]model.Booking, error)
	DeleteBooking(ctx context.Context, password, token string, id int) error
}

// Handler holds all HTTP handlers for the reservation API.
type Handler struct {
	availability AvailabilityService
	bookings     BookingService
	admin        AdminService
}

// New constructs a Handler.
func New(availability AvailabilityService, bookings BookingService, admin AdminService) *Handler {
	return &Handler{availability: availability, bookings: bookings, admin: admin}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// bearerToken extracts the Authorization bearer token, if any.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// Disponibilites handles GET /api/disponibilites
// Returns every date the booking calendar must block.
func (h *Handler) Disponibilites(w http.ResponseWriter, r *http.Request) {
	dates, err := h.availability.UnavailableDates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Une erreur interne du serveur est survenue.")
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if dates == nil {
		dates = []string{}
	}

	writeJSON(w, http.StatusOK, map[string][]string{"unavailableDates": dates})
}

// Reserver handles POST /api/reserver
// Validates and persists a reservation request.
func (h *Handler) Reserver(w http.ResponseWriter, r *http.Request) {
	var req model.ReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Les champs obligatoires doivent être remplis.")
		return
	}

	if _, err := h.bookings.Submit(r.Context(), req); err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeError(w, http.StatusBadRequest, vErr.Error())
		case errors.Is(err, repository.ErrDateTaken):
			writeError(w, http.StatusConflict, "Cette date vient d'être réservée. Veuillez en choisir une autre.")
		default:
			writeError(w, http.StatusInternalServerError, "Erreur interne du serveur.")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Réservation enregistrée avec succès."})
}

// Login handles POST /api/login
// Verifies the admin password and issues a short-lived token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	token, err := h.admin.Login(req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false,
				"message": "Mot de passe incorrect",
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "Erreur interne du serveur.")
		return
	}

	resp := map[string]any{"success": true}
	if token != "" {
		resp["token"] = token
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetBookings handles POST /api/get-bookings
// Returns all bookings, newest booking date first.
func (h *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	var req model.AdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	bookings, err := h.admin.ListBookings(r.Context(), req.Password, bearerToken(r))
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Mot de passe incorrect"})
			return
		}
		writeError(w, http.StatusInternalServerError, "Erreur lors de la récupération des réservations.")
		return
	}

	if bookings == nil {
		bookings = []model.Booking{}
	}

	writeJSON(w, http.StatusOK, map[string][]model.Booking{"bookings": bookings})
}

// DeleteBooking handles POST /api/delete-booking
// Cancels a booking by id.
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	var req model.DeleteBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	// The admin page sends the id as a string.
	id, err := strconv.Atoi(strings.TrimSpace(req.ID))
	if req.ID == "" || err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "ID de réservation manquant."})
		return
	}

	if err := h.admin.DeleteBooking(r.Context(), req.Password, bearerToken(r), id); err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Mot de passe incorrect"})
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "Réservation introuvable.")
		default:
			writeError(w, http.StatusInternalServerError, "Erreur lors de la suppression de la réservation.")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Réservation supprimée avec succès.",
	})
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/booking/application"
	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/booking/domain"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/tracing"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("booking-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/bookings", h.create)
	r.Get("/bookings/{id}", h.get)
	r.Get("/bookings/{id}/guests", h.guests)
	r.Post("/bookings/{id}/cancel", h.cancel)
	r.Post("/bookings/{id}/checkin", h.checkIn)
	r.Post("/bookings/{id}/checkout", h.checkOut)
	r.Post("/bookings/{id}/no-show", h.noShow)
	return r
}

type guestReq struct {
	FullName string `json:"full_name"`
	Age      int    `json:"age"`
	IDType   string `json:"id_type"`
	IDNumber string `json:"id_number"`
}

type createBookingReq struct {
	HotelID     string     `json:"hotel_id"`
	RoomID      string     `json:"room_id"`
	UserID      string     `json:"user_id"`
	HoldID      string     `json:"hold_id"`
	CheckIn     string     `json:"check_in"`
	CheckOut    string     `json:"check_out"`
	AmountCents int64      `json:"amount_cents"`
	GuestName   string     `json:"guest_name"`
	GuestEmail  string     `json:"guest_email"`
	Guests      []guestReq `json:"guests"`
}

type bookingResp struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Status      string     `json:"status"`
	CheckIn     string     `json:"check_in"`
	CheckOut    string     `json:"check_out"`
	AmountCents int64      `json:"amount_cents"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func toResp(b domain.Booking) bookingResp {
	return bookingResp{
		ID:          b.ID,
		Code:        b.Code,
		Status:      string(b.Status),
		CheckIn:     b.CheckIn.Format(domain.DateLayout),
		CheckOut:    b.CheckOut.Format(domain.DateLayout),
		AmountCents: b.AmountCents,
		CancelledAt: b.CancelledAt,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateBooking")
	defer span.End()

	var req createBookingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	checkIn, err := time.Parse(domain.DateLayout, req.CheckIn)
	if err != nil {
		http.Error(w, "invalid check_in date", http.StatusBadRequest)
		return
	}
	checkOut, err := time.Parse(domain.DateLayout, req.CheckOut)
	if err != nil {
		http.Error(w, "invalid check_out date", http.StatusBadRequest)
		return
	}

	guests := make([]domain.BookingGuest, 0, len(req.Guests))
	for _, g := range req.Guests {
		guests = append(guests, domain.BookingGuest{FullName: g.FullName, Age: g.Age, IDType: g.IDType, IDNumber: g.IDNumber})
	}

	in := application.CreateBookingInput{
		HotelID:     req.HotelID,
		RoomID:      req.RoomID,
		UserID:      req.UserID,
		HoldID:      req.HoldID,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		AmountCents: req.AmountCents,
		GuestName:   req.GuestName,
		GuestEmail:  req.GuestEmail,
		Guests:      guests,
	}

	b, err := h.service.Create(ctx, in, sourceHeaders(), tracing.Traceparent(ctx))
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toResp(b))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(toResp(b))
}

func (h *Handler) guests(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.service.Get(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	guests, err := h.service.Guests(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]guestReq, 0, len(guests))
	for _, g := range guests {
		out = append(out, guestReq{FullName: g.FullName, Age: g.Age, IDType: g.IDType, IDNumber: g.IDNumber})
	}
	_ = json.NewEncoder(w).Encode(out)
}

type cancelReq struct {
	Reason string `json:"reason"`
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CancelBooking")
	defer span.End()

	var req cancelReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	b, err := h.service.Cancel(ctx, chi.URLParam(r, "id"), req.Reason, sourceHeaders(), tracing.Traceparent(ctx))
	if err != nil {
		h.writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(toResp(b))
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CheckIn")
	defer span.End()

	b, err := h.service.CheckIn(ctx, chi.URLParam(r, "id"), sourceHeaders(), tracing.Traceparent(ctx))
	if err != nil {
		h.writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(toResp(b))
}

type checkOutReq struct {
	Rating       *int   `json:"rating"`
	Feedback     string `json:"feedback"`
	LateCheckout bool   `json:"late_checkout"`
}

func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CheckOut")
	defer span.End()

	var req checkOutReq
	if r.Body != nil {
		// body is optional for a plain checkout
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	in := application.CheckOutInput{Rating: req.Rating, Feedback: req.Feedback, LateCheckout: req.LateCheckout}
	b, err := h.service.CheckOut(ctx, chi.URLParam(r, "id"), in, sourceHeaders(), tracing.Traceparent(ctx))
	if err != nil {
		h.writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(toResp(b))
}

func (h *Handler) noShow(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MarkNoShow")
	defer span.End()

	b, err := h.service.MarkNoShow(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(toResp(b))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var holdErr *domain.HoldConsumptionError
	var transErr *domain.InvalidTransitionError

	switch {
	case errors.As(err, &holdErr):
		h.respondJSON(w, http.StatusConflict, map[string]string{"error": "hold_consumption_failed", "reason": holdErr.Reason})
	case errors.As(err, &transErr):
		h.respondJSON(w, http.StatusConflict, map[string]string{
			"error":     "invalid_state_transition",
			"current":   string(transErr.Current),
			"requested": string(transErr.Requested),
		})
	case errors.Is(err, domain.ErrBookingNotFound):
		h.respondJSON(w, http.StatusNotFound, map[string]string{"error": "booking_not_found"})
	case errors.Is(err, domain.ErrCheckOutNotAfterCheckIn), errors.Is(err, domain.ErrCheckInInPast):
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.log.Error("request failed", "err", err)
		h.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func sourceHeaders() map[string]string {
	return map[string]string{"source": "booking-service"}
}

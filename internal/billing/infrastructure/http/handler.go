package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/billing/application"
	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/billing/domain"
)

// Handler is the billing query surface: read a bill, mark it paid.
type Handler struct {
	log     *slog.Logger
	service *application.Service
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/bills/{bookingID}", h.get)
	r.Post("/bills/{bookingID}/pay", h.pay)
	return r
}

type billResp struct {
	BookingID   string     `json:"booking_id"`
	BillNumber  string     `json:"bill_number"`
	AmountCents int64      `json:"amount_cents"`
	Status      string     `json:"status"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	bill, err := h.service.GetByBookingID(r.Context(), chi.URLParam(r, "bookingID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(billResp{
		BookingID:   bill.BookingID,
		BillNumber:  bill.BillNumber,
		AmountCents: bill.AmountCents,
		Status:      string(bill.Status),
		PaidAt:      bill.PaidAt,
	})
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkPaid(r.Context(), chi.URLParam(r, "bookingID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBillNotFound):
		http.Error(w, "bill not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrBillAlreadyPaid):
		http.Error(w, "bill already paid", http.StatusConflict)
	default:
		h.log.Error("billing request failed", "err", err)
		http.Error(w, "internal", http.StatusInternalServerError)
	}
}

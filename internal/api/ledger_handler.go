package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/clinicdesk/internal/api/shared"
	"github.com/phrazzld/clinicdesk/internal/clinic"
	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerService is the part of the clinic the finance endpoints use.
type LedgerService interface {
	EndConsultation(ctx context.Context, patient domain.Patient) (domain.Record, error)
	SetConsultationFee(ctx context.Context, fee decimal.Decimal) (clinic.FeeResult, error)
	ConsultationFee() decimal.Decimal
	Statistics(from, to domain.Month) (domain.Statistics, error)
	Records() []domain.Record
}

// LedgerHandler serves consultations, the fee, records and statistics.
type LedgerHandler struct {
	service LedgerService
	logger  *slog.Logger
}

// NewLedgerHandler creates a LedgerHandler.
func NewLedgerHandler(service LedgerService, logger *slog.Logger) *LedgerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerHandler{
		service: service,
		logger:  logger.With(slog.String("component", "ledger_handler")),
	}
}

// EndConsultation handles POST /api/consultations and records the fee
// charged to the patient.
func (h *LedgerHandler) EndConsultation(w http.ResponseWriter, r *http.Request) {
	var req ConsultationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rec, err := h.service.EndConsultation(r.Context(), req.Patient.toDomain())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, rec)
}

// GetConsultationFee handles GET /api/consultation-fee.
func (h *LedgerHandler) GetConsultationFee(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, FeeResponse{Fee: h.service.ConsultationFee()})
}

// SetConsultationFee handles PUT /api/consultation-fee.
func (h *LedgerHandler) SetConsultationFee(w http.ResponseWriter, r *http.Request) {
	var req FeeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.service.SetConsultationFee(r.Context(), *req.Fee)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	requestLogger(r, h.logger).Info("consultation fee changed",
		slog.String("previous", res.Previous.String()),
		slog.String("current", res.Current.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, res)
}

// Records handles GET /api/records.
func (h *LedgerHandler) Records(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.service.Records())
}

// Statistics handles GET /api/statistics?from=YYYY-MM&to=YYYY-MM. A missing
// to defaults to from; the span is capped at maxRangeMonths.
func (h *LedgerHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryMonthRange(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	stats, err := h.service.Statistics(from, to)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

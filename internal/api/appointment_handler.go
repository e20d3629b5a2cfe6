package api

import (
	"context"
	"log/slog"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/phrazzld/clinicdesk/internal/api/shared"
	"github.com/phrazzld/clinicdesk/internal/clinic"
	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/phrazzld/clinicdesk/internal/domain/schedule"
)

// AppointmentService is the part of the clinic the appointment endpoints use.
type AppointmentService interface {
	AddAppointment(ctx context.Context, in clinic.NewAppointment) (clinic.AppointmentResult, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) (clinic.AppointmentResult, error)
	Appointment(id uuid.UUID) (domain.Appointment, bool)
	ListAppointments(start, end civil.Date) ([]domain.Appointment, error)
	ListAppointmentsForPatient(p domain.Patient) []domain.Appointment
	FreeSlots(start, end civil.Date) ([]schedule.DaySlots, error)
}

// AppointmentHandler serves the appointment book.
type AppointmentHandler struct {
	service AppointmentService
	logger  *slog.Logger
}

// NewAppointmentHandler creates an AppointmentHandler.
func NewAppointmentHandler(service AppointmentService, logger *slog.Logger) *AppointmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppointmentHandler{
		service: service,
		logger:  logger.With(slog.String("component", "appointment_handler")),
	}
}

// ListAppointments handles GET /api/appointments?from=&to= and
// GET /api/appointments?nric=&name=.
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if nric := q.Get("nric"); nric != "" {
		patient := domain.Patient{NRIC: nric, Name: q.Get("name")}
		shared.RespondWithJSON(w, r, http.StatusOK, h.service.ListAppointmentsForPatient(patient))
		return
	}

	from, to, err := queryDateRange(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	list, err := h.service.ListAppointments(from, to)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

// CreateAppointment handles POST /api/appointments.
func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	in := clinic.NewAppointment{Patient: req.Patient.toDomain(), Comment: req.Comment}
	var err error
	if in.Date, err = parseDate("date", req.Date); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if in.Start, err = parseTimeOfDay("start", req.Start); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if in.End, err = parseTimeOfDay("end", req.End); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	res, err := h.service.AddAppointment(r.Context(), in)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, res)
}

// GetAppointment handles GET /api/appointments/{id}.
func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	a, ok := h.service.Appointment(id)
	if !ok {
		HandleAPIError(w, r, domain.ErrAppointmentNotFound)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, a)
}

// DeleteAppointment handles DELETE /api/appointments/{id}. The response
// carries the removed appointment and its reminder.
func (h *AppointmentHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	res, err := h.service.DeleteAppointment(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, res)
}

// FreeSlots handles GET /api/appointments/free-slots?from=&to=.
func (h *AppointmentHandler) FreeSlots(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryDateRange(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	days, err := h.service.FreeSlots(from, to)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, days)
}

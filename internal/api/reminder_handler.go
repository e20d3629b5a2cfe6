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
)

// ReminderService is the part of the clinic the reminder endpoints use.
type ReminderService interface {
	AddReminder(ctx context.Context, in clinic.NewReminder) (domain.Reminder, error)
	DeleteReminder(ctx context.Context, id uuid.UUID) (domain.Reminder, error)
	ListReminders(d civil.Date) []domain.Reminder
	Reminders() []domain.Reminder
	Reminder(id uuid.UUID) (domain.Reminder, bool)
}

// ReminderHandler serves reminders of every origin.
type ReminderHandler struct {
	service ReminderService
	logger  *slog.Logger
}

// NewReminderHandler creates a ReminderHandler.
func NewReminderHandler(service ReminderService, logger *slog.Logger) *ReminderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderHandler{
		service: service,
		logger:  logger.With(slog.String("component", "reminder_handler")),
	}
}

// ListReminders handles GET /api/reminders, optionally filtered by ?date=.
func (h *ReminderHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		shared.RespondWithJSON(w, r, http.StatusOK, h.service.Reminders())
		return
	}
	d, err := parseDate("date", raw)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, h.service.ListReminders(d))
}

// CreateReminder handles POST /api/reminders. A missing end time makes a
// point-in-time reminder.
func (h *ReminderHandler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var req CreateReminderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	in := clinic.NewReminder{Title: req.Title, Comment: req.Comment}
	var err error
	if in.Date, err = parseDate("date", req.Date); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if in.Start, err = parseTimeOfDay("start", req.Start); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	in.End = in.Start
	if req.End != "" {
		if in.End, err = parseTimeOfDay("end", req.End); err != nil {
			HandleAPIError(w, r, err)
			return
		}
	}

	rem, err := h.service.AddReminder(r.Context(), in)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, rem)
}

// GetReminder handles GET /api/reminders/{id}.
func (h *ReminderHandler) GetReminder(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	rem, ok := h.service.Reminder(id)
	if !ok {
		HandleAPIError(w, r, domain.ErrReminderNotFound)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, rem)
}

// DeleteReminder handles DELETE /api/reminders/{id}.
func (h *ReminderHandler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	rem, err := h.service.DeleteReminder(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, rem)
}

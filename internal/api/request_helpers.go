package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/clinicdesk/internal/api/shared"
	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/phrazzld/clinicdesk/internal/platform/logger"
)

// decodeAndValidate reads the body into req and validates it, writing a 400
// response and returning false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := shared.DecodeJSON(w, r, req); err != nil {
		handleRequestError(w, r, err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		handleRequestError(w, r, err)
		return false
	}
	return true
}

// getPathUUID parses the named URL parameter as a UUID.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", nil)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", nil)
	}
	return id, nil
}

// parseDate parses a YYYY-MM-DD value.
func parseDate(field, value string) (civil.Date, error) {
	d, err := civil.ParseDate(value)
	if err != nil {
		return civil.Date{}, domain.NewValidationError(field, "must be a YYYY-MM-DD date", nil)
	}
	return d, nil
}

// parseTimeOfDay accepts HH:MM or HH:MM:SS.
func parseTimeOfDay(field, value string) (civil.Time, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return civil.TimeOf(t), nil
		}
	}
	return civil.Time{}, domain.NewValidationError(field, "must be an HH:MM time", nil)
}

// Range queries run under the clinic's read lock, so their span is bounded.
const (
	maxRangeDays   = 366
	maxRangeMonths = 120
)

// queryDateRange reads the from and to query parameters. A missing to
// defaults to from.
func queryDateRange(r *http.Request) (civil.Date, civil.Date, error) {
	q := r.URL.Query()
	from, err := parseDate("from", q.Get("from"))
	if err != nil {
		return civil.Date{}, civil.Date{}, err
	}
	to := from
	if raw := q.Get("to"); raw != "" {
		if to, err = parseDate("to", raw); err != nil {
			return civil.Date{}, civil.Date{}, err
		}
	}
	if to.DaysSince(from) >= maxRangeDays {
		return civil.Date{}, civil.Date{}, domain.NewValidationError("to",
			fmt.Sprintf("must be within %d days of from", maxRangeDays), nil)
	}
	return from, to, nil
}

// queryMonthRange reads from and to as YYYY-MM months. A missing to defaults
// to from.
func queryMonthRange(r *http.Request) (domain.Month, domain.Month, error) {
	q := r.URL.Query()
	from, err := domain.ParseMonth(q.Get("from"))
	if err != nil {
		return domain.Month{}, domain.Month{}, err
	}
	to := from
	if raw := q.Get("to"); raw != "" {
		if to, err = domain.ParseMonth(raw); err != nil {
			return domain.Month{}, domain.Month{}, err
		}
	}
	if from.MonthsUntil(to) >= maxRangeMonths {
		return domain.Month{}, domain.Month{}, domain.NewValidationError("to",
			fmt.Sprintf("must be within %d months of from", maxRangeMonths), nil)
	}
	return from, to, nil
}

// splitPath turns "root/test1/med1" into its segments.
func splitPath(raw string) []string {
	raw = strings.Trim(raw, "/")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "/")
}

// requestLogger returns the request-scoped logger tagged with the operator.
func requestLogger(r *http.Request, fallback *slog.Logger) *slog.Logger {
	log := logger.FromContextOrDefault(r.Context(), fallback)
	if op, ok := shared.GetOperator(r.Context()); ok {
		log = log.With(slog.String("operator", op))
	}
	return log
}

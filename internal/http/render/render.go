// Package render holds the request parsing and JSON response helpers shared
// by the HTTP handlers.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
)

// Date is a civil date encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date { return Date{Time: t} }

// DatePtr converts an optional time, keeping nil as nil.
func DatePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}

	return &Date{Time: *t}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.DateOnly))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}

	d.Time = t

	return nil
}

type errorBody struct {
	Error *apperrors.AppError `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error maps err onto its AppError and writes it. Errors outside the
// AppError catalogue are logged and reported as internal errors.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		slog.Error("unexpected error", "error", err, "method", r.Method, "path", r.URL.Path)
		appErr = apperrors.ErrInternal
	} else if appErr.Internal != nil {
		slog.Error("app error", "code", appErr.Code, "internal", appErr.Internal, "path", r.URL.Path)
	}

	JSON(w, appErr.StatusCode, errorBody{Error: appErr})
}

// Decode reads a JSON request body into v.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid request body: "+err.Error())
	}

	return nil
}

func PathID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+param)
	}

	return id, nil
}

// QueryDate parses an optional YYYY-MM-DD query parameter.
func QueryDate(r *http.Request, key string) (*time.Time, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("%s must be YYYY-MM-DD", key))
	}

	return &t, nil
}

// QueryMonth parses a YYYY-MM query parameter, defaulting to the month of now.
func QueryMonth(r *http.Request, key string, now time.Time) (time.Time, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}

	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("%s must be YYYY-MM", key))
	}

	return t, nil
}

// QueryDecimal parses an optional decimal query parameter.
func QueryDecimal(r *http.Request, key string) (decimal.Decimal, error) {
	s := strings.TrimSpace(r.URL.Query().Get(key))
	if s == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("%s must be a decimal number", key))
	}

	return d, nil
}

// Package errors provides the structured error type returned by the domain
// services. Handlers map an AppError to its status code and never expose the
// wrapped internal error to clients.
package errors

import (
	"errors"
	"net/http"
)

// AppError represents an application error with a stable code, a
// human-readable message, an HTTP status and an optional internal cause.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches any AppError carrying the same code, so a wrapped or re-messaged
// copy still compares equal to its sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}

	return e.Code == t.Code
}

// Wrap creates a copy of sentinel that carries internal as its cause.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a copy of sentinel with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// As extracts the AppError from err's chain, falling back to ErrInternal.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return Wrap(ErrInternal, err)
}

// General errors.
var (
	ErrInvalidInput = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound     = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternal     = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Ledger errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrCategoryNotFound    = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrAccountNotFound     = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
)

// Recurrence errors.
var (
	ErrTemplateNotFound = &AppError{Code: "RECURRING_NOT_FOUND", Message: "Recurring transaction not found", StatusCode: http.StatusNotFound}
	ErrUnknownInterval  = &AppError{Code: "UNKNOWN_INTERVAL", Message: "Unsupported recurrence interval", StatusCode: http.StatusBadRequest}
)

// Loan errors.
var (
	ErrInvalidLoan = &AppError{Code: "INVALID_LOAN", Message: "Invalid loan parameters", StatusCode: http.StatusBadRequest}
)

// Installment errors.
var (
	ErrPlanNotFound        = &AppError{Code: "INSTALLMENT_NOT_FOUND", Message: "Installment plan not found", StatusCode: http.StatusNotFound}
	ErrPlanInactive        = &AppError{Code: "INSTALLMENT_INACTIVE", Message: "Installment plan is no longer active", StatusCode: http.StatusConflict}
	ErrInvalidPayment      = &AppError{Code: "INVALID_PAYMENT", Message: "Payment amount must be positive and not exceed the remaining amount", StatusCode: http.StatusBadRequest}
	ErrInvalidCustomAmount = &AppError{Code: "INVALID_CUSTOM_AMOUNT", Message: "Custom amount must be positive and not exceed the remaining amount", StatusCode: http.StatusBadRequest}
	ErrUnknownPolicy       = &AppError{Code: "UNKNOWN_POLICY", Message: "Unsupported adjustment policy", StatusCode: http.StatusBadRequest}
)

// Debt errors.
var (
	ErrDebtNotFound        = &AppError{Code: "DEBT_NOT_FOUND", Message: "Debt not found", StatusCode: http.StatusNotFound}
	ErrDebtClosed          = &AppError{Code: "DEBT_CLOSED", Message: "Debt no longer accepts payments", StatusCode: http.StatusConflict}
	ErrDebtPaymentNotFound = &AppError{Code: "DEBT_PAYMENT_NOT_FOUND", Message: "Debt payment not found", StatusCode: http.StatusNotFound}
)

// Projection errors.
var (
	ErrUnknownStrategy = &AppError{Code: "UNKNOWN_STRATEGY", Message: "Unsupported projection strategy", StatusCode: http.StatusBadRequest}
)

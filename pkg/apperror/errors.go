package apperror

import (
	"fmt"
	"net/http"
)

// Codes that callers branch on programmatically.
const (
	CodeInvalidTransition  = "PAY_006"
	CodeGatewayUnavailable = "GW_001"
	CodeGatewayRejected    = "GW_002"
	CodeRefundRejected     = "GW_003"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Signatures & Access (SIG) ----

func ErrInvalidSignature() *AppError {
	return New("SIG_001", "Invalid signature", http.StatusBadRequest)
}

func ErrInvalidToken() *AppError {
	return New("SIG_002", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrAccessDenied() *AppError {
	return New("SIG_003", "Access denied", http.StatusForbidden)
}

// ---- Settlement Business Rules (PAY) ----

func ErrValidation(message string) *AppError {
	return New("PAY_001", message, http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("PAY_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrAmountMismatch() *AppError {
	return New("PAY_003", "Payment amount does not match order total", http.StatusBadRequest)
}

func ErrAlreadyPaid() *AppError {
	return New("PAY_004", "Order has already been paid", http.StatusConflict)
}

func ErrPaymentInFlight() *AppError {
	return New("PAY_005", "A payment attempt is already in progress for this order", http.StatusConflict)
}

func ErrInvalidTransition(from, to string) *AppError {
	return New(CodeInvalidTransition, fmt.Sprintf("Cannot move payment from %s to %s", from, to), http.StatusUnprocessableEntity)
}

func ErrNotCompleted() *AppError {
	return New("PAY_007", "Payment is not in a completed state", http.StatusUnprocessableEntity)
}

func ErrAlreadyRefunded() *AppError {
	return New("PAY_008", "Payment has already been refunded", http.StatusConflict)
}

func ErrRefundExceedsAmount() *AppError {
	return New("PAY_009", "Refund amount exceeds the captured amount", http.StatusBadRequest)
}

func ErrRefundNotAllowed() *AppError {
	return New("PAY_010", "Order is not in a refundable state", http.StatusUnprocessableEntity)
}

func ErrCancelNotAllowed() *AppError {
	return New("PAY_011", "Order can no longer be cancelled", http.StatusUnprocessableEntity)
}

// ---- Gateway Integration (GW) ----

func ErrGatewayUnavailable(err error) *AppError {
	return Wrap(CodeGatewayUnavailable, "Payment gateway is unavailable", http.StatusBadGateway, err)
}

func ErrGatewayRejected(err error) *AppError {
	return Wrap(CodeGatewayRejected, "Payment gateway rejected the request", http.StatusUnprocessableEntity, err)
}

func ErrRefundRejected(err error) *AppError {
	return Wrap(CodeRefundRejected, "Payment gateway rejected the refund", http.StatusUnprocessableEntity, err)
}

func ErrPaymentNotCaptured() *AppError {
	return New("GW_004", "Gateway does not report this payment as captured", http.StatusUnprocessableEntity)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_002", "Internal database error", http.StatusInternalServerError, err)
}

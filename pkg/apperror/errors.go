package apperror

import (
	"fmt"
	"net/http"
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

// ---- Player (PLR) ----

func ErrPlayerNotFound() *AppError {
	return New("PLR_001", "Player not found", http.StatusNotFound)
}

func ErrUsernameExists() *AppError {
	return New("PLR_002", "Username already exists", http.StatusConflict)
}

// ---- Wallet (WAL) ----

func ErrInsufficientFunds() *AppError {
	return New("WAL_001", "Insufficient balance in wallet", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("WAL_002", "Invalid amount", http.StatusBadRequest)
}

// ---- Request validation (VAL) ----

// Validation returns a VAL_001 error for a malformed request: bad JSON, a
// field that fails binding rules, an unparseable path parameter. Domain
// rejections keep their own codes (an uncovered bet is WAL_001, not VAL_001).
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// ErrCryptoFailure signals an unavailable hashing primitive. Treated as fatal
// at startup, never a per-request soft failure.
func ErrCryptoFailure(err error) *AppError {
	return Wrap("SYS_002", "Cryptography failure", http.StatusInternalServerError, err)
}

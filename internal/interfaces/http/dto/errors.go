package dto

import "net/http"

// Domain error codes surfaced over HTTP
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// statusByCode maps domain error codes to HTTP status codes
var statusByCode = map[string]int{
	"NOT_FOUND":              http.StatusNotFound,
	"ALREADY_EXISTS":         http.StatusConflict,
	"CONCURRENCY_CONFLICT":   http.StatusConflict,
	"DUPLICATE_NOTIFICATION": http.StatusConflict,
	"INVALID_INPUT":          http.StatusBadRequest,
	"INVALID_AMOUNT":         http.StatusBadRequest,
	"INVALID_KEY":            http.StatusBadRequest,
	"INVALID_MESSAGE":        http.StatusBadRequest,
	"INVALID_CUSTOMER":       http.StatusBadRequest,
	"INVALID_CUSTOMER_NAME":  http.StatusBadRequest,
	"INVALID_PAYMENT_TYPE":   http.StatusBadRequest,
	"INVALID_PAYMENT_METHOD": http.StatusBadRequest,
	"INVALID_INSTALLMENT":    http.StatusBadRequest,
	"INVALID_SALE":           http.StatusBadRequest,
	"INVALID_TYPE":           http.StatusBadRequest,
	"INVALID_STATE":          http.StatusUnprocessableEntity,
	"OUT_OF_SEQUENCE":        http.StatusUnprocessableEntity,
	"TRANSACTION_MISMATCH":   http.StatusUnprocessableEntity,
	"NOTHING_TO_RESCHEDULE":  http.StatusUnprocessableEntity,
	"LEDGER_INCONSISTENCY":   http.StatusInternalServerError,
	"STORE_UNAVAILABLE":      http.StatusServiceUnavailable,
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeInternal:          http.StatusInternalServerError,
}

// GetHTTPStatus maps a domain error code to an HTTP status code
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusBadRequest
}

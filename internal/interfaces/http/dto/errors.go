package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput covers every ERR_INVALID_* code without its own entry
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeInvalidShop  = "ERR_INVALID_SHOP"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeRequestInProgress   = "ERR_REQUEST_IN_PROGRESS"
)

// Business rule error codes
const (
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock   = "ERR_INSUFFICIENT_STOCK"
	ErrCodeDebtOverpayment     = "ERR_DEBT_OVERPAYMENT"
	ErrCodeDebtBelowPaid       = "ERR_DEBT_BELOW_PAID"
	ErrCodeSettlementImmutable = "ERR_SETTLEMENT_IMMUTABLE"
	ErrCodeDuplicateLine       = "ERR_DUPLICATE_LINE"
	ErrCodeItemInUse           = "ERR_ITEM_IN_USE"
	ErrCodeItemInactive        = "ERR_ITEM_INACTIVE"
	ErrCodeItemKindMismatch    = "ERR_ITEM_KIND_MISMATCH"
	ErrCodeNoPhone             = "ERR_NO_PHONE"
	ErrCodeNoOpenDebts         = "ERR_NO_OPEN_DEBTS"
)

// Availability error codes
const (
	ErrCodeReceiptUnavailable = "ERR_RECEIPT_UNAVAILABLE"
	ErrCodePrintUnavailable   = "ERR_PRINT_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeInvalidShop:  http.StatusBadRequest,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeRequestInProgress:   http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	ErrCodeDebtOverpayment:     http.StatusUnprocessableEntity,
	ErrCodeDebtBelowPaid:       http.StatusUnprocessableEntity,
	ErrCodeSettlementImmutable: http.StatusUnprocessableEntity,
	ErrCodeDuplicateLine:       http.StatusUnprocessableEntity,
	ErrCodeItemInUse:           http.StatusUnprocessableEntity,
	ErrCodeItemInactive:        http.StatusUnprocessableEntity,
	ErrCodeItemKindMismatch:    http.StatusUnprocessableEntity,
	ErrCodeNoPhone:             http.StatusUnprocessableEntity,
	ErrCodeNoOpenDebts:         http.StatusUnprocessableEntity,

	ErrCodeReceiptUnavailable: http.StatusServiceUnavailable,
	ErrCodePrintUnavailable:   http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unlisted ERR_INVALID_* codes are input errors; anything else unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "ERR_INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain codes whose ERR_ form differs from a plain prefix
var LegacyErrorCodeMapping = map[string]string{
	"VALIDATION_ERROR": ErrCodeValidation,
	"INTERNAL_ERROR":   ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the ERR_ format.
// Codes already in that format are returned as-is.
func NormalizeErrorCode(code string) string {
	if code == "" {
		return ErrCodeUnknown
	}
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}

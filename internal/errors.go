package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidName      ErrorCode = "INVALID_NAME"
	ErrCodeInvalidContent   ErrorCode = "INVALID_CONTENT"
	ErrCodeInvalidQRType    ErrorCode = "INVALID_QR_TYPE"
	ErrCodeInvalidMapping   ErrorCode = "INVALID_MAPPING"
	ErrCodeEmptyImportFile  ErrorCode = "EMPTY_IMPORT_FILE"
	ErrCodeFileTooLarge     ErrorCode = "FILE_TOO_LARGE"

	ErrCodeQRCodeNotFound  ErrorCode = "QR_CODE_NOT_FOUND"
	ErrCodeQRCodeInactive  ErrorCode = "QR_CODE_INACTIVE"
	ErrCodeQRCodeExpired   ErrorCode = "QR_CODE_EXPIRED"
	ErrCodeScanLimitHit    ErrorCode = "SCAN_LIMIT_REACHED"
	ErrCodePasswordNeeded  ErrorCode = "PASSWORD_REQUIRED"
	ErrCodeContentFrozen   ErrorCode = "CONTENT_NOT_EDITABLE"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED_ACCESS"
	ErrCodePermissionError ErrorCode = "PERMISSION_DENIED"

	ErrCodeUserNotFound  ErrorCode = "USER_NOT_FOUND"
	ErrCodeInvalidRole   ErrorCode = "INVALID_ROLE"
	ErrCodeProtectedRole ErrorCode = "PROTECTED_ROLE"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken         ErrorCode = "EMAIL_ALREADY_REGISTERED"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	ErrCodeRemoteStore ErrorCode = "REMOTE_STORE_ERROR"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewRemoteStoreError wraps an opaque persistence failure. Store errors pass
// through to the caller untranslated; no retries.
func NewRemoteStoreError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       ErrCodeRemoteStore,
		Message:    "persistence operation failed",
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

var (
	ErrQRCodeNotFound   = NewNotFoundError("QR code not found", ErrCodeQRCodeNotFound)
	ErrQRCodeInactive   = NewValidationError("QR code is paused", ErrCodeQRCodeInactive)
	ErrQRCodeExpired    = NewValidationError("QR code has expired", ErrCodeQRCodeExpired)
	ErrScanLimitReached = NewValidationError("scan limit reached", ErrCodeScanLimitHit)
	ErrPasswordRequired = NewForbiddenError("password required to access content", ErrCodePasswordNeeded)
	ErrContentFrozen    = NewValidationError("static QR content cannot be edited after creation", ErrCodeContentFrozen)

	ErrUnauthorizedAccess = NewForbiddenError("unauthorized access to QR code", ErrCodeUnauthorized)
	ErrPermissionDenied   = NewForbiddenError("insufficient permissions for this action", ErrCodePermissionError)

	ErrUserNotFound  = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrInvalidRole   = NewValidationError("unknown role", ErrCodeInvalidRole)
	ErrProtectedRole = NewForbiddenError("super admin accounts cannot be deleted", ErrCodeProtectedRole)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrEmailTaken         = NewConflictError("email is already registered", ErrCodeEmailTaken)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

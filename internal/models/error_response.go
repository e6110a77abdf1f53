package models

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string // Вид ошибки движка

const (
	KindValidation             ErrorKind = "Validation"
	KindInvalidTransition      ErrorKind = "InvalidTransition"
	KindOverAllocation         ErrorKind = "OverAllocation"
	KindAlreadyInitialized     ErrorKind = "AlreadyInitialized"
	KindAlreadyFinalized       ErrorKind = "AlreadyFinalized"
	KindConcurrentModification ErrorKind = "ConcurrentModification"
	KindNotFound               ErrorKind = "NotFound"
	KindInternal               ErrorKind = "Internal"
)

var kindStatusCodes = map[ErrorKind]int{
	KindValidation:             http.StatusBadRequest,
	KindInvalidTransition:      http.StatusConflict,
	KindOverAllocation:         http.StatusConflict,
	KindAlreadyInitialized:     http.StatusConflict,
	KindAlreadyFinalized:       http.StatusConflict,
	KindConcurrentModification: http.StatusConflict,
	KindNotFound:               http.StatusNotFound,
	KindInternal:               http.StatusInternalServerError,
}

// ErrorResponse описывает ошибку с видом, кодом и сообщением.
type ErrorResponse struct {
	StatusCode int       `json:"-"`
	Kind       ErrorKind `json:"kind,omitempty"`
	Message    string    `json:"reason"`
	Current    string    `json:"current,omitempty"`
	Requested  string    `json:"requested,omitempty"`
}

// NewErrorResponse создает новую ошибку с кодом и сообщением.
func NewErrorResponse(statusCode int, message string) *ErrorResponse {
	var kind ErrorKind
	switch statusCode {
	case http.StatusBadRequest:
		kind = KindValidation
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusInternalServerError:
		kind = KindInternal
	}
	return &ErrorResponse{
		StatusCode: statusCode,
		Kind:       kind,
		Message:    message,
	}
}

// NewKindError создает новую ошибку указанного вида.
func NewKindError(kind ErrorKind, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: kindStatusCodes[kind],
		Kind:       kind,
		Message:    message,
	}
}

// NewInvalidTransition создает ошибку недопустимого перехода с текущим и запрошенным состояниями.
func NewInvalidTransition(current, requested string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: kindStatusCodes[KindInvalidTransition],
		Kind:       KindInvalidTransition,
		Message:    fmt.Sprintf("invalid transition from %s to %s", current, requested),
		Current:    current,
		Requested:  requested,
	}
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	return e.Message
}

// IsKind проверяет, является ли ошибка ошибкой движка указанного вида.
func IsKind(err error, kind ErrorKind) bool {
	var errorResponse *ErrorResponse
	if errors.As(err, &errorResponse) {
		return errorResponse.Kind == kind
	}
	return false
}

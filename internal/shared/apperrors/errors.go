package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel error kinds for the reservation engine. Guard violations are
// detected before any mutation and surfaced with the specific kind; callers
// match with errors.Is after any amount of %w wrapping.
var (
	ErrNotFound                = errors.New("not found")
	ErrInvalidTransition       = errors.New("invalid transition")
	ErrSlotUnavailable         = errors.New("slot unavailable")
	ErrVehicleClassMismatch    = errors.New("vehicle class mismatch")
	ErrInvalidTimeWindow       = errors.New("invalid time window")
	ErrUnsupportedVehicleClass = errors.New("unsupported vehicle class")
	ErrConflict                = errors.New("conflict")
	ErrUnauthorized            = errors.New("unauthorized")
)

// InvalidTransition builds an ErrInvalidTransition naming the current and
// requested states.
func InvalidTransition(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// NotFound builds an ErrNotFound for a named entity.
func NotFound(entity, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}

// HTTPStatus maps an error kind to an HTTP status code. Unrecognized errors
// map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict),
		errors.Is(err, ErrSlotUnavailable),
		errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrVehicleClassMismatch),
		errors.Is(err, ErrInvalidTimeWindow),
		errors.Is(err, ErrUnsupportedVehicleClass):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

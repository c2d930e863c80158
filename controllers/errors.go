package controllers

import (
	"errors"
	"net/http"

	"github.com/restropos/billing-app/services"
)

var ErrNoPermission = errors.New("you do not have permission for this action")

// statusFor maps service sentinels onto HTTP status codes so every
// controller reports the same way.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrBillNotFound),
		errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrLineNotFound),
		errors.Is(err, services.ErrSubTableNotFound),
		errors.Is(err, services.ErrSettlementNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrTableRequired),
		errors.Is(err, services.ErrEmptyLines),
		errors.Is(err, services.ErrEmptyTenders),
		errors.Is(err, services.ErrInvalidDiscount),
		errors.Is(err, services.ErrAmountMismatch),
		errors.Is(err, services.ErrNoQuantityAvailable):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrSubTableInUse),
		errors.Is(err, services.ErrSubTableActive),
		errors.Is(err, services.ErrAllLettersExhausted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

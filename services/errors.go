package services

import "errors"

// Errors returned by the billing services. Controllers map these onto
// HTTP status codes.
var (
	ErrBillNotFound       = errors.New("bill not found")
	ErrTableNotFound      = errors.New("table not found")
	ErrLineNotFound       = errors.New("order line not found")
	ErrSubTableNotFound   = errors.New("sub-table not found")
	ErrSettlementNotFound = errors.New("settlement not found")

	ErrTableRequired       = errors.New("table id is required")
	ErrEmptyLines          = errors.New("order lines are required")
	ErrEmptyTenders        = errors.New("settlements array is required")
	ErrInvalidDiscount     = errors.New("invalid discount type")
	ErrAmountMismatch      = errors.New("updated amount must match bill grand total")
	ErrNoQuantityAvailable = errors.New("no quantity available to reverse")
	ErrAllLettersExhausted = errors.New("all sub-tables (A-Z) are currently in use for this table")
	ErrSubTableActive      = errors.New("cannot delete an active sub-table, settle the bill first")
	ErrSubTableInUse       = errors.New("sub-table is already in use")
)

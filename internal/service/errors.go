package service

import "errors"

var (
	ErrPaymentInvalid       = errors.New("invalid payment input")
	ErrStudentNotFound      = errors.New("student not found")
	ErrLibraryNotFound      = errors.New("library not found")
	ErrLibrarianNotFound    = errors.New("librarian not found for this library")
	ErrDuplicateOrder       = errors.New("duplicate order detected")
	ErrPaymentNotFound      = errors.New("payment record not found")
	ErrPaymentStatusInvalid = errors.New("payment status invalid")
	ErrPaymentUpdateFailed  = errors.New("payment update failed")
	ErrSignatureInvalid     = errors.New("webhook signature invalid")
	ErrWebhookSecretMissing = errors.New("webhook secret missing")
	ErrGatewayRejected      = errors.New("gateway rejected order")
	ErrGatewayUnavailable   = errors.New("gateway unavailable")
)

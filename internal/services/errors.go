package services

import (
	"errors"

	"hunarscan/internal/apperr"
	"hunarscan/internal/repositories/interfaces"
)

const (
	MsgWorkerIDRequired = "Worker ID is required"
	MsgWorkerNotFound   = "Worker not found"
	MsgWorkerFields     = "Name, trade, phone, and location are required"
	MsgInvalidPhone     = "Invalid phone number format"
	MsgWorkerExists     = "Worker profile already exists"
	MsgClientName       = "Name is required"
	MsgClientExists     = "Client profile already exists"
	MsgReviewTooLong    = "Review must be at most 1000 characters"
	MsgRequestIDTooLong = "Request ID must be at most 128 characters"
	MsgKeyReused        = "Idempotency key already used by another client"
	MsgRateLimited      = "Too many reviews, please try again later"
	MsgNoIdentity       = "Unauthorized: No token provided"
)

// storeError maps repository sentinels onto the service taxonomy.
func storeError(op string, err error, notFound, exists string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, interfaces.ErrNotFound) && notFound != "":
		return apperr.Wrap(apperr.CodeNotFound, op, notFound, err)
	case errors.Is(err, interfaces.ErrAlreadyExists) && exists != "":
		return apperr.Wrap(apperr.CodeAlreadyExists, op, exists, err)
	default:
		return apperr.Internal(op, err)
	}
}

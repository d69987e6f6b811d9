package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/AshithaPGowda/code-challenge/internal/core/employee"
	"github.com/AshithaPGowda/code-challenge/internal/core/i9"
	"github.com/AshithaPGowda/code-challenge/internal/core/validation"
)

const internalMessage = "internal error"

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, validation.ErrValidationFailed),
		errors.Is(err, i9.ErrInvalidField),
		errors.Is(err, i9.ErrInvalidID),
		errors.Is(err, i9.ErrInvalidStatus),
		errors.Is(err, i9.ErrInvalidPageSize),
		errors.Is(err, i9.ErrInvalidPageToken),
		errors.Is(err, employee.ErrInvalidID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, i9.ErrInvalidTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, i9.ErrStatusOverrideDisabled):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, i9.ErrAlreadySubmitted), errors.Is(err, employee.ErrPhoneAlreadyRegistered):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, i9.ErrFormNotFound), errors.Is(err, employee.ErrEmployeeNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, internalMessage)
	}
}

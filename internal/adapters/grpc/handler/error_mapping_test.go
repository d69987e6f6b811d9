package handler

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/AshithaPGowda/code-challenge/internal/core/employee"
	"github.com/AshithaPGowda/code-challenge/internal/core/i9"
	"github.com/AshithaPGowda/code-challenge/internal/core/validation"
)

func TestToStatusError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"validation", validation.NewError("ssn", "Invalid SSN format"), codes.InvalidArgument},
		{"invalid field", fmt.Errorf("%w: salary", i9.ErrInvalidField), codes.InvalidArgument},
		{"invalid page size", i9.ErrInvalidPageSize, codes.InvalidArgument},
		{"invalid employee id", employee.ErrInvalidID, codes.InvalidArgument},
		{"transition", &i9.TransitionError{Action: i9.ActionVerifyFinal, Current: i9.StatusCompleted, Required: []i9.Status{i9.StatusDataApproved}}, codes.FailedPrecondition},
		{"already submitted", i9.ErrAlreadySubmitted, codes.AlreadyExists},
		{"form not found", i9.ErrFormNotFound, codes.NotFound},
		{"employee not found", employee.ErrEmployeeNotFound, codes.NotFound},
		{"unexpected", errors.New("boom"), codes.Internal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := status.Code(toStatusError(tc.err)); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}

	if toStatusError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

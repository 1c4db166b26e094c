package api

import (
	"context"
	"errors"

	"github.com/solatis/jsoncond/internal/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps domain errors to gRPC status codes.
// Malformed and SQL-inexpressible conditions are INVALID_ARGUMENT, missing
// stored conditions NOT_FOUND, and anything else (storage) UNAVAILABLE.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := codes.Unavailable
	switch {
	case errors.Is(err, types.ErrMalformedRule), errors.Is(err, types.ErrUnsupportedInSQL):
		code = codes.InvalidArgument
	case errors.Is(err, types.ErrConditionNotFound):
		code = codes.NotFound
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	}
	return status.Error(code, err.Error())
}

package rpc

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error translates a usecase error into a gRPC status. Unexpected errors
// are logged and hidden behind codes.Internal.
func Error(log logger.ZapLogger, op string, err error) error {
	if err == nil {
		return nil
	}

	var invalidArg *InvalidArgumentError
	switch {
	case errors.As(err, &invalidArg):
		return status.Error(codes.InvalidArgument, err.Error())
	case apperr.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	case apperr.IsConflict(err):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	log.Error("failed to "+op, zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}

package grpc

import (
	"errors"

	mdwerror "github.com/msto63/lox/foundation/core/error"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StatusCode maps an error code to the matching gRPC status code
func StatusCode(code mdwerror.Code) codes.Code {
	switch code {
	case mdwerror.CodeLexError, mdwerror.CodeParseError, mdwerror.CodeInvalidInput, mdwerror.CodeUsage:
		return codes.InvalidArgument
	case mdwerror.CodeAllocation:
		return codes.ResourceExhausted
	case mdwerror.CodeNotFound:
		return codes.NotFound
	case mdwerror.CodeInvalidOperation:
		return codes.FailedPrecondition
	case mdwerror.CodeTimeout:
		return codes.DeadlineExceeded
	case mdwerror.CodeServiceUnavailable, mdwerror.CodeNetworkError:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// ToStatus converts err to a gRPC status error; nil stays nil
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(StatusCode(mdwerror.GetCode(err)), err.Error())
}

// FromStatus converts a gRPC status error back into a coded error. Errors
// that are already coded are returned as they are.
func FromStatus(err error) *mdwerror.Error {
	if err == nil {
		return nil
	}
	var coded *mdwerror.Error
	if errors.As(err, &coded) {
		return coded
	}

	st, _ := status.FromError(err)
	var code mdwerror.Code
	switch st.Code() {
	case codes.InvalidArgument:
		code = mdwerror.CodeInvalidInput
	case codes.ResourceExhausted:
		code = mdwerror.CodeAllocation
	case codes.NotFound:
		code = mdwerror.CodeNotFound
	case codes.FailedPrecondition:
		code = mdwerror.CodeInvalidOperation
	case codes.DeadlineExceeded:
		code = mdwerror.CodeTimeout
	case codes.Unavailable:
		code = mdwerror.CodeServiceUnavailable
	default:
		code = mdwerror.CodeInternal
	}
	return mdwerror.Wrap(err, "remote call failed").
		WithCode(code).
		WithDetail("grpc_code", st.Code().String())
}

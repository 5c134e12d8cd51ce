// Package errors provides structured scout errors with codes that survive a
// gRPC round trip through google.rpc.ErrorInfo details.
package errors

import (
	stderrors "errors"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code classifies a failure.
type Code string

const (
	CodeUnknown             Code = "UNKNOWN"
	CodeInternal            Code = "INTERNAL"
	CodeCaptureFailed       Code = "CAPTURE_FAILED"
	CodeRecognitionFailed   Code = "RECOGNITION_FAILED"
	CodeAttributeUnreadable Code = "ATTRIBUTE_UNREADABLE"
	CodeRegionInvalid       Code = "REGION_INVALID"
	CodeTransportFailed     Code = "TRANSPORT_FAILED"
	CodeAssetLoadFailed     Code = "ASSET_LOAD_FAILED"
	CodeConfigInvalid       Code = "CONFIG_INVALID"
	CodeUnavailable         Code = "UNAVAILABLE"
	CodeTimeout             Code = "TIMEOUT"
	CodeCancelled           Code = "CANCELLED"
)

// Domain tags ErrorInfo details produced by this module.
const Domain = "scout"

var grpcCodeMap = map[Code]codes.Code{
	CodeUnknown:             codes.Unknown,
	CodeInternal:            codes.Internal,
	CodeCaptureFailed:       codes.Unavailable,
	CodeRecognitionFailed:   codes.Internal,
	CodeAttributeUnreadable: codes.NotFound,
	CodeRegionInvalid:       codes.InvalidArgument,
	CodeTransportFailed:     codes.Unavailable,
	CodeAssetLoadFailed:     codes.FailedPrecondition,
	CodeConfigInvalid:       codes.InvalidArgument,
	CodeUnavailable:         codes.Unavailable,
	CodeTimeout:             codes.DeadlineExceeded,
	CodeCancelled:           codes.Canceled,
}

// AppError is the base error type with structured error code and metadata.
type AppError struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if len(e.Metadata) > 0 {
		s += fmt.Sprintf(" %v", e.Metadata)
	}
	if e.Cause != nil {
		s += fmt.Sprintf(" caused by: %v", e.Cause)
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// GRPCCode returns the corresponding gRPC status code.
func (e *AppError) GRPCCode() codes.Code {
	if c, ok := grpcCodeMap[e.Code]; ok {
		return c
	}
	return codes.Unknown
}

// GRPCStatus lets status.FromError convert an AppError returned by a handler.
func (e *AppError) GRPCStatus() *status.Status {
	st := status.New(e.GRPCCode(), e.Message)
	info := &errdetails.ErrorInfo{Reason: string(e.Code), Domain: Domain, Metadata: e.Metadata}
	if withInfo, err := st.WithDetails(info); err == nil {
		return withInfo
	}
	return st
}

func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

func Newf(code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(err error, code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

func Wrapf(err error, code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WithMetadata adds metadata to an AppError.
func (e *AppError) WithMetadata(key, value string) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// FromGRPCError rebuilds an AppError from a status, preferring the ErrorInfo
// detail when the peer attached one.
func FromGRPCError(err error) *AppError {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return &AppError{Code: CodeUnknown, Message: err.Error(), Cause: err}
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == Domain {
			return &AppError{Code: Code(info.GetReason()), Message: st.Message(), Metadata: info.GetMetadata(), Cause: err}
		}
	}
	return &AppError{Code: grpcToCode(st.Code()), Message: st.Message(), Cause: err}
}

func grpcToCode(c codes.Code) Code {
	switch c {
	case codes.InvalidArgument:
		return CodeConfigInvalid
	case codes.Unavailable:
		return CodeUnavailable
	case codes.DeadlineExceeded:
		return CodeTimeout
	case codes.Canceled:
		return CodeCancelled
	case codes.Internal:
		return CodeInternal
	case codes.FailedPrecondition:
		return CodeAssetLoadFailed
	default:
		return CodeUnknown
	}
}

// IsCode reports whether any AppError in err's chain carries code.
func IsCode(err error, code Code) bool {
	var appErr *AppError
	for err != nil {
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// IsRetryable returns true if the error is potentially retryable.
func IsRetryable(err error) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	switch appErr.Code {
	case CodeCaptureFailed, CodeTransportFailed, CodeUnavailable, CodeTimeout:
		return true
	default:
		return false
	}
}

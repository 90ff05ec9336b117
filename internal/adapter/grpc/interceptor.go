package grpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/simaogato/wealthflow-forecast/internal/log"
)

// RequestIDHeader carries a caller-supplied request ID; one is generated when absent
const RequestIDHeader = "x-request-id"

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the authorization token from request metadata.
// If the token is missing or invalid, it returns status.Unauthenticated.
// If valid, it calls the handler with the original context.
func AuthInterceptor(validToken string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		if authHeaders[0] != validToken {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		return handler(ctx, req)
	}
}

// LoggingInterceptor returns a gRPC unary server interceptor that logs every call
// with its request ID, status code and duration. Client errors log at WARN and
// server errors at ERROR.
func LoggingInterceptor(logger *log.Logger) grpc.UnaryServerInterceptor {
	logger = log.OrDiscard(logger).WithComponent(log.ComponentGRPC)

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		requestID := requestIDFrom(ctx)

		// Echo the request ID so callers can correlate logs
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))

		resp, err := handler(ctx, req)

		code := status.Code(err)
		args := []any{
			log.FieldRequestID, requestID,
			log.FieldMethod, info.FullMethod,
			"code", code.String(),
			log.FieldDuration, time.Since(start).Milliseconds(),
		}
		if err != nil {
			args = append(args, log.FieldError, err.Error())
		}

		switch levelFor(code) {
		case slog.LevelError:
			logger.ErrorContext(ctx, "rpc failed", args...)
		case slog.LevelWarn:
			logger.WarnContext(ctx, "rpc rejected", args...)
		default:
			logger.InfoContext(ctx, "rpc completed", args...)
		}

		return resp, err
	}
}

func requestIDFrom(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(RequestIDHeader); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return uuid.NewString()
}

func levelFor(code codes.Code) slog.Level {
	switch code {
	case codes.OK:
		return slog.LevelInfo
	case codes.InvalidArgument, codes.NotFound, codes.Unauthenticated, codes.PermissionDenied,
		codes.Canceled, codes.FailedPrecondition, codes.OutOfRange:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

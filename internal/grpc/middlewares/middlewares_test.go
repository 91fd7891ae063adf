package middleware

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var info = &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

func echoRequestID(ctx context.Context, req interface{}) (interface{}, error) {
	return RequestID(ctx), nil
}

func TestContextMiddleware(t *testing.T) {
	resp, err := ContextMiddleware(context.Background(), nil, info, echoRequestID)
	require.NoError(t, err)
	assert.Len(t, resp, 36, "a fresh uuid is generated")

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDMetadata, "abc-123"))
	resp, err = ContextMiddleware(ctx, nil, info, echoRequestID)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp)

	assert.Equal(t, "", RequestID(context.Background()))
}

func TestRateLimitingInterceptor(t *testing.T) {
	interceptor := NewRateLimitingInterceptor(0.001, 1)

	_, err := interceptor(context.Background(), nil, info, echoRequestID)
	require.NoError(t, err)

	_, err = interceptor(context.Background(), nil, info, echoRequestID)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestMetricsInterceptor(t *testing.T) {
	requests, latency := NewCollectors()
	interceptor := NewMetricsInterceptor(requests, latency)

	_, err := interceptor(context.Background(), nil, info, echoRequestID)
	require.NoError(t, err)
	_, err = interceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "unknown service")
	})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(requests.WithLabelValues("Check", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(requests.WithLabelValues("Check", "NotFound")))
}

func TestLoggingInterceptor(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	interceptor := NewLoggingInterceptor(logger)

	want := errors.New("boom")
	_, err := interceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		return nil, want
	})
	assert.ErrorIs(t, err, want)
}

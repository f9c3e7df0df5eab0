package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type staticChecker Status

func (s staticChecker) Check(context.Context) Check {
	return Check{Status: Status(s), Message: "static"}
}

func serve(t *testing.T, handler http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestHealthHandler(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.RegisterChecker("storage", CheckerFunc(func(context.Context) error { return nil }))

	w := serve(t, handler.ServeHTTP)
	require.Equal(t, http.StatusOK, w.Code)

	var response Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Equal(t, StatusHealthy, response.Status)
	require.Equal(t, "v1.0.0", response.Version)
	require.Len(t, response.Checks, 1)
	require.Equal(t, "storage", response.Checks["storage"].Name)
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.RegisterChecker("storage", CheckerFunc(func(context.Context) error {
		return errors.New("connection refused")
	}))
	handler.RegisterChecker("cache", staticChecker(StatusDegraded))

	w := serve(t, handler.ServeHTTP)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Equal(t, StatusUnhealthy, response.Status)
	require.Equal(t, "connection refused", response.Checks["storage"].Message)
}

func TestHealthHandler_DegradedStaysOK(t *testing.T) {
	handler := NewHandler("dev")
	handler.RegisterChecker("cache", staticChecker(StatusDegraded))

	status, _ := handler.Run(context.Background())
	require.Equal(t, StatusDegraded, status)
	require.Equal(t, http.StatusOK, serve(t, handler.ServeHTTP).Code)
	require.Equal(t, http.StatusOK, serve(t, handler.ReadinessHandler).Code)
}

func TestLivenessHandler(t *testing.T) {
	w := serve(t, LivenessHandler)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestReadinessHandler_NotReady(t *testing.T) {
	handler := NewHandler("dev")
	handler.RegisterChecker("storage", staticChecker(StatusUnhealthy))
	handler.RegisterChecker("kafka", staticChecker(StatusUnhealthy))
	handler.RegisterChecker("cache", staticChecker(StatusHealthy))

	w := serve(t, handler.ReadinessHandler)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "not ready: kafka,storage", w.Body.String())
}

func TestRun_ChecksShareTimeout(t *testing.T) {
	handler := NewHandler("dev")
	handler.timeout = 20 * time.Millisecond
	handler.RegisterChecker("slow", CheckerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	status, checks := handler.Run(context.Background())
	require.Equal(t, StatusUnhealthy, status)
	require.Contains(t, checks["slow"].Message, "deadline exceeded")
}

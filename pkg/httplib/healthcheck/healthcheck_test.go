package healthcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okChecker() Checker {
	return CheckerFunc(func(context.Context) error { return nil })
}

func TestHealthCheck_ServeHTTP(t *testing.T) {
	testCases := []struct {
		name       string
		checkers   map[string]Checker
		wantStatus int
		assertFn   func(t *testing.T, resp Response)
	}{
		{
			name:       "no checkers",
			wantStatus: http.StatusOK,
			assertFn: func(t *testing.T, resp Response) {
				assert.Equal(t, "ok", resp.Status)
				assert.Empty(t, resp.Components)
			},
		},
		{
			name: "all healthy",
			checkers: map[string]Checker{
				"questdb": okChecker(),
				"redis":   okChecker(),
			},
			wantStatus: http.StatusOK,
			assertFn: func(t *testing.T, resp Response) {
				assert.Equal(t, map[string]string{"questdb": "ok", "redis": "ok"}, resp.Components)
			},
		},
		{
			name: "one failing",
			checkers: map[string]Checker{
				"questdb": okChecker(),
				"redis": CheckerFunc(func(context.Context) error {
					return errors.New("connection refused")
				}),
			},
			wantStatus: http.StatusServiceUnavailable,
			assertFn: func(t *testing.T, resp Response) {
				assert.Equal(t, "unavailable", resp.Status)
				assert.Equal(t, "connection refused", resp.Components["redis"])
				assert.Equal(t, "ok", resp.Components["questdb"])
			},
		},
		{
			name: "slow checker times out",
			checkers: map[string]Checker{
				"questdb": CheckerFunc(func(ctx context.Context) error {
					<-ctx.Done()
					return ctx.Err()
				}),
			},
			wantStatus: http.StatusServiceUnavailable,
			assertFn: func(t *testing.T, resp Response) {
				assert.Equal(t, context.DeadlineExceeded.Error(), resp.Components["questdb"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hc := New(50*time.Millisecond, tc.checkers)
			rec := httptest.NewRecorder()

			hc.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tc.wantStatus, rec.Code)
			var resp Response
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			tc.assertFn(t, resp)
		})
	}
}

func TestHealthCheck_Handler(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := New(time.Second, nil).Handler(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/candles", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

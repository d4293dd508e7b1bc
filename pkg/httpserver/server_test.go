package httpserver_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/trustkit/pkg/httpserver"
)

func startServer(t *testing.T, ctx context.Context, srv *httpserver.Server, handler http.Handler) (string, <-chan error) {
	t.Helper()

	started := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, handler) }()

	deadline := time.After(2 * time.Second)
	for {
		if addr := srv.Addr(); addr != "" {
			started <- addr
			break
		}
		select {
		case err := <-done:
			t.Fatalf("server exited early: %v", err)
		case <-deadline:
			t.Fatal("server did not start")
		case <-time.After(5 * time.Millisecond):
		}
	}
	return <-started, done
}

func TestRunAndCancel(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithAddr("127.0.0.1:0"), httpserver.WithShutdownTimeout(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, done := startServer(t, ctx, srv, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	resp, err := http.Get("http://" + addr)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("run did not finish")
	}
	assert.NoError(t, srv.Shutdown(context.Background()), "repeated shutdown")
}

func TestManualShutdownAndHooks(t *testing.T) {
	t.Parallel()

	var started, stopped atomic.Value
	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithStartHook(func(addr string, _ *slog.Logger) { started.Store(addr) }),
		httpserver.WithStopHook(func(addr string, _ *slog.Logger) { stopped.Store(addr) }),
	)

	addr, done := startServer(t, context.Background(), srv, http.NotFoundHandler())

	require.NoError(t, srv.Shutdown(context.Background()))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("run did not finish")
	}

	assert.Equal(t, addr, started.Load())
	assert.Equal(t, addr, stopped.Load())
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	err = httpserver.New(httpserver.WithAddr(ln.Addr().String())).Run(context.Background(), nil)
	assert.ErrorIs(t, err, httpserver.ErrStart, "port in use")

	srv := httpserver.New(httpserver.WithAddr("127.0.0.1:0"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, done := startServer(t, ctx, srv, nil)

	assert.ErrorIs(t, srv.Run(ctx, nil), httpserver.ErrStart, "already running")
	cancel()
	<-done
}

func TestShutdown_BeforeRun(t *testing.T) {
	t.Parallel()
	assert.NoError(t, httpserver.New().Shutdown(context.Background()))
}

func TestOptionPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { httpserver.WithAddr("") })
	assert.Panics(t, func() { httpserver.WithReadTimeout(0) })
	assert.Panics(t, func() { httpserver.WithWriteTimeout(-time.Second) })
	assert.Panics(t, func() { httpserver.WithIdleTimeout(0) })
	assert.Panics(t, func() { httpserver.WithShutdownTimeout(0) })
	assert.Panics(t, func() { httpserver.WithStartHook(nil) })
	assert.Panics(t, func() { httpserver.WithStopHook(nil) })
}

func TestConfigOptions(t *testing.T) {
	t.Parallel()

	assert.Empty(t, httpserver.Config{}.Options())
	assert.Len(t, httpserver.Config{
		Addr:            ":9090",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		IdleTimeout:     time.Second,
		ShutdownTimeout: time.Second,
	}.Options(), 5)
}

func TestHealthCheckHandler(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("redis down") }
	slow := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	tests := []struct {
		name       string
		checks     []httpserver.Check
		wantStatus int
		wantBody   string
	}{
		{name: "liveness", wantStatus: http.StatusOK, wantBody: "ALIVE"},
		{name: "ready", checks: []httpserver.Check{ok, ok}, wantStatus: http.StatusOK, wantBody: "READY"},
		{name: "failing dependency", checks: []httpserver.Check{ok, fail}, wantStatus: http.StatusServiceUnavailable, wantBody: "NOT_READY"},
		{name: "timeout", checks: []httpserver.Check{slow}, wantStatus: http.StatusServiceUnavailable, wantBody: "NOT_READY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			httpserver.HealthCheckHandler(nil, 20*time.Millisecond, tt.checks...).
				ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/cesargomez89/walkmlb/internal/logger"
)

type mockRunner struct {
	runs   atomic.Int32
	failN  int32
	failed chan struct{}
}

func (m *mockRunner) Run(ctx context.Context) error {
	n := m.runs.Add(1)
	if n <= m.failN {
		return errors.New("boom")
	}
	if m.failed != nil {
		select {
		case m.failed <- struct{}{}:
		default:
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

type mockHTTPServer struct {
	listenErr     error
	stopCh        chan struct{}
	shutdownCount atomic.Int32
	started       chan struct{}
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{stopCh: make(chan struct{}), started: make(chan struct{}, 1)}
}

func (m *mockHTTPServer) ListenAndServe() error {
	select {
	case m.started <- struct{}{}:
	default:
	}
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stopCh
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(ctx context.Context) error {
	m.shutdownCount.Add(1)
	close(m.stopCh)
	return nil
}

func TestServices_Interface(t *testing.T) {
	var _ suture.Service = (*SchedulerService)(nil)
	var _ suture.Service = (*HTTPServerService)(nil)
}

func TestSchedulerService_CleanStop(t *testing.T) {
	r := &mockRunner{}
	svc := NewSchedulerService(r)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if svc.String() != "sync-scheduler" {
		t.Errorf("Unexpected name %q", svc.String())
	}
}

func TestSchedulerService_ReportsFailure(t *testing.T) {
	svc := NewSchedulerService(&mockRunner{failN: 1})

	err := svc.Serve(context.Background())
	if err == nil || errors.Is(err, context.Canceled) {
		t.Errorf("Expected a failure to be reported, got %v", err)
	}
}

func TestHTTPServerService_Shutdown(t *testing.T) {
	server := newMockHTTPServer()
	svc := NewHTTPServerService(server, 0)
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("Expected default timeout, got %s", svc.shutdownTimeout)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	<-server.started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if server.shutdownCount.Load() != 1 {
		t.Errorf("Expected one shutdown, got %d", server.shutdownCount.Load())
	}
}

func TestHTTPServerService_ListenError(t *testing.T) {
	server := newMockHTTPServer()
	server.listenErr = errors.New("address in use")

	err := NewHTTPServerService(server, time.Second).Serve(context.Background())
	if err == nil {
		t.Fatal("Expected listen error")
	}
}

func TestTree_RestartsFailedScheduler(t *testing.T) {
	r := &mockRunner{failN: 2, failed: make(chan struct{}, 1)}
	tree := NewTree(logger.Discard(), TreeConfig{FailureBackoff: 10 * time.Millisecond, ShutdownTimeout: time.Second})
	tree.AddSyncService(NewSchedulerService(r))
	server := newMockHTTPServer()
	tree.AddAPIService(NewHTTPServerService(server, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	select {
	case <-r.failed:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler was not restarted")
	}
	if got := r.runs.Load(); got < 3 {
		t.Errorf("Expected at least 3 runs, got %d", got)
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop")
	}
	if server.shutdownCount.Load() != 1 {
		t.Errorf("Expected the listener to be shut down, got %d", server.shutdownCount.Load())
	}
}

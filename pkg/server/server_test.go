package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidmaw/hotdaily/internal/store"
	"github.com/voidmaw/hotdaily/internal/subs"
	"github.com/voidmaw/hotdaily/pkg/cover"
	"github.com/voidmaw/hotdaily/pkg/deliver"
	"github.com/voidmaw/hotdaily/pkg/rank"
	"github.com/voidmaw/hotdaily/pkg/report"
	"github.com/voidmaw/hotdaily/pkg/source"
)

type stubHistory struct{}

func (stubHistory) RecordPicks(context.Context, string, []store.Pick) error { return nil }
func (stubHistory) ListPicks(context.Context, store.ListOpts) ([]store.Pick, error) {
	return nil, nil
}
func (stubHistory) CountBySource(context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}
func (stubHistory) Close() error { return nil }

func newTestServer(t *testing.T, port int) *Server {
	t.Helper()

	client := source.NewClient("")
	registry := source.NewRegistry(func(string) bool { return false })
	dir := t.TempDir()
	subStore := subs.NewStore(filepath.Join(dir, "subs.json"))
	worker := report.NewWorker(
		rank.NewService(registry, nil, 0),
		cover.NewService(client, filepath.Join(dir, "covers"), 0),
		nil,
		deliver.NewManager(nil),
		subStore,
		nil,
		nil,
	)
	return New(stubHistory{}, registry, subStore, worker, port)
}

func TestSubscriptionRoundTrip(t *testing.T) {
	s := newTestServer(t, 8080)

	rec := httptest.NewRecorder()
	s.handleSubscription(rec, httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/room-1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, s.subs.IsEnabled("room-1"))

	rec = httptest.NewRecorder()
	s.handleSubscription(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/subscriptions/room-1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, s.subs.IsEnabled("room-1"))

	rec = httptest.NewRecorder()
	s.handleSubscription(rec, httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportQueued(t *testing.T) {
	s := newTestServer(t, 8080)

	rec := httptest.NewRecorder()
	s.handleReport(rec, httptest.NewRequest(http.MethodPost, "/api/v1/report", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	port := freePort(t)
	s := newTestServer(t, port)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	// Wait for the listener to come up before cancelling.
	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}

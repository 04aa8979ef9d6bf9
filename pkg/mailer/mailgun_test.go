package mailer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mailgunServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"id":"<20240101.1@mg.example.com>","message":"Queued. Thank you."}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"upstream failure"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestMailgun_Send(t *testing.T) {
	srv, hits := mailgunServer(t, http.StatusOK)
	m := NewMailgun("mg.example.com", "key-test", "noreply@mg.example.com", nil, WithAPIBase(srv.URL+"/v3"))

	err := m.Send(context.Background(), "foo@gmail.com", "subject", "text", "")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, gobreaker.StateClosed, m.State())
}

func TestMailgun_BreakerOpensAndFailsFast(t *testing.T) {
	srv, hits := mailgunServer(t, http.StatusInternalServerError)
	st := DefaultBreakerSettings(nil)
	st.ReadyToTrip = func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 2 }
	st.Timeout = time.Hour
	m := NewMailgun("mg.example.com", "key-test", "noreply@mg.example.com", nil,
		WithAPIBase(srv.URL+"/v3"), WithBreakerSettings(st), WithTimeout(2*time.Second))

	ctx := context.Background()
	require.Error(t, m.Send(ctx, "foo@gmail.com", "s", "t", ""))
	require.Error(t, m.Send(ctx, "foo@gmail.com", "s", "t", ""))
	assert.Equal(t, gobreaker.StateOpen, m.State())

	err := m.Send(ctx, "foo@gmail.com", "s", "t", "")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), hits.Load())
}

func TestEmailJob_Valid(t *testing.T) {
	assert.True(t, EmailJob{To: "a@b.io", Subject: "s", Text: "t"}.Valid())
	assert.True(t, EmailJob{To: "a@b.io", Subject: "s", HTML: "<p>t</p>"}.Valid())
	assert.False(t, EmailJob{To: "a@b.io", Subject: "s"}.Valid())
	assert.False(t, EmailJob{Subject: "s", Text: "t"}.Valid())
}

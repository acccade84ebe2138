package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewESClientRequiresAddress(t *testing.T) {
	_, err := NewESClient(ESOptions{})
	assert.Error(t, err)
}

func TestPingES(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	es, err := NewESClient(ESOptions{Addrs: []string{srv.URL}, Timeout: time.Second})
	require.NoError(t, err)
	require.NoError(t, PingES(context.Background(), es, time.Second))

	status.Store(http.StatusInternalServerError)
	assert.Error(t, PingES(context.Background(), es, time.Second))
}

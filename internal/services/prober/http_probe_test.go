package prober

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NordCoder/Netprobe/internal/domain/probe"
)

func newTestProber(maxRedirects int) HTTPProber {
	client := NewHTTPClient(HTTPConfig{Timeout: 2 * time.Second, MaxRedirects: maxRedirects, VerifyTLS: true})
	return HTTPProber{Client: client, UserAgent: "Netprobe/test"}
}

func TestHTTPProber_OK(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	out := newTestProber(0).Get(context.Background(), srv.URL, 2*time.Second)
	require.True(t, out.Success, out.Error)
	require.NotNil(t, out.StatusCode)
	assert.Equal(t, http.StatusOK, *out.StatusCode)
	assert.NotNil(t, out.LatencyMs)
	assert.Equal(t, "Netprobe/test", gotUA)
}

func TestHTTPProber_NonOKStatusFails(t *testing.T) {
	for _, code := range []int{http.StatusNoContent, http.StatusNotFound, http.StatusServiceUnavailable} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(code)
		}))

		out := newTestProber(0).Get(context.Background(), srv.URL, 2*time.Second)
		srv.Close()

		assert.False(t, out.Success)
		assert.Equal(t, probe.ClassHTTPStatus, out.ErrorClass)
		require.NotNil(t, out.StatusCode)
		assert.Equal(t, code, *out.StatusCode)
		assert.NotNil(t, out.LatencyMs)
	}
}

func TestHTTPProber_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/end", http.StatusFound)
	})
	mux.HandleFunc("/end", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := newTestProber(3)
	assert.True(t, p.Get(context.Background(), srv.URL+"/start", 2*time.Second).Success)

	out := p.Get(context.Background(), srv.URL+"/loop", 2*time.Second)
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "stopped after 3 redirects")
}

func TestHTTPProber_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	out := newTestProber(0).Get(context.Background(), "http://"+addr, 2*time.Second)
	assert.False(t, out.Success)
	assert.Equal(t, probe.ClassRefused, out.ErrorClass)
	assert.Equal(t, "Connection refused - service may be down", out.Error)
}

func TestHTTPProber_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	out := newTestProber(0).Get(context.Background(), srv.URL, 100*time.Millisecond)
	assert.False(t, out.Success)
	assert.Equal(t, probe.ClassTimeout, out.ErrorClass)
	assert.Equal(t, "Request timeout after 100ms", out.Error)
}

func TestHTTPProber_SelfSignedTLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()

	out := newTestProber(0).Get(context.Background(), srv.URL, 2*time.Second)
	assert.False(t, out.Success)
	assert.Equal(t, probe.ClassTLS, out.ErrorClass)

	insecure := HTTPProber{Client: NewHTTPClient(HTTPConfig{Timeout: 2 * time.Second, VerifyTLS: false})}
	assert.True(t, insecure.Get(context.Background(), srv.URL, 2*time.Second).Success)
}

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
	"github.com/NordCoder/Netprobe/internal/platform"
)

func TestProber_Dispatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()

	run := &fakeRunner{fn: func(string, []string) (platform.CmdResult, error) {
		return platform.CmdResult{Stdout: "time=5 ms"}, nil
	}}
	p := New(
		NewPinger(run, StrategiesFor("linux", []string{"ping"}), nil),
		DNSProber{Resolver: stubResolver{addrs: []net.IPAddr{{IP: net.ParseIP("1.2.3.4")}}}},
		NewHTTPClient(HTTPConfig{Timeout: time.Second}),
		"Netprobe/test",
		nil,
	)
	ctx := context.Background()

	ping := p.Probe(ctx, probe.Target{Kind: probe.KindPing, Address: "8.8.8.8", Timeout: time.Second})
	require.True(t, ping.Success)
	assert.Equal(t, 5.0, *ping.LatencyMs)

	dns := p.Probe(ctx, probe.Target{Kind: probe.KindDNS, Address: "example.com", Timeout: time.Second})
	require.True(t, dns.Success)
	assert.Equal(t, []string{"1.2.3.4"}, dns.IPs)

	web := p.Probe(ctx, probe.Target{Kind: probe.KindHTTP, Address: srv.URL, Timeout: time.Second})
	assert.True(t, web.Success)

	bad := p.Probe(ctx, probe.Target{Kind: "carrier-pigeon", Address: "x"})
	assert.Equal(t, probe.ClassInternal, bad.ErrorClass)
}

func TestProber_NilPingerIsToolUnavailable(t *testing.T) {
	p := &Prober{}
	out := p.Probe(context.Background(), probe.Target{Kind: probe.KindPing, Address: "8.8.8.8", Timeout: time.Second})
	assert.True(t, out.ToolUnavailable())
}

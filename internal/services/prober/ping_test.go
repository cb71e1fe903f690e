package prober

import (
	"context"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NordCoder/Netprobe/internal/domain/probe"
	"github.com/NordCoder/Netprobe/internal/platform"
)

type fakeRunner struct {
	mu    sync.Mutex
	calls []string
	fn    func(name string, args []string) (platform.CmdResult, error)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (platform.CmdResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name+" "+args[len(args)-1])
	f.mu.Unlock()
	return f.fn(name, args)
}

func (f *fakeRunner) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func TestPinger_NoStrategyIsToolUnavailable(t *testing.T) {
	run := &fakeRunner{fn: func(string, []string) (platform.CmdResult, error) {
		return platform.CmdResult{}, exec.ErrNotFound
	}}
	p := NewPinger(run, StrategiesFor("linux", DefaultPingPaths), nil)

	out := p.Ping(context.Background(), "8.8.8.8", time.Second)
	assert.False(t, out.Success)
	assert.True(t, out.ToolUnavailable())
	assert.Equal(t, "Ping command not found in system PATH or standard locations", out.Error)
	assert.Equal(t, 3, len(run.calls))

	// discovery is not retried within one Pinger
	_ = p.Ping(context.Background(), "1.1.1.1", time.Second)
	assert.Equal(t, 3, len(run.calls))
}

func TestPinger_CachesFirstWorkingStrategy(t *testing.T) {
	run := &fakeRunner{fn: func(name string, args []string) (platform.CmdResult, error) {
		switch name {
		case "/sbin/ping":
			return platform.CmdResult{}, exec.ErrNotFound
		case "/bin/ping":
			if args[len(args)-1] == "127.0.0.1" {
				return platform.CmdResult{ExitCode: 1}, nil
			}
			return platform.CmdResult{Stdout: "64 bytes from 8.8.8.8: icmp_seq=1 ttl=117 time=14.237 ms"}, nil
		}
		t.Fatalf("unexpected command %s", name)
		return platform.CmdResult{}, nil
	}}
	p := NewPinger(run, StrategiesFor("linux", DefaultPingPaths), nil)

	for range 3 {
		out := p.Ping(context.Background(), "8.8.8.8", 3*time.Second)
		require.True(t, out.Success)
		require.NotNil(t, out.LatencyMs)
		assert.Equal(t, 14.24, *out.LatencyMs)
	}
	assert.Equal(t, 1, run.count("/sbin/ping 127.0.0.1"))
	assert.Equal(t, 1, run.count("/bin/ping 127.0.0.1"))
	assert.Equal(t, 3, run.count("/bin/ping 8.8.8.8"))
}

func TestPinger_Failures(t *testing.T) {
	cases := []struct {
		name  string
		res   platform.CmdResult
		err   error
		class probe.ErrorClass
		msg   string
	}{
		{"no reply", platform.CmdResult{ExitCode: 1}, nil, probe.ClassTimeout, "Ping failed"},
		{"unknown host", platform.CmdResult{ExitCode: 2, Stderr: "ping: unknown host nope\n"}, nil, probe.ClassDNS, "ping: unknown host nope"},
		{"not permitted", platform.CmdResult{ExitCode: 2, Stderr: "ping: socket: Operation not permitted"}, nil, probe.ClassPermission, "ping: socket: Operation not permitted"},
		{"deadline", platform.CmdResult{}, context.DeadlineExceeded, probe.ClassTimeout, "Ping timeout after 1s"},
		{"binary vanished", platform.CmdResult{}, exec.ErrNotFound, probe.ClassToolUnavailable, "Ping command not found: ping"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			run := &fakeRunner{fn: func(_ string, args []string) (platform.CmdResult, error) {
				if args[len(args)-1] == "127.0.0.1" {
					return platform.CmdResult{}, nil
				}
				return tc.res, tc.err
			}}
			p := NewPinger(run, StrategiesFor("linux", []string{"ping"}), nil)

			out := p.Ping(context.Background(), "example.invalid", time.Second)
			assert.False(t, out.Success)
			assert.Equal(t, tc.class, out.ErrorClass)
			assert.Equal(t, tc.msg, out.Error)
		})
	}
}

func TestPingStrategy_Args(t *testing.T) {
	assert.Equal(t, []string{"-c", "1", "-W", "3", "h"}, PingStrategy{Path: "ping"}.args("h", 3*time.Second))
	assert.Equal(t, []string{"-c", "1", "-W", "1", "h"}, PingStrategy{Path: "ping"}.args("h", 200*time.Millisecond))
	assert.Equal(t, []string{"-n", "1", "-w", "3000", "h"}, PingStrategy{Path: "ping", Windows: true}.args("h", 3*time.Second))
}

func TestPingStrategy_AvailableExitCodes(t *testing.T) {
	for code, want := range map[int]bool{0: true, 1: true, 2: true, 3: false, 68: false} {
		run := &fakeRunner{fn: func(string, []string) (platform.CmdResult, error) {
			return platform.CmdResult{ExitCode: code}, nil
		}}
		assert.Equal(t, want, PingStrategy{Path: "ping"}.Available(context.Background(), run), "exit %d", code)
	}
}

func TestParsePingLatency(t *testing.T) {
	cases := map[string]struct {
		out  string
		want float64
		ok   bool
	}{
		"linux":   {"64 bytes from 1.1.1.1: icmp_seq=1 ttl=57 time=9.81 ms", 9.81, true},
		"windows": {"Reply from 1.1.1.1: bytes=32 time=12ms TTL=57", 12, true},
		"sub ms":  {"Reply from 127.0.0.1: bytes=32 time<1ms TTL=128", 1, true},
		"none":    {"Request timed out.", 0, false},
		"garbled": {"time=abc", 0, false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, ok := ParsePingLatency(tc.out)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

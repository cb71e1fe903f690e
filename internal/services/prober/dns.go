package prober

import (
	"context"
	"net"
	"sort"
	"time"

	"github.com/NordCoder/Netprobe/internal/domain/probe"
)

// Resolver is satisfied by *net.Resolver.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// DNSProber resolves hostnames through the system resolver.
type DNSProber struct {
	Resolver Resolver
}

func (d DNSProber) Resolve(ctx context.Context, host string, timeout time.Duration) probe.Outcome {
	r := d.Resolver
	if r == nil {
		r = net.DefaultResolver
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	addrs, err := r.LookupIPAddr(ctx, host)
	elapsed := time.Since(start)
	if err != nil {
		class, msg := classifyDNSErr(err, timeout)
		return probe.Failed(class, msg)
	}

	latency := roundTo(float64(elapsed.Microseconds())/1000, 2)
	return probe.Outcome{Success: true, LatencyMs: &latency, IPs: uniqueIPs(addrs)}
}

func uniqueIPs(addrs []net.IPAddr) []string {
	seen := make(map[string]struct{}, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		s := a.IP.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

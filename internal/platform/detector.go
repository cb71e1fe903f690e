// Package platform holds the OS-specific collaborators of a monitoring run:
// interface and gateway detection plus host identity. Every external tool
// is parsed here so the rest of the module only sees typed results.
package platform

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NordCoder/Netprobe/internal/domain/snapshot"
)

const (
	networksetup = "/usr/sbin/networksetup"
	profiler     = "/usr/sbin/system_profiler"
)

var (
	_ snapshot.NetworkDetector = (*Detector)(nil)
	_ snapshot.GatewayDetector = (*Detector)(nil)
)

// Detector implements network and gateway detection by shelling out to the
// usual tools of the host OS.
type Detector struct {
	Run  CmdRunner
	GOOS string
	Log  *zap.Logger
	// CmdTimeout bounds each external command; zero means 5s.
	CmdTimeout time.Duration
}

func NewDetector(log *zap.Logger) *Detector {
	return &Detector{Run: ExecRunner{}, GOOS: runtime.GOOS, Log: log}
}

func (d *Detector) DetectNetwork(ctx context.Context) (info snapshot.NetworkInfo) {
	defer func() {
		if rec := recover(); rec != nil {
			info = snapshot.NetworkInfo{ConnectionType: snapshot.ConnError, Error: fmt.Sprint(rec)}
		}
	}()
	switch d.goos() {
	case "darwin":
		return d.darwinNetwork(ctx)
	case "linux":
		return d.linuxNetwork(ctx)
	default:
		d.logger().Debug("network detection unsupported", zap.String("goos", d.goos()))
		return snapshot.NetworkInfo{ConnectionType: snapshot.ConnUnknown}
	}
}

func (d *Detector) DetectGateway(ctx context.Context) string {
	switch d.goos() {
	case "darwin":
		return d.darwinGateway(ctx)
	case "linux":
		return d.linuxGateway(ctx)
	default:
		return ""
	}
}

func (d *Detector) linuxNetwork(ctx context.Context) snapshot.NetworkInfo {
	if out, ok := d.output(ctx, "iwgetid", "-r"); ok {
		if ssid := strings.TrimSpace(out); ssid != "" {
			return snapshot.NetworkInfo{ConnectionType: snapshot.ConnWiFi, SSID: ssid}
		}
	}
	if out, ok := d.output(ctx, "nmcli", "-t", "-f", "active,ssid", "dev", "wifi"); ok {
		if ssid, found := ParseNmcliActive(out); found {
			return snapshot.NetworkInfo{ConnectionType: snapshot.ConnWiFi, SSID: ssid}
		}
	}
	if out, ok := d.output(ctx, "ip", "link", "show"); ok && EthernetUp(out) {
		return snapshot.NetworkInfo{ConnectionType: snapshot.ConnEthernet}
	}
	return snapshot.NetworkInfo{ConnectionType: snapshot.ConnUnknown}
}

func (d *Detector) darwinNetwork(ctx context.Context) snapshot.NetworkInfo {
	for _, iface := range []string{"en0", "en1"} {
		if out, ok := d.output(ctx, networksetup, "-getairportnetwork", iface); ok {
			if ssid := ParseAirportNetwork(out); ssid != "" {
				return snapshot.NetworkInfo{ConnectionType: snapshot.ConnWiFi, SSID: ssid}
			}
		}
	}
	if out, ok := d.output(ctx, profiler, "SPAirPortDataType"); ok {
		if ssid := ParseSystemProfiler(out); ssid != "" {
			return snapshot.NetworkInfo{ConnectionType: snapshot.ConnWiFi, SSID: ssid}
		}
	}

	var iface string
	if out, ok := d.output(ctx, "route", "-n", "get", "default"); ok {
		iface = ParseRouteGet(out, "interface")
	}
	if iface == "" {
		d.logger().Debug("no active interface in route output")
	} else if out, ok := d.output(ctx, "ifconfig", iface); ok {
		if info, found := ClassifyIfconfig(iface, out); found {
			return info
		}
	}

	if iface != "" {
		if out, ok := d.output(ctx, networksetup, "-listallhardwareports"); ok {
			if info, found := ClassifyHardwarePort(out, iface); found {
				return info
			}
		}
		return snapshot.NetworkInfo{ConnectionType: snapshot.ConnOther}
	}
	return snapshot.NetworkInfo{ConnectionType: snapshot.ConnUnknown}
}

func (d *Detector) linuxGateway(ctx context.Context) string {
	if out, ok := d.output(ctx, "ip", "route", "show", "default"); ok {
		if gw := ParseIPRouteVia(out); gw != "" {
			return gw
		}
	}
	if out, ok := d.output(ctx, "route", "-n"); ok {
		return ParseRouteN(out)
	}
	return ""
}

func (d *Detector) darwinGateway(ctx context.Context) string {
	if out, ok := d.output(ctx, "route", "-n", "get", "default"); ok {
		if gw := ParseRouteGet(out, "gateway"); gw != "" {
			return gw
		}
	}
	if out, ok := d.output(ctx, "netstat", "-rn", "-f", "inet"); ok {
		if gw := ParseNetstatDefault(out); gw != "" {
			return gw
		}
	}
	out, ok := d.output(ctx, networksetup, "-listnetworkserviceorder")
	if !ok {
		return ""
	}
	for _, svc := range ParseServiceOrder(out) {
		if info, ok := d.output(ctx, networksetup, "-getinfo", svc); ok {
			if gw := ParseRouter(info); gw != "" {
				return gw
			}
		}
	}
	return ""
}

// output runs one command and reports whether it exited cleanly.
func (d *Detector) output(ctx context.Context, name string, args ...string) (string, bool) {
	timeout := d.CmdTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	run := d.Run
	if run == nil {
		run = ExecRunner{}
	}
	res, err := run.Run(ctx, name, args...)
	if err != nil {
		d.logger().Debug("command failed", zap.String("cmd", name), zap.Strings("args", args), zap.Error(err))
		return "", false
	}
	if res.ExitCode != 0 {
		d.logger().Debug("command exited non-zero",
			zap.String("cmd", name),
			zap.Strings("args", args),
			zap.Int("exit_code", res.ExitCode),
			zap.String("stderr", strings.TrimSpace(res.Stderr)),
		)
		return "", false
	}
	return res.Stdout, true
}

func (d *Detector) goos() string {
	if d.GOOS == "" {
		return runtime.GOOS
	}
	return d.GOOS
}

func (d *Detector) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

package platform

import (
	"net"
	"strings"

	"github.com/NordCoder/Netprobe/internal/domain/snapshot"
)

// Placeholder SSID used when the link is known to be wireless but the
// network name could not be read.
const SSIDUndetected = "Connected (SSID detection failed)"

const notAssociated = "You are not associated with an AirPort network."

// ParseIPRouteVia reads the gateway from `ip route show default`.
func ParseIPRouteVia(out string) string {
	for _, line := range strings.Split(out, "\n") {
		parts := strings.Fields(line)
		for i, p := range parts {
			if p == "via" && i+1 < len(parts) {
				return parts[i+1]
			}
		}
	}
	return ""
}

// ParseRouteN reads the gateway column of the 0.0.0.0 row of `route -n`.
func ParseRouteN(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "0.0.0.0") {
			continue
		}
		if parts := strings.Fields(line); len(parts) >= 2 {
			return parts[1]
		}
	}
	return ""
}

// ParseRouteGet reads a "key: value" field from `route -n get default`.
func ParseRouteGet(out, key string) string {
	prefix := key + ":"
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, prefix); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// ParseNetstatDefault reads the IPv4 default route from `netstat -rn -f inet`.
func ParseNetstatDefault(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "default") && !strings.HasPrefix(line, "0.0.0.0") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		if ip := net.ParseIP(parts[1]); ip != nil && ip.To4() != nil {
			return parts[1]
		}
	}
	return ""
}

// ParseServiceOrder returns the Wi-Fi and Ethernet service names listed by
// `networksetup -listnetworkserviceorder`.
func ParseServiceOrder(out string) []string {
	var services []string
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "Wi-Fi") && !strings.Contains(line, "Ethernet") {
			continue
		}
		parts := strings.Split(line, `"`)
		if len(parts) >= 2 && parts[1] != "" {
			services = append(services, parts[1])
		}
	}
	return services
}

// ParseRouter reads the Router line of `networksetup -getinfo <service>`.
func ParseRouter(out string) string {
	for _, line := range strings.Split(out, "\n") {
		_, v, ok := strings.Cut(line, "Router:")
		if !ok {
			continue
		}
		if v = strings.TrimSpace(v); v != "" && v != "none" {
			return v
		}
	}
	return ""
}

// ParseAirportNetwork reads the SSID from `networksetup -getairportnetwork`.
func ParseAirportNetwork(out string) string {
	out = strings.TrimSpace(out)
	if out == "" || strings.Contains(out, notAssociated) {
		return ""
	}
	if _, ssid, ok := strings.Cut(out, "Current Wi-Fi Network:"); ok {
		return strings.TrimSpace(ssid)
	}
	return out
}

var profilerSkip = []string{
	"phy mode", "channel", "country code", "network type",
	"security", "signal", "noise", "tx rate", "mcs index",
}

// ParseSystemProfiler finds the current SSID in `system_profiler
// SPAirPortDataType` output. The SSID is the first "name:" key under
// "Current Network Information:" that is not a known attribute.
func ParseSystemProfiler(out string) string {
	if !strings.Contains(out, "Status: Connected") {
		return ""
	}
	idx := strings.Index(out, "Current Network Information:")
	if idx < 0 {
		return ""
	}
	lines := strings.Split(out[idx:], "\n")
	for i := 1; i < len(lines) && i <= 10; i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || !strings.Contains(line, ":") {
			continue
		}
		lower := strings.ToLower(line)
		skip := false
		for _, f := range profilerSkip {
			if strings.Contains(lower, f) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		if ssid := strings.TrimSpace(strings.SplitN(line, ":", 2)[0]); ssid != "" {
			return ssid
		}
	}
	return ""
}

// ClassifyIfconfig guesses the connection type of an active interface from
// `ifconfig <iface>`. ok is false when the interface has no IPv4 address.
func ClassifyIfconfig(iface, out string) (info snapshot.NetworkInfo, ok bool) {
	if !strings.Contains(out, "inet ") {
		return snapshot.NetworkInfo{}, false
	}
	if !strings.HasPrefix(iface, "en") {
		return snapshot.NetworkInfo{ConnectionType: snapshot.ConnOther}, true
	}
	lower := strings.ToLower(out)
	if (strings.Contains(lower, "media:") && strings.Contains(lower, "wireless")) || iface == "en0" {
		return snapshot.NetworkInfo{ConnectionType: snapshot.ConnWiFi, SSID: SSIDUndetected}, true
	}
	return snapshot.NetworkInfo{ConnectionType: snapshot.ConnEthernet}, true
}

// ClassifyHardwarePort maps device to a connection type using
// `networksetup -listallhardwareports`.
func ClassifyHardwarePort(out, device string) (info snapshot.NetworkInfo, ok bool) {
	var port string
	for _, line := range strings.Split(out, "\n") {
		if v, found := strings.CutPrefix(line, "Hardware Port:"); found {
			port = strings.TrimSpace(v)
			continue
		}
		v, found := strings.CutPrefix(line, "Device:")
		if !found || strings.TrimSpace(v) != device {
			continue
		}
		lower := strings.ToLower(port)
		switch {
		case strings.Contains(lower, "wi-fi"):
			return snapshot.NetworkInfo{ConnectionType: snapshot.ConnWiFi, SSID: SSIDUndetected}, true
		case strings.Contains(lower, "ethernet"):
			return snapshot.NetworkInfo{ConnectionType: snapshot.ConnEthernet}, true
		default:
			return snapshot.NetworkInfo{ConnectionType: snapshot.ConnOther}, true
		}
	}
	return snapshot.NetworkInfo{}, false
}

// ParseNmcliActive reads the active SSID from
// `nmcli -t -f active,ssid dev wifi`.
func ParseNmcliActive(out string) (string, bool) {
	for _, line := range strings.Split(out, "\n") {
		if ssid, ok := strings.CutPrefix(line, "yes:"); ok {
			return ssid, true
		}
	}
	return "", false
}

// EthernetUp reports a wired link in `ip link show` output.
func EthernetUp(out string) bool {
	return strings.Contains(out, "state UP") &&
		(strings.Contains(out, "eth") || strings.Contains(out, "enp"))
}

package platform

import (
	"os"
	"os/user"
	"runtime"
	"strings"

	"github.com/NordCoder/Netprobe/internal/domain/snapshot"
)

const unknown = "unknown"

var _ snapshot.IdentityProvider = Identity{}

// Identity reads host and user from the process environment.
type Identity struct {
	GOOS string
}

func (i Identity) CurrentIdentity() snapshot.Identity {
	goos := i.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	host, err := os.Hostname()
	if err != nil || host == "" {
		host = unknown
	}
	name := os.Getenv("USER")
	if name == "" {
		if u, err := user.Current(); err == nil && u.Username != "" {
			name = u.Username
		} else {
			name = unknown
		}
	}
	return snapshot.Identity{
		Hostname: host,
		Username: name,
		UserHost: name + "@" + host,
		System:   SystemName(goos),
	}
}

// SystemName renders GOOS the way the log has always stored it.
func SystemName(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	case "freebsd":
		return "FreeBSD"
	case "":
		return unknown
	default:
		return strings.ToUpper(goos[:1]) + goos[1:]
	}
}

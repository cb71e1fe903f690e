package prober

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/NordCoder/Netprobe/internal/domain/probe"
)

// classifyHTTPErr maps a transport error to a class and a short message.
func classifyHTTPErr(err error, timeout time.Duration) (probe.ErrorClass, string) {
	var (
		dnsErr   *net.DNSError
		certErr  *tls.CertificateVerificationError
		unkAuth  x509.UnknownAuthorityError
		hostErr  x509.HostnameError
		invalid  x509.CertificateInvalidError
		recErr   tls.RecordHeaderError
		alertErr tls.AlertError
	)
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, syscall.ECONNREFUSED) || strings.Contains(msg, "connection refused"):
		return probe.ClassRefused, "Connection refused - service may be down"
	case errors.As(err, &dnsErr):
		return probe.ClassDNS, "DNS resolution failed"
	case isTimeout(err):
		return probe.ClassTimeout, fmt.Sprintf("Request timeout after %s", timeout)
	case errors.As(err, &certErr), errors.As(err, &unkAuth), errors.As(err, &hostErr),
		errors.As(err, &invalid), errors.As(err, &recErr), errors.As(err, &alertErr),
		strings.Contains(msg, "tls"), strings.Contains(msg, "certificate"):
		return probe.ClassTLS, "SSL/TLS certificate error"
	case errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM):
		return probe.ClassPermission, "Permission denied - check network access permissions"
	default:
		return probe.ClassOther, err.Error()
	}
}

// classifyDNSErr separates "not found", "temporary" and timeouts.
func classifyDNSErr(err error, timeout time.Duration) (probe.ErrorClass, string) {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		switch {
		case dnsErr.IsNotFound:
			return probe.ClassNotFound, "Name resolution failed - hostname not found"
		case dnsErr.IsTimeout:
			return probe.ClassTimeout, fmt.Sprintf("DNS resolution timeout after %s", timeout)
		case dnsErr.IsTemporary:
			return probe.ClassTemporary, "Temporary DNS failure - try again later"
		}
	}
	if isTimeout(err) {
		return probe.ClassTimeout, fmt.Sprintf("DNS resolution timeout after %s", timeout)
	}
	return probe.ClassDNS, fmt.Sprintf("DNS resolution failed: %v", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// unexpected reports whether a class is worth an error-level log line.
func unexpected(c probe.ErrorClass) bool {
	switch c {
	case probe.ClassPermission, probe.ClassOther, probe.ClassInternal:
		return true
	default:
		return false
	}
}

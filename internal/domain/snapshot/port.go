package snapshot

import (
	"context"
	"time"
)

// NetworkDetector reports the active connection type and SSID. It must not
// block past ctx and degrades to ConnUnknown or ConnError instead of failing.
type NetworkDetector interface {
	DetectNetwork(ctx context.Context) NetworkInfo
}

// GatewayDetector returns the default gateway IP, or "" when unknown.
type GatewayDetector interface {
	DetectGateway(ctx context.Context) string
}

// IdentityProvider returns host/user identity with "unknown" placeholders.
type IdentityProvider interface {
	CurrentIdentity() Identity
}

type Clock interface {
	Now() time.Time
}

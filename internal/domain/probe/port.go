package probe

import "context"

// Prober runs a single probe. Implementations never return errors: every
// failure is folded into the Outcome.
type Prober interface {
	Probe(ctx context.Context, t Target) Outcome
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, t Target) Outcome

func (f ProberFunc) Probe(ctx context.Context, t Target) Outcome { return f(ctx, t) }

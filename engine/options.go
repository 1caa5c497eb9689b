package engine

// ============================================================================
// AGGREGATOR OPTIONS — functional options for Aggregate()
// ============================================================================

// Option configures the metrics aggregator.
type Option func(*config)

type config struct {
	typeLabels     map[string]string // type code → display label
	referralLabels map[string]string // referral category code → display label
}

// WithTypeLabels supplies the type-code → label lookup table. Codes without
// an entry pass through with the code as their own label.
func WithTypeLabels(labels map[string]string) Option {
	return func(c *config) {
		c.typeLabels = labels
	}
}

// WithReferralLabels supplies the referral-category → label lookup table.
func WithReferralLabels(labels map[string]string) Option {
	return func(c *config) {
		c.referralLabels = labels
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

package config

// CheckoutConfig holds settings for the hosted-checkout handoff.
type CheckoutConfig interface {
	// GetCheckoutDevelopmentMode reports whether checkout sessions should be
	// created against the provider's test environment. Driven by ENV, never
	// forced on.
	GetCheckoutDevelopmentMode() bool
}

type Checkout struct{}

var _ CheckoutConfig = Checkout{}

func (Checkout) GetCheckoutDevelopmentMode() bool {
	return EnvVars{}.GetEnv() == "DEV"
}

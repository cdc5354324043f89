package middleware

import "time"

// StackConfig selects the optional stages of the server pipeline. A zero
// value disables the corresponding stage.
type StackConfig struct {
	Logger Logger

	// Telemetry enables the OTel stage with OTelOptions.
	Telemetry   bool
	OTelOptions []OTelOption

	MaxBytes int64
	Rate     int
	Burst    int
	Timeout  time.Duration
}

// Stack returns the server pipeline in execution order: recovery and
// request IDs, then telemetry and logging, then the admission checks and
// finally the deadline.
func Stack(cfg StackConfig) []Middleware {
	logger := cfg.Logger
	if logger == nil {
		logger = NopLogger{}
	}

	stack := []Middleware{
		Recover(logger),
		RequestID(),
	}
	if cfg.Telemetry {
		stack = append(stack, OTel(cfg.OTelOptions...))
	}
	stack = append(stack, Logging(logger))
	if cfg.MaxBytes > 0 {
		stack = append(stack, SizeLimit(cfg.MaxBytes, WithSizeLimitLogger(logger)))
	}
	if cfg.Rate > 0 {
		stack = append(stack, RateLimitByMethod(cfg.Rate, cfg.Burst, WithRateLimitLogger(logger)))
	}
	if cfg.Timeout > 0 {
		stack = append(stack, Timeout(cfg.Timeout))
	}
	return stack
}

package resilience

import (
	"time"

	"github.com/truthlens/truthlens-api/pkg/config"
)

// SettingsFromConfig maps the environment tuning knobs onto breaker Settings,
// substituting defaults for non-positive values.
func SettingsFromConfig(name string, cfg config.BreakerConfig) Settings {
	interval := time.Duration(cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	failures := cfg.FailureThreshold
	if failures <= 0 {
		failures = 5
	}

	return Settings{
		Name:             name,
		Interval:         interval,
		Timeout:          timeout,
		FailureThreshold: uint32(failures),
		SuccessThreshold: 1,
	}
}

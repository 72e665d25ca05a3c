package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadBookingPolicyFile overlays the keys present in a YAML policy file onto cfg.
// ${ENV_VAR} placeholders are expanded before parsing.
//
//	commission_rate: "0.12"
//	max_per_day: 3
//	unpaid_timeout: 45m
func LoadBookingPolicyFile(path string, cfg *BookingConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read booking policy file: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse booking policy file: %w", err)
	}
	return nil
}

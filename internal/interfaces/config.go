package interfaces

import "time"

// ProbeConfig holds common configuration for all probes.
type ProbeConfig struct {
	Port    int
	Timeout time.Duration
	// Extra holds probe-specific options such as "read-banner" or "insecure"
	Extra map[string]interface{}
}

// NewProbeConfig creates a new ProbeConfig with sensible defaults.
func NewProbeConfig() *ProbeConfig {
	return &ProbeConfig{
		Port:    0, // Must be set by caller
		Timeout: 5 * time.Second,
		Extra:   make(map[string]interface{}),
	}
}

// Bool returns a boolean option from Extra, false when absent or of another type.
func (c *ProbeConfig) Bool(key string) bool {
	if c == nil || c.Extra == nil {
		return false
	}
	v, ok := c.Extra[key].(bool)
	return ok && v
}

// WithPort returns a copy of the config with the port replaced.
func (c *ProbeConfig) WithPort(port int) *ProbeConfig {
	clone := *c
	clone.Extra = make(map[string]interface{}, len(c.Extra))
	for k, v := range c.Extra {
		clone.Extra[k] = v
	}
	clone.Port = port
	return &clone
}

// Validate checks if the configuration is valid.
func (c *ProbeConfig) Validate() error {
	if err := ValidatePort(c.Port); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return &ValidationError{Field: "timeout", Message: "timeout must be positive"}
	}
	return nil
}

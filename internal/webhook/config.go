package webhook

import (
	"fmt"

	"github.com/mattjoyce/sensorgate/internal/config"
)

// FromGlobalConfig converts config.Config to webhook.Config.
func FromGlobalConfig(c *config.Config) (Config, error) {
	if c == nil {
		return Config{}, fmt.Errorf("config is nil")
	}

	maxBodySize, err := c.MaxBodyBytes()
	if err != nil {
		return Config{}, fmt.Errorf("invalid max_body_size %q: %w", c.Server.MaxBodySize, err)
	}

	return Config{
		Listen:       c.Server.Listen,
		MaxBodySize:  maxBodySize,
		ExposeErrors: c.Server.ExposeErrors,
	}, nil
}

package config

import (
	"fmt"
)

// maxSessionLimit caps how many questions a single session may hold.
const maxSessionLimit = 50

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Quiz.validate(); err != nil {
		return fmt.Errorf("quiz: %w", err)
	}

	return nil
}

func (q *QuizConfig) validate() error {
	if q.DefaultSessionLimit <= 0 {
		return fmt.Errorf("default_session_limit must be > 0 (got %d)", q.DefaultSessionLimit)
	}
	if q.DefaultSessionLimit > maxSessionLimit {
		return fmt.Errorf("default_session_limit must be <= %d (got %d)", maxSessionLimit, q.DefaultSessionLimit)
	}
	return nil
}

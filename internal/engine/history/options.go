package history

import (
	"github.com/dshills/editlog/internal/engine/charclass"
	"github.com/dshills/editlog/internal/logging"
)

// Option configures a Controller during creation.
type Option func(*Controller)

// WithClassifier sets the character classifier used for coalescing.
func WithClassifier(fn charclass.Func) Option {
	return func(c *Controller) {
		if fn != nil {
			c.classify = fn
		}
	}
}

// WithCapacityPolicy sets the log's growth and shrink policy.
func WithCapacityPolicy(p CapacityPolicy) Option {
	return func(c *Controller) {
		c.policy = p
	}
}

// WithLogger sets the logger. The controller adds its own component and
// session fields.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option {
	return func(c *Controller) {
		if id != "" {
			c.id = id
		}
	}
}

// WithDisabled creates a controller that records nothing until
// SetEnabled(true) is called.
func WithDisabled() Option {
	return func(c *Controller) {
		c.enabled = false
	}
}

// Package cache provides query cache configuration options.
package cache

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/redfire-io/pcb-tutor/pkg/options"
	redisopts "github.com/redfire-io/pcb-tutor/pkg/options/redis"
)

var _ options.IOptions = (*Options)(nil)

// Options configures the Redis-backed result cache.
type Options struct {
	// Enabled toggles caching. When Redis is unreachable at startup the
	// server disables the cache on its own.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// TTL is how long generated results stay cached.
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`

	// KeyPrefix namespaces the cache keys.
	KeyPrefix string `json:"key-prefix" mapstructure:"key-prefix"`

	// Redis holds the connection configuration.
	Redis *redisopts.Options `json:"redis" mapstructure:"redis"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		Enabled:   true,
		TTL:       1 * time.Hour,
		KeyPrefix: "mcq:",
		Redis:     redisopts.NewOptions(),
	}
}

// AddFlags adds cache flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.Enabled, options.Join(prefixes...)+"cache.enabled", o.Enabled, "Enable result caching.")
	fs.DurationVar(&o.TTL, options.Join(prefixes...)+"cache.ttl", o.TTL, "Cache TTL duration.")
	fs.StringVar(&o.KeyPrefix, options.Join(prefixes...)+"cache.key-prefix", o.KeyPrefix, "Cache key prefix.")

	if o.Redis == nil {
		o.Redis = redisopts.NewOptions()
	}
	o.Redis.AddFlags(fs, prefixes...)
}

// Validate validates the cache options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Enabled && o.Redis != nil {
		errs = append(errs, o.Redis.Validate()...)
	}
	return errs
}

// Complete completes the cache options with defaults.
func (o *Options) Complete() error {
	if o.Redis == nil {
		o.Redis = redisopts.NewOptions()
	}
	return o.Redis.Complete()
}

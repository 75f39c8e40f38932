// Package options defines the shared options interface and flag helpers.
package options

import (
	"strings"

	"github.com/spf13/pflag"
)

// Join concatenates prefixes with "." and appends a trailing "." when the
// result is non-empty, producing flag names like "mcq.top-k" or
// "server.mcq.top-k".
func Join(prefixes ...string) string {
	joined := strings.Join(prefixes, ".")
	if joined != "" {
		joined += "."
	}
	return joined
}

// IOptions is implemented by every option group.
type IOptions interface {
	// Validate checks the option values and may normalize them.
	Validate() []error

	// AddFlags registers the group's flags, optionally under prefixes.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}

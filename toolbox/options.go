package toolbox

import "github.com/Ygeth/adkProject/logging"

// Options configure the toolbox tools.
type Options struct {
	Logger logging.Logger
}

// WithLogger sets the logger used by the tools.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

package config

import "github.com/spf13/pflag"

// FlagSource exposes explicitly set command line flags as config keys.
// Only flags the user changed are returned, so flag defaults never mask file values.
type FlagSource struct {
	flags    *pflag.FlagSet
	mapping  map[string]string // flag name -> config key
	priority int
}

// NewFlagSource maps flag names to config keys, e.g. {"addr": "http.addr"}
func NewFlagSource(flags *pflag.FlagSet, mapping map[string]string, priority int) *FlagSource {
	return &FlagSource{flags: flags, mapping: mapping, priority: priority}
}

func (s *FlagSource) Name() string { return "flags" }

func (s *FlagSource) Priority() int { return s.priority }

func (s *FlagSource) Load() (map[string]any, error) {
	out := make(map[string]any)
	if s.flags == nil {
		return out, nil
	}
	s.flags.Visit(func(f *pflag.Flag) {
		if key, ok := s.mapping[f.Name]; ok {
			out[key] = f.Value.String()
		}
	})
	return out, nil
}

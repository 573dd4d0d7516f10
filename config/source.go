package config

// ConfigSource is one layer of configuration.
// Keys returned by Load are dot separated, e.g. "cache.default_ttl".
//
// Priorities used by the builder:
//   - defaults: 1
//   - config.yaml: 10
//   - {env}.yaml: 20
//   - environment variables: 50
//   - command line flags: 100
type ConfigSource interface {
	Name() string
	Priority() int
	Load() (map[string]any, error)
}

// MapSource serves a fixed map, typically built-in defaults
type MapSource struct {
	name     string
	priority int
	values   map[string]any
}

// NewMapSource accepts nested or flat maps
func NewMapSource(name string, priority int, values map[string]any) *MapSource {
	return &MapSource{name: name, priority: priority, values: values}
}

func (s *MapSource) Name() string { return "map:" + s.name }

func (s *MapSource) Priority() int { return s.priority }

func (s *MapSource) Load() (map[string]any, error) {
	return flattenMap("", s.values), nil
}

// flattenMap turns {"a": {"b": 1}} into {"a.b": 1}
func flattenMap(prefix string, data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(full, nested) {
				out[k] = v
			}
			continue
		}
		out[full] = value
	}
	return out
}

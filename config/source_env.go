package config

import (
	"os"
	"strings"
)

// EnvSource maps prefixed environment variables onto config keys.
// A double underscore separates sections and a single underscore stays in the key:
//
//	CHAT_CACHE__DEFAULT_TTL=10m  ->  cache.default_ttl
//	CHAT_JWT__SECRET=...         ->  jwt.secret
type EnvSource struct {
	prefix   string
	priority int
	bindings map[string]string // config key -> full env name
}

func NewEnvSource(prefix string, priority int) *EnvSource {
	return &EnvSource{prefix: prefix, priority: priority, bindings: make(map[string]string)}
}

// Bind maps an env var to a key explicitly, e.g. Bind("database.dsn", "DATABASE_URL")
func (s *EnvSource) Bind(key, envName string) *EnvSource {
	s.bindings[key] = envName
	return s
}

func (s *EnvSource) Name() string { return "env:" + s.prefix }

func (s *EnvSource) Priority() int { return s.priority }

func (s *EnvSource) Load() (map[string]any, error) {
	out := make(map[string]any)

	if s.prefix != "" {
		prefix := s.prefix + "_"
		for _, kv := range os.Environ() {
			name, value, ok := strings.Cut(kv, "=")
			if !ok || !strings.HasPrefix(name, prefix) {
				continue
			}
			key := strings.ToLower(strings.TrimPrefix(name, prefix))
			out[strings.ReplaceAll(key, "__", ".")] = value
		}
	}

	for key, envName := range s.bindings {
		if value, ok := os.LookupEnv(envName); ok {
			out[key] = value
		}
	}
	return out, nil
}

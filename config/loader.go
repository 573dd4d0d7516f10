package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Loader merges every source by priority into a viper instance
type Loader struct {
	sources     []ConfigSource
	merged      map[string]any
	v           *viper.Viper
	loadedFiles []string
}

func NewLoader() *Loader {
	return &Loader{
		merged: make(map[string]any),
		v:      viper.New(),
	}
}

// AddSource registers a layer; call Load afterwards
func (l *Loader) AddSource(source ConfigSource) *Loader {
	l.sources = append(l.sources, source)
	return l
}

// Load reads every source from low to high priority; later layers override earlier keys
func (l *Loader) Load() error {
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	merged := make(map[string]any)
	var files []string
	for _, source := range l.sources {
		data, err := source.Load()
		if err != nil {
			return fmt.Errorf("load config source %s: %w", source.Name(), err)
		}
		if fs, ok := source.(*FileSource); ok && len(data) > 0 {
			files = append(files, fs.Path())
		}
		for k, v := range data {
			merged[k] = v
		}
	}

	v := viper.New()
	for key, value := range unflatten(merged) {
		v.Set(key, value)
	}
	l.merged, l.v, l.loadedFiles = merged, v, files
	return nil
}

// Unmarshal decodes the merged tree into out (mapstructure tags)
func (l *Loader) Unmarshal(out any) error {
	return l.v.Unmarshal(out)
}

// UnmarshalKey decodes a single section
func (l *Loader) UnmarshalKey(key string, out any) error {
	return l.v.UnmarshalKey(key, out)
}

func (l *Loader) Get(key string) any          { return l.v.Get(key) }
func (l *Loader) GetString(key string) string { return l.v.GetString(key) }
func (l *Loader) GetInt(key string) int       { return l.v.GetInt(key) }
func (l *Loader) GetBool(key string) bool     { return l.v.GetBool(key) }
func (l *Loader) IsSet(key string) bool       { return l.v.IsSet(key) }

// LoadedFiles lists config files that contributed at least one key
func (l *Loader) LoadedFiles() []string {
	return l.loadedFiles
}

// Viper exposes the underlying instance
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// unflatten turns {"a.b": 1} into {"a": {"b": 1}}; a scalar is replaced when a deeper key needs its slot
func unflatten(flat map[string]any) map[string]any {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any)
	for _, key := range keys {
		parts := strings.Split(key, ".")
		cur := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := cur[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				cur[p] = next
			}
			cur = next
		}
		cur[parts[len(parts)-1]] = flat[key]
	}
	return out
}

package config

import "time"

// ProviderConfig is the narrow configuration shape every pluggable backend
// factory (llm.Factory, embedding providers, vectorstore providers, memory
// providers, ...) accepts: the handful of fields nearly every provider
// needs, plus an open Options bag for the rest.
type ProviderConfig struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Options map[string]any
}

// GetOption reads key from cfg.Options and type-asserts it to T. ok is false
// if the key is absent or holds a value of a different type.
func GetOption[T any](cfg ProviderConfig, key string) (T, bool) {
	var zero T
	if cfg.Options == nil {
		return zero, false
	}
	v, ok := cfg.Options[key]
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

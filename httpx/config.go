package httpx

// ErrorLoggingConfig controls how HandleError logs failed requests
type ErrorLoggingConfig struct {
	Enable bool `mapstructure:"enable" json:"enable"`

	// IgnoreHTTPStatus lists statuses that are never logged, e.g. 401 and 404
	IgnoreHTTPStatus []int `mapstructure:"ignore_http_status" json:"ignore_http_status"`

	// FullErrorChain adds the wrapped cause to the log entry
	FullErrorChain bool `mapstructure:"full_error_chain" json:"full_error_chain"`

	// LogLevel for client errors: error, warn or info. 5xx always logs at error.
	LogLevel string `mapstructure:"log_level" json:"log_level"`
}

func DefaultErrorLoggingConfig() ErrorLoggingConfig {
	return ErrorLoggingConfig{
		Enable:           true,
		IgnoreHTTPStatus: []int{401, 404},
		FullErrorChain:   true,
		LogLevel:         "warn",
	}
}

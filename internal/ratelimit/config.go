package ratelimit

// Config holds rate limiting configuration
type Config struct {
	Enabled bool        `mapstructure:"enabled"`
	Global  LimitConfig `mapstructure:"global"`
	Tools   []ToolLimit `mapstructure:"resources"`
}

// LimitConfig defines rate limit parameters
type LimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

// ToolLimit defines a rate limit scoped to one of the eight RBAC resource
// categories a Token governs (see internal/token.Resource).
type ToolLimit struct {
	Name              string  `mapstructure:"name"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

// DefaultConfig returns the default rate limiting configuration: a generous
// global bucket, with search and vector mutation held tighter since they're
// the operations an ANN rebuild or BM25 rerank makes expensive.
func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		Global: LimitConfig{
			RequestsPerSecond: 100,
			BurstSize:         200,
		},
		Tools: []ToolLimit{
			{
				Name:              "search",
				RequestsPerSecond: 20,
				BurstSize:         40,
			},
			{
				Name:              "vector",
				RequestsPerSecond: 30,
				BurstSize:         60,
			},
			{
				Name:              "snapshot",
				RequestsPerSecond: 0.1, // 1 every 10 seconds
				BurstSize:         2,
			},
			{
				Name:              "space",
				RequestsPerSecond: 5,
				BurstSize:         10,
			},
			{
				Name:              "version",
				RequestsPerSecond: 5,
				BurstSize:         10,
			},
		},
	}
}

// GetToolLimit returns the limit configuration for a specific resource
// category. Returns nil if no specific limit is configured for it.
func (c *Config) GetToolLimit(toolName string) *ToolLimit {
	for _, tool := range c.Tools {
		if tool.Name == toolName {
			return &tool
		}
	}
	return nil
}

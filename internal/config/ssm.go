package config

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// SSMConfigLoader handles loading configuration from SSM Parameter Store
type SSMConfigLoader struct {
	client *ssm.Client
}

// NewSSMConfigLoader creates a new SSM configuration loader
func NewSSMConfigLoader(ctx context.Context) (*SSMConfigLoader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	return &SSMConfigLoader{
		client: ssm.NewFromConfig(cfg),
	}, nil
}

// LoadConfig loads configuration from SSM Parameter Store
func (s *SSMConfigLoader) LoadConfig(ctx context.Context) (*Config, error) {
	// Define parameter names
	parameterNames := []string{
		"/creatorstats/stores/postgres_url",
		"/creatorstats/stores/snapshot_table",
		"/creatorstats/engine/min_account_age_days",
		"/creatorstats/engine/bot_risk_threshold",
		"/creatorstats/engine/top_n",
		"/creatorstats/engine/top_pct",
		"/creatorstats/engine/fallback_window_days",
		"/creatorstats/engine/fallback_min_score",
		"/creatorstats/engine/fallback_percentile",
		"/creatorstats/jobs/smartrank_function",
		"/creatorstats/jobs/snapshot_function",
	}

	// Get parameters from SSM
	result, err := s.client.GetParameters(ctx, &ssm.GetParametersInput{
		Names:          parameterNames,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}

	// Create parameter map; parameters missing from the store fall back
	// to defaults below rather than failing the load
	params := make(map[string]string)
	for _, param := range result.Parameters {
		if param.Name != nil && param.Value != nil {
			params[*param.Name] = *param.Value
		}
	}

	// Validate required parameters
	if url, ok := params["/creatorstats/stores/postgres_url"]; !ok || url == "" {
		return nil, &ConfigError{
			Message: "Missing required parameter: /creatorstats/stores/postgres_url",
		}
	}

	cfg := &Config{
		Engine: EngineConfig{
			MinAccountAgeDays:  parseIntWithDefault(params["/creatorstats/engine/min_account_age_days"], 90),
			BotRiskThreshold:   parseFloatWithDefault(params["/creatorstats/engine/bot_risk_threshold"], 0.6),
			TopN:               parseIntWithDefault(params["/creatorstats/engine/top_n"], 500),
			TopPct:             parseFloatWithDefault(params["/creatorstats/engine/top_pct"], 2.0),
			FallbackWindowDays: parseIntWithDefault(params["/creatorstats/engine/fallback_window_days"], 30),
			FallbackMinScore:   parseFloatWithDefault(params["/creatorstats/engine/fallback_min_score"], 100),
			FallbackPercentile: parseFloatWithDefault(params["/creatorstats/engine/fallback_percentile"], 80),
		},
		Stores: StoresConfig{
			PostgresURL:   params["/creatorstats/stores/postgres_url"],
			SnapshotTable: params["/creatorstats/stores/snapshot_table"],
		},
		Jobs: JobsConfig{
			SmartRankFunction: params["/creatorstats/jobs/smartrank_function"],
			SnapshotFunction:  params["/creatorstats/jobs/snapshot_function"],
		},
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseIntWithDefault parses an integer with a default value
func parseIntWithDefault(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}

// parseFloatWithDefault parses a float with a default value
func parseFloatWithDefault(value string, defaultValue float64) float64 {
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return parsed
}

// ConfigError represents a configuration error
type ConfigError struct {
	Message string
	Details []string
}

func (e *ConfigError) Error() string {
	if len(e.Details) > 0 {
		return e.Message + ": " + strconv.Itoa(len(e.Details)) + " invalid parameters"
	}
	return e.Message
}

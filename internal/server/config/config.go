// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the FinSight backend.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP API.
//   - DataDir: directory holding the JSON credential/session store.
//   - DatabaseDSN: optional PostgreSQL DSN (pgx); empty keeps the file backend.
//   - SessionTTL: lifetime of login sessions.
//   - AnalysisAPIBaseURL: base URL of the remote spreadsheet analysis service.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint: report storage settings.
//   - LogLevel: slog level name (debug, info, warn, error).
type Config struct {
	EndpointAddrHTTP   string
	DataDir            string
	DatabaseDSN        string
	SessionTTL         time.Duration
	AnalysisAPIBaseURL string
	S3RootUser         string
	S3RootPassword     string
	S3Bucket           string
	S3Region           string
	S3BaseEndpoint     string
	LogLevel           string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.DataDir = "data"
	c.DatabaseDSN = ""
	c.SessionTTL = 24 * time.Hour
	c.AnalysisAPIBaseURL = "http://127.0.0.1:8006"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "finsight-reports"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

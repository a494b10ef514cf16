package config

import (
	"encoding/json"
	"os"

	"github.com/finsight-app/finsight/internal/flagx"
	"github.com/finsight-app/finsight/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "24h"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
//
// A config file must set every field: all values are copied over the
// defaults unconditionally, so a key left out of the file becomes the
// zero value (e.g. an omitted session_ttl gives a TTL of 0), not the
// default.
type JsonConfig struct {
	EndpointAddrHTTP   string         `json:"endpoint_addr_http"`
	DataDir            string         `json:"data_dir"`
	DatabaseDSN        string         `json:"database_dsn"`
	SessionTTL         timex.Duration `json:"session_ttl"`
	AnalysisAPIBaseURL string         `json:"analysis_api_base_url"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	LogLevel           string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c or -config command-line flags; if neither
// is set, no JSON is loaded. If the file cannot be read or contains invalid
// JSON, the function panics: a requested-but-broken config file should stop
// startup rather than run with silent defaults.
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DataDir = c.DataDir
	config.DatabaseDSN = c.DatabaseDSN
	config.SessionTTL = c.SessionTTL.Duration
	config.AnalysisAPIBaseURL = c.AnalysisAPIBaseURL
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.LogLevel = c.LogLevel
}

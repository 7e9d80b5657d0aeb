package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/traveldiary/internal/flagx"
	"github.com/dmitrijs2005/traveldiary/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// use timex.Duration so files may say "15s" or give integer nanoseconds.
type JsonConfig struct {
	Endpoint          string `json:"endpoint"`
	Platform          string `json:"platform"`
	Project           string `json:"project"`
	Database          string `json:"database"`
	UsersCollection   string `json:"users_collection"`
	EntriesCollection string `json:"entries_collection"`
	TipsCollection    string `json:"tips_collection"`

	RequestTimeout   timex.Duration `json:"request_timeout"`
	BreakerThreshold uint32         `json:"breaker_threshold"`
	BreakerTimeout   timex.Duration `json:"breaker_timeout"`
	ListLimit        int            `json:"list_limit"`

	DBPath    string `json:"db_path"`
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`

	UploadImages    bool   `json:"upload_images"`
	S3Bucket        string `json:"s3_bucket"`
	S3Region        string `json:"s3_region"`
	S3BaseEndpoint  string `json:"s3_base_endpoint"`
	S3AccessKey     string `json:"s3_access_key"`
	S3SecretKey     string `json:"s3_secret_key"`
	S3PublicBaseURL string `json:"s3_public_base_url"`
}

// parseJson overlays Config with the JSON file named by -c or -config.
// Keys missing from the file keep their current values.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	jc := fromConfig(cfg)
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	jc.apply(cfg)
	return nil
}

func fromConfig(c *Config) JsonConfig {
	return JsonConfig{
		Endpoint:          c.Endpoint,
		Platform:          c.Platform,
		Project:           c.Project,
		Database:          c.Database,
		UsersCollection:   c.UsersCollection,
		EntriesCollection: c.EntriesCollection,
		TipsCollection:    c.TipsCollection,
		RequestTimeout:    timex.Duration{Duration: c.RequestTimeout},
		BreakerThreshold:  c.BreakerThreshold,
		BreakerTimeout:    timex.Duration{Duration: c.BreakerTimeout},
		ListLimit:         c.ListLimit,
		DBPath:            c.DBPath,
		LogLevel:          c.LogLevel,
		LogFormat:         c.LogFormat,
		UploadImages:      c.UploadImages,
		S3Bucket:          c.S3Bucket,
		S3Region:          c.S3Region,
		S3BaseEndpoint:    c.S3BaseEndpoint,
		S3AccessKey:       c.S3AccessKey,
		S3SecretKey:       c.S3SecretKey,
		S3PublicBaseURL:   c.S3PublicBaseURL,
	}
}

func (jc JsonConfig) apply(c *Config) {
	c.Endpoint = jc.Endpoint
	c.Platform = jc.Platform
	c.Project = jc.Project
	c.Database = jc.Database
	c.UsersCollection = jc.UsersCollection
	c.EntriesCollection = jc.EntriesCollection
	c.TipsCollection = jc.TipsCollection
	c.RequestTimeout = jc.RequestTimeout.Duration
	c.BreakerThreshold = jc.BreakerThreshold
	c.BreakerTimeout = jc.BreakerTimeout.Duration
	c.ListLimit = jc.ListLimit
	c.DBPath = jc.DBPath
	c.LogLevel = jc.LogLevel
	c.LogFormat = jc.LogFormat
	c.UploadImages = jc.UploadImages
	c.S3Bucket = jc.S3Bucket
	c.S3Region = jc.S3Region
	c.S3BaseEndpoint = jc.S3BaseEndpoint
	c.S3AccessKey = jc.S3AccessKey
	c.S3SecretKey = jc.S3SecretKey
	c.S3PublicBaseURL = jc.S3PublicBaseURL
}

package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the travel diary client.
//
// Backend identifiers (Project, Database and the three collections) must
// match the backend project the client talks to. Upload settings only
// matter when UploadImages is set.
type Config struct {
	Endpoint          string
	Platform          string
	Project           string
	Database          string
	UsersCollection   string
	EntriesCollection string
	TipsCollection    string

	RequestTimeout   time.Duration
	BreakerThreshold uint32
	BreakerTimeout   time.Duration
	ListLimit        int

	DBPath    string
	LogLevel  string
	LogFormat string

	UploadImages    bool
	S3Bucket        string
	S3Region        string
	S3BaseEndpoint  string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
}

// LoadDefaults populates c with the settings of the hosted project.
func (c *Config) LoadDefaults() {
	c.Endpoint = "https://cloud.appwrite.io/v1"
	c.Platform = "com.daddycoders.travel_diary"
	c.Project = "669a3bc20008a25accc9"
	c.Database = "669a3e54001a4306fea8"
	c.UsersCollection = "669a3e8c0029c962162a"
	c.EntriesCollection = "669a40c60001336e9343"
	c.TipsCollection = "669a40d5001d42fdeeb2"

	c.RequestTimeout = 15 * time.Second
	c.BreakerThreshold = 5
	c.BreakerTimeout = 30 * time.Second
	c.ListLimit = 100

	c.DBPath = "traveldiary.db"
	c.LogLevel = "info"
	c.LogFormat = "text"

	c.S3Region = "us-east-1"
}

// Load builds a Config from defaults, then the JSON file named by -c or
// -config in args, then flags in args. Later sources win.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"giphygetter/internal/models"
)

// SeedConfig is the optional seed file applied at startup. It lets an
// operator pre-pin keywords and pre-ban gifs without going through Slack.
type SeedConfig struct {
	Reserves []models.Reservation `yaml:"reserves"`
	Bans     []string             `yaml:"bans"`
}

// LoadSeedConfig loads the seed file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the file doesn't exist.
func LoadSeedConfig() (*SeedConfig, error) {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	return LoadSeedConfigFile(path)
}

// LoadSeedConfigFile loads the seed file at path.
func LoadSeedConfigFile(path string) (*SeedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Seed file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg SeedConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Drop incomplete entries
	reserves := cfg.Reserves[:0]
	for _, r := range cfg.Reserves {
		if r.Keyword != "" && r.URL != "" {
			reserves = append(reserves, r)
		}
	}
	cfg.Reserves = reserves

	return &cfg, nil
}

// IsEmpty reports whether the seed has nothing to apply.
func (c *SeedConfig) IsEmpty() bool {
	return c == nil || (len(c.Reserves) == 0 && len(c.Bans) == 0)
}

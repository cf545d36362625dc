package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENV", "SERVER_ADDR", "GIPHY_IMAGE_SIZE", "TEMP_DIR", "DB_CONNECT_BACKOFF", "GIPHY_TIMEOUT", "RATE_LIMIT_MAX"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.ServerAddr != ":3000" {
		t.Errorf("ServerAddr = %q", cfg.ServerAddr)
	}
	if cfg.GiphyImageSize != "fixed_height" {
		t.Errorf("GiphyImageSize = %q, want fixed_height", cfg.GiphyImageSize)
	}
	if cfg.TempDir != "/var/tmp/" {
		t.Errorf("TempDir = %q", cfg.TempDir)
	}
	if cfg.DBConnectBackoff != time.Second {
		t.Errorf("DBConnectBackoff = %v, want 1s", cfg.DBConnectBackoff)
	}
	if cfg.GiphyTimeout != 5*time.Second {
		t.Errorf("GiphyTimeout = %v, want 5s", cfg.GiphyTimeout)
	}
	if cfg.RateLimitMax != 100 {
		t.Errorf("RateLimitMax = %d, want 100", cfg.RateLimitMax)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("GIPHY_IMAGE_SIZE", "original")
	t.Setenv("GIPHY_TIMEOUT", "2s")
	t.Setenv("GG_CLIENT_ID", "id")
	t.Setenv("GG_CLIENT_SECRET", "secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.IsDev() {
		t.Error("IsDev() = true for production")
	}
	if cfg.GiphyImageSize != "original" {
		t.Errorf("GiphyImageSize = %q", cfg.GiphyImageSize)
	}
	if cfg.GiphyTimeout != 2*time.Second {
		t.Errorf("GiphyTimeout = %v", cfg.GiphyTimeout)
	}
	if !cfg.IsOAuthEnabled() {
		t.Error("IsOAuthEnabled() = false")
	}
	if !cfg.IsRedisEnabled() {
		t.Error("IsRedisEnabled() = false")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("GIPHY_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Error("Load() with invalid duration should fail")
	}
}

func TestDatabaseDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "explicit url wins",
			cfg:  Config{DatabaseURL: "postgres://u:p@db:5432/x", DBHost: "other"},
			want: "postgres://u:p@db:5432/x",
		},
		{
			name: "built from parts",
			cfg:  Config{DBHost: "db:5432", DBUser: "gg", DBPassword: "pw", DBName: "giphygetter"},
			want: "postgres://gg:pw@db:5432/giphygetter?sslmode=disable",
		},
		{
			name: "password is escaped",
			cfg:  Config{DBHost: "db", DBUser: "gg", DBPassword: "p@ss/word", DBName: "giphygetter"},
			want: "postgres://gg:p%40ss%2Fword@db/giphygetter?sslmode=disable",
		},
		{
			name: "user without password",
			cfg:  Config{DBHost: "db", DBUser: "gg", DBName: "giphygetter"},
			want: "postgres://gg@db/giphygetter?sslmode=disable",
		},
		{
			name: "nothing configured",
			cfg:  Config{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.DatabaseDSN(); got != tt.want {
				t.Errorf("DatabaseDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadSeedConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
reserves:
  - keyword: party
    url: https://media.giphy.com/party.gif
  - keyword: incomplete
bans:
  - https://media.giphy.com/bad.gif
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	seed, err := LoadSeedConfigFile(path)
	if err != nil {
		t.Fatalf("LoadSeedConfigFile() error = %v", err)
	}
	if len(seed.Reserves) != 1 || seed.Reserves[0].Keyword != "party" {
		t.Errorf("Reserves = %+v, want only the complete entry", seed.Reserves)
	}
	if len(seed.Bans) != 1 || seed.Bans[0] != "https://media.giphy.com/bad.gif" {
		t.Errorf("Bans = %+v", seed.Bans)
	}
	if seed.IsEmpty() {
		t.Error("IsEmpty() = true")
	}
}

func TestLoadSeedConfigFile_Missing(t *testing.T) {
	seed, err := LoadSeedConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadSeedConfigFile() error = %v", err)
	}
	if seed != nil {
		t.Errorf("LoadSeedConfigFile() = %+v, want nil", seed)
	}
	if !seed.IsEmpty() {
		t.Error("nil seed should be empty")
	}
}

func TestLoadSeedConfigFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("reserves: [unclosed"), 0o600)

	if _, err := LoadSeedConfigFile(path); err == nil {
		t.Error("LoadSeedConfigFile() with invalid yaml should fail")
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
		// debug | info | warn | error
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Data struct {
		// Dir contiene db.json, regions.json, versions.json y users.json.
		// Cada path individual puede overridearse por separado.
		Dir          string `yaml:"dir"`
		DBPath       string `yaml:"db_path"`
		RegionsPath  string `yaml:"regions_path"`
		VersionsPath string `yaml:"versions_path"`
		UsersPath    string `yaml:"users_path"`
	} `yaml:"data"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		// TokenTTLRaw acepta formato time.ParseDuration ("1h", "30m").
		TokenTTLRaw string        `yaml:"token_ttl"`
		TokenTTL    time.Duration `yaml:"-"`
	} `yaml:"auth"`

	Watcher struct {
		Enabled     bool          `yaml:"enabled"`
		DebounceRaw string        `yaml:"debounce"`
		Debounce    time.Duration `yaml:"-"`
	} `yaml:"watcher"`

	Simulator struct {
		// Delay fijo antes de la transición pending -> running.
		ProvisionDelayRaw string        `yaml:"provision_delay"`
		ProvisionDelay    time.Duration `yaml:"-"`
	} `yaml:"simulator"`
}

// Load lee el archivo YAML (si path no está vacío) y aplica defaults y
// overrides de entorno. path=="" arranca con defaults puros.
func Load(path string) (*Config, error) {
	var c Config
	c.Watcher.Enabled = true

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":3001"
	}
	if len(c.Server.CORSAllowedOrigins) == 0 {
		c.Server.CORSAllowedOrigins = []string{"http://localhost:3000"}
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Data.DBPath == "" {
		c.Data.DBPath = filepath.Join(c.Data.Dir, "db.json")
	}
	if c.Data.RegionsPath == "" {
		c.Data.RegionsPath = filepath.Join(c.Data.Dir, "regions.json")
	}
	if c.Data.VersionsPath == "" {
		c.Data.VersionsPath = filepath.Join(c.Data.Dir, "versions.json")
	}
	if c.Data.UsersPath == "" {
		c.Data.UsersPath = filepath.Join(c.Data.Dir, "users.json")
	}
	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = "your-secret-key-change-in-production"
	}
	if c.Auth.TokenTTLRaw == "" {
		c.Auth.TokenTTLRaw = "1h"
	}
	if c.Watcher.DebounceRaw == "" {
		c.Watcher.DebounceRaw = "200ms"
	}
	if c.Simulator.ProvisionDelayRaw == "" {
		c.Simulator.ProvisionDelayRaw = "5s"
	}

	var err error
	if c.Auth.TokenTTL, err = time.ParseDuration(c.Auth.TokenTTLRaw); err != nil {
		return nil, fmt.Errorf("auth.token_ttl: %w", err)
	}
	if c.Watcher.Debounce, err = time.ParseDuration(c.Watcher.DebounceRaw); err != nil {
		return nil, fmt.Errorf("watcher.debounce: %w", err)
	}
	if c.Simulator.ProvisionDelay, err = time.ParseDuration(c.Simulator.ProvisionDelayRaw); err != nil {
		return nil, fmt.Errorf("simulator.provision_delay: %w", err)
	}

	// overrides por entorno (.env lo carga main con godotenv)
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = v
	}
	if v, ok := getEnvStr("ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("JWT_SECRET"); ok {
		c.Auth.JWTSecret = v
	}
	if v, ok := getEnvStr("DATA_DIR"); ok {
		c.Data.Dir = v
		c.Data.DBPath = filepath.Join(v, "db.json")
		c.Data.RegionsPath = filepath.Join(v, "regions.json")
		c.Data.VersionsPath = filepath.Join(v, "versions.json")
		c.Data.UsersPath = filepath.Join(v, "users.json")
	}
	if v, ok := getEnvStr("FRONTEND_URL"); ok {
		c.Server.CORSAllowedOrigins = []string{v}
	}
	if v, ok := getEnvDur("TOKEN_TTL"); ok {
		c.Auth.TokenTTL = v
	}

	return &c, nil
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(s); err == nil {
			return d, true
		}
	}
	return 0, false
}

package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	APIConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	MirrorConfig struct {
		Driver        string // file | redis | memory
		Dir           string
		RedisAddr     string
		RedisPassword string
	}

	RosterConfig struct {
		MirrorKey    string
		ItemsPerPage int
	}

	ServerConfig struct {
		Address            string
		SecretKey          string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
		Username           string
		Password           string
	}

	DatabaseConfig struct {
		URL string
	}

	Config struct {
		AppName      string
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		RollbarToken string
		API          APIConfig
		Mirror       MirrorConfig
		Roster       RosterConfig
		Server       ServerConfig
		Database     DatabaseConfig
	}
)

// NewConfig loads the configuration from the environment (and optional config/.env.<env> file).
func NewConfig() (*Config, error) {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("appName", "Masomo")
	conf.SetDefault("build", "dev")
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("api.baseURL", "http://localhost:8000")
	conf.SetDefault("api.timeout", 10*time.Second)
	conf.SetDefault("mirror.driver", "file")
	conf.SetDefault("mirror.dir", filepath.Join(os.TempDir(), "masomo"))
	conf.SetDefault("mirror.redisAddr", "127.0.0.1:6379")
	conf.SetDefault("mirror.redisPassword", "")
	conf.SetDefault("roster.mirrorKey", "students")
	conf.SetDefault("roster.itemsPerPage", 10)
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.shutdownTimeout", 10*time.Second)
	conf.SetDefault("server.username", "admin")
	conf.SetDefault("server.password", "admin")
	conf.SetDefault("database.url", "")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", dotEnvPath)
	}
	conf.AutomaticEnv()

	cfg := &Config{
		AppName:      conf.GetString("appName"),
		Env:          env,
		Build:        conf.GetString("build"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		RollbarToken: conf.GetString("rollbarToken"),
		API: APIConfig{
			BaseURL: strings.TrimRight(conf.GetString("api.baseURL"), "/"),
			Timeout: conf.GetDuration("api.timeout"),
		},
		Mirror: MirrorConfig{
			Driver:        strings.ToLower(conf.GetString("mirror.driver")),
			Dir:           conf.GetString("mirror.dir"),
			RedisAddr:     conf.GetString("mirror.redisAddr"),
			RedisPassword: conf.GetString("mirror.redisPassword"),
		},
		Roster: RosterConfig{
			MirrorKey:    conf.GetString("roster.mirrorKey"),
			ItemsPerPage: conf.GetInt("roster.itemsPerPage"),
		},
		Server: ServerConfig{
			Address:            conf.GetString("server.address"),
			SecretKey:          conf.GetString("server.secretKey"),
			JWTExpirationDelta: conf.GetDuration("server.jwtExpirationDelta"),
			ShutdownTimeout:    conf.GetDuration("server.shutdownTimeout"),
			Username:           conf.GetString("server.username"),
			Password:           conf.GetString("server.password"),
		},
		Database: DatabaseConfig{
			URL: conf.GetString("database.url"),
		},
	}
	if cfg.Roster.ItemsPerPage < 1 {
		return nil, errors.Errorf("roster.itemsPerPage must be >= 1 (got %d)", cfg.Roster.ItemsPerPage)
	}
	return cfg, nil
}

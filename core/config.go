package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database engines
const (
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"
)

type (
	Config struct {
		AppName      string
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		Debug        bool
		TestMode     bool
		WorkDir      string
		RollbarToken string

		Server struct {
			Host               string
			Address            string
			DebugAddress       string
			ReadTimeout        time.Duration
			WriteTimeout       time.Duration
			ShutdownTimeout    time.Duration
			DisableRequestLogs bool
		}

		Database struct {
			Engine     string
			Path       string // sqlite only
			Host       string
			Port       int
			Name       string
			User       string
			Password   string
			DisableTLS bool
		}

		Class struct {
			CodeMaxAttempts int
		}
	}
)

// DatabaseAddress returns the "host:port" of a networked database server.
func (c Config) DatabaseAddress() string {
	return fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port)
}

// NewConfig loads the configuration from defaults, the optional `config/.env.<env>` file
// and environment variables prefixed with the env name (eg. DEV_DATABASE_ENGINE).
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Darasa")
	v.SetDefault("build", "develop")
	v.SetDefault("workDir", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 5*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableRequestLogs", false)
	v.SetDefault("database.engine", EngineSQLite)
	v.SetDefault("database.path", "darasa.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "darasa")
	v.SetDefault("database.user", "darasa")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", false)
	v.SetDefault("class.codeMaxAttempts", 5)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	workDir := os.Getenv("WORKDIR")
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			log.Fatalf("config.Getwd: %v", err)
		}
		workDir = wd
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := new(Config)
	conf.AppName = v.GetString("appName")
	conf.Env = env
	conf.Build = v.GetString("build")
	conf.Debug = v.GetBool("debug")
	conf.TestMode = v.GetBool("testMode")
	conf.WorkDir = workDir
	conf.RollbarToken = v.GetString("rollbarToken")

	conf.Server.Host = v.GetString("server.host")
	conf.Server.Address = v.GetString("server.address")
	conf.Server.DebugAddress = v.GetString("server.debugAddress")
	conf.Server.ReadTimeout = v.GetDuration("server.readTimeout")
	conf.Server.WriteTimeout = v.GetDuration("server.writeTimeout")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")
	conf.Server.DisableRequestLogs = v.GetBool("server.disableRequestLogs")

	conf.Database.Engine = strings.ToLower(v.GetString("database.engine"))
	conf.Database.Path = v.GetString("database.path")
	conf.Database.Host = v.GetString("database.host")
	conf.Database.Port = v.GetInt("database.port")
	conf.Database.Name = v.GetString("database.name")
	conf.Database.User = v.GetString("database.user")
	conf.Database.Password = v.GetString("database.password")
	conf.Database.DisableTLS = v.GetBool("database.disableTLS")
	if p := conf.Database.Path; p != "" && !strings.HasPrefix(p, ":") && !filepath.IsAbs(p) {
		conf.Database.Path = filepath.Join(workDir, conf.Database.Path)
	}

	conf.Class.CodeMaxAttempts = v.GetInt("class.codeMaxAttempts")
	return conf
}

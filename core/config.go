package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Name          string
		DisableTLS    bool
		MaxOpenConns  int
	}

	ServerConfig struct {
		Address         string
		DebugAddress    string
		ShutdownTimeout time.Duration
		SessionTTL      time.Duration
		DisableReqLogs  bool
	}

	Config struct {
		AppName          string
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		SecretKey        string
		RollbarToken     string
		SendgridApiKey   string
		DefaultFromEmail mail.Address
		SupportEmail     mail.Address // reply-to of outgoing mail
		ConsoleBaseURL   string
		Database         DatabaseConfig
		Server           ServerConfig
	}
)

func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "LMS Admin")
	conf.SetDefault("build", "develop")
	conf.SetDefault("secretKey", "k7c#w2v!p0a9)r$m4x@f1_q8z^hn6u%eb3ty(j5=sl&gdio")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("defaultFromName", "LMS Admin")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("supportName", "LMS Support")
	conf.SetDefault("supportEmail", "support@localhost")
	conf.SetDefault("consoleBaseURL", "http://localhost:8000")

	conf.SetDefault("dbEngine", "postgres")
	conf.SetDefault("dbHost", "localhost")
	conf.SetDefault("dbPort", 5432)
	conf.SetDefault("dbUser", "lms")
	conf.SetDefault("dbPassword", "lms")
	conf.SetDefault("dbAdminUser", "postgres")
	conf.SetDefault("dbAdminPassword", "postgres")
	conf.SetDefault("dbName", "university_db")
	conf.SetDefault("dbDisableTLS", true)
	conf.SetDefault("dbMaxOpenConns", 10)

	conf.SetDefault("serverAddress", ":8000")
	conf.SetDefault("serverDebugAddress", ":4000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("serverSessionTTL", 8*time.Hour)
	conf.SetDefault("serverDisableReqLogs", false)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch strings.ToUpper(env) {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	env = strings.ToUpper(env)
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(configDir(), ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:        conf.GetString("appName"),
		Env:            env,
		Build:          conf.GetString("build"),
		Debug:          conf.GetBool("debug"),
		TestMode:       conf.GetBool("testMode"),
		SecretKey:      conf.GetString("secretKey"),
		RollbarToken:   conf.GetString("rollbarToken"),
		SendgridApiKey: conf.GetString("sendgridApiKey"),
		DefaultFromEmail: mail.Address{
			Name:    conf.GetString("defaultFromName"),
			Address: conf.GetString("defaultFromEmail"),
		},
		SupportEmail: mail.Address{
			Name:    conf.GetString("supportName"),
			Address: conf.GetString("supportEmail"),
		},
		ConsoleBaseURL: strings.TrimSuffix(conf.GetString("consoleBaseURL"), "/"),
		Database: DatabaseConfig{
			Engine:        conf.GetString("dbEngine"),
			Host:          conf.GetString("dbHost"),
			Port:          conf.GetInt("dbPort"),
			User:          conf.GetString("dbUser"),
			Password:      conf.GetString("dbPassword"),
			AdminUser:     conf.GetString("dbAdminUser"),
			AdminPassword: conf.GetString("dbAdminPassword"),
			Name:          conf.GetString("dbName"),
			DisableTLS:    conf.GetBool("dbDisableTLS"),
			MaxOpenConns:  conf.GetInt("dbMaxOpenConns"),
		},
		Server: ServerConfig{
			Address:         conf.GetString("serverAddress"),
			DebugAddress:    conf.GetString("serverDebugAddress"),
			ShutdownTimeout: conf.GetDuration("serverShutdownTimeout"),
			SessionTTL:      conf.GetDuration("serverSessionTTL"),
			DisableReqLogs:  conf.GetBool("serverDisableReqLogs"),
		},
	}
}

// configDir returns the directory holding the .env files: $CONFIG_DIR, or ./config.
func configDir() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	return filepath.Join(wd, "config")
}

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

var Conf *Config

type (
	DatabaseConfig struct {
		Engine     string
		Name       string
		User       string
		Password   string
		Host       string
		Port       int
		DisableTLS bool
	}

	ServerConfig struct {
		Host string
		Port int
	}

	Config struct {
		Env      string // DEV (local; default), TEST, QA, PROD
		Debug    bool
		TestMode bool
		AppName  string
		Build    string
		WorkDir  string

		Server ServerConfig

		// Database is the evaluation store: system of record, read/write.
		Database DatabaseConfig
		// AcademicDatabase is the institutional record store: read-only.
		AcademicDatabase DatabaseConfig

		DashboardCacheTTL time.Duration
		LookupCacheTTL    time.Duration

		DefaultFromName string
		DefaultFromAddr string
		FrontendBaseURL string
		SendgridApiKey  string
		RollbarToken    string
	}
)

func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

func init() {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Evadocente")
	v.SetDefault("defaultFromName", "Evaluación Docente")
	v.SetDefault("defaultFromAddr", "noreply@localhost")
	v.SetDefault("frontendBaseUrl", "http://localhost:3000")
	v.SetDefault("serverHost", "0.0.0.0")
	v.SetDefault("serverPort", 8000)
	v.SetDefault("dashboardCacheTtl", 2*time.Minute)
	v.SetDefault("lookupCacheTtl", 30*time.Minute)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "evadocente")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", 5432)
	v.SetDefault("dbDisableTls", true)

	v.SetDefault("academicDbEngine", "postgres")
	v.SetDefault("academicDbName", "sga")
	v.SetDefault("academicDbHost", "localhost")
	v.SetDefault("academicDbPort", 5432)
	v.SetDefault("academicDbDisableTls", true)

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = &Config{
		Env:      env,
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("testMode"),
		AppName:  v.GetString("appName"),
		Build:    v.GetString("build"),
		WorkDir:  wd,
		Server: ServerConfig{
			Host: v.GetString("serverHost"),
			Port: v.GetInt("serverPort"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("dbEngine"),
			Name:       v.GetString("dbName"),
			User:       v.GetString("dbUser"),
			Password:   v.GetString("dbPassword"),
			Host:       v.GetString("dbHost"),
			Port:       v.GetInt("dbPort"),
			DisableTLS: v.GetBool("dbDisableTls"),
		},
		AcademicDatabase: DatabaseConfig{
			Engine:     v.GetString("academicDbEngine"),
			Name:       v.GetString("academicDbName"),
			User:       v.GetString("academicDbUser"),
			Password:   v.GetString("academicDbPassword"),
			Host:       v.GetString("academicDbHost"),
			Port:       v.GetInt("academicDbPort"),
			DisableTLS: v.GetBool("academicDbDisableTls"),
		},
		DashboardCacheTTL: v.GetDuration("dashboardCacheTtl"),
		LookupCacheTTL:    v.GetDuration("lookupCacheTtl"),
		DefaultFromName:   v.GetString("defaultFromName"),
		DefaultFromAddr:   v.GetString("defaultFromAddr"),
		FrontendBaseURL:   v.GetString("frontendBaseUrl"),
		SendgridApiKey:    v.GetString("sendgridApiKey"),
		RollbarToken:      v.GetString("rollbarToken"),
	}
}

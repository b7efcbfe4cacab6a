// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and an
// optional JSON file.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevSecretKey is used when no SECRET_KEY is configured. It is only fit for
// local development.
const DevSecretKey = "hellosecret1"

// Session backends.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
	SessionCookie = "cookie"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// SecretKey signs cookie sessions.
	SecretKey string `json:"secret_key"`

	// SessionBackend is one of "memory", "redis" or "cookie".
	SessionBackend string `json:"session_backend"`

	// SessionTTL is how long a login lasts.
	SessionTTL Duration `json:"session_ttl"`

	// RedisAddr and RedisPassword are used by the redis session backend.
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`

	// BcryptCost is the password hashing work factor.
	BcryptCost int `json:"bcrypt_cost"`

	// LogLevel is a zap level name.
	LogLevel string `json:"log_level"`

	// AllowedOrigins lists origins accepted on state-changing requests.
	AllowedOrigins []string `json:"allowed_origins"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// SecureCookies sets the Secure attribute on cookies.
	SecureCookies bool `json:"secure_cookies"`
}

// Duration is a time.Duration that reads from JSON as "30m" style strings.
type Duration struct {
	time.Duration
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// defaults returns the values used when nothing else is configured.
func defaults() *Options {
	return &Options{
		Port:           "localhost:8080",
		DatabaseDSN:    "postgres:///auth_demo?sslmode=disable",
		Config:         "config.json",
		SessionBackend: SessionMemory,
		SessionTTL:     Duration{24 * time.Hour},
		RedisAddr:      "localhost:6379",
		BcryptCost:     12,
		LogLevel:       "info",
	}
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It exits the process on invalid configuration.
func Parse() *Options {
	// a missing .env file is fine
	_ = godotenv.Load()

	options, err := Load(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return options
}

// Load builds Options from defaults, then the JSON config file, then args,
// then environment variables, each layer overriding the previous one.
func Load(args []string, getenv func(string) string) (*Options, error) {
	options := defaults()

	fs := flag.NewFlagSet("gophtweeter", flag.ContinueOnError)
	configPath := fs.String("config", options.Config, "path to config file")
	fs.StringVar(configPath, "c", options.Config, "path to config file (shorthand)")
	addr := fs.String("a", "", "run on ip:port server")
	dsn := fs.String("d", "", "db address")
	backend := fs.String("s", "", "session backend: memory, redis or cookie")
	logLevel := fs.String("l", "", "log level")
	origins := fs.String("o", "", "comma-separated origins accepted on state-changing requests")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	options.Config = *configPath
	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	setString(&options.Port, *addr)
	setString(&options.DatabaseDSN, *dsn)
	setString(&options.SessionBackend, *backend)
	setString(&options.LogLevel, *logLevel)
	if *origins != "" {
		options.AllowedOrigins = splitList(*origins)
	}

	setString(&options.Port, getenv("SERVER_ADDRESS"))
	setString(&options.DatabaseDSN, getenv("DATABASE_DSN"))
	setString(&options.SecretKey, getenv("SECRET_KEY"))
	setString(&options.SessionBackend, getenv("SESSION_BACKEND"))
	setString(&options.RedisAddr, getenv("REDIS_ADDR"))
	setString(&options.RedisPassword, getenv("REDIS_PASSWORD"))
	setString(&options.LogLevel, getenv("LOG_LEVEL"))
	setString(&options.TLSCert, getenv("TLS_CERT"))
	setString(&options.TLSKey, getenv("TLS_KEY"))

	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		options.AllowedOrigins = splitList(v)
	}
	if v := getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SESSION_TTL: %w", err)
		}
		options.SessionTTL = Duration{d}
	}
	if v := getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("BCRYPT_COST: %w", err)
		}
		options.BcryptCost = n
	}
	if v := getenv("SECURE_COOKIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("SECURE_COOKIES: %w", err)
		}
		options.SecureCookies = b
	}

	if err := options.validate(); err != nil {
		return nil, err
	}
	return options, nil
}

// UsesDevSecret reports whether no secret key was configured, in which case
// DevSecretKey is in effect.
func (o *Options) UsesDevSecret() bool {
	return o.SecretKey == "" || o.SecretKey == DevSecretKey
}

// TLSEnabled reports whether both TLS files are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}

func (o *Options) validate() error {
	switch o.SessionBackend {
	case SessionMemory, SessionRedis, SessionCookie:
	default:
		return fmt.Errorf("unknown session backend %q", o.SessionBackend)
	}
	if o.SessionTTL.Duration <= 0 {
		return errors.New("session ttl must be positive")
	}
	if (o.TLSCert == "") != (o.TLSKey == "") {
		return errors.New("tls_cert and tls_key must be set together")
	}
	if o.SecretKey == "" {
		o.SecretKey = DevSecretKey
	}
	if o.TLSEnabled() {
		o.SecureCookies = true
	}
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = defaultOrigins(o.Port, o.TLSEnabled())
	}
	return nil
}

// defaultOrigins derives the origins a browser uses for the listen address.
// Wildcard and loopback hosts are reachable as both localhost and 127.0.0.1.
func defaultOrigins(addr string, tls bool) []string {
	scheme := "http"
	if tls {
		scheme = "https"
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return []string{scheme + "://" + addr}
	}
	hosts := []string{host}
	switch host {
	case "", "0.0.0.0", "::", "localhost", "127.0.0.1":
		hosts = []string{"localhost", "127.0.0.1"}
	}
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		out = append(out, scheme+"://"+net.JoinHostPort(h, port))
	}
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

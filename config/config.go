// Package config loads service settings from the environment and an
// optional .env file.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"library-service/auth"
	"library-service/library"
)

type Config struct {
	Addr string

	DBDriver string
	DBDSN    string

	JWTSecret        string
	JWTPublicKeyFile string
	JWTIssuer        string
	JWTAudience      string

	CORSOrigin string

	LogLevel  string
	LogFormat string

	TLSDomain   string
	TLSCacheDir string

	StripeSecretKey string

	LoanPeriodDays  int
	RenewWindowDays int
	MaxLoans        int
	LateFeePerDay   float64

	SweepSchedule string
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	p := library.DefaultPolicy()
	return &Config{
		Addr:            ":8080",
		DBDriver:        "sqlite3",
		DBDSN:           "library.db",
		CORSOrigin:      "http://localhost:3000",
		LogLevel:        "info",
		LogFormat:       "text",
		TLSCacheDir:     "certs",
		LoanPeriodDays:  p.LoanPeriodDays,
		RenewWindowDays: p.RenewWindowDays,
		MaxLoans:        p.MaxLoans,
		LateFeePerDay:   p.LateFeePerDay,
		SweepSchedule:   "@daily",
	}
}

// Load reads envFile (if it exists) into the process environment, then
// overlays LIBRARY_* and STRIPE_SECRET_KEY onto the defaults. Variables
// already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "load %s", envFile)
		}
	}

	c := Default()
	str(&c.Addr, "LIBRARY_ADDR")
	str(&c.DBDriver, "LIBRARY_DB_DRIVER")
	str(&c.DBDSN, "LIBRARY_DB_DSN")
	str(&c.JWTSecret, "LIBRARY_JWT_SECRET")
	str(&c.JWTPublicKeyFile, "LIBRARY_JWT_PUBLIC_KEY_FILE")
	str(&c.JWTIssuer, "LIBRARY_JWT_ISSUER")
	str(&c.JWTAudience, "LIBRARY_JWT_AUDIENCE")
	str(&c.CORSOrigin, "LIBRARY_CORS_ORIGIN")
	str(&c.LogLevel, "LIBRARY_LOG_LEVEL")
	str(&c.LogFormat, "LIBRARY_LOG_FORMAT")
	str(&c.TLSDomain, "LIBRARY_TLS_DOMAIN")
	str(&c.TLSCacheDir, "LIBRARY_TLS_CACHE_DIR")
	str(&c.StripeSecretKey, "STRIPE_SECRET_KEY")
	str(&c.SweepSchedule, "LIBRARY_SWEEP_SCHEDULE")

	for key, dst := range map[string]*int{
		"LIBRARY_LOAN_DAYS":         &c.LoanPeriodDays,
		"LIBRARY_RENEW_WINDOW_DAYS": &c.RenewWindowDays,
		"LIBRARY_MAX_LOANS":         &c.MaxLoans,
	} {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.Wrapf(err, "%s", key)
			}
			*dst = n
		}
	}
	if v, ok := os.LookupEnv("LIBRARY_LATE_FEE"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.Wrap(err, "LIBRARY_LATE_FEE")
		}
		c.LateFeePerDay = f
	}

	return c, c.validate()
}

func str(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func (c *Config) validate() error {
	switch {
	case c.LoanPeriodDays <= 0:
		return errors.New("loan period must be at least one day")
	case c.RenewWindowDays < 0:
		return errors.New("renew window cannot be negative")
	case c.MaxLoans < 0:
		return errors.New("max loans cannot be negative")
	case c.LateFeePerDay < 0:
		return errors.New("late fee cannot be negative")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return errors.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// Policy returns the lending rules.
func (c *Config) Policy() library.Policy {
	return library.Policy{
		LoanPeriodDays:  c.LoanPeriodDays,
		RenewWindowDays: c.RenewWindowDays,
		MaxLoans:        c.MaxLoans,
		LateFeePerDay:   c.LateFeePerDay,
	}
}

// Auth returns the verifier settings. serve refuses to start without a key.
func (c *Config) Auth() (auth.Config, error) {
	ac := auth.Config{Secret: c.JWTSecret, Issuer: c.JWTIssuer, Audience: c.JWTAudience}
	if c.JWTPublicKeyFile != "" {
		pem, err := os.ReadFile(c.JWTPublicKeyFile)
		if err != nil {
			return ac, errors.Wrap(err, "read jwt public key")
		}
		ac.PublicKeyPEM = string(pem)
	}
	if ac.Secret == "" && ac.PublicKeyPEM == "" {
		return ac, errors.New("LIBRARY_JWT_SECRET or LIBRARY_JWT_PUBLIC_KEY_FILE must be set")
	}
	return ac, nil
}

// Logger builds the logrus logger described by LogLevel and LogFormat.
func (c *Config) Logger() *logrus.Logger {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if strings.EqualFold(c.LogFormat, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

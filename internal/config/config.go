// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process-level settings of the lodge backend.
type Config struct {
	Addr           string
	DataDir        string
	LogLevel       string
	LogFormat      string
	RedisURL       string
	RateLimit      int
	RateWindow     time.Duration
	ReconcileSpec  string
	IdentityHeader string
	// TrustedProxies are the peers whose X-Forwarded-For header is believed
	// when resolving the client address for rate limiting.
	TrustedProxies []netip.Prefix
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Addr:           ":8080",
		DataDir:        "./data",
		LogLevel:       "info",
		LogFormat:      "json",
		RateLimit:      100,
		RateWindow:     time.Minute,
		ReconcileSpec:  "@daily",
		IdentityHeader: "X-Auth-Subject",
	}
}

// Load reads the given .env files (missing files are ignored) and then the
// process environment on top of the defaults.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function such as os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	str("LODGE_ADDR", &cfg.Addr)
	str("LODGE_DATA_DIR", &cfg.DataDir)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("REDIS_URL", &cfg.RedisURL)
	str("RECONCILE_SCHEDULE", &cfg.ReconcileSpec)
	str("IDENTITY_HEADER", &cfg.IdentityHeader)

	if v, ok := lookup("RATE_LIMIT_REQUESTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("RATE_LIMIT_REQUESTS: invalid value %q", v)
		}
		cfg.RateLimit = n
	}
	if v, ok := lookup("RATE_LIMIT_WINDOW"); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("RATE_LIMIT_WINDOW: invalid value %q", v)
		}
		cfg.RateWindow = d
	}

	if v, ok := lookup("TRUSTED_PROXIES"); ok {
		prefixes, err := ParsePrefixes(v)
		if err != nil {
			return Config{}, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		cfg.TrustedProxies = prefixes
	}

	if cfg.IdentityHeader == "" {
		return Config{}, errors.New("IDENTITY_HEADER must not be empty")
	}

	return cfg, nil
}

// ParsePrefixes parses a comma-separated list of CIDRs or bare addresses.
// A bare address is treated as a single-host prefix.
func ParsePrefixes(s string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "/") {
			p, err := netip.ParsePrefix(part)
			if err != nil {
				return nil, fmt.Errorf("invalid prefix %q", part)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(part)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q", part)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// DBPath returns the SQLite file inside the data directory.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "lodge.db")
}

// Package config loads mcp-demo settings from flags and MCP_DEMO_*
// environment variables. Flags win over the environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MCP_DEMO_"

// Config holds the server settings.
type Config struct {
	Name    string `validate:"required"`
	Version string `validate:"required"`

	Variant   string `validate:"oneof=basic extended"`
	Transport string `validate:"oneof=stdio websocket"`
	Addr      string `validate:"required,hostname_port"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`

	Timeout  time.Duration `validate:"gte=0"`
	Rate     int           `validate:"gte=0"`
	Burst    int           `validate:"gte=0"`
	MaxBytes int64         `validate:"gte=0"`

	Telemetry bool
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Name:      "Demo",
		Version:   "1.0.0",
		Variant:   "basic",
		Transport: "stdio",
		Addr:      "127.0.0.1:8765",
		LogLevel:  "info",
		LogFormat: "text",
		Timeout:   30 * time.Second,
		MaxBytes:  1 << 20,
	}
}

// LookupFunc reads an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load applies environment overrides and then flags on top of Default and
// validates the result. It returns flag.ErrHelp for -h.
func Load(args []string, lookup LookupFunc) (Config, error) {
	cfg := Default()
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("mcp-demo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	bindFlags(fs, &cfg)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return Config{}, err
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("config: unexpected arguments %q", fs.Args())
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Usage writes the flag help to w.
func Usage(w io.Writer) {
	fmt.Fprintln(w, "usage: mcp-demo [flags]")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Flags may also be set as %s<FLAG>, e.g. %sLOG_LEVEL=debug.\n\n", EnvPrefix, EnvPrefix)

	cfg := Default()
	fs := flag.NewFlagSet("mcp-demo", flag.ContinueOnError)
	fs.SetOutput(w)
	bindFlags(fs, &cfg)
	fs.PrintDefaults()
}

func bindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Name, "name", cfg.Name, "server name reported to clients")
	fs.StringVar(&cfg.Version, "version", cfg.Version, "server version reported to clients")
	fs.StringVar(&cfg.Variant, "variant", cfg.Variant, "demo surface: basic or extended")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "stdio or websocket")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "websocket listen address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout, 0 disables")
	fs.IntVar(&cfg.Rate, "rate", cfg.Rate, "requests per second per method, 0 disables")
	fs.IntVar(&cfg.Burst, "burst", cfg.Burst, "rate limit burst")
	fs.Int64Var(&cfg.MaxBytes, "max-bytes", cfg.MaxBytes, "largest accepted request params, 0 disables")
	fs.BoolVar(&cfg.Telemetry, "telemetry", cfg.Telemetry, "export traces to stderr and log request metrics")
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	strs := map[string]*string{
		"NAME":       &cfg.Name,
		"VERSION":    &cfg.Version,
		"VARIANT":    &cfg.Variant,
		"TRANSPORT":  &cfg.Transport,
		"ADDR":       &cfg.Addr,
		"LOG_LEVEL":  &cfg.LogLevel,
		"LOG_FORMAT": &cfg.LogFormat,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("TIMEOUT", v, err)
		}
		cfg.Timeout = d
	}
	ints := map[string]*int{"RATE": &cfg.Rate, "BURST": &cfg.Burst}
	for key, dst := range ints {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return envError(key, v, err)
			}
			*dst = n
		}
	}
	if v, ok := lookup(EnvPrefix + "MAX_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return envError("MAX_BYTES", v, err)
		}
		cfg.MaxBytes = n
	}
	if v, ok := lookup(EnvPrefix + "TELEMETRY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("TELEMETRY", v, err)
		}
		cfg.Telemetry = b
	}
	return nil
}

func envError(key, value string, err error) error {
	return fmt.Errorf("config: %s%s=%q: %w", EnvPrefix, key, value, err)
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s %q must be one of: %s", fe.Field(), fmt.Sprint(fe.Value()), fe.Param())
	case "hostname_port":
		return fmt.Sprintf("%s %q is not host:port", fe.Field(), fmt.Sprint(fe.Value()))
	case "gte":
		return fmt.Sprintf("%s must not be negative", fe.Field())
	default:
		return fmt.Sprintf("%s fails %s", fe.Field(), fe.Tag())
	}
}

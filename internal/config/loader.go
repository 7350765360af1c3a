package config

import (
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// EnvConfigFile names the variable consulted when no config path is given.
const EnvConfigFile = "DATASHEET_CONFIG"

// source looks up the raw value of a field. label names the setting in
// error messages.
type source func(section string, field reflect.StructField) (value, label string, ok bool)

// Load builds the configuration from struct-tag defaults, then the TOML
// file at path, then environment variables, and validates the result.
// When path is empty, DATASHEET_CONFIG is used; when that is empty too,
// the file layer is skipped.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}

	sources := []source{defaultSource}
	if path != "" {
		doc, err := readFile(path)
		if err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}
		sources = append(sources, fileSource(path, doc))
	}
	sources = append(sources, envSource)

	cfg := &Config{}
	for _, src := range sources {
		if err := loadStruct(reflect.ValueOf(cfg).Elem(), "", src); err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := make(map[string]any)
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func defaultSource(_ string, field reflect.StructField) (string, string, bool) {
	v := field.Tag.Get("default")
	return v, "default of " + field.Name, v != ""
}

func envSource(_ string, field reflect.StructField) (string, string, bool) {
	name := field.Tag.Get("env")
	if name == "" {
		return "", "", false
	}
	if v := os.Getenv(name); v != "" {
		return v, name, true
	}
	if alt := field.Tag.Get("envAlt"); alt != "" {
		if v := os.Getenv(alt); v != "" {
			return v, alt, true
		}
	}
	return "", "", false
}

// fileSource reads [section] key = value pairs named by the toml tags.
func fileSource(path string, doc map[string]any) source {
	return func(section string, field reflect.StructField) (string, string, bool) {
		table, ok := doc[section].(map[string]any)
		if !ok {
			return "", "", false
		}
		key := field.Tag.Get("toml")
		raw, ok := table[key]
		if !ok {
			return "", "", false
		}
		return tomlString(raw), fmt.Sprintf("%s: %s.%s", path, section, key), true
	}
}

// tomlString renders a decoded TOML value in the form setField parses.
func tomlString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, tomlString(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

// loadStruct recursively populates struct fields from src.
func loadStruct(v reflect.Value, section string, src source) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != timeType {
			if err := loadStruct(fieldVal, field.Tag.Get("toml"), src); err != nil {
				return err
			}
			continue
		}

		value, label, ok := src(section, field)
		if !ok {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", label, value, err)
		}
	}

	return nil
}

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
)

// setField parses value into field according to the field's type.
// Slices of strings take a comma-separated list.
func setField(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}
	positive := func(name string, v int64) {
		if v <= 0 {
			fail("%s must be positive", name)
		}
	}

	positive("DB_MAX_CONNS", int64(c.Database.MaxConns))
	if c.Database.MinConns < 0 {
		fail("DB_MIN_CONNS must be non-negative")
	}
	if c.Database.MaxConns > 0 && c.Database.MaxConns < c.Database.MinConns {
		fail("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", c.Database.MaxConns, c.Database.MinConns)
	}
	if c.Database.BusyTimeout < 0 {
		fail("DB_BUSY_TIMEOUT must be non-negative")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		fail("SERVER_PORT (%d) must be 1-65535", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 {
		fail("SERVER_READ_TIMEOUT must be non-negative")
	}
	positive("SERVER_SHUTDOWN_TIMEOUT", int64(c.Server.ShutdownTimeout))
	positive("SERVER_REQUEST_TIMEOUT", int64(c.Server.RequestTimeout))

	positive("IMPORT_MAX_FILE_SIZE", c.Import.MaxFileSize)
	positive("IMPORT_MAX_CONCURRENT", int64(c.Import.MaxConcurrent))
	positive("IMPORT_MAX_WAIT_TIME", int64(c.Import.MaxWaitTime))
	positive("IMPORT_TIMEOUT", int64(c.Import.Timeout))
	switch c.Import.IfExists {
	case "fail", "replace", "append":
	default:
		fail("IMPORT_IF_EXISTS (%q) must be one of: fail, replace, append", c.Import.IfExists)
	}

	if c.Rate.Enabled {
		positive("RATE_LIMIT_REQUESTS_PER_MINUTE", int64(c.Rate.RequestsPerMinute))
		positive("RATE_LIMIT_IMPORT", int64(c.Rate.ImportLimit))
	}

	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		fail("REQUIRE_API_KEY is true but API_KEYS is empty")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		fail("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		fail("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)
	}

	if len(problems) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// String returns a safe string representation of the config for logging.
// Passwords in a database URL are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Database: {Target: %q, MaxConns: %d, MinConns: %d}, ",
		MaskTarget(c.Database.Target), c.Database.MaxConns, c.Database.MinConns))
	b.WriteString(fmt.Sprintf("Import: {MaxFileSize: %d, MaxConcurrent: %d, IfExists: %q}, ",
		c.Import.MaxFileSize, c.Import.MaxConcurrent, c.Import.IfExists))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

// MaskTarget hides the password of a database URL. File paths are
// returned unchanged.
func MaskTarget(target string) string {
	if !strings.Contains(target, "://") {
		return target
	}
	u, err := url.Parse(target)
	if err != nil {
		return "[MASKED]"
	}
	return u.Redacted()
}

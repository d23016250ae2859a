package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"devrelay/addons"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8080
)

// DefaultCertDir returns the default certificate directory, ~/.devrelay.
// Falls back to a relative directory when the home directory is unknown.
func DefaultCertDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".devrelay"
	}
	return filepath.Join(home, ".devrelay")
}

// DefaultSettingsPath returns the default settings file location.
func DefaultSettingsPath() string {
	return filepath.Join(DefaultCertDir(), "devrelay.yaml")
}

// Config is the fully resolved proxy configuration. DisabledAddons holds
// canonical addon names only.
type Config struct {
	Host           string
	Port           int
	CertDir        string
	DisabledAddons []string
	SettingsPath   string
}

// Overrides carries runtime (flag-supplied) values. Scalar overrides are
// detected by comparing against the compiled-in default, so explicitly
// passing the default value is indistinguishable from passing nothing;
// a known limitation kept for compatibility. The addon list uses nil as
// its "not supplied" sentinel instead, since an explicitly empty list is
// meaningful there.
type Overrides struct {
	Host           string
	Port           int
	CertDir        string
	DisabledAddons []string
}

// InvalidConfigurationError reports a configuration value that failed
// type conversion or validation.
type InvalidConfigurationError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Load resolves the configuration from three layered sources: built-in
// defaults, the settings file at path (created and backfilled as needed),
// and runtime overrides. DEVRELAY_* environment variables slot between
// the file and the overrides. The first validation failure aborts the
// whole resolution; no partial configuration is returned.
func Load(path string, ov Overrides) (*Config, error) {
	if path == "" {
		path = DefaultSettingsPath()
	}
	path, err := expandTilde(path)
	if err != nil {
		return nil, &SettingsFileError{Path: path, Err: err}
	}

	if err := ensureSettingsFile(path); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("host", DefaultHost)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("certdir", DefaultCertDir())
	v.SetDefault("disabled_addons", []string{})

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("DEVRELAY")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, &SettingsFileError{Path: path, Err: err}
	}

	cfg := &Config{SettingsPath: path}

	cfg.Host = v.GetString("host")
	if ov.Host != "" && ov.Host != DefaultHost {
		cfg.Host = ov.Host
	}
	if cfg.Host == "" {
		return nil, &InvalidConfigurationError{Field: "host", Reason: "must not be empty"}
	}

	// Only the selected layer is converted: a supplied override leaves
	// the file's port value unexamined.
	if ov.Port != 0 && ov.Port != DefaultPort {
		cfg.Port = ov.Port
	} else {
		port, err := cast.ToIntE(v.Get("port"))
		if err != nil {
			return nil, &InvalidConfigurationError{Field: "port", Reason: fmt.Sprintf("expected an integer, got %v", v.Get("port"))}
		}
		cfg.Port = port
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, &InvalidConfigurationError{Field: "port", Reason: fmt.Sprintf("must be between 1 and 65535, got %d", cfg.Port)}
	}

	certDir := v.GetString("certdir")
	if ov.CertDir != "" && ov.CertDir != DefaultCertDir() {
		certDir = ov.CertDir
	}
	certDir, err = expandTilde(certDir)
	if err != nil {
		return nil, &InvalidConfigurationError{Field: "certdir", Reason: err.Error()}
	}
	if certDir == "" {
		return nil, &InvalidConfigurationError{Field: "certdir", Reason: "must not be empty"}
	}
	cfg.CertDir = certDir

	var rawDisabled []string
	if ov.DisabledAddons != nil {
		rawDisabled = flattenAddonList(ov.DisabledAddons)
	} else {
		rawDisabled, err = parseAddonValue(v.Get("disabled_addons"))
		if err != nil {
			return nil, &InvalidConfigurationError{Field: "disabled_addons", Reason: err.Error()}
		}
	}
	canonical, err := addons.Resolve(rawDisabled)
	if err != nil {
		return nil, err
	}
	cfg.DisabledAddons = canonical

	return cfg, nil
}

// flattenAddonList splits comma-joined entries inside the list, trims
// whitespace and drops empty tokens, so repeated flags and comma batches
// compose.
func flattenAddonList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, token := range strings.Split(value, ",") {
			token = strings.TrimSpace(token)
			if token != "" {
				out = append(out, token)
			}
		}
	}
	return out
}

// parseAddonValue accepts the settings-file forms of the disabled list:
// a comma-joined string or a list of strings.
func parseAddonValue(raw interface{}) ([]string, error) {
	switch value := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return flattenAddonList([]string{value}), nil
	case []string:
		return flattenAddonList(value), nil
	case []interface{}:
		items := make([]string, 0, len(value))
		for _, item := range value {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a string or list of strings, got list item %v", item)
			}
			items = append(items, s)
		}
		return flattenAddonList(items), nil
	default:
		return nil, fmt.Errorf("expected a string or list of strings, got %v", raw)
	}
}

func expandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

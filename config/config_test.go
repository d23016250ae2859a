package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devrelay/addons"
)

func TestLoadDefaults(t *testing.T) {
	path := settingsFixture(t, "")

	cfg, err := Load(path, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultCertDir(), cfg.CertDir)
	assert.Empty(t, cfg.DisabledAddons)
	assert.Equal(t, path, cfg.SettingsPath)
}

func TestLoadPrecedence(t *testing.T) {
	path := settingsFixture(t, "port: 7070\n")

	cfg, err := Load(path, Overrides{
		Host:    "192.168.1.1",
		Port:    DefaultPort,
		CertDir: DefaultCertDir(),
	})
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.1", cfg.Host, "flag override wins")
	assert.Equal(t, 7070, cfg.Port, "file value wins over default")
	assert.Equal(t, DefaultCertDir(), cfg.CertDir, "default fills the rest")
}

func TestLoadExplicitDefaultIsIndistinguishable(t *testing.T) {
	// Passing the compiled-in default is treated as "not supplied", so
	// the file value wins. Known limitation, kept for compatibility.
	path := settingsFixture(t, "host: 10.0.0.1\n")

	cfg, err := Load(path, Overrides{Host: DefaultHost})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", cfg.Host)
}

func TestLoadDisabledAddonsFromCommaString(t *testing.T) {
	path := settingsFixture(t, "disabled_addons: CSP, COEP\n")

	cfg, err := Load(path, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, []string{"CSPRemoverAddon", "COEPRemoverAddon"}, cfg.DisabledAddons)
}

func TestLoadDisabledAddonsFromList(t *testing.T) {
	path := settingsFixture(t, "disabled_addons:\n  - CSP\n  - coep,COOP\n")

	cfg, err := Load(path, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, []string{"CSPRemoverAddon", "COEPRemoverAddon", "COOPRemoverAddon"}, cfg.DisabledAddons)
}

func TestLoadDisabledAddonsOverrideComposes(t *testing.T) {
	path := settingsFixture(t, "disabled_addons: COOP\n")

	cfg, err := Load(path, Overrides{DisabledAddons: []string{"CSP,COEP", "preflight"}})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CSPRemoverAddon",
		"COEPRemoverAddon",
		"CORSPreflightForWebhooksAddon",
	}, cfg.DisabledAddons, "flag list replaces the file list, batches and repetition compose")
}

func TestLoadDisabledAddonsExplicitEmptyOverride(t *testing.T) {
	path := settingsFixture(t, "disabled_addons: CSP\n")

	cfg, err := Load(path, Overrides{DisabledAddons: []string{}})
	require.NoError(t, err)
	assert.Empty(t, cfg.DisabledAddons, "an explicit empty list clears the file value")
}

func TestLoadUnknownAddonIdentifier(t *testing.T) {
	path := settingsFixture(t, "disabled_addons: CSQ\n")

	_, err := Load(path, Overrides{})
	require.Error(t, err)

	var unknown *addons.UnknownIdentifierError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "CSP", unknown.Suggestion)
}

func TestLoadPortOutOfRange(t *testing.T) {
	for _, content := range []string{"port: 0\n", "port: 70000\n", "port: -1\n"} {
		path := settingsFixture(t, content)

		_, err := Load(path, Overrides{})
		require.Error(t, err, content)

		var invalid *InvalidConfigurationError
		require.True(t, errors.As(err, &invalid), content)
		assert.Equal(t, "port", invalid.Field)
	}
}

func TestLoadPortOverrideOutOfRange(t *testing.T) {
	path := settingsFixture(t, "")

	_, err := Load(path, Overrides{Port: 99999})
	var invalid *InvalidConfigurationError
	require.True(t, errors.As(err, &invalid))
}

func TestLoadPortOverrideIgnoresMalformedFilePort(t *testing.T) {
	// With a port override supplied, the file's port value is never
	// converted, so garbage there must not abort startup.
	path := settingsFixture(t, "port: banana\n")

	cfg, err := Load(path, Overrides{Port: 9000})
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
}

func TestLoadPortNotAnInteger(t *testing.T) {
	path := settingsFixture(t, "port: banana\n")

	_, err := Load(path, Overrides{})
	var invalid *InvalidConfigurationError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "port", invalid.Field)
}

func TestLoadMalformedSettingsFile(t *testing.T) {
	path := settingsFixture(t, "host: [unclosed\n")

	_, err := Load(path, Overrides{})
	var sfe *SettingsFileError
	require.True(t, errors.As(err, &sfe))
}

func TestFlattenAddonList(t *testing.T) {
	assert.Equal(t, []string{"CSP", "COEP", "COOP"}, flattenAddonList([]string{" CSP , COEP", "", "COOP,"}))
	assert.Nil(t, flattenAddonList(nil))
}

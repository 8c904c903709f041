// Package config loads config.yaml from the configuration directory with
// Viper and applies CATALOG_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/catalog/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "CATALOG"
)

// EnvAdminPassword supplies the administrator secret without a prompt.
const EnvAdminPassword = "CATALOG_ADMIN_PASSWORD"

// Config keys.
const (
	KeySource            = "source"
	KeyCSVFile           = "csv_file"
	KeyDelimiter         = "delimiter"
	KeyDataDir           = "data_dir"
	KeyStoreDriver       = "store.driver"
	KeyStoreDSN          = "store.dsn"
	KeyLogLevel          = "log.level"
	KeyLogFormat         = "log.format"
	KeyAdminUser         = "admin.user"
	KeyAdminPasswordHash = "admin.password_hash"
)

const defaultConfigHeader = `# Course catalog configuration.
# Every key can be overridden with a CATALOG_ environment variable,
# e.g. CATALOG_STORE_DRIVER=pgx or CATALOG_LOG_LEVEL=debug.
`

// Path returns the location of config.yaml inside configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, configFileExt)
}

// Load reads config.yaml from configDir, creating the directory and a default
// file on first run. A missing file is not an error. The returned Config is
// validated.
func Load(configDir string) (types.Config, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return types.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if _, err := WriteDefault(configDir); err != nil {
		return types.Config{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := newViper()
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// newViper returns a Viper instance with every key defaulted, so that
// environment overrides reach Unmarshal.
func newViper() *viper.Viper {
	d := types.DefaultConfig()

	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeySource, d.Source)
	v.SetDefault(KeyCSVFile, d.CSVFile)
	v.SetDefault(KeyDelimiter, d.Delimiter)
	v.SetDefault(KeyDataDir, d.DataDir)
	v.SetDefault(KeyStoreDriver, d.Store.Driver)
	v.SetDefault(KeyStoreDSN, d.Store.DSN)
	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFormat, d.Log.Format)
	v.SetDefault(KeyAdminUser, d.Admin.User)
	v.SetDefault(KeyAdminPasswordHash, d.Admin.PasswordHash)
	return v
}

// WriteDefault creates config.yaml with default values if it does not exist.
// It reports whether a file was written.
func WriteDefault(configDir string) (bool, error) {
	path := Path(configDir)

	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(types.DefaultConfig())
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(defaultConfigHeader), data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

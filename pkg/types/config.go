package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Source names accepted by Config.Source and the --source flag.
const (
	SourceCSV = "csv"
	SourceDB  = "db"
)

// Store driver names. DriverPgx selects the PostgreSQL driver registered by
// github.com/jackc/pgx/v5/stdlib.
const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

// Defaults applied when config.yaml leaves a key unset.
const (
	DefaultSource    = SourceCSV
	DefaultDelimiter = ","
	DefaultDriver    = DriverSQLite
	DefaultAdminUser = "admin"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "pretty"
	DefaultDBFile    = "courses.db"
)

// validate is shared by every struct check in this package.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is the resolved configuration for one CLI invocation.
type Config struct {
	Source    string      `mapstructure:"source" yaml:"source" validate:"oneof=csv db"`
	CSVFile   string      `mapstructure:"csv_file" yaml:"csv_file,omitempty"`
	Delimiter string      `mapstructure:"delimiter" yaml:"delimiter" validate:"len=1"`
	DataDir   string      `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	Store     StoreConfig `mapstructure:"store" yaml:"store"`
	Log       LogConfig   `mapstructure:"log" yaml:"log"`
	Admin     AdminConfig `mapstructure:"admin" yaml:"admin"`
}

// StoreConfig selects the relational store. An empty DSN with the sqlite
// driver means DefaultDBFile inside the data directory.
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver" validate:"oneof=sqlite pgx"`
	DSN    string `mapstructure:"dsn" yaml:"dsn,omitempty"`
}

// LogConfig controls the zerolog output on stderr.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=pretty json"`
}

// AdminConfig holds the administrator credentials. An empty PasswordHash
// falls back to the built-in default secret.
type AdminConfig struct {
	User         string `mapstructure:"user" yaml:"user" validate:"required"`
	PasswordHash string `mapstructure:"password_hash" yaml:"password_hash,omitempty"`
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	return Config{
		Source:    DefaultSource,
		Delimiter: DefaultDelimiter,
		Store:     StoreConfig{Driver: DefaultDriver},
		Log:       LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Admin:     AdminConfig{User: DefaultAdminUser},
	}
}

// Validate checks that the Config is well-formed. Failures wrap
// ErrInvalidConfig.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Store.Driver == DriverPgx && c.Store.DSN == "" {
		return fmt.Errorf("%w: store.dsn is required for the pgx driver", ErrInvalidConfig)
	}
	return nil
}

// Copyright 2024 Outreach Corporation. All Rights Reserved.

// Description: This file contains connection options, their defaults and validation

package faucet

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Driver identifies the database client used to open connections
type Driver string

// Supported drivers
const (
	// DriverPostgres opens connections through a pgx connection pool
	DriverPostgres Driver = "postgres"
)

// Defaults applied by Options.WithDefaults
const (
	// DefaultConnectionName is used when no connection name is given
	DefaultConnectionName = "default"

	// DefaultHost is used when neither a DSN nor a host is given
	DefaultHost = "localhost"

	// DefaultPort is the standard PostgreSQL port
	DefaultPort = 5432

	// DefaultDatabase is used when no database name is given
	DefaultDatabase = "postgres"

	// DefaultSSLMode lets the server decide whether TLS is required
	DefaultSSLMode = "prefer"

	// DefaultMaxConns limits concurrent connections held by one pool
	DefaultMaxConns = 5

	// DefaultMinConns keeps at least one connection in the pool
	DefaultMinConns = 1

	// DefaultMaxConnIdleTime keeps pooled connections alive between bursts
	// of work to avoid reconnection overhead
	DefaultMaxConnIdleTime = 30 * time.Minute
)

// Duration is a time.Duration that can be decoded from YAML and from
// environment values either as a Go duration string ("250ms", "1m30s")
// or as a bare number of milliseconds.
type Duration time.Duration

// Std returns the value as a standard time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String returns the standard duration formatting
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalYAML encodes the duration as a Go duration string
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML decodes either a bare millisecond count or a duration string
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var ms int64
	if err := value.Decode(&ms); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDuration parses a duration from its textual form.
// Bare numbers are interpreted as milliseconds, anything else must be
// a valid Go duration string. The empty string parses to zero.
func ParseDuration(s string) (Duration, error) {
	if s == "" {
		return 0, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Duration(time.Duration(ms) * time.Millisecond), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return Duration(d), nil
}

// Options describe a single named database connection.
// The bootstrapper treats a passed in value as immutable and applies
// defaults to its own copy.
type Options struct {
	// Name identifies the connection in the registry
	Name string `yaml:"name"`

	// Driver selects the connector implementation
	Driver Driver `yaml:"driver"`

	// DSN is a complete connection string. When set it takes precedence
	// over the discrete address fields below.
	DSN string `yaml:"dsn"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`

	// Params are appended to the connection string query
	Params map[string]string `yaml:"params"`

	// Pool tuning
	MaxConns        int32    `yaml:"max_conns"`
	MinConns        int32    `yaml:"min_conns"`
	MaxConnLifetime Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime Duration `yaml:"max_conn_idle_time"`
	ConnectTimeout  Duration `yaml:"connect_timeout"`

	// RetryAttempts is the maximum number of connection attempts.
	// Zero or negative means retry indefinitely.
	RetryAttempts int `yaml:"retry_attempts"`

	// RetryDelay is the pause between two attempts. Zero means retry
	// immediately.
	RetryDelay Duration `yaml:"retry_delay"`

	// VerboseRetryLog emits an error level log line for every failed
	// attempt. It changes logging only, never the retry outcome.
	VerboseRetryLog bool `yaml:"verbose_retry_log"`

	// KeepAlive makes the bootstrapper hand out an already registered
	// open connection of the same name instead of dialing a new one.
	KeepAlive bool `yaml:"keep_alive"`
}

// WithDefaults returns a copy of the options with unset fields filled in
func (o Options) WithDefaults() Options {
	if o.Name == "" {
		o.Name = DefaultConnectionName
	}
	if o.Driver == "" {
		o.Driver = DriverPostgres
	}
	if o.DSN == "" {
		if o.Host == "" {
			o.Host = DefaultHost
		}
		if o.Port == 0 {
			o.Port = DefaultPort
		}
		if o.Database == "" {
			o.Database = DefaultDatabase
		}
		if o.SSLMode == "" {
			o.SSLMode = DefaultSSLMode
		}
	}
	if o.MaxConns == 0 {
		o.MaxConns = DefaultMaxConns
	}
	if o.MinConns == 0 {
		o.MinConns = DefaultMinConns
	}
	if o.MaxConnIdleTime == 0 {
		o.MaxConnIdleTime = Duration(DefaultMaxConnIdleTime)
	}
	return o
}

// Validate reports every defect of the options at once
func (o Options) Validate() error {
	var errs []error
	if o.Name == "" {
		errs = append(errs, errors.New("connection name is required"))
	}
	switch o.Driver {
	case DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("driver %q: %w", o.Driver, ErrUnsupportedDriver))
	}
	if o.DSN == "" && o.Host == "" {
		errs = append(errs, errors.New("either dsn or host is required"))
	}
	if o.Port < 0 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range", o.Port))
	}
	if o.MaxConns < 0 {
		errs = append(errs, errors.New("max_conns cannot be negative"))
	}
	if o.MinConns < 0 {
		errs = append(errs, errors.New("min_conns cannot be negative"))
	}
	if o.MaxConns > 0 && o.MinConns > o.MaxConns {
		errs = append(errs, fmt.Errorf("min_conns %d exceeds max_conns %d", o.MinConns, o.MaxConns))
	}
	if o.RetryDelay < 0 {
		errs = append(errs, errors.New("retry_delay cannot be negative"))
	}
	if o.ConnectTimeout < 0 {
		errs = append(errs, errors.New("connect_timeout cannot be negative"))
	}
	return errors.Join(errs...)
}

// BuildDSN assembles a connection string from the discrete address
// fields. An explicitly configured DSN is returned verbatim.
func (o Options) BuildDSN() string {
	if o.DSN != "" {
		return o.DSN
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   o.Host,
		Path:   "/" + o.Database,
	}
	if o.Port > 0 {
		u.Host = fmt.Sprintf("%s:%d", o.Host, o.Port)
	}
	if o.Username != "" {
		u.User = url.User(o.Username)
		if o.Password != "" {
			u.User = url.UserPassword(o.Username, o.Password)
		}
	}
	q := url.Values{}
	if o.SSLMode != "" {
		q.Set("sslmode", o.SSLMode)
	}
	for k, v := range o.Params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

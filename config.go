// Copyright 2024 Outreach Corporation. All Rights Reserved.

// Description: This file contains configuration loading from files and the environment

package faucet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// DefaultEnvPrefix is the environment variable prefix used by FromEnv
// when none is given
const DefaultEnvPrefix = "FAUCET"

// File is the on disk configuration document
type File struct {
	Connections []Options `yaml:"connections"`
}

// LoadFile reads and parses a YAML configuration file
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing configuration file %s: %w", path, err)
	}
	return &f, nil
}

// Validate checks every configured connection and rejects duplicate names
func (f *File) Validate() error {
	var errs []error
	names := lo.Map(f.Connections, func(o Options, _ int) string {
		return o.WithDefaults().Name
	})
	for i := range f.Connections {
		opts := f.Connections[i].WithDefaults()
		if err := opts.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("connection %q: %w", opts.Name, err))
		}
	}
	for _, name := range lo.FindDuplicates(names) {
		errs = append(errs, fmt.Errorf("connection %q: %w", name, ErrDuplicateConnection))
	}
	return errors.Join(errs...)
}

// Open establishes every connection of the file through the given
// bootstrapper, dialing distinct names in parallel. When any of them
// fails the already opened ones are closed and removed again so that
// no partial set is left registered.
func Open(ctx context.Context, boot *Bootstrapper, f *File) error {
	if err := f.Validate(); err != nil {
		return err
	}

	var (
		mu     sync.Mutex
		opened []string
	)
	g, ctx := errgroup.WithContext(ctx)
	for i := range f.Connections {
		opts := f.Connections[i]
		g.Go(func() error {
			conn, err := boot.Establish(ctx, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			opened = append(opened, conn.Name())
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, name := range opened {
			if conn, ok := boot.Registry().Remove(name); ok {
				_ = conn.Close()
			}
		}
		return err
	}
	return nil
}

// FromEnv assembles options from environment variables named
// <prefix>_HOST, <prefix>_PORT and so on. Optional .env files are
// loaded first, a missing .env file is not an error. The empty prefix
// selects DefaultEnvPrefix.
func FromEnv(prefix string, files ...string) (Options, error) {
	// .env files are optional
	_ = godotenv.Load(files...)

	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	look := func(key string) string {
		return os.Getenv(prefix + "_" + key)
	}

	o := Options{
		Name:     look("NAME"),
		Driver:   Driver(look("DRIVER")),
		DSN:      look("DSN"),
		Host:     look("HOST"),
		Database: look("DATABASE"),
		Username: look("USERNAME"),
		Password: look("PASSWORD"),
		SSLMode:  look("SSLMODE"),
	}

	var errs []error
	intField := func(key string, assign func(int64)) {
		v := look(key)
		if v == "" {
			return
		}
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s_%s: %w", prefix, key, err))
			return
		}
		assign(n)
	}
	durationField := func(key string, assign func(Duration)) {
		v := look(key)
		if v == "" {
			return
		}
		d, err := ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s_%s: %w", prefix, key, err))
			return
		}
		assign(d)
	}
	boolField := func(key string, assign func(bool)) {
		v := look(key)
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s_%s: %w", prefix, key, err))
			return
		}
		assign(b)
	}

	intField("PORT", func(n int64) { o.Port = int(n) })
	intField("MAX_CONNS", func(n int64) { o.MaxConns = int32(n) })
	intField("MIN_CONNS", func(n int64) { o.MinConns = int32(n) })
	intField("RETRY_ATTEMPTS", func(n int64) { o.RetryAttempts = int(n) })
	durationField("RETRY_DELAY", func(d Duration) { o.RetryDelay = d })
	durationField("CONNECT_TIMEOUT", func(d Duration) { o.ConnectTimeout = d })
	durationField("MAX_CONN_LIFETIME", func(d Duration) { o.MaxConnLifetime = d })
	durationField("MAX_CONN_IDLE_TIME", func(d Duration) { o.MaxConnIdleTime = d })
	boolField("VERBOSE_RETRY_LOG", func(b bool) { o.VerboseRetryLog = b })
	boolField("KEEP_ALIVE", func(b bool) { o.KeepAlive = b })

	return o, errors.Join(errs...)
}

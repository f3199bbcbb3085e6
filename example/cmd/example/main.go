// Copyright 2024 Outreach Corporation. All Rights Reserved.
// Description: example application

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/getoutreach/faucet"
	"github.com/getoutreach/faucet/example"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Println("err: ", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cf, err := loadConfig()
	if err != nil {
		return err
	}

	a := example.NewApplication(ctx, cf, example.WithVerboseLogging)
	defer func() {
		if err := a.Boot.Registry().Close(); err != nil {
			fmt.Println("close err: ", err)
		}
	}()

	users, err := a.Service.Users()
	if err != nil {
		return err
	}
	u, err := users.Signup(ctx, "gopher@example.com", "Gopher")
	if err != nil {
		return err
	}
	fmt.Println("created user", u.ID)

	keeper, err := a.Workers.PrimaryKeeper()
	if err != nil {
		return err
	}
	// Supervise the primary connection until an OS signal arrives
	return keeper.Run(ctx)
}

// loadConfig reads the configuration file named by FAUCET_CONFIG and
// falls back to PRIMARY_* and REPLICA_* environment variables
func loadConfig() (*example.Config, error) {
	cf := &example.Config{}
	if path := os.Getenv("FAUCET_CONFIG"); path != "" {
		f, err := faucet.LoadFile(path)
		if err != nil {
			return nil, err
		}
		for _, opts := range f.Connections {
			switch opts.Name {
			case "primary":
				cf.Primary = opts
			case "replica":
				cf.Replica = opts
			}
		}
		return cf, nil
	}

	primary, err := faucet.FromEnv("PRIMARY")
	if err != nil {
		return nil, err
	}
	replica, err := faucet.FromEnv("REPLICA")
	if err != nil {
		return nil, err
	}
	primary.Name = "primary"
	replica.Name = "replica"
	cf.Primary = primary
	cf.Replica = replica
	return cf, nil
}

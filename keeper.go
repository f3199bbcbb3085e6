// Copyright 2024 Outreach Corporation. All Rights Reserved.

// Description: This file contains the connection keeper supervising established connections

package faucet

import (
	"context"
	"sync/atomic"
	"time"
)

// KeeperState describes what the keeper is currently doing
type KeeperState int32

// Keeper states
const (
	KeeperIdle KeeperState = iota
	KeeperConnecting
	KeeperConnected
	KeeperReconnecting
	KeeperStopped
)

// String returns a readable state name
func (s KeeperState) String() string {
	switch s {
	case KeeperIdle:
		return "idle"
	case KeeperConnecting:
		return "connecting"
	case KeeperConnected:
		return "connected"
	case KeeperReconnecting:
		return "reconnecting"
	case KeeperStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// DefaultKeepInterval is the pause between two health checks
const DefaultKeepInterval = 30 * time.Second

// KeeperConfig customizes a keeper. A nil config selects the defaults.
type KeeperConfig struct {
	// Interval between two health checks, DefaultKeepInterval when zero
	Interval time.Duration
	// Logger overrides the bootstrapper logger
	Logger Logger
	// OnStateChange is invoked for every state transition
	OnStateChange func(KeeperState)
}

// Keeper supervises one named connection. It establishes the
// connection through the bootstrapper, pings it on an interval and on
// a failed ping recycles the handle and establishes it again,
// inheriting the retry policy of the options.
type Keeper struct {
	boot          *Bootstrapper
	opts          Options
	interval      time.Duration
	logger        Logger
	onStateChange func(KeeperState)
	state         atomic.Int32
}

// NewKeeper returns a keeper supervising the connection described by opts
func NewKeeper(boot *Bootstrapper, opts Options, cfg *KeeperConfig) *Keeper {
	k := &Keeper{
		boot:     boot,
		opts:     opts,
		interval: DefaultKeepInterval,
		logger:   boot.Logger(),
	}
	if cfg != nil {
		if cfg.Interval > 0 {
			k.interval = cfg.Interval
		}
		if cfg.Logger != nil {
			k.logger = cfg.Logger
		}
		k.onStateChange = cfg.OnStateChange
	}
	return k
}

// State returns the current keeper state
func (k *Keeper) State() KeeperState {
	return KeeperState(k.state.Load())
}

func (k *Keeper) setState(s KeeperState) {
	if KeeperState(k.state.Swap(int32(s))) == s {
		return
	}
	if k.onStateChange != nil {
		k.onStateChange(s)
	}
}

// Run executes the supervision loop. It returns nil once the context
// ends or the supervised handle is closed elsewhere, and an error when
// a connection cannot be established within its retry budget.
func (k *Keeper) Run(ctx context.Context) error {
	defer k.setState(KeeperStopped)

	k.setState(KeeperConnecting)
	opts := k.opts
	opts.KeepAlive = true
	conn, err := k.boot.Establish(ctx, opts)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	k.setState(KeeperConnected)

	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-conn.Closed():
			k.logger.Verbose("connection %q was closed, keeper stopping", conn.Name())
			return nil
		case <-ticker.C:
			if err := conn.Ping(ctx); err == nil {
				continue
			} else if ctx.Err() != nil {
				return nil
			} else if !conn.IsOpen() {
				// a tick can race an external Close, a dead handle is a
				// shutdown, not an outage
				k.logger.Verbose("connection %q was closed, keeper stopping", conn.Name())
				return nil
			} else {
				k.logger.Error("connection %q lost: %v; reestablishing", conn.Name(), err)
			}
			k.setState(KeeperReconnecting)
			_ = conn.Close()
			k.boot.Registry().Remove(conn.Name())
			conn, err = k.boot.Establish(ctx, opts)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			k.setState(KeeperConnected)
		}
	}
}

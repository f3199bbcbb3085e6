// Copyright 2024 Outreach Corporation. All Rights Reserved.

// Description: This file contains the application container composition helper

package faucet

import "context"

// DefineContainers wires up an application dependency container.
// Definers run first so that callers and tests can claim binding names
// before the containers do, then every container's Define method runs
// in order.
func DefineContainers[C, CF any](ctx context.Context, cfg CF, definers []func(context.Context, CF, C), root C, containers ...interface {
	Define(context.Context, CF, C)
}) C {
	for _, d := range definers {
		d(ctx, cfg, root)
	}
	for _, d := range containers {
		d.Define(ctx, cfg, root)
	}
	return root
}

// Copyright 2024 Outreach Corporation. All Rights Reserved.
// Description: postgres persistence for example application

// Package postgres provides postgres persistence for example application
package postgres

import (
	"context"

	"github.com/getoutreach/faucet"
	"github.com/getoutreach/faucet/example/contract"
	"github.com/jackc/pgx/v5"
)

// UserStore persists users, writing to the primary connection and
// reading from the replica
type UserStore struct {
	primary *faucet.Manager
	reads   *faucet.Repository[contract.User]
}

func NewUserStore(primary, replica *faucet.Connection) *UserStore {
	return &UserStore{
		primary: primary.Manager(),
		reads:   faucet.NewRepository[contract.User](replica, "users"),
	}
}

func (s *UserStore) Get(ctx context.Context, id int64) (*contract.User, error) {
	u, err := s.reads.One(ctx, "SELECT id, email, name FROM users WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, email, name string) (*contract.User, error) {
	u := &contract.User{Email: email, Name: name}
	err := s.primary.InTx(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx,
			"INSERT INTO users (email, name) VALUES ($1, $2) RETURNING id",
			email, name,
		).Scan(&u.ID)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserStore) List(ctx context.Context) ([]contract.User, error) {
	return s.reads.All(ctx)
}

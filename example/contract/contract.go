// Copyright 2024 Outreach Corporation. All Rights Reserved.
// Description: contract for example application

// Package contract provides contract for example application
package contract

import "context"

// User represents example user entity
type User struct {
	ID    int64  `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`
}

// UserStore describes user persistence
type UserStore interface {
	Get(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, email, name string) (*User, error)
	List(ctx context.Context) ([]User, error)
}

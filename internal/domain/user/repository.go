package user

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// FindOrCreateByMobile returns the user registered with mobileNo,
	// creating one on first sight.
	FindOrCreateByMobile(ctx context.Context, mobileNo string) (User, bool, error)
}

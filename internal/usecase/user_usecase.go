package usecase

import (
	"context"

	"i4e-backend/internal/domain/user"
	ucuser "i4e-backend/internal/usecase/user"
)

type UserUsecase interface {
	GetProfile(ctx context.Context, userID int64) (ucuser.Profile, error)
}

type User struct {
	svc *ucuser.Service
}

func NewUserUsecase(users user.Repository) *User {
	return &User{svc: ucuser.NewService(users)}
}

func (u *User) GetProfile(ctx context.Context, userID int64) (ucuser.Profile, error) {
	if userID <= 0 {
		return ucuser.Profile{}, ErrUnauthorized
	}
	return u.svc.GetProfile(ctx, userID)
}

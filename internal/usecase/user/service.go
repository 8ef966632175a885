package user

import (
	"context"
	"errors"

	"i4e-backend/internal/domain/user"
)

var (
	ErrNotFound = errors.New("user not found")
	ErrInternal = errors.New("internal error")
)

type Profile struct {
	UserID    int64   `json:"userId"`
	Email     *string `json:"email"`
	MobileNo  *string `json:"mobileNo"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	IsActive  bool    `json:"isActive"`
}

type Service struct {
	users user.Repository
}

func NewService(users user.Repository) *Service {
	return &Service{users: users}
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (Profile, error) {
	usr, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, ErrInternal
	}
	return Profile{
		UserID:    usr.ID,
		Email:     usr.Email,
		MobileNo:  usr.MobileNo,
		FirstName: usr.FirstName,
		LastName:  usr.LastName,
		IsActive:  usr.IsActive,
	}, nil
}

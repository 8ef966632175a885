package usecase

import (
	"context"
	"errors"
	"time"

	"i4e-backend/internal/domain/user"
	"i4e-backend/internal/pkg/jwt"
	"i4e-backend/internal/pkg/logger"
	ucauth "i4e-backend/internal/usecase/auth"

	"github.com/google/uuid"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type OTPSent struct {
	ReferenceNo string `json:"referenceNo"`
	ExpiresIn   int    `json:"expiresIn"`
	OTP         string `json:"otp,omitempty"`
}

type AuthUsecase interface {
	Register(ctx context.Context, in ucauth.RegisterInput) (user.User, TokenPair, error)
	Login(ctx context.Context, in ucauth.LoginInput) (user.User, TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	SendOTP(ctx context.Context, mobileNo string) (OTPSent, error)
	VerifyOTP(ctx context.Context, mobileNo, otp string) (user.User, TokenPair, bool, error)
}

type Auth struct {
	authSvc *ucauth.Service
	otpSvc  *ucauth.OTPService
	users   user.Repository
	jwt     jwt.Service

	exposeOTP bool
	log       *logger.Logger
}

func NewAuthUsecase(users user.Repository, jwtSvc jwt.Service, otp *ucauth.OTPService, exposeOTP bool, log *logger.Logger) *Auth {
	return &Auth{
		authSvc:   ucauth.NewService(users),
		otpSvc:    otp,
		users:     users,
		jwt:       jwtSvc,
		exposeOTP: exposeOTP,
		log:       log.With("usecase", "auth"),
	}
}

func (u *Auth) Register(ctx context.Context, in ucauth.RegisterInput) (user.User, TokenPair, error) {
	usr, err := u.authSvc.Register(ctx, in)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	tokens, err := u.issue(usr, jwt.SourceEmail)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	return usr, tokens, nil
}

func (u *Auth) Login(ctx context.Context, in ucauth.LoginInput) (user.User, TokenPair, error) {
	usr, err := u.authSvc.Login(ctx, in)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	tokens, err := u.issue(usr, jwt.SourceEmail)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	return usr, tokens, nil
}

func (u *Auth) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, ErrUnauthorized
	}

	claims, err := u.jwt.ValidateToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenPair{}, ErrRefreshTokenExpired
		}
		return TokenPair{}, ErrInvalidRefreshToken
	}
	if !u.jwt.IsRefreshToken(claims) {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	usr, err := u.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, ErrInternal
	}
	if !usr.IsActive {
		return TokenPair{}, ErrUnauthorized
	}

	source := jwt.SourceEmail
	if usr.Email == nil {
		source = jwt.SourceOTP
	}
	return u.issue(usr, source)
}

func (u *Auth) SendOTP(ctx context.Context, mobileNo string) (OTPSent, error) {
	mobile, err := ucauth.NormalizeMobile(mobileNo)
	if err != nil {
		return OTPSent{}, err
	}
	code, ttl, err := u.otpSvc.Send(ctx, mobile)
	if err != nil {
		return OTPSent{}, err
	}

	out := OTPSent{ReferenceNo: uuid.NewString(), ExpiresIn: int(ttl / time.Second)}
	if u.exposeOTP {
		out.OTP = code
	}
	u.log.Info("otp sent", "reference_no", out.ReferenceNo)
	return out, nil
}

// VerifyOTP signs the user in, registering the mobile number on first use.
// The bool reports whether the account was just created.
func (u *Auth) VerifyOTP(ctx context.Context, mobileNo, otp string) (user.User, TokenPair, bool, error) {
	mobile, err := ucauth.NormalizeMobile(mobileNo)
	if err != nil {
		return user.User{}, TokenPair{}, false, err
	}
	if err := u.otpSvc.Verify(ctx, mobile, otp); err != nil {
		return user.User{}, TokenPair{}, false, err
	}

	usr, created, err := u.users.FindOrCreateByMobile(ctx, mobile)
	if err != nil {
		u.log.Error("otp user lookup failed", "err", err)
		return user.User{}, TokenPair{}, false, ErrInternal
	}
	if !usr.IsActive {
		return user.User{}, TokenPair{}, false, ErrUnauthorized
	}

	tokens, err := u.issue(usr, jwt.SourceOTP)
	if err != nil {
		return user.User{}, TokenPair{}, false, err
	}
	usr.PasswordHash = ""
	return usr, tokens, created, nil
}

func (u *Auth) issue(usr user.User, source string) (TokenPair, error) {
	access, err := u.jwt.GenerateAccessToken(usr.ID, usr.EmailOrEmpty(), source)
	if err != nil {
		return TokenPair{}, ErrInternal
	}
	refresh, err := u.jwt.GenerateRefreshToken(usr.ID)
	if err != nil {
		return TokenPair{}, ErrInternal
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"i4e-backend/internal/infrastructure/cache"
	"i4e-backend/internal/infrastructure/sms"
)

var (
	ErrInvalidMobile    = errors.New("invalid mobile number")
	ErrInvalidOTP       = errors.New("invalid otp")
	ErrOTPExpired       = errors.New("otp expired or not requested")
	ErrOTPLocked        = errors.New("too many attempts, try again later")
	ErrOTPLimitExceeded = errors.New("daily otp limit reached")
	ErrUnavailable      = errors.New("otp service unavailable")
)

// OTPStore is the subset of the Redis cache the OTP flow keeps its state in.
type OTPStore interface {
	GetString(ctx context.Context, key string) (string, bool, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
}

type OTPConfig struct {
	Length         int
	TTL            time.Duration
	MaxAttempts    int
	LockDuration   time.Duration
	MaxSendsPerDay int
}

type OTPService struct {
	store  OTPStore
	sender sms.Sender
	cfg    OTPConfig
	now    func() time.Time
}

func NewOTPService(store OTPStore, sender sms.Sender, cfg OTPConfig) *OTPService {
	if cfg.Length < 4 {
		cfg.Length = 6
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.LockDuration <= 0 {
		cfg.LockDuration = 2 * time.Hour
	}
	return &OTPService{store: store, sender: sender, cfg: cfg, now: time.Now}
}

func codeKey(mobile string) string     { return cache.KeyOTPPrefix + "code:" + mobile }
func attemptsKey(mobile string) string { return cache.KeyOTPPrefix + "attempts:" + mobile }
func lockKey(mobile string) string     { return cache.KeyOTPPrefix + "lock:" + mobile }

func (s *OTPService) sendsKey(mobile string) string {
	return cache.KeyOTPPrefix + "sends:" + mobile + ":" + s.now().UTC().Format("20060102")
}

// NormalizeMobile strips spaces, dashes and a leading '+'. The rest must be
// 10 to 15 digits.
func NormalizeMobile(raw string) (string, error) {
	m := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(raw))
	m = strings.TrimPrefix(m, "+")
	if len(m) < 10 || len(m) > 15 {
		return "", ErrInvalidMobile
	}
	for _, r := range m {
		if r < '0' || r > '9' {
			return "", ErrInvalidMobile
		}
	}
	return m, nil
}

// Send generates and delivers a new code, replacing any pending one. It
// returns the code and how long it stays valid.
func (s *OTPService) Send(ctx context.Context, mobile string) (string, time.Duration, error) {
	if err := s.checkLock(ctx, mobile); err != nil {
		return "", 0, err
	}

	if s.cfg.MaxSendsPerDay > 0 {
		n, err := s.store.Incr(ctx, s.sendsKey(mobile), 24*time.Hour)
		if err != nil {
			return "", 0, unavailable(err)
		}
		if n > int64(s.cfg.MaxSendsPerDay) {
			return "", 0, ErrOTPLimitExceeded
		}
	}

	code, err := generateCode(s.cfg.Length)
	if err != nil {
		return "", 0, ErrInternal
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	if err != nil {
		return "", 0, ErrInternal
	}
	if err := s.store.SetString(ctx, codeKey(mobile), string(hash), s.cfg.TTL); err != nil {
		return "", 0, unavailable(err)
	}
	if err := s.store.Delete(ctx, attemptsKey(mobile)); err != nil {
		return "", 0, unavailable(err)
	}

	if err := s.sender.SendOTP(ctx, mobile, code); err != nil {
		_ = s.store.Delete(ctx, codeKey(mobile))
		return "", 0, ErrInternal
	}
	return code, s.cfg.TTL, nil
}

// Verify checks code against the pending one. Every wrong guess counts; at
// MaxAttempts the number is locked for LockDuration.
func (s *OTPService) Verify(ctx context.Context, mobile, code string) error {
	if err := s.checkLock(ctx, mobile); err != nil {
		return err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrInvalidOTP
	}

	hash, found, err := s.store.GetString(ctx, codeKey(mobile))
	if err != nil {
		return unavailable(err)
	}
	if !found {
		return ErrOTPExpired
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		n, err := s.store.Incr(ctx, attemptsKey(mobile), s.cfg.LockDuration)
		if err != nil {
			return unavailable(err)
		}
		if n >= int64(s.cfg.MaxAttempts) {
			if err := s.store.SetString(ctx, lockKey(mobile), "1", s.cfg.LockDuration); err != nil {
				return unavailable(err)
			}
			_ = s.store.Delete(ctx, codeKey(mobile))
			_ = s.store.Delete(ctx, attemptsKey(mobile))
			return ErrOTPLocked
		}
		return ErrInvalidOTP
	}

	_ = s.store.Delete(ctx, codeKey(mobile))
	_ = s.store.Delete(ctx, attemptsKey(mobile))
	return nil
}

// LockedFor reports the remaining lock time, zero when not locked.
func (s *OTPService) LockedFor(ctx context.Context, mobile string) (time.Duration, error) {
	_, locked, err := s.store.GetString(ctx, lockKey(mobile))
	if err != nil {
		return 0, unavailable(err)
	}
	if !locked {
		return 0, nil
	}
	ttl, err := s.store.TTL(ctx, lockKey(mobile))
	if err != nil || ttl < 0 {
		return s.cfg.LockDuration, nil
	}
	return ttl, nil
}

func (s *OTPService) checkLock(ctx context.Context, mobile string) error {
	d, err := s.LockedFor(ctx, mobile)
	if err != nil {
		return err
	}
	if d > 0 {
		return ErrOTPLocked
	}
	return nil
}

func generateCode(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	ten := big.NewInt(10)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

func unavailable(err error) error {
	if errors.Is(err, cache.ErrUnavailable) {
		return ErrUnavailable
	}
	return ErrInternal
}

package sms

import (
	"context"
	"fmt"

	"i4e-backend/internal/pkg/logger"
)

// Sender delivers a one-time password to a mobile number.
type Sender interface {
	SendOTP(ctx context.Context, mobileNo, otp string) error
}

// LogSender writes the message to the log instead of an SMS gateway.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log.With("service", "LogSender")}
}

func (s *LogSender) SendOTP(ctx context.Context, mobileNo, otp string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Info("otp message", "mobile_no", mask(mobileNo), "body", fmt.Sprintf("Your i4e verification code is %s", otp))
	return nil
}

func mask(mobileNo string) string {
	if len(mobileNo) <= 4 {
		return "****"
	}
	return fmt.Sprintf("%s%s", "******", mobileNo[len(mobileNo)-4:])
}

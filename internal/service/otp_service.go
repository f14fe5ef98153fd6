package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrInvalidOTP = errors.New("invalid or expired code")

type OTPPurpose string

const (
	OTPPurposeSignup OTPPurpose = "signup"
	OTPPurposeEmail  OTPPurpose = "email"
)

func (p OTPPurpose) IsValid() bool {
	return p == OTPPurposeSignup || p == OTPPurposeEmail
}

// consumeOTPScript deletes the code when it matches, making each code single use. A miss
// bumps the attempt counter, which lives as long as the code; the code is burned once
// ARGV[2] misses have been counted.
// KEYS[1] code, KEYS[2] attempts; ARGV[1] candidate, ARGV[2] max attempts.
var consumeOTPScript = redis.NewScript(`
	local stored = redis.call('GET', KEYS[1])
	if not stored then
		return 0
	end
	if stored == ARGV[1] then
		redis.call('DEL', KEYS[1], KEYS[2])
		return 1
	end
	local misses = redis.call('INCR', KEYS[2])
	if misses == 1 then
		local ttl = redis.call('PTTL', KEYS[1])
		if ttl > 0 then
			redis.call('PEXPIRE', KEYS[2], ttl)
		end
	end
	if misses >= tonumber(ARGV[2]) then
		redis.call('DEL', KEYS[1], KEYS[2])
	end
	return 0
`)

const defaultOTPMaxAttempts = 5

type OTPService struct {
	redisClient *redis.Client
	mailer      Mailer
	ttl         time.Duration
	length      int
	maxAttempts int
}

func NewOTPService(redisClient *redis.Client, mailer Mailer, ttl time.Duration, length, maxAttempts int) *OTPService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if length <= 0 {
		length = 6
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultOTPMaxAttempts
	}
	return &OTPService{
		redisClient: redisClient,
		mailer:      mailer,
		ttl:         ttl,
		length:      length,
		maxAttempts: maxAttempts,
	}
}

func otpKey(purpose OTPPurpose, email string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, strings.ToLower(email))
}

func otpAttemptsKey(purpose OTPPurpose, email string) string {
	return otpKey(purpose, email) + ":attempts"
}

// Issue stores a fresh code, replacing any earlier one, and mails it.
func (s *OTPService) Issue(ctx context.Context, purpose OTPPurpose, email string) error {
	code, err := s.generate()
	if err != nil {
		return err
	}
	pipe := s.redisClient.TxPipeline()
	pipe.Set(ctx, otpKey(purpose, email), code, s.ttl)
	pipe.Del(ctx, otpAttemptsKey(purpose, email))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return s.mailer.SendOTP(ctx, email, purpose, code)
}

// Verify consumes the code. A wrong, expired, reused or burned code returns ErrInvalidOTP;
// after maxAttempts wrong guesses the code is burned and a new one must be issued.
func (s *OTPService) Verify(ctx context.Context, purpose OTPPurpose, email, code string) error {
	keys := []string{otpKey(purpose, email), otpAttemptsKey(purpose, email)}
	ok, err := consumeOTPScript.Run(ctx, s.redisClient, keys, code, s.maxAttempts).Int()
	if err != nil {
		return fmt.Errorf("verify otp: %w", err)
	}
	if ok != 1 {
		return ErrInvalidOTP
	}
	return nil
}

func (s *OTPService) generate() (string, error) {
	var b strings.Builder
	for i := 0; i < s.length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

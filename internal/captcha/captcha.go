// Package captcha issues short human-check codes and verifies answers.
package captcha

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/google/uuid"
)

const (
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	Length   = 6
)

type Store interface {
	SaveCaptcha(ctx context.Context, id, code string, ttl time.Duration) error
	// TakeCaptcha returns and removes the code. A missing id yields "".
	TakeCaptcha(ctx context.Context, id string) (string, error)
}

type Challenge struct {
	ID   string `json:"captchaId"`
	Code string `json:"code"`
}

type Service struct {
	store Store
	ttl   time.Duration
}

func NewService(store Store, ttl time.Duration) *Service {
	return &Service{store: store, ttl: ttl}
}

func (s *Service) Issue(ctx context.Context) (*Challenge, error) {
	code, err := Generate()
	if err != nil {
		return nil, err
	}
	ch := &Challenge{ID: uuid.NewString(), Code: code}
	if err := s.store.SaveCaptcha(ctx, ch.ID, ch.Code, s.ttl); err != nil {
		return nil, fmt.Errorf("save captcha: %w", err)
	}
	return ch, nil
}

// Verify consumes the challenge whether or not the answer matches.
func (s *Service) Verify(ctx context.Context, id, answer string) error {
	if id == "" {
		return fmt.Errorf("%w: captcha is required", domain.ErrValidation)
	}
	code, err := s.store.TakeCaptcha(ctx, id)
	if err != nil {
		return fmt.Errorf("load captcha: %w", err)
	}
	if code == "" || strings.TrimSpace(answer) != code {
		return domain.ErrCaptchaMismatch
	}
	return nil
}

func Generate() (string, error) {
	limit := big.NewInt(int64(len(Alphabet)))
	var b strings.Builder
	for i := 0; i < Length; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate captcha: %w", err)
		}
		b.WriteByte(Alphabet[n.Int64()])
	}
	return b.String(), nil
}

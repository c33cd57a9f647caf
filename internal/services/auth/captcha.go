package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// Captcha is a simple arithmetic challenge issued after a failed login.
type Captcha struct {
	ID       string `json:"captcha_id"`
	Question string `json:"question"`
}

// NewCaptcha generates a challenge and stores the expected answer. The
// answer is single use and expires with the store's TTL.
func (s *service) NewCaptcha(ctx context.Context) (*Captcha, error) {
	a, err := randomInt(1, 20)
	if err != nil {
		return nil, err
	}
	b, err := randomInt(1, 10)
	if err != nil {
		return nil, err
	}

	plus, err := randomInt(0, 1)
	if err != nil {
		return nil, err
	}

	var question string
	var answer int
	if plus == 1 {
		question = fmt.Sprintf("What is %d + %d?", a, b)
		answer = a + b
	} else {
		// Keep the operands ordered so the answer stays non-negative.
		if b > a {
			a, b = b, a
		}
		question = fmt.Sprintf("What is %d - %d?", a, b)
		answer = a - b
	}

	captcha := &Captcha{
		ID:       uuid.NewString(),
		Question: question,
	}
	if err := s.captchas.SaveAnswer(ctx, captcha.ID, answer); err != nil {
		return nil, fmt.Errorf("failed to store captcha: %w", err)
	}
	return captcha, nil
}

func randomInt(min, max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min+1)))
	if err != nil {
		return 0, err
	}
	return min + int(n.Int64()), nil
}

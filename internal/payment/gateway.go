package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"swiftmart/internal/model"

	"github.com/shopspring/decimal"
)

// Gateway abstracts the payment provider. The mock implementation stands in
// for a real processor.
type Gateway interface {
	// CreateIntent registers a payment intent and returns its ID plus the
	// client secret the frontend needs to confirm it.
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (intentID, clientSecret string, err error)

	// ClientSecret derives the client secret for an existing intent.
	ClientSecret(intentID string) string

	// Confirm settles an intent. A pending hint lets the gateway decide
	// (mock: 90% success); a terminal hint forces that outcome.
	Confirm(ctx context.Context, intentID string, hint model.TransactionStatus) (model.TransactionStatus, error)
}

const (
	intentPrefix = "pi_"
	secretPrefix = "sec_"

	// confirmSuccessPercent is the mock gateway's success rate when the
	// caller does not force an outcome.
	confirmSuccessPercent = 90
)

type mockGateway struct{}

// NewMockGateway creates the stand-in payment gateway.
func NewMockGateway() Gateway {
	return mockGateway{}
}

func (mockGateway) CreateIntent(_ context.Context, _ decimal.Decimal, _ string) (string, string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate intent id: %w", err)
	}
	token := hex.EncodeToString(buf)
	return intentPrefix + token, secretPrefix + token, nil
}

func (mockGateway) ClientSecret(intentID string) string {
	return secretPrefix + strings.TrimPrefix(intentID, intentPrefix)
}

func (mockGateway) Confirm(_ context.Context, _ string, hint model.TransactionStatus) (model.TransactionStatus, error) {
	switch hint {
	case model.TransactionStatusSucceeded, model.TransactionStatusFailed:
		return hint, nil
	}

	n, err := rand.Int(rand.Reader, big.NewInt(100))
	if err != nil {
		return "", fmt.Errorf("failed to roll confirmation outcome: %w", err)
	}
	if n.Int64() < confirmSuccessPercent {
		return model.TransactionStatusSucceeded, nil
	}
	return model.TransactionStatusFailed, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/harentsoaR/diagnosia-api/internal/metrics"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

var (
	ErrPaymentsDisabled = errors.New("payments are not configured")
	ErrInvalidAmount    = errors.New("price must be positive")
)

// PaymentProcessor creates a payment intent and returns its client secret.
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (string, error)
}

type StripeProcessor struct {
	intents paymentintent.Client
}

func NewStripeProcessor(secretKey string) *StripeProcessor {
	return &StripeProcessor{
		intents: paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
	}
}

func (p *StripeProcessor) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	intent, err := p.intents.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return intent.ClientSecret, nil
}

type PaymentService struct {
	processor PaymentProcessor
	currency  string
}

// NewPaymentService returns a service that reports ErrPaymentsDisabled when
// processor is nil.
func NewPaymentService(processor PaymentProcessor, currency string) *PaymentService {
	return &PaymentService{processor: processor, currency: currency}
}

// CreateIntent charges price, given in major units, in the smallest currency unit.
func (s *PaymentService) CreateIntent(ctx context.Context, price float64) (string, error) {
	if s.processor == nil {
		return "", ErrPaymentsDisabled
	}
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return "", ErrInvalidAmount
	}
	amount := int64(math.Round(price * 100))

	secret, err := s.processor.CreateIntent(ctx, amount, s.currency)
	metrics.ExternalCalls.WithLabelValues("stripe", metrics.Outcome(err)).Inc()
	return secret, err
}

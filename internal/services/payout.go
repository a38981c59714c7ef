package services

import (
	"context"

	"github.com/denmor86/ya-minerpool/internal/logger"
	"github.com/denmor86/ya-minerpool/internal/models"
	"github.com/denmor86/ya-minerpool/internal/validators"
)

// Payout - разовый запрос распределения награды
type Payout struct {
	API PoolAPI
}

func NewPayout(api PoolAPI) *Payout {
	return &Payout{API: api}
}

// Request - проверяет сумму локально и только потом отправляет запрос
func (p *Payout) Request(ctx context.Context, rawAmount string) (models.Payouts, error) {
	amount, err := validators.ParseRewardAmount(rawAmount)
	if err != nil {
		logger.Warn("payout rejected locally", "amount", rawAmount)
		return nil, err
	}
	payouts, err := p.API.Payout(ctx, amount)
	if err != nil {
		return nil, err
	}
	logger.Info("payout done", "total_reward", amount.String(), "participants", len(payouts))
	return payouts, nil
}

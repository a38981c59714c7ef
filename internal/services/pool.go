package services

import (
	"context"
	"errors"
	"time"

	"github.com/denmor86/ya-minerpool/internal/client"
	"github.com/denmor86/ya-minerpool/internal/logger"
	"github.com/denmor86/ya-minerpool/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

//go:generate mockgen -source=pool.go -destination=mocks/mock_pool.go -package=mocks

var ErrRateLimited = errors.New("too many requests to pool, try later")

// PoolAPI - REST API сервера пула
type PoolAPI interface {
	Me(ctx context.Context) (*models.MeResponse, error)
	Register(ctx context.Context, creds models.Credentials) error
	Login(ctx context.Context, creds models.Credentials) error
	Logout(ctx context.Context) error
	Payout(ctx context.Context, totalReward decimal.Decimal) (models.Payouts, error)
}

func InitCircuitBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "pool-service",
		Timeout: 30 * time.Second, // через 30 сек пробуем подключиться
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// 5 попыток достучатся до сервиса
			return counts.ConsecutiveFailures >= 5
		},
		// ошибки, о которых сообщил сам сервер, не говорят о его недоступности
		IsSuccessful: func(err error) bool {
			return err == nil || client.IsServerError(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
}

// PoolService - REST клиент пула с ограничением частоты и circuit breaker.
// Повторов запросов нет: повтор делает пользователь.
type PoolService struct {
	Client  *client.Client
	Limiter *client.RateLimiter
	Breaker *gobreaker.CircuitBreaker
}

func NewPoolService(c *client.Client) *PoolService {
	return &PoolService{
		Client:  c,
		Limiter: client.NewRateLimiter(rate.Limit(20), 5),
		Breaker: InitCircuitBreaker(),
	}
}

func (s *PoolService) Me(ctx context.Context) (*models.MeResponse, error) {
	var me *models.MeResponse
	err := s.call(ctx, "me", func() (err error) {
		me, err = s.Client.Me(ctx)
		return err
	})
	return me, err
}

func (s *PoolService) Register(ctx context.Context, creds models.Credentials) error {
	return s.call(ctx, "register", func() error {
		return s.Client.Register(ctx, creds)
	})
}

func (s *PoolService) Login(ctx context.Context, creds models.Credentials) error {
	return s.call(ctx, "login", func() error {
		return s.Client.Login(ctx, creds)
	})
}

func (s *PoolService) Logout(ctx context.Context) error {
	return s.call(ctx, "logout", func() error {
		return s.Client.Logout(ctx)
	})
}

func (s *PoolService) Payout(ctx context.Context, totalReward decimal.Decimal) (models.Payouts, error) {
	var payouts models.Payouts
	err := s.call(ctx, "payout", func() (err error) {
		payouts, err = s.Client.Payout(ctx, totalReward)
		return err
	})
	return payouts, err
}

func (s *PoolService) call(ctx context.Context, name string, fn func() error) error {
	if s.Limiter.Blocked() {
		return ErrRateLimited
	}
	if err := s.Limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := s.Breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if err == nil {
		return nil
	}

	// проверка большого количества запросов
	var rateLimitErr *client.RateLimitError
	if errors.As(err, &rateLimitErr) {
		logger.Warn("too many requests to pool service", "request", name, "retry_after", rateLimitErr.RetryAfter)
		s.Limiter.BlockFor(rateLimitErr.RetryAfter)
		return ErrRateLimited
	}
	if !client.IsServerError(err) {
		logger.Error("pool request failed", "request", name, zap.Error(err))
	}
	return err
}

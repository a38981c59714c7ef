package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/denmor86/ya-minerpool/internal/logger"
	"github.com/denmor86/ya-minerpool/internal/models"
	"github.com/denmor86/ya-minerpool/internal/validators"
	"go.uber.org/zap"
)

// Identity - кэш аутентифицированного пользователя и его кошелька
type Identity struct {
	API PoolAPI

	mu      sync.RWMutex
	current models.Identity
	issued  uint64
	applied uint64
}

// Создание сервиса
func NewIdentity(api PoolAPI) *Identity {
	return &Identity{API: api, current: models.Anonymous()}
}

// Current - последний полученный снимок
func (i *Identity) Current() models.Identity {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.current
}

// Refresh - запрашивает пользователя у сервера и целиком заменяет снимок.
// При ошибке остаётся прежний снимок.
func (i *Identity) Refresh(ctx context.Context) (models.Identity, error) {
	i.mu.Lock()
	i.issued++
	seq := i.issued
	i.mu.Unlock()

	me, err := i.API.Me(ctx)

	i.mu.Lock()
	defer i.mu.Unlock()
	if err != nil {
		logger.Warn("identity refresh failed, keep previous snapshot", zap.Error(err))
		return i.current, fmt.Errorf("identity refresh: %w", err)
	}
	// ответ на более ранний запрос не перетирает более свежий снимок
	if seq < i.applied {
		return i.current, nil
	}
	i.applied = seq
	i.current = me.Identity()
	logger.Debug("identity refreshed", "authenticated", i.current.Authenticated, "username", i.current.Username)
	return i.current, nil
}

// Register - регистрация нового пользователя
func (i *Identity) Register(ctx context.Context, creds models.Credentials) error {
	creds, err := validators.CheckCredentials(creds)
	if err != nil {
		return err
	}
	if err := i.API.Register(ctx, creds); err != nil {
		return err
	}
	logger.Info("user registered", "username", creds.Username)
	return nil
}

// Login - вход и обновление снимка
func (i *Identity) Login(ctx context.Context, creds models.Credentials) (models.Identity, error) {
	creds, err := validators.CheckCredentials(creds)
	if err != nil {
		return i.Current(), err
	}
	if err := i.API.Login(ctx, creds); err != nil {
		return i.Current(), err
	}
	logger.Info("user authenticated", "username", creds.Username)
	return i.Refresh(ctx)
}

// Logout - выход и обновление снимка
func (i *Identity) Logout(ctx context.Context) (models.Identity, error) {
	if err := i.API.Logout(ctx); err != nil {
		return i.Current(), err
	}
	return i.Refresh(ctx)
}

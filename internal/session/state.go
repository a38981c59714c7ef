package session

import (
	"context"
	"errors"

	"github.com/denmor86/ya-minerpool/internal/models"
	"github.com/denmor86/ya-minerpool/internal/realtime"
	"github.com/denmor86/ya-minerpool/internal/validators"
)

var (
	ErrNotAuthenticated = errors.New("login required")
	ErrNoActiveSession  = errors.New("start mining first")
	ErrAlreadyActive    = errors.New("mining session already active")
	ErrJoinInProgress   = errors.New("join already in progress")
	ErrEmptyMessage     = validators.ErrEmptyMessage
)

// State - состояние сессии майнинга
type State int

const (
	StateAnonymous State = iota
	StateIdle
	StateJoining
	StateActive
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateIdle:
		return "idle"
	case StateJoining:
		return "joining"
	case StateActive:
		return "active"
	}
	return "unknown"
}

// Emitter - отправка событий в realtime канал
type Emitter interface {
	Emit(ctx context.Context, out realtime.Outbound) error
}

// View - получатель изменений состояния. Вызывается под мьютексом контроллера,
// обратно в контроллер обращаться нельзя.
type View interface {
	IdentityChanged(identity models.Identity)
	SessionChanged(state State, sessionID models.ID)
	AutoMineChanged(running bool)
	CountersChanged(counters models.Counters)
	ChatAppended(message models.ChatMessage)
	BalancesReplaced(balances []models.BalanceEntry)
	PayoutResult(payouts models.Payouts, err error)
	Notice(text string)
	Alert(err error)
}

// Status - снимок состояния контроллера
type Status struct {
	State     State
	SessionID models.ID
	AutoMine  bool
	Identity  models.Identity
	Counters  models.Counters
	Chat      []models.ChatMessage
	Balances  []models.BalanceEntry
}

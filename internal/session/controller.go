package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/denmor86/ya-minerpool/internal/config"
	"github.com/denmor86/ya-minerpool/internal/logger"
	"github.com/denmor86/ya-minerpool/internal/models"
	"github.com/denmor86/ya-minerpool/internal/realtime"
	"github.com/denmor86/ya-minerpool/internal/services"
	"github.com/denmor86/ya-minerpool/internal/validators"
	"github.com/denmor86/ya-minerpool/internal/worker"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Controller - жизненный цикл сессии майнинга и обработка realtime событий.
// Все изменения состояния выполняются под одним мьютексом.
type Controller struct {
	mu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	clock             clockwork.Clock
	heartbeatInterval time.Duration
	autoMineInterval  time.Duration

	emitter  Emitter
	view     View
	identity *services.Identity
	payout   *services.Payout

	state     State
	sessionID models.ID
	// число отменённых join, ответы на которые ещё не пришли.
	// Сервер отвечает на join по порядку, такие сессии закрываются leave_miner
	cancelledJoins int
	heartbeat      *worker.Periodic
	autoMine       *worker.Periodic

	counters models.Counters
	chat     []models.ChatMessage
	balances []models.BalanceEntry
}

// NewController - контроллер одного realtime соединения
func NewController(ctx context.Context, config config.MiningConfig, clock clockwork.Clock,
	emitter Emitter, view View, identity *services.Identity, payout *services.Payout) *Controller {
	ctx, cancel := context.WithCancel(ctx)
	return &Controller{
		ctx:               ctx,
		cancel:            cancel,
		clock:             clock,
		heartbeatInterval: config.HeartbeatInterval,
		autoMineInterval:  config.AutoMineInterval,
		emitter:           emitter,
		view:              view,
		identity:          identity,
		payout:            payout,
		state:             StateAnonymous,
	}
}

// Start - первичная загрузка пользователя
func (c *Controller) Start(ctx context.Context) error {
	return c.RefreshIdentity(ctx)
}

// RefreshIdentity - перечитывает пользователя с сервера.
// При ошибке состояние не меняется.
func (c *Controller) RefreshIdentity(ctx context.Context) error {
	identity, err := c.identity.Refresh(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyIdentityLocked(identity)
	return nil
}

func (c *Controller) Register(ctx context.Context, creds models.Credentials) error {
	if err := c.identity.Register(ctx, creds); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Notice("Registered. Now login.")
	return nil
}

func (c *Controller) Login(ctx context.Context, creds models.Credentials) error {
	identity, err := c.identity.Login(ctx, creds)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyIdentityLocked(identity)
	return nil
}

// Logout - выход из сессии майнинга и из учётной записи
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.Leave(ctx); err != nil {
		return err
	}
	identity, err := c.identity.Logout(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyIdentityLocked(identity)
	return nil
}

// Join - запрос на участие в майнинге. Сессия станет активной после события joined
func (c *Controller) Join(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateAnonymous:
		return ErrNotAuthenticated
	case StateJoining:
		return ErrJoinInProgress
	case StateActive:
		return ErrAlreadyActive
	}

	username := c.identity.Current().Username
	if err := c.emitter.Emit(ctx, realtime.JoinMiner{Username: username}); err != nil {
		logger.Warn("join_miner not sent", "username", username, zap.Error(err))
		return fmt.Errorf("join: %w", err)
	}
	c.setStateLocked(StateJoining)
	return nil
}

// Leave - локальный выход из сессии, подтверждение сервера не ожидается
func (c *Controller) Leave(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateJoining:
		c.cancelledJoins++
		c.setStateLocked(StateIdle)
	case StateActive:
		sessionID := c.sessionID
		c.clearSessionLocked()
		c.setStateLocked(StateIdle)
		c.emitLocked(ctx, realtime.LeaveMiner{SessionID: sessionID})
	}
	return nil
}

// SubmitShare - одна шара вручную
func (c *Controller) SubmitShare(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return ErrNoActiveSession
	}
	if err := c.emitter.Emit(ctx, realtime.Share{SessionID: c.sessionID}); err != nil {
		return fmt.Errorf("share: %w", err)
	}
	return nil
}

// StartAutoMine - периодическая отправка шар для текущей сессии.
// Повторный запуск ничего не делает.
func (c *Controller) StartAutoMine() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return ErrNoActiveSession
	}
	if c.autoMine != nil {
		return nil
	}

	sessionID := c.sessionID
	var task *worker.Periodic
	task = worker.NewPeriodic("automine", c.clock, c.autoMineInterval, func(ctx context.Context) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.autoMine != task {
			return
		}
		c.emitLocked(ctx, realtime.Share{SessionID: sessionID})
		c.emitLocked(ctx, realtime.Heartbeat{SessionID: sessionID})
	})
	c.autoMine = task
	task.Start(c.ctx)
	logger.Info("auto-mine started", "miner_session_id", sessionID.String(), "interval", c.autoMineInterval)
	c.view.AutoMineChanged(true)
	return nil
}

func (c *Controller) StopAutoMine() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopAutoMineLocked()
}

// SendChat - сообщение в общий чат от имени текущего пользователя
func (c *Controller) SendChat(ctx context.Context, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateAnonymous {
		return ErrNotAuthenticated
	}
	message, err := validators.NormalizeChatMessage(message)
	if err != nil {
		return err
	}
	username := c.identity.Current().Username
	if err := c.emitter.Emit(ctx, realtime.Chat{Username: username, Message: message}); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	return nil
}

// RequestPayout - распределение награды между участниками пула
func (c *Controller) RequestPayout(ctx context.Context, rawAmount string) (models.Payouts, error) {
	payouts, err := c.payout.Request(ctx, rawAmount)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.PayoutResult(payouts, err)
	return payouts, err
}

// Handle - обработка входящего события. События обрабатываются в порядке поступления
func (c *Controller) Handle(ctx context.Context, event realtime.Event) {
	refresh := c.handle(ctx, event)
	if !refresh {
		return
	}
	// каждый снимок балансов обновляет кошелёк ровно один раз
	if err := c.RefreshIdentity(ctx); err != nil {
		logger.Warn("identity refresh after balances failed", zap.Error(err))
	}
}

func (c *Controller) handle(ctx context.Context, event realtime.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e := event.(type) {
	case realtime.Hello:
		logger.Debug("server hello", "msg", e.Msg, "ts", e.TS)
	case realtime.Joined:
		c.handleJoinedLocked(ctx, e)
	case realtime.MinersCount:
		if e.Count < 0 {
			logger.Warn("negative miners count ignored", "count", e.Count)
			return false
		}
		c.counters.MinersCount = e.Count
		c.view.CountersChanged(c.counters)
	case realtime.TokenUpdate:
		if e.TotalShares < 0 {
			logger.Warn("negative total shares ignored", "total_shares", e.TotalShares)
			return false
		}
		c.counters.TotalShares = e.TotalShares
		c.view.CountersChanged(c.counters)
	case realtime.ChatBroadcast:
		c.chat = append(c.chat, e.Message)
		c.view.ChatAppended(e.Message)
	case realtime.PayoutsBroadcast:
		c.view.Notice("Payouts: " + e.Payouts.String())
	case realtime.BalancesSnapshot:
		c.balances = append([]models.BalanceEntry(nil), e.Balances...)
		c.view.BalancesReplaced(c.balances)
		return true
	case *realtime.ServerError:
		logger.Warn("server reported error", "msg", e.Msg)
		c.view.Alert(e)
	default:
		logger.Warn("unhandled realtime event", "event", string(event.Kind()))
	}
	return false
}

func (c *Controller) handleJoinedLocked(ctx context.Context, e realtime.Joined) {
	if e.SessionID.IsZero() {
		logger.Warn("joined without miner_session_id ignored")
		return
	}
	if c.cancelledJoins > 0 {
		c.cancelledJoins--
		logger.Info("closing session of cancelled join", "miner_session_id", e.SessionID.String())
		c.emitLocked(ctx, realtime.LeaveMiner{SessionID: e.SessionID})
		return
	}
	if c.state != StateJoining {
		logger.Warn("unexpected joined ignored", "state", c.state.String(), "miner_session_id", e.SessionID.String())
		return
	}

	c.sessionID = e.SessionID
	c.startHeartbeatLocked()
	c.setStateLocked(StateActive)
}

// Disconnect - обрыв realtime соединения, сессия теряется без leave_miner
func (c *Controller) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelledJoins = 0
	if c.state == StateJoining || c.state == StateActive {
		c.clearSessionLocked()
		c.setStateLocked(StateIdle)
	}
	logger.Info("realtime connection lost, session cleared")
}

// Snapshot - текущее состояние для отображения
func (c *Controller) Snapshot() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:     c.state,
		SessionID: c.sessionID,
		AutoMine:  c.autoMine != nil,
		Identity:  c.identity.Current(),
		Counters:  c.counters,
		Chat:      append([]models.ChatMessage(nil), c.chat...),
		Balances:  append([]models.BalanceEntry(nil), c.balances...),
	}
}

// Close - остановка фоновых задач
func (c *Controller) Close() {
	c.mu.Lock()
	c.clearSessionLocked()
	c.mu.Unlock()
	c.cancel()
}

func (c *Controller) applyIdentityLocked(identity models.Identity) {
	c.view.IdentityChanged(identity)
	switch {
	case !identity.Authenticated && c.state != StateAnonymous:
		c.cancelledJoins = 0
		c.clearSessionLocked()
		c.setStateLocked(StateAnonymous)
	case identity.Authenticated && c.state == StateAnonymous:
		c.setStateLocked(StateIdle)
	}
}

// startHeartbeatLocked - heartbeat живёт вместе с сессией, а не с процессом:
// первый сигнал уходит через полный интервал после joined
func (c *Controller) startHeartbeatLocked() {
	if c.heartbeat != nil {
		c.heartbeat.Stop()
	}
	var task *worker.Periodic
	task = worker.NewPeriodic("heartbeat", c.clock, c.heartbeatInterval, func(ctx context.Context) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.heartbeat != task || c.state != StateActive {
			return
		}
		c.emitLocked(ctx, realtime.Heartbeat{SessionID: c.sessionID})
	})
	c.heartbeat = task
	task.Start(c.ctx)
}

func (c *Controller) stopAutoMineLocked() {
	if c.autoMine == nil {
		return
	}
	c.autoMine.Stop()
	c.autoMine = nil
	logger.Info("auto-mine stopped")
	c.view.AutoMineChanged(false)
}

func (c *Controller) clearSessionLocked() {
	c.stopAutoMineLocked()
	if c.heartbeat != nil {
		c.heartbeat.Stop()
		c.heartbeat = nil
	}
	c.sessionID = ""
}

func (c *Controller) setStateLocked(state State) {
	if c.state == state {
		return
	}
	logger.Info("session state changed", "from", c.state.String(), "to", state.String(), "miner_session_id", c.sessionID.String())
	c.state = state
	c.view.SessionChanged(state, c.sessionID)
}

// emitLocked - отправка без возврата ошибки, сбой только логируется
func (c *Controller) emitLocked(ctx context.Context, out realtime.Outbound) {
	if err := c.emitter.Emit(ctx, out); err != nil {
		logger.Warn("realtime event not sent", "event", string(out.Kind()), zap.Error(err))
	}
}

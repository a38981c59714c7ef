package realtime

import (
	"github.com/denmor86/ya-minerpool/internal/models"
)

// Kind - имя события в realtime канале
type Kind string

// Входящие события
const (
	KindHello       Kind = "hello"
	KindJoined      Kind = "joined"
	KindMinersCount Kind = "miners_count"
	KindTokenUpdate Kind = "token_update"
	KindChatMessage Kind = "chat_message"
	KindPayouts     Kind = "payouts"
	KindBalances    Kind = "balances"
	KindError       Kind = "error"
)

// Исходящие события
const (
	KindJoinMiner  Kind = "join_miner"
	KindLeaveMiner Kind = "leave_miner"
	KindShare      Kind = "share"
	KindHeartbeat  Kind = "heartbeat"
	KindChat       Kind = "chat"
)

// Event - входящее событие сервера, каждый вид имеет свой тип
type Event interface {
	Kind() Kind
}

// Hello - диагностическое приветствие при подключении
type Hello struct {
	Msg string `json:"msg"`
	TS  string `json:"ts"`
}

// Joined - сервер подтвердил участие в майнинге
type Joined struct {
	SessionID models.ID `json:"miner_session_id"`
	UserID    models.ID `json:"user_id"`
	Username  string    `json:"username"`
}

// MinersCount - число активных майнеров
type MinersCount struct {
	Count int `json:"count"`
}

// TokenUpdate - общее число шар в пуле
type TokenUpdate struct {
	TotalShares int `json:"total_shares"`
}

// ChatBroadcast - сообщение чата
type ChatBroadcast struct {
	Message models.ChatMessage
}

// PayoutsBroadcast - результат распределения награды, разосланный всем участникам
type PayoutsBroadcast struct {
	Payouts models.Payouts `json:"payouts"`
}

// BalancesSnapshot - полный список балансов участников
type BalancesSnapshot struct {
	Balances []models.BalanceEntry `json:"balances"`
}

// ServerError - ошибка, которую сервер прислал в realtime канал
type ServerError struct {
	Msg string `json:"msg"`
}

func (e *ServerError) Error() string {
	return e.Msg
}

func (Hello) Kind() Kind            { return KindHello }
func (Joined) Kind() Kind           { return KindJoined }
func (MinersCount) Kind() Kind      { return KindMinersCount }
func (TokenUpdate) Kind() Kind      { return KindTokenUpdate }
func (ChatBroadcast) Kind() Kind    { return KindChatMessage }
func (PayoutsBroadcast) Kind() Kind { return KindPayouts }
func (BalancesSnapshot) Kind() Kind { return KindBalances }
func (*ServerError) Kind() Kind     { return KindError }

// Outbound - исходящее событие клиента
type Outbound interface {
	Kind() Kind
}

// JoinMiner - запрос на участие в майнинге
type JoinMiner struct {
	Username string `json:"username"`
}

// LeaveMiner - выход из сессии, подтверждение не ожидается
type LeaveMiner struct {
	SessionID models.ID `json:"miner_session_id"`
}

// Share - одна шара для активной сессии
type Share struct {
	SessionID models.ID `json:"miner_session_id"`
}

// Heartbeat - сигнал жизни активной сессии
type Heartbeat struct {
	SessionID models.ID `json:"miner_session_id"`
}

// Chat - сообщение в общий чат
type Chat struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

func (JoinMiner) Kind() Kind  { return KindJoinMiner }
func (LeaveMiner) Kind() Kind { return KindLeaveMiner }
func (Share) Kind() Kind      { return KindShare }
func (Heartbeat) Kind() Kind  { return KindHeartbeat }
func (Chat) Kind() Kind       { return KindChat }

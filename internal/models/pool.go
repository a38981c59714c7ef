package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Counters - агрегированные счётчики пула, только перезаписываются последним значением сервера
type Counters struct {
	MinersCount int
	TotalShares int
}

// ChatMessage - сообщение общего чата
type ChatMessage struct {
	Username    string
	Message     string
	TimestampMs int64
}

// BalanceEntry - баланс участника пула
type BalanceEntry struct {
	UserID  ID              `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

// PayoutRequest - запрос POST /api/payout
type PayoutRequest struct {
	TotalReward decimal.Decimal `json:"total_reward"`
}

// MarshalJSON отправляет сумму числом, а не строкой
func (r PayoutRequest) MarshalJSON() ([]byte, error) {
	return []byte(`{"total_reward":` + r.TotalReward.String() + `}`), nil
}

// Payouts - распределение награды по участникам: user_id -> сумма
type Payouts map[string]decimal.Decimal

type payoutItem struct {
	UserID ID              `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// UnmarshalJSON принимает как объект {"u1":4}, так и список [{"user_id":1,"amount":4}]
func (p *Payouts) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	result := Payouts{}
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = nil
		return nil
	case len(data) > 0 && data[0] == '[':
		var items []payoutItem
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("invalid payouts list: %w", err)
		}
		for _, item := range items {
			result[item.UserID.String()] = result[item.UserID.String()].Add(item.Amount)
		}
	default:
		var mapping map[string]decimal.Decimal
		if err := json.Unmarshal(data, &mapping); err != nil {
			return fmt.Errorf("invalid payouts mapping: %w", err)
		}
		for k, v := range mapping {
			result[k] = v
		}
	}
	*p = result
	return nil
}

// String - отображение распределения в виде {"u1":4,"u2":6}, ключи отсортированы
func (p Payouts) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		key, _ := json.Marshal(k)
		b.Write(key)
		b.WriteByte(':')
		b.WriteString(p[k].String())
	}
	b.WriteByte('}')
	return b.String()
}

package view

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/denmor86/ya-minerpool/internal/models"
	"github.com/denmor86/ya-minerpool/internal/session"
)

// Console - текстовое представление состояния клиента
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	location *time.Location
}

func NewConsole(out io.Writer, location *time.Location) *Console {
	if location == nil {
		location = time.Local
	}
	return &Console{out: out, location: location}
}

func (c *Console) IdentityChanged(identity models.Identity) {
	c.println(FormatIdentity(identity))
}

func (c *Console) SessionChanged(state session.State, sessionID models.ID) {
	c.println(FormatSession(state, sessionID))
}

func (c *Console) AutoMineChanged(running bool) {
	if running {
		c.println("Auto-mine: ON")
		return
	}
	c.println("Auto-mine: OFF")
}

func (c *Console) CountersChanged(counters models.Counters) {
	c.println(fmt.Sprintf("Miners: %d | Total shares: %d", counters.MinersCount, counters.TotalShares))
}

func (c *Console) ChatAppended(message models.ChatMessage) {
	c.println(FormatChat(message, c.location))
}

func (c *Console) BalancesReplaced(balances []models.BalanceEntry) {
	lines := make([]string, 0, len(balances)+1)
	lines = append(lines, "Balances:")
	for _, entry := range balances {
		lines = append(lines, "  "+FormatBalance(entry))
	}
	c.println(strings.Join(lines, "\n"))
}

func (c *Console) PayoutResult(payouts models.Payouts, err error) {
	if err != nil {
		c.println("Error: " + err.Error())
		return
	}
	c.println("Payout done: " + payouts.String())
}

func (c *Console) Notice(text string) {
	c.println(text)
}

func (c *Console) Alert(err error) {
	c.println("Error: " + err.Error())
}

// Status - вывод полного состояния по команде status
func (c *Console) Status(status session.Status) {
	lines := []string{
		FormatIdentity(status.Identity),
		FormatSession(status.State, status.SessionID),
		fmt.Sprintf("Miners: %d | Total shares: %d", status.Counters.MinersCount, status.Counters.TotalShares),
	}
	if status.AutoMine {
		lines = append(lines, "Auto-mine: ON")
	} else {
		lines = append(lines, "Auto-mine: OFF")
	}
	c.println(strings.Join(lines, "\n"))
}

func (c *Console) println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

func FormatIdentity(identity models.Identity) string {
	if !identity.Authenticated {
		return "Not logged in"
	}
	return fmt.Sprintf("User: %s | Wallet: %s | Balance: %s",
		identity.Username, identity.WalletAddress, identity.Balance.StringFixed(6))
}

func FormatSession(state session.State, sessionID models.ID) string {
	if state == session.StateActive {
		return fmt.Sprintf("Session: %s (%s)", state, sessionID)
	}
	return fmt.Sprintf("Session: %s", state)
}

// FormatChat - строка чата вида "username: message (HH:MM:SS)"
func FormatChat(message models.ChatMessage, location *time.Location) string {
	ts := time.UnixMilli(message.TimestampMs).In(location)
	return fmt.Sprintf("%s: %s (%s)", message.Username, message.Message, ts.Format(time.TimeOnly))
}

func FormatBalance(entry models.BalanceEntry) string {
	return fmt.Sprintf("user_id %s — %s", entry.UserID, entry.Balance.StringFixed(6))
}

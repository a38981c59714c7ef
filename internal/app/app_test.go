package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/denmor86/ya-minerpool/internal/client"
	"github.com/denmor86/ya-minerpool/internal/config"
	"github.com/denmor86/ya-minerpool/internal/logger"
	"github.com/denmor86/ya-minerpool/internal/models"
	"github.com/denmor86/ya-minerpool/internal/realtime"
	"github.com/google/go-cmp/cmp"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitOutput(t *testing.T, out *syncBuffer, expected string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(out.String(), expected) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Expected output to contain %q, got:\n%s", expected, out.String())
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		logger.Panic(err)
	}
	pool, server := newFakePool(t)
	cfg.Pool.PoolAddr = server.URL
	cfg.Pool.DialAttempts = 1

	in, input := io.Pipe()
	defer input.Close()
	out := &syncBuffer{}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, cfg, in, out)
	}()
	send := func(line string) {
		if _, err := io.WriteString(input, line+"\n"); err != nil {
			t.Fatalf("failed to send command: %v", err)
		}
	}

	waitOutput(t, out, "Not logged in")

	send("start")
	waitOutput(t, out, "Error: login required")

	send("login mda secret")
	waitOutput(t, out, "User: mda | Wallet: SIM-0123456789abcdef | Balance: 0.000000")

	send("start")
	waitOutput(t, out, "Session: active (5)")

	send("share")
	waitOutput(t, out, "Total shares: 1")

	send("chat hello")
	waitOutput(t, out, "mda: hello (")

	send("payout -5")
	waitOutput(t, out, "Error: enter a valid amount")

	send("payout 10")
	waitOutput(t, out, `Payout done: {"1":10}`)

	send("quit")
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Expected no error, got: '%v'", err)
		}
	case <-ctx.Done():
		t.Fatalf("client did not stop")
	}

	// leave_miner уходит при завершении
	deadline := time.Now().Add(2 * time.Second)
	var kinds []realtime.Kind
	for time.Now().Before(deadline) {
		kinds = kinds[:0]
		for _, env := range pool.Received() {
			kinds = append(kinds, env.Event)
		}
		if len(kinds) == 4 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	expected := []realtime.Kind{realtime.KindJoinMiner, realtime.KindShare, realtime.KindChat, realtime.KindLeaveMiner}
	if diff := cmp.Diff(expected, kinds); len(diff) != 0 {
		t.Errorf("received events mismatch:\n %s", diff)
	}
	if len(kinds) == 4 {
		var leave realtime.LeaveMiner
		if err := json.Unmarshal(pool.Received()[3].Data, &leave); err != nil {
			t.Fatalf("invalid leave_miner payload: %v", err)
		}
		if leave.SessionID != models.ID("5") {
			t.Errorf("Expected leave of session 5, got '%s'", leave.SessionID)
		}
	}
}

func TestDial_Attempts(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		logger.Panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	jar, err := client.NewCookieJar()
	if err != nil {
		t.Fatal(err)
	}
	// порт закрыт, все попытки неуспешны
	_, err = Dial(ctx, "ws://127.0.0.1:1/ws", jar, 2)
	if err == nil || !strings.Contains(err.Error(), "after 2 attempts") {
		t.Errorf("Expected error after 2 attempts, got: '%v'", err)
	}

	_, server := newFakePool(t)
	wsURL, err := realtime.WebsocketURL(server.URL, "/ws")
	if err != nil {
		t.Fatal(err)
	}
	conn, err := Dial(ctx, wsURL, jar, 1)
	if err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
	defer conn.Close()

	if err := conn.Emit(ctx, realtime.Heartbeat{SessionID: "5"}); err != nil {
		t.Errorf("Expected no error, got: '%v'", err)
	}
}

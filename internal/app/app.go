package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/denmor86/ya-minerpool/internal/client"
	"github.com/denmor86/ya-minerpool/internal/config"
	"github.com/denmor86/ya-minerpool/internal/logger"
	"github.com/denmor86/ya-minerpool/internal/realtime"
	"github.com/denmor86/ya-minerpool/internal/services"
	"github.com/denmor86/ya-minerpool/internal/session"
	"github.com/denmor86/ya-minerpool/internal/view"
	"github.com/jonboulle/clockwork"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Run - клиент пула: REST, realtime соединение и консоль до quit или отмены контекста
func Run(ctx context.Context, config config.Config, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jar, err := client.NewCookieJar()
	if err != nil {
		return fmt.Errorf("failed to create cookie jar: %w", err)
	}
	httpClient := client.NewHTTPClient(jar, config.Pool.RequestTimeout)
	pool := services.NewPoolService(client.NewClient(config.Pool.PoolAddr, httpClient))
	identity := services.NewIdentity(pool)
	payout := services.NewPayout(pool)

	wsURL, err := realtime.WebsocketURL(config.Pool.PoolAddr, config.Pool.WSPath)
	if err != nil {
		return err
	}
	conn, err := Dial(ctx, wsURL, jar, config.Pool.DialAttempts)
	if err != nil {
		return err
	}
	defer conn.Close()
	log := logger.With("connection_id", conn.ID)

	console := view.NewConsole(out, time.Local)
	controller := session.NewController(ctx, config.Mining, clockwork.NewRealClock(), conn, console, identity, payout)
	defer controller.Close()

	if err := controller.Start(ctx); err != nil {
		console.Alert(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := conn.ReadLoop(ctx, func(event realtime.Event) {
			controller.Handle(ctx, event)
		})
		if err != nil {
			log.Errorw("realtime connection lost", zap.Error(err))
			console.Alert(err)
		}
		controller.Disconnect()
	}()

	log.Infow("Starting client", "pool", config.Pool.PoolAddr, "ws", wsURL)
	if err := view.Run(ctx, in, console, controller); err != nil {
		logger.Error("console stopped", zap.Error(err))
	}

	log.Infow("Shutdown client")
	leaveCtx, leaveCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer leaveCancel()
	if err := controller.Leave(leaveCtx); err != nil {
		logger.Warn("leave on shutdown failed", zap.Error(err))
	}
	controller.Close()
	conn.Close()
	cancel()
	wg.Wait()
	log.Infow("Client stopped")
	return nil
}

// Dial - подключение к realtime каналу с ограниченным числом попыток
func Dial(ctx context.Context, wsURL string, jar http.CookieJar, attempts int) (*realtime.Conn, error) {
	if attempts < 1 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(500*time.Millisecond))

	var conn *realtime.Conn
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		c, err := realtime.Dial(ctx, wsURL, jar, realtime.DefaultConnConfig())
		if err != nil {
			logger.Warn("realtime dial failed", "attempt", attempt, "url", wsURL, zap.Error(err))
			return retry.RetryableError(err)
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("realtime connection not established after %d attempts: %w", attempt, err)
	}
	return conn, nil
}

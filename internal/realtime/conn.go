package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/denmor86/ya-minerpool/internal/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("realtime connection closed")

// ConnConfig - настройки websocket соединения
type ConnConfig struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	PingInterval     time.Duration
	MaxMessageSize   int64
}

func DefaultConnConfig() ConnConfig {
	return ConnConfig{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		PingInterval:     30 * time.Second,
		MaxMessageSize:   64 * 1024,
	}
}

// Conn - клиентское websocket соединение с сервером пула
type Conn struct {
	ID     string
	conn   *websocket.Conn
	config ConnConfig

	writeMu sync.Mutex
	closed  chan struct{}
	once    sync.Once
}

// WebsocketURL - адрес realtime канала по http адресу сервера
func WebsocketURL(baseURL string, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid pool address: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported pool address scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return u.String(), nil
}

// Dial - подключение к realtime каналу. Cookie сессии берутся из общего jar
func Dial(ctx context.Context, wsURL string, jar http.CookieJar, config ConnConfig) (*Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: config.HandshakeTimeout,
		Jar:              jar,
	}
	ws, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to dial %s: %w (status %d)", wsURL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to dial %s: %w", wsURL, err)
	}
	c := &Conn{
		ID:     uuid.New().String(),
		conn:   ws,
		config: config,
		closed: make(chan struct{}),
	}
	ws.SetReadLimit(config.MaxMessageSize)
	logger.Info("realtime connection established", "connection_id", c.ID, "url", wsURL)
	return c, nil
}

// Emit - отправка исходящего события. Записи сериализуются
func (c *Conn) Emit(ctx context.Context, out Outbound) error {
	frame, err := Encode(out)
	if err != nil {
		return err
	}

	select {
	case <-c.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Now().Add(c.config.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("failed to emit %s: %w", out.Kind(), err)
	}
	logger.Debug("event emitted", "connection_id", c.ID, "event", out.Kind())
	return nil
}

// ReadLoop - чтение входящих событий по порядку до закрытия соединения.
// Непонятные кадры пропускаются, на соединение они не влияют.
// Отмена ctx только останавливает ping, для выхода нужен Close.
func (c *Conn) ReadLoop(ctx context.Context, handle func(Event)) error {
	go c.keepAlive(ctx)
	defer c.Close()

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.closed:
				return nil
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Info("realtime connection closed by server", "connection_id", c.ID)
				return nil
			}
			return fmt.Errorf("realtime read failed: %w", err)
		}

		event, err := Decode(frame)
		if err != nil {
			logger.Warn("skip realtime frame", "connection_id", c.ID, zap.Error(err))
			continue
		}
		handle(event)
	}
}

func (c *Conn) keepAlive(ctx context.Context) {
	if c.config.PingInterval <= 0 {
		return
	}
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// соединение закрывает владелец, чтобы успеть отправить leave_miner
			return
		case <-c.closed:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.config.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				logger.Warn("failed to send ping", "connection_id", c.ID, zap.Error(err))
				return
			}
		}
	}
}

// Close - закрытие соединения, повторный вызов ничего не делает
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.closed)
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

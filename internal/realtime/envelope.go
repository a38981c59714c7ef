package realtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/denmor86/ya-minerpool/internal/models"
)

var ErrUnknownEvent = errors.New("unknown event")

// Envelope - кадр realtime канала
type Envelope struct {
	Event Kind            `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode - упаковка исходящего события в кадр
func Encode(out Outbound) ([]byte, error) {
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", out.Kind(), err)
	}
	return json.Marshal(Envelope{Event: out.Kind(), Data: data})
}

// Decode - разбор кадра во входящее событие нужного типа
func Decode(frame []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}
	if len(env.Data) == 0 {
		env.Data = json.RawMessage("{}")
	}

	switch env.Event {
	case KindHello:
		return decodeAs[Hello](env)
	case KindJoined:
		return decodeAs[Joined](env)
	case KindMinersCount:
		return decodeAs[MinersCount](env)
	case KindTokenUpdate:
		return decodeAs[TokenUpdate](env)
	case KindChatMessage:
		var payload chatPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", env.Event, err)
		}
		return ChatBroadcast{Message: models.ChatMessage{
			Username:    payload.Username,
			Message:     payload.Message,
			TimestampMs: parseTimestamp(payload.TS),
		}}, nil
	case KindPayouts:
		return decodeAs[PayoutsBroadcast](env)
	case KindBalances:
		return decodeAs[BalancesSnapshot](env)
	case KindError:
		var payload ServerError
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", env.Event, err)
		}
		return &payload, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}

func decodeAs[T Event](env Envelope) (Event, error) {
	var payload T
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", env.Event, err)
	}
	return payload, nil
}

type chatPayload struct {
	Username string          `json:"username"`
	Message  string          `json:"message"`
	TS       json.RawMessage `json:"ts"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// parseTimestamp - время сообщения в миллисекундах, 0 если сервер прислал что-то непонятное
func parseTimestamp(raw json.RawMessage) int64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}
	if raw[0] != '"' {
		ms, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return 0
		}
		return int64(ms)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/denmor86/ya-minerpool/internal/realtime"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// fakePool - сервер пула для проверки клиента целиком
type fakePool struct {
	t *testing.T

	mu       sync.Mutex
	shares   int
	received []realtime.Envelope
}

func newFakePool(t *testing.T) (*fakePool, *httptest.Server) {
	pool := &fakePool{t: t}
	server := httptest.NewServer(pool.router())
	t.Cleanup(server.Close)
	return pool, server
}

func (p *fakePool) router() chi.Router {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/me", p.me)
		r.Post("/login", p.login)
		r.Post("/logout", p.logout)
		r.Post("/payout", p.payout)
	})
	r.Get("/ws", p.ws)
	return r
}

func (p *fakePool) Received() []realtime.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]realtime.Envelope(nil), p.received...)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (p *fakePool) me(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie("session"); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"logged_in": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"logged_in": true,
		"user":      map[string]any{"id": 1, "username": "mda"},
		"wallet":    map[string]any{"address": "SIM-0123456789abcdef", "balance": 0.0},
	})
}

func (p *fakePool) login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Password != "secret" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1", Path: "/"})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (p *fakePool) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: "session", Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (p *fakePool) payout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TotalReward float64 `json:"total_reward"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TotalReward <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid total_reward"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payouts": []map[string]any{{"user_id": 1, "amount": req.TotalReward}},
	})
}

func (p *fakePool) ws(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.t.Errorf("upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := func(event string, data any) {
		payload, _ := json.Marshal(data)
		_ = conn.WriteJSON(realtime.Envelope{Event: realtime.Kind(event), Data: payload})
	}
	send("hello", map[string]string{"msg": "connected", "ts": "2024-05-01 13:04:05.123456"})

	for {
		var env realtime.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		p.mu.Lock()
		p.received = append(p.received, env)
		p.mu.Unlock()

		switch env.Event {
		case realtime.KindJoinMiner:
			send("joined", map[string]any{"miner_session_id": 5, "user_id": 1, "username": "mda"})
			send("miners_count", map[string]int{"count": 1})
		case realtime.KindShare:
			p.mu.Lock()
			p.shares++
			shares := p.shares
			p.mu.Unlock()
			send("token_update", map[string]int{"total_shares": shares})
		case realtime.KindHeartbeat:
			send("miners_count", map[string]int{"count": 1})
		case realtime.KindChat:
			var chat realtime.Chat
			_ = json.Unmarshal(env.Data, &chat)
			send("chat_message", map[string]any{"username": chat.Username, "message": chat.Message, "ts": "2024-05-01 13:04:05"})
		}
	}
}

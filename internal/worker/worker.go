package worker

import (
	"context"
	"sync"
	"time"

	"github.com/denmor86/ya-minerpool/internal/logger"
	"github.com/jonboulle/clockwork"
)

// Periodic - периодическая задача с фиксированным интервалом.
// Один экземпляр соответствует одному запуску: после Stop создаётся новый.
type Periodic struct {
	Name     string
	Interval time.Duration

	clock     clockwork.Clock
	task      func(ctx context.Context)
	mu        sync.Mutex
	started   bool
	stopped   bool
	ticker    clockwork.Ticker
	QuitChan  chan struct{}
	WaitGroup sync.WaitGroup
}

// NewPeriodic - конструктор периодической задачи
func NewPeriodic(name string, clock clockwork.Clock, interval time.Duration, task func(ctx context.Context)) *Periodic {
	return &Periodic{
		Name:     name,
		Interval: interval,
		clock:    clock,
		task:     task,
		QuitChan: make(chan struct{}),
	}
}

// Start - запускает задачу в фоне. Повторный запуск ничего не делает
func (p *Periodic) Start(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return false
	}
	p.started = true
	// тикер создаётся синхронно, чтобы первый тик отсчитывался от момента Start
	p.ticker = p.clock.NewTicker(p.Interval)
	p.WaitGroup.Add(1)
	go p.Run(ctx)
	logger.Debug("periodic task started", "task", p.Name, "interval", p.Interval)
	return true
}

// Stop - останавливает задачу, не дожидаясь завершения текущего тика
func (p *Periodic) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	close(p.QuitChan)
	if p.ticker != nil {
		p.ticker.Stop()
	}
	logger.Debug("periodic task stopped", "task", p.Name)
}

// Running - задача запущена и не остановлена
func (p *Periodic) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started && !p.stopped
}

// Wait - ожидание завершения фоновой горутины
func (p *Periodic) Wait() {
	p.WaitGroup.Wait()
}

// Run - основная рабочая логика
func (p *Periodic) Run(ctx context.Context) {
	defer p.WaitGroup.Done()

	for {
		select {
		case <-p.QuitChan:
			return
		case <-ctx.Done():
			return
		case <-p.ticker.Chan():
			// остановка имеет приоритет над уже пришедшим тиком
			select {
			case <-p.QuitChan:
				return
			default:
			}
			p.task(ctx)
		}
	}
}

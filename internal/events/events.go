// Package events delivers transfer notifications to in-process subscribers.
package events

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kubev2v/transfer-agent/internal/models"
)

type Publisher interface {
	Publish(e models.Event)
}

// Bus calls every subscriber synchronously, in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(models.Event)
	order  []int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(models.Event))}
}

// Subscribe registers fn and returns a function removing it.
func (b *Bus) Subscribe(fn func(models.Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *Bus) Publish(e models.Event) {
	if e.Err != nil {
		zap.S().Named("events").Debugw("event", "type", e.Type, "transfer", e.TransferID, "form", e.FormID, "error", e.Err)
	} else {
		zap.S().Named("events").Debugw("event", "type", e.Type, "transfer", e.TransferID, "form", e.FormID)
	}

	b.mu.RLock()
	subs := make([]func(models.Event), 0, len(b.subs))
	for _, id := range b.order {
		if fn, ok := b.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		deliver(fn, e)
	}
}

func deliver(fn func(models.Event), e models.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.S().Named("events").Errorw("subscriber panicked", "event", e.String(), "panic", rec)
		}
	}()
	fn(e)
}

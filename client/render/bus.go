package render

import (
	"sync"
)

// QuestionBus connects a clicked quick question to the message-composition
// input without direct wiring between the two components. It is owned by the
// mounted conversation view, so selections never leak into unrelated views.
type QuestionBus struct {
	mu   sync.Mutex
	subs map[int]func(question string)
	next int
}

// NewQuestionBus creates an empty bus.
func NewQuestionBus() *QuestionBus {
	return &QuestionBus{subs: make(map[int]func(string))}
}

// Subscribe registers a handler and returns a function that removes it.
func (b *QuestionBus) Subscribe(handler func(question string)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish delivers a selected question to every subscriber.
func (b *QuestionBus) Publish(question string) {
	b.mu.Lock()
	handlers := make([]func(string), 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(question)
	}
}

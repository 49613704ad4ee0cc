package portstest

import (
	"context"
	"sync"

	"github.com/GoArmGo/RecipeApp/internal/messaging/payloads"
)

// Publisher запоминает опубликованные события рецептов
type Publisher struct {
	mu     sync.Mutex
	events []payloads.RecipeEventPayload
}

func (p *Publisher) PublishRecipeEvent(ctx context.Context, payload payloads.RecipeEventPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, payload)
	return nil
}

// Events возвращает типы опубликованных событий по порядку
func (p *Publisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event)
	}
	return out
}

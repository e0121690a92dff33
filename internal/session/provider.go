package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/devstage/internal/component"
	"github.com/roach88/devstage/internal/engine"
)

// Provider owns the live session of one process scope.
//
// Thread-safety: all methods are safe for concurrent use.
type Provider struct {
	mu      sync.Mutex
	current *Session
	opts    []engine.Option
	logger  *slog.Logger
}

// NewProvider creates a provider whose sessions are built with opts.
func NewProvider(logger *slog.Logger, opts ...engine.Option) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{opts: opts, logger: logger}
}

// Bind returns the session for cfg.
//
// If the live session is for cfg.ID it is returned unchanged and initial
// is ignored. Otherwise the live session is closed and a new one starts
// from cfg, initial and any persisted record for cfg.ID.
func (p *Provider) Bind(ctx context.Context, cfg *component.Config, initial *engine.Partial) (*Session, error) {
	if cfg == nil || cfg.ID == "" {
		return nil, &Error{Code: ErrCodeInvalidConfig, Message: "configuration must have an id"}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil && p.current.ComponentID() == cfg.ID {
		return p.current, nil
	}

	if p.current != nil {
		if err := p.current.Close(ctx); err != nil {
			p.logger.Warn("close previous session", "component_id", p.current.ComponentID(), "error", err)
		}
		p.current = nil
	}

	opts := p.opts
	if initial != nil {
		opts = append(opts[:len(opts):len(opts)], engine.WithInitialState(*initial))
	}
	s, err := New(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	p.current = s
	p.logger.Debug("session bound", "component_id", cfg.ID)
	return s, nil
}

// Current returns the live session, or a NO_SESSION error.
func (p *Provider) Current() (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil, noSession("Provider.Current")
	}
	return p.current, nil
}

// Close closes the live session, if any.
func (p *Provider) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil
	}
	err := p.current.Close(ctx)
	p.current = nil
	return err
}

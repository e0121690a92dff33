package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/devstage/internal/component"
	"github.com/roach88/devstage/internal/eventlog"
	"github.com/roach88/devstage/internal/prop"
	"github.com/roach88/devstage/internal/store"
)

// PersistKeyPrefix namespaces persisted playground records.
const PersistKeyPrefix = "devstage-"

// PersistKey returns the durable record name for a component id. The id
// is NFC-normalized so visually identical ids share a record.
func PersistKey(componentID string) string {
	return PersistKeyPrefix + norm.NFC.String(componentID)
}

// persistDocument is the stored envelope.
type persistDocument struct {
	State   Persisted `json:"state"`
	Version int       `json:"version"`
}

// persistVersion is bumped when Persisted changes incompatibly.
const persistVersion = 0

// Engine owns the state of one playground session.
//
// Every mutation is applied under a lock and then delivered to all
// subscribers before the next mutation starts, so subscribers observe
// states in call order and never see a partial update.
//
// Thread-safety model:
//   - Mutations and Snapshot: safe from any goroutine
//   - Subscribers run on the mutating goroutine and must not call
//     mutations themselves (they may call Snapshot and Subscribe)
//
// Persistence is fire-and-forget: durable writes happen on a background
// goroutine and failures are logged, never returned.
type Engine struct {
	cfg *component.Config

	// dispatch serializes mutate+notify; mu guards state and subscribers.
	dispatch sync.Mutex
	mu       sync.Mutex
	state    State
	subs     []subscriber
	nextSub  int

	ids    eventlog.IDGenerator
	clock  eventlog.Clock
	logger *slog.Logger

	backend store.Backend
	key     string
	queue   *persistQueue

	initial *Partial
}

type subscriber struct {
	id int
	fn func(State)
}

// Option configures an Engine.
type Option func(*Engine)

// WithInitialState supplies a partial state that overrides the baseline
// and configuration defaults. Persisted state still wins for the five
// durable fields.
func WithInitialState(p Partial) Option {
	return func(e *Engine) {
		e.initial = &p
	}
}

// WithBackend enables persistence to b. Without a backend the engine is
// purely in-memory.
func WithBackend(b store.Backend) Option {
	return func(e *Engine) {
		e.backend = b
	}
}

// WithIDGenerator sets the event id generator.
//
// Default: eventlog.UUIDGenerator
func WithIDGenerator(g eventlog.IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithClock sets the clock used for event timestamps.
func WithClock(c eventlog.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an engine for cfg.
//
// The initial state is computed in four passes, later wins:
//  1. Baseline()
//  2. cfg.DefaultProps into props
//  3. WithInitialState, any top-level field
//  4. the persisted record for cfg.ID: props, viewport, theme,
//     background and codeView only
//
// A missing or unreadable persisted record skips pass 4. ctx bounds the
// read of the persisted record.
func New(ctx context.Context, cfg *component.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = &component.Config{}
	}
	e := &Engine{
		cfg:    cfg,
		ids:    eventlog.UUIDGenerator{},
		clock:  eventlog.SystemClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component_id", cfg.ID)

	s := Baseline()
	s.ComponentID = cfg.ID
	s.Props = cfg.DefaultPropsOrEmpty()
	s = e.initial.apply(s)

	if e.backend != nil && cfg.ID != "" {
		e.key = PersistKey(cfg.ID)
		if p, ok := e.loadPersisted(ctx); ok {
			s = p.apply(s)
		}
		e.queue = newPersistQueue(e.backend, e.key, e.logger)
	}

	e.state = s
	return e
}

func (e *Engine) loadPersisted(ctx context.Context) (Persisted, bool) {
	raw, found, err := e.backend.Get(ctx, e.key)
	if err != nil {
		e.logger.Warn("load persisted state failed", "key", e.key, "error", err)
		return Persisted{}, false
	}
	if !found {
		return Persisted{}, false
	}

	var doc persistDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		e.logger.Warn("persisted state is corrupt; ignoring", "key", e.key, "error", err)
		return Persisted{}, false
	}
	if dropped := doc.State.sanitize(); len(dropped) > 0 {
		e.logger.Warn("persisted state has invalid fields; ignoring them", "key", e.key, "fields", dropped)
	}
	e.logger.Debug("restored persisted state", "key", e.key, "version", doc.Version)
	return doc.State, true
}

// Config returns the configuration the engine was created for.
func (e *Engine) Config() *component.Config {
	return e.cfg
}

// Key returns the persistence key, or "" when persistence is disabled.
func (e *Engine) Key() string {
	return e.key
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Subscribe registers fn to receive the state after every mutation.
// The returned function cancels the subscription.
func (e *Engine) Subscribe(fn func(State)) (cancel func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextSub++
	id := e.nextSub
	e.subs = append(e.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, s := range e.subs {
				if s.id == id {
					e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
					break
				}
			}
		})
	}
}

// update applies fn to the state, notifies subscribers and, when persist
// is set, schedules a durable write.
func (e *Engine) update(op string, persist bool, fn func(State) State) State {
	e.dispatch.Lock()
	defer e.dispatch.Unlock()

	e.mu.Lock()
	e.state = fn(e.state)
	snap := e.state.Clone()
	subs := make([]subscriber, len(e.subs))
	copy(subs, e.subs)
	e.mu.Unlock()

	e.logger.Debug("state updated", "op", op)

	if persist && e.queue != nil {
		e.enqueuePersist(snap)
	}
	for _, s := range subs {
		s.fn(snap)
	}
	return snap
}

func (e *Engine) enqueuePersist(s State) {
	doc, err := json.Marshal(persistDocument{State: PersistedOf(s), Version: persistVersion})
	if err != nil {
		e.logger.Warn("encode persisted state failed", "key", e.key, "error", err)
		return
	}
	e.queue.Enqueue(doc)
}

// UpdateProp sets a single property, leaving the others untouched. Names
// outside the configuration are accepted and values are not type-checked.
func (e *Engine) UpdateProp(name string, value prop.Value) {
	e.update("updateProp", true, func(s State) State {
		s.Props = s.Props.With(name, value)
		return s
	})
}

// UpdateProps replaces the whole props mapping with props. Keys absent
// from props are removed.
func (e *Engine) UpdateProps(props prop.Map) {
	props = props.Clone()
	e.update("updateProps", true, func(s State) State {
		s.Props = props
		return s
	})
}

// ResetProps restores the configuration's default props, or an empty
// mapping if it declares none.
func (e *Engine) ResetProps() {
	defaults := e.cfg.DefaultPropsOrEmpty()
	e.update("resetProps", true, func(s State) State {
		s.Props = defaults
		return s
	})
}

// SetViewport selects the viewport.
func (e *Engine) SetViewport(v Viewport) {
	e.update("setViewport", true, func(s State) State {
		s.Viewport = v
		return s
	})
}

// SetTheme selects the theme.
func (e *Engine) SetTheme(t Theme) {
	e.update("setTheme", true, func(s State) State {
		s.Theme = t
		return s
	})
}

// SetBackground selects the background.
func (e *Engine) SetBackground(b Background) {
	e.update("setBackground", true, func(s State) State {
		s.Background = b
		return s
	})
}

// TogglePanel flips the visibility of panel p.
func (e *Engine) TogglePanel(p Panel) {
	e.update("togglePanel", false, func(s State) State {
		s.Panels = s.Panels.toggled(p)
		return s
	})
}

// SetPanelSize sets the size of pane key. The size is stored as given.
func (e *Engine) SetPanelSize(key PanelSizeKey, size float64) {
	e.update("setPanelSize", false, func(s State) State {
		s.PanelSizes = s.PanelSizes.with(key, size)
		return s
	})
}

// LogEvent stamps in with a fresh id and the current time, appends it and
// trims the log to the newest MaxEvents entries.
func (e *Engine) LogEvent(in EventInput) Event {
	var ev Event
	e.update("logEvent", false, func(s State) State {
		ev = Event{
			ID:        e.ids.Generate(),
			Timestamp: eventlog.Millis(e.clock.Now()),
			Type:      in.Type,
			Target:    in.Target,
			Data:      in.Data.Clone(),
		}
		start := max(0, len(s.Events)+1-MaxEvents)
		events := make([]Event, 0, len(s.Events)+1-start)
		events = append(events, s.Events[start:]...)
		s.Events = append(events, ev)
		return s
	})
	return ev
}

// ClearEvents empties the event log.
func (e *Engine) ClearEvents() {
	e.update("clearEvents", false, func(s State) State {
		s.Events = []Event{}
		return s
	})
}

// SetCodeViewOption sets one field of the code view options.
func (e *Engine) SetCodeViewOption(opt CodeViewOption) {
	e.update("setCodeViewOption", true, func(s State) State {
		s.CodeView = opt.apply(s.CodeView)
		return s
	})
}

// Flush waits until every state change made so far has been handed to
// the backend. Returns immediately when persistence is disabled.
func (e *Engine) Flush(ctx context.Context) error {
	if e.queue == nil {
		return nil
	}
	return e.queue.Flush(ctx)
}

// Close flushes pending writes and stops the persistence goroutine. The
// backend itself is owned by the caller and stays open. Mutations after
// Close still update memory but are no longer persisted.
func (e *Engine) Close(ctx context.Context) error {
	if e.queue == nil {
		return nil
	}
	return e.queue.Close(ctx)
}

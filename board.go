package main

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gregoryjjb/weblamp/circularbuffer"
	"gregoryjjb/weblamp/gpio"
	"gregoryjjb/weblamp/pubsub"
)

var blog zerolog.Logger

func init() {
	blog = log.With().Str("component", "board").Logger()
}

var (
	ErrNotConfigured = errors.New("pin not configured")
	ErrBadAction     = errors.New("unknown action")
)

type Action string

const (
	ActionOn     Action = "on"
	ActionOff    Action = "off"
	ActionToggle Action = "toggle"
)

func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionOn, ActionOff, ActionToggle:
		return Action(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadAction, s)
}

// PinStatus is the externally visible snapshot of one configured pin.
type PinStatus struct {
	Pin  int    `json:"pin"`
	Name string `json:"name"`
	High bool   `json:"high"`
}

// ActivityEntry records one pin action for the recent-activity feed.
type ActivityEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

const activitySize = 32

// Board owns the configured pin records and serializes all hardware access.
// Handlers run concurrently under net/http, so every read and write of the
// registry or the driver goes through the mutex.
type Board struct {
	mu       sync.Mutex
	driver   gpio.Driver
	order    []int
	records  map[int]*PinStatus
	events   *pubsub.Pubsub[[]PinStatus]
	activity *circularbuffer.CircularBuffer[ActivityEntry]
}

// NewBoard configures every pin as an output driven low and records its
// initial state. Duplicate pin numbers are a configuration error.
func NewBoard(driver gpio.Driver, pins []PinConfig) (*Board, error) {
	b := &Board{
		driver:   driver,
		records:  make(map[int]*PinStatus, len(pins)),
		events:   pubsub.New[[]PinStatus](),
		activity: circularbuffer.New[ActivityEntry](activitySize),
	}

	for _, p := range pins {
		if _, exists := b.records[p.Pin]; exists {
			return nil, fmt.Errorf("pin %d configured twice", p.Pin)
		}

		driver.Output(p.Pin)
		if err := driver.Write(p.Pin, false); err != nil {
			return nil, fmt.Errorf("initializing pin %d: %w", p.Pin, err)
		}

		b.order = append(b.order, p.Pin)
		b.records[p.Pin] = &PinStatus{
			Pin:  p.Pin,
			Name: p.Name,
		}

		blog.Info().Int("pin", p.Pin).Str("name", p.Name).Msg("Configured pin")
	}

	return b, nil
}

// Refresh reads the hardware level of every configured pin and updates the
// in-memory records so the status page reflects hardware truth.
func (b *Board) Refresh() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, pin := range b.order {
		high, err := b.driver.Read(pin)
		if err != nil {
			return fmt.Errorf("reading pin %d: %w", pin, err)
		}
		b.records[pin].High = high
	}

	return nil
}

// Apply performs an on/off/toggle write to a configured pin and returns the
// resulting record. Unknown pins return ErrNotConfigured.
func (b *Board) Apply(pin int, action Action) (PinStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.records[pin]
	if !ok {
		return PinStatus{}, fmt.Errorf("pin %d: %w", pin, ErrNotConfigured)
	}

	var err error
	switch action {
	case ActionOn:
		err = b.driver.Write(pin, true)
	case ActionOff:
		err = b.driver.Write(pin, false)
	case ActionToggle:
		err = b.driver.Toggle(pin)
	default:
		return PinStatus{}, fmt.Errorf("%w: %q", ErrBadAction, action)
	}
	if err != nil {
		return PinStatus{}, fmt.Errorf("writing pin %d: %w", pin, err)
	}

	high, err := b.driver.Read(pin)
	if err != nil {
		return PinStatus{}, fmt.Errorf("reading back pin %d: %w", pin, err)
	}
	record.High = high

	blog.Info().
		Int("pin", pin).
		Str("name", record.Name).
		Str("action", string(action)).
		Bool("high", high).
		Msg("Applied pin action")

	// Publish never blocks (slow subscribers drop), so holding the lock is fine
	b.events.Publish(b.statusesLocked())

	return *record, nil
}

// ReadLevel configures an arbitrary pin as an input and reads its level.
// The pin does not have to be configured; this backs the diagnostic route.
func (b *Board) ReadLevel(pin int) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.driver.Input(pin)
	return b.driver.Read(pin)
}

// Statuses returns a snapshot of every configured pin in configuration order.
func (b *Board) Statuses() []PinStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.statusesLocked()
}

func (b *Board) statusesLocked() []PinStatus {
	statuses := make([]PinStatus, 0, len(b.order))
	for _, pin := range b.order {
		statuses = append(statuses, *b.records[pin])
	}
	return statuses
}

// LogActivity appends a message to the recent-activity feed.
func (b *Board) LogActivity(message string) {
	b.activity.Push(ActivityEntry{
		Time:    time.Now(),
		Message: message,
	})
}

// Activity returns the recent-activity feed, oldest first.
func (b *Board) Activity() []ActivityEntry {
	var entries []ActivityEntry
	b.activity.Each(func(e ActivityEntry) {
		entries = append(entries, e)
	})
	return entries
}

// Events exposes the state-change feed consumed by the websocket handler.
func (b *Board) Events() *pubsub.Pubsub[[]PinStatus] {
	return b.events
}

// Package events decouples the analysis pipeline from downstream consumers.
// The risk-assessment side subscribes to analysis outcomes without the
// engine knowing who listens.
package events

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leon-madara/ResonaAI-sub003/pkg/logger"
)

// Analysis event types.
const (
	TypeSessionAnalyzed     = "session.analyzed"
	TypeBaselineEstablished = "baseline.established"
	TypeDeviationFlagged    = "deviation.flagged"
	TypeHighRiskDetected    = "risk.high"
)

// Event is one pipeline outcome notification.
type Event struct {
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Source    string                 `json:"source"`
}

// Handler consumes one event.
type Handler func(event Event) error

// Bus fans events out to subscribers. Handlers run asynchronously; a failing
// handler is logged and never blocks the pipeline.
type Bus struct {
	handlers map[string][]Handler
	mu       sync.RWMutex
}

var globalBus *Bus
var once sync.Once

// GetBus returns the process-wide bus.
func GetBus() *Bus {
	once.Do(func() {
		globalBus = &Bus{handlers: make(map[string][]Handler)}
	})
	return globalBus
}

// Subscribe registers a handler for one event type, or "*" for all.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Unsubscribe removes every handler for the type.
func (b *Bus) Unsubscribe(eventType string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, eventType)
}

// Publish delivers the event to type and wildcard subscribers.
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	all := append(append([]Handler(nil), b.handlers[event.Type]...), b.handlers["*"]...)
	b.mu.RUnlock()

	for _, handler := range all {
		go func(h Handler) {
			if err := h(event); err != nil {
				logger.Error("event handler failed",
					zap.String("event_type", event.Type),
					zap.Error(err))
			}
		}(handler)
	}
}

// Publish is the convenience entry used by the pipeline.
func Publish(eventType string, data map[string]interface{}, source string) {
	GetBus().Publish(Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Source:    source,
	})
}

package events

import (
	"sync"
	"time"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventLeaseCreated    EventType = "LEASE_CREATED"
	EventLeaseActivated  EventType = "LEASE_ACTIVATED"
	EventLeaseExpired    EventType = "LEASE_EXPIRED"
	EventLeaseTerminated EventType = "LEASE_TERMINATED"
	EventPaymentRecorded EventType = "PAYMENT_RECORDED"
	EventPeriodDueSoon   EventType = "PERIOD_DUE_SOON"
	EventPeriodLate      EventType = "PERIOD_LATE"
	EventPenaltyApplied  EventType = "PENALTY_APPLIED"
	EventSummaryUpdated  EventType = "SUMMARY_UPDATED"
	EventError           EventType = "ERROR"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Subscriber is a function that handles events
type Subscriber func(Event)

// EventBus manages event publishing and subscriptions
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
	allSubs     []Subscriber // Subscribers to all events
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]Subscriber),
		allSubs:     make([]Subscriber, 0),
	}
}

// Subscribe registers a subscriber for a specific event type
func (eb *EventBus) Subscribe(eventType EventType, subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
}

// SubscribeAll registers a subscriber for all events
func (eb *EventBus) SubscribeAll(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.allSubs = append(eb.allSubs, subscriber)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Notify specific subscribers
	if subs, ok := eb.subscribers[event.Type]; ok {
		for _, sub := range subs {
			go sub(event) // Run in goroutine to avoid blocking
		}
	}

	// Notify all-event subscribers
	for _, sub := range eb.allSubs {
		go sub(event)
	}
}

// PublishLeaseActivated publishes a lease activated event
func (eb *EventBus) PublishLeaseActivated(leaseID string, total float64, firstRentStart time.Time) {
	eb.Publish(Event{
		Type: EventLeaseActivated,
		Data: map[string]interface{}{
			"lease_id":         leaseID,
			"initial_total":    total,
			"first_rent_start": firstRentStart.Format("2006-01-02"),
		},
	})
}

// PublishPaymentRecorded publishes a payment recorded event
func (eb *EventBus) PublishPaymentRecorded(leaseID, paymentID, paymentType string, amount float64) {
	eb.Publish(Event{
		Type: EventPaymentRecorded,
		Data: map[string]interface{}{
			"lease_id":     leaseID,
			"payment_id":   paymentID,
			"payment_type": paymentType,
			"amount":       amount,
		},
	})
}

// PublishPeriodLate publishes a period late event
func (eb *EventBus) PublishPeriodLate(leaseID string, periodStart, periodEnd time.Time, amount, penalty float64, daysLate int) {
	eb.Publish(Event{
		Type: EventPeriodLate,
		Data: map[string]interface{}{
			"lease_id":     leaseID,
			"period_start": periodStart.Format("2006-01-02"),
			"period_end":   periodEnd.Format("2006-01-02"),
			"amount":       amount,
			"penalty":      penalty,
			"days_late":    daysLate,
		},
	})
}

// PublishPeriodDueSoon publishes a period due soon event
func (eb *EventBus) PublishPeriodDueSoon(leaseID string, periodStart, periodEnd time.Time, amount float64) {
	eb.Publish(Event{
		Type: EventPeriodDueSoon,
		Data: map[string]interface{}{
			"lease_id":     leaseID,
			"period_start": periodStart.Format("2006-01-02"),
			"period_end":   periodEnd.Format("2006-01-02"),
			"amount":       amount,
		},
	})
}

// PublishLeaseExpired publishes a lease expired event
func (eb *EventBus) PublishLeaseExpired(leaseID string, endDate time.Time) {
	eb.Publish(Event{
		Type: EventLeaseExpired,
		Data: map[string]interface{}{
			"lease_id": leaseID,
			"end_date": endDate.Format("2006-01-02"),
		},
	})
}

// PublishError publishes an error event
func (eb *EventBus) PublishError(source, message string) {
	eb.Publish(Event{
		Type: EventError,
		Data: map[string]interface{}{
			"source":  source,
			"message": message,
		},
	})
}

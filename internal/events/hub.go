package events

import (
	"sync"
	"time"
)

type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Table names carried on change events. Consoles subscribe by these names
// and re-run their queries when an event for a watched table arrives.
const (
	TableProducts       = "products"
	TableCategories     = "categories"
	TableCustomers      = "customers"
	TableOrders         = "orders"
	TableOrderItems     = "order_items"
	TablePayments       = "payments"
	TableTasks          = "production_tasks"
	TableProductionLogs = "production_logs"
	TableTickets        = "support_tickets"
	TableWorkers        = "workers"
)

// Event announces that a row of Table was touched. It carries only the row
// id; subscribers re-fetch their own query rather than patching state.
type Event struct {
	Table  string    `json:"table"`
	Action Action    `json:"action"`
	RowID  uint      `json:"row_id"`
	At     time.Time `json:"at"`
}

type subscriber struct {
	tables map[string]bool // empty means all tables
	ch     chan Event
}

// Hub fans table-change events out to subscribers. Publish never blocks:
// a subscriber that falls behind loses events, which is harmless because
// consumers re-fetch full state on any event.
type Hub struct {
	mu   sync.RWMutex
	subs map[int]*subscriber
	next int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscriber)}
}

// Default is the process-wide hub, analogous to db.DB.
var Default = NewHub()

// Subscribe registers interest in the given tables (none means every
// table). The returned cancel func must be called to release the channel.
func (h *Hub) Subscribe(tables ...string) (<-chan Event, func()) {
	watched := make(map[string]bool, len(tables))
	for _, t := range tables {
		watched[t] = true
	}

	sub := &subscriber{tables: watched, ch: make(chan Event, 64)}

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = sub
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub.ch)
		}
		h.mu.Unlock()
	}

	return sub.ch, cancel
}

func (h *Hub) Publish(table string, action Action, rowID uint) {
	evt := Event{Table: table, Action: action, RowID: rowID, At: time.Now()}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if len(sub.tables) > 0 && !sub.tables[table] {
			continue
		}
		select {
		case sub.ch <- evt:
		default: // slow subscriber, drop
		}
	}
}

// Publish emits on the default hub.
func Publish(table string, action Action, rowID uint) {
	Default.Publish(table, action, rowID)
}

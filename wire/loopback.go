package wire

import (
	"sync"

	"github.com/tightknit/bandsync/model"
)

// Hub is an in-memory broadcast medium for tests and single-process
// multi-unit simulation. Every endpoint hears every other endpoint's
// broadcasts but never its own, like the radio medium. The medium's
// contract is preserved: a full endpoint buffer silently drops frames, and
// DropNext forces losses on demand.
type Hub struct {
	mu        sync.Mutex
	endpoints []*Endpoint
	dropNext  int
}

func NewHub() *Hub {
	return &Hub{}
}

// Endpoint attaches one unit to the medium.
func (h *Hub) Endpoint(depth int) *Endpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := &Endpoint{hub: h, frames: make(chan model.SyncMessage, depth)}
	h.endpoints = append(h.endpoints, e)
	return e
}

// DropNext makes the next n broadcasts vanish in transit.
func (h *Hub) DropNext(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropNext = n
}

// Endpoint is one unit's attachment to the hub. Implements Channel.
type Endpoint struct {
	hub    *Hub
	frames chan model.SyncMessage
}

func (e *Endpoint) Broadcast(msg model.SyncMessage) error {
	e.hub.mu.Lock()
	defer e.hub.mu.Unlock()
	if e.hub.dropNext > 0 {
		e.hub.dropNext--
		return nil
	}
	for _, other := range e.hub.endpoints {
		if other == e {
			continue
		}
		select {
		case other.frames <- msg:
		default:
			// lossy medium, full buffer drops
		}
	}
	return nil
}

func (e *Endpoint) Poll() (model.SyncMessage, bool, error) {
	select {
	case msg := <-e.frames:
		return msg, true, nil
	default:
		var none model.SyncMessage
		return none, false, nil
	}
}

package services

import (
	"sync"

	"main/utils"
)

// SlotKey builds the composite key addressing one logical content slot.
func SlotKey(pageKey, sectionKey string) string {
	return pageKey + ":" + sectionKey
}

// Bridge carries in-progress editor changes to live preview surfaces.
// Delivery is best-effort and at-most-once per send: a subscriber that is
// not yet registered when a send happens simply misses that update, which
// is acceptable because every message fully replaces the value for its key.
type Bridge interface {
	Send(key, value string)
	Subscribe(key string, handler func(value string)) (unsubscribe func())
}

// MemoryBridge is the in-process bridge implementation.
type MemoryBridge struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]func(string)
}

func NewMemoryBridge() *MemoryBridge {
	return &MemoryBridge{subs: make(map[string]map[int]func(string))}
}

// Send delivers the value to every subscriber registered for the key.
// No subscriber is a silent no-op.
func (b *MemoryBridge) Send(key, value string) {
	b.mu.RLock()
	handlers := make([]func(string), 0, len(b.subs[key]))
	for _, h := range b.subs[key] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(value)
	}
	utils.ContentBroadcasts.Inc()
}

// Subscribe registers a handler for one composite key and returns its
// unsubscribe function.
func (b *MemoryBridge) Subscribe(key string, handler func(value string)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.subs[key] == nil {
		b.subs[key] = make(map[int]func(string))
	}
	b.subs[key][id] = handler
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		if handlers, ok := b.subs[key]; ok {
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(b.subs, key)
			}
		}
		b.mu.Unlock()
	}
}

var (
	bridgeMu     sync.RWMutex
	globalBridge Bridge = NewMemoryBridge()
)

// SetBridge replaces the shared bridge instance and returns the previous one.
func SetBridge(b Bridge) Bridge {
	bridgeMu.Lock()
	defer bridgeMu.Unlock()
	prev := globalBridge
	if b == nil {
		globalBridge = NewMemoryBridge()
	} else {
		globalBridge = b
	}
	return prev
}

// GetBridge returns the shared bridge instance.
func GetBridge() Bridge {
	bridgeMu.RLock()
	b := globalBridge
	bridgeMu.RUnlock()
	return b
}

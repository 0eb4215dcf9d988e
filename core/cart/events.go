package cart

import "sync"

// EventCartUpdated is emitted after every successful cart mutation.
const EventCartUpdated = "cart-updated"

type (
	Event struct {
		Name      string `json:"event"`
		SessionID string `json:"-"`
		ItemCount int    `json:"item_count"`
	}

	// Listener is called synchronously by the store; it must not block.
	Listener func(Event)
)

type broadcaster struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
}

func newBroadcaster() *broadcaster {
	return &broadcaster{listeners: make(map[int]Listener)}
}

func (b *broadcaster) subscribe(l Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

func (b *broadcaster) publish(evt Event) {
	b.mu.RLock()
	listeners := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		listeners = append(listeners, l)
	}
	b.mu.RUnlock()

	for _, l := range listeners {
		l(evt)
	}
}

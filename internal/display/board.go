// Package display holds the surfaces auction views are rendered on.
package display

import (
	"sync"

	"github.com/vadiminshakov/auctiondapp/internal/domain"
)

// Board keeps the latest auction view and fans it out to subscribers via
// buffered channels.
type Board struct {
	mu     sync.RWMutex
	latest *domain.AuctionView
	subs   map[chan domain.AuctionView]struct{}
	buffer int
}

// NewBoard creates a board with the given per-subscriber buffer.
func NewBoard(buffer int) *Board {
	if buffer < 1 {
		buffer = 16
	}
	return &Board{
		subs:   make(map[chan domain.AuctionView]struct{}),
		buffer: buffer,
	}
}

// Render stores view as the latest and publishes it, dropping it for slow readers.
func (b *Board) Render(view domain.AuctionView) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest = &view
	for ch := range b.subs {
		select {
		case ch <- view:
		default:
			// drop slow consumer
		}
	}
}

// Latest returns the most recently rendered view.
func (b *Board) Latest() (domain.AuctionView, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.latest == nil {
		return domain.AuctionView{}, false
	}
	return *b.latest, true
}

// Subscribe returns a channel that receives views until Unsubscribe is called.
func (b *Board) Subscribe() chan domain.AuctionView {
	ch := make(chan domain.AuctionView, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel and closes it.
func (b *Board) Unsubscribe(ch chan domain.AuctionView) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

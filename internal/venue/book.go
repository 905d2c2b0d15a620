package venue

import (
	"sort"
	"sync"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
	"github.com/alanyoungcy/spreadwatch/internal/symbol"
)

// Book is the per-venue quote snapshot, keyed by the venue-native instrument
// symbol. It is written only by its owning feed client's listen loop and
// read by the polling loop; all access goes through the RWMutex so a read
// never observes a partially-written entry. Quotes are overwritten in place
// and never deleted: a stale quote stays visible until replaced.
type Book struct {
	mu     sync.RWMutex
	quotes map[string]domain.Quote
}

// NewBook returns an empty Book.
func NewBook() *Book {
	return &Book{quotes: make(map[string]domain.Quote)}
}

// Init registers instruments with zero-valued quotes so the book knows its
// configured universe before the first update arrives.
func (b *Book) Init(symbols []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range symbols {
		if _, ok := b.quotes[s]; !ok {
			b.quotes[s] = domain.Quote{}
		}
	}
}

// Set overwrites the quote for a native symbol.
func (b *Book) Set(native string, q domain.Quote) {
	b.mu.Lock()
	b.quotes[native] = q
	b.mu.Unlock()
}

// Get returns the current quote for a native symbol.
func (b *Book) Get(native string) (domain.Quote, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.quotes[native]
	return q, ok
}

// Has reports whether the native symbol is tracked.
func (b *Book) Has(native string) bool {
	_, ok := b.Get(native)
	return ok
}

// Len returns the number of tracked instruments.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.quotes)
}

// Snapshot returns a copy of the full book, including invalid entries.
func (b *Book) Snapshot() map[string]domain.Quote {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]domain.Quote, len(b.quotes))
	for s, q := range b.quotes {
		out[s] = q
	}
	return out
}

// Markets materializes every instrument whose quote is currently valid as a
// VenueMarket with a canonical symbol, sorted by symbol. Instruments without
// valid data are omitted; an all-invalid book yields an empty slice.
func (b *Book) Markets() []domain.VenueMarket {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]domain.VenueMarket, 0, len(b.quotes))
	for native, q := range b.quotes {
		if !q.Valid() {
			continue
		}
		out = append(out, domain.VenueMarket{
			Symbol:    symbol.Normalize(native),
			Bid:       q.Bid,
			Ask:       q.Ask,
			UpdatedAt: q.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

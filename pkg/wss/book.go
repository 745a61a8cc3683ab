// book.go maintains the per-asset order book mirror fed by the market
// stream. Full "book" snapshots replace the state; "price_change" deltas
// only advance the asset's hash (the next snapshot is authoritative);
// "last_trade_price" events accumulate in a bounded ring, each stamped with
// the latest known book hash so trades can be correlated with the book
// revision they executed against.
package wss

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/howardpen9/polysqueeze/pkg/types"
)

const (
	tradeRingCap = 50 // recent trades kept per asset, newest first
	hashMapCap   = 10 // asset → latest-hash entries kept, oldest evicted
)

// TradeRecord is one entry in the recent-trade ring.
type TradeRecord struct {
	ReceivedAt time.Time
	Trade      types.LastTradeMessage
	BookHash   string // latest known hash for the asset at receipt; "" if none seen yet
}

// AssetBookState is a point-in-time snapshot of one asset's tracked state.
// Returned by value; safe to hold across further stream updates.
type AssetBookState struct {
	AssetID      string
	Market       string
	Hash         string // revision tag of the last full snapshot
	Bids         []types.OrderSummary // sorted descending by price
	Asks         []types.OrderSummary // sorted ascending by price
	BestBid      decimal.NullDecimal
	BestAsk      decimal.NullDecimal
	RecentTrades []TradeRecord
	UpdatedAt    time.Time
}

type assetState struct {
	market  string
	hash    string
	bids    []types.OrderSummary
	asks    []types.OrderSummary
	trades  []TradeRecord
	updated time.Time
}

// bookStore holds all per-asset state for one connection. The stream reader
// writes; observers read snapshots. A single mutex serializes both; no I/O
// happens under the lock.
type bookStore struct {
	mu        sync.RWMutex
	assets    map[string]*assetState
	hashes    map[string]string // asset id → latest book hash
	hashOrder []string          // insertion order for oldest-first eviction
}

func newBookStore() *bookStore {
	return &bookStore{
		assets: make(map[string]*assetState),
		hashes: make(map[string]string),
	}
}

func (s *bookStore) stateFor(assetID string) *assetState {
	st, ok := s.assets[assetID]
	if !ok {
		st = &assetState{}
		s.assets[assetID] = st
	}
	return st
}

// applyBook replaces an asset's book with a full snapshot. The wire does
// not guarantee sorted levels, so bids sort descending and asks ascending
// here; best bid/ask derive from the sorted tops.
func (s *bookStore) applyBook(book *types.MarketBook) {
	bids := append([]types.OrderSummary(nil), book.Bids...)
	asks := append([]types.OrderSummary(nil), book.Asks...)
	sort.Slice(bids, func(i, j int) bool { return bids[i].Price.GreaterThan(bids[j].Price) })
	sort.Slice(asks, func(i, j int) bool { return asks[i].Price.LessThan(asks[j].Price) })

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stateFor(book.AssetID)
	st.market = book.Market
	st.hash = book.Hash
	st.bids = bids
	st.asks = asks
	st.updated = time.Now()

	if book.Hash != "" {
		s.setHashLocked(book.AssetID, book.Hash)
	}
}

// applyPriceChange records the post-update hashes carried by the deltas.
// Levels are not patched; the next full snapshot is authoritative.
func (s *bookStore) applyPriceChange(msg *types.PriceChangeMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, pc := range msg.PriceChanges {
		if pc.Hash != "" {
			s.setHashLocked(pc.AssetID, pc.Hash)
		}
		st := s.stateFor(pc.AssetID)
		st.updated = time.Now()
	}
}

// applyLastTrade pushes a trade onto the front of the asset's ring,
// stamping it with the most recent known hash for the asset.
func (s *bookStore) applyLastTrade(trade *types.LastTradeMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stateFor(trade.AssetID)
	record := TradeRecord{
		ReceivedAt: time.Now(),
		Trade:      *trade,
		BookHash:   s.hashes[trade.AssetID],
	}
	st.trades = append([]TradeRecord{record}, st.trades...)
	if len(st.trades) > tradeRingCap {
		st.trades = st.trades[:tradeRingCap]
	}
	st.updated = time.Now()
}

func (s *bookStore) setHashLocked(assetID, hash string) {
	if _, exists := s.hashes[assetID]; !exists {
		s.hashOrder = append(s.hashOrder, assetID)
		if len(s.hashOrder) > hashMapCap {
			oldest := s.hashOrder[0]
			s.hashOrder = s.hashOrder[1:]
			delete(s.hashes, oldest)
		}
	}
	s.hashes[assetID] = hash
}

// snapshot clones the asset's state under the read lock.
func (s *bookStore) snapshot(assetID string) (AssetBookState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.assets[assetID]
	if !ok {
		return AssetBookState{}, false
	}

	snap := AssetBookState{
		AssetID:      assetID,
		Market:       st.market,
		Hash:         st.hash,
		Bids:         append([]types.OrderSummary(nil), st.bids...),
		Asks:         append([]types.OrderSummary(nil), st.asks...),
		RecentTrades: append([]TradeRecord(nil), st.trades...),
		UpdatedAt:    st.updated,
	}
	if len(st.bids) > 0 {
		snap.BestBid = decimal.NewNullDecimal(st.bids[0].Price)
	}
	if len(st.asks) > 0 {
		snap.BestAsk = decimal.NewNullDecimal(st.asks[0].Price)
	}
	return snap, true
}

// reset drops all books and hashes. Called before every reconnect: hashes
// from the previous connection no longer identify valid revisions.
func (s *bookStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assets = make(map[string]*assetState)
	s.hashes = make(map[string]string)
	s.hashOrder = nil
}

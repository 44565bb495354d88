// Package memory provides an in-memory Store implementation, used as the
// default driver and as the fixture for engine tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stereohaus/beatstore"
	"github.com/stereohaus/beatstore/account"
	"github.com/stereohaus/beatstore/cart"
	"github.com/stereohaus/beatstore/catalog"
	"github.com/stereohaus/beatstore/id"
	"github.com/stereohaus/beatstore/license"
	"github.com/stereohaus/beatstore/order"
	"github.com/stereohaus/beatstore/sale"
)

type Store struct {
	mu sync.RWMutex

	// Catalog storage
	beats  map[string]*catalog.Beat
	genres map[string]*catalog.Genre

	// Sale ledger
	sales []*sale.Sale

	// Entitlement cache
	tierCache   map[string]license.Tier
	cacheExpiry map[string]time.Time

	// Cart storage, keyed by buyer email
	carts map[string]*cart.Cart

	// Pending orders, keyed by provider order id
	orders map[string]*order.PendingOrder

	// Accounts and auth artifacts
	accounts      map[string]*account.Account
	verifications map[string]*account.Verification
	resets        map[string]*account.ResetToken
	sessions      map[string]*account.Session
}

func New() *Store {
	return &Store{
		beats:         make(map[string]*catalog.Beat),
		genres:        make(map[string]*catalog.Genre),
		sales:         make([]*sale.Sale, 0),
		tierCache:     make(map[string]license.Tier),
		cacheExpiry:   make(map[string]time.Time),
		carts:         make(map[string]*cart.Cart),
		orders:        make(map[string]*order.PendingOrder),
		accounts:      make(map[string]*account.Account),
		verifications: make(map[string]*account.Verification),
		resets:        make(map[string]*account.ResetToken),
		sessions:      make(map[string]*account.Session),
	}
}

// Catalog Store implementation

func (s *Store) CreateBeat(_ context.Context, b *catalog.Beat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.beats[b.ID.String()]; exists {
		return beatstore.ErrAlreadyExists
	}
	s.beats[b.ID.String()] = b
	return nil
}

func (s *Store) GetBeat(_ context.Context, beatID id.BeatID) (*catalog.Beat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b, ok := s.beats[beatID.String()]; ok {
		return b, nil
	}
	return nil, beatstore.ErrBeatNotFound
}

func (s *Store) ListBeats(_ context.Context, opts catalog.ListOpts) ([]*catalog.Beat, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*catalog.Beat
	for _, b := range s.beats {
		if !opts.IncludeHidden && (b.IsHidden || !b.IsAvailable) {
			continue
		}
		if opts.Genre != "" && b.Genre != opts.Genre {
			continue
		}
		if opts.Search != "" && !matchesSearch(b, opts.Search) {
			continue
		}
		matched = append(matched, b)
	}

	sortBeats(matched, opts.Sort)
	total := int64(len(matched))

	if opts.Skip > 0 {
		if opts.Skip >= len(matched) {
			matched = nil
		} else {
			matched = matched[opts.Skip:]
		}
	}
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}
	return matched, total, nil
}

func matchesSearch(b *catalog.Beat, search string) bool {
	q := strings.ToLower(search)
	return strings.Contains(strings.ToLower(b.Name), q) ||
		strings.Contains(strings.ToLower(b.Genre), q) ||
		strings.Contains(strings.ToLower(b.Mood), q)
}

func sortBeats(beats []*catalog.Beat, by catalog.Sort) {
	sort.SliceStable(beats, func(i, j int) bool {
		a, b := beats[i], beats[j]
		switch by {
		case catalog.SortPopular:
			return a.Plays > b.Plays
		case catalog.SortPriceLow:
			return a.PriceBasic.Amount < b.PriceBasic.Amount
		case catalog.SortPriceHigh:
			return a.PriceBasic.Amount > b.PriceBasic.Amount
		default: // recent
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
}

func (s *Store) UpdateBeat(_ context.Context, b *catalog.Beat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.beats[b.ID.String()]; !ok {
		return beatstore.ErrBeatNotFound
	}
	s.beats[b.ID.String()] = b
	return nil
}

func (s *Store) DeleteBeat(_ context.Context, beatID id.BeatID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.beats[beatID.String()]; !ok {
		return beatstore.ErrBeatNotFound
	}
	delete(s.beats, beatID.String())
	return nil
}

func (s *Store) IncrementPlays(_ context.Context, beatID id.BeatID, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.beats[beatID.String()]
	if !ok {
		return beatstore.ErrBeatNotFound
	}
	b.Plays += delta
	b.Touch()
	return nil
}

func (s *Store) IncrementSales(_ context.Context, beatID id.BeatID, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.beats[beatID.String()]
	if !ok {
		return beatstore.ErrBeatNotFound
	}
	b.Sales += delta
	b.Touch()
	return nil
}

func (s *Store) SetDiscount(_ context.Context, beatID id.BeatID, percent int) error {
	if percent < 0 || percent > 100 {
		return beatstore.ValidationError{Field: "discount_percent", Message: "must be in [0,100]"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.beats[beatID.String()]
	if !ok {
		return beatstore.ErrBeatNotFound
	}
	b.DiscountPercent = percent
	b.Touch()
	return nil
}

func (s *Store) SetLeavingSoon(_ context.Context, beatID id.BeatID, leaving bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.beats[beatID.String()]
	if !ok {
		return beatstore.ErrBeatNotFound
	}
	b.IsLeavingSoon = leaving
	b.Touch()
	return nil
}

func (s *Store) SetHidden(_ context.Context, beatID id.BeatID, hidden bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.beats[beatID.String()]
	if !ok {
		return beatstore.ErrBeatNotFound
	}
	b.IsHidden = hidden
	b.Touch()
	return nil
}

func (s *Store) MarkSoldExclusive(_ context.Context, beatID id.BeatID, buyerEmail string, soldAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.beats[beatID.String()]
	if !ok {
		return beatstore.ErrBeatNotFound
	}
	if b.SoldExclusively() {
		return beatstore.ErrExclusiveSold
	}
	b.IsAvailable = false
	b.ExclusiveBuyer = buyerEmail
	b.ExclusiveSoldAt = &soldAt
	b.Touch()
	return nil
}

// Genre methods

func (s *Store) ListGenres(_ context.Context) ([]*catalog.Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*catalog.Genre, 0, len(s.genres))
	for _, g := range s.genres {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) AddGenre(_ context.Context, g *catalog.Genre) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.genres {
		if strings.EqualFold(existing.Name, g.Name) {
			return beatstore.ErrGenreExists
		}
	}
	s.genres[g.ID.String()] = g
	return nil
}

func (s *Store) DeleteGenre(_ context.Context, genreID id.GenreID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.genres[genreID.String()]; !ok {
		return beatstore.ErrGenreNotFound
	}
	delete(s.genres, genreID.String())
	return nil
}

// Sale ledger implementation

func (s *Store) RecordSale(_ context.Context, rec *sale.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sales = append(s.sales, rec)
	return nil
}

func (s *Store) GetSale(_ context.Context, saleID id.SaleID) (*sale.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.sales {
		if rec.ID.String() == saleID.String() {
			return rec, nil
		}
	}
	return nil, beatstore.ErrSaleNotFound
}

func (s *Store) GetSaleByProviderRef(_ context.Context, providerRef, tier string) (*sale.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.sales {
		if rec.ProviderRef == providerRef && string(rec.Tier) == tier {
			return rec, nil
		}
	}
	return nil, beatstore.ErrSaleNotFound
}

func (s *Store) ListSales(_ context.Context, limit int) ([]*sale.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*sale.Sale, len(s.sales))
	copy(out, s.sales)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListSalesForBuyer(_ context.Context, buyerEmail string) ([]*sale.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*sale.Sale
	for _, rec := range s.sales {
		if strings.EqualFold(rec.BuyerEmail, buyerEmail) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListSalesForBuyerBeat(_ context.Context, buyerEmail string, beatID id.BeatID) ([]*sale.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*sale.Sale
	for _, rec := range s.sales {
		if strings.EqualFold(rec.BuyerEmail, buyerEmail) && rec.BeatID.String() == beatID.String() {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Entitlement cache implementation

func tierCacheKey(buyerEmail string, beatID id.BeatID) string {
	return strings.ToLower(buyerEmail) + ":" + beatID.String()
}

func (s *Store) GetCachedTier(_ context.Context, buyerEmail string, beatID id.BeatID) (license.Tier, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := tierCacheKey(buyerEmail, beatID)
	tier, ok := s.tierCache[key]
	if !ok {
		return "", false, nil
	}
	if expiry, hasExpiry := s.cacheExpiry[key]; hasExpiry && time.Now().After(expiry) {
		return "", false, nil
	}
	return tier, true, nil
}

func (s *Store) SetCachedTier(_ context.Context, buyerEmail string, beatID id.BeatID, tier license.Tier, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tierCacheKey(buyerEmail, beatID)
	s.tierCache[key] = tier
	if ttl > 0 {
		s.cacheExpiry[key] = time.Now().Add(ttl)
	} else {
		delete(s.cacheExpiry, key)
	}
	return nil
}

func (s *Store) InvalidateTier(_ context.Context, buyerEmail string, beatID id.BeatID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tierCacheKey(buyerEmail, beatID)
	delete(s.tierCache, key)
	delete(s.cacheExpiry, key)
	return nil
}

// Cart implementation

func (s *Store) SaveCart(_ context.Context, c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[strings.ToLower(c.BuyerEmail)] = c
	return nil
}

func (s *Store) GetCart(_ context.Context, buyerEmail string) (*cart.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.carts[strings.ToLower(buyerEmail)]; ok {
		return c, nil
	}
	return nil, beatstore.ErrNotFound
}

func (s *Store) ClearCart(_ context.Context, buyerEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, strings.ToLower(buyerEmail))
	return nil
}

// Pending order implementation

func (s *Store) CreatePendingOrder(_ context.Context, o *order.PendingOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.ProviderRef]; exists {
		return beatstore.ErrAlreadyExists
	}
	s.orders[o.ProviderRef] = o
	return nil
}

func (s *Store) GetPendingOrder(_ context.Context, providerRef string) (*order.PendingOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if o, ok := s.orders[providerRef]; ok {
		return o, nil
	}
	return nil, beatstore.ErrOrderNotFound
}

func (s *Store) CompletePendingOrder(_ context.Context, providerRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[providerRef]
	if !ok {
		return beatstore.ErrOrderNotFound
	}
	o.Status = order.StatusCompleted
	o.Touch()
	return nil
}

// Account implementation

func (s *Store) CreateAccount(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return beatstore.ErrAccountExists
		}
	}
	s.accounts[a.ID.String()] = a
	return nil
}

func (s *Store) GetAccount(_ context.Context, accountID id.AccountID) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.accounts[accountID.String()]; ok {
		return a, nil
	}
	return nil, beatstore.ErrAccountNotFound
}

func (s *Store) GetAccountByEmail(_ context.Context, email string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return nil, beatstore.ErrAccountNotFound
}

func (s *Store) UpdateAccount(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[a.ID.String()]; !ok {
		return beatstore.ErrAccountNotFound
	}
	s.accounts[a.ID.String()] = a
	return nil
}

// Verification / reset / session implementation

func (s *Store) CreateVerification(_ context.Context, v *account.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// One live code per email: a new request replaces the previous code.
	s.verifications[strings.ToLower(v.Email)] = v
	return nil
}

func (s *Store) GetVerification(_ context.Context, email string) (*account.Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.verifications[strings.ToLower(email)]; ok {
		return v, nil
	}
	return nil, beatstore.ErrNotFound
}

func (s *Store) DeleteVerification(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.verifications, strings.ToLower(email))
	return nil
}

func (s *Store) CreateResetToken(_ context.Context, r *account.ResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resets[r.Token] = r
	return nil
}

func (s *Store) GetResetToken(_ context.Context, token string) (*account.ResetToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.resets[token]; ok {
		return r, nil
	}
	return nil, beatstore.ErrTokenInvalid
}

func (s *Store) MarkResetTokenUsed(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.resets[token]
	if !ok {
		return beatstore.ErrTokenInvalid
	}
	r.Used = true
	r.Touch()
	return nil
}

func (s *Store) CreateSession(_ context.Context, sess *account.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.Token] = sess
	return nil
}

func (s *Store) GetSession(_ context.Context, token string) (*account.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess, ok := s.sessions[token]; ok {
		return sess, nil
	}
	return nil, beatstore.ErrUnauthorized
}

func (s *Store) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

func (s *Store) DeleteSessionsForAccount(_ context.Context, accountID id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, sess := range s.sessions {
		if sess.AccountID.String() == accountID.String() {
			delete(s.sessions, token)
		}
	}
	return nil
}

// Core methods

func (s *Store) Migrate(_ context.Context) error { return nil }
func (s *Store) Ping(_ context.Context) error    { return nil }
func (s *Store) Close() error                    { return nil }

// Package mem provides in-memory store implementations backing the
// service and worker tests. Writes ignore the transaction handle, every
// method hands out copies so callers never alias the stored rows.
package mem

import (
	"context"
	"sort"
	"sync"

	"lendledger/core"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

// Markets in-memory market store
type Markets struct {
	mu    sync.Mutex
	rows  map[string]*core.Market
	order []string
}

// NewMarkets new in-memory market store
func NewMarkets() *Markets {
	return &Markets{rows: map[string]*core.Market{}}
}

func (s *Markets) Save(ctx context.Context, tx *db.DB, market *core.Market) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[market.MarketID]; !ok {
		s.order = append(s.order, market.MarketID)
	}
	c := *market
	s.rows[market.MarketID] = &c
	return nil
}

func (s *Markets) Find(ctx context.Context, marketID string) (*core.Market, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.rows[marketID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *m
	return &c, nil
}

func (s *Markets) All(ctx context.Context) ([]*core.Market, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	markets := make([]*core.Market, 0, len(s.order))
	for _, id := range s.order {
		c := *s.rows[id]
		markets = append(markets, &c)
	}
	return markets, nil
}

func (s *Markets) AllAsMap(ctx context.Context) (map[string]*core.Market, error) {
	markets, _ := s.All(ctx)
	maps := make(map[string]*core.Market, len(markets))
	for _, m := range markets {
		maps[m.MarketID] = m
	}
	return maps, nil
}

func (s *Markets) Update(ctx context.Context, tx *db.DB, market *core.Market) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	market.Version++
	c := *market
	s.rows[market.MarketID] = &c
	return nil
}

// Protocols in-memory protocol store
type Protocols struct {
	mu  sync.Mutex
	row *core.Protocol
}

// NewProtocols new in-memory protocol store
func NewProtocols() *Protocols {
	return &Protocols{}
}

func (s *Protocols) Get(ctx context.Context) (*core.Protocol, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.row == nil {
		s.row = &core.Protocol{}
	}
	c := *s.row
	return &c, nil
}

func (s *Protocols) Update(ctx context.Context, tx *db.DB, protocol *core.Protocol) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	protocol.Version++
	c := *protocol
	s.row = &c
	return nil
}

// Accounts in-memory account store
type Accounts struct {
	mu   sync.Mutex
	rows map[string]*core.Account
}

// NewAccounts new in-memory account store
func NewAccounts() *Accounts {
	return &Accounts{rows: map[string]*core.Account{}}
}

func (s *Accounts) FindOrCreate(ctx context.Context, tx *db.DB, address string) (*core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.rows[address]
	if !ok {
		a = &core.Account{Address: address}
		s.rows[address] = a
	}
	c := *a
	return &c, nil
}

func (s *Accounts) Find(ctx context.Context, address string) (*core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.rows[address]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *a
	return &c, nil
}

func (s *Accounts) Update(ctx context.Context, tx *db.DB, account *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account.Version++
	c := *account
	s.rows[account.Address] = &c
	return nil
}

// Positions in-memory position store
type Positions struct {
	mu        sync.Mutex
	counters  map[string]*core.PositionCounter
	rows      map[string]*core.Position
	snapshots []*core.PositionSnapshot
}

// NewPositions new in-memory position store
func NewPositions() *Positions {
	return &Positions{
		counters: map[string]*core.PositionCounter{},
		rows:     map[string]*core.Position{},
	}
}

func (s *Positions) FindCounter(ctx context.Context, counterKey string) (*core.PositionCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[counterKey]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Positions) SaveCounter(ctx context.Context, tx *db.DB, counter *core.PositionCounter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *counter
	s.counters[counter.CounterKey] = &c
	return nil
}

func (s *Positions) UpdateCounter(ctx context.Context, tx *db.DB, counter *core.PositionCounter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	counter.Version++
	c := *counter
	s.counters[counter.CounterKey] = &c
	return nil
}

func (s *Positions) Save(ctx context.Context, tx *db.DB, position *core.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *position
	s.rows[position.PositionID] = &c
	return nil
}

func (s *Positions) Find(ctx context.Context, positionID string) (*core.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.rows[positionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *p
	return &c, nil
}

func (s *Positions) FindByAccount(ctx context.Context, account string) ([]*core.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var positions []*core.Position
	for _, p := range s.rows {
		if p.AccountID == account {
			c := *p
			positions = append(positions, &c)
		}
	}
	sortPositions(positions)
	return positions, nil
}

func (s *Positions) FindByMarket(ctx context.Context, marketID string) ([]*core.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var positions []*core.Position
	for _, p := range s.rows {
		if p.MarketID == marketID {
			c := *p
			positions = append(positions, &c)
		}
	}
	sortPositions(positions)
	return positions, nil
}

func (s *Positions) Update(ctx context.Context, tx *db.DB, position *core.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	position.Version++
	c := *position
	s.rows[position.PositionID] = &c
	return nil
}

func (s *Positions) CreateSnapshot(ctx context.Context, tx *db.DB, snapshot *core.PositionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.snapshots {
		if existing.SnapshotID == snapshot.SnapshotID {
			return nil
		}
	}
	c := *snapshot
	s.snapshots = append(s.snapshots, &c)
	return nil
}

func (s *Positions) ListSnapshots(ctx context.Context, positionID string, limit int) ([]*core.PositionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snapshots []*core.PositionSnapshot
	for _, snap := range s.snapshots {
		if snap.PositionID == positionID {
			c := *snap
			snapshots = append(snapshots, &c)
		}
	}
	if limit > 0 && len(snapshots) > limit {
		snapshots = snapshots[len(snapshots)-limit:]
	}
	return snapshots, nil
}

func sortPositions(positions []*core.Position) {
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].PositionID < positions[j].PositionID
	})
}

// Transactions in-memory transaction store
type Transactions struct {
	mu       sync.Mutex
	rows     map[string]*core.Transaction
	order    []string
	badDebts map[string]*core.BadDebtRealization
}

// NewTransactions new in-memory transaction store
func NewTransactions() *Transactions {
	return &Transactions{
		rows:     map[string]*core.Transaction{},
		badDebts: map[string]*core.BadDebtRealization{},
	}
}

func (s *Transactions) Create(ctx context.Context, tx *db.DB, transaction *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[transaction.TransactionID]; !ok {
		s.order = append(s.order, transaction.TransactionID)
	}
	c := *transaction
	s.rows[transaction.TransactionID] = &c
	return nil
}

func (s *Transactions) Find(ctx context.Context, transactionID string) (*core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.rows[transactionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *t
	return &c, nil
}

func (s *Transactions) ListByMarket(ctx context.Context, marketID string, limit int) ([]*core.Transaction, error) {
	return s.list(func(t *core.Transaction) bool { return t.MarketID == marketID }, limit)
}

func (s *Transactions) ListByAccount(ctx context.Context, account string, limit int) ([]*core.Transaction, error) {
	return s.list(func(t *core.Transaction) bool { return t.AccountID == account }, limit)
}

func (s *Transactions) list(match func(*core.Transaction) bool, limit int) ([]*core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var transactions []*core.Transaction
	for _, id := range s.order {
		if t := s.rows[id]; match(t) {
			c := *t
			transactions = append(transactions, &c)
		}
	}
	if limit > 0 && len(transactions) > limit {
		transactions = transactions[len(transactions)-limit:]
	}
	return transactions, nil
}

func (s *Transactions) CreateBadDebt(ctx context.Context, tx *db.DB, realization *core.BadDebtRealization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.badDebts[realization.LiquidationID]; ok {
		return nil
	}
	c := *realization
	s.badDebts[realization.LiquidationID] = &c
	return nil
}

func (s *Transactions) ListBadDebts(ctx context.Context, marketID string) ([]*core.BadDebtRealization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var realizations []*core.BadDebtRealization
	for _, r := range s.badDebts {
		if r.MarketID == marketID {
			c := *r
			realizations = append(realizations, &c)
		}
	}
	sort.Slice(realizations, func(i, j int) bool {
		return realizations[i].LiquidationID < realizations[j].LiquidationID
	})
	return realizations, nil
}

// Snapshots in-memory snapshot store
type Snapshots struct {
	mu           sync.Mutex
	marketHourly map[string]*core.MarketHourlySnapshot
	marketDaily  map[string]*core.MarketDailySnapshot
	finDaily     map[string]*core.FinancialsDailySnapshot
	usageDaily   map[string]*core.UsageDailySnapshot
	usageHourly  map[string]*core.UsageHourlySnapshot
	markers      map[string]bool
}

// NewSnapshots new in-memory snapshot store
func NewSnapshots() *Snapshots {
	return &Snapshots{
		marketHourly: map[string]*core.MarketHourlySnapshot{},
		marketDaily:  map[string]*core.MarketDailySnapshot{},
		finDaily:     map[string]*core.FinancialsDailySnapshot{},
		usageDaily:   map[string]*core.UsageDailySnapshot{},
		usageHourly:  map[string]*core.UsageHourlySnapshot{},
		markers:      map[string]bool{},
	}
}

func (s *Snapshots) FindMarketHourly(ctx context.Context, tx *db.DB, snapshotID string) (*core.MarketHourlySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.marketHourly[snapshotID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *snap
	return &c, nil
}

func (s *Snapshots) SaveMarketHourly(ctx context.Context, tx *db.DB, snapshot *core.MarketHourlySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *snapshot
	s.marketHourly[snapshot.SnapshotID] = &c
	return nil
}

func (s *Snapshots) ListMarketHourly(ctx context.Context, marketID string, limit int) ([]*core.MarketHourlySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snapshots []*core.MarketHourlySnapshot
	for _, snap := range s.marketHourly {
		if snap.MarketID == marketID {
			c := *snap
			snapshots = append(snapshots, &c)
		}
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Hours > snapshots[j].Hours })
	if limit > 0 && len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}
	return snapshots, nil
}

func (s *Snapshots) FindMarketDaily(ctx context.Context, tx *db.DB, snapshotID string) (*core.MarketDailySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.marketDaily[snapshotID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *snap
	return &c, nil
}

func (s *Snapshots) SaveMarketDaily(ctx context.Context, tx *db.DB, snapshot *core.MarketDailySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *snapshot
	s.marketDaily[snapshot.SnapshotID] = &c
	return nil
}

func (s *Snapshots) ListMarketDaily(ctx context.Context, marketID string, limit int) ([]*core.MarketDailySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snapshots []*core.MarketDailySnapshot
	for _, snap := range s.marketDaily {
		if snap.MarketID == marketID {
			c := *snap
			snapshots = append(snapshots, &c)
		}
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Days > snapshots[j].Days })
	if limit > 0 && len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}
	return snapshots, nil
}

func (s *Snapshots) FindFinancialsDaily(ctx context.Context, tx *db.DB, snapshotID string) (*core.FinancialsDailySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.finDaily[snapshotID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *snap
	return &c, nil
}

func (s *Snapshots) SaveFinancialsDaily(ctx context.Context, tx *db.DB, snapshot *core.FinancialsDailySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *snapshot
	s.finDaily[snapshot.SnapshotID] = &c
	return nil
}

func (s *Snapshots) ListFinancialsDaily(ctx context.Context, limit int) ([]*core.FinancialsDailySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snapshots []*core.FinancialsDailySnapshot
	for _, snap := range s.finDaily {
		c := *snap
		snapshots = append(snapshots, &c)
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Days > snapshots[j].Days })
	if limit > 0 && len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}
	return snapshots, nil
}

func (s *Snapshots) FindUsageDaily(ctx context.Context, tx *db.DB, snapshotID string) (*core.UsageDailySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.usageDaily[snapshotID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *snap
	return &c, nil
}

func (s *Snapshots) SaveUsageDaily(ctx context.Context, tx *db.DB, snapshot *core.UsageDailySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *snapshot
	s.usageDaily[snapshot.SnapshotID] = &c
	return nil
}

func (s *Snapshots) ListUsageDaily(ctx context.Context, limit int) ([]*core.UsageDailySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snapshots []*core.UsageDailySnapshot
	for _, snap := range s.usageDaily {
		c := *snap
		snapshots = append(snapshots, &c)
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Days > snapshots[j].Days })
	if limit > 0 && len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}
	return snapshots, nil
}

func (s *Snapshots) FindUsageHourly(ctx context.Context, tx *db.DB, snapshotID string) (*core.UsageHourlySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.usageHourly[snapshotID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *snap
	return &c, nil
}

func (s *Snapshots) SaveUsageHourly(ctx context.Context, tx *db.DB, snapshot *core.UsageHourlySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *snapshot
	s.usageHourly[snapshot.SnapshotID] = &c
	return nil
}

func (s *Snapshots) ListUsageHourly(ctx context.Context, limit int) ([]*core.UsageHourlySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snapshots []*core.UsageHourlySnapshot
	for _, snap := range s.usageHourly {
		c := *snap
		snapshots = append(snapshots, &c)
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Hours > snapshots[j].Hours })
	if limit > 0 && len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}
	return snapshots, nil
}

func (s *Snapshots) TouchActivity(ctx context.Context, tx *db.DB, markerKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.markers[markerKey] {
		return false, nil
	}
	s.markers[markerKey] = true
	return true, nil
}

// Prices in-memory price store
type Prices struct {
	mu   sync.Mutex
	rows map[string]*core.Price
}

// NewPrices new in-memory price store
func NewPrices() *Prices {
	return &Prices{rows: map[string]*core.Price{}}
}

func (s *Prices) Save(ctx context.Context, tx *db.DB, price *core.Price) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *price
	s.rows[price.AssetID] = &c
	return nil
}

func (s *Prices) Find(ctx context.Context, assetID string) (*core.Price, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.rows[assetID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *p
	return &c, nil
}

func (s *Prices) All(ctx context.Context) ([]*core.Price, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prices []*core.Price
	for _, p := range s.rows {
		c := *p
		prices = append(prices, &c)
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].AssetID < prices[j].AssetID })
	return prices, nil
}

// Rates in-memory interest rate store
type Rates struct {
	mu   sync.Mutex
	rows map[string]*core.InterestRate
}

// NewRates new in-memory interest rate store
func NewRates() *Rates {
	return &Rates{rows: map[string]*core.InterestRate{}}
}

func (s *Rates) Save(ctx context.Context, tx *db.DB, rate *core.InterestRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *rate
	s.rows[rate.RateID] = &c
	return nil
}

func (s *Rates) Find(ctx context.Context, rateID string) (*core.InterestRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rows[rateID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *r
	return &c, nil
}

func (s *Rates) ListByMarket(ctx context.Context, marketID string, limit int) ([]*core.InterestRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []*core.InterestRate
	for _, r := range s.rows {
		if r.MarketID == marketID {
			c := *r
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].RateID < list[j].RateID })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Events in-memory event store
type Events struct {
	mu   sync.Mutex
	rows []*core.Event
}

// NewEvents new in-memory event store
func NewEvents() *Events {
	return &Events{}
}

func (s *Events) Create(ctx context.Context, event *core.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event.ID = uint64(len(s.rows) + 1)
	c := *event
	s.rows = append(s.rows, &c)
	return nil
}

func (s *Events) Find(ctx context.Context, id uint64) (*core.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == 0 || id > uint64(len(s.rows)) {
		return nil, gorm.ErrRecordNotFound
	}
	c := *s.rows[id-1]
	return &c, nil
}

func (s *Events) List(ctx context.Context, fromID uint64, limit int) ([]*core.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []*core.Event
	for _, e := range s.rows {
		if e.ID > fromID {
			c := *e
			events = append(events, &c)
		}
		if limit > 0 && len(events) >= limit {
			break
		}
	}
	return events, nil
}

// Properties in-memory property store
type Properties struct {
	mu   sync.Mutex
	rows map[string]property.Value
}

func NewProperties() *Properties {
	return &Properties{rows: map[string]property.Value{}}
}

func (s *Properties) Get(ctx context.Context, key string) (property.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rows[key], nil
}

func (s *Properties) Save(ctx context.Context, key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[key] = property.Parse(value)
	return nil
}

func (s *Properties) Expire(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rows, key)
	return nil
}

func (s *Properties) List(ctx context.Context) (map[string]property.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]property.Value, len(s.rows))
	for k, v := range s.rows {
		out[k] = v
	}
	return out, nil
}

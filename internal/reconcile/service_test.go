package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dca-analytics/internal/config"
	"github.com/yourusername/dca-analytics/internal/models"
	"github.com/yourusername/dca-analytics/internal/repository"
)

type mockTradeRepo struct {
	mock.Mock
}

func (m *mockTradeRepo) ListClosed(ctx context.Context, filter repository.TradeFilter) ([]*models.Trade, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Trade), args.Error(1)
}

func (m *mockTradeRepo) GetByID(ctx context.Context, tradeID string) (*models.Trade, error) {
	args := m.Called(ctx, tradeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Trade), args.Error(1)
}

func (m *mockTradeRepo) Upsert(ctx context.Context, trade *models.Trade) error {
	args := m.Called(ctx, trade)
	return args.Error(0)
}

func (m *mockTradeRepo) ExistsNear(ctx context.Context, symbol string, closedAt time.Time, window time.Duration) (bool, error) {
	args := m.Called(ctx, symbol, closedAt, window)
	return args.Bool(0), args.Error(1)
}

type stubEquityRepo struct {
	snap *models.EquitySnapshot
}

func (s *stubEquityRepo) History(ctx context.Context, filter repository.EquityFilter) ([]*models.EquitySnapshot, error) {
	return nil, nil
}

func (s *stubEquityRepo) SaveSnapshot(ctx context.Context, snapshot *models.EquitySnapshot) error {
	return nil
}

func (s *stubEquityRepo) Latest(ctx context.Context) (*models.EquitySnapshot, error) {
	if s.snap == nil {
		return nil, models.ErrNotFound
	}
	return s.snap, nil
}

type stubFetcher struct {
	records []ClosedPnLRecord
	err     error
}

func (f *stubFetcher) GetClosedPnL(ctx context.Context, category string, since time.Time) ([]ClosedPnLRecord, error) {
	return f.records, f.err
}

func testRecord(orderID, symbol, side string, pnl float64) ClosedPnLRecord {
	opened := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return ClosedPnLRecord{
		OrderID:     orderID,
		Symbol:      symbol,
		Side:        side,
		AvgEntry:    decimal.NewFromFloat(100),
		AvgExit:     decimal.NewFromFloat(105),
		Qty:         decimal.NewFromFloat(2),
		Leverage:    decimal.NewFromFloat(10),
		ClosedPnL:   decimal.NewFromFloat(pnl),
		CreatedTime: opened,
		UpdatedTime: opened.Add(90 * time.Minute),
	}
}

func newTestService(fetcher ClosedPnLFetcher, repo repository.TradeRepository) *Service {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	cfg := &config.ReconcileConfig{Category: "linear", LookbackDays: 7, CacheTTLHours: 1}
	return NewService(fetcher, repo, &stubEquityRepo{}, cfg, log)
}

func TestSyncInsertsMissingTrade(t *testing.T) {
	rec := testRecord("ord-1", "BTCUSDT", "Sell", 12.5)
	repo := &mockTradeRepo{}
	repo.On("GetByID", mock.Anything, "ord-1").Return(nil, models.ErrNotFound)
	repo.On("ExistsNear", mock.Anything, "BTCUSDT", rec.CreatedTime, dedupeWindow).Return(false, nil)
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(tr *models.Trade) bool {
		return tr.TradeID == "ord-1" && tr.CloseReason == SyncCloseReason
	})).Return(nil)

	svc := newTestService(&stubFetcher{records: []ClosedPnLRecord{rec}}, repo)
	result, err := svc.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Fetched)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 0, result.Skipped)
	repo.AssertExpectations(t)
}

func TestSyncSkipsKnownTradeID(t *testing.T) {
	rec := testRecord("ord-2", "ETHUSDT", "Sell", -3.0)
	repo := &mockTradeRepo{}
	repo.On("GetByID", mock.Anything, "ord-2").Return(&models.Trade{TradeID: "ord-2"}, nil)

	svc := newTestService(&stubFetcher{records: []ClosedPnLRecord{rec}}, repo)
	result, err := svc.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSyncSkipsNearbyTrade(t *testing.T) {
	rec := testRecord("ord-3", "BTCUSDT", "Sell", 5.0)
	repo := &mockTradeRepo{}
	repo.On("GetByID", mock.Anything, "ord-3").Return(nil, models.ErrNotFound)
	repo.On("ExistsNear", mock.Anything, "BTCUSDT", rec.CreatedTime, dedupeWindow).Return(true, nil)

	svc := newTestService(&stubFetcher{records: []ClosedPnLRecord{rec}}, repo)
	result, err := svc.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSyncCachesSeenOrders(t *testing.T) {
	rec := testRecord("ord-4", "BTCUSDT", "Sell", 5.0)
	repo := &mockTradeRepo{}
	repo.On("GetByID", mock.Anything, "ord-4").Return(nil, models.ErrNotFound).Once()
	repo.On("ExistsNear", mock.Anything, "BTCUSDT", rec.CreatedTime, dedupeWindow).Return(false, nil).Once()
	repo.On("Upsert", mock.Anything, mock.Anything).Return(nil).Once()

	svc := newTestService(&stubFetcher{records: []ClosedPnLRecord{rec}}, repo)

	_, err := svc.Sync(context.Background())
	require.NoError(t, err)

	// Second run hits the cache, no repository calls.
	result, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
	repo.AssertExpectations(t)
}

func TestSyncPropagatesFetchError(t *testing.T) {
	repo := &mockTradeRepo{}
	svc := newTestService(&stubFetcher{err: assert.AnError}, repo)

	_, err := svc.Sync(context.Background())
	assert.Error(t, err)
}

func TestRecordToTradeInvertsSide(t *testing.T) {
	// A Sell closing order means the position was long.
	long := recordToTrade(testRecord("a", "BTCUSDT", "Sell", 1), 0)
	assert.Equal(t, models.TradeSideLong, long.Side)

	short := recordToTrade(testRecord("b", "BTCUSDT", "Buy", 1), 0)
	assert.Equal(t, models.TradeSideShort, short.Side)
}

func TestRecordToTradeFields(t *testing.T) {
	trade := recordToTrade(testRecord("c", "BTCUSDT", "Sell", 12.5), 0)

	assert.InDelta(t, 100.0, trade.EntryPrice, 1e-9)
	assert.InDelta(t, 100.0, trade.AvgPrice, 1e-9)
	require.NotNil(t, trade.ClosePrice)
	assert.InDelta(t, 105.0, *trade.ClosePrice, 1e-9)
	assert.Equal(t, 10, trade.Leverage)
	assert.True(t, trade.IsWin)
	require.NotNil(t, trade.DurationMinutes)
	assert.Equal(t, 90, *trade.DurationMinutes)
	assert.True(t, trade.IsClosed())
}

func TestRecordToTradeDerivedPercentages(t *testing.T) {
	trade := recordToTrade(testRecord("d", "BTCUSDT", "Sell", 12.5), 5000)

	// qty 2 at entry 100 with 10x leverage puts 20 of margin at risk.
	assert.InDelta(t, 20.0, trade.TotalMargin, 1e-9)
	assert.InDelta(t, 62.5, trade.PnLPctMargin, 1e-9)
	assert.InDelta(t, 5000.0, trade.EquityAtEntry, 1e-9)
	assert.InDelta(t, 5012.5, trade.EquityAtClose, 1e-9)
	assert.InDelta(t, 0.25, trade.PnLPctEquity, 1e-9)
}

func TestRecordToTradeWithoutSnapshotLeavesEquityUnset(t *testing.T) {
	trade := recordToTrade(testRecord("e", "BTCUSDT", "Sell", 12.5), 0)

	assert.Zero(t, trade.EquityAtEntry)
	assert.Zero(t, trade.EquityAtClose)
	assert.Zero(t, trade.PnLPctEquity)
	assert.InDelta(t, 20.0, trade.TotalMargin, 1e-9)
	assert.InDelta(t, 62.5, trade.PnLPctMargin, 1e-9)
}

func TestSyncUsesLatestSnapshotForEquityPct(t *testing.T) {
	rec := testRecord("ord-5", "BTCUSDT", "Sell", 12.5)
	repo := &mockTradeRepo{}
	repo.On("GetByID", mock.Anything, "ord-5").Return(nil, models.ErrNotFound)
	repo.On("ExistsNear", mock.Anything, "BTCUSDT", rec.CreatedTime, dedupeWindow).Return(false, nil)
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(tr *models.Trade) bool {
		return tr.EquityAtEntry == 5000 && tr.PnLPctEquity > 0
	})).Return(nil)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	cfg := &config.ReconcileConfig{Category: "linear", LookbackDays: 7, CacheTTLHours: 1}
	equity := &stubEquityRepo{snap: &models.EquitySnapshot{Equity: 5000}}
	svc := NewService(&stubFetcher{records: []ClosedPnLRecord{rec}}, repo, equity, cfg, log)

	result, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	repo.AssertExpectations(t)
}

package oracle

import (
	"context"
	"fmt"
	"time"

	"lendledger/core"
	"lendledger/pkg/resthttp"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

const priceCacheExpiry = time.Minute

// PriceService price oracle service backed by a remote ticker feed with
// the persisted last-known-good price as fallback.
type PriceService struct {
	config     *core.Config
	db         *db.DB
	priceStore core.IPriceStore
	cache      gcache.Cache
}

// New new oracle price service
func New(config *core.Config, db *db.DB, priceStore core.IPriceStore) core.IPriceOracleService {
	return &PriceService{
		config:     config,
		db:         db,
		priceStore: priceStore,
		cache:      gcache.New(512).LRU().Build(),
	}
}

// GetPrice current usd price of the asset. An unpriced asset yields zero
// rather than an error so valuation paths keep moving.
func (s *PriceService) GetPrice(ctx context.Context, assetID string) (decimal.Decimal, error) {
	if v, err := s.cache.Get(assetID); err == nil {
		return v.(decimal.Decimal), nil
	}

	price, err := s.priceStore.Find(ctx, assetID)
	if gorm.IsRecordNotFoundError(err) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}

	_ = s.cache.SetWithExpire(assetID, price.PriceUSD, priceCacheExpiry)
	return price.PriceUSD, nil
}

// PullPrices refreshes cached prices from the remote feed and persists
// each ticker. Feed failures leave the stored prices untouched.
func (s *PriceService) PullPrices(ctx context.Context) error {
	log := logger.FromContext(ctx)

	url := fmt.Sprintf("%s/api/tickers?ts=%d", s.config.PriceOracle.EndPoint, time.Now().UTC().Unix())
	resp, err := resthttp.Request(ctx).Get(url)
	if err != nil {
		log.WithError(err).Errorln("pull tickers failed")
		return err
	}

	var tickers []*core.PriceTicker
	if err := resthttp.ParseResponse(resp, &tickers); err != nil {
		return err
	}

	now := time.Now()
	for _, ticker := range tickers {
		if ticker.Price.LessThanOrEqual(decimal.Zero) {
			log.Warningln("invalid ticker price:", ticker.AssetID)
			continue
		}

		price := core.Price{
			AssetID:   ticker.AssetID,
			PriceUSD:  ticker.Price,
			Timestamp: now,
		}
		if err := s.priceStore.Save(ctx, s.db, &price); err != nil {
			return err
		}

		_ = s.cache.SetWithExpire(ticker.AssetID, ticker.Price, priceCacheExpiry)
	}

	return nil
}

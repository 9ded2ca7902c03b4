package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lendledger/core"
	"lendledger/store/mem"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestGetPriceFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	prices := mem.NewPrices()
	service := New(&core.Config{}, nil, prices)

	// unknown asset prices to zero without failing
	price, err := service.GetPrice(ctx, "unknown")
	require.NoError(t, err)
	require.True(t, price.IsZero())

	require.NoError(t, prices.Save(ctx, nil, &core.Price{
		AssetID:   "loan",
		PriceUSD:  decimal.NewFromFloat(1.5),
		Timestamp: time.Now(),
	}))

	price, err = service.GetPrice(ctx, "loan")
	require.NoError(t, err)
	require.True(t, price.Equal(decimal.NewFromFloat(1.5)))
}

func TestPullPrices(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"asset_id":"loan","price":"1.02"},
			{"asset_id":"col","price":"2.5"},
			{"asset_id":"junk","price":"-1"}
		]`))
	}))
	defer server.Close()

	prices := mem.NewPrices()
	cfg := &core.Config{}
	cfg.PriceOracle.EndPoint = server.URL
	service := New(cfg, nil, prices)

	require.NoError(t, service.PullPrices(ctx))

	price, err := service.GetPrice(ctx, "loan")
	require.NoError(t, err)
	require.True(t, price.Equal(decimal.NewFromFloat(1.02)))

	price, err = service.GetPrice(ctx, "col")
	require.NoError(t, err)
	require.True(t, price.Equal(decimal.NewFromFloat(2.5)))

	// negative quotes are dropped
	price, err = service.GetPrice(ctx, "junk")
	require.NoError(t, err)
	require.True(t, price.IsZero())
}

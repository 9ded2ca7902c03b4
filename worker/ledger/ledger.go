package ledger

import (
	"context"
	"errors"
	"time"

	"lendledger/core"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

const (
	checkpointKey = "events_checkpoint"
	limit         = 500
)

// Ledger event consumer. Applies ledger events in ID order, one
// database transaction per event, and advances the checkpoint only
// after the event is fully applied.
type Ledger struct {
	db                 *db.DB
	system             *core.Config
	propertyStore      property.Store
	eventStore         core.EventStore
	marketStore        core.IMarketStore
	accountStore       core.IAccountStore
	protocolStore      core.IProtocolStore
	priceStore         core.IPriceStore
	positionService    core.IPositionService
	transactionService core.ITransactionService
	marketService      core.IMarketService
}

// New new ledger worker
func New(
	db *db.DB,
	system *core.Config,
	propertyStore property.Store,
	eventStore core.EventStore,
	marketStore core.IMarketStore,
	accountStore core.IAccountStore,
	protocolStore core.IProtocolStore,
	priceStore core.IPriceStore,
	positionService core.IPositionService,
	transactionService core.ITransactionService,
	marketService core.IMarketService,
) *Ledger {
	return &Ledger{
		db:                 db,
		system:             system,
		propertyStore:      propertyStore,
		eventStore:         eventStore,
		marketStore:        marketStore,
		accountStore:       accountStore,
		protocolStore:      protocolStore,
		priceStore:         priceStore,
		positionService:    positionService,
		transactionService: transactionService,
		marketService:      marketService,
	}
}

// Run run worker
func (w *Ledger) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "ledger")
	ctx = logger.WithContext(ctx, log)

	dur := time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
			if err := w.run(ctx); err == nil {
				dur = 100 * time.Millisecond
			} else {
				dur = 500 * time.Millisecond
			}
		}
	}
}

func (w *Ledger) run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	v, err := w.propertyStore.Get(ctx, checkpointKey)
	if err != nil {
		log.WithError(err).Errorln("property.Get error")
		return err
	}

	events, err := w.eventStore.List(ctx, uint64(v.Int64()), limit)
	if err != nil {
		log.WithError(err).Errorln("eventStore.List")
		return err
	}

	if len(events) <= 0 {
		return errors.New("no more events")
	}

	for _, event := range events {
		err := w.db.Tx(func(tx *db.DB) error {
			return w.handleEvent(ctx, tx, event)
		})
		if err != nil {
			if !unrecoverable(err) {
				return err
			}
			// retrying can never succeed; drop the event so it does
			// not stall the stream
			log.WithError(err).Errorln("event dropped:", event.ID)
		}

		if err := w.propertyStore.Save(ctx, checkpointKey, event.ID); err != nil {
			log.WithError(err).Errorln("property.Save:", event.ID)
			return err
		}
	}

	return nil
}

func unrecoverable(err error) bool {
	return errors.Is(err, core.ErrPositionNotFound) ||
		errors.Is(err, core.ErrInsufficientShares) ||
		errors.Is(err, core.ErrInsufficientCollateral)
}

func (w *Ledger) handleEvent(ctx context.Context, tx *db.DB, event *core.Event) error {
	log := logger.FromContext(ctx).
		WithField("event", event.ID).
		WithField("trace", event.TraceID).
		WithField("action", event.Action.String())
	ctx = logger.WithContext(ctx, log)

	switch event.Action {
	case core.ActionTypeSupply:
		return w.handleSupply(ctx, tx, event)
	case core.ActionTypeWithdraw:
		return w.handleWithdraw(ctx, tx, event)
	case core.ActionTypeSupplyCollateral:
		return w.handleSupplyCollateral(ctx, tx, event)
	case core.ActionTypeWithdrawCollateral:
		return w.handleWithdrawCollateral(ctx, tx, event)
	case core.ActionTypeBorrow:
		return w.handleBorrow(ctx, tx, event)
	case core.ActionTypeRepay:
		return w.handleRepay(ctx, tx, event)
	case core.ActionTypeLiquidate:
		return w.handleLiquidate(ctx, tx, event)
	case core.ActionTypeFlashloan:
		return w.handleFlashloan(ctx, tx, event)
	case core.ActionTypeTransfer:
		return w.handleTransfer(ctx, tx, event)
	case core.ActionTypeAccrueInterest:
		return w.handleAccrueInterest(ctx, tx, event)
	case core.ActionTypeCreateMarket:
		return w.handleCreateMarket(ctx, tx, event)
	case core.ActionTypeSetFee:
		return w.handleSetFee(ctx, tx, event)
	case core.ActionTypeUpdatePrice:
		return w.handleUpdatePrice(ctx, tx, event)
	default:
		log.Warningln("unknown action, skipped")
		return nil
	}
}

// loadMarket fetches the market and the protocol row for an event.
// A missing market is not retryable, the event is skipped.
func (w *Ledger) loadMarket(ctx context.Context, event *core.Event) (*core.Market, *core.Protocol, error) {
	log := logger.FromContext(ctx)

	market, err := w.marketStore.Find(ctx, event.MarketID)
	if gorm.IsRecordNotFoundError(err) {
		log.Warningln("market not found:", event.MarketID)
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	protocol, err := w.protocolStore.Get(ctx)
	if err != nil {
		return nil, nil, err
	}

	return market, protocol, nil
}

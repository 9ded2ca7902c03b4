package cmd

import (
	"time"

	"lendledger/worker"
	"lendledger/worker/ledger"
	"lendledger/worker/pricesync"

	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "lendledger job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		system := provideSystem()

		propertyStore := providePropertyStore(database)
		eventStore := provideEventStore(database)
		marketStore := provideMarketStore(database)
		protocolStore := provideProtocolStore(database)
		accountStore := provideAccountStore(database)
		positionStore := providePositionStore(database)
		transactionStore := provideTransactionStore(database)
		snapshotStore := provideSnapshotStore(database)
		priceStore := providePriceStore(database)
		rateStore := provideRateStore(database)

		oracleService := providePriceOracleService(database, priceStore)
		snapshotService := provideSnapshotService(snapshotStore, protocolStore, rateStore)
		positionService := providePositionService(positionStore, accountStore, snapshotService)
		transactionService := provideTransactionService(transactionStore, accountStore, snapshotService)
		marketService := provideMarketService(marketStore, protocolStore, rateStore, snapshotService, oracleService)

		workers := []worker.Worker{
			ledger.New(
				database,
				system,
				propertyStore,
				eventStore,
				marketStore,
				accountStore,
				protocolStore,
				priceStore,
				positionService,
				transactionService,
				marketService,
			),
			pricesync.New(oracleService, time.Duration(cfg.PriceOracle.PullInterval)*time.Second),
		}

		g, ctx := errgroup.WithContext(ctx)
		for _, w := range workers {
			w := w
			g.Go(func() error {
				return w.Run(ctx)
			})
		}

		if err := g.Wait(); err != nil {
			log.WithError(err).Error("worker aborted")
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

package cmd

import (
	"lendledger/core"

	"github.com/fox-one/pkg/store/db"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideSystem() *core.Config {
	return &cfg
}

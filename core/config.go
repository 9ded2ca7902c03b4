package core

import (
	"github.com/fox-one/pkg/store/db"
)

// Config lendledger config
type Config struct {
	App         App         `json:"app"`
	DB          db.Config   `json:"db"`
	PriceOracle PriceOracle `json:"price_oracle"`
	Admins      []string    `json:"admins"`
}

// IsAdmin check if the user is admin
func (c *Config) IsAdmin(userID string) bool {
	if len(c.Admins) <= 0 {
		return false
	}

	for _, a := range c.Admins {
		if a == userID {
			return true
		}
	}

	return false
}

// App app config
type App struct {
	// ProtocolName name stamped on the protocol aggregate row
	ProtocolName string `json:"protocol_name"`
	// FeeRecipient account credited with minted fee shares
	FeeRecipient string `json:"fee_recipient"`
	// Genesis block number ledger processing starts from
	Genesis  int64  `json:"genesis"`
	Location string `json:"location"`
}

// PriceOracle price oracle config
type PriceOracle struct {
	EndPoint string `json:"end_point"`
	// PullInterval seconds between feed refreshes
	PullInterval int64 `json:"pull_interval"`
}

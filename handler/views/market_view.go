package views

import (
	"lendledger/core"
)

// Market market view with its live interest rates attached
type Market struct {
	core.Market
	Rates []*core.InterestRate `json:"rates,omitempty"`
}

package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden operation forbidden
	ErrOperationForbidden ErrorCode = 100001
	// ErrInvalidEvent event payload rejected
	ErrInvalidEvent ErrorCode = 100002

	// ErrMarketNotFound no market
	ErrMarketNotFound ErrorCode = 100100
	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100101
	// ErrPositionNotFound no open position for the triple
	ErrPositionNotFound ErrorCode = 100102
	// ErrInsufficientShares debit exceeds position shares
	ErrInsufficientShares ErrorCode = 100103
	// ErrInsufficientCollateral withdrawal exceeds collateral balance
	ErrInsufficientCollateral ErrorCode = 100104
	// ErrInvalidPrice invalid price
	ErrInvalidPrice ErrorCode = 100105
	// ErrMarketExists market already created
	ErrMarketExists ErrorCode = 100106
	// ErrInvalidFee fee outside [0, 1)
	ErrInvalidFee ErrorCode = 100107
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}

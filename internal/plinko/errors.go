package plinko

import "errors"

var (
	ErrInvalidWager        = errors.New("invalid wager; must be a positive amount")
	ErrWagerRejected       = errors.New("wager rejected by wallet")
	ErrConfigurationLocked = errors.New("configuration locked while balls are falling")
	ErrInvalidRows         = errors.New("invalid row count")
	ErrInvalidRisk         = errors.New("invalid risk level")
	ErrInvalidProfile      = errors.New("invalid risk profile")
	ErrInvalidTarget       = errors.New("invalid target bucket")
	ErrInvalidAmount       = errors.New("invalid amount")
)

package engine

import "errors"

var (
	ErrInvalidFrequency   = errors.New("invalid frequency")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidStrategy    = errors.New("invalid payoff strategy")
	ErrAllocationOverflow = errors.New("allocation exceeds income capacity")
)

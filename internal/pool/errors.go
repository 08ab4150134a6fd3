package pool

import (
	"errors"

	"bx-pool/internal/assets"
	"bx-pool/internal/ledger"
)

var (
	ErrDuplicateAsset           = assets.ErrDuplicateAsset
	ErrUnknownAsset             = assets.ErrUnknownAsset
	ErrInsufficientShareBalance = errors.New("pool: insufficient share balance")
	ErrInsufficientPoolBalance  = errors.New("pool: insufficient pool balance")
	ErrMinimumAmount            = errors.New("pool: amount below minimum")
	ErrReentrancy               = errors.New("pool: reentrant call")
	ErrUnauthorized             = errors.New("pool: caller is not the settlement owner")
	ErrInvalidAmount            = errors.New("pool: amount not set")
	ErrArithmeticOverflow       = ledger.ErrOverflow
	ErrArithmeticUnderflow      = ledger.ErrUnderflow
)

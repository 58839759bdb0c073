// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Kind classifies why an operation was rejected.
type Kind uint8

const (
	// KindPrecondition is a rejected request: wrong state, bad input or missing rights.
	KindPrecondition Kind = iota + 1
	// KindExhausted means the reward pool cannot cover the request.
	KindExhausted
	// KindArithmetic is an overflow or underflow. It signals broken accounting.
	KindArithmetic
)

func (k Kind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindExhausted:
		return "exhausted"
	case KindArithmetic:
		return "arithmetic"
	default:
		return "unknown"
	}
}

// Error is a rejected ledger operation. No record is changed when one is returned.
type Error struct {
	Kind    Kind
	message string
}

func New(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		message: message,
	}
}

func (e *Error) Error() string {
	return e.message
}

var (
	ErrCooldownIsNotOver     = New(KindPrecondition, "cooldown is not over")
	ErrGemStillLocked        = New(KindPrecondition, "gem is still locked")
	ErrGemStillStaked        = New(KindPrecondition, "gem is still staked")
	ErrGemNotStaked          = New(KindPrecondition, "gem is not staked")
	ErrGemAlreadyBuffed      = New(KindPrecondition, "gem is already buffed")
	ErrGemNotBuffed          = New(KindPrecondition, "gem is not buffed")
	ErrGemStillBuffed        = New(KindPrecondition, "gem is still buffed")
	ErrInvalidWhitelistType  = New(KindPrecondition, "invalid whitelist type")
	ErrInvalidWhitelist      = New(KindPrecondition, "invalid whitelist")
	ErrInvalidAccountData    = New(KindPrecondition, "invalid account data")
	ErrFactorMustBeGtZero    = New(KindPrecondition, "factor must be greater than zero")
	ErrInvalidAmount         = New(KindPrecondition, "invalid amount")
	ErrInvalidLock           = New(KindPrecondition, "invalid lock")
	ErrAlreadyExists         = New(KindPrecondition, "already exists")
	ErrNotFound              = New(KindPrecondition, "not found")
	ErrUnauthorized          = New(KindPrecondition, "unauthorized")
	ErrWhitelistInUse        = New(KindPrecondition, "whitelist entry is in use")
	ErrCouldNotReserveReward = New(KindExhausted, "could not reserve reward")
	ErrCouldNotReleaseReward = New(KindExhausted, "could not release reward")
	ErrArithmetic            = New(KindArithmetic, "arithmetic error")
)

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var re *Error
	return errors.As(e, &re)
}

// IsFatal reports whether err indicates corrupted accounting rather than a rejected request.
func IsFatal(err error) bool {
	var re *Error
	if !errors.As(err, &re) {
		return false
	}
	return re.Kind == KindArithmetic || re == ErrCouldNotReleaseReward
}

package item

import (
	stderrors "errors"

	"wizardgo/internal/shared/errors"
)

var (
	ErrAlreadyOwned = errors.Conflict("item already owned")
	ErrExpired      = errors.New(errors.ErrorTypeExpired, "item has expired")
	ErrTooFar       = errors.New(errors.ErrorTypeTooFar, "item too far away to collect")
	ErrCannotUse    = errors.New(errors.ErrorTypeCannotUse, "cannot use this item")

	// ErrEffectFailed is returned by a Store when the profile update of an
	// effect fails; the item must be left in place.
	ErrEffectFailed = stderrors.New("item effect could not be applied")
)

package battle

import "wizardgo/internal/shared/errors"

var ErrInvalidWinner = errors.New(errors.ErrorTypeInvalidWinner, "winner must be the attacker or the defender")

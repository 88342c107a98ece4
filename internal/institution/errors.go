package institution

import "wizardgo/internal/shared/errors"

var ErrInvalidCredentials = errors.Unauthorized("invalid institution name or password")

package config

import "errors"

// ErrConfig is the sentinel wrapped by every configuration decode or
// validation failure.
var ErrConfig = errors.New("invalid bridge configuration")

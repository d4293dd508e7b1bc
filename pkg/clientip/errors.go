package clientip

import "errors"

var ErrInvalidPrefix = errors.New("clientip: invalid trusted proxy prefix")

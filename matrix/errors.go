package matrix

import "errors"

var (
	ErrIndexOutOfRange = errors.New("matrix: index out of range")
	ErrNegativeCount   = errors.New("matrix: count would become negative")
	ErrBadShape        = errors.New("matrix: inconsistent row length")
)

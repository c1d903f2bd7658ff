package usecase

import "errors"

// ErrInvalidRequest marks caller mistakes outside the panel rules
// themselves: bad dates, unknown columns, inverted ranges.
var ErrInvalidRequest = errors.New("invalid request")

// ErrFetch wraps any failure to materialize a series.
var ErrFetch = errors.New("series fetch failed")

var ErrUnknownSource = errors.New("unknown source")

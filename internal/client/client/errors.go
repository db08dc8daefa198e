package client

import "errors"

// ErrInvalidSelector is returned by DeleteWhere for a selector that names
// neither all records nor a column.
var ErrInvalidSelector = errors.New("invalid delete selector")

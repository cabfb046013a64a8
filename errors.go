package litedb

import "errors"

// ErrDanglingIndex is returned when an index lookup succeeds but the row
// id it points to does not exist in the base table. A well-formed file
// never produces this; seeing it indicates corruption.
var ErrDanglingIndex = errors.New("litedb: dangling index entry")

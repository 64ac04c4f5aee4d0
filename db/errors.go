package db

import (
	"strings"

	"github.com/teranos/cruxgen/errors"
)

// ErrDatabaseClosed is returned when the snapshot store is used after Close,
// typically when a watch loop regenerates while the command is shutting down.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed reports whether err means the connection is closed.
// database/sql returns its own unwrapped error for this, hence the message match.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}

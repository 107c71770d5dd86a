package ids

import "github.com/segmentio/ksuid"

// New returns a sortable, URL safe identifier for accounts and catalog rows.
func New() string {
	return ksuid.New().String()
}

// Package repotest provides database fixtures for repository tests that must
// not reach a real server.
package repotest

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"
)

// ErrUnavailable is returned by every connection attempt on an Unavailable database.
var ErrUnavailable = errors.New("database unavailable")

const driverName = "repotest-unavailable"

var register sync.Once

type unavailableDriver struct{}

func (unavailableDriver) Open(string) (driver.Conn, error) {
	return nil, ErrUnavailable
}

// Unavailable returns a *sql.DB whose every operation fails with ErrUnavailable.
// It exercises persist-failure paths without a server.
func Unavailable(t testing.TB) *sql.DB {
	t.Helper()
	register.Do(func() {
		sql.Register(driverName, unavailableDriver{})
	})

	db, err := sql.Open(driverName, "")
	if err != nil {
		t.Fatalf("open unavailable database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

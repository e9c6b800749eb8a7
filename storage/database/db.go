package database

import (
	"database/sql"
	"embed"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/hfarfan/evadocente/core"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func open(conf core.DatabaseConfig) (*sqlx.DB, error) {
	sslMode := "require"
	if conf.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Engine,
		User:     url.UserPassword(conf.User, conf.Password),
		Host:     conf.Address(),
		Path:     conf.Name,
		RawQuery: q.Encode(),
	}
	return sqlx.Open(conf.Engine, u.String())
}

// Open connects to the evaluation store (system of record).
func Open(conf *core.Config) (*sqlx.DB, error) {
	db, err := open(conf.Database)
	if err != nil {
		return nil, errors.Wrap(err, "opening evaluation store")
	}
	if err = ping(db); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenAcademic connects to the institutional academic record store.
// The engine only ever reads from it.
func OpenAcademic(conf *core.Config) (*sqlx.DB, error) {
	db, err := open(conf.AcademicDatabase)
	if err != nil {
		return nil, errors.Wrap(err, "opening academic store")
	}
	if err = ping(db); err != nil {
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Migrate applies the evaluation store migrations. The academic store is not
// owned here and is never migrated.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

package database

import (
	"context"
	"embed"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/trezcool/darasa/core"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// driver and goose dialect per engine
var engines = map[string]struct{ driver, dialect string }{
	core.EngineSQLite:   {driver: "sqlite", dialect: "sqlite3"},
	core.EnginePostgres: {driver: "postgres", dialect: "postgres"},
}

func sqliteDSN(path string) string {
	q := make(url.Values)
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Set("_time_format", "sqlite")
	return "file:" + path + "?" + q.Encode()
}

func postgresDSN(conf *core.Config) string {
	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.DatabaseAddress(),
		Path:     conf.Database.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open opens the configured database and waits for it to be reachable.
func Open(conf *core.Config) (*sqlx.DB, error) {
	engine, ok := engines[conf.Database.Engine]
	if !ok {
		return nil, errors.Errorf("unsupported database engine %q", conf.Database.Engine)
	}

	var dsn string
	switch conf.Database.Engine {
	case core.EngineSQLite:
		dsn = sqliteDSN(conf.Database.Path)
	case core.EnginePostgres:
		dsn = postgresDSN(conf)
	}

	db, err := sqlx.Open(engine.driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if conf.Database.Engine == core.EngineSQLite {
		// one writer at a time; also keeps ":memory:" databases on a single connection
		db.SetMaxOpenConns(1)
	}

	if err = ping(db); err != nil {
		_ = db.Close()
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

func prepareGoose(engine string) error {
	e, ok := engines[engine]
	if !ok {
		return errors.Errorf("unsupported database engine %q", engine)
	}
	goose.SetBaseFS(migrationsFS)
	return goose.SetDialect(e.dialect)
}

// Migrate applies all pending migrations.
func Migrate(db *sqlx.DB, engine string) error {
	return RunMigrations(context.Background(), db, engine, "up")
}

// RunMigrations runs a goose command (up, down, status, ...) against the embedded migrations.
func RunMigrations(ctx context.Context, db *sqlx.DB, engine, command string, args ...string) error {
	if err := prepareGoose(engine); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db.DB, migrationsDir, args...); err != nil {
		return errors.Wrapf(err, "migrating database (%s)", command)
	}
	return nil
}

package database

import (
	"embed"
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrPostgresFailure      = errors.New("postgres returned an error")
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const StatementTimeout = 30000

type Config struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// LoadConfig reads the connection settings from DATABASE_URL, or from
// DB_HOST, DB_PORT, DB_USER, DB_PASSWORD and DB_NAME when it is unset.
func LoadConfig() (Config, error) {
	cfg := Config{MaxOpenConns: 10, MaxIdleConns: 5}
	if os.Getenv("GOENV") == "production" {
		cfg.MaxOpenConns = 50
		cfg.MaxIdleConns = 20
	}

	cfg.URL = os.Getenv("DATABASE_URL")
	if cfg.URL != "" {
		return cfg, nil
	}

	host, port := os.Getenv("DB_HOST"), os.Getenv("DB_PORT")
	user, password, name := os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME")
	if host == "" || port == "" || user == "" || password == "" || name == "" {
		return cfg, fmt.Errorf("%w: DATABASE_URL or DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, and DB_NAME must be set", ErrInvalidConfiguration)
	}

	cfg.URL = (&url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, password),
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + name,
	}).String()
	return cfg, nil
}

func (c Config) dsn() string {
	sep := "?"
	if strings.Contains(c.URL, "?") {
		sep = "&"
	}
	return c.URL + sep + fmt.Sprintf("statement_timeout=%d&timezone=UTC", StatementTimeout)
}

func ConnectDB(cfg Config) (*sqlx.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: empty database url", ErrInvalidConfiguration)
	}

	db, err := sqlx.Connect("postgres", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	log.Println("connected to database")
	return db, nil
}

func migrationSource() (source.Driver, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("error loading migrations: %v", err)
	}
	return src, nil
}

// MigrationsUp applies the embedded schema migrations that have not run yet.
func MigrationsUp(db *sqlx.DB) error {
	src, err := migrationSource()
	if err != nil {
		return err
	}

	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("error creating postgres driver: %v", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("error creating migration instance: %v", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("migrations: no changes")
			return nil
		}
		return fmt.Errorf("%w: running migrations: %v", ErrPostgresFailure, err)
	}

	log.Println("migrations: applied")
	return nil
}

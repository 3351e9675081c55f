// Package store owns the likes and page_views tables. Every read and write of
// engagement data goes through a *Store constructed at startup and closed at shutdown.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/tourwithmark/engagement/config"
	"github.com/tourwithmark/engagement/models"
)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for inserted timestamps and trailing windows.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithRecentWindow sets the trailing window and row limit of the recent activity aggregation.
func WithRecentWindow(window time.Duration, limit int) Option {
	return func(s *Store) {
		if window > 0 {
			s.recentWindow = window
		}
		if limit > 0 {
			s.recentLimit = limit
		}
	}
}

// Store is the engagement data client.
type Store struct {
	db           *gorm.DB
	now          func() time.Time
	recentWindow time.Duration
	recentLimit  int
	titlePolicy  *bluemonday.Policy
}

// New wraps an open gorm handle. The Store takes ownership and closes it in Close.
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:           db,
		now:          time.Now,
		recentWindow: 24 * time.Hour,
		recentLimit:  10,
		titlePolicy:  bluemonday.StrictPolicy(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open connects using cfg and applies the schema.
func Open(ctx context.Context, cfg config.AppConfig, opts ...Option) (*Store, error) {
	db, err := config.OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithRecentWindow(cfg.RecentWindow(), cfg.RecentLimit)}, opts...)
	s := New(db, opts...)
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates missing tables, columns and indexes. Existing columns are never
// altered, so a database created by the earlier Node server (TEXT columns, table-level
// UNIQUE constraint) is opened as is. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	m := db.Migrator()
	for _, model := range []any{&models.Like{}, &models.PageView{}} {
		if !m.HasTable(model) {
			if err := m.CreateTable(model); err != nil {
				return wrap("migrate", err)
			}
			continue
		}
		if err := addMissing(db, model); err != nil {
			return wrap("migrate", err)
		}
	}
	return nil
}

func addMissing(db *gorm.DB, model any) error {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return err
	}
	m := db.Migrator()
	for _, f := range stmt.Schema.Fields {
		if f.DBName == "" || m.HasColumn(model, f.DBName) {
			continue
		}
		if err := m.AddColumn(model, f.DBName); err != nil {
			return fmt.Errorf("add column %s.%s: %w", stmt.Schema.Table, f.DBName, err)
		}
	}
	for _, idx := range stmt.Schema.ParseIndexes() {
		if m.HasIndex(model, idx.Name) {
			continue
		}
		if err := m.CreateIndex(model, idx.Name); err != nil {
			return fmt.Errorf("create index %s: %w", idx.Name, err)
		}
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrap("ping", err)
	}
	return wrap("ping", sqlDB.PingContext(ctx))
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return sqlDB.Close()
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

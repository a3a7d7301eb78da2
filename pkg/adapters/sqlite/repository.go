// Package sqlite stores notes in a single SQLite table through GORM.
// The driver is pure Go, so no cgo toolchain is needed.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/introspection"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aretw0/notekeep/pkg/core"
)

// noteRow is the table layout. note_key holds the canonical key string.
type noteRow struct {
	Key       string `gorm:"column:note_key;primaryKey"`
	Workspace string `gorm:"column:workspace;not null;default:''"`
	Title     string `gorm:"column:title;not null;default:''"`
	Body      string `gorm:"column:body;not null;default:''"`
}

func (noteRow) TableName() string { return "notes" }

func toRow(note *core.Entry) noteRow {
	return noteRow{
		Key:       note.Key().String(),
		Workspace: note.Workspace(),
		Title:     note.Title(),
		Body:      note.Body(),
	}
}

func (row noteRow) entry() (*core.Entry, error) {
	key, err := core.ParseKey(row.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrEncoding, err)
	}
	return core.RestoreEntry(key, row.Workspace, row.Title, row.Body), nil
}

// Config holds the configuration for the SQLite repository.
type Config struct {
	// DSN is passed to the driver: a file path, or ":memory:".
	DSN      string
	ReadOnly bool // Save and Delete return core.ErrReadOnly; the table must already exist.
	Logger   *slog.Logger
	Debug    bool // Log every SQL statement through GORM's logger.
}

// Repository implements core.Store on top of a GORM connection.
type Repository struct {
	db     *gorm.DB
	config Config
	logger *slog.Logger
	mu     sync.RWMutex
}

// Open connects to the database and prepares the notes table.
func Open(ctx context.Context, config Config) (*Repository, error) {
	if config.DSN == "" {
		return nil, fmt.Errorf("%w: empty DSN", core.ErrInitialize)
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	logMode := gormlogger.Silent
	if config.Debug {
		logMode = gormlogger.Info
	}

	dsn := config.DSN
	if config.ReadOnly {
		// The driver creates missing database files on open.
		if path, ok := filePath(dsn); ok {
			if _, err := os.Stat(path); err != nil {
				return nil, fmt.Errorf("%w: %w", core.ErrInitialize, err)
			}
		}
		dsn = withPragma(dsn, "query_only(1)")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInitialize, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInitialize, err)
	}
	// One connection: ":memory:" databases are per-connection, and SQLite
	// serializes writers anyway.
	sqlDB.SetMaxOpenConns(1)

	r := &Repository{db: db, config: config, logger: config.Logger}
	if err := r.Initialize(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return r, nil
}

// filePath returns the database file named by a plain-path DSN.
// In-memory and "file:" URI DSNs are left to the driver.
func filePath(dsn string) (string, bool) {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return "", false
	}
	path, _, _ := strings.Cut(dsn, "?")
	return path, true
}

func withPragma(dsn, pragma string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=" + pragma
}

// Initialize creates or migrates the notes table. Existing rows are kept.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.ReadOnly {
		if !r.db.WithContext(ctx).Migrator().HasTable(&noteRow{}) {
			return fmt.Errorf("%w: notes table does not exist", core.ErrInitialize)
		}
		return nil
	}
	if err := r.db.WithContext(ctx).AutoMigrate(&noteRow{}); err != nil {
		return fmt.Errorf("%w: failed to migrate notes table: %w", core.ErrInitialize, err)
	}
	return nil
}

// Close releases the underlying connection.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save upserts the note by key. A zero key is replaced by a fresh one.
func (r *Repository) Save(ctx context.Context, note *core.Entry) (core.Key, error) {
	if r.config.ReadOnly {
		return core.Key{}, core.ErrReadOnly
	}
	if note == nil {
		return core.Key{}, errors.New("cannot save a nil note")
	}
	if err := note.Validate(); err != nil {
		return core.Key{}, err
	}

	key := note.Key()
	if key.IsZero() {
		key = core.NewKey()
		note = note.WithKey(key)
	}
	row := toRow(note)

	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return core.Key{}, fmt.Errorf("failed to write note %s: %w", key, err)
	}
	return key, nil
}

// Fetch loads one note, distinguishing core.ErrNotFound from core.ErrEncoding.
func (r *Repository) Fetch(ctx context.Context, key core.Key) (*core.Entry, error) {
	if key.IsZero() {
		return nil, core.ErrInvalidKey
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var row noteRow
	err := r.db.WithContext(ctx).Where("note_key = ?", key.String()).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read note %s: %w", key, err)
	}
	return row.entry()
}

func (r *Repository) Get(ctx context.Context, key core.Key) (*core.Entry, bool) {
	note, err := r.Fetch(ctx, key)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, core.ErrNotFound) {
			level = slog.LevelDebug
		}
		r.logger.Log(ctx, level, "note unavailable", "key", key.String(), "error", err)
		return nil, false
	}
	return note, true
}

// ListKeys returns every row key in canonical form; rows with malformed keys are skipped.
func (r *Repository) ListKeys(ctx context.Context) ([]core.Key, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	if err := r.db.WithContext(ctx).Model(&noteRow{}).Order("note_key").Pluck("note_key", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	keys := make([]core.Key, 0, len(names))
	for _, name := range names {
		if key, err := core.ParseKey(name); err == nil {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// ListValues loads all rows in one query, dropping rows that do not decode.
func (r *Repository) ListValues(ctx context.Context) ([]*core.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rows []noteRow
	if err := r.db.WithContext(ctx).Order("note_key").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	notes := make([]*core.Entry, 0, len(rows))
	for _, row := range rows {
		note, err := row.entry()
		if err != nil {
			r.logger.WarnContext(ctx, "note unavailable", "key", row.Key, "error", err)
			continue
		}
		notes = append(notes, note)
	}
	return notes, nil
}

// Delete removes a row. Zero affected rows means core.ErrNotFound.
func (r *Repository) Delete(ctx context.Context, key core.Key) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	res := r.db.WithContext(ctx).Where("note_key = ?", key.String()).Delete(&noteRow{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete note %s: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", core.ErrNotFound, key)
	}
	return nil
}

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	DSN      string `json:"dsn"`
	ReadOnly bool   `json:"read_only"`
	Notes    int64  `json:"notes"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	_ = r.db.Model(&noteRow{}).Count(&count).Error
	return RepositoryState{
		DSN:      r.config.DSN,
		ReadOnly: r.config.ReadOnly,
		Notes:    count,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "sqlite"
}

var (
	_ core.Store[core.Key, *core.Entry]   = (*Repository)(nil)
	_ core.Fetcher[core.Key, *core.Entry] = (*Repository)(nil)
	_ core.Initializer                    = (*Repository)(nil)
	_ introspection.Introspectable        = (*Repository)(nil)
	_ introspection.Component             = (*Repository)(nil)
)

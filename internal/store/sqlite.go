package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dejo1307/autodocs/internal/docs"
)

// docRecord is the row layout. The full document is kept as JSON in Body;
// the other columns exist for lookups and ordering.
type docRecord struct {
	Seq     uint   `gorm:"primaryKey;autoIncrement"`
	DocID   string `gorm:"uniqueIndex;not null"`
	Type    string `gorm:"index;not null"`
	Created int64  `gorm:"index;not null"` // unix nanoseconds
	Body    string `gorm:"not null"`
}

func (docRecord) TableName() string { return Collection }

// SQLiteConfig holds sqlite backend configuration.
type SQLiteConfig struct {
	Path     string
	LogLevel gormlogger.LogLevel
	Logger   zerolog.Logger
}

// SQLite stores documents in a sqlite database through gorm.
type SQLite struct {
	db *gorm.DB
}

// NewSQLite opens (or creates) the database and migrates the schema.
func NewSQLite(cfg SQLiteConfig) (*SQLite, error) {
	if cfg.LogLevel == 0 {
		cfg.LogLevel = gormlogger.Warn
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", cfg.Path)

	gl := gormlogger.New(
		zerologWriter{log: cfg.Logger.With().Str("component", "gorm").Logger()},
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  cfg.LogLevel,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gl})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection avoids "database is locked" under concurrent tool calls.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&docRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) GetDocs(ctx context.Context) ([]docs.GeneratedDoc, error) {
	var rows []docRecord
	if err := s.db.WithContext(ctx).Order("seq asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	result := make([]docs.GeneratedDoc, 0, len(rows))
	for _, r := range rows {
		d, err := r.decode()
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, nil
}

func (s *SQLite) SaveDoc(ctx context.Context, doc docs.GeneratedDoc) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document %q: %w", doc.ID, err)
	}
	rec := docRecord{
		DocID:   doc.ID,
		Type:    string(doc.Type),
		Created: doc.CreatedAt.UnixNano(),
		Body:    string(body),
	}
	// Upsert keeps the existing seq, so a replaced record keeps its position.
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "created", "body"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("saving document %q: %w", doc.ID, err)
	}
	return nil
}

func (s *SQLite) DeleteDoc(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("doc_id = ?", id).Delete(&docRecord{}).Error; err != nil {
		return fmt.Errorf("deleting document %q: %w", id, err)
	}
	return nil
}

func (s *SQLite) GetDocByID(ctx context.Context, id string) (*docs.GeneratedDoc, error) {
	var rec docRecord
	res := s.db.WithContext(ctx).Where("doc_id = ?", id).Take(&rec)
	return takeOne(rec, res.Error)
}

func (s *SQLite) GetLatestDocByType(ctx context.Context, t docs.DocType) (*docs.GeneratedDoc, error) {
	var rec docRecord
	res := s.db.WithContext(ctx).
		Where("type = ?", string(t)).
		Order("created desc").
		Order("seq desc").
		Take(&rec)
	return takeOne(rec, res.Error)
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func takeOne(rec docRecord, err error) (*docs.GeneratedDoc, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}
	d, err := rec.decode()
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r docRecord) decode() (docs.GeneratedDoc, error) {
	var d docs.GeneratedDoc
	if err := json.Unmarshal([]byte(r.Body), &d); err != nil {
		return docs.GeneratedDoc{}, fmt.Errorf("decoding document %q: %w", r.DocID, err)
	}
	return d, nil
}

// zerologWriter satisfies gorm's logger.Writer and forwards to zerolog.
type zerologWriter struct {
	log zerolog.Logger
}

func (w zerologWriter) Printf(format string, args ...any) {
	w.log.Debug().Msgf(format, args...)
}

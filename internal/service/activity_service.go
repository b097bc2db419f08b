package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/iconidentify/tubegrab/internal/config"
	"github.com/iconidentify/tubegrab/internal/domain"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// ActivityService keeps recent lookups and downloads in an in-memory ring
// buffer with optional SQLite persistence.
type ActivityService struct {
	cfg    config.ActivityConfig
	logger *slog.Logger

	mu      sync.RWMutex
	entries []domain.Activity
	head    int // next write position
	count   int

	db *sql.DB
}

// NewActivityService creates a new activity service.
func NewActivityService(cfg config.ActivityConfig, logger *slog.Logger) (*ActivityService, error) {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 500
	}

	svc := &ActivityService{
		cfg:     cfg,
		logger:  logger,
		entries: make([]domain.Activity, cfg.BufferSize),
	}

	if cfg.SQLitePath != "" {
		if err := svc.initSQLite(); err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		logger.Info("activity persistence enabled", "path", cfg.SQLitePath)
	}

	return svc, nil
}

func (s *ActivityService) initSQLite() error {
	db, err := sql.Open("sqlite", s.cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS activity (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			url TEXT NOT NULL,
			video_id TEXT,
			title TEXT,
			format TEXT,
			path TEXT,
			success INTEGER NOT NULL,
			error TEXT,
			duration_ms INTEGER NOT NULL,
			timestamp INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_activity_timestamp ON activity(timestamp);
		CREATE INDEX IF NOT EXISTS idx_activity_kind ON activity(kind);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("create table: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database, if any.
func (s *ActivityService) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks that persistence is reachable. Without SQLite it always succeeds.
func (s *ActivityService) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

// Record appends an entry. Persistence failures are logged and otherwise ignored.
func (s *ActivityService) Record(ctx context.Context, entry domain.Activity) {
	if entry.ID == "" {
		entry.ID = domain.ActivityID("act_" + uuid.NewString()[:8])
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	s.mu.Lock()
	s.entries[s.head] = entry
	s.head = (s.head + 1) % len(s.entries)
	if s.count < len(s.entries) {
		s.count++
	}
	s.mu.Unlock()

	if s.db != nil {
		// The request that produced the entry may already be cancelled.
		s.persist(context.WithoutCancel(ctx), entry)
	}
}

func (s *ActivityService) persist(ctx context.Context, entry domain.Activity) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity (id, kind, url, video_id, title, format, path, success, error, duration_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, string(entry.ID), string(entry.Kind), entry.URL, entry.VideoID, entry.Title, entry.Format, entry.Path,
		boolToInt(entry.Success), entry.Error, entry.Duration, entry.Timestamp.UnixMilli())
	if err != nil {
		s.logger.Warn("failed to persist activity", "activity_id", entry.ID, "error", err)
	}
}

// List returns the most recent entries, newest first. With SQLite configured
// it reads from the database so entries survive restarts.
func (s *ActivityService) List(ctx context.Context, query domain.ActivityQuery) ([]domain.Activity, error) {
	if query.Limit <= 0 {
		query.Limit = defaultActivityLimit
	}
	if query.Limit > maxActivityLimit {
		query.Limit = maxActivityLimit
	}

	if s.db != nil {
		return s.listPersisted(ctx, query)
	}
	return s.listBuffered(query), nil
}

func (s *ActivityService) listBuffered(query domain.ActivityQuery) []domain.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := len(s.entries)
	result := make([]domain.Activity, 0, min(query.Limit, s.count))
	for i := 0; i < s.count && len(result) < query.Limit; i++ {
		entry := s.entries[(s.head-1-i+size)%size]
		if query.Kind != "" && entry.Kind != query.Kind {
			continue
		}
		result = append(result, entry)
	}
	return result
}

func (s *ActivityService) listPersisted(ctx context.Context, query domain.ActivityQuery) ([]domain.Activity, error) {
	where := ""
	var args []any
	if query.Kind != "" {
		where = "WHERE kind = ?"
		args = append(args, string(query.Kind))
	}
	args = append(args, query.Limit)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, kind, url, video_id, title, format, path, success, error, duration_ms, timestamp
		FROM activity %s
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?
	`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Activity, 0, query.Limit)
	for rows.Next() {
		var (
			entry                                    domain.Activity
			id, kind                                 string
			videoID, title, format, path, errMessage sql.NullString
			success                                  int
			millis                                   int64
		)
		if err := rows.Scan(&id, &kind, &entry.URL, &videoID, &title, &format, &path,
			&success, &errMessage, &entry.Duration, &millis); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		entry.ID = domain.ActivityID(id)
		entry.Kind = domain.ActivityKind(kind)
		entry.VideoID = videoID.String
		entry.Title = title.String
		entry.Format = format.String
		entry.Path = path.String
		entry.Error = errMessage.String
		entry.Success = success != 0
		entry.Timestamp = time.UnixMilli(millis)
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read activity: %w", err)
	}

	return result, nil
}

// ActivityStats describes the activity log.
type ActivityStats struct {
	BufferSize    int  `json:"buffer_size"`
	BufferUsed    int  `json:"buffer_used"`
	SQLiteEnabled bool `json:"sqlite_enabled"`
}

func (s *ActivityService) Stats() ActivityStats {
	s.mu.RLock()
	used := s.count
	s.mu.RUnlock()

	return ActivityStats{
		BufferSize:    len(s.entries),
		BufferUsed:    used,
		SQLiteEnabled: s.db != nil,
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/iconidentify/xresolve/internal/domain"
)

// Config configures the resolution journal.
type Config struct {
	// RingSize is the number of resolutions to keep in memory.
	// Default: 500
	RingSize int

	// Persist enables SQLite persistence for historical resolutions.
	Persist bool

	// Path is the path to the SQLite database file.
	Path string

	// RetentionDays is how long to keep resolutions in SQLite (0 = forever).
	RetentionDays int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		RingSize:      500,
		Persist:       false,
		RetentionDays: 30,
	}
}

// Journal records resolution attempts in an in-memory ring buffer with
// optional SQLite persistence. It stores outcome metadata only: guest
// sessions and resolved variant URLs are never written here.
type Journal struct {
	cfg    Config
	logger *slog.Logger

	// Ring buffer for recent resolutions
	mu          sync.RWMutex
	resolutions []domain.Resolution
	head        int // Next write position
	count       int // Number of resolutions in buffer
	outcomes    map[domain.Outcome]int

	// SQLite persistence (optional)
	db *sql.DB
}

// New creates a new resolution journal.
func New(cfg Config, logger *slog.Logger) (*Journal, error) {
	if cfg.RingSize <= 0 {
		cfg.RingSize = 500
	}

	j := &Journal{
		cfg:         cfg,
		logger:      logger,
		resolutions: make([]domain.Resolution, cfg.RingSize),
		outcomes:    make(map[domain.Outcome]int),
	}

	// Initialize SQLite if enabled
	if cfg.Persist && cfg.Path != "" {
		if err := j.initSQLite(); err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		logger.Info("journal persistence enabled", "path", cfg.Path)
	}

	return j, nil
}

// initSQLite initializes the SQLite database.
func (j *Journal) initSQLite() error {
	db, err := sql.Open("sqlite", j.cfg.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	// Create resolutions table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS resolutions (
			id TEXT PRIMARY KEY,
			tweet_id TEXT NOT NULL,
			source TEXT NOT NULL,
			outcome TEXT NOT NULL,
			bitrate INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_resolutions_created_at ON resolutions(created_at);
		CREATE INDEX IF NOT EXISTS idx_resolutions_outcome ON resolutions(outcome);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("create table: %w", err)
	}

	j.db = db
	return nil
}

// Close closes the journal and any open resources.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Ping verifies the persistence layer is reachable. It is a no-op when
// SQLite persistence is disabled.
func (j *Journal) Ping(ctx context.Context) error {
	if j.db == nil {
		return nil
	}
	return j.db.PingContext(ctx)
}

// Record adds a resolution to the journal. The ID and CreatedAt fields
// are filled in if unset. The recorded resolution is returned.
func (j *Journal) Record(res domain.Resolution) domain.Resolution {
	// Generate ID if not set
	if res.ID == "" {
		res.ID = domain.ResolutionID("res_" + uuid.New().String()[:8])
	}

	// Set timestamp if not set
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}

	// Add to ring buffer
	j.mu.Lock()
	j.resolutions[j.head] = res
	j.head = (j.head + 1) % j.cfg.RingSize
	if j.count < j.cfg.RingSize {
		j.count++
	}
	j.outcomes[res.Outcome]++
	j.mu.Unlock()

	// Persist to SQLite if enabled
	if j.db != nil {
		go j.persist(res)
	}

	// Log the resolution
	logLevel := slog.LevelInfo
	switch res.Outcome {
	case domain.OutcomeCredentialError, domain.OutcomeBackendError, domain.OutcomeMalformedResponse:
		logLevel = slog.LevelWarn
	}
	j.logger.Log(context.Background(), logLevel, "resolution recorded",
		"resolution_id", res.ID,
		"tweet_id", res.TweetID,
		"source", res.Source,
		"outcome", res.Outcome,
		"duration_ms", res.Duration.Milliseconds(),
	)

	return res
}

// RecordOutcome is a convenience method that classifies err into a
// journal outcome before recording.
func (j *Journal) RecordOutcome(tweetID, source string, err error, bitrate int, duration time.Duration) domain.Resolution {
	return j.Record(domain.Resolution{
		TweetID:  tweetID,
		Source:   source,
		Outcome:  domain.OutcomeForError(err),
		Bitrate:  bitrate,
		Duration: duration,
	})
}

// persist saves a resolution to SQLite.
func (j *Journal) persist(res domain.Resolution) {
	if j.db == nil {
		return
	}

	_, err := j.db.Exec(`
		INSERT INTO resolutions (id, tweet_id, source, outcome, bitrate, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, res.ID, res.TweetID, res.Source, res.Outcome, res.Bitrate, res.Duration.Milliseconds(), res.CreatedAt)

	if err != nil {
		j.logger.Warn("failed to persist resolution", "resolution_id", res.ID, "error", err)
	}
}

// Recent returns the most recent N resolutions, newest first.
func (j *Journal) Recent(n int) []domain.Resolution {
	if n <= 0 {
		n = 50
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	count := n
	if count > j.count {
		count = j.count
	}

	result := make([]domain.Resolution, 0, count)
	for i := 0; i < count; i++ {
		idx := (j.head - 1 - i + j.cfg.RingSize) % j.cfg.RingSize
		res := j.resolutions[idx]
		if res.ID == "" {
			continue // Empty slot
		}
		result = append(result, res)
	}

	return result
}

// Stats describes the journal's counters since process start.
type Stats struct {
	BufferSize    int            `json:"buffer_size"`
	BufferUsed    int            `json:"buffer_used"`
	Outcomes      map[string]int `json:"outcomes"`
	SQLiteEnabled bool           `json:"sqlite_enabled"`
}

func (j *Journal) Stats() Stats {
	j.mu.RLock()
	defer j.mu.RUnlock()

	outcomes := make(map[string]int, len(j.outcomes))
	for o, n := range j.outcomes {
		outcomes[string(o)] = n
	}

	return Stats{
		BufferSize:    j.cfg.RingSize,
		BufferUsed:    j.count,
		Outcomes:      outcomes,
		SQLiteEnabled: j.db != nil,
	}
}

// CleanupOld removes resolutions older than the retention period from SQLite.
func (j *Journal) CleanupOld(ctx context.Context) error {
	if j.db == nil || j.cfg.RetentionDays <= 0 {
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -j.cfg.RetentionDays)
	result, err := j.db.ExecContext(ctx, "DELETE FROM resolutions WHERE created_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("delete old resolutions: %w", err)
	}

	deleted, _ := result.RowsAffected()
	if deleted > 0 {
		j.logger.Info("cleaned up old resolutions", "deleted", deleted, "cutoff", cutoff)
	}

	return nil
}

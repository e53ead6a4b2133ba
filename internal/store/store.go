// Package store persists evaluation summaries to SQLite so successive runs
// over the same video can be compared later.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS evaluation_summaries (
		summary_id   TEXT PRIMARY KEY,
		video_id     TEXT NOT NULL,
		video_path   TEXT NOT NULL,
		run_id       TEXT NOT NULL,
		artifact_id  TEXT NOT NULL,
		mean_error   REAL NOT NULL,
		window_count INTEGER NOT NULL,
		created_at   INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_eval_summaries_video
		ON evaluation_summaries(video_id, created_at)`,
}

// RunSummary is one persisted per-run evaluation result.
type RunSummary struct {
	SummaryID   string  `json:"summary_id"`
	VideoID     string  `json:"video_id"`
	VideoPath   string  `json:"video_path"`
	RunID       string  `json:"run_id"`
	ArtifactID  string  `json:"artifact_id"`
	MeanError   float64 `json:"mean_error"`
	WindowCount int     `json:"window_count"`
	CreatedAt   int64   `json:"created_at"`
}

// Store provides persistence for evaluation summaries.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the summary database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open summary db: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create summary schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert persists a new run summary. If SummaryID is empty, a UUID is generated.
func (s *Store) Insert(sum *RunSummary) error {
	if sum.SummaryID == "" {
		sum.SummaryID = uuid.New().String()
	}
	if sum.CreatedAt == 0 {
		sum.CreatedAt = time.Now().UnixNano()
	}

	_, err := s.db.Exec(`
		INSERT INTO evaluation_summaries (
			summary_id, video_id, video_path, run_id, artifact_id,
			mean_error, window_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.SummaryID, sum.VideoID, sum.VideoPath, sum.RunID, sum.ArtifactID,
		sum.MeanError, sum.WindowCount, sum.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

// ListByVideo returns all summaries for a video, newest first.
func (s *Store) ListByVideo(videoID string) ([]*RunSummary, error) {
	rows, err := s.db.Query(`
		SELECT summary_id, video_id, video_path, run_id, artifact_id,
		       mean_error, window_count, created_at
		FROM evaluation_summaries
		WHERE video_id = ?
		ORDER BY created_at DESC`, videoID)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var sums []*RunSummary
	for rows.Next() {
		var sum RunSummary
		if err := rows.Scan(
			&sum.SummaryID, &sum.VideoID, &sum.VideoPath, &sum.RunID, &sum.ArtifactID,
			&sum.MeanError, &sum.WindowCount, &sum.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		sums = append(sums, &sum)
	}
	return sums, rows.Err()
}

// Get returns a single summary by ID.
func (s *Store) Get(summaryID string) (*RunSummary, error) {
	row := s.db.QueryRow(`
		SELECT summary_id, video_id, video_path, run_id, artifact_id,
		       mean_error, window_count, created_at
		FROM evaluation_summaries
		WHERE summary_id = ?`, summaryID)

	var sum RunSummary
	err := row.Scan(
		&sum.SummaryID, &sum.VideoID, &sum.VideoPath, &sum.RunID, &sum.ArtifactID,
		&sum.MeanError, &sum.WindowCount, &sum.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("summary %s not found", summaryID)
	}
	if err != nil {
		return nil, fmt.Errorf("scan summary: %w", err)
	}
	return &sum, nil
}

// Package ledger persists run history in a local SQLite database: one row
// per run, one row per article with its final state. The ledger is optional;
// the pipeline works identically without it.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"newsmood/internal/logger"
	"newsmood/internal/models"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		article_count INTEGER NOT NULL,
		scored INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS articles (
		run_id TEXT NOT NULL,
		article_id TEXT NOT NULL,
		url TEXT NOT NULL,
		state TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		recorded_at TEXT NOT NULL,
		PRIMARY KEY (run_id, article_id),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_state ON articles(run_id, state)`,
}

// Run is one recorded pipeline run.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	ArticleCount int
	Scored       int
	Skipped      int
}

// Article is one article's final state within a run.
type Article struct {
	ArticleID  string
	URL        string
	State      models.ArticleState
	Detail     string
	RecordedAt time.Time
}

// Ledger wraps the run history database.
type Ledger struct {
	db  *sql.DB
	log *logger.Logger
}

// Open opens or creates the ledger database at path.
func Open(path string, log *logger.Logger) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	// Writes funnel through the post-run recording; one connection is enough.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()

			return nil, fmt.Errorf("failed to apply pragma: %w", err)
		}
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()

			return nil, fmt.Errorf("failed to create ledger schema: %w", err)
		}
	}

	return &Ledger{db: db, log: log}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// BeginRun records the start of a run.
func (l *Ledger) BeginRun(runID string, startedAt time.Time, articleCount int) error {
	_, err := l.db.Exec(
		`INSERT INTO runs (id, started_at, article_count) VALUES (?, ?, ?)`,
		runID, startedAt.UTC().Format(time.RFC3339Nano), articleCount,
	)
	if err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}

	return nil
}

// FinishRun records a run's completion and its tallies.
func (l *Ledger) FinishRun(runID string, finishedAt time.Time, scored, skipped int) error {
	res, err := l.db.Exec(
		`UPDATE runs SET finished_at = ?, scored = ?, skipped = ? WHERE id = ?`,
		finishedAt.UTC().Format(time.RFC3339Nano), scored, skipped, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to record run completion: %w", err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("unknown run %s", runID)
	}

	return nil
}

// RecordArticle stores an article's final state for a run. Re-recording the
// same article replaces the earlier row.
func (l *Ledger) RecordArticle(runID string, ref models.ArticleRef, state models.ArticleState, detail string) error {
	_, err := l.db.Exec(
		`INSERT OR REPLACE INTO articles (run_id, article_id, url, state, detail, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, ref.ID, ref.URL, state.String(), detail, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record article: %w", err)
	}

	return nil
}

// Runs returns the most recent runs, newest first.
func (l *Ledger) Runs(limit int) ([]Run, error) {
	rows, err := l.db.Query(
		`SELECT id, started_at, finished_at, article_count, scored, skipped
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run

	for rows.Next() {
		var (
			run        Run
			startedAt  string
			finishedAt sql.NullString
		)

		if err := rows.Scan(&run.ID, &startedAt, &finishedAt, &run.ArticleCount, &run.Scored, &run.Skipped); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.StartedAt = parseTime(startedAt)
		if finishedAt.Valid {
			run.FinishedAt = parseTime(finishedAt.String)
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	return runs, nil
}

// Articles returns the recorded articles of one run, ordered by article id.
func (l *Ledger) Articles(runID string) ([]Article, error) {
	rows, err := l.db.Query(
		`SELECT article_id, url, state, detail, recorded_at
		 FROM articles WHERE run_id = ? ORDER BY article_id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []Article

	for rows.Next() {
		var (
			article    Article
			state      string
			recordedAt string
		)

		if err := rows.Scan(&article.ArticleID, &article.URL, &state, &article.Detail, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}

		article.State = models.ArticleState(state)
		article.RecordedAt = parseTime(recordedAt)

		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read articles: %w", err)
	}

	return articles, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}

	return t
}

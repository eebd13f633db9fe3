package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"skald/internal/config"
)

// Store manages queue persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the queue database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.DataDir, "queue.db"))
}

// OpenPath initializes or connects to the queue database at the given path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location backing the store.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// NewDocument enqueues a document awaiting segmentation.
func (s *Store) NewDocument(ctx context.Context, title, srtPath, timelinePath string) (*Item, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO documents (
            title, srt_path, timeline_path, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(title),
		srtPath,
		nullableString(timelinePath),
		StatusPending,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

const itemColumns = `id, title, srt_path, timeline_path, status, error_message,
    progress_stage, progress_message, segments_json,
    segment_report_path, alignment_report_path, needs_review, review_reason,
    created_at, updated_at`

// GetByID fetches a single document by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM documents WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document %d: %w", id, err)
	}
	return item, nil
}

// Update persists every mutable field of the item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("nil item")
	}
	item.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`UPDATE documents SET
            title = ?, srt_path = ?, timeline_path = ?, status = ?, error_message = ?,
            progress_stage = ?, progress_message = ?, segments_json = ?,
            segment_report_path = ?, alignment_report_path = ?,
            needs_review = ?, review_reason = ?, updated_at = ?
        WHERE id = ?`,
		item.Title,
		item.SRTPath,
		nullableString(item.TimelinePath),
		item.Status,
		nullableString(item.ErrorMessage),
		nullableString(item.ProgressStage),
		nullableString(item.ProgressMessage),
		nullableString(item.SegmentsJSON),
		nullableString(item.SegmentReportPath),
		nullableString(item.AlignmentReportPath),
		boolToInt(item.NeedsReview),
		nullableString(item.ReviewReason),
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update document %d: %w", item.ID, err)
	}
	return nil
}

// ClaimNext atomically claims the oldest document in one of the given
// statuses and moves it to the claimed status. Returns nil when the queue
// has no eligible documents.
func (s *Store) ClaimNext(ctx context.Context, from Status, to Status) (*Item, error) {
	for {
		var id int64
		err := s.db.QueryRowContext(ctx,
			`SELECT id FROM documents WHERE status = ? ORDER BY id LIMIT 1`, from).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("select next document: %w", err)
		}

		now := time.Now().UTC().Format(time.RFC3339Nano)
		res, err := s.db.ExecContext(ctx,
			`UPDATE documents SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			to, now, id, from)
		if err != nil {
			return nil, fmt.Errorf("claim document %d: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("claim document %d: %w", id, err)
		}
		if affected == 0 {
			// Lost the race to another worker; try the next candidate.
			continue
		}
		return s.GetByID(ctx, id)
	}
}

// List returns documents filtered by status, or every document when no
// statuses are supplied, ordered by identifier.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM documents`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Clear removes documents in the supplied statuses, or all documents when no
// statuses are supplied. Returns the number of removed rows.
func (s *Store) Clear(ctx context.Context, statuses ...Status) (int64, error) {
	query := `DELETE FROM documents`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear documents: %w", err)
	}
	return res.RowsAffected()
}

// Retry returns a failed or review document to the pending state.
func (s *Store) Retry(ctx context.Context, id int64) (*Item, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("document %d not found", id)
	}
	if item.Status != StatusFailed && item.Status != StatusReview {
		return nil, fmt.Errorf("document %d is %s, only failed or review documents can be retried", id, item.Status)
	}
	item.Status = StatusPending
	item.ErrorMessage = ""
	item.NeedsReview = false
	item.ReviewReason = ""
	item.ProgressStage = ""
	item.ProgressMessage = ""
	if err := s.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ResetStuckProcessing rolls documents abandoned mid-stage back to their last
// stable status. Called on runner startup before claiming work.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	var total int64
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, transition := range stageRollbackTransitions {
		res, err := s.db.ExecContext(ctx,
			`UPDATE documents SET status = ?, updated_at = ? WHERE status = ?`,
			transition.to, now, transition.from)
		if err != nil {
			return total, fmt.Errorf("rollback %s: %w", transition.from, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += affected
	}
	return total, nil
}

// Health reports aggregate queue counts.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	var summary HealthSummary
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(1) FROM documents GROUP BY status`)
	if err != nil {
		return summary, fmt.Errorf("queue health: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return summary, fmt.Errorf("scan health row: %w", err)
		}
		summary.Total += count
		switch {
		case status == StatusPending:
			summary.Pending += count
		case status.IsProcessing():
			summary.Processing += count
		case status == StatusFailed:
			summary.Failed += count
		case status == StatusReview:
			summary.Review += count
		case status == StatusCompleted:
			summary.Completed += count
		}
	}
	return summary, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	var (
		timelinePath        sql.NullString
		errorMessage        sql.NullString
		progressStage       sql.NullString
		progressMessage     sql.NullString
		segmentsJSON        sql.NullString
		segmentReportPath   sql.NullString
		alignmentReportPath sql.NullString
		reviewReason        sql.NullString
		needsReview         int
		createdAt           string
		updatedAt           string
	)
	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.SRTPath,
		&timelinePath,
		&item.Status,
		&errorMessage,
		&progressStage,
		&progressMessage,
		&segmentsJSON,
		&segmentReportPath,
		&alignmentReportPath,
		&needsReview,
		&reviewReason,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.TimelinePath = timelinePath.String
	item.ErrorMessage = errorMessage.String
	item.ProgressStage = progressStage.String
	item.ProgressMessage = progressMessage.String
	item.SegmentsJSON = segmentsJSON.String
	item.SegmentReportPath = segmentReportPath.String
	item.AlignmentReportPath = alignmentReportPath.String
	item.NeedsReview = needsReview != 0
	item.ReviewReason = reviewReason.String
	item.CreatedAt = parseTimestamp(createdAt)
	item.UpdatedAt = parseTimestamp(updatedAt)
	return &item, nil
}

func parseTimestamp(value string) time.Time {
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Time{}
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

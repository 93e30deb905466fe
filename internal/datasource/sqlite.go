package datasource

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/skein/pkg/debug"
	"github.com/vanderheijden86/skein/pkg/loader"
	"github.com/vanderheijden86/skein/pkg/metrics"
	"github.com/vanderheijden86/skein/pkg/model"
)

// SQLiteReader provides read access to a skein SQLite archive
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// ThreadInfo summarizes one archived thread
type ThreadInfo struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	URL      string    `json:"url,omitempty"`
	Comments int       `json:"comments"`
	Updated  time.Time `json:"updated"`
}

// NewSQLiteReader opens a SQLite archive for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	// Open in read-only mode with various pragmas for read performance
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000&_journal_mode=WAL", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open archive: %w", err)
	}

	pragmas := []string{
		"PRAGMA cache_size = -64000",   // 64MB cache
		"PRAGMA mmap_size = 268435456", // 256MB mmap
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			debug.Log("pragma failed on %s: %v", source.Path, err)
		}
	}

	return &SQLiteReader{
		db:   db,
		path: source.Path,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListThreads returns summaries of all archived threads, newest first
func (r *SQLiteReader) ListThreads() ([]ThreadInfo, error) {
	query := `
		SELECT
			t.id, t.title, t.url, t.updated_at,
			(SELECT COUNT(*) FROM comments c WHERE c.thread_id = t.id)
		FROM threads t
		ORDER BY t.updated_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	defer rows.Close()

	var threads []ThreadInfo
	for rows.Next() {
		var info ThreadInfo
		var url sql.NullString
		var updated sql.NullTime
		if err := rows.Scan(&info.ID, &info.Title, &url, &updated, &info.Comments); err != nil {
			continue
		}
		if url.Valid {
			info.URL = url.String
		}
		if updated.Valid {
			info.Updated = updated.Time
		}
		threads = append(threads, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating threads: %w", err)
	}

	return threads, nil
}

// ReadThread loads one archived thread with its full comment tree
func (r *SQLiteReader) ReadThread(threadID string) (*model.Thread, error) {
	defer metrics.Timer(metrics.ArchiveRead)()

	var title string
	var url sql.NullString
	err := r.db.QueryRow("SELECT title, url FROM threads WHERE id = ?", threadID).Scan(&title, &url)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("thread not found: %s", threadID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read thread %s: %w", threadID, err)
	}

	comments, err := r.readComments(threadID)
	if err != nil {
		return nil, err
	}

	thread := loader.BuildThread(comments, nil)
	thread.Title = title
	if url.Valid {
		thread.URL = url.String
	}
	thread.Source = fmt.Sprintf("%s#%s", r.path, threadID)
	thread.SortReplies(model.ByCreated)
	return thread, nil
}

// ReadNewestThread loads the most recently updated archived thread
func (r *SQLiteReader) ReadNewestThread() (*model.Thread, error) {
	threads, err := r.ListThreads()
	if err != nil {
		return nil, err
	}
	if len(threads) == 0 {
		return nil, fmt.Errorf("archive %s holds no threads", r.path)
	}
	return r.ReadThread(threads[0].ID)
}

// readComments scans the full comment column set, falling back to a minimal
// set for archives written by older versions.
func (r *SQLiteReader) readComments(threadID string) ([]*model.Comment, error) {
	query := `
		SELECT
			id, parent_id, author, body, score, kind, role,
			created_at, edited_at, deleted, pinned, avatar, labels
		FROM comments
		WHERE thread_id = ?
		ORDER BY created_at
	`

	rows, err := r.db.Query(query, threadID)
	if err != nil {
		return r.readCommentsSimple(threadID)
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		var c model.Comment
		var parentID, kind, role, avatar, labelsJSON sql.NullString
		var createdAt, editedAt sql.NullTime
		var deleted, pinned sql.NullBool

		err := rows.Scan(
			&c.ID, &parentID, &c.Author, &c.Body, &c.Score, &kind, &role,
			&createdAt, &editedAt, &deleted, &pinned, &avatar, &labelsJSON,
		)
		if err != nil {
			continue
		}

		if parentID.Valid {
			c.ParentID = parentID.String
		}
		if kind.Valid && kind.String != "" {
			c.Kind = model.Kind(kind.String)
		} else {
			c.Kind = model.KindComment
		}
		if role.Valid {
			c.Role = model.Role(role.String)
		}
		if createdAt.Valid {
			c.CreatedAt = createdAt.Time
		}
		if editedAt.Valid {
			t := editedAt.Time
			c.EditedAt = &t
		}
		if deleted.Valid {
			c.Deleted = deleted.Bool
		}
		if pinned.Valid {
			c.Pinned = pinned.Bool
		}
		if avatar.Valid {
			c.Avatar = avatar.String
		}
		if labelsJSON.Valid && labelsJSON.String != "" && labelsJSON.String != "null" {
			c.Labels = parseJSONStringArray(labelsJSON.String)
		}

		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

// readCommentsSimple is a fallback for archives with fewer columns
func (r *SQLiteReader) readCommentsSimple(threadID string) ([]*model.Comment, error) {
	query := `
		SELECT id, parent_id, author, body, score, created_at
		FROM comments
		WHERE thread_id = ?
		ORDER BY created_at
	`

	rows, err := r.db.Query(query, threadID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		var c model.Comment
		var parentID sql.NullString
		var createdAt sql.NullTime

		if err := rows.Scan(&c.ID, &parentID, &c.Author, &c.Body, &c.Score, &createdAt); err != nil {
			continue
		}
		if parentID.Valid {
			c.ParentID = parentID.String
		}
		if createdAt.Valid {
			c.CreatedAt = createdAt.Time
		}
		c.Kind = model.KindComment

		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

// CountComments returns the total comment count across all threads
func (r *SQLiteReader) CountComments() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM comments").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetLastModified returns the most recent thread update time
func (r *SQLiteReader) GetLastModified() (time.Time, error) {
	var updatedAt sql.NullTime
	err := r.db.QueryRow("SELECT MAX(updated_at) FROM threads").Scan(&updatedAt)
	if err != nil {
		return time.Time{}, err
	}
	if !updatedAt.Valid {
		return time.Time{}, nil
	}
	return updatedAt.Time, nil
}

// parseJSONStringArray parses a JSON array of strings
func parseJSONStringArray(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" || s == "[]" {
		return nil
	}

	// Proper unmarshaling first so commas inside labels survive
	var result []string
	if err := json.Unmarshal([]byte(s), &result); err != nil {
		// Fallback to simple parser for malformed JSON
		s = strings.TrimPrefix(s, "[")
		s = strings.TrimSuffix(s, "]")
		if s == "" {
			return nil
		}
		for _, item := range strings.Split(s, ",") {
			item = strings.TrimSpace(item)
			item = strings.Trim(item, `"`)
			if item != "" {
				result = append(result, item)
			}
		}
	}
	return result
}

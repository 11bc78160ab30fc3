package recordstore

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	title          TEXT NOT NULL,
	text           TEXT NOT NULL DEFAULT '',
	extracted_text TEXT NOT NULL DEFAULT '',
	file           TEXT NOT NULL DEFAULT '',
	crc            INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS tags (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	slug TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS document_tags (
	document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	tag_id      INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (document_id, tag_id)
);
CREATE TABLE IF NOT EXISTS questions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	text        TEXT NOT NULL,
	answer      TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS question_documents (
	question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
	document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	PRIMARY KEY (question_id, document_id)
);
`

// Store is the SQLite-backed record store for documents, tags, questions and
// question-document links.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the record store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create record store schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// CreateDocument stores a document with manual text and returns its id.
func (s *Store) CreateDocument(ctx context.Context, title, text string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO documents (title, text) VALUES (?, ?)", title, text)
	if err != nil {
		return 0, fmt.Errorf("failed to create document: %w", err)
	}
	return res.LastInsertId()
}

// UpsertDocumentFile stores or refreshes the document backed by a source
// file, replacing its extracted text and content checksum.
func (s *Store) UpsertDocumentFile(ctx context.Context, file, title, extracted string, crc uint32) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM documents WHERE file = ?", file).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		res, err := s.db.ExecContext(ctx,
			"INSERT INTO documents (title, extracted_text, file, crc) VALUES (?, ?, ?, ?)",
			title, extracted, file, crc)
		if err != nil {
			return 0, fmt.Errorf("failed to create document for %s: %w", file, err)
		}
		return res.LastInsertId()
	case err != nil:
		return 0, fmt.Errorf("failed to look up document for %s: %w", file, err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE documents SET title = ?, extracted_text = ?, crc = ? WHERE id = ?",
		title, extracted, crc, id)
	if err != nil {
		return 0, fmt.Errorf("failed to update document for %s: %w", file, err)
	}
	return id, nil
}

// DeleteDocumentByFile removes the document backed by file, if any.
func (s *Store) DeleteDocumentByFile(ctx context.Context, file string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE file = ?", file)
	if err != nil {
		return fmt.Errorf("failed to delete document for %s: %w", file, err)
	}
	return nil
}

// ListDocuments returns every stored document in insertion order.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, text, extracted_text, file, crc, created_at FROM documents ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Title, &d.Text, &d.ExtractedText, &d.File, &d.Crc, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// ListIngested reports which source files already have a stored document and
// under which content checksum.
func (s *Store) ListIngested(ctx context.Context) ([]IngestedDoc, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT file, crc FROM documents WHERE file != '' ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list ingested documents: %w", err)
	}
	defer rows.Close()

	var docs []IngestedDoc
	for rows.Next() {
		var d IngestedDoc
		if err := rows.Scan(&d.File, &d.Crc); err != nil {
			return nil, fmt.Errorf("failed to scan ingested document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// CreateQuestion stores a question with no answer and returns its id.
func (s *Store) CreateQuestion(ctx context.Context, text string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO questions (text) VALUES (?)", text)
	if err != nil {
		return 0, fmt.Errorf("failed to create question: %w", err)
	}
	return res.LastInsertId()
}

// GetQuestion returns a stored question by id.
func (s *Store) GetQuestion(ctx context.Context, id int64) (Question, error) {
	var q Question
	err := s.db.QueryRowContext(ctx,
		"SELECT id, text, answer, created_at, updated_at FROM questions WHERE id = ?", id).
		Scan(&q.ID, &q.Text, &q.Answer, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return Question{}, fmt.Errorf("failed to get question %d: %w", id, err)
	}
	return q, nil
}

// SetAnswer persists the synthesized answer for a question.
func (s *Store) SetAnswer(ctx context.Context, questionID int64, answer string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE questions SET answer = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		answer, questionID)
	if err != nil {
		return fmt.Errorf("failed to set answer for question %d: %w", questionID, err)
	}
	return nil
}

// SetRelatedDocuments replaces the full set of documents linked to a
// question. The replace is transactional, so repeated calls never accumulate
// links.
func (s *Store) SetRelatedDocuments(ctx context.Context, questionID int64, docIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin linkage transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM question_documents WHERE question_id = ?", questionID); err != nil {
		return fmt.Errorf("failed to clear question links: %w", err)
	}
	for _, docID := range docIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO question_documents (question_id, document_id) VALUES (?, ?)",
			questionID, docID); err != nil {
			return fmt.Errorf("failed to link document %d: %w", docID, err)
		}
	}

	return tx.Commit()
}

// RelatedDocumentIDs returns the documents linked to a question.
func (s *Store) RelatedDocumentIDs(ctx context.Context, questionID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT document_id FROM question_documents WHERE question_id = ? ORDER BY document_id",
		questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list question links: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan question link: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CreateTag stores a tag, deriving its slug from the name.
func (s *Store) CreateTag(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO tags (name, slug) VALUES (?, ?)", name, Slugify(name))
	if err != nil {
		return 0, fmt.Errorf("failed to create tag: %w", err)
	}
	return res.LastInsertId()
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, slug FROM tags ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// TagDocument attaches a tag to a document; attaching twice is a no-op.
func (s *Store) TagDocument(ctx context.Context, docID, tagID int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO document_tags (document_id, tag_id) VALUES (?, ?)",
		docID, tagID)
	if err != nil {
		return fmt.Errorf("failed to tag document %d: %w", docID, err)
	}
	return nil
}

var slugScrub = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and collapses every non-alphanumeric run into a
// single hyphen.
func Slugify(name string) string {
	slug := slugScrub.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

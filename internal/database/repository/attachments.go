package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Attachment is one downloaded conference file.
type Attachment struct {
	ID             string
	ContributionID int
	URL            string
	FileName       string
	// Modified is the remote modification stamp, stored verbatim.
	Modified     string
	Size         int64
	DownloadedAt time.Time
}

// AttachmentID derives the ledger key from the download url, so the same
// remote file always maps to the same row.
func AttachmentID(url string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(url)).String()
}

// AttachmentRepo records which attachment versions are on disk.
type AttachmentRepo struct {
	db *sql.DB
}

func NewAttachmentRepo(db *sql.DB) *AttachmentRepo { return &AttachmentRepo{db: db} }

func (r *AttachmentRepo) Upsert(ctx context.Context, a Attachment) error {
	if a.ID == "" {
		a.ID = AttachmentID(a.URL)
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO attachments(id, contribution_id, url, file_name, modified, size, downloaded_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		contribution_id=excluded.contribution_id,
		file_name=excluded.file_name,
		modified=excluded.modified,
		size=excluded.size,
		downloaded_at=excluded.downloaded_at;
	`, a.ID, a.ContributionID, a.URL, a.FileName, a.Modified, a.Size, a.DownloadedAt.UTC())
	return err
}

// ByURL returns the ledger entry for url, or nil when it was never
// downloaded.
func (r *AttachmentRepo) ByURL(ctx context.Context, url string) (*Attachment, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, contribution_id, url, file_name, modified, size, downloaded_at
	FROM attachments WHERE id = ?`, AttachmentID(url))
	a, err := scanAttachment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *AttachmentRepo) ListByContribution(ctx context.Context, contributionID int) ([]Attachment, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, contribution_id, url, file_name, modified, size, downloaded_at
	FROM attachments WHERE contribution_id = ? ORDER BY file_name`, contributionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *AttachmentRepo) Delete(ctx context.Context, url string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = ?`, AttachmentID(url))
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttachment(s scanner) (*Attachment, error) {
	var a Attachment
	if err := s.Scan(&a.ID, &a.ContributionID, &a.URL, &a.FileName, &a.Modified, &a.Size, &a.DownloadedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

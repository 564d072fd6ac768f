package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/chatstore/internal/core/domain"
	"github.com/custodia-labs/chatstore/internal/logger"
)

// ==================== File Store ====================

// AddFile inserts file metadata.
func (s *Store) AddFile(ctx context.Context, file *domain.FileMeta) error {
	if file == nil {
		return domain.ErrInvalidInput
	}
	if err := file.Validate(); err != nil {
		return err
	}

	c, release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	if _, err := c.stmts.insertFile.ExecContext(ctx,
		file.ID, file.Name, file.Size, file.MimeType, millis(file.CreatedAt)); err != nil {
		return wrapErr("adding file", err)
	}
	return nil
}

// GetFileByID retrieves file metadata by ID.
// Returns nil and no error if the file does not exist.
func (s *Store) GetFileByID(ctx context.Context, id string) (*domain.FileMeta, error) {
	c, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	return getFile(ctx, c.stmts.getFile, id)
}

// GetFilesByIDs retrieves the files that exist among ids, in no particular order.
// An empty ids list returns immediately without touching the database.
func (s *Store) GetFilesByIDs(ctx context.Context, ids []string) ([]domain.FileMeta, error) {
	if len(ids) == 0 {
		return []domain.FileMeta{}, nil
	}

	idsJSON, err := encodeIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("encoding file ids: %w", err)
	}

	c, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := c.stmts.getFilesByIDs.QueryContext(ctx, idsJSON)
	if err != nil {
		return nil, wrapErr("querying files", err)
	}
	files, err := scanAll(rows, scanFile)
	if err != nil {
		return nil, wrapErr("scanning files", err)
	}
	return files, nil
}

// DeleteFileByID removes file metadata and returns it as it was.
// Returns nil and no error if the file does not exist.
func (s *Store) DeleteFileByID(ctx context.Context, id string) (*domain.FileMeta, error) {
	c, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	if c.returning {
		file, err := scanFile(c.stmts.deleteFileReturning.QueryRowContext(ctx, id))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, wrapErr("deleting file", err)
		}
		return file, nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapErr("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	file, err := getFile(ctx, tx.StmtContext(ctx, c.stmts.getFile), id)
	if err != nil || file == nil {
		return nil, err
	}
	if _, err := tx.StmtContext(ctx, c.stmts.deleteFile).ExecContext(ctx, id); err != nil {
		return nil, wrapErr("deleting file", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, wrapErr("committing transaction", err)
	}
	return file, nil
}

// DeleteOldFiles removes files created strictly before maxDate and returns
// their IDs. Selection and deletion form one atomic unit: a single
// DELETE ... RETURNING when supported, otherwise one transaction.
func (s *Store) DeleteOldFiles(ctx context.Context, maxDate time.Time) ([]string, error) {
	c, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	var ids []string
	if c.returning {
		ids, err = queryIDs(ctx, c.stmts.deleteOldFilesReturning, millis(maxDate))
		if err != nil {
			return nil, wrapErr("deleting old files", err)
		}
	} else {
		ids, err = deleteOldFilesTx(ctx, c, maxDate)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("deleted %d files older than %s", len(ids), maxDate.Format(time.RFC3339))
	return ids, nil
}

func deleteOldFilesTx(ctx context.Context, c *conn, maxDate time.Time) ([]string, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapErr("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ids, err := queryIDs(ctx, tx.StmtContext(ctx, c.stmts.selectOldFileIDs), millis(maxDate))
	if err != nil {
		return nil, wrapErr("selecting old files", err)
	}
	if len(ids) == 0 {
		return ids, nil
	}

	idsJSON, err := encodeIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("encoding file ids: %w", err)
	}
	if _, err := tx.StmtContext(ctx, c.stmts.deleteFilesByIDs).ExecContext(ctx, idsJSON); err != nil {
		return nil, wrapErr("deleting old files", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, wrapErr("committing transaction", err)
	}
	return ids, nil
}

// queryIDs runs a statement whose rows hold a single ID column.
func queryIDs(ctx context.Context, stmt *sql.Stmt, args ...any) ([]string, error) {
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func getFile(ctx context.Context, stmt *sql.Stmt, id string) (*domain.FileMeta, error) {
	file, err := scanFile(stmt.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("scanning file", err)
	}
	return file, nil
}

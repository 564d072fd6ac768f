package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/custodia-labs/chatstore/internal/core/domain"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanChat(row rowScanner) (*domain.Chat, error) {
	var chat domain.Chat
	var createdAt int64
	if err := row.Scan(&chat.ID, &chat.Name, &chat.CreatorID, &createdAt); err != nil {
		return nil, err
	}
	chat.CreatedAt = fromMillis(createdAt)
	return &chat, nil
}

func scanMessage(row rowScanner) (*domain.Message, error) {
	var msg domain.Message
	var replyTo, threadID, scene, step, restriction sql.NullString
	var body string
	var createdAt int64

	if err := row.Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &replyTo, &threadID,
		&scene, &step, &body, &restriction, &createdAt); err != nil {
		return nil, err
	}

	msg.ReplyTo = stringPtr(replyTo)
	msg.ThreadID = stringPtr(threadID)
	msg.Scene = stringPtr(scene)
	msg.Step = stringPtr(step)
	msg.CreatedAt = fromMillis(createdAt)

	if err := decodeJSON(body, &msg.Body); err != nil {
		return nil, fmt.Errorf("decoding body of message %s: %w: %w", msg.ID, domain.ErrSerialization, err)
	}
	if msg.Body == nil {
		return nil, fmt.Errorf("decoding body of message %s: %w: body is null", msg.ID, domain.ErrSerialization)
	}

	if restriction.Valid && restriction.String != jsonNull {
		if err := decodeJSON(restriction.String, &msg.ReplyRestriction); err != nil {
			return nil, fmt.Errorf("decoding reply restriction of message %s: %w: %w",
				msg.ID, domain.ErrSerialization, err)
		}
	}

	return &msg, nil
}

func scanConfirmedStep(row rowScanner) (*domain.ConfirmedStep, error) {
	var step domain.ConfirmedStep
	var createdAt int64
	if err := row.Scan(&step.ID, &step.ThreadID, &step.MessageID,
		&step.Scene, &step.Step, &createdAt); err != nil {
		return nil, err
	}
	step.CreatedAt = fromMillis(createdAt)
	return &step, nil
}

func scanFile(row rowScanner) (*domain.FileMeta, error) {
	var file domain.FileMeta
	var createdAt int64
	if err := row.Scan(&file.ID, &file.Name, &file.Size, &file.MimeType, &createdAt); err != nil {
		return nil, err
	}
	file.CreatedAt = fromMillis(createdAt)
	return &file, nil
}

// scanAll collects every row of rows with scan, then closes rows.
func scanAll[T any](rows *sql.Rows, scan func(rowScanner) (*T, error)) ([]T, error) {
	defer rows.Close()

	result := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ==================== Helper Functions ====================

// decodeJSON decodes a stored JSON document into v. Numbers decode as
// json.Number so integers beyond 2^53 keep their exact value.
func decodeJSON(data string, v any) error {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// millis converts a time to epoch milliseconds for storage.
func millis(t time.Time) int64 {
	return t.UnixMilli()
}

// fromMillis converts stored epoch milliseconds back to a UTC time.
func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// nullString returns nil for a nil pointer so it binds as SQL NULL.
func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// nullMillis returns nil for a nil pointer so it binds as SQL NULL.
func nullMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return millis(*t)
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// encodeJSON marshals a structured payload, returning SQL NULL for nil.
func encodeJSON(v map[string]any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSerialization, err)
	}
	return string(data), nil
}

// encodeIDs marshals an ID list for json_each.
func encodeIDs(ids []string) (string, error) {
	data, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

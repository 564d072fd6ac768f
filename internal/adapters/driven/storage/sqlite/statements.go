package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const (
	chatColumns    = "id, name, creatorID, createdAt"
	messageColumns = "id, chatID, senderID, replyTo, threadID, scene, step, body, replyRestriction, createdAt"
	stepColumns    = "id, threadID, messageID, scene, step, createdAt"
	fileColumns    = "id, name, size, mimeType, createdAt"
)

// statements holds every prepared statement the store uses.
// RETURNING variants are nil when the engine does not support them.
type statements struct {
	stats *sql.Stmt

	insertChat          *sql.Stmt
	getChat             *sql.Stmt
	listChatsByCreator  *sql.Stmt
	countChatsByCreator *sql.Stmt
	updateChat          *sql.Stmt
	updateChatReturning *sql.Stmt
	deleteChat          *sql.Stmt
	deleteChatReturning *sql.Stmt

	insertMessage        *sql.Stmt
	getMessage           *sql.Stmt
	getMessagesByIDs     *sql.Stmt
	listMessagesByChat   *sql.Stmt
	deleteOldMessages    *sql.Stmt
	deleteMessagesByChat *sql.Stmt

	insertStep        *sql.Stmt
	listStepsByThread *sql.Stmt
	deleteOldSteps    *sql.Stmt

	insertFile              *sql.Stmt
	getFile                 *sql.Stmt
	getFilesByIDs           *sql.Stmt
	deleteFile              *sql.Stmt
	deleteFileReturning     *sql.Stmt
	selectOldFileIDs        *sql.Stmt
	deleteFilesByIDs        *sql.Stmt
	deleteOldFilesReturning *sql.Stmt
}

// statementDef pairs a statement slot with its SQL.
type statementDef struct {
	dst       **sql.Stmt
	query     string
	returning bool
}

func (st *statements) defs() []statementDef {
	return []statementDef{
		{&st.stats, `
			SELECT (SELECT COUNT(*) FROM chats),
			       (SELECT COUNT(*) FROM messages),
			       (SELECT COUNT(*) FROM confirmed_steps),
			       (SELECT COUNT(*) FROM files)`, false},

		// Chats
		{&st.insertChat, `INSERT INTO chats (` + chatColumns + `) VALUES (?, ?, ?, ?)`, false},
		{&st.getChat, `SELECT ` + chatColumns + ` FROM chats WHERE id = ?`, false},
		{&st.listChatsByCreator, `
			SELECT ` + chatColumns + ` FROM chats
			WHERE creatorID = ?
			ORDER BY createdAt DESC
			LIMIT ? OFFSET ?`, false},
		{&st.countChatsByCreator, `SELECT COUNT(*) FROM chats WHERE creatorID = ?`, false},
		{&st.updateChat, `
			UPDATE chats SET
				name = COALESCE(?, name),
				creatorID = COALESCE(?, creatorID),
				createdAt = COALESCE(?, createdAt)
			WHERE id = ?`, false},
		{&st.updateChatReturning, `
			UPDATE chats SET
				name = COALESCE(?, name),
				creatorID = COALESCE(?, creatorID),
				createdAt = COALESCE(?, createdAt)
			WHERE id = ?
			RETURNING ` + chatColumns, true},
		{&st.deleteChat, `DELETE FROM chats WHERE id = ?`, false},
		{&st.deleteChatReturning, `DELETE FROM chats WHERE id = ? RETURNING ` + chatColumns, true},

		// Messages
		{&st.insertMessage, `INSERT INTO messages (` + messageColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, false},
		{&st.getMessage, `SELECT ` + messageColumns + ` FROM messages WHERE id = ?`, false},
		{&st.getMessagesByIDs, `
			SELECT ` + messageColumns + ` FROM messages
			WHERE id IN (SELECT value FROM json_each(?))`, false},
		{&st.listMessagesByChat, `
			SELECT ` + messageColumns + ` FROM messages
			WHERE chatID = ?
			ORDER BY createdAt DESC, id DESC
			LIMIT ? OFFSET ?`, false},
		{&st.deleteOldMessages, `DELETE FROM messages WHERE createdAt < ?`, false},
		{&st.deleteMessagesByChat, `DELETE FROM messages WHERE chatID = ?`, false},

		// Confirmed steps
		{&st.insertStep, `INSERT INTO confirmed_steps (` + stepColumns + `) VALUES (?, ?, ?, ?, ?, ?)`, false},
		{&st.listStepsByThread, `
			SELECT ` + stepColumns + ` FROM confirmed_steps
			WHERE threadID = ?
			ORDER BY createdAt DESC`, false},
		{&st.deleteOldSteps, `DELETE FROM confirmed_steps WHERE createdAt < ?`, false},

		// Files
		{&st.insertFile, `INSERT INTO files (` + fileColumns + `) VALUES (?, ?, ?, ?, ?)`, false},
		{&st.getFile, `SELECT ` + fileColumns + ` FROM files WHERE id = ?`, false},
		{&st.getFilesByIDs, `
			SELECT ` + fileColumns + ` FROM files
			WHERE id IN (SELECT value FROM json_each(?))`, false},
		{&st.deleteFile, `DELETE FROM files WHERE id = ?`, false},
		{&st.deleteFileReturning, `DELETE FROM files WHERE id = ? RETURNING ` + fileColumns, true},
		{&st.selectOldFileIDs, `SELECT id FROM files WHERE createdAt < ?`, false},
		{&st.deleteFilesByIDs, `DELETE FROM files WHERE id IN (SELECT value FROM json_each(?))`, false},
		{&st.deleteOldFilesReturning, `DELETE FROM files WHERE createdAt < ? RETURNING id`, true},
	}
}

// prepareStatements prepares every statement. On failure, any statement
// already prepared is closed.
func prepareStatements(ctx context.Context, db *sql.DB, returning bool) (*statements, error) {
	st := &statements{}
	for _, def := range st.defs() {
		if def.returning && !returning {
			continue
		}
		stmt, err := db.PrepareContext(ctx, def.query)
		if err != nil {
			st.close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("preparing %q: %w", firstLine(def.query), err)
		}
		*def.dst = stmt
	}
	return st, nil
}

// close closes every prepared statement and resets the slots.
func (st *statements) close() error {
	var errs []error
	for _, def := range st.defs() {
		if *def.dst == nil {
			continue
		}
		if err := (*def.dst).Close(); err != nil {
			errs = append(errs, err)
		}
		*def.dst = nil
	}
	return errors.Join(errs...)
}

// firstLine returns the first non-blank line of a query for error messages.
func firstLine(query string) string {
	for _, line := range strings.Split(query, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return query
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/chatstore/internal/core/domain"
	"github.com/custodia-labs/chatstore/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.Storage = (*Store)(nil)

// Store is an in-memory implementation of driven.Storage.
// It mirrors the SQLite adapter's semantics, including ErrNotOpen
// after Close, and is intended for tests and ephemeral use.
// Data survives Close and is visible again after the next Open.
type Store struct {
	mu       sync.RWMutex
	open     bool
	chats    map[string]domain.Chat
	messages map[string]domain.Message
	steps    map[string]domain.ConfirmedStep
	files    map[string]domain.FileMeta
}

// NewStore creates a new, closed in-memory store.
func NewStore() *Store {
	return &Store{
		chats:    make(map[string]domain.Chat),
		messages: make(map[string]domain.Message),
		steps:    make(map[string]domain.ConfirmedStep),
		files:    make(map[string]domain.FileMeta),
	}
}

// Open marks the store open.
func (s *Store) Open(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	return nil
}

// Close marks the store closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}

// Stats returns the number of records per entity kind.
func (s *Store) Stats(_ context.Context) (*domain.Stats, error) {
	unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()

	return &domain.Stats{
		Chats:          int64(len(s.chats)),
		Messages:       int64(len(s.messages)),
		ConfirmedSteps: int64(len(s.steps)),
		Files:          int64(len(s.files)),
	}, nil
}

// read takes the read lock if the store is open.
func (s *Store) read() (func(), error) {
	s.mu.RLock()
	if !s.open {
		s.mu.RUnlock()
		return nil, domain.ErrNotOpen
	}
	return s.mu.RUnlock, nil
}

// write takes the write lock if the store is open.
func (s *Store) write() (func(), error) {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return nil, domain.ErrNotOpen
	}
	return s.mu.Unlock, nil
}

// ==================== Chats ====================

// AddChat inserts a new chat.
func (s *Store) AddChat(_ context.Context, chat *domain.Chat) error {
	if chat == nil || chat.ID == "" {
		return domain.ErrInvalidInput
	}
	unlock, err := s.write()
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := s.chats[chat.ID]; exists {
		return domain.ErrConstraint
	}
	c := *chat
	c.CreatedAt = truncate(c.CreatedAt)
	s.chats[chat.ID] = c
	return nil
}

// GetChatByID retrieves a chat by ID.
func (s *Store) GetChatByID(_ context.Context, id string) (*domain.Chat, error) {
	unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()

	chat, ok := s.chats[id]
	if !ok {
		return nil, nil
	}
	return &chat, nil
}

// GetChatsByCreatorID returns a creator's chats, most recent first.
func (s *Store) GetChatsByCreatorID(_ context.Context, creatorID string, page domain.Page) ([]domain.Chat, error) {
	unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()

	result := make([]domain.Chat, 0)
	for _, chat := range s.chats {
		if chat.CreatorID == creatorID {
			result = append(result, chat)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return paginate(result, page.Normalise(domain.DefaultChatPageLimit)), nil
}

// CountChatsByCreatorID returns how many chats a creator owns.
func (s *Store) CountChatsByCreatorID(_ context.Context, creatorID string) (int64, error) {
	unlock, err := s.read()
	if err != nil {
		return 0, err
	}
	defer unlock()

	var count int64
	for _, chat := range s.chats {
		if chat.CreatorID == creatorID {
			count++
		}
	}
	return count, nil
}

// EditChatByID applies a partial update.
func (s *Store) EditChatByID(_ context.Context, id string, update domain.ChatUpdate) (*domain.Chat, error) {
	unlock, err := s.write()
	if err != nil {
		return nil, err
	}
	defer unlock()

	chat, ok := s.chats[id]
	if !ok {
		return nil, nil
	}
	if update.Name != nil {
		chat.Name = *update.Name
	}
	if update.CreatorID != nil {
		chat.CreatorID = *update.CreatorID
	}
	if update.CreatedAt != nil {
		chat.CreatedAt = truncate(*update.CreatedAt)
	}
	s.chats[id] = chat
	return &chat, nil
}

// DeleteChatByID removes a chat and returns it.
func (s *Store) DeleteChatByID(_ context.Context, id string) (*domain.Chat, error) {
	unlock, err := s.write()
	if err != nil {
		return nil, err
	}
	defer unlock()

	chat, ok := s.chats[id]
	if !ok {
		return nil, nil
	}
	delete(s.chats, id)
	return &chat, nil
}

// ==================== Messages ====================

// AddMessage inserts a new message.
func (s *Store) AddMessage(_ context.Context, msg *domain.Message) error {
	if msg == nil {
		return domain.ErrInvalidInput
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	unlock, err := s.write()
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := s.messages[msg.ID]; exists {
		return domain.ErrConstraint
	}
	m := copyMessage(*msg)
	m.CreatedAt = truncate(m.CreatedAt)
	s.messages[msg.ID] = m
	return nil
}

// GetMessageByID retrieves a message by ID.
func (s *Store) GetMessageByID(_ context.Context, id string) (*domain.Message, error) {
	unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()

	msg, ok := s.messages[id]
	if !ok {
		return nil, nil
	}
	msg = copyMessage(msg)
	return &msg, nil
}

// GetMessagesByIDs retrieves the messages that exist among ids.
func (s *Store) GetMessagesByIDs(_ context.Context, ids []string) ([]domain.Message, error) {
	if len(ids) == 0 {
		return []domain.Message{}, nil
	}
	unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()

	result := make([]domain.Message, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if msg, ok := s.messages[id]; ok && !seen[id] {
			seen[id] = true
			result = append(result, copyMessage(msg))
		}
	}
	return result, nil
}

// GetMessagesByChatID returns a chat's messages, most recent first.
func (s *Store) GetMessagesByChatID(_ context.Context, chatID string, page domain.Page) ([]domain.Message, error) {
	unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()

	result := make([]domain.Message, 0)
	for _, msg := range s.messages {
		if msg.ChatID == chatID {
			result = append(result, copyMessage(msg))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return paginate(result, page.Normalise(domain.DefaultMessagePageLimit)), nil
}

// DeleteOldMessages removes messages created strictly before maxDate.
func (s *Store) DeleteOldMessages(_ context.Context, maxDate time.Time) (int64, error) {
	unlock, err := s.write()
	if err != nil {
		return 0, err
	}
	defer unlock()

	return deleteWhere(s.messages, func(m domain.Message) bool {
		return m.CreatedAt.Before(truncate(maxDate))
	}), nil
}

// DeleteMessagesByChatID removes every message of a chat.
func (s *Store) DeleteMessagesByChatID(_ context.Context, chatID string) (int64, error) {
	unlock, err := s.write()
	if err != nil {
		return 0, err
	}
	defer unlock()

	return deleteWhere(s.messages, func(m domain.Message) bool {
		return m.ChatID == chatID
	}), nil
}

// ==================== Confirmed Steps ====================

// AddConfirmedStep appends a record.
func (s *Store) AddConfirmedStep(_ context.Context, step *domain.ConfirmedStep) error {
	if step == nil || step.ID == "" {
		return domain.ErrInvalidInput
	}
	unlock, err := s.write()
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := s.steps[step.ID]; exists {
		return domain.ErrConstraint
	}
	st := *step
	st.CreatedAt = truncate(st.CreatedAt)
	s.steps[step.ID] = st
	return nil
}

// GetConfirmedStepsByThreadID returns all records of a thread, most recent first.
func (s *Store) GetConfirmedStepsByThreadID(_ context.Context, threadID string) ([]domain.ConfirmedStep, error) {
	unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()

	result := make([]domain.ConfirmedStep, 0)
	for _, step := range s.steps {
		if step.ThreadID == threadID {
			result = append(result, step)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteOldConfirmedSteps removes records created strictly before maxDate.
func (s *Store) DeleteOldConfirmedSteps(_ context.Context, maxDate time.Time) (int64, error) {
	unlock, err := s.write()
	if err != nil {
		return 0, err
	}
	defer unlock()

	return deleteWhere(s.steps, func(st domain.ConfirmedStep) bool {
		return st.CreatedAt.Before(truncate(maxDate))
	}), nil
}

// ==================== Files ====================

// AddFile inserts file metadata.
func (s *Store) AddFile(_ context.Context, file *domain.FileMeta) error {
	if file == nil {
		return domain.ErrInvalidInput
	}
	if err := file.Validate(); err != nil {
		return err
	}
	unlock, err := s.write()
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := s.files[file.ID]; exists {
		return domain.ErrConstraint
	}
	f := *file
	f.CreatedAt = truncate(f.CreatedAt)
	s.files[file.ID] = f
	return nil
}

// GetFileByID retrieves file metadata by ID.
func (s *Store) GetFileByID(_ context.Context, id string) (*domain.FileMeta, error) {
	unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()

	file, ok := s.files[id]
	if !ok {
		return nil, nil
	}
	return &file, nil
}

// GetFilesByIDs retrieves the files that exist among ids.
func (s *Store) GetFilesByIDs(_ context.Context, ids []string) ([]domain.FileMeta, error) {
	if len(ids) == 0 {
		return []domain.FileMeta{}, nil
	}
	unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()

	result := make([]domain.FileMeta, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if file, ok := s.files[id]; ok && !seen[id] {
			seen[id] = true
			result = append(result, file)
		}
	}
	return result, nil
}

// DeleteFileByID removes file metadata and returns it.
func (s *Store) DeleteFileByID(_ context.Context, id string) (*domain.FileMeta, error) {
	unlock, err := s.write()
	if err != nil {
		return nil, err
	}
	defer unlock()

	file, ok := s.files[id]
	if !ok {
		return nil, nil
	}
	delete(s.files, id)
	return &file, nil
}

// DeleteOldFiles removes files created strictly before maxDate and returns their IDs.
func (s *Store) DeleteOldFiles(_ context.Context, maxDate time.Time) ([]string, error) {
	unlock, err := s.write()
	if err != nil {
		return nil, err
	}
	defer unlock()

	ids := make([]string, 0)
	cutoff := truncate(maxDate)
	for id, file := range s.files {
		if file.CreatedAt.Before(cutoff) {
			ids = append(ids, id)
			delete(s.files, id)
		}
	}
	return ids, nil
}

// ==================== Helpers ====================

// truncate matches the millisecond precision of persistent adapters.
func truncate(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).UTC()
}

// copyMessage returns msg with its JSON payloads copied, so callers never
// share nested maps or slices with the store.
func copyMessage(msg domain.Message) domain.Message {
	msg.Body = copyMap(msg.Body)
	msg.ReplyRestriction = copyMap(msg.ReplyRestriction)
	return msg
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return copyMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}

func paginate[T any](items []T, page domain.Page) []T {
	if page.Offset >= len(items) {
		return make([]T, 0)
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}

func deleteWhere[T any](m map[string]T, match func(T) bool) int64 {
	var n int64
	for id, item := range m {
		if match(item) {
			delete(m, id)
			n++
		}
	}
	return n
}

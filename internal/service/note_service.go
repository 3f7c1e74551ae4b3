package service

import (
	"context"
	"strings"

	"sticky-notes-api/internal/apperr"
	"sticky-notes-api/internal/domain"
	"sticky-notes-api/pkg/utils"
)

type NoteService struct {
	notes domain.NoteRepository
}

func NewNoteService(notes domain.NoteRepository) *NoteService {
	return &NoteService{notes: notes}
}

type AddNoteInput struct {
	Title    string
	Content  string
	Color    string
	Status   string
	IsPinned bool
	Tags     []string
	Reminder string
}

func (s *NoteService) Add(ctx context.Context, ownerID string, in AddNoteInput) (*domain.Note, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.Color == "" || in.Status == "" {
		return nil, apperr.BadRequest("Missing required fields (title, color, status, isPinned)")
	}
	status := domain.Status(in.Status)
	if !status.Valid() {
		return nil, apperr.BadRequest("Status must be one of draft, active, archived, trashed")
	}

	existing, err := s.notes.FindByTitle(ctx, ownerID, title)
	if err != nil {
		return nil, apperr.Internal("Failed to add note", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("Note with this title already exists")
	}

	n := &domain.Note{
		ID:       utils.NewID(),
		UserID:   ownerID,
		Title:    title,
		Content:  in.Content,
		Color:    in.Color,
		Status:   status,
		IsPinned: in.IsPinned,
		Tags:     in.Tags,
	}
	if n.Content == "" {
		n.Content = domain.DefaultNoteContent
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	if in.Reminder != "" {
		t, err := domain.ParseReminder(in.Reminder)
		if err != nil {
			return nil, apperr.BadRequest("Invalid reminder timestamp")
		}
		n.Reminder = &t
	}

	if err := s.notes.Create(ctx, n); err != nil {
		// 并发提交撞 (user_id, title) 唯一索引
		if isDupKey(err) {
			return nil, apperr.Conflict("Note with this title already exists")
		}
		return nil, apperr.Internal("Failed to add note", err)
	}
	return n, nil
}

func (s *NoteService) List(ctx context.Context, ownerID string) (domain.GroupedNotes, error) {
	notes, err := s.notes.FindByOwner(ctx, ownerID)
	if err != nil {
		return domain.GroupedNotes{}, apperr.Internal("Failed to fetch notes", err)
	}
	return domain.GroupNotes(notes), nil
}

func (s *NoteService) Update(ctx context.Context, ownerID, noteID string, patch domain.NotePatch) (*domain.Note, error) {
	if noteID == "" {
		return nil, apperr.BadRequest("Note ID is required")
	}
	if patch.IsZero() {
		return nil, apperr.BadRequest("Request body is missing")
	}

	n, err := s.notes.FindByID(ctx, noteID, ownerID)
	if err != nil {
		return nil, apperr.Internal("Failed to update note", err)
	}
	if n == nil {
		return nil, apperr.NotFound("Note not found")
	}

	updated := patch.Apply(*n)
	if err := s.notes.Save(ctx, &updated); err != nil {
		if isDupKey(err) {
			return nil, apperr.Conflict("Note with this title already exists")
		}
		return nil, apperr.Internal("Failed to update note", err)
	}
	return &updated, nil
}

// DeletePermanently 两段式删除的第二段：必须已在回收站才允许物理删除
func (s *NoteService) DeletePermanently(ctx context.Context, ownerID, noteID string) error {
	if noteID == "" {
		return apperr.BadRequest("Note ID is required")
	}
	n, err := s.notes.FindByID(ctx, noteID, ownerID)
	if err != nil {
		return apperr.Internal("Failed to delete note", err)
	}
	if n == nil || n.Status != domain.StatusTrashed {
		return apperr.NotFound("Trashed note not found")
	}
	if err := s.notes.Delete(ctx, n); err != nil {
		return apperr.Internal("Failed to delete note", err)
	}
	return nil
}

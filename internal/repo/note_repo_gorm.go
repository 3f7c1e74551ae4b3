package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sticky-notes-api/internal/domain"
)

type NoteRepo struct{ db *gorm.DB }

var _ domain.NoteRepository = (*NoteRepo)(nil)

func NewNoteRepo(db *gorm.DB) *NoteRepo { return &NoteRepo{db: db} }

func (r *NoteRepo) Create(ctx context.Context, n *domain.Note) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NoteRepo) FindByID(ctx context.Context, id, ownerID string) (*domain.Note, error) {
	var n domain.Note
	err := r.db.WithContext(ctx).First(&n, "id = ? AND user_id = ?", id, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NoteRepo) FindByTitle(ctx context.Context, ownerID, title string) (*domain.Note, error) {
	var n domain.Note
	err := r.db.WithContext(ctx).First(&n, "user_id = ? AND title = ?", ownerID, title).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NoteRepo) FindByOwner(ctx context.Context, ownerID string) ([]domain.Note, error) {
	var notes []domain.Note
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at desc").
		Find(&notes).Error
	return notes, err
}

func (r *NoteRepo) Save(ctx context.Context, n *domain.Note) error {
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *NoteRepo) Delete(ctx context.Context, n *domain.Note) error {
	// 物理删除，仅服务层确认过 trashed 状态后调用
	return r.db.WithContext(ctx).Delete(&domain.Note{}, "id = ?", n.ID).Error
}

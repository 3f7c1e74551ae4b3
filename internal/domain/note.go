package domain

import (
	"context"
	"strings"
	"time"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusTrashed  Status = "trashed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusArchived, StatusTrashed:
		return true
	}
	return false
}

const (
	DefaultNoteContent = "No content yet"
	DefaultNoteColor   = "#ffffff"
)

// Note 归属唯一用户；(user_id, title) 唯一索引是并发下重名的最终防线
type Note struct {
	ID       string     `gorm:"primaryKey;type:varchar(32)" json:"id"`
	UserID   string     `gorm:"size:32;not null;uniqueIndex:idx_notes_owner_title" json:"userId"`
	Title    string     `gorm:"size:191;not null;uniqueIndex:idx_notes_owner_title" json:"title"`
	Content  string     `gorm:"type:text" json:"content"`
	Color    string     `gorm:"size:32" json:"color"`
	Status   Status     `gorm:"size:16;not null" json:"status"`
	IsPinned bool       `json:"isPinned"`
	Tags     []string   `gorm:"serializer:json" json:"tags"`
	Reminder *time.Time `json:"reminder"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Note) TableName() string { return "notes" }

// NotePatch 稀疏更新：nil 表示未提交，不碰原值
type NotePatch struct {
	Title    *string    `json:"title"`
	Content  *string    `json:"content"`
	Color    *string    `json:"color"`
	Status   *string    `json:"status"`
	IsPinned *bool      `json:"isPinned"`
	Tags     *[]string  `json:"tags"`
	Reminder *time.Time `json:"-"`
}

func (p NotePatch) IsZero() bool {
	return p.Title == nil && p.Content == nil && p.Color == nil &&
		p.Status == nil && p.IsPinned == nil && p.Tags == nil && p.Reminder == nil
}

// Apply 合并补丁，返回新值。空白字符串与非法 status 按未提交处理。
func (p NotePatch) Apply(n Note) Note {
	if p.Title != nil {
		if t := strings.TrimSpace(*p.Title); t != "" {
			n.Title = t
		}
	}
	if p.Content != nil {
		if c := strings.TrimSpace(*p.Content); c != "" {
			n.Content = c
		}
	}
	if p.Color != nil {
		if c := strings.TrimSpace(*p.Color); c != "" {
			n.Color = c
		}
	}
	if p.Status != nil {
		if s := Status(*p.Status); s.Valid() {
			n.Status = s
		}
	}
	if p.IsPinned != nil {
		n.IsPinned = *p.IsPinned
	}
	if p.Tags != nil {
		n.Tags = *p.Tags
	}
	if p.Reminder != nil {
		n.Reminder = p.Reminder
	}
	return n
}

var reminderLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// ParseReminder 解析客户端提交的提醒时间
func ParseReminder(s string) (time.Time, error) {
	var err error
	for _, layout := range reminderLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// GroupedNotes 列表页的五个互斥分组
type GroupedNotes struct {
	Pinned   []Note `json:"pinned"`
	Archived []Note `json:"archived"`
	Draft    []Note `json:"draft"`
	Trashed  []Note `json:"trashed"`
	Other    []Note `json:"other"`
}

func (g GroupedNotes) Total() int {
	return len(g.Pinned) + len(g.Archived) + len(g.Draft) + len(g.Trashed) + len(g.Other)
}

// GroupNotes 置顶优先于状态分组；每条笔记只落一个分组
func GroupNotes(notes []Note) GroupedNotes {
	g := GroupedNotes{
		Pinned:   []Note{},
		Archived: []Note{},
		Draft:    []Note{},
		Trashed:  []Note{},
		Other:    []Note{},
	}
	for _, n := range notes {
		switch {
		case n.IsPinned:
			g.Pinned = append(g.Pinned, n)
		case n.Status == StatusArchived:
			g.Archived = append(g.Archived, n)
		case n.Status == StatusDraft:
			g.Draft = append(g.Draft, n)
		case n.Status == StatusTrashed:
			g.Trashed = append(g.Trashed, n)
		default:
			g.Other = append(g.Other, n)
		}
	}
	return g
}

type NoteRepository interface {
	Create(ctx context.Context, n *Note) error
	FindByID(ctx context.Context, id, ownerID string) (*Note, error)
	FindByTitle(ctx context.Context, ownerID, title string) (*Note, error)
	FindByOwner(ctx context.Context, ownerID string) ([]Note, error)
	Save(ctx context.Context, n *Note) error
	Delete(ctx context.Context, n *Note) error
}

package domain

import (
	"context"
	"time"
)

// DefaultAvatarURL 新用户未上传头像时的占位图
const DefaultAvatarURL = "https://example.com/default-avatar.png"

type User struct {
	ID           string `gorm:"primaryKey;type:varchar(32)" json:"id"`
	Name         string `gorm:"size:64;not null" json:"name"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:100;not null" json:"-"`

	// 头像：PublicID 是上传服务的内部引用，永不外发
	AvatarURL      string `gorm:"size:512" json:"-"`
	AvatarPublicID string `gorm:"size:191" json:"-"`

	// 同一时刻只保留一个有效 refresh token（新登录挤掉旧会话）
	RefreshToken string `gorm:"size:512;index" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

type Avatar struct {
	URL string `json:"url"`
}

// PublicUser 对外视图：不含密码散列、refresh token 和头像内部 id
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    Avatar    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    Avatar{URL: u.AvatarURL},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserPatch 稀疏更新：nil 表示该字段未提交
type UserPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (p UserPatch) IsZero() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByRefreshToken(ctx context.Context, token string) (*User, error)
	Update(ctx context.Context, u *User) error
}

package service

import (
	"context"
	"regexp"
	"strings"

	"sticky-notes-api/internal/apperr"
	"sticky-notes-api/internal/core/auth"
	"sticky-notes-api/internal/domain"
	"sticky-notes-api/internal/media"
	"sticky-notes-api/pkg/utils"
)

var emailRX = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type UserService struct {
	users domain.UserRepository
	jwter *auth.JWTer
	media media.Store
}

func NewUserService(users domain.UserRepository, jwter *auth.JWTer, store media.Store) *UserService {
	return &UserService{users: users, jwter: jwter, media: store}
}

func (s *UserService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, apperr.BadRequest("Name, email, and password are required")
	}
	if !emailRX.MatchString(email) {
		return nil, apperr.BadRequest("Invalid email format")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("Failed to register user", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("User with this email already exists")
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: utils.HashPassword(password),
		AvatarURL:    domain.DefaultAvatarURL,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// 并发注册撞唯一索引
		if isDupKey(err) {
			return nil, apperr.Conflict("User with this email already exists")
		}
		return nil, apperr.Internal("Failed to register user", err)
	}
	return u, nil
}

// Login 未知邮箱和密码错误必须返回同一句话，避免账号枚举
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, auth.Pair, error) {
	if email == "" || password == "" {
		return nil, auth.Pair{}, apperr.BadRequest("Email and password are required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, auth.Pair{}, apperr.Internal("Login failed", err)
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, auth.Pair{}, apperr.Unauthorized("Invalid email or password")
	}
	pair, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, auth.Pair{}, err
	}
	return u, pair, nil
}

// Refresh 按存储的 refresh token 精确匹配换新；旧 token 被轮换覆盖后立即失效
func (s *UserService) Refresh(ctx context.Context, presented string) (*domain.User, auth.Pair, error) {
	if presented == "" {
		return nil, auth.Pair{}, apperr.Unauthorized("Refresh token missing. Please login again")
	}
	u, err := s.users.FindByRefreshToken(ctx, presented)
	if err != nil {
		return nil, auth.Pair{}, apperr.Internal("Token refresh failed", err)
	}
	if u == nil {
		return nil, auth.Pair{}, apperr.Unauthorized("Invalid refresh token. Please login again")
	}
	pair, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, auth.Pair{}, err
	}
	return u, pair, nil
}

// issueSession 签发新 token 对并落库轮换 refresh token
func (s *UserService) issueSession(ctx context.Context, u *domain.User) (auth.Pair, error) {
	pair, err := s.jwter.IssuePair(u)
	if err != nil {
		return auth.Pair{}, apperr.Internal("Token generation failed", err)
	}
	u.RefreshToken = pair.RefreshToken
	if err := s.users.Update(ctx, u); err != nil {
		return auth.Pair{}, apperr.Internal("Token generation failed", err)
	}
	return pair, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch user", err)
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}
	return u, nil
}

// Logout 清掉存储的 refresh token；用户不存在也按成功处理
func (s *UserService) Logout(ctx context.Context, id string) error {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return apperr.Internal("Logout failed", err)
	}
	if u == nil {
		return nil
	}
	u.RefreshToken = ""
	if err := s.users.Update(ctx, u); err != nil {
		return apperr.Internal("Logout failed", err)
	}
	return nil
}

// UpdateProfile 字段校验 + 可选头像替换。图床是先删旧再传新，
// 上传环节任何失败都在写用户记录之前返回，不会留下半套头像。
func (s *UserService) UpdateProfile(ctx context.Context, id string, patch domain.UserPatch, avatarPath string) (*domain.User, error) {
	if patch.IsZero() && avatarPath == "" {
		return nil, apperr.BadRequest("No data or file provided for update")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperr.BadRequest("Name cannot be empty")
	}
	if patch.Email != nil {
		if strings.TrimSpace(*patch.Email) == "" {
			return nil, apperr.BadRequest("Email cannot be empty")
		}
		if !emailRX.MatchString(*patch.Email) {
			return nil, apperr.BadRequest("Invalid email format")
		}
	}
	if patch.Password != nil && *patch.Password == "" {
		return nil, apperr.BadRequest("Password cannot be empty")
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("Failed to update user", err)
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}

	if avatarPath != "" {
		if s.media == nil {
			return nil, apperr.Internal("Media host not configured", nil)
		}
		if u.AvatarPublicID != "" {
			if err := s.media.Delete(ctx, u.AvatarPublicID); err != nil {
				return nil, err
			}
		}
		asset, err := s.media.Upload(ctx, avatarPath)
		if err != nil {
			return nil, err
		}
		u.AvatarURL = asset.URL
		u.AvatarPublicID = asset.PublicID
	}

	if patch.Name != nil {
		u.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		u.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.Password != nil {
		u.PasswordHash = utils.HashPassword(*patch.Password)
	}

	if err := s.users.Update(ctx, u); err != nil {
		if isDupKey(err) {
			return nil, apperr.Conflict("User with this email already exists")
		}
		return nil, apperr.Internal("Failed to update user", err)
	}
	return u, nil
}

// isDupKey 不依赖 gorm.ErrDuplicatedKey，避免驱动差异
func isDupKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sticky-notes-api/internal/domain"
)

var (
	ErrNoSecret     = errors.New("jwt secret not configured")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	ErrGenerate     = errors.New("token generation failed")
)

// AvatarClaim 旧 token 可能带 publicId，网关放行前必须清掉
type AvatarClaim struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId,omitempty"`
}

type Claims struct {
	UID    string      `json:"uid"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Avatar AvatarClaim `json:"avatar"`
	jwt.RegisteredClaims
}

type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// JWTer access / refresh 两套独立密钥与有效期
type JWTer struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// IssuePair 只签发，不落库；refresh token 轮换由调用方持久化
func (j *JWTer) IssuePair(u *domain.User) (Pair, error) {
	access, err := j.sign(u, j.AccessSecret, j.AccessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("%w: access: %v", ErrGenerate, err)
	}
	refresh, err := j.sign(u, j.RefreshSecret, j.RefreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("%w: refresh: %v", ErrGenerate, err)
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (j *JWTer) sign(u *domain.User, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := Claims{
		UID:    u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: AvatarClaim{URL: u.AvatarURL},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTer) ParseAccess(tokenStr string) (*Claims, error) {
	return j.parse(tokenStr, j.AccessSecret)
}

func (j *JWTer) ParseRefresh(tokenStr string) (*Claims, error) {
	return j.parse(tokenStr, j.RefreshSecret)
}

func (j *JWTer) parse(tokenStr string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, ErrTokenInvalid
}

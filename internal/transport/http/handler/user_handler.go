package handler

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sticky-notes-api/internal/apperr"
	"sticky-notes-api/internal/domain"
	"sticky-notes-api/internal/service"
	mdw "sticky-notes-api/internal/transport/http/middleware"
	resp "sticky-notes-api/internal/transport/http/response"
)

type UserHandler struct {
	users     *service.UserService
	log       *zap.Logger
	env       string
	uploadDir string
}

func NewUserHandler(users *service.UserService, l *zap.Logger, env, uploadDir string) *UserHandler {
	if uploadDir == "" {
		uploadDir = filepath.Join(os.TempDir(), "sticky-notes-uploads")
	}
	_ = os.MkdirAll(uploadDir, 0o755)
	return &UserHandler{users: users, log: l, env: env, uploadDir: uploadDir}
}

type registerIn struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register POST /api/v1/user/register
func (h *UserHandler) Register(c *gin.Context) {
	var in registerIn
	if err := c.ShouldBindJSON(&in); err != nil {
		respondErr(c, h.log, bindErr(err, "Name, email, and password are required"))
		return
	}
	u, err := h.users.Register(c.Request.Context(), in.Name, in.Email, in.Password)
	if err != nil {
		respondErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, resp.Created(u.Public(), "User registered successfully"))
}

type loginIn struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/v1/user/login
func (h *UserHandler) Login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		respondErr(c, h.log, bindErr(err, "Email and password are required"))
		return
	}
	u, pair, err := h.users.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		respondErr(c, h.log, err)
		return
	}
	setAuthCookies(c, pair, h.env)
	c.JSON(http.StatusOK, resp.OK(gin.H{
		"id":           u.ID,
		"name":         u.Name,
		"email":        u.Email,
		"avatar":       u.AvatarURL,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "Login successful"))
}

// Me GET /api/v1/user
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), c.GetString(mdw.CtxUserID))
	if err != nil {
		respondErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(u.Public(), "User retrieved successfully"))
}

// Logout POST /api/v1/user/logout
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.users.Logout(c.Request.Context(), c.GetString(mdw.CtxUserID)); err != nil {
		respondErr(c, h.log, err)
		return
	}
	clearAuthCookies(c)
	c.JSON(http.StatusOK, resp.OK(nil, "Logout successful"))
}

// Refresh GET /api/v1/user/generate/refreshtoken
// refresh token 只认 cookie
func (h *UserHandler) Refresh(c *gin.Context) {
	presented, _ := c.Cookie(mdw.CookieRefreshToken)
	_, pair, err := h.users.Refresh(c.Request.Context(), presented)
	if err != nil {
		respondErr(c, h.log, err)
		return
	}
	setAuthCookies(c, pair, h.env)
	c.JSON(http.StatusOK, resp.OK(gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "Token refreshed successfully"))
}

// Update PUT /api/v1/user/update
// multipart 可带 avatar 文件，纯 JSON 只改字段
func (h *UserHandler) Update(c *gin.Context) {
	patch, avatarPath, err := h.bindUpdate(c)
	if err != nil {
		respondErr(c, h.log, err)
		return
	}
	if avatarPath != "" {
		// 上传成功与否 media 层都会清掉暂存文件；这里兜底
		defer func() { _ = os.Remove(avatarPath) }()
	}
	u, err := h.users.UpdateProfile(c.Request.Context(), c.GetString(mdw.CtxUserID), patch, avatarPath)
	if err != nil {
		respondErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(u.Public(), "User updated successfully"))
}

func (h *UserHandler) bindUpdate(c *gin.Context) (domain.UserPatch, string, error) {
	var patch domain.UserPatch

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if v, ok := c.GetPostForm("name"); ok {
			patch.Name = &v
		}
		if v, ok := c.GetPostForm("email"); ok {
			patch.Email = &v
		}
		if v, ok := c.GetPostForm("password"); ok {
			patch.Password = &v
		}
		file, err := c.FormFile("avatar")
		if err != nil {
			return patch, "", nil
		}
		dst := filepath.Join(h.uploadDir, stagedName(file.Filename))
		if err := c.SaveUploadedFile(file, dst); err != nil {
			return patch, "", apperr.Internal("Failed to store uploaded file", err)
		}
		return patch, dst, nil
	}

	if err := c.ShouldBindJSON(&patch); err != nil {
		if errors.Is(err, io.EOF) {
			// 没 body 也没文件：交给服务层统一报 400
			return domain.UserPatch{}, "", nil
		}
		return patch, "", apperr.BadRequest(err.Error())
	}
	return patch, "", nil
}

// stagedName 暂存文件名去重，保留原扩展名给图床校验
func stagedName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("avatar-%d-%d%s", time.Now().UnixNano(), rand.Intn(1_000_000_000), ext)
}

// bindErr 空 body 与字段校验失败区分开
func bindErr(err error, fieldMsg string) error {
	if errors.Is(err, io.EOF) {
		return apperr.BadRequest("Request body is missing")
	}
	return apperr.BadRequest(fieldMsg)
}

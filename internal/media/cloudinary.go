package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"sticky-notes-api/internal/apperr"
)

// Asset 图床上的一个文件；PublicID 仅供后续删除，不外发
type Asset struct {
	URL      string
	PublicID string
}

type Store interface {
	Upload(ctx context.Context, filePath string) (Asset, error)
	Delete(ctx context.Context, publicID string) error
}

type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	MaxSizeMB int
}

// Cloudinary 进程启动时构造一次，按依赖注入传给需要的服务
type Cloudinary struct {
	cld      *cloudinary.Cloudinary
	folder   string
	maxBytes int64
}

var _ Store = (*Cloudinary)(nil)

var allowedExt = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".webp": {}, ".gif": {}, ".svg": {},
}

func NewCloudinary(cfg Config) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	maxMB := cfg.MaxSizeMB
	if maxMB <= 0 {
		maxMB = 10
	}
	folder := cfg.Folder
	if folder == "" {
		folder = "avatars"
	}
	return &Cloudinary{cld: cld, folder: folder, maxBytes: int64(maxMB) << 20}, nil
}

// Upload 本地校验通过后上传，成功与否都清掉本地暂存文件
func (c *Cloudinary) Upload(ctx context.Context, filePath string) (Asset, error) {
	if filePath == "" {
		return Asset{}, apperr.BadRequest("No file path provided for upload")
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return Asset{}, apperr.NotFound("File not found on server")
	}
	if info.Size() > c.maxBytes {
		_ = os.Remove(filePath)
		return Asset{}, apperr.BadRequest(fmt.Sprintf("File size exceeds %dMB limit", c.maxBytes>>20))
	}
	ext := strings.ToLower(filepath.Ext(filePath))
	if _, ok := allowedExt[ext]; !ok {
		_ = os.Remove(filePath)
		return Asset{}, apperr.BadRequest("Invalid file type. Only images (jpg, jpeg, png, webp, gif, svg) are allowed.")
	}

	res, err := c.cld.Upload.Upload(ctx, filePath, uploader.UploadParams{Folder: c.folder})
	_ = os.Remove(filePath)
	if err != nil {
		return Asset{}, apperr.Internal("Cloudinary upload failed", err)
	}
	return Asset{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return apperr.BadRequest("No public_id provided for deletion")
	}
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return apperr.Internal("Cloudinary deletion error", err)
	}
	if res.Result != "ok" && res.Result != "not found" {
		return apperr.Internal("Failed to delete file from Cloudinary", nil)
	}
	return nil
}

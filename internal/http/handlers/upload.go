package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const uploadFieldName = "product"

type UploadHandler struct {
	dir     string
	baseURL string
}

// NewUploadHandler stores product images under dir. baseURL overrides the
// request-derived host in the returned image_url (empty means derive).
func NewUploadHandler(dir, baseURL string) *UploadHandler {
	return &UploadHandler{dir: dir, baseURL: baseURL}
}

// Upload accepts one multipart image in the `product` field and answers
// with the storefront's legacy shape: success is the number 1.
func (h *UploadHandler) Upload(ctx *gin.Context) {
	file, err := ctx.FormFile(uploadFieldName)

	if err != nil {
		RespondBadRequest(ctx, "missing file field "+uploadFieldName)
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))

	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp", ".gif":
	default:
		RespondBadRequest(ctx, "unsupported image type")
		return
	}

	name := fmt.Sprintf("%s_%d%s", uploadFieldName, time.Now().UnixMilli(), ext)
	dst := filepath.Join(h.dir, name)

	if err := ctx.SaveUploadedFile(file, dst); err != nil {
		RespondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":   1,
		"image_url": h.imageURL(ctx, name),
	})
}

func (h *UploadHandler) imageURL(ctx *gin.Context, name string) string {
	base := h.baseURL

	if base == "" {
		scheme := "http"

		if ctx.Request.TLS != nil {
			scheme = "https"
		}

		base = scheme + "://" + ctx.Request.Host
	}

	return base + "/images/" + name
}

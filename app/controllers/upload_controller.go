package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mogusu300/b2zi-merchant/config"
	"github.com/mogusu300/b2zi-merchant/pkg/ctx"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// multipart overhead allowed on top of the file itself
const formSlack = 1 << 20

type UploadController struct{}

func NewUploadController() *UploadController { return &UploadController{} }

// Store accepts an image in the "file" field and returns the URL it would be
// served from. Files are not persisted yet.
func (c *UploadController) Store(cx *ctx.Context) {
	limit := config.UploadMaxBytes()
	tooLarge := fmt.Sprintf("File size exceeds %dMB limit", limit>>20)
	cx.R.Body = http.MaxBytesReader(cx.W, cx.R.Body, limit+formSlack)

	file, header, err := cx.FormFile("file", limit)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			cx.Error(http.StatusBadRequest, tooLarge)
			return
		}
		cx.Error(http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if !allowedImageTypes[strings.ToLower(header.Header.Get("Content-Type"))] {
		cx.Error(http.StatusBadRequest, "Invalid file type. Please upload JPEG, PNG, or WebP images only.")
		return
	}
	if header.Size > limit {
		cx.Error(http.StatusBadRequest, tooLarge)
		return
	}

	name := strings.ReplaceAll(path.Base(strings.ReplaceAll(header.Filename, "\\", "/")), " ", "-")
	url := fmt.Sprintf("/uploads/%d-%s-%s", time.Now().UnixMilli(), uuid.NewString(), name)

	cx.Log().Info("upload accepted", "url", url, "size", header.Size, "content_type", header.Header.Get("Content-Type"))
	cx.JSON(http.StatusOK, map[string]string{
		"url":     url,
		"message": "File upload successful. Implement actual storage in production.",
	})
}

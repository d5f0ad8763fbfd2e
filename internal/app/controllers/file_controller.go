package controllers

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/nhance/internal/middleware"
	"github.com/yigit/nhance/internal/pkg/blobstore"
)

// FileController serves blobs of the local storage driver through signed links
type FileController struct {
	local *blobstore.LocalBackend
}

// NewFileController creates a new FileController
func NewFileController(local *blobstore.LocalBackend) *FileController {
	return &FileController{local: local}
}

// ServeFile godoc
// @Summary Download a stored file
// @Description Streams a file when the signature and expiry in the link are valid
// @Tags files
// @Produce application/octet-stream
// @Param bucket path string true "Bucket"
// @Param path path string true "Object path"
// @Param expires query int true "Expiry as unix seconds"
// @Param signature query string true "Link signature"
// @Success 200 {file} file "File content"
// @Failure 403 {object} dto.ErrorResponse "Invalid or expired link"
// @Failure 404 {object} dto.ErrorResponse "File not found"
// @Router /files/{bucket}/{path} [get]
func (c *FileController) ServeFile(ctx *gin.Context) {
	objectPath := strings.TrimPrefix(ctx.Param("path"), "/")

	f, err := c.local.Open(ctx.Param("bucket"), objectPath, ctx.Query("expires"), ctx.Query("signature"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	name := path.Base(objectPath)
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(ctx.Writer, ctx.Request, name, info.ModTime(), f)
}

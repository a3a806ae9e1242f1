package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	uploadsvc "campusx/internal/app/services/upload"
)

type UploadHandler struct {
	Uploads *uploadsvc.Service
}

// UploadImage accepts a multipart "file" part and returns the public URL.
func (h UploadHandler) UploadImage(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	defer file.Close()

	url, err := h.Uploads.UploadImage(c.Request.Context(), p.ID, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, gin.H{"url": url})
}

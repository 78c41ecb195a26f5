package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gdugdh24/profile-service/internal/domain"
	"github.com/gdugdh24/profile-service/internal/media/crop"
	"github.com/gdugdh24/profile-service/internal/usecase/photo"
	"github.com/gin-gonic/gin"
)

type PhotoHandler struct {
	photoUseCase   *photo.PhotoUseCase
	maxUploadBytes int64
}

func NewPhotoHandler(photoUseCase *photo.PhotoUseCase, maxUploadBytes int64) *PhotoHandler {
	return &PhotoHandler{
		photoUseCase:   photoUseCase,
		maxUploadBytes: maxUploadBytes,
	}
}

type selectPhotoForm struct {
	DisplayWidth  int `form:"display_width" binding:"omitempty,min=0"`
	DisplayHeight int `form:"display_height" binding:"omitempty,min=0"`
}

// uploadedFile adapts a multipart upload to crop.File.
type uploadedFile struct {
	header *multipart.FileHeader
}

func (f uploadedFile) MediaType() string { return f.header.Header.Get("Content-Type") }
func (f uploadedFile) Size() int64       { return f.header.Size }

func (f uploadedFile) Open() (io.ReadCloser, error) {
	return f.header.Open()
}

// Select handles POST /profile/photo
// @Summary Select a profile photo
// @Description Upload an image and start cropping it
// @Tags photo
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Param display_width formData int false "Displayed width"
// @Param display_height formData int false "Displayed height"
// @Success 200 {object} photo.SelectionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /profile/photo [post]
func (h *PhotoHandler) Select(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, domain.ErrTooLarge, "file too large")
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is required"})
		return
	}

	var form selectPhotoForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid form: " + err.Error(),
		})
		return
	}

	displayed := crop.Size{Width: form.DisplayWidth, Height: form.DisplayHeight}
	res, err := h.photoUseCase.Select(c.Request.Context(), session, uploadedFile{header: header}, displayed)
	if err != nil {
		respondError(c, err, "failed to select photo")
		return
	}

	c.JSON(http.StatusOK, res)
}

// UpdateRegion handles PUT /profile/photo/region
func (h *PhotoHandler) UpdateRegion(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	var req photo.UpdateRegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
		return
	}

	region, err := h.photoUseCase.UpdateRegion(session, req)
	if err != nil {
		respondError(c, err, "failed to update region")
		return
	}

	c.JSON(http.StatusOK, region)
}

// Commit handles POST /profile/photo/commit
func (h *PhotoHandler) Commit(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	res, err := h.photoUseCase.Commit(c.Request.Context(), session)
	if err != nil {
		respondError(c, err, "failed to save photo")
		return
	}

	c.JSON(http.StatusOK, res)
}

// Cancel handles DELETE /profile/photo
func (h *PhotoHandler) Cancel(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	h.photoUseCase.Cancel(session)
	c.JSON(http.StatusOK, SuccessResponse{Message: "photo selection cancelled"})
}

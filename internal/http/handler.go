package http

import (
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"plate-slip-service/internal/service"
	"plate-slip-service/internal/storage"
)

const (
	// Response timestamp format, day-month-year hour:minute:second.
	entryTimeFormat = "02 Jan 2006, 15:04:05"

	noPlateMessage = "No number plate detected in image"

	maxUploadBytes = 10 << 20
)

type Handler struct {
	plateService *service.PlateService
	store        *storage.ArtifactStore
	log          zerolog.Logger
}

func NewHandler(
	plateService *service.PlateService,
	store *storage.ArtifactStore,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		plateService: plateService,
		store:        store,
		log:          log,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.POST("/plates/recognize", h.recognizePlate)
	}

	r.GET("/static/slips/:filename", h.serveArtifact)
	r.GET("/", h.index)
}

func (h *Handler) recognizePlate(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("no image uploaded"))
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, errorResponse("image too large"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("could not read uploaded image"))
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("could not read uploaded image"))
		return
	}

	h.log.Info().
		Str("filename", fileHeader.Filename).
		Int("size", len(imageData)).
		Msg("processing plate recognition upload")

	result, err := h.plateService.Process(c.Request.Context(), imageData)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			h.log.Warn().Err(err).Str("filename", fileHeader.Filename).Msg("invalid upload")
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrRenderFailed):
			h.log.Error().Err(err).Msg("failed to generate parking slip")
			c.JSON(http.StatusInternalServerError, errorResponse("failed to generate parking slip"))
		default:
			h.log.Error().Err(err).Msg("failed to process upload")
			c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		}
		return
	}

	// No plate is a normal outcome, not an error status.
	if result.NoPlate {
		c.JSON(http.StatusOK, gin.H{
			"request_id": result.RequestID,
			"error":      noPlateMessage,
		})
		return
	}

	resp := gin.H{
		"request_id":   result.RequestID,
		"plate":        result.Reading.Text,
		"reading_code": result.Reading.Code,
		"entry_time":   result.EntryTime.Format(entryTimeFormat),
		"fee":          result.Fee,
		"slip_url":     h.store.URL(result.SlipFile),
		"anno_url":     h.store.URL(result.AnnotatedFile),
	}
	if result.CropFile != "" {
		resp["crop_url"] = h.store.URL(result.CropFile)
	}
	if result.SlipObjectURL != "" {
		resp["slip_object_url"] = result.SlipObjectURL
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) serveArtifact(c *gin.Context) {
	name := c.Param("filename")

	path, err := h.store.Resolve(name)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid artifact name"))
		return
	}
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, errorResponse("artifact not found"))
		return
	}

	c.File(path)
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

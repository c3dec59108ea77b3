package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noznum/tracklab/internal/models"
	"github.com/noznum/tracklab/internal/service"
	"github.com/noznum/tracklab/pkg/response"
)

// SegmentHandler handles HTTP requests for saved segments
type SegmentHandler struct {
	service *service.TrackService
}

// NewSegmentHandler creates a new segment handler
func NewSegmentHandler(service *service.TrackService) *SegmentHandler {
	return &SegmentHandler{service: service}
}

// GetSegments handles GET /api/v1/segments
func (h *SegmentHandler) GetSegments(c *gin.Context) {
	var filter models.SegmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	segments, err := h.service.ListSegments(filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get segments")
		return
	}

	response.Success(c, segments)
}

// GetSegment handles GET /api/v1/segments/:uuid
func (h *SegmentHandler) GetSegment(c *gin.Context) {
	entry, err := h.service.GetSegment(c.Param("uuid"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, entry)
}

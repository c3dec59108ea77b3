package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/noznum/tracklab/internal/models"
	"github.com/noznum/tracklab/internal/service"
	"github.com/noznum/tracklab/pkg/response"
)

// SelectionHandler handles HTTP requests for labelling a segment
type SelectionHandler struct {
	service *service.TrackService
}

// NewSelectionHandler creates a new selection handler
func NewSelectionHandler(service *service.TrackService) *SelectionHandler {
	return &SelectionHandler{service: service}
}

// LabelRequest represents the request body for naming a selection
type LabelRequest struct {
	Label string `json:"label"`
}

// GetSelection handles GET /api/v1/selection
func (h *SelectionHandler) GetSelection(c *gin.Context) {
	snap, err := h.service.Selection()
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, snap)
}

// Begin handles POST /api/v1/selection/begin
func (h *SelectionHandler) Begin(c *gin.Context) {
	snap, err := h.service.BeginSelection()
	if err != nil {
		response.ErrorWithData(c, response.StatusOf(err), err.Error(), snap)
		return
	}

	response.Success(c, snap)
}

// ConfirmLabel handles POST /api/v1/selection/label
func (h *SelectionHandler) ConfirmLabel(c *gin.Context) {
	var req LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	snap, err := h.service.ConfirmLabel(req.Label)
	if err != nil {
		response.ErrorWithData(c, response.StatusOf(err), err.Error(), snap)
		return
	}

	response.Success(c, snap)
}

// Save handles POST /api/v1/selection/save
func (h *SelectionHandler) Save(c *gin.Context) {
	result, err := h.service.SaveSelection()
	if err == nil {
		response.Success(c, result)
		return
	}

	// The selection went back to collecting clicks
	var degenerate *models.DegenerateSegmentError
	if errors.As(err, &degenerate) {
		snap, snapErr := h.service.Selection()
		if snapErr == nil {
			response.ErrorWithData(c, response.StatusOf(err), err.Error(), snap)
			return
		}
	}
	response.FromError(c, err)
}

// Cancel handles POST /api/v1/selection/cancel
func (h *SelectionHandler) Cancel(c *gin.Context) {
	snap, err := h.service.CancelSelection()
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, snap)
}

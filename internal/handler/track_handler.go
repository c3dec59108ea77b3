package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noznum/tracklab/internal/models"
	"github.com/noznum/tracklab/internal/render"
	"github.com/noznum/tracklab/internal/service"
	"github.com/noznum/tracklab/pkg/response"
)

// Renderer draws both maps and curves
type Renderer interface {
	render.MapRenderer
	render.ChartRenderer
}

// TrackHandler handles HTTP requests for the loaded track
type TrackHandler struct {
	service *service.TrackService
	html    Renderer
	png     Renderer
}

// NewTrackHandler creates a new track handler
func NewTrackHandler(service *service.TrackService, html, png Renderer) *TrackHandler {
	return &TrackHandler{service: service, html: html, png: png}
}

// LoadRequest represents the request body for loading a track file
type LoadRequest struct {
	Path string `json:"path" binding:"required"`
}

// ClickRequest represents the request body for clicking a row
type ClickRequest struct {
	Row *int `json:"row" binding:"required"`
}

// LocateRequest represents the request body for clicking by location
type LocateRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lon *float64 `json:"lon" binding:"required"`
}

// SeriesResponse is a series against elapsed time. Non-finite values encode
// as null.
type SeriesResponse struct {
	Name     string         `json:"name"`
	X        []models.Float `json:"x"`
	Y        []models.Float `json:"y"`
	XLabel   string         `json:"x_label"`
	YLabel   string         `json:"y_label"`
	Selected int            `json:"selected"`
}

// Load handles POST /api/v1/tracks/load
func (h *TrackHandler) Load(c *gin.Context) {
	var req LoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	summary, err := h.service.Load(req.Path)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, summary)
}

// GetCurrent handles GET /api/v1/tracks/current
func (h *TrackHandler) GetCurrent(c *gin.Context) {
	summary, err := h.service.Current()
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, summary)
}

// GetRoute handles GET /api/v1/tracks/route
func (h *TrackHandler) GetRoute(c *gin.Context) {
	zoom, ok := zoomQuery(c)
	if !ok {
		return
	}

	view, err := h.service.MapView(zoom)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, view)
}

// GetMap handles GET /api/v1/tracks/map
func (h *TrackHandler) GetMap(c *gin.Context) {
	zoom, ok := zoomQuery(c)
	if !ok {
		return
	}

	view, err := h.service.MapView(zoom)
	if err != nil {
		response.FromError(c, err)
		return
	}

	r, contentType := h.renderer(c)
	var buf bytes.Buffer
	if err := r.RenderMap(&buf, view); err != nil {
		h.renderFailed(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// GetSeries handles GET /api/v1/tracks/series/:name
func (h *TrackHandler) GetSeries(c *gin.Context) {
	curve, err := h.service.Curve(c.Param("name"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, SeriesResponse{
		Name:     curve.Name,
		X:        floats(curve.X),
		Y:        floats(curve.Y),
		XLabel:   curve.XLabel,
		YLabel:   curve.YLabel,
		Selected: curve.Selected,
	})
}

// GetChart handles GET /api/v1/tracks/chart/:name
func (h *TrackHandler) GetChart(c *gin.Context) {
	curve, err := h.service.Curve(c.Param("name"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	r, contentType := h.renderer(c)
	var buf bytes.Buffer
	if err := r.RenderCurve(&buf, curve); err != nil {
		h.renderFailed(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Hover handles GET /api/v1/tracks/hover?x=
func (h *TrackHandler) Hover(c *gin.Context) {
	x, err := strconv.ParseFloat(c.Query("x"), 64)
	if err != nil {
		response.BadRequest(c, "Invalid x")
		return
	}

	result, err := h.service.Hover(x)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, result)
}

// Click handles POST /api/v1/tracks/click
func (h *TrackHandler) Click(c *gin.Context) {
	var req ClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.service.Click(*req.Row)
	writeClick(c, result, err)
}

// Locate handles POST /api/v1/tracks/locate
func (h *TrackHandler) Locate(c *gin.Context) {
	var req LocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.service.Locate(models.Location{Lat: *req.Lat, Lon: *req.Lon})
	writeClick(c, result, err)
}

// A degenerate second click still moved the marker and reset the selection,
// so the client gets the new state along with the error.
func writeClick(c *gin.Context, result service.ClickResult, err error) {
	if err == nil {
		response.Success(c, result)
		return
	}
	var degenerate *models.DegenerateSegmentError
	if errors.As(err, &degenerate) {
		response.ErrorWithData(c, response.StatusOf(err), err.Error(), result)
		return
	}
	response.FromError(c, err)
}

func (h *TrackHandler) renderer(c *gin.Context) (Renderer, string) {
	if c.Query("format") == "png" {
		return h.png, "image/png"
	}
	return h.html, "text/html; charset=utf-8"
}

func (h *TrackHandler) renderFailed(c *gin.Context, err error) {
	if errors.Is(err, render.ErrNoPoints) {
		response.Error(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	response.InternalError(c, "Failed to render: "+err.Error())
}

func zoomQuery(c *gin.Context) (int, bool) {
	raw := c.Query("zoom")
	if raw == "" {
		return 0, true
	}
	zoom, err := strconv.Atoi(raw)
	if err != nil {
		response.BadRequest(c, "Invalid zoom")
		return 0, false
	}
	return zoom, true
}

func floats(xs []float64) []models.Float {
	out := make([]models.Float, len(xs))
	for i, x := range xs {
		out[i] = models.Float(x)
	}
	return out
}

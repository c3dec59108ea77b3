package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noznum/tracklab/internal/config"
	"github.com/noznum/tracklab/internal/handler"
	"github.com/noznum/tracklab/internal/middleware"
	"github.com/noznum/tracklab/internal/render"
	"github.com/noznum/tracklab/internal/service"
	"github.com/noznum/tracklab/pkg/response"
)

// SetupRouter wires the track service into a gin engine
func SetupRouter(cfg *config.Config, svc *service.TrackService) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(), gin.Recovery())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Track segmenter API is running",
		})
	})

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})

	tracks := handler.NewTrackHandler(svc, render.NewECharts(cfg.EChartsAssetsHost), render.NewPNG())
	selections := handler.NewSelectionHandler(svc)
	segments := handler.NewSegmentHandler(svc)

	api := r.Group("/api/v1")
	{
		t := api.Group("/tracks")
		{
			t.POST("/load", tracks.Load)
			t.GET("/current", tracks.GetCurrent)
			t.GET("/route", tracks.GetRoute)
			t.GET("/map", tracks.GetMap)
			t.GET("/series/:name", tracks.GetSeries)
			t.GET("/chart/:name", tracks.GetChart)
			t.GET("/hover", tracks.Hover)
			t.POST("/click", tracks.Click)
			t.POST("/locate", tracks.Locate)
		}

		s := api.Group("/selection")
		{
			s.GET("", selections.GetSelection)
			s.POST("/begin", selections.Begin)
			s.POST("/label", selections.ConfirmLabel)
			s.POST("/save", selections.Save)
			s.POST("/cancel", selections.Cancel)
		}

		api.GET("/segments", segments.GetSegments)
		api.GET("/segments/:uuid", segments.GetSegment)
	}

	return r
}

package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/mandi/internal/catalog"
	"github.com/zulandar/mandi/internal/negotiation"
	"github.com/zulandar/mandi/internal/prefs"
	"github.com/zulandar/mandi/internal/voice"
)

func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/languages", s.handleLanguages)
	api.GET("/preferences", s.handleGetPreferences)
	api.PUT("/preferences", s.handlePutPreferences)

	api.GET("/commodities", s.handleListCommodities)
	api.POST("/commodities", s.handleAddCommodity)
	api.DELETE("/commodities/:id", s.handleRemoveCommodity)

	api.GET("/prices/quote", s.handleQuote)
	api.GET("/prices/history", s.handleHistory)
	api.GET("/prices/compare", s.handleCompare)

	neg := api.Group("/negotiations")
	neg.POST("", s.handleOpen)
	neg.GET("/:id", s.handleSnapshot)
	neg.DELETE("/:id", s.handleClose)
	neg.GET("/:id/history", s.handleNegotiationHistory)
	neg.POST("/:id/messages", s.handleSend)
	neg.POST("/:id/counter", s.handleCounter)
	neg.POST("/:id/accept", s.handleAccept)
	neg.GET("/:id/suggestions", s.handleSuggestions)
	neg.GET("/:id/analysis", s.handleAnalysis)
	neg.GET("/:id/events", s.handleEvents)

	api.POST("/voice/transcribe", s.handleTranscribe)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, negotiation.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, negotiation.ErrInvalidState), errors.Is(err, voice.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, negotiation.ErrInvalidOffer), errors.Is(err, prefs.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, voice.ErrNoSpeech):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

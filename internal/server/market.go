package server

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/mandi/internal/catalog"
	"github.com/zulandar/mandi/internal/i18n"
	"github.com/zulandar/mandi/internal/pricing"
)

// maxHistoryDays caps /api/prices/history.
const maxHistoryDays = 365

func (s *Server) handleLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default":   i18n.Default,
		"selected":  s.prefs.Language(),
		"languages": i18n.Languages(),
	})
}

func (s *Server) handleGetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, s.prefs.Get())
}

type preferencesRequest struct {
	Language string `json:"language"`
	Role     string `json:"role"`
}

func (s *Server) handlePutPreferences(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	if req.Language != "" {
		if err := s.prefs.SetLanguage(ctx, req.Language); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Role != "" {
		if err := s.prefs.SetRole(ctx, req.Role); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, s.prefs.Get())
}

func (s *Server) handleListCommodities(c *gin.Context) {
	list, err := s.catalog.List(c.Request.Context(), c.Query("q"), catalog.ParseFilter(c.Query("filter")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commodities": list, "count": len(list)})
}

func (s *Server) handleAddCommodity(c *gin.Context) {
	var form catalog.ListingForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(form.Name) == "" {
		badRequest(c, "name is required")
		return
	}
	if form.Price < 0 {
		badRequest(c, "price must not be negative")
		return
	}
	ctx := c.Request.Context()
	commodity, quote := form.Build(s.prices)
	if err := s.catalog.Add(ctx, &commodity); err != nil {
		respondError(c, err)
		return
	}
	if err := s.prefs.SaveListing(ctx, commodity.ID); err != nil {
		log.Printf("server: save listing %s: %v", commodity.ID, err)
	}
	c.JSON(http.StatusCreated, gin.H{"commodity": commodity, "quote": quote})
}

func (s *Server) handleRemoveCommodity(c *gin.Context) {
	if err := s.catalog.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleQuote(c *gin.Context) {
	commodity := strings.TrimSpace(c.Query("commodity"))
	if commodity == "" {
		badRequest(c, "commodity is required")
		return
	}
	location := strings.TrimSpace(c.Query("location"))
	lang := c.DefaultQuery("lang", s.prefs.Language())

	quote := s.prices.Quote(commodity, location)
	c.JSON(http.StatusOK, gin.H{
		"commodity":   commodity,
		"location":    location,
		"quote":       quote,
		"explanation": pricing.Explain(quote, commodity, location, lang),
	})
}

func (s *Server) handleHistory(c *gin.Context) {
	commodity := strings.TrimSpace(c.Query("commodity"))
	if commodity == "" {
		badRequest(c, "commodity is required")
		return
	}
	days := pricing.DefaultHistoryDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistoryDays {
			badRequest(c, "days must be between 1 and 365")
			return
		}
		days = n
	}
	c.JSON(http.StatusOK, gin.H{
		"commodity": commodity,
		"history":   s.prices.History(commodity, days),
	})
}

func (s *Server) handleCompare(c *gin.Context) {
	commodity := strings.TrimSpace(c.Query("commodity"))
	if commodity == "" {
		badRequest(c, "commodity is required")
		return
	}
	var locations []string
	for _, l := range strings.Split(c.Query("locations"), ",") {
		if l = strings.TrimSpace(l); l != "" {
			locations = append(locations, l)
		}
	}
	if len(locations) == 0 {
		locations = pricing.Locations()
	}
	c.JSON(http.StatusOK, gin.H{
		"commodity": commodity,
		"prices":    s.prices.Compare(commodity, locations),
	})
}

package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/mandi/internal/advisor"
)

// defaultTargetDiscount is how far below the current price the suggestion
// target sits when the buyer gives none.
const defaultTargetDiscount = 5

type openRequest struct {
	CommodityID string `json:"commodity_id" binding:"required"`
	Lang        string `json:"lang"`
}

func (s *Server) handleOpen(c *gin.Context) {
	var req openRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	lang := req.Lang
	if lang == "" {
		lang = s.prefs.Language()
	}
	sess, err := s.manager.Open(c.Request.Context(), req.CommodityID, lang)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleSnapshot(c *gin.Context) {
	sess, err := s.manager.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) handleClose(c *gin.Context) {
	if err := s.manager.Close(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleNegotiationHistory(c *gin.Context) {
	n, err := s.manager.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

type sendRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSend(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	msg, err := s.manager.Send(c.Param("id"), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	if msg == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

type counterRequest struct {
	Price int `json:"price"`
}

func (s *Server) handleCounter(c *gin.Context) {
	var req counterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	msg, err := s.manager.CounterOffer(c.Param("id"), req.Price)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (s *Server) handleAccept(c *gin.Context) {
	msg, err := s.manager.Accept(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, msg)
}

func (s *Server) handleSuggestions(c *gin.Context) {
	sess, err := s.manager.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	current := sess.CurrentPrice()
	target := max(current-defaultTargetDiscount, 0)
	if raw := c.Query("target"); raw != "" {
		target, err = strconv.Atoi(raw)
		if err != nil || target < 0 {
			badRequest(c, "target must be a non-negative integer")
			return
		}
	}
	lang := c.DefaultQuery("lang", s.prefs.Language())
	c.JSON(http.StatusOK, gin.H{
		"current_price": current,
		"target_price":  target,
		"suggestions":   advisor.SuggestCounterOffers(current, target, lang),
	})
}

func (s *Server) handleAnalysis(c *gin.Context) {
	sess, err := s.manager.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	role := s.prefs.Get().Role
	if raw := c.Query("role"); raw != "" {
		role = advisor.ParseRole(raw)
	} else if role == "" {
		role = advisor.RoleBuyer
	}
	current := sess.CurrentPrice()
	gap := 0
	if raw := c.Query("buyer_price"); raw != "" {
		buyer, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "buyer_price must be an integer")
			return
		}
		gap = current - buyer
	}
	lang := c.DefaultQuery("lang", s.prefs.Language())

	msgs := sess.Messages()
	texts := make([]string, len(msgs))
	for i, m := range msgs {
		texts[i] = m.Text
	}
	c.JSON(http.StatusOK, gin.H{
		"current_price": current,
		"price_gap":     gap,
		"role":          role,
		"analysis":      advisor.ClassifySentiment(texts),
		"strategy":      advisor.SuggestStrategy(gap, role, lang),
	})
}

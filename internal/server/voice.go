package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/mandi/internal/i18n"
)

// maxAudioBytes bounds an uploaded recording.
const maxAudioBytes = 10 << 20

func (s *Server) handleTranscribe(c *gin.Context) {
	audio, err := io.ReadAll(io.LimitReader(c.Request.Body, maxAudioBytes))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if len(audio) == 0 {
		badRequest(c, "audio body is required")
		return
	}
	lang := c.DefaultQuery("lang", s.prefs.Language())
	in := s.input(lang)
	text, err := in.Transcribe(c.Request.Context(), audio)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transcript": text,
		"locale":     in.Locale(),
		"detected":   i18n.DetectLanguage(text),
	})
}

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hammamikhairi/focustrack/internal/domain"
)

const maxSessionsLimit = 500

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, s.timer.Snapshot())
}

// handleCommand adapts an argument-less engine command and replies with
// the snapshot that follows it.
func (s *Server) handleCommand(cmd func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := cmd(); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, s.timer.Snapshot())
	}
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

func (s *Server) handleMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.timer.SelectMode(mode); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.timer.Snapshot())
}

// contextRequest fields are optional; an absent field is left alone and an
// empty string clears it.
type contextRequest struct {
	Tag    *string `json:"tag"`
	TaskID *string `json:"taskId"`
	Mood   *string `json:"mood"`
}

func (s *Server) handleContext(c *gin.Context) {
	var req contextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	apply := []struct {
		v  *string
		fn func(string) error
	}{
		{req.Tag, s.timer.SelectTag},
		{req.TaskID, s.timer.SelectTask},
		{req.Mood, s.timer.SelectMood},
	}
	for _, a := range apply {
		if a.v == nil {
			continue
		}
		if err := a.fn(*a.v); err != nil {
			s.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, s.timer.Snapshot())
}

func (s *Server) handleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.settings.Get())
}

// settingsPatch is a partial update; nil fields are unchanged.
type settingsPatch struct {
	FocusMinutes      *int  `json:"focusDuration"`
	ShortBreakMinutes *int  `json:"shortBreakDuration"`
	LongBreakMinutes  *int  `json:"longBreakDuration"`
	AutoStartBreak    *bool `json:"autoStartBreak"`
	AutoStartFocus    *bool `json:"autoStartFocus"`
	SoundEnabled      *bool `json:"soundEnabled"`
	LongBreakInterval *int  `json:"longBreakInterval"`
}

func (p settingsPatch) apply(s *domain.Settings) {
	setInt(&s.FocusMinutes, p.FocusMinutes)
	setInt(&s.ShortBreakMinutes, p.ShortBreakMinutes)
	setInt(&s.LongBreakMinutes, p.LongBreakMinutes)
	setInt(&s.LongBreakInterval, p.LongBreakInterval)
	setBool(&s.AutoStartBreak, p.AutoStartBreak)
	setBool(&s.AutoStartFocus, p.AutoStartFocus)
	setBool(&s.SoundEnabled, p.SoundEnabled)
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func (s *Server) handleUpdateSettings(c *gin.Context) {
	var patch settingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := s.settings.Update(patch.apply)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleSessions(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session history is only kept in guest mode"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	limit = min(limit, maxSessionsLimit)

	ctx := c.Request.Context()
	sessions, err := s.history.List(ctx, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	totals, err := s.history.Totals(ctx, today)
	if err != nil {
		s.fail(c, err)
		return
	}

	if sessions == nil {
		sessions = []domain.CompletedSession{}
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
		"today":    totals,
	})
}

// fail maps domain errors to status codes.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidMode), errors.Is(err, domain.ErrInvalidDuration):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrEngineStopped):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.log.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuluo11/CET-Smart-Learn/internal/database/stats"
	"github.com/yuluo11/CET-Smart-Learn/internal/learning"
)

// StatsController serves the study counters from the learning store.
type StatsController struct {
	store *learning.Store
}

func NewStatsController(store *learning.Store) *StatsController {
	return &StatsController{store: store}
}

// Get returns the cached stats view.
func (sc *StatsController) Get(c *gin.Context) {
	c.JSON(http.StatusOK, sc.store.Stats())
}

// CheckIn performs the daily check-in and returns the updated stats.
func (sc *StatsController) CheckIn(c *gin.Context) {
	updated, err := sc.store.CheckIn()
	if err != nil {
		switch {
		case errors.Is(err, learning.ErrNotAuthenticated):
			respondUnauthorized(c, err.Error())
		case errors.Is(err, stats.ErrNoStatsRecord):
			respondError(c, http.StatusNotFound, err.Error())
		default:
			respondInternalError(c, err, "check in")
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

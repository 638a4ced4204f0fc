package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuluo11/CET-Smart-Learn/internal/learning"
)

// WordsController serves the vocabulary list and its per-identity overlay
// mutations from the learning store.
type WordsController struct {
	store *learning.Store
}

func NewWordsController(store *learning.Store) *WordsController {
	return &WordsController{store: store}
}

// List returns the cached word list with the overlay applied.
func (wc *WordsController) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"words":   wc.store.Words(),
		"loading": wc.store.Loading(),
	})
}

// ListCollected returns the cached collected-word list.
func (wc *WordsController) ListCollected(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"words": wc.store.CollectedWords(),
	})
}

type masteredRequest struct {
	Mastered *bool `json:"mastered" binding:"required"`
}

// SetMastered updates the mastered flag for one word.
func (wc *WordsController) SetMastered(c *gin.Context) {
	id, ok := requireIDParam(c, "id")
	if !ok {
		return
	}

	var req masteredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "mastered is required")
		return
	}

	if err := wc.store.UpdateWordMastered(id, *req.Mastered); err != nil {
		if errors.Is(err, learning.ErrNotAuthenticated) {
			respondUnauthorized(c, err.Error())
			return
		}
		respondInternalError(c, err, "update word mastered")
		return
	}

	respondSuccess(c, "已更新")
}

type collectRequest struct {
	Collected *bool `json:"collected" binding:"required"`
}

// SetCollected toggles a word in the collected list.
func (wc *WordsController) SetCollected(c *gin.Context) {
	id, ok := requireIDParam(c, "id")
	if !ok {
		return
	}

	var req collectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "collected is required")
		return
	}

	if err := wc.store.ToggleCollect(id, *req.Collected); err != nil {
		if errors.Is(err, learning.ErrNotAuthenticated) {
			respondUnauthorized(c, err.Error())
			return
		}
		respondInternalError(c, err, "toggle collect")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"words": wc.store.CollectedWords(),
	})
}

package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
	"github.com/yuluo11/CET-Smart-Learn/internal/learning"
)

// MistakesController serves the mistake notebook from the learning store.
type MistakesController struct {
	store *learning.Store
}

func NewMistakesController(store *learning.Store) *MistakesController {
	return &MistakesController{store: store}
}

// List returns the cached mistakes together with their derived counts.
func (mc *MistakesController) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"mistakes": mc.store.Mistakes(),
		"counts":   mc.store.MistakeCounts(),
	})
}

type addMistakeRequest struct {
	Title       string `json:"title" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Add records a new mistake.
func (mc *MistakesController) Add(c *gin.Context) {
	var req addMistakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and type are required")
		return
	}

	err := mc.store.AddMistake(req.Title, entities.MistakeType(req.Type), req.Description, req.Category)
	if err != nil {
		if errors.Is(err, learning.ErrNotAuthenticated) {
			respondUnauthorized(c, err.Error())
			return
		}
		respondInternalError(c, err, "add mistake")
		return
	}

	respondCreated(c, gin.H{
		"mistakes": mc.store.Mistakes(),
		"counts":   mc.store.MistakeCounts(),
	})
}

// MarkPracticed flags a mistake as practiced.
func (mc *MistakesController) MarkPracticed(c *gin.Context) {
	id, ok := requireIDParam(c, "id")
	if !ok {
		return
	}

	if err := mc.store.MarkMistakePracticed(id); err != nil {
		if errors.Is(err, learning.ErrNotAuthenticated) {
			respondUnauthorized(c, err.Error())
			return
		}
		respondInternalError(c, err, "mark mistake practiced")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mistakes": mc.store.Mistakes(),
		"counts":   mc.store.MistakeCounts(),
	})
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuluo11/CET-Smart-Learn/internal/database/essays"
	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
)

// EssaysController persists generated writing exercises per identity.
type EssaysController struct {
	repo *essays.Repository
}

func NewEssaysController(repo *essays.Repository) *EssaysController {
	return &EssaysController{repo: repo}
}

type saveEssayRequest struct {
	Level             string   `json:"level" binding:"required"`
	Topic             string   `json:"topic" binding:"required"`
	GeneratedTitle    string   `json:"generatedTitle"`
	GeneratedContent  string   `json:"generatedContent" binding:"required"`
	StructureAnalysis string   `json:"structureAnalysis"`
	KeyPhrases        []string `json:"keyPhrases"`
}

// Save stores a generated essay for the authenticated identity.
func (ec *EssaysController) Save(c *gin.Context) {
	userID := GetUserID(c)
	if userID == "" {
		respondUnauthorized(c, "请先登录")
		return
	}

	var req saveEssayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "level, topic and generatedContent are required")
		return
	}

	essay := &entities.WritingEssay{
		UserID:            userID,
		Level:             entities.Level(req.Level),
		Topic:             req.Topic,
		GeneratedTitle:    req.GeneratedTitle,
		GeneratedContent:  req.GeneratedContent,
		StructureAnalysis: req.StructureAnalysis,
		KeyPhrases:        req.KeyPhrases,
	}
	if err := ec.repo.Save(essay); err != nil {
		respondInternalError(c, err, "save essay")
		return
	}

	respondCreated(c, essay)
}

// List returns the identity's saved essays, newest first.
func (ec *EssaysController) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == "" {
		respondUnauthorized(c, "请先登录")
		return
	}

	rows, err := ec.repo.ListByUser(userID)
	if err != nil {
		respondInternalError(c, err, "list essays")
		return
	}

	c.JSON(http.StatusOK, gin.H{"essays": rows})
}

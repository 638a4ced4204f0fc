package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
	"github.com/yuluo11/CET-Smart-Learn/internal/genai"
	"github.com/yuluo11/CET-Smart-Learn/internal/tasks"
)

// GenerateController exposes the generative-content operations. Generation
// failures return the product's fixed localized messages with status 502.
type GenerateController struct {
	client     *genai.Client
	taskClient *tasks.Client
}

func NewGenerateController(client *genai.Client, taskClient *tasks.Client) *GenerateController {
	return &GenerateController{
		client:     client,
		taskClient: taskClient,
	}
}

func respondGenerateError(c *gin.Context, err error) {
	if errors.Is(err, genai.ErrGenerateFailed) ||
		errors.Is(err, genai.ErrArticleFailed) ||
		errors.Is(err, genai.ErrStoryFailed) {
		respondError(c, http.StatusBadGateway, err.Error())
		return
	}
	respondInternalError(c, err, "generate")
}

type chatRequest struct {
	Prompt            string `json:"prompt" binding:"required"`
	SystemInstruction string `json:"systemInstruction"`
}

// Chat runs a free-form completion.
func (gc *GenerateController) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "prompt is required")
		return
	}

	text, err := gc.client.GenerateContent(c.Request.Context(), req.Prompt, req.SystemInstruction)
	if err != nil {
		respondGenerateError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

type articleRequest struct {
	Level string `json:"level" binding:"required"`
	Topic string `json:"topic" binding:"required"`
}

// Article generates an exam reading passage and returns it without
// persisting; the scheduled queue handles persisted generation.
func (gc *GenerateController) Article(c *gin.Context) {
	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "level and topic are required")
		return
	}

	article, err := gc.client.GenerateArticle(c.Request.Context(), entities.Level(req.Level), req.Topic)
	if err != nil {
		respondGenerateError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

type storyRequest struct {
	Level    string `json:"level" binding:"required"`
	Genre    string `json:"genre" binding:"required"`
	Keywords string `json:"keywords"`
}

// Story generates an interest-reading story with glossed target words.
func (gc *GenerateController) Story(c *gin.Context) {
	var req storyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "level and genre are required")
		return
	}

	story, err := gc.client.GenerateStory(c.Request.Context(), entities.Level(req.Level), req.Genre, req.Keywords)
	if err != nil {
		respondGenerateError(c, err)
		return
	}

	c.JSON(http.StatusOK, story)
}

// EnqueueArticle queues a persisted article generation on the task queue.
func (gc *GenerateController) EnqueueArticle(c *gin.Context) {
	if gc.taskClient == nil {
		respondError(c, http.StatusServiceUnavailable, "task queue is disabled")
		return
	}

	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "level and topic are required")
		return
	}

	task := tasks.GenerateArticleTask{Level: entities.Level(req.Level), Topic: req.Topic}
	ids, err := gc.taskClient.Add(task).Save()
	if err != nil {
		respondInternalError(c, err, "enqueue article generation")
		return
	}

	respondAccepted(c, "文章生成任务已创建", gin.H{"taskIds": ids})
}

// EnqueueWordEnrichment queues a bulk dictionary lookup for words missing
// phonetics or definitions.
func (gc *GenerateController) EnqueueWordEnrichment(c *gin.Context) {
	if gc.taskClient == nil {
		respondError(c, http.StatusServiceUnavailable, "task queue is disabled")
		return
	}

	ids, err := gc.taskClient.Add(tasks.EnrichAllWordsTask{}).Save()
	if err != nil {
		respondInternalError(c, err, "enqueue word enrichment")
		return
	}

	respondAccepted(c, "词汇补全任务已创建", gin.H{"taskIds": ids})
}

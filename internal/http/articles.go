package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuluo11/CET-Smart-Learn/internal/learning"
)

// ArticlesController serves reading passages from the learning store.
type ArticlesController struct {
	store *learning.Store
}

func NewArticlesController(store *learning.Store) *ArticlesController {
	return &ArticlesController{store: store}
}

// List returns the cached article list, newest first.
func (ac *ArticlesController) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"articles": ac.store.Articles(),
	})
}

// Current returns the newest article, or the built-in passage when the
// collection is empty.
func (ac *ArticlesController) Current(c *gin.Context) {
	c.JSON(http.StatusOK, ac.store.CurrentArticle())
}

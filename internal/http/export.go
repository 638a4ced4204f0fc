package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yuluo11/CET-Smart-Learn/internal/exporters"
	"github.com/yuluo11/CET-Smart-Learn/internal/learning"
	"github.com/yuluo11/CET-Smart-Learn/internal/utils"
)

// ExportController renders the caller's study data as a downloadable
// markdown notebook.
type ExportController struct {
	store *learning.Store
}

func NewExportController(store *learning.Store) *ExportController {
	return &ExportController{store: store}
}

// Notebook returns the collected words and mistake log as one markdown file.
func (ec *ExportController) Notebook(c *gin.Context) {
	if GetUserID(c) == "" {
		respondUnauthorized(c, learning.ErrNotAuthenticated.Error())
		return
	}

	exporter := exporters.NewNotebookExporter()
	content := exporter.Export(ec.store.CollectedWords(), ec.store.Mistakes(), ec.store.Stats())

	filename := utils.SanitizeFilename("学习笔记 " + time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.md"`, filename))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(content))
}

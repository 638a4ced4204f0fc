// Package exporters renders study data into portable documents.
package exporters

import (
	"fmt"
	"strings"
	"time"

	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
	"github.com/yuluo11/CET-Smart-Learn/internal/view"
)

// ExportResult summarizes what a notebook export produced.
type ExportResult struct {
	WordsExported    int
	MistakesExported int
}

// NotebookExporter renders the caller's collected words and mistake log as a
// single markdown study sheet.
type NotebookExporter struct {
	Result ExportResult
}

func NewNotebookExporter() *NotebookExporter {
	return &NotebookExporter{}
}

// Export renders the notebook. The frontmatter mirrors the export date and
// counter summary so the sheet can be filed into a notes vault.
func (e *NotebookExporter) Export(words []view.Word, mistakes []view.Mistake, stats view.Stats) string {
	e.Result = ExportResult{}

	var builder strings.Builder

	currentDate := time.Now().Format("2006-01-02")
	fmt.Fprintf(&builder, "---\n")
	fmt.Fprintf(&builder, "content_type: study_notebook\n")
	fmt.Fprintf(&builder, "created_at: %s\n", currentDate)
	fmt.Fprintf(&builder, "streak_days: %d\n", stats.StreakDays)
	fmt.Fprintf(&builder, "total_words: %d\n", stats.TotalWords)
	fmt.Fprintf(&builder, "tags: vocabulary, cet\n")
	fmt.Fprintf(&builder, "---\n\n")

	fmt.Fprintf(&builder, "# 学习笔记 %s\n\n", currentDate)

	fmt.Fprintf(&builder, "## 收藏单词\n\n")
	if len(words) == 0 {
		fmt.Fprintf(&builder, "_暂无收藏单词_\n\n")
	}
	for _, w := range words {
		fmt.Fprintf(&builder, "### %s %s\n\n", w.Word, w.Phonetic)
		if w.DefinitionCn != "" {
			fmt.Fprintf(&builder, "%s\n\n", w.DefinitionCn)
		}
		if w.ExampleEn != "" {
			fmt.Fprintf(&builder, "> %s\n", w.ExampleEn)
			if w.ExampleCn != "" {
				fmt.Fprintf(&builder, "> %s\n", w.ExampleCn)
			}
			fmt.Fprintf(&builder, "\n")
		}
		if w.Mastered {
			fmt.Fprintf(&builder, "已掌握")
			if w.LastReviewed != "" {
				fmt.Fprintf(&builder, "（%s复习）", w.LastReviewed)
			}
			fmt.Fprintf(&builder, "\n\n")
		}
		e.Result.WordsExported++
	}

	fmt.Fprintf(&builder, "## 错题本\n\n")
	if len(mistakes) == 0 {
		fmt.Fprintf(&builder, "_暂无错题记录_\n")
	}
	for _, m := range mistakes {
		fmt.Fprintf(&builder, "### %s（%s）\n\n", m.Title, mistakeTypeLabel(m.Type))
		if m.Description != "" {
			fmt.Fprintf(&builder, "%s\n\n", m.Description)
		}
		fmt.Fprintf(&builder, "分类：%s · %s\n\n", m.Category, m.Time)
		e.Result.MistakesExported++
	}

	return builder.String()
}

func mistakeTypeLabel(t entities.MistakeType) string {
	switch t {
	case entities.MistakeTypeSpelling:
		return "拼写"
	case entities.MistakeTypeGrammar:
		return "语法"
	case entities.MistakeTypeMeaning:
		return "词义"
	}
	return string(t)
}

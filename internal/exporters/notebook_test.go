package exporters

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
	"github.com/yuluo11/CET-Smart-Learn/internal/view"
)

func TestNotebookExporter_Export(t *testing.T) {
	exporter := NewNotebookExporter()

	words := []view.Word{
		{
			Word:         "Resilient",
			Phonetic:     "/rɪˈzɪliənt/",
			DefinitionCn: "有弹性的",
			ExampleEn:    "The market is resilient.",
			ExampleCn:    "市场是有韧性的。",
			Mastered:     true,
			LastReviewed: "2小时前",
		},
		{
			Word:         "Acknowledge",
			Phonetic:     "/əkˈnɒl.ɪdʒ/",
			DefinitionCn: "v. 承认",
		},
	}
	mistakes := []view.Mistake{
		{
			Title:       "Accommodate",
			Type:        entities.MistakeTypeSpelling,
			Description: "Needs double 'c' and 'm'.",
			Category:    "CET-4 词汇",
			Time:        "刚刚",
		},
	}
	stats := view.Stats{StreakDays: 3, TotalWords: 210}

	out := exporter.Export(words, mistakes, stats)

	assert.Contains(t, out, "content_type: study_notebook")
	assert.Contains(t, out, "streak_days: 3")
	assert.Contains(t, out, "## 收藏单词")
	assert.Contains(t, out, "### Resilient /rɪˈzɪliənt/")
	assert.Contains(t, out, "> The market is resilient.")
	assert.Contains(t, out, "已掌握（2小时前复习）")
	assert.Contains(t, out, "## 错题本")
	assert.Contains(t, out, "### Accommodate（拼写）")
	assert.Contains(t, out, "分类：CET-4 词汇 · 刚刚")

	assert.Equal(t, 2, exporter.Result.WordsExported)
	assert.Equal(t, 1, exporter.Result.MistakesExported)
}

func TestNotebookExporter_ExportEmpty(t *testing.T) {
	exporter := NewNotebookExporter()

	out := exporter.Export(nil, nil, view.Stats{})

	assert.Contains(t, out, "_暂无收藏单词_")
	assert.Contains(t, out, "_暂无错题记录_")
	assert.Equal(t, ExportResult{}, exporter.Result)
}

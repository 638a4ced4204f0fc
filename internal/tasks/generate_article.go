package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/yuluo11/CET-Smart-Learn/internal/database/articles"
	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
	"github.com/yuluo11/CET-Smart-Learn/internal/genai"
)

// GenerateArticleTask produces one reading passage for a level and topic and
// stores it in the shared article collection.
type GenerateArticleTask struct {
	Level entities.Level `json:"level"`
	Topic string         `json:"topic"`
}

// Config returns the queue configuration for article generation tasks.
func (t GenerateArticleTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "generate_article",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// GenerateArticleProcessor creates a processor function for
// GenerateArticleTask.
func GenerateArticleProcessor(client *genai.Client, repo *articles.Repository) backlite.QueueProcessor[GenerateArticleTask] {
	return func(ctx context.Context, task GenerateArticleTask) error {
		if client == nil {
			return fmt.Errorf("genai client not configured")
		}

		generated, err := client.GenerateArticle(ctx, task.Level, task.Topic)
		if err != nil {
			return fmt.Errorf("generate article (%s, %q): %w", task.Level, task.Topic, err)
		}

		article := &entities.Article{
			Title:      generated.Title,
			Level:      task.Level,
			ReadTime:   generated.ReadTime,
			Difficulty: entities.Difficulty(generated.Difficulty),
			Content:    generated.Content,
			Keywords:   generated.Keywords,
		}
		if err := repo.Add(article); err != nil {
			return fmt.Errorf("store generated article: %w", err)
		}

		log.Printf("[TASK] Generated article %q (%s, %d keywords)",
			article.Title, article.Level, len(article.Keywords))
		return nil
	}
}

// NewGenerateArticleQueue creates a backlite queue for article generation.
func NewGenerateArticleQueue(client *genai.Client, repo *articles.Repository) backlite.Queue {
	return backlite.NewQueue(GenerateArticleProcessor(client, repo))
}

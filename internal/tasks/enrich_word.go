package tasks

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/yuluo11/CET-Smart-Learn/internal/database/words"
	"github.com/yuluo11/CET-Smart-Learn/internal/dictionary"
	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
)

// EnrichWordTask fills missing phonetics and English definitions for one
// vocabulary entry from a dictionary API. Chinese translations are authored
// by hand or generated elsewhere; only the English fields are touched.
type EnrichWordTask struct {
	WordID string `json:"word_id"`
}

func (t EnrichWordTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_word",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     1 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichWordProcessor creates a processor for word enrichment.
func EnrichWordProcessor(repo *words.Repository, dictClient dictionary.Client) backlite.QueueProcessor[EnrichWordTask] {
	return func(ctx context.Context, task EnrichWordTask) error {
		word, err := repo.GetByID(task.WordID)
		if err != nil {
			return fmt.Errorf("get word %s: %w", task.WordID, err)
		}

		if word.Phonetic != "" && word.DefinitionEn != "" {
			return nil
		}

		result, err := dictClient.Lookup(ctx, word.Word)
		if err != nil {
			return fmt.Errorf("lookup word %q: %w", word.Word, err)
		}

		if err := fillFromLookup(repo, word, result); err != nil {
			return fmt.Errorf("fill definitions for word %s: %w", task.WordID, err)
		}

		log.Printf("[TASK] Enriched word %q via %s", word.Word, dictClient.Name())
		return nil
	}
}

// fillFromLookup writes lookup data into the word's empty fields only.
func fillFromLookup(repo *words.Repository, word *entities.Word, result *dictionary.LookupResult) error {
	phonetic, definitionEn, exampleEn := "", "", ""
	if word.Phonetic == "" {
		phonetic = result.Phonetic
	}
	if word.DefinitionEn == "" {
		definitionEn = joinDefinitions(result.Definitions)
	}
	if word.ExampleEn == "" {
		for _, def := range result.Definitions {
			if def.Example != "" {
				exampleEn = def.Example
				break
			}
		}
	}
	return repo.FillDefinitions(word.ID, phonetic, definitionEn, exampleEn)
}

// joinDefinitions formats the first few senses as one definition string.
func joinDefinitions(defs []dictionary.Definition) string {
	var parts []string
	for _, def := range defs {
		text := def.Definition
		if def.PartOfSpeech != "" {
			text = def.PartOfSpeech + ". " + text
		}
		parts = append(parts, text)
		if len(parts) == 3 {
			break
		}
	}
	return strings.Join(parts, " ")
}

// NewEnrichWordQueue creates a backlite queue for single-word enrichment.
func NewEnrichWordQueue(repo *words.Repository, dictClient dictionary.Client) backlite.Queue {
	return backlite.NewQueue(EnrichWordProcessor(repo, dictClient))
}

// EnrichAllWordsTask enriches every word missing a phonetic or definition.
type EnrichAllWordsTask struct{}

func (t EnrichAllWordsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_all_words",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func EnrichAllWordsProcessor(repo *words.Repository, dictClient dictionary.Client) backlite.QueueProcessor[EnrichAllWordsTask] {
	return func(ctx context.Context, task EnrichAllWordsTask) error {
		pending, err := repo.ListMissingDefinitions()
		if err != nil {
			return fmt.Errorf("list words missing definitions: %w", err)
		}

		var enriched, failed int
		for i := range pending {
			select {
			case <-ctx.Done():
				log.Printf("[TASK] Context cancelled, enriched %d words, %d failed", enriched, failed)
				return ctx.Err()
			default:
			}

			result, err := dictClient.Lookup(ctx, pending[i].Word)
			if err != nil {
				log.Printf("[TASK] Lookup failed for %q: %v", pending[i].Word, err)
				failed++
				continue
			}
			if err := fillFromLookup(repo, &pending[i], result); err != nil {
				log.Printf("[TASK] Fill failed for %q: %v", pending[i].Word, err)
				failed++
				continue
			}
			enriched++
		}

		log.Printf("[TASK] Enriched %d words, %d failed out of %d total", enriched, failed, len(pending))
		return nil
	}
}

// NewEnrichAllWordsQueue creates a backlite queue for bulk word enrichment.
func NewEnrichAllWordsQueue(repo *words.Repository, dictClient dictionary.Client) backlite.Queue {
	return backlite.NewQueue(EnrichAllWordsProcessor(repo, dictClient))
}

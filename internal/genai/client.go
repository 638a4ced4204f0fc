// Package genai talks to the Gemini generateContent REST API. Every call is
// a single round trip; failures surface as fixed user-facing errors with the
// underlying cause logged.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/yuluo11/CET-Smart-Learn/internal/config"
	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
)

const defaultTimeout = 60 * time.Second

// User-facing failure messages. The cause is logged, not returned.
var (
	ErrGenerateFailed = errors.New("AI 生成失败，请检查网络或 API Key 设置。")
	ErrArticleFailed  = errors.New("未能成功生成文章，请稍后再试。")
	ErrStoryFailed    = errors.New("AI 小说生成失败，可能是网络波动或接口限制，请稍后再试。")
)

// Article is a generated reading passage. Field names follow the model's
// required JSON output schema.
type Article struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	ReadTime   string   `json:"read_time"`
	Difficulty string   `json:"difficulty"`
	Keywords   []string `json:"keywords"`
}

// Story is a generated interest-reading piece with glossed target words.
type Story struct {
	Title            string            `json:"title"`
	Content          string            `json:"content"`
	Genre            string            `json:"genre"`
	TargetWords      []string          `json:"target_words"`
	WordsTranslation map[string]string `json:"words_translation"`
}

// Client interfaces with the Gemini generateContent endpoint.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	chatModel   string
	readerModel string
}

// NewClient creates a Gemini API client from config. A placeholder key is
// accepted; requests made with it fail at call time.
func NewClient(cfg config.GenAI) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		chatModel:   cfg.ChatModel,
		readerModel: cfg.ReaderModel,
	}
}

// Wire types for the generateContent endpoint.

type generateRequest struct {
	SystemInstruction *content          `json:"system_instruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate performs one generateContent round trip and returns the text of
// the first candidate.
func (c *Client) generate(ctx context.Context, model string, req generateRequest) (string, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty response from model")
	}
	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

// GenerateContent runs a free-form chat completion with an optional system
// instruction.
func (c *Client) GenerateContent(ctx context.Context, prompt, systemInstruction string) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	if systemInstruction != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: systemInstruction}}}
	}

	text, err := c.generate(ctx, c.chatModel, req)
	if err != nil {
		log.Printf("genai: generateContent error: %v", err)
		return "", ErrGenerateFailed
	}
	return text, nil
}

// GenerateArticle produces an exam reading passage for the given level and
// topic. The model is constrained to JSON output.
func (c *Client) GenerateArticle(ctx context.Context, level entities.Level, topic string) (*Article, error) {
	req := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: articleSystemInstruction(level)}}},
		Contents:          []content{{Parts: []part{{Text: articlePrompt(level, topic)}}}},
		GenerationConfig:  &generationConfig{ResponseMimeType: "application/json"},
	}

	text, err := c.generate(ctx, c.readerModel, req)
	if err != nil {
		log.Printf("genai: generateArticle error: %v", err)
		return nil, ErrArticleFailed
	}

	var article Article
	if err := json.Unmarshal([]byte(text), &article); err != nil {
		log.Printf("genai: generateArticle parse error: %v", err)
		return nil, ErrArticleFailed
	}
	return &article, nil
}

// GenerateStory produces an interest-reading story dense with syllabus
// vocabulary, with an optional keyword theme.
func (c *Client) GenerateStory(ctx context.Context, level entities.Level, genre, keywords string) (*Story, error) {
	req := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: storySystemInstruction(level)}}},
		Contents:          []content{{Parts: []part{{Text: storyPrompt(level, genre, keywords)}}}},
		GenerationConfig:  &generationConfig{ResponseMimeType: "application/json"},
	}

	text, err := c.generate(ctx, c.readerModel, req)
	if err != nil {
		log.Printf("genai: generateStory error: %v", err)
		return nil, ErrStoryFailed
	}

	var story Story
	if err := json.Unmarshal([]byte(text), &story); err != nil {
		log.Printf("genai: generateStory parse error: %v", err)
		return nil, ErrStoryFailed
	}
	return &story, nil
}

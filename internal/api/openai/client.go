package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/Alias1177/Recommender/internal/guard"
	"github.com/Alias1177/Recommender/models"
)

// ErrEmptyCompletion is returned when the model answers with no choices
var ErrEmptyCompletion = errors.New("openai: empty completion")

const systemPrompt = "You are a cautious equity analyst. Answer with a single JSON object and nothing else."

// Client wraps the OpenAI API client and acts as the narrative advisor
type Client struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

// NewClient creates a new OpenAI client
func NewClient(apiKey, model string) *Client {
	return NewClientWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewClientWithConfig creates a client against a custom endpoint
func NewClientWithConfig(cfg openai.ClientConfig, model string) *Client {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: log.With().Str("component", "openai_client").Logger(),
	}
}

// GenerateCompletion sends a prompt to OpenAI and returns the completion
func (c *Client) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Int("prompt_len", len(prompt)).Msg("Sending prompt to OpenAI")

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       c.model,
			Temperature: 0.2,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		},
	)
	if err != nil {
		c.logger.Error().Err(err).Msg("OpenAI API error")
		return "", err
	}

	if len(resp.Choices) == 0 {
		c.logger.Warn().Msg("OpenAI returned empty choices")
		return "", ErrEmptyCompletion
	}

	return resp.Choices[0].Message.Content, nil
}

// Advise asks the model for a candidate recommendation. The candidate is not
// vetted here; the guard engine does that.
func (c *Client) Advise(ctx context.Context, ticker string, variant string, analysis models.Analysis) (models.Candidate, error) {
	content, err := c.GenerateCompletion(ctx, FormatAnalysisPrompt(ticker, variant, analysis))
	if err != nil {
		return models.Candidate{}, fmt.Errorf("advising %s: %w", ticker, err)
	}

	candidate, err := ParseCandidate(content)
	if err != nil {
		c.logger.Error().Err(err).Str("ticker", ticker).Str("response", content).Msg("Unparseable advisor response")
		return models.Candidate{}, fmt.Errorf("advising %s: %w", ticker, err)
	}
	return candidate, nil
}

// FormatAnalysisPrompt renders the analysis and the allowed answers for a variant
func FormatAnalysisPrompt(ticker, variant string, a models.Analysis) string {
	vocab := guard.OwnedVocabulary
	situation := "The user already holds this stock."
	if variant == guard.VariantWatch {
		vocab = guard.WatchVocabulary
		situation = "The user does not own this stock and is considering it."
	}
	ind := a.Indicators

	var sb strings.Builder
	fmt.Fprintf(&sb, "Technical snapshot for %s. %s\n\n", ticker, situation)
	fmt.Fprintf(&sb, "Close: %.2f\n", ind.Close)
	fmt.Fprintf(&sb, "RSI(14): %s\n", ind.RSI)
	fmt.Fprintf(&sb, "MACD line/signal/histogram: %s / %s / %s\n", ind.MACD.Line, ind.MACD.Signal, ind.MACD.Histogram)
	fmt.Fprintf(&sb, "SMA 5/25/75: %s / %s / %s\n", ind.SMA5, ind.SMA25, ind.SMA75)
	fmt.Fprintf(&sb, "Deviation from SMA25: %s%%\n", ind.Deviation)
	fmt.Fprintf(&sb, "Weekly change: %s%%\n", ind.WeeklyChange)
	fmt.Fprintf(&sb, "Volatility (annualized): %s%%\n", ind.Volatility)
	fmt.Fprintf(&sb, "Trend medium/long: %s / %s\n", ind.MediumTrend, ind.LongTrend)
	if a.Candle.Index >= 0 && a.Candle.Name != "" {
		fmt.Fprintf(&sb, "Last candle: %s (%s, %.0f)\n", a.Candle.Name, a.Candle.Direction, a.Candle.Strength)
	}
	for _, p := range a.Chart {
		fmt.Fprintf(&sb, "Chart pattern: %s (%s, %.0f)\n", p.Name, p.Direction, p.Strength)
	}
	if len(a.Support) > 0 {
		fmt.Fprintf(&sb, "Support: %s\n", joinPrices(a.Support))
	}
	if len(a.Resistance) > 0 {
		fmt.Fprintf(&sb, "Resistance: %s\n", joinPrices(a.Resistance))
	}
	fmt.Fprintf(&sb, "Composite signal: %s %.0f (%s)\n", a.Composite.Direction, a.Composite.Strength, strings.Join(a.Composite.Reasons, "; "))

	fmt.Fprintf(&sb, `
Answer with JSON:
{"direction": "%s|%s|%s", "confidence": 0.0-1.0, "reason": "...", "caution": "...",
 "suggested_price": number or 0, "sell_fraction": 0.0-1.0, "condition": "...", "critical_change": true|false}
Set critical_change only when the company's fundamentals changed materially.
`, vocab.Buy, vocab.Hold, vocab.Sell)

	return sb.String()
}

// ParseCandidate extracts the candidate from a model answer. Markdown code
// fences around the JSON are tolerated.
func ParseCandidate(content string) (models.Candidate, error) {
	content = strings.TrimSpace(content)
	if start, end := strings.Index(content, "{"), strings.LastIndex(content, "}"); start >= 0 && end > start {
		content = content[start : end+1]
	}

	var candidate models.Candidate
	if err := json.Unmarshal([]byte(content), &candidate); err != nil {
		return models.Candidate{}, fmt.Errorf("parsing candidate: %w", err)
	}
	candidate.Direction = strings.TrimSpace(candidate.Direction)
	return candidate, nil
}

func joinPrices(prices []float64) string {
	parts := make([]string, len(prices))
	for i, p := range prices {
		parts[i] = fmt.Sprintf("%.2f", p)
	}
	return strings.Join(parts, ", ")
}

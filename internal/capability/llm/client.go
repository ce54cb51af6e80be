package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/port"
)

const systemPrompt = `You are an assistant that extracts action items from meeting transcripts.
Given a transcript, respond with a JSON array only. Each element has the keys
"task" (what needs doing), "assignee" (who takes it, or "" when unclear) and
"context" (one sentence of surrounding discussion). Respond with [] when the
transcript contains no action items. No prose, no markdown.`

type Client struct {
	apiBase string
	apiKey  string
	model   string
	http    *http.Client
}

var _ port.InsightExtractor = (*Client)(nil)

func NewClient(apiBase, apiKey, modelName string) *Client {
	return &Client{
		apiBase: strings.TrimRight(apiBase, "/"),
		apiKey:  apiKey,
		model:   modelName,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ExtractInsights sends the rendered transcript through an OpenAI-compatible
// chat endpoint and parses the JSON array it answers with.
func (c *Client) ExtractInsights(ctx context.Context, tr *model.TranscriptionResult) ([]model.InsightItem, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: renderTranscript(tr)},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("could not encode chat request: %w", err)
	}

	resp, err := c.post(ctx, c.apiBase+"/chat/completions", body)
	if err != nil {
		return nil, err
	}

	var cr chatResponse
	if err := json.Unmarshal(resp, &cr); err != nil {
		return nil, fmt.Errorf("could not decode chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("chat response contained no choices")
	}

	return parseItems(cr.Choices[0].Message.Content)
}

// renderTranscript flattens the segments into "Name: text" lines, the shape
// chat models handle best. Speakers without a display name keep their label.
func renderTranscript(tr *model.TranscriptionResult) string {
	var b strings.Builder
	b.WriteString("Transcript:\n\n")
	for i := range tr.Segments {
		seg := &tr.Segments[i]
		who := seg.SpeakerName
		if who == "" {
			who = seg.SpeakerLabel
		}
		if who == "" {
			who = "Unknown"
		}
		fmt.Fprintf(&b, "%s: %s\n", who, seg.Text)
	}
	return b.String()
}

// parseItems tolerates the fenced-markdown habit some models keep despite
// instructions, then demands a well-formed JSON array.
func parseItems(content string) ([]model.InsightItem, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}

	var items []model.InsightItem
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, fmt.Errorf("model answered with invalid JSON: %w", err)
	}

	out := items[:0]
	for _, it := range items {
		if strings.TrimSpace(it.Task) != "" {
			out = append(out, it)
		}
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	var payload []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("llm endpoint answered %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("llm endpoint answered %d: %s", resp.StatusCode, truncate(data, 200)))
		}
		payload = data
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return payload, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

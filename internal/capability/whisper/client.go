package whisper

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

// audioURLTTL bounds the presigned read link handed to the inference server.
// Long transcriptions only need the link at fetch time, so an hour is ample.
const audioURLTTL = time.Hour

type Client struct {
	baseURL string
	strg    port.Storage
	// no Timeout on the client: inference runs as long as the audio demands
	http *http.Client
}

var _ port.Transcriber = (*Client)(nil)

func NewClient(baseURL string, strg port.Storage) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		strg:    strg,
		http:    &http.Client{},
	}
}

type transcribeRequest struct {
	AudioURL    string `json:"audio_url"`
	Language    string `json:"language,omitempty"`
	NumSpeakers int    `json:"num_speakers,omitempty"`
}

type transcribeResponse struct {
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
	Diarization *struct {
		Turns []struct {
			Start   float64 `json:"start"`
			End     float64 `json:"end"`
			Speaker string  `json:"speaker"`
		} `json:"turns"`
	} `json:"diarization"`
}

// Transcribe hands the inference server a presigned read link to the audio
// object and maps its response onto the domain types. Diarization stays nil
// when the server answered without one.
func (c *Client) Transcribe(ctx context.Context, audioKey, language string, participantCount int) (*port.TranscribeOutput, error) {
	audioURL, err := c.strg.GeneratePresignedDownloadURL(ctx, audioKey, audioURLTTL)
	if err != nil {
		return nil, fmt.Errorf("could not presign audio object %q: %w", audioKey, err)
	}

	body, err := json.Marshal(transcribeRequest{
		AudioURL:    audioURL,
		Language:    language,
		NumSpeakers: participantCount,
	})
	if err != nil {
		return nil, fmt.Errorf("could not encode transcribe request: %w", err)
	}

	resp, err := c.post(ctx, c.baseURL+"/transcribe", body)
	if err != nil {
		return nil, err
	}

	var tr transcribeResponse
	if err := json.Unmarshal(resp, &tr); err != nil {
		return nil, fmt.Errorf("could not decode transcribe response: %w", err)
	}

	out := &port.TranscribeOutput{
		Language: tr.Language,
		Duration: tr.Duration,
	}
	for _, s := range tr.Segments {
		out.Segments = append(out.Segments, model.TranscriptSegment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}
	if tr.Diarization != nil && len(tr.Diarization.Turns) > 0 {
		d := &model.Diarization{}
		for _, t := range tr.Diarization.Turns {
			d.Turns = append(d.Turns, model.DiarizationTurn{
				Start:        t.Start,
				End:          t.End,
				SpeakerLabel: t.Speaker,
			})
		}
		out.Diarization = d
	}
	return out, nil
}

// post retries connection failures and 5xx answers with exponential backoff.
// 4xx answers are permanent; the server will not change its mind.
func (c *Client) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	var payload []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("inference server answered %d: %s", resp.StatusCode, truncate(data, 200))
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("inference server answered %d: %s", resp.StatusCode, truncate(data, 200)))
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

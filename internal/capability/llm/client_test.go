package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/whispernotes/insights-ms-go/internal/model"
)

func TestParseItems(t *testing.T) {
	raw := `[{"task":"Ship the fix","assignee":"Ada","context":"discussed the outage"}]`

	items, err := parseItems(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Task != "Ship the fix" || items[0].Assignee != "Ada" {
		t.Errorf("unexpected items %+v", items)
	}
}

func TestParseItems_StripsMarkdownFence(t *testing.T) {
	raw := "```json\n[{\"task\":\"Book the room\"}]\n```"

	items, err := parseItems(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Task != "Book the room" {
		t.Errorf("unexpected items %+v", items)
	}
}

func TestParseItems_DropsEmptyTasks(t *testing.T) {
	raw := `[{"task":"Real"},{"task":"  "},{"task":""}]`

	items, err := parseItems(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected blank tasks dropped, got %+v", items)
	}
}

func TestParseItems_EmptyArray(t *testing.T) {
	items, err := parseItems("[]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %+v", items)
	}
}

func TestParseItems_InvalidJSON(t *testing.T) {
	if _, err := parseItems("The meeting had no action items."); err == nil {
		t.Error("expected an error for prose output")
	}
}

func TestRenderTranscript(t *testing.T) {
	tr := &model.TranscriptionResult{Segments: []model.TranscriptSegment{
		{Text: "hello", SpeakerLabel: "SPEAKER_00", SpeakerName: "Ada"},
		{Text: "hi", SpeakerLabel: "SPEAKER_01"},
		{Text: "bye"},
	}}

	out := renderTranscript(tr)

	if !strings.Contains(out, "Ada: hello") {
		t.Errorf("expected display name used, got %q", out)
	}
	if !strings.Contains(out, "SPEAKER_01: hi") {
		t.Errorf("expected label fallback, got %q", out)
	}
	if !strings.Contains(out, "Unknown: bye") {
		t.Errorf("expected unknown fallback, got %q", out)
	}
}

func TestExtractInsights(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(chatResponse{Choices: []struct {
			Message chatMessage `json:"message"`
		}{{Message: chatMessage{Role: "assistant", Content: `[{"task":"Follow up"}]`}}}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", "test-model")
	items, err := c.ExtractInsights(context.Background(), &model.TranscriptionResult{
		Segments: []model.TranscriptSegment{{Text: "please follow up", SpeakerLabel: "SPEAKER_00"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 1 || items[0].Task != "Follow up" {
		t.Errorf("unexpected items %+v", items)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotReq.Model != "test-model" || len(gotReq.Messages) != 2 {
		t.Errorf("unexpected request %+v", gotReq)
	}
}

func TestExtractInsights_ClientErrorIsPermanent(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "test-model")
	_, err := c.ExtractInsights(context.Background(), &model.TranscriptionResult{})
	if err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Errorf("expected a 4xx to short-circuit retries, got %d calls", calls)
	}
}

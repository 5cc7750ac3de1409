package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tattoovision/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(Options{APIKey: "test-key", BaseURL: srv.URL + "/", HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(Options{APIKey: "  "}); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestGenerateTextSendsSafetyAndJSONMode(t *testing.T) {
	var got geminiGenerateContentRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if !strings.HasSuffix(r.URL.Path, "/models/"+defaultTextModel+":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  "},{"text":"{\"ok\":true}"}]}}]}`))
	})

	text, err := client.GenerateText(context.Background(), TextRequest{
		Parts: []Part{TextPart("hello"), MediaPart("image/png", []byte{1, 2, 3})},
		JSON:  true,
	})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != `{"ok":true}` {
		t.Fatalf("text = %q", text)
	}
	if len(got.SafetySettings) != len(SafetyCategories) {
		t.Fatalf("safety settings = %+v", got.SafetySettings)
	}
	for _, s := range got.SafetySettings {
		if s.Threshold != SafetyThreshold {
			t.Fatalf("threshold = %s", s.Threshold)
		}
	}
	if got.GenerationConfig == nil || got.GenerationConfig.ResponseMimeType != "application/json" {
		t.Fatalf("generation config = %+v", got.GenerationConfig)
	}
	parts := got.Contents[0].Parts
	if len(parts) != 2 || parts[1].InlineData == nil || parts[1].InlineData.Data != "AQID" {
		t.Fatalf("parts = %+v", parts)
	}
}

func TestGenerateImageRequestsImageModality(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req geminiGenerateContentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.GenerationConfig == nil || len(req.GenerationConfig.ResponseModalities) != 2 {
			t.Errorf("modalities = %+v", req.GenerationConfig)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"here"},{"inlineData":{"data":"UkVOREVS"}}]}}]}`))
	})

	asset, err := client.GenerateImage(context.Background(), ImageRequest{Parts: []Part{TextPart("wolf")}})
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if asset.Format != "image/png" || string(asset.Data) != "RENDER" {
		t.Fatalf("asset = %+v", asset)
	}
}

func TestBlockedPromptIsContentBlocked(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	})
	_, err := client.GenerateText(context.Background(), TextRequest{Parts: []Part{TextPart("x")}})
	if !errors.Is(err, domain.ErrContentBlocked) {
		t.Fatalf("expected ErrContentBlocked, got %v", err)
	}
}

func TestSafetyFinishWithoutContentIsBlocked(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"finishReason":"IMAGE_SAFETY","content":{}}]}`))
	})
	_, err := client.GenerateImage(context.Background(), ImageRequest{Parts: []Part{TextPart("x")}})
	if !errors.Is(err, domain.ErrContentBlocked) {
		t.Fatalf("expected ErrContentBlocked, got %v", err)
	}
}

func TestHTTPErrorIsProviderFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded"}}`))
	})
	_, err := client.GenerateText(context.Background(), TextRequest{Parts: []Part{TextPart("x")}})
	if !errors.Is(err, domain.ErrProviderFailure) || !strings.Contains(err.Error(), "overloaded") {
		t.Fatalf("expected provider failure, got %v", err)
	}
}

package transcriber

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"reelscribe.dev/reel-to-text/internal/cmdrun"
	"reelscribe.dev/reel-to-text/internal/pipeline"
)

// Gemini calls the generateContent endpoint with the instruction prompt
// and the waveform embedded inline as base64.
type Gemini struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewGemini(apiKey, model, baseURL string) *Gemini {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &Gemini{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Transcribe reads the waveform fully into memory, sends it with the fixed
// instruction, and parses the reply into a Result.
func (g *Gemini) Transcribe(ctx context.Context, audioPath string) (*pipeline.Result, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, pipeline.NewError(pipeline.ErrKindInference, fmt.Errorf("read audio file: %w", err))
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: instruction},
				{InlineData: &geminiInlineData{
					MimeType: "audio/wav",
					Data:     base64.StdEncoding.EncodeToString(data),
				}},
			},
		}},
	})
	if err != nil {
		return nil, pipeline.NewError(pipeline.ErrKindInference, fmt.Errorf("encode request: %w", err))
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, pipeline.NewError(pipeline.ErrKindInference, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, pipeline.NewError(pipeline.ErrKindInference, fmt.Errorf("inference request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pipeline.NewError(pipeline.ErrKindInference, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, pipeline.NewError(pipeline.ErrKindInference,
			fmt.Errorf("inference failed (status %d): %s", resp.StatusCode, cmdrun.Tail(string(respBody), 2)))
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, pipeline.NewError(pipeline.ErrKindInference, fmt.Errorf("decode response: %w", err))
	}
	if len(apiResp.Candidates) == 0 {
		return nil, pipeline.NewError(pipeline.ErrKindInference, fmt.Errorf("model returned no candidates"))
	}

	var text strings.Builder
	for _, p := range apiResp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return parseReply(text.String())
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reelscribe.dev/reel-to-text/internal/pipeline"
)

type fakePipeline struct {
	run func(ctx context.Context, sourceURL string) (*pipeline.Result, error)
}

func (f *fakePipeline) Run(ctx context.Context, sourceURL string) (*pipeline.Result, error) {
	return f.run(ctx, sourceURL)
}

func doTranscribe(t *testing.T, h *TranscribeHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Transcribe(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestTranscribeMissingURL(t *testing.T) {
	h := NewTranscribeHandler(&fakePipeline{
		run: func(ctx context.Context, sourceURL string) (*pipeline.Result, error) {
			t.Fatal("pipeline must not run without a url")
			return nil, nil
		},
	}, nil)

	for _, body := range []string{`{}`, `{"url":""}`, `{"url":"   "}`, `not json`} {
		rec := doTranscribe(t, h, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, rec.Code)
		}
		if got := decodeBody(t, rec)["error"]; got != msgURLRequired {
			t.Fatalf("body %q: error = %q", body, got)
		}
	}
}

func TestTranscribeDownloadFailureIs400WithSpecificMessage(t *testing.T) {
	h := NewTranscribeHandler(&fakePipeline{
		run: func(ctx context.Context, sourceURL string) (*pipeline.Result, error) {
			return nil, pipeline.NewError(pipeline.ErrKindDownload, errors.New("no destination announced"))
		},
	}, nil)

	rec := doTranscribe(t, h, `{"url":"https://example.com/reel"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != msgDownloadFailed {
		t.Fatalf("error = %q", got)
	}
}

func TestTranscribeOtherFailuresAre500AndNeverLeakRawReply(t *testing.T) {
	raw := "Sure! Here is your transcript: blah blah"
	h := NewTranscribeHandler(&fakePipeline{
		run: func(ctx context.Context, sourceURL string) (*pipeline.Result, error) {
			return nil, pipeline.NewMalformedResponse(raw, errors.New("invalid character 'S'"))
		},
	}, nil)

	rec := doTranscribe(t, h, `{"url":"https://example.com/reel"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != msgInternalError {
		t.Fatalf("error = %q", body["error"])
	}
	if body["details"] == "" {
		t.Fatal("details missing")
	}
	if strings.Contains(rec.Body.String(), raw) {
		t.Fatalf("raw model reply leaked to client: %s", rec.Body.String())
	}
}

func TestTranscribeInferenceFailureIs500(t *testing.T) {
	h := NewTranscribeHandler(&fakePipeline{
		run: func(ctx context.Context, sourceURL string) (*pipeline.Result, error) {
			return nil, pipeline.NewError(pipeline.ErrKindInference, errors.New("quota exceeded"))
		},
	}, nil)

	rec := doTranscribe(t, h, `{"url":"https://example.com/reel"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestTranscribeSuccessEchoesSourceURL(t *testing.T) {
	h := NewTranscribeHandler(&fakePipeline{
		run: func(ctx context.Context, sourceURL string) (*pipeline.Result, error) {
			return &pipeline.Result{
				LanguageDetected:   "ur",
				OriginalTranscript: "شکریہ",
				EnglishTranslation: "thank you",
			}, nil
		},
	}, nil)

	rec := doTranscribe(t, h, `{"url":"https://example.com/reel"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	var resp TranscribeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.SourceURL != "https://example.com/reel" {
		t.Fatalf("sourceUrl = %q", resp.SourceURL)
	}
	if resp.LanguageDetected != "ur" || resp.EnglishTranslation != "thank you" {
		t.Fatalf("response = %+v", resp)
	}
}

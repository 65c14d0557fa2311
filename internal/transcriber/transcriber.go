// Package transcriber submits normalized audio to a generative-AI model
// and parses its reply into a structured transcript. Two backends are
// provided: Gemini (default) takes the audio inline; OpenAI runs Whisper
// and then a chat completion over the transcript.
package transcriber

import (
	"encoding/json"
	"errors"
	"strings"

	"reelscribe.dev/reel-to-text/internal/pipeline"
)

// instruction is the fixed prompt sent with the audio. The model's exact
// output format is an external contract: a single minified JSON object,
// nothing else.
const instruction = `Listen to the audio and do the following:
1. Detect the spoken language and report its ISO 639-1 two-letter code. Pay particular attention to closely related languages such as Hindi and Urdu: decide by vocabulary and phrasing, not by script alone.
2. Transcribe the speech verbatim in the original language.
3. Translate the transcript into English. If the speech is already in English, the translation must be identical to the transcript.
Respond with ONLY a single minified JSON object with exactly these keys: "language_detected", "original_transcript", "english_translation". No markdown, no code fences, no commentary.`

// textInstruction is the variant used when the backend already has a raw
// transcript and only needs language identification and translation.
const textInstruction = `You are given a verbatim transcript of spoken audio. Do the following:
1. Detect the language of the transcript and report its ISO 639-1 two-letter code. Pay particular attention to closely related languages such as Hindi and Urdu: decide by vocabulary and phrasing, not by script alone.
2. Reproduce the transcript unchanged.
3. Translate it into English. If it is already English, the translation must be identical.
Respond with ONLY a single minified JSON object with exactly these keys: "language_detected", "original_transcript", "english_translation". No markdown, no code fences, no commentary.`

// stripJSONFence removes a markdown code fence from a model reply, but
// only the exact json-tagged fence the model is known to emit. Other
// fence flavors are left alone on purpose.
func stripJSONFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```json") {
		return t
	}
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}

// parseReply turns a raw model reply into a Result. Pointer fields keep a
// missing key distinguishable from an empty string: empty values are
// legal, absent keys fail closed as a malformed response.
func parseReply(raw string) (*pipeline.Result, error) {
	var reply struct {
		LanguageDetected   *string `json:"language_detected"`
		OriginalTranscript *string `json:"original_transcript"`
		EnglishTranslation *string `json:"english_translation"`
	}
	if err := json.Unmarshal([]byte(stripJSONFence(raw)), &reply); err != nil {
		return nil, pipeline.NewMalformedResponse(raw, err)
	}
	if reply.LanguageDetected == nil || reply.OriginalTranscript == nil || reply.EnglishTranslation == nil {
		return nil, pipeline.NewMalformedResponse(raw, errors.New("reply is missing a required key"))
	}
	return &pipeline.Result{
		LanguageDetected:   strings.ToLower(strings.TrimSpace(*reply.LanguageDetected)),
		OriginalTranscript: *reply.OriginalTranscript,
		EnglishTranslation: *reply.EnglishTranslation,
	}, nil
}

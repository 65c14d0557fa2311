package transcriber

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"reelscribe.dev/reel-to-text/internal/pipeline"
)

// OpenAI is the alternate backend: Whisper produces the raw transcript,
// then a chat completion handles language identification and translation
// through the same strict JSON contract.
type OpenAI struct {
	client       *openai.Client
	whisperModel string
	chatModel    string
}

func NewOpenAI(apiKey, whisperModel, chatModel string) *OpenAI {
	if whisperModel == "" {
		whisperModel = openai.Whisper1
	}
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}
	return &OpenAI{
		client:       openai.NewClient(apiKey),
		whisperModel: whisperModel,
		chatModel:    chatModel,
	}
}

func (o *OpenAI) Transcribe(ctx context.Context, audioPath string) (*pipeline.Result, error) {
	audioResp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.whisperModel,
		FilePath: audioPath,
	})
	if err != nil {
		return nil, pipeline.NewError(pipeline.ErrKindInference, fmt.Errorf("whisper transcription: %w", err))
	}

	chatResp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: textInstruction},
			{Role: openai.ChatMessageRoleUser, Content: audioResp.Text},
		},
	})
	if err != nil {
		return nil, pipeline.NewError(pipeline.ErrKindInference, fmt.Errorf("translation completion: %w", err))
	}
	if len(chatResp.Choices) == 0 {
		return nil, pipeline.NewError(pipeline.ErrKindInference, fmt.Errorf("model returned no choices"))
	}

	return parseReply(chatResp.Choices[0].Message.Content)
}

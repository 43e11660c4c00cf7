package completion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"tokenchat/pkg/config"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const (
	// generationTimeout is the wall-clock budget for one completion. When it
	// expires the text accumulated so far is returned instead of an error.
	generationTimeout = 30 * time.Second

	// timeoutPlaceholder is returned when the timer fires before any text
	// arrived.
	timeoutPlaceholder = "Sorry, I encountered an issue generating a response. Please try again."
)

type Service struct {
	client *openai.Client
	model  string
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		client: openai.NewClient(cfg.OpenAIKey),
		model:  cfg.OpenAIModel,
	}
}

// Model returns the model identifier requests are issued with.
func (s *Service) Model() string {
	return s.model
}

// Complete streams a chat completion for the given prompts and accumulates
// the segments into one string. Hitting the generation timeout yields the
// partial text (or the placeholder when nothing arrived) as a success; any
// other upstream error is returned to the caller.
func (s *Service) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		Stream: true,
	})
	if err != nil {
		if timedOut(ctx, err) {
			logrus.Warn("Completion request timed out before streaming started")
			return timeoutPlaceholder, nil
		}
		return "", fmt.Errorf("failed to open completion stream: %w", err)
	}
	defer stream.Close()

	return accumulate(ctx, func() (string, error) {
		resp, err := stream.Recv()
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", nil
		}
		return resp.Choices[0].Delta.Content, nil
	})
}

// accumulate drains the stream through recv until it completes, fails, or
// the context deadline wins the race. The deadline path degrades to partial
// text rather than an error.
func accumulate(ctx context.Context, recv func() (string, error)) (string, error) {
	var b strings.Builder

	for {
		segment, err := recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return strings.TrimSpace(b.String()), nil
			}
			if timedOut(ctx, err) {
				partial := strings.TrimSpace(b.String())
				if partial != "" {
					logrus.Warnf("Completion timed out with %d characters accumulated", len(partial))
					return partial, nil
				}
				logrus.Warn("Completion timed out with no text accumulated")
				return timeoutPlaceholder, nil
			}
			return "", fmt.Errorf("completion stream failed: %w", err)
		}
		b.WriteString(segment)
	}
}

func timedOut(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}

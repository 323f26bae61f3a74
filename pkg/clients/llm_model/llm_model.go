package llm_model

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/paraggit/reportportal-llm-query/config"
	"github.com/paraggit/reportportal-llm-query/pkg/tools"
)

const clientNameChatModel = "chat_model"

var (
	instance *ClientChatModel
	once     sync.Once
)

type ClientChatModel struct {
	config *Config
}

func GetInstance() *ClientChatModel {
	once.Do(func() {
		conf := &Config{
			Addr:        config.GetInstance().GetString(config.ClientChatModelAddr),
			Model:       config.GetInstance().GetString(config.ClientChatModelModel),
			Token:       config.GetInstance().GetString(config.ClientChatModelAPIKey),
			Temperature: cast.ToFloat32(config.GetInstance().GetFloat64(config.ClientChatModelTemperature)),
			MaxTokens:   config.GetInstance().GetInt(config.ClientChatModelMaxTokens),
		}

		instance = &ClientChatModel{
			config: conf,
		}
	})
	return instance
}

func NewClient(conf *Config) *ClientChatModel {
	return &ClientChatModel{config: conf}
}

func (zc *ClientChatModel) newClient() *openai.Client {
	defaultReq := openai.DefaultConfig(zc.config.Token)
	if zc.config.Addr != "" {
		defaultReq.BaseURL = zc.config.Addr
	}
	return openai.NewClientWithConfig(defaultReq)
}

// PostChatCompletionsNonStream runs one chat completion and returns the full
// response.
func (zc *ClientChatModel) PostChatCompletionsNonStream(ctx context.Context, messages []openai.ChatCompletionMessage) (*openai.ChatCompletionResponse, error) {
	client := zc.newClient()

	response, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       zc.config.Model,
		Messages:    messages,
		MaxTokens:   zc.config.MaxTokens,
		Temperature: zc.config.Temperature,
		Stream:      false,
	})
	if err != nil {
		log.Errorf("%s chat completion error: %v", clientNameChatModel, err)
		return nil, err
	}

	return &response, nil
}

// PostChatCompletionsNonStreamContent returns only the text of the first
// choice.
func (zc *ClientChatModel) PostChatCompletionsNonStreamContent(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	response, err := zc.PostChatCompletionsNonStream(ctx, messages)
	if err != nil {
		return "", err
	}

	if response == nil {
		log.Errorf("%s chat completion response is nil", clientNameChatModel)
		return "", fmt.Errorf("chat completion response is nil")
	}

	if len(response.Choices) == 0 {
		log.Errorf("%s chat completion response has no choices", clientNameChatModel)
		return "", fmt.Errorf("chat completion response has no choices")
	}

	content := response.Choices[0].Message.Content
	if content == "" {
		log.Warnf("%s chat completion response content is empty", clientNameChatModel)
	}

	return content, nil
}

// PostChatCompletionsStream streams one chat completion, invoking onChunk for
// every non-empty delta. Streaming stops when onChunk returns an error or the
// context is cancelled; the underlying stream is always closed.
func (zc *ClientChatModel) PostChatCompletionsStream(ctx context.Context, messages []openai.ChatCompletionMessage, onChunk func(chunk string) error) error {
	client := zc.newClient()

	stream, err := client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       zc.config.Model,
		Messages:    messages,
		MaxTokens:   zc.config.MaxTokens,
		Temperature: zc.config.Temperature,
		Stream:      true,
	})
	if err != nil {
		log.Errorf("%s stream creation error: %v", clientNameChatModel, err)
		return err
	}
	defer tools.ErrorWithPrintContext(stream.Close, "close stream")

	for {
		response, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			log.Errorf("%s stream.Recv error: %v", clientNameChatModel, err)
			return err
		}

		if len(response.Choices) == 0 {
			continue
		}
		delta := response.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		if err := onChunk(delta); err != nil {
			return err
		}
	}
}

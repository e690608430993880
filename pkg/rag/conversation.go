package rag

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/memory"
	"github.com/tmc/langchaingo/schema"
)

const (
	defaultChatModel   = "gpt-4o-mini"
	defaultTemperature = 0.7

	// DefaultRetrievedChunks is how many chunks back each answer.
	DefaultRetrievedChunks = 5
)

// Conversation holds a retrieval-augmented chat session. The buffer
// memory carries the chat history so follow-up questions resolve against
// earlier turns.
type Conversation struct {
	chain       chains.ConversationalRetrievalQA
	temperature float64
}

// NewConversation builds a session answering from retriever. Empty model
// and zero temperature select the defaults.
func NewConversation(model string, temperature float64, retriever schema.Retriever) (*Conversation, error) {
	if model == "" {
		model = defaultChatModel
	}
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	llm, err := openai.New(openai.WithModel(model))
	if err != nil {
		return nil, err
	}

	chain := chains.NewConversationalRetrievalQAFromLLM(llm, retriever, memory.NewConversationBuffer())
	return &Conversation{chain: chain, temperature: temperature}, nil
}

// Query answers one question against the knowledge base and the chat
// history so far.
func (c *Conversation) Query(ctx context.Context, question string) (string, error) {
	out, err := chains.Call(ctx, c.chain, map[string]any{"question": question},
		chains.WithTemperature(c.temperature))
	if err != nil {
		return "", fmt.Errorf("error answering question: %w", err)
	}
	answer, ok := out[c.chain.OutputKey].(string)
	if !ok {
		return "", fmt.Errorf("unexpected chain output %v", out)
	}
	return answer, nil
}

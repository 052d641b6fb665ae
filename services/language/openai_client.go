// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package language

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/awnumar/memguard"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/AleutianAI/quill/pkg/retry"
)

// DefaultModel is used when the config names no model.
const DefaultModel = "gpt-4o-mini"

const grammarSystemPrompt = `You are a meticulous copy editor. Analyze the user's text for grammar, ` +
	`spelling and punctuation problems. Report each finding as an issue with kind "critical" for ` +
	`outright errors and "suggestion" for optional style improvements, and produce a fully corrected ` +
	`version of the text. If the text is flawless, return an empty issues list and the text unchanged.`

const rewriteSystemPrompt = `You are a skilled editor. Rewrite the user's text in the requested style, ` +
	`preserving its meaning. Return only the rewritten text in the structured response.`

// chatCompleter is the slice of the OpenAI client this package uses.
// Narrowed for testability.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient implements Client against the OpenAI-compatible API.
//
// The credential is held in a memguard enclave and decrypted only for
// the duration of building each request, so the plaintext key never
// sits in ordinary heap memory between calls.
type OpenAIClient struct {
	model      string
	credential *memguard.Enclave
	logger     *slog.Logger

	// newCompleter builds the transport from a decrypted key.
	// Overridable for tests.
	newCompleter func(apiKey string) chatCompleter
}

// NewOpenAIClient creates a client for the given model. credential may
// be nil when no key is configured; calls then fail with
// retry.ErrNoCredential before touching the network.
func NewOpenAIClient(credential *memguard.Enclave, model string, logger *slog.Logger) *OpenAIClient {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &OpenAIClient{
		model:      model,
		credential: credential,
		logger:     logger,
		newCompleter: func(apiKey string) chatCompleter {
			return openai.NewClient(apiKey)
		},
	}
}

// complete runs one structured-output chat completion and decodes the
// JSON payload into out.
func (c *OpenAIClient) complete(ctx context.Context, system, user, schemaName string, schemaFor any, out any) error {
	if c.credential == nil {
		return retry.ErrNoCredential
	}

	key, err := c.credential.Open()
	if err != nil {
		return fmt.Errorf("open credential enclave: %w", err)
	}
	completer := c.newCompleter(key.String())
	key.Destroy()

	schema, err := jsonschema.GenerateSchemaForType(schemaFor)
	if err != nil {
		return fmt.Errorf("generate output schema: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: schema,
				Strict: true,
			},
		},
	}

	c.logger.Debug("language service request", "model", c.model, "schema", schemaName)
	resp, err := completer.CreateChatCompletion(ctx, req)
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("language service returned no choices")
	}

	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode structured payload: %w", err)
	}
	return nil
}

// CheckGrammar implements Client.
func (c *OpenAIClient) CheckGrammar(ctx context.Context, text string) (*GrammarResult, error) {
	if text == "" {
		return nil, fmt.Errorf("nothing to check: text is empty")
	}

	var result GrammarResult
	if err := c.complete(ctx, grammarSystemPrompt, text, "grammar_analysis", GrammarResult{}, &result); err != nil {
		return nil, err
	}
	if result.Issues == nil {
		result.Issues = []Issue{}
	}
	return &result, nil
}

// Rewrite implements Client.
func (c *OpenAIClient) Rewrite(ctx context.Context, text, style string) (*RewriteResult, error) {
	if text == "" {
		return nil, fmt.Errorf("nothing to rewrite: text is empty")
	}
	if !ValidStyle(style) {
		return nil, fmt.Errorf("unknown rewrite style %q", style)
	}

	user := fmt.Sprintf("Style: %s\n\n%s", style, text)
	var result RewriteResult
	if err := c.complete(ctx, rewriteSystemPrompt, user, "style_rewrite", RewriteResult{}, &result); err != nil {
		return nil, err
	}
	result.Style = style
	return &result, nil
}

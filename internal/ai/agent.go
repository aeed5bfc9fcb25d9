package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"medstock-agent/internal/metrics"
)

const systemPrompt = `You are a stock analyst for a network of medical storage locations
(hospitals, clinics, regional warehouses). You answer questions about medicine and supply
inventory using ONLY the provided tools. Rules:
1. Always ground numbers in tool results. Never invent stock figures.
2. Quantities are whole units; days of stock remaining may be fractional.
3. A status of CRITICAL means fewer than 3 days of stock, WARNING means 3 to 7 days,
   HEALTHY means more than 7 days.
4. When asked what to order, use the reorder suggestion tool rather than computing yourself.
5. Be concise. Lead with the direct answer, then the supporting figures.`

// maxToolRounds bounds the agentic loop. A question that still wants tools
// after this many rounds gets answered with whatever the model has.
const maxToolRounds = 8

// Reply is one assistant turn. ConversationID is the provider-side handle
// for the exchange; passing it back with the next question continues the
// conversation with full context.
type Reply struct {
	Text           string
	ConversationID string
}

// AssistantService answers natural-language questions about stock state.
type AssistantService interface {
	// Answer runs the agentic tool loop for one question. conversationID,
	// when non-empty, continues a prior exchange. onStatus, when non-nil, is
	// invoked with a short progress note before each tool call.
	Answer(ctx context.Context, question, conversationID string, onStatus func(string)) (*Reply, error)
}

// Assistant is the OpenAI-backed AssistantService.
type Assistant struct {
	client *openai.Client
	model  string
	tools  *ToolRegistry
}

// NewAssistant builds an Assistant over the given read-tool registry.
func NewAssistant(apiKey, model string, tools *ToolRegistry) *Assistant {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Assistant{client: &client, model: model, tools: tools}
}

func (a *Assistant) Answer(ctx context.Context, question, conversationID string, onStatus func(string)) (*Reply, error) {
	if question == "" {
		return nil, fmt.Errorf("empty question")
	}

	params := responses.ResponseNewParams{
		Model:        shared.ResponsesModel(a.model),
		Instructions: param.NewOpt(systemPrompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(question),
		},
		Tools: a.tools.ToOpenAITools(),
	}
	if conversationID != "" {
		params.PreviousResponseID = param.NewOpt(conversationID)
	}

	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.client.Responses.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("openai responses error: %w", err)
		}

		var outputs responses.ResponseInputParam
		for _, item := range resp.Output {
			if item.Type != "function_call" {
				continue
			}
			call := item.AsFunctionCall()
			result := a.runTool(ctx, call.Name, call.Arguments, onStatus)
			outputs = append(outputs, responses.ResponseInputItemParamOfFunctionCallOutput(call.CallID, result))
		}

		if len(outputs) == 0 {
			answer := resp.OutputText()
			if answer == "" {
				return nil, fmt.Errorf("empty response content")
			}
			return &Reply{Text: answer, ConversationID: resp.ID}, nil
		}

		params = responses.ResponseNewParams{
			Model:              shared.ResponsesModel(a.model),
			PreviousResponseID: param.NewOpt(resp.ID),
			Input: responses.ResponseNewParamsInputUnion{
				OfInputItemList: outputs,
			},
			Tools: a.tools.ToOpenAITools(),
		}
	}

	return nil, fmt.Errorf("tool loop did not converge after %d rounds", maxToolRounds)
}

// runTool executes one tool call. Failures are reported back to the model as
// a JSON error payload so it can recover or rephrase.
func (a *Assistant) runTool(ctx context.Context, name, rawArgs string, onStatus func(string)) string {
	tool, ok := a.tools.Get(name)
	if !ok {
		return toolError(fmt.Sprintf("unknown tool %q", name))
	}

	if onStatus != nil {
		onStatus(fmt.Sprintf("Consulting %s...", name))
	}
	metrics.AssistantToolCalls.WithLabelValues(name).Inc()

	args := map[string]any{}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return toolError(fmt.Sprintf("invalid arguments: %v", err))
		}
	}

	result, err := tool.Handler(ctx, args)
	if err != nil {
		return toolError(err.Error())
	}
	return result
}

func toolError(msg string) string {
	raw, _ := json.Marshal(map[string]string{"error": msg})
	return string(raw)
}

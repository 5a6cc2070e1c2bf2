package ai

import (
	"encoding/json"
	"fmt"

	"github.com/gsoc2/ai/pkg/provider"
	"github.com/gsoc2/ai/pkg/provider/types"
)

// Mode selects how a structured-output request is carried to the model:
// as a JSON-constrained text completion, or as arguments to a single
// synthetic tool call.
type Mode string

const (
	// ModeJSON asks the provider for a JSON-shaped text completion, using
	// native response-format support when the model has it and a system
	// prompt instruction otherwise.
	ModeJSON Mode = "json"

	// ModeTool asks the provider to call one fixed tool whose arguments
	// are the structured output.
	ModeTool Mode = "tool"
)

const toolModeToolName = "json"

// modeAdapter builds provider call options for a (shape, mode) pair and
// extracts the text-delta substream from the resulting provider chunks.
type modeAdapter struct {
	mode           Mode
	strategy       outputStrategy
	nativeJSONMode bool // model reports SupportsStructuredOutput()
}

// newModeAdapter validates the (shape, mode) combination and returns an
// adapter bound to it. no-schema output has nothing to bind tool
// arguments to, so it is incompatible with tool mode.
func newModeAdapter(mode Mode, strategy outputStrategy, nativeJSONMode bool) (*modeAdapter, error) {
	if mode == ModeTool && strategy.shape() == ShapeNoSchema {
		return nil, &InvalidArgumentError{Message: "tool mode requires a schema; no-schema output must use json mode"}
	}
	return &modeAdapter{mode: mode, strategy: strategy, nativeJSONMode: nativeJSONMode}, nil
}

// augmentPrompt applies the mode's prompt-shaping rule to opts.Prompt in
// place, mirroring the two literal instruction strings providers without
// native JSON-schema support are known to need.
func (a *modeAdapter) augmentPrompt(prompt types.Prompt) types.Prompt {
	if a.mode != ModeJSON {
		return prompt
	}

	var instruction string
	switch schemaJSON := a.strategy.responseSchema(); {
	case schemaJSON != nil && !a.nativeJSONMode:
		raw, err := json.Marshal(schemaJSON)
		if err != nil {
			raw = []byte("{}")
		}
		instruction = "JSON schema:\n" + string(raw) + "\nYou MUST answer with a JSON object that matches the JSON schema above."
	case schemaJSON == nil:
		instruction = "You MUST answer with JSON."
	default:
		return prompt
	}

	if prompt.System != "" {
		prompt.System = prompt.System + "\n\n" + instruction
	} else {
		prompt.System = instruction
	}
	return prompt
}

// applyResponseFormat sets the provider call's ResponseFormat/Tools/
// ToolChoice fields for this mode.
func (a *modeAdapter) applyResponseFormat(genOpts *provider.GenerateOptions) {
	switch a.mode {
	case ModeJSON:
		genOpts.ResponseFormat = &provider.ResponseFormat{
			Type:   "json_schema",
			Schema: a.strategy.responseSchema(),
		}
	case ModeTool:
		genOpts.Tools = []types.Tool{{
			Name:        toolModeToolName,
			Description: "Send the structured result.",
			Parameters:  a.strategy.responseSchema(),
		}}
		genOpts.ToolChoice = types.SpecificToolChoice(toolModeToolName)
	}
}

// extractDelta reports the text fragment, if any, this chunk contributes
// to the accumulated JSON text. In tool mode, bare text-delta chunks are
// ignored (the model may emit reasoning or chatter outside the tool
// call) and only the bound tool call's argument fragments count.
func (a *modeAdapter) extractDelta(chunk *provider.StreamChunk) (delta string, ok bool) {
	switch a.mode {
	case ModeJSON:
		if chunk.Type == provider.ChunkTypeText {
			return chunk.Text, true
		}
		return "", false
	case ModeTool:
		if chunk.Type == provider.ChunkTypeToolCallDelta && chunk.ToolCallDelta != nil {
			return chunk.ToolCallDelta.ArgumentsDelta, true
		}
		if chunk.Type == provider.ChunkTypeToolCall && chunk.ToolCall != nil {
			raw, err := json.Marshal(chunk.ToolCall.Arguments)
			if err != nil {
				return "", false
			}
			return string(raw), true
		}
		return "", false
	default:
		return "", false
	}
}

func (a *modeAdapter) String() string {
	return fmt.Sprintf("modeAdapter{mode=%s, shape=%s}", a.mode, a.strategy.shape())
}

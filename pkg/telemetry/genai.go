package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// GenAI semantic convention attribute keys (OpenTelemetry gen_ai.* namespace),
// recorded alongside the existing ai.* vocabulary rather than in place of it,
// so traces are queryable by either convention.
const (
	AttrGenAISystem               = "gen_ai.system"
	AttrGenAIOperationName        = "gen_ai.operation.name"
	AttrGenAIRequestModel         = "gen_ai.request.model"
	AttrGenAIRequestTemperature   = "gen_ai.request.temperature"
	AttrGenAIRequestTopP          = "gen_ai.request.top_p"
	AttrGenAIRequestTopK          = "gen_ai.request.top_k"
	AttrGenAIRequestFreqPenalty   = "gen_ai.request.frequency_penalty"
	AttrGenAIRequestPresPenalty   = "gen_ai.request.presence_penalty"
	AttrGenAIRequestStopSequences = "gen_ai.request.stop_sequences"
	AttrGenAIRequestMaxTokens     = "gen_ai.request.max_tokens"
	AttrGenAIResponseFinishReason = "gen_ai.response.finish_reasons"
	AttrGenAIUsageInputTokens     = "gen_ai.usage.input_tokens"
	AttrGenAIUsageOutputTokens    = "gen_ai.usage.output_tokens"

	// OperationNameResourceName follows the resource.name convention some
	// GenAI backends (e.g. traceloop-compatible collectors) key dashboards
	// on, distinct from the gen_ai.operation.name value.
	AttrOperationName = "operation.name"
	AttrResourceName  = "resource.name"
)

// GenAIRequestAttributes builds the gen_ai.request.* attribute set for a
// model call. Pointer fields are omitted when nil.
func GenAIRequestAttributes(system, model string, temperature, topP *float64, topK *int, freqPenalty, presPenalty *float64, stopSequences []string, maxTokens *int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrGenAISystem, system),
		attribute.String(AttrGenAIRequestModel, model),
	}
	if temperature != nil {
		attrs = append(attrs, attribute.Float64(AttrGenAIRequestTemperature, *temperature))
	}
	if topP != nil {
		attrs = append(attrs, attribute.Float64(AttrGenAIRequestTopP, *topP))
	}
	if topK != nil {
		attrs = append(attrs, attribute.Int(AttrGenAIRequestTopK, *topK))
	}
	if freqPenalty != nil {
		attrs = append(attrs, attribute.Float64(AttrGenAIRequestFreqPenalty, *freqPenalty))
	}
	if presPenalty != nil {
		attrs = append(attrs, attribute.Float64(AttrGenAIRequestPresPenalty, *presPenalty))
	}
	if len(stopSequences) > 0 {
		attrs = append(attrs, attribute.StringSlice(AttrGenAIRequestStopSequences, stopSequences))
	}
	if maxTokens != nil {
		attrs = append(attrs, attribute.Int(AttrGenAIRequestMaxTokens, *maxTokens))
	}
	return attrs
}

// GenAIResponseAttributes builds the gen_ai.response.*/usage.* attribute
// set recorded once a call finishes.
func GenAIResponseAttributes(finishReason string, inputTokens, outputTokens *int64) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.StringSlice(AttrGenAIResponseFinishReason, []string{finishReason}),
	}
	if inputTokens != nil {
		attrs = append(attrs, attribute.Int64(AttrGenAIUsageInputTokens, *inputTokens))
	}
	if outputTokens != nil {
		attrs = append(attrs, attribute.Int64(AttrGenAIUsageOutputTokens, *outputTokens))
	}
	return attrs
}

// OperationAttributes tags a span with the ai.operationId convention the
// rest of this package uses alongside the operation.name/resource.name
// pair some GenAI collectors key dashboards on.
func OperationAttributes(operationID, resourceName string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("ai.operationId", operationID),
		attribute.String(AttrOperationName, operationID),
		attribute.String(AttrResourceName, resourceName),
	}
}

package ai

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gsoc2/ai/pkg/jsonparser"
	"github.com/gsoc2/ai/pkg/provider"
	"github.com/gsoc2/ai/pkg/provider/types"
	"github.com/gsoc2/ai/pkg/schema"
	"github.com/gsoc2/ai/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StreamObjectOptions configures a streamed structured-output call.
type StreamObjectOptions struct {
	// Model to use for generation.
	Model provider.LanguageModel

	// Prompt can be a simple string or a list of messages.
	Prompt   string
	Messages []types.Message
	System   string

	// Shape selects the output strategy: ShapeObject, ShapeArray, or
	// ShapeNoSchema. Defaults to ShapeObject.
	Shape Shape

	// Schema is required for ShapeObject (the object's schema) and
	// ShapeArray (the element schema); ignored for ShapeNoSchema.
	Schema schema.Schema

	// Mode selects how the structured output is carried to the provider.
	// Defaults to ModeJSON when the model supports structured output
	// natively, ModeTool otherwise, unless Shape is ShapeNoSchema (which
	// is always ModeJSON).
	Mode Mode

	// Generation parameters.
	Temperature      *float64
	MaxTokens        *int
	TopP             *float64
	TopK             *int
	FrequencyPenalty *float64
	PresencePenalty  *float64
	StopSequences    []string
	Seed             *int

	// OnFinish is called exactly once, with exactly one of result/err set,
	// once the stream's terminal promise resolves.
	OnFinish func(ctx context.Context, result *StreamObjectFinalResult, err error)

	// ExperimentalTelemetry configures OpenTelemetry tracing.
	ExperimentalTelemetry *TelemetrySettings
}

// StreamObjectFinalResult is the terminal value of a streamObject call.
type StreamObjectFinalResult struct {
	// Object holds the validated value for ShapeObject/ShapeNoSchema, or
	// the validated []interface{} for ShapeArray.
	Object interface{}

	Text         string
	FinishReason types.FinishReason
	Usage        types.Usage
}

// StreamObjectResult is returned immediately by StreamObject; its derived
// streams and terminal promise are populated as the orchestrator goroutine
// runs.
type StreamObjectResult struct {
	mux    *multiplexer
	result *future[*StreamObjectFinalResult]
}

// TextStream yields each raw text fragment contributed to the accumulated
// JSON, in mode-adapter terms (bare text in json mode, tool-argument
// fragments in tool mode).
func (r *StreamObjectResult) TextStream() <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		for ev := range r.mux.text {
			out <- ev.textDelta
		}
	}()
	return out
}

// PartialObjectStream yields the latest repaired-parse snapshot each time
// it changes.
func (r *StreamObjectResult) PartialObjectStream() <-chan interface{} {
	out := make(chan interface{})
	go func() {
		defer close(out)
		for ev := range r.mux.partial {
			out <- ev.partial
		}
	}()
	return out
}

// StreamElement is one array element published on ElementStream.
type StreamElement struct {
	Index int
	Value interface{}
}

// ElementStream yields array elements as they become complete (ShapeArray
// only, per the look-ahead completion rule in arrayStrategy).
func (r *StreamObjectResult) ElementStream() <-chan StreamElement {
	out := make(chan StreamElement)
	go func() {
		defer close(out)
		for ev := range r.mux.element {
			out <- StreamElement{Index: ev.elementIndex, Value: ev.element}
		}
	}()
	return out
}

// FullStreamEvent is one item on FullStream, covering every event kind.
type FullStreamEvent struct {
	Kind         EventKind
	TextDelta    string
	Partial      interface{}
	Element      interface{}
	ElementIndex int
	Err          error
}

// FullStream yields every event published across all derived streams, in
// publish order.
func (r *StreamObjectResult) FullStream() <-chan FullStreamEvent {
	out := make(chan FullStreamEvent)
	go func() {
		defer close(out)
		for ev := range r.mux.full {
			out <- FullStreamEvent{
				Kind:         ev.kind,
				TextDelta:    ev.textDelta,
				Partial:      ev.partial,
				Element:      ev.element,
				ElementIndex: ev.elementIndex,
				Err:          ev.err,
			}
		}
	}()
	return out
}

// Object waits for the terminal promise and returns the validated result.
func (r *StreamObjectResult) Object(ctx context.Context) (*StreamObjectFinalResult, error) {
	return r.result.Wait(ctx)
}

// StreamObject starts a structured-output stream. It returns as soon as the
// provider call has been issued; the returned result's derived streams and
// terminal promise are populated by a background goroutine as chunks
// arrive. StreamObject itself never returns an error from the streaming
// process — only from validating the call before it starts — per the
// engine's policy of never throwing synchronously out of its entry point.
func StreamObject(ctx context.Context, opts StreamObjectOptions) (*StreamObjectResult, error) {
	if opts.Model == nil {
		return nil, &InvalidArgumentError{Message: "model is required"}
	}
	if opts.Shape == "" {
		opts.Shape = ShapeObject
	}

	strategy, err := NewOutputStrategy(opts.Shape, opts.Schema)
	if err != nil {
		return nil, err
	}

	mode := opts.Mode
	if mode == "" {
		switch {
		case opts.Shape == ShapeNoSchema:
			mode = ModeJSON
		case opts.Model.SupportsStructuredOutput():
			mode = ModeJSON
		default:
			mode = ModeTool
		}
	}
	adapter, err := newModeAdapter(mode, strategy, opts.Model.SupportsStructuredOutput())
	if err != nil {
		return nil, err
	}

	mux := newMultiplexer()
	result := &StreamObjectResult{mux: mux, result: newFuture[*StreamObjectFinalResult]()}

	orch := &streamOrchestrator{
		opts:     opts,
		strategy: strategy,
		adapter:  adapter,
		mux:      mux,
		future:   result.result,
	}
	go orch.run(ctx)

	return result, nil
}

// streamOrchestrator drives one call's Init -> Streaming -> Finishing/
// Failing -> Done state machine. All mutable state here is owned by the
// single goroutine running orch.run; nothing else writes to it.
type streamOrchestrator struct {
	opts     StreamObjectOptions
	strategy outputStrategy
	adapter  *modeAdapter
	mux      *multiplexer
	future   *future[*StreamObjectFinalResult]

	text           string
	lastPartial    interface{}
	publishedCount int
	outerSpan      trace.Span
	innerSpan      trace.Span
}

func (o *streamOrchestrator) run(ctx context.Context) {
	defer o.mux.closeAll()

	telemetryOn := o.opts.ExperimentalTelemetry != nil && o.opts.ExperimentalTelemetry.IsEnabled
	var tracer trace.Tracer
	if telemetryOn {
		tracer = telemetry.GetTracer(o.opts.ExperimentalTelemetry)
		ctx, o.outerSpan = tracer.Start(ctx, "ai.streamObject")
		o.outerSpan.SetAttributes(telemetry.OperationAttributes("ai.streamObject", "streamObject")...)
		o.outerSpan.SetAttributes(
			attribute.String("ai.model.provider", o.opts.Model.Provider()),
			attribute.String("ai.model.id", o.opts.Model.ModelID()),
		)
		defer o.outerSpan.End()
	}

	prompt := buildPrompt(o.opts.Prompt, o.opts.Messages, o.opts.System)
	prompt = o.adapter.augmentPrompt(prompt)

	genOpts := &provider.GenerateOptions{
		Prompt:           prompt,
		Temperature:      o.opts.Temperature,
		MaxTokens:        o.opts.MaxTokens,
		TopP:             o.opts.TopP,
		TopK:             o.opts.TopK,
		FrequencyPenalty: o.opts.FrequencyPenalty,
		PresencePenalty:  o.opts.PresencePenalty,
		StopSequences:    o.opts.StopSequences,
		Seed:             o.opts.Seed,
	}
	o.adapter.applyResponseFormat(genOpts)

	if telemetryOn {
		ctx, o.innerSpan = tracer.Start(ctx, "ai.streamObject.doStream")
		o.innerSpan.SetAttributes(telemetry.OperationAttributes("ai.streamObject.doStream", "doStream")...)
		o.innerSpan.SetAttributes(telemetry.GenAIRequestAttributes(
			o.opts.Model.Provider(), o.opts.Model.ModelID(),
			o.opts.Temperature, o.opts.TopP, o.opts.TopK,
			o.opts.FrequencyPenalty, o.opts.PresencePenalty,
			o.opts.StopSequences, o.opts.MaxTokens,
		)...)
		defer o.innerSpan.End()
	}

	startedAt := callStartTime()
	stream, err := o.opts.Model.DoStream(ctx, genOpts)
	if err != nil {
		o.fail(ctx, &TransportError{Cause: err})
		return
	}
	defer stream.Close()

	var firstChunkAt *time.Time
	var finishReason types.FinishReason
	var usage types.Usage

	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			o.fail(ctx, &TransportError{Cause: err})
			return
		}

		if firstChunkAt == nil {
			t := time.Now()
			firstChunkAt = &t
			if o.outerSpan != nil {
				o.outerSpan.SetAttributes(attribute.Int64("ai.response.msToFirstChunk", t.Sub(startedAt).Milliseconds()))
			}
		}

		if chunk.Type == provider.ChunkTypeError {
			// Recoverable: recorded and surfaced on fullStream, but does
			// not by itself fail the terminal promise.
			o.mux.publish(ctx, streamEvent{kind: EventError, err: &ProviderError{Cause: fmt.Errorf("provider reported an error chunk")}})
			continue
		}

		if delta, ok := o.adapter.extractDelta(chunk); ok && delta != "" {
			o.text += delta
			o.mux.publish(ctx, streamEvent{kind: EventTextDelta, textDelta: delta})
			o.processPartial(ctx)
		}

		if chunk.Type == provider.ChunkTypeFinish {
			finishReason = chunk.FinishReason
		}
		if chunk.Usage != nil {
			usage = *chunk.Usage
		}
	}

	if o.innerSpan != nil {
		o.innerSpan.SetAttributes(telemetry.GenAIResponseAttributes(string(finishReason), usage.InputTokens, usage.OutputTokens)...)
	}

	final, err := o.strategy.finalize(o.text)
	if err != nil {
		o.fail(ctx, err)
		return
	}

	finishedAt := time.Now()
	if o.outerSpan != nil {
		o.outerSpan.SetAttributes(
			attribute.String("ai.response.finishReason", string(finishReason)),
			attribute.Int64("ai.response.msToFinish", finishedAt.Sub(startedAt).Milliseconds()),
		)
		if usage.OutputTokens != nil {
			elapsedSec := finishedAt.Sub(startedAt).Seconds()
			if elapsedSec > 0 {
				o.outerSpan.SetAttributes(attribute.Float64("ai.response.avgCompletionTokensPerSecond", float64(*usage.OutputTokens)/elapsedSec))
			}
		}
	}

	// Publish any array elements that only became complete once the final
	// element stopped looking "next" (finalize treats the whole array as
	// closed, so every element is now eligible).
	if o.opts.Shape == ShapeArray {
		o.publishFinalElements(ctx, final)
	}

	result := &StreamObjectFinalResult{
		Object:       final,
		Text:         o.text,
		FinishReason: finishReason,
		Usage:        usage,
	}
	o.mux.publish(ctx, streamEvent{kind: EventFinish})
	o.future.resolve(result)
	o.notifyFinish(ctx, result, nil)
}

// notifyFinish fires OnFinish, if set, through the panic-safe dispatcher.
func (o *streamOrchestrator) notifyFinish(ctx context.Context, result *StreamObjectFinalResult, err error) {
	if o.opts.OnFinish == nil {
		return
	}
	Notify(ctx, finishNotification{result: result, err: err}, func(ctx context.Context, n finishNotification) {
		o.opts.OnFinish(ctx, n.result, n.err)
	})
}

// finishNotification adapts OnFinish to the Listener[E] shape Notify wants.
type finishNotification struct {
	result *StreamObjectFinalResult
	err    error
}

// processPartial re-parses the accumulated text, publishing a new partial
// snapshot and any newly complete array elements.
func (o *streamOrchestrator) processPartial(ctx context.Context) {
	parsed := jsonparser.ParsePartialJSON(o.text)
	if parsed.Value == nil {
		return
	}

	if value, ok := o.strategy.partial(parsed.Value); ok && !partialsEqual(value, o.lastPartial) {
		o.lastPartial = value
		o.mux.publish(ctx, streamEvent{kind: EventPartialObject, partial: value})
	}

	if o.opts.Shape == ShapeArray {
		fresh, _ := o.strategy.newElements(parsed.Value, o.publishedCount)
		for i, elem := range fresh {
			idx := o.publishedCount + i
			o.mux.publish(ctx, streamEvent{kind: EventElement, element: elem, elementIndex: idx})
		}
		o.publishedCount += len(fresh)
	}
}

// publishFinalElements emits any array elements finalize() validated that
// newElements never got to (the last element, and any the stream ended
// before repairing into a look-ahead-complete snapshot).
func (o *streamOrchestrator) publishFinalElements(ctx context.Context, final interface{}) {
	elements, ok := final.([]interface{})
	if !ok {
		return
	}
	for i := o.publishedCount; i < len(elements); i++ {
		o.mux.publish(ctx, streamEvent{kind: EventElement, element: elements[i], elementIndex: i})
	}
	o.publishedCount = len(elements)
}

// fail records err on the terminal promise and on the full stream, per the
// engine's policy that only a final validation failure or hard failure
// rejects the terminal promise.
func (o *streamOrchestrator) fail(ctx context.Context, err error) {
	if o.outerSpan != nil {
		telemetry.RecordErrorOnSpan(o.outerSpan, err)
	}
	o.mux.publish(ctx, streamEvent{kind: EventError, err: err})
	o.future.reject(err)
	o.notifyFinish(ctx, nil, err)
}

// callStartTime is split out so tests can't accidentally depend on wall
// time ordering beyond "after start, before first chunk".
func callStartTime() time.Time {
	return time.Now()
}

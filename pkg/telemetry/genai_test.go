package telemetry

import "testing"

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func int64Ptr(v int64) *int64     { return &v }

func TestGenAIRequestAttributes_OmitsNilPointers(t *testing.T) {
	t.Parallel()

	attrs := GenAIRequestAttributes("openai", "gpt-4", nil, nil, nil, nil, nil, nil, nil)
	if len(attrs) != 2 {
		t.Fatalf("expected only system+model attributes, got %d: %v", len(attrs), attrs)
	}
}

func TestGenAIRequestAttributes_IncludesSetFields(t *testing.T) {
	t.Parallel()

	attrs := GenAIRequestAttributes(
		"anthropic", "claude-3",
		floatPtr(0.7), floatPtr(0.9), intPtr(40),
		floatPtr(0.1), floatPtr(0.2),
		[]string{"STOP"}, intPtr(1024),
	)

	want := map[string]bool{
		AttrGenAISystem:               true,
		AttrGenAIRequestModel:         true,
		AttrGenAIRequestTemperature:   true,
		AttrGenAIRequestTopP:          true,
		AttrGenAIRequestTopK:          true,
		AttrGenAIRequestFreqPenalty:   true,
		AttrGenAIRequestPresPenalty:   true,
		AttrGenAIRequestStopSequences: true,
		AttrGenAIRequestMaxTokens:     true,
	}
	if len(attrs) != len(want) {
		t.Fatalf("expected %d attributes, got %d: %v", len(want), len(attrs), attrs)
	}
	for _, a := range attrs {
		if !want[string(a.Key)] {
			t.Errorf("unexpected attribute key %q", a.Key)
		}
	}
}

func TestGenAIResponseAttributes(t *testing.T) {
	t.Parallel()

	attrs := GenAIResponseAttributes("stop", int64Ptr(10), int64Ptr(20))
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d: %v", len(attrs), attrs)
	}
}

func TestOperationAttributes(t *testing.T) {
	t.Parallel()

	attrs := OperationAttributes("ai.streamObject", "streamObject")
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d: %v", len(attrs), attrs)
	}
}

package observability

import (
	"context"
	"errors"
	"testing"
)

func TestFinishSpan_ToleratesNilAndErrors(t *testing.T) {
	FinishSpan(nil, nil)

	_, span := TraceFunction(context.Background(), "conversion", "convert")
	err := errors.New("boom")
	FinishSpan(span, &err)

	_, span = TraceFunction(context.Background(), "conversion", "convert")
	var none error
	FinishSpan(span, &none)
}

func TestMeter_CreatesCounters(t *testing.T) {
	counter, err := Meter().Int64Counter("test.counter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	counter.Add(context.Background(), 1)
}

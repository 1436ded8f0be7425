package natsadapter

import (
	"testing"
	"time"

	"github.com/samirrijal/reproj/internal/core/domain"
)

func TestConversionEventCodec(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 500, time.UTC)
	in := &domain.ConversionEvent{
		SourceCRS: "EPSG:4326",
		TargetCRS: "EPSG:3857",
		Kind:      "Polygon",
		Points:    5,
		Status:    "ok",
		Duration:  1500 * time.Microsecond,
		At:        at,
	}

	data, err := EncodeConversionEvent(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeConversionEvent(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if out.SourceCRS != in.SourceCRS || out.TargetCRS != in.TargetCRS || out.Kind != in.Kind {
		t.Errorf("unexpected identifiers %+v", out)
	}
	if out.Points != 5 || out.Status != "ok" {
		t.Errorf("unexpected counters %+v", out)
	}
	if out.Duration != in.Duration {
		t.Errorf("expected duration %s, got %s", in.Duration, out.Duration)
	}
	if !out.At.Equal(at) {
		t.Errorf("expected time %s, got %s", at, out.At)
	}
}

func TestDecodeConversionEvent_Garbage(t *testing.T) {
	if _, err := DecodeConversionEvent([]byte{0xff, 0xff, 0xff}); err == nil {
		t.Error("expected error for garbage payload")
	}
}

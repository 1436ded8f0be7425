package natsadapter

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/samirrijal/reproj/internal/core/domain"
)

// Subjects and streams.
const (
	SubjectJobs       = "geo.jobs."
	SubjectResults    = "geo.results."
	SubjectConversion = "geo.events.converted"

	StreamJobs    = "GEO_JOBS"
	StreamResults = "GEO_RESULTS"
	StreamEvents  = "GEO_EVENTS"
)

// EncodeConversionEvent serializes ev as a protobuf Struct.
func EncodeConversionEvent(ev *domain.ConversionEvent) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"source_crs":  ev.SourceCRS,
		"target_crs":  ev.TargetCRS,
		"kind":        ev.Kind,
		"points":      ev.Points,
		"status":      ev.Status,
		"duration_ms": float64(ev.Duration) / float64(time.Millisecond),
		"at":          ev.At.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("conversion event: %w", err)
	}
	return proto.Marshal(s)
}

// DecodeConversionEvent is the inverse of EncodeConversionEvent.
func DecodeConversionEvent(data []byte) (*domain.ConversionEvent, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("conversion event: %w", err)
	}
	f := s.GetFields()
	ev := &domain.ConversionEvent{
		SourceCRS: f["source_crs"].GetStringValue(),
		TargetCRS: f["target_crs"].GetStringValue(),
		Kind:      f["kind"].GetStringValue(),
		Points:    int(f["points"].GetNumberValue()),
		Status:    f["status"].GetStringValue(),
		Duration:  time.Duration(f["duration_ms"].GetNumberValue() * float64(time.Millisecond)),
	}
	if at := f["at"].GetStringValue(); at != "" {
		t, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("conversion event time: %w", err)
		}
		ev.At = t
	}
	return ev, nil
}

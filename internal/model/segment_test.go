package model

import "testing"

func TestNewSegmentDefaults(t *testing.T) {
	seg := NewSegment("s1", 1.5, 4.0, "slice.wav")

	if seg.ImportanceScore != 0.5 {
		t.Errorf("ImportanceScore = %v, want 0.5", seg.ImportanceScore)
	}
	if seg.Markers == nil || len(seg.Markers) != 0 {
		t.Errorf("Markers = %v, want empty list", seg.Markers)
	}
	if seg.Topics == nil || len(seg.Topics) != 0 {
		t.Errorf("Topics = %v, want empty list", seg.Topics)
	}
	if seg.Relations == nil || len(seg.Relations) != 0 {
		t.Errorf("Relations = %v, want empty list", seg.Relations)
	}
	if seg.IsCoreArgument {
		t.Error("IsCoreArgument should default to false")
	}
	if seg.Duration() != 2.5 {
		t.Errorf("Duration() = %v, want 2.5", seg.Duration())
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		want       string
	}{
		{"zero", 0, 0, "00:00 - 00:00"},
		{"sub-minute", 5.2, 42.9, "00:05 - 00:42"},
		{"minute boundary", 59.9, 60.0, "00:59 - 01:00"},
		{"over an hour keeps minutes", 3661, 3725, "61:01 - 62:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := NewSegment("s", tt.start, tt.end, "")
			if got := seg.FormatTimestamp(); got != tt.want {
				t.Errorf("FormatTimestamp() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelationTypeLabel(t *testing.T) {
	tests := []struct {
		typ  RelationType
		want string
	}{
		{RelationContrast, "转折"},
		{RelationAddition, "递进"},
		{RelationCausality, "因果"},
		{RelationReferenceBack, "回溯"},
		{RelationSummary, "总结"},
		{RelationExample, "举例"},
		{RelationParallel, "并列"},
		{RelationUnknown, "未知"},
		{RelationType("BOGUS"), "未知"},
	}

	for _, tt := range tests {
		if got := tt.typ.Label(); got != tt.want {
			t.Errorf("Label(%v) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

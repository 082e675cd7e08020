package pathgen

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorHistoryRingBuffer(t *testing.T) {
	h := NewErrorHistory(5, nil, false)

	for i := 0; i < 8; i++ {
		h.Record(CategoryValidation, i, fmt.Errorf("failure %d", i))
	}

	recent := h.Recent(10)
	if len(recent) != 5 {
		t.Fatalf("Recent returned %d records, capacity is 5", len(recent))
	}
	// Oldest first: records 0..2 were overwritten.
	if recent[0].LevelID != 3 {
		t.Errorf("oldest retained record is level %d, want 3", recent[0].LevelID)
	}
	if recent[4].LevelID != 7 {
		t.Errorf("newest record is level %d, want 7", recent[4].LevelID)
	}

	stats := h.Stats()
	if stats.Total != 8 {
		t.Errorf("Total = %d, want 8", stats.Total)
	}
	if stats.ByCategory[CategoryValidation] != 8 {
		t.Errorf("validation count = %d, want 8", stats.ByCategory[CategoryValidation])
	}
}

func TestErrorHistoryCategories(t *testing.T) {
	h := NewErrorHistory(10, nil, false)
	h.Record(CategoryInput, 1, errors.New("a"))
	h.Record(CategoryBalance, 1, errors.New("b"))
	h.Record(CategoryBalance, 2, errors.New("c"))
	h.Record(CategoryCritical, 3, errors.New("d"))

	stats := h.Stats()
	if stats.ByCategory[CategoryInput] != 1 ||
		stats.ByCategory[CategoryBalance] != 2 ||
		stats.ByCategory[CategoryCritical] != 1 {
		t.Errorf("unexpected category counts: %v", stats.ByCategory)
	}
}

func TestErrorHistoryExportImport(t *testing.T) {
	h := NewErrorHistory(4, nil, false)
	for i := 0; i < 6; i++ {
		h.Record(CategoryReachability, i, fmt.Errorf("failure %d", i))
	}

	data := h.Export()
	if data.Capacity != 4 {
		t.Errorf("exported capacity = %d, want 4", data.Capacity)
	}
	if data.Total != 6 {
		t.Errorf("exported total = %d, want 6", data.Total)
	}
	if len(data.Records) != 4 {
		t.Fatalf("exported %d records, want 4", len(data.Records))
	}

	restored := NewErrorHistory(4, nil, false)
	restored.Import(data)

	got := restored.Export()
	if got.Total != data.Total {
		t.Errorf("restored total = %d, want %d", got.Total, data.Total)
	}
	if len(got.Records) != len(data.Records) {
		t.Fatalf("restored %d records, want %d", len(got.Records), len(data.Records))
	}
	for i := range data.Records {
		if got.Records[i].Message != data.Records[i].Message {
			t.Errorf("record %d message = %q, want %q", i, got.Records[i].Message, data.Records[i].Message)
		}
	}
	if got.Counts[CategoryReachability] != 6 {
		t.Errorf("restored reachability count = %d, want 6", got.Counts[CategoryReachability])
	}
}

func TestErrorHistoryImportTruncatesOverflow(t *testing.T) {
	var records []ErrorRecord
	for i := 0; i < 10; i++ {
		records = append(records, ErrorRecord{Category: CategoryValidation, LevelID: i, Message: fmt.Sprintf("r%d", i)})
	}

	h := NewErrorHistory(3, nil, false)
	h.Import(ErrorData{Capacity: 3, Total: 10, Records: records})

	recent := h.Recent(10)
	if len(recent) != 3 {
		t.Fatalf("retained %d records, capacity is 3", len(recent))
	}
	if recent[0].LevelID != 7 || recent[2].LevelID != 9 {
		t.Errorf("retained wrong window: %v", recent)
	}
}

func TestCriticalErrorUnwrap(t *testing.T) {
	inner := errors.New("nan propagation")
	err := &CriticalError{Stage: "geometry", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("CriticalError should unwrap to its cause")
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		err  error
		want Category
	}{
		{&InputValidationError{Field: "x"}, CategoryInput},
		{&PathValidationError{}, CategoryValidation},
		{&ReachabilityError{}, CategoryReachability},
		{&CriticalError{}, CategoryCritical},
		{errors.New("other"), CategoryValidation},
	}
	for _, tt := range tests {
		if got := categoryOf(tt.err); got != tt.want {
			t.Errorf("categoryOf(%T) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

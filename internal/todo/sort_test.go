package todo

import (
	"testing"
	"time"

	"github.com/hitoshi/focusez/internal/model"
)

func timePtr(t time.Time) *time.Time { return &t }

func names(todos []model.Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.TaskName
	}
	return out
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestSortForDisplay_PriorityRegardlessOfInputOrder は入力順に関係なく優先度順になることを検証する。
func TestSortForDisplay_PriorityRegardlessOfInputOrder(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	low := model.Todo{TaskName: "low", Priority: model.PriorityLow}
	urgent := model.Todo{TaskName: "urgent", Priority: model.PriorityUrgent}
	high := model.Todo{TaskName: "high", Priority: model.PriorityHigh, Deadline: timePtr(t1)}

	inputs := [][]model.Todo{
		{low, urgent, high},
		{high, low, urgent},
		{urgent, high, low},
	}
	want := []string{"urgent", "high", "low"}

	for _, in := range inputs {
		if got := names(SortForDisplay(in)); !equalNames(got, want) {
			t.Errorf("SortForDisplay(%v) = %v, want %v", names(in), got, want)
		}
	}
}

func TestSortForDisplay_DeadlineTieBreak(t *testing.T) {
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(48 * time.Hour)

	in := []model.Todo{
		{TaskName: "late", Priority: model.PriorityHigh, Deadline: timePtr(late)},
		{TaskName: "early", Priority: model.PriorityHigh, Deadline: timePtr(early)},
	}

	got := names(SortForDisplay(in))
	if want := []string{"early", "late"}; !equalNames(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestSortForDisplay_StableWithoutDeadlines は期限なしの同順位が元の順序を保つことを検証する。
func TestSortForDisplay_StableWithoutDeadlines(t *testing.T) {
	in := []model.Todo{
		{TaskName: "a", Priority: model.PriorityMedium},
		{TaskName: "b", Priority: model.PriorityMedium},
		{TaskName: "c", Priority: model.PriorityMedium},
	}

	got := names(SortForDisplay(in))
	if want := []string{"a", "b", "c"}; !equalNames(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSortForDisplay_DoesNotMutateInput(t *testing.T) {
	in := []model.Todo{
		{TaskName: "low", Priority: model.PriorityLow},
		{TaskName: "urgent", Priority: model.PriorityUrgent},
	}

	_ = SortForDisplay(in)

	if in[0].TaskName != "low" {
		t.Error("input slice was reordered")
	}
}

// TestSortForDisplay_MixedDeadlineTies は同じ優先度に期限なしのタスクが挟まる場合の並びを固定する。
// 期限なしはどれとも同順位なので、隣接しない期限ありのタスクは入れ替わらない。
func TestSortForDisplay_MixedDeadlineTies(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(24 * time.Hour)
	early := model.Todo{TaskName: "early", Priority: model.PriorityHigh, Deadline: timePtr(t0)}
	late := model.Todo{TaskName: "late", Priority: model.PriorityHigh, Deadline: timePtr(t1)}
	none := model.Todo{TaskName: "none", Priority: model.PriorityHigh}

	tests := []struct {
		name  string
		input []model.Todo
		want  []string
	}{
		{"undated between", []model.Todo{late, none, early}, []string{"late", "none", "early"}},
		{"dated adjacent", []model.Todo{late, early, none}, []string{"early", "late", "none"}},
		{"undated first", []model.Todo{none, late, early}, []string{"none", "early", "late"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(SortForDisplay(tt.input))
			if !equalNames(got, tt.want) {
				t.Errorf("SortForDisplay() = %v, want %v", got, tt.want)
			}
		})
	}
}

package capture

import (
	"testing"
	"time"
)

func TestToaster_ExpiresAfterDuration(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	toaster := NewToaster()
	toaster.now = func() time.Time { return now }

	shown := toaster.Show("Bookmark saved!")
	if !shown.ExpiresAt.Equal(now.Add(ToastDuration)) {
		t.Errorf("ExpiresAt = %v, want %v", shown.ExpiresAt, now.Add(ToastDuration))
	}

	now = now.Add(2 * time.Second)
	if got := toaster.Active(); len(got) != 1 || got[0].ID != shown.ID {
		t.Fatalf("Active = %+v, want the shown toast", got)
	}

	now = now.Add(time.Second)
	if got := toaster.Active(); len(got) != 0 {
		t.Errorf("Active = %+v, want empty after 3s", got)
	}
}

func TestToaster_KeepsOrder(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	toaster := NewToaster()
	toaster.now = func() time.Time { return now }

	first := toaster.Show("one")
	now = now.Add(time.Second)
	second := toaster.Show("two")

	got := toaster.Active()
	if len(got) != 2 || got[0].ID != first.ID || got[1].ID != second.ID {
		t.Errorf("Active = %+v, want [one two]", got)
	}
}

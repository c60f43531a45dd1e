package timeline

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

func at(ms int64) time.Time {
	return epoch.Add(time.Duration(ms) * time.Millisecond)
}

func ev(kind Kind, ms int64) Event {
	return Event{Kind: kind, Time: at(ms)}
}

func TestReconstruct(t *testing.T) {
	cases := []struct {
		name        string
		events      []Event
		now         int64
		wantElapsed int64
		wantPaused  int64
		wantRunning bool
	}{
		{
			name: "empty history",
			now:  10000,
		},
		{
			name:        "single start runs until now",
			events:      []Event{ev(KindStart, 1000)},
			now:         4500,
			wantElapsed: 3500,
			wantRunning: true,
		},
		{
			name:        "paused at the pause instant",
			events:      []Event{ev(KindStart, 0), ev(KindPause, 5000)},
			now:         5000,
			wantElapsed: 5000,
		},
		{
			name:        "open pause extends to now",
			events:      []Event{ev(KindStart, 0), ev(KindPause, 5000)},
			now:         6500,
			wantElapsed: 5000,
			wantPaused:  1500,
		},
		{
			name:        "resumed after pause",
			events:      []Event{ev(KindStart, 0), ev(KindPause, 5000), ev(KindResume, 8000)},
			now:         10000,
			wantElapsed: 7000,
			wantPaused:  3000,
			wantRunning: true,
		},
		{
			name: "stopped tally",
			events: []Event{
				ev(KindStart, 0), ev(KindPause, 5000), ev(KindResume, 8000), ev(KindStop, 9000),
			},
			now:         9000,
			wantElapsed: 6000,
			wantPaused:  3000,
		},
		{
			name:        "second start resets",
			events:      []Event{ev(KindStart, 0), ev(KindStop, 1000), ev(KindStart, 2000)},
			now:         3000,
			wantElapsed: 1000,
			wantRunning: true,
		},
		{
			name:        "start keeps an open pause",
			events:      []Event{ev(KindStart, 0), ev(KindPause, 1000), ev(KindStart, 2000), ev(KindStop, 2500)},
			now:         9000,
			wantElapsed: 500,
			wantPaused:  8000,
		},
		{
			name:        "resume after restart closes the earlier pause",
			events:      []Event{ev(KindStart, 0), ev(KindPause, 5000), ev(KindStart, 10000), ev(KindResume, 12000)},
			now:         15000,
			wantElapsed: 3000,
			wantPaused:  7000,
			wantRunning: true,
		},
		{
			name:        "pause without start only flips state",
			events:      []Event{ev(KindPause, 1000)},
			now:         3000,
			wantPaused:  2000,
			wantRunning: false,
		},
		{
			name:        "resume without pause reopens interval",
			events:      []Event{ev(KindStart, 0), ev(KindResume, 2000)},
			now:         3000,
			wantElapsed: 1000,
			wantRunning: true,
		},
		{
			name:        "unknown kind is skipped",
			events:      []Event{ev(KindStart, 0), {Kind: "lap", Time: at(500)}},
			now:         2000,
			wantElapsed: 2000,
			wantRunning: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Reconstruct(tc.events, at(tc.now))
			if got.ElapsedMs() != tc.wantElapsed {
				t.Fatalf("ElapsedMs = %d, want %d", got.ElapsedMs(), tc.wantElapsed)
			}
			if got.PausedMs() != tc.wantPaused {
				t.Fatalf("PausedMs = %d, want %d", got.PausedMs(), tc.wantPaused)
			}
			if got.Running != tc.wantRunning {
				t.Fatalf("Running = %v, want %v", got.Running, tc.wantRunning)
			}
		})
	}
}

func TestReconstruct_StoppedTallyIgnoresNow(t *testing.T) {
	events := []Event{ev(KindStart, 0), ev(KindPause, 5000), ev(KindResume, 8000), ev(KindStop, 9000)}
	for _, now := range []int64{9000, 60000, 3600000} {
		got := Reconstruct(events, at(now))
		if got.ElapsedMs() != 6000 || got.Running {
			t.Fatalf("Reconstruct at %d = %+v, want elapsed 6000 not running", now, got)
		}
	}
}

func TestReconstruct_IsPure(t *testing.T) {
	events := []Event{ev(KindStart, 0), ev(KindPause, 5000), ev(KindResume, 8000)}
	before := Clone(events)

	first := Reconstruct(events, at(12000))
	second := Reconstruct(events, at(12000))
	if first != second {
		t.Fatalf("Reconstruct not deterministic: %+v vs %+v", first, second)
	}
	for i := range events {
		if events[i] != before[i] {
			t.Fatalf("Reconstruct mutated input at %d: %+v", i, events[i])
		}
	}
}

func TestReconstruct_OutOfOrderFoldsByIndex(t *testing.T) {
	// Pause timestamped before start: the fold still applies index order.
	events := []Event{ev(KindStart, 5000), ev(KindPause, 2000)}
	got := Reconstruct(events, at(6000))
	if got.ElapsedMs() != -3000 {
		t.Fatalf("ElapsedMs = %d, want -3000", got.ElapsedMs())
	}
}

func TestStateTotal(t *testing.T) {
	s := State{Elapsed: 2 * time.Second, Paused: 500 * time.Millisecond}
	if s.Total() != 2500*time.Millisecond {
		t.Fatalf("Total = %v, want 2.5s", s.Total())
	}
}

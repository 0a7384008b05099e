package reservation

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOverlapsInclusiveBoundary(t *testing.T) {
	existingStart := date("2024-01-10")
	existingEnd := date("2024-01-15")

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"inside", date("2024-01-12"), date("2024-01-14"), true},
		{"straddles end", date("2024-01-12"), date("2024-01-20"), true},
		{"straddles start", date("2024-01-05"), date("2024-01-10"), true},
		{"contains", date("2024-01-01"), date("2024-01-31"), true},
		{"shared boundary day conflicts", date("2024-01-15"), date("2024-01-20"), true},
		{"adjacent next day is free", date("2024-01-16"), date("2024-01-20"), false},
		{"adjacent previous day is free", date("2024-01-05"), date("2024-01-09"), false},
		{"single day equal to end", date("2024-01-15"), date("2024-01-15"), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Overlaps(c.start, c.end, existingStart, existingEnd); got != c.want {
				t.Fatalf("Overlaps(%s, %s) = %v, want %v", c.start.Format("2006-01-02"), c.end.Format("2006-01-02"), got, c.want)
			}
		})
	}
}

func TestCanTransitionAndApply(t *testing.T) {
	if !CanTransition(StatusActive, StatusCancelled) {
		t.Fatalf("expected active -> cancelled allowed")
	}
	if CanTransition(StatusCancelled, StatusActive) {
		t.Fatalf("expected cancelled -> active not allowed")
	}
	// self transition counts as a no-op
	if !CanTransition(StatusCancelled, StatusCancelled) {
		t.Fatalf("expected cancelled -> cancelled allowed")
	}

	r := &Reservation{Status: StatusActive}
	now := time.Now()
	if err := ApplyTransition(r, StatusCancelled, now); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if r.Status != StatusCancelled {
		t.Fatalf("expected status cancelled, got %s", r.Status)
	}
	if r.CancelledAt == nil || !r.CancelledAt.Equal(now) {
		t.Fatalf("expected cancelled_at set")
	}

	if err := ApplyTransition(r, StatusActive, now); err == nil {
		t.Fatalf("expected reactivation to fail")
	}
}

func TestDayTruncates(t *testing.T) {
	in := time.Date(2024, 1, 10, 17, 45, 12, 0, time.UTC)
	if got := Day(in); !got.Equal(date("2024-01-10")) {
		t.Fatalf("Day(%v) = %v", in, got)
	}
}

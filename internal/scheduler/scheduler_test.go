package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock — управляемые часы для тестов.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestValidateCronExpr(t *testing.T) {
	valid := []string{"* * * * *", "*/15 * * * *", "0 9 * * MON-FRI", "@hourly"}
	for _, expr := range valid {
		if err := ValidateCronExpr(expr); err != nil {
			t.Errorf("%q should be valid: %v", expr, err)
		}
	}

	invalid := []string{"", "not a cron", "61 * * * *", "* * * *"}
	for _, expr := range invalid {
		if err := ValidateCronExpr(expr); !errors.Is(err, ErrInvalidCron) {
			t.Errorf("%q: expected ErrInvalidCron, got %v", expr, err)
		}
	}
}

func TestCalculateNext_Timezone(t *testing.T) {
	schedule, err := ParseCron("0 9 * * *")
	if err != nil {
		t.Fatal(err)
	}

	from := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	utc := CalculateNext(schedule, time.UTC, from)
	if want := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC); !utc.Equal(want) {
		t.Errorf("UTC: expected %v, got %v", want, utc)
	}

	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	berlin := CalculateNext(schedule, loc, from)
	// 09:00 CET = 08:00 UTC зимой
	if want := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC); !berlin.Equal(want) {
		t.Errorf("Berlin: expected %v, got %v", want, berlin)
	}
	if berlin.Location() != time.UTC {
		t.Error("result should be in UTC")
	}
}

func TestLoadLocation_Fallback(t *testing.T) {
	if LoadLocation("") != time.UTC {
		t.Error("empty timezone should be UTC")
	}
	if LoadLocation("Mars/Olympus") != time.UTC {
		t.Error("unknown timezone should fall back to UTC")
	}
}

func TestNew_Validation(t *testing.T) {
	job := func(context.Context) error { return nil }

	if _, err := New(Config{Cron: "bad", Job: job}); !errors.Is(err, ErrInvalidCron) {
		t.Errorf("expected ErrInvalidCron, got %v", err)
	}
	if _, err := New(Config{Cron: "* * * * *"}); err == nil {
		t.Error("expected error for missing job")
	}
}

func TestScheduler_Tick(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 10, 10, 0, 30, 0, time.UTC)}
	calls := 0

	s, err := New(Config{
		Cron:  "*/5 * * * *",
		Job:   func(context.Context) error { calls++; return nil },
		Clock: clock.Now,
	})
	if err != nil {
		t.Fatal(err)
	}

	if want := time.Date(2026, 1, 10, 10, 5, 0, 0, time.UTC); !s.NextDue().Equal(want) {
		t.Fatalf("expected first due %v, got %v", want, s.NextDue())
	}

	ran, err := s.Tick(context.Background())
	if ran || err != nil {
		t.Fatalf("job should not run before due time: ran=%v err=%v", ran, err)
	}

	clock.Advance(5 * time.Minute)
	ran, err = s.Tick(context.Background())
	if !ran || err != nil {
		t.Fatalf("job should run at due time: ran=%v err=%v", ran, err)
	}
	if calls != 1 || s.Runs() != 1 {
		t.Errorf("expected 1 run, got calls=%d runs=%d", calls, s.Runs())
	}
	if want := time.Date(2026, 1, 10, 10, 10, 0, 0, time.UTC); !s.NextDue().Equal(want) {
		t.Errorf("expected next due %v, got %v", want, s.NextDue())
	}

	// повторный тик в ту же минуту ничего не делает
	if ran, _ := s.Tick(context.Background()); ran {
		t.Error("job should not run twice for one due time")
	}
}

func TestScheduler_TickJobError(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)}
	boom := errors.New("boom")

	s, err := New(Config{
		Cron:  "* * * * *",
		Job:   func(context.Context) error { return boom },
		Clock: clock.Now,
	})
	if err != nil {
		t.Fatal(err)
	}

	clock.Advance(time.Minute)
	ran, err := s.Tick(context.Background())
	if !ran || !errors.Is(err, boom) {
		t.Fatalf("expected ran with boom, got ran=%v err=%v", ran, err)
	}
	if !s.NextDue().After(clock.Now()) {
		t.Error("failed run should still advance the schedule")
	}
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	s, err := New(Config{
		Cron:         "@yearly",
		Job:          func(context.Context) error { return nil },
		TickInterval: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := s.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if s.Runs() != 0 {
		t.Errorf("yearly job should not run, got %d", s.Runs())
	}
}

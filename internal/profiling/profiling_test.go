package profiling

import (
	"strings"
	"testing"
	"time"
)

func TestTrackAccumulates(t *testing.T) {
	ResetFrame()
	for range 3 {
		stop := Track("test.Op")
		time.Sleep(time.Millisecond)
		stop()
	}
	if d := Snapshot()["test.Op"]; d < 3*time.Millisecond {
		t.Fatalf("tracked %v, want at least 3ms", d)
	}
	if !strings.HasPrefix(TopN(1), "test.Op:") {
		t.Fatalf("TopN(1) = %q", TopN(1))
	}
	ResetFrame()
	if len(Snapshot()) != 0 {
		t.Fatal("ResetFrame left totals behind")
	}
}

func TestCounters(t *testing.T) {
	ResetCounters()
	Add("b.count", 2)
	Add("a.count", 1)
	Add("b.count", 3)
	if Counter("b.count") != 5 {
		t.Fatalf("Counter = %d", Counter("b.count"))
	}
	ResetFrame()
	if got := Counters(); got != "a.count=1 b.count=5" {
		t.Fatalf("Counters() = %q", got)
	}
}

func TestFormatMs(t *testing.T) {
	cases := map[float64]string{0: "0ms", 4.2: "4.2ms", 12: "12ms"}
	for in, want := range cases {
		if got := formatMs(in); got != want {
			t.Errorf("formatMs(%v) = %q, want %q", in, got, want)
		}
	}
}

package format

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	cases := []struct {
		name string
		in   time.Duration
		want string
	}{
		{"zero", 0, "0s"},
		{"negative clamps to zero", -3 * time.Second, "0s"},
		{"seconds only", 42 * time.Second, "42s"},
		{"minutes show seconds", 60 * time.Second, "1m 0s"},
		{"hour minute second", 3661 * time.Second, "1h 1m 1s"},
		{"hours keep zero minutes", 3605 * time.Second, "1h 0m 5s"},
		{"day keeps zero lower units", 90000 * time.Second, "1d 1h 0m 0s"},
		{"multi day", (2*86400 + 3*3600 + 4*60 + 5) * time.Second, "2d 3h 4m 5s"},
		{"sub-second truncates", 900 * time.Millisecond, "0s"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Duration(tc.in); got != tc.want {
				t.Fatalf("Duration(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

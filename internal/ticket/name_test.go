package ticket

import (
	"strings"
	"testing"
)

func noneTaken(string) bool { return false }

func takenSet(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestChannelNameBasic(t *testing.T) {
	got := ChannelName("ticket-", "Alice", "0001", noneTaken)
	if got != "ticket-alice-0001" {
		t.Fatalf("ChannelName = %q, want %q", got, "ticket-alice-0001")
	}
}

func TestChannelNameCollisionSuffix(t *testing.T) {
	got := ChannelName("ticket-", "alice", "0001", takenSet("ticket-alice-0001"))
	if got != "ticket-alice-0001-1" {
		t.Fatalf("ChannelName = %q, want %q", got, "ticket-alice-0001-1")
	}
}

func TestChannelNameSkipsSuccessiveCollisions(t *testing.T) {
	got := ChannelName("ticket-", "alice", "0001",
		takenSet("ticket-alice-0001", "ticket-alice-0001-1", "ticket-alice-0001-2"))
	if got != "ticket-alice-0001-3" {
		t.Fatalf("ChannelName = %q, want %q", got, "ticket-alice-0001-3")
	}
}

func TestChannelNameSanitizesDisplayName(t *testing.T) {
	got := ChannelName("ticket-", "Dr. Странный User!!", "42", noneTaken)
	if strings.ContainsAny(got, " .!") {
		t.Fatalf("ChannelName = %q should not contain raw punctuation", got)
	}
	if !strings.HasPrefix(got, "ticket-") {
		t.Fatalf("ChannelName = %q should keep prefix", got)
	}
	if !strings.HasSuffix(got, "-42") {
		t.Fatalf("ChannelName = %q should keep tag", got)
	}
}

func TestChannelNameEmptyDisplayNameFallsBack(t *testing.T) {
	got := ChannelName("ticket-", "!!!", "7", noneTaken)
	if got != "ticket-user-7" {
		t.Fatalf("ChannelName = %q, want %q", got, "ticket-user-7")
	}
}

func TestChannelNameTruncated(t *testing.T) {
	long := strings.Repeat("a", 200)
	got := ChannelName("ticket-", long, "1234", noneTaken)
	if n := len([]rune(got)); n > 100 {
		t.Fatalf("ChannelName length = %d, want <= 100", n)
	}
}

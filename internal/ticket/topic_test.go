package ticket

import "testing"

func TestEncodeTopicRoundTrip(t *testing.T) {
	topic := EncodeTopic("123456789012345678")
	owner, ok := ParseOwner(topic)
	if !ok {
		t.Fatalf("ParseOwner(%q) ok = false, want true", topic)
	}
	if owner != "123456789012345678" {
		t.Fatalf("owner = %q, want %q", owner, "123456789012345678")
	}
}

func TestParseOwnerSurvivesSurroundingText(t *testing.T) {
	owner, ok := ParseOwner("Support thread, be nice. owner_id=42 (do not edit)")
	if !ok || owner != "42" {
		t.Fatalf("ParseOwner = (%q, %v), want (\"42\", true)", owner, ok)
	}
}

func TestParseOwnerMalformed(t *testing.T) {
	cases := []struct {
		name  string
		topic string
	}{
		{"empty topic", ""},
		{"no token", "just a channel about owls"},
		{"empty value", "owner_id="},
		{"non-numeric value", "owner_id=alice"},
		{"key inside word", "downer_id=123"},
		{"trailing junk in token", "owner_id=123abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if owner, ok := ParseOwner(tc.topic); ok {
				t.Fatalf("ParseOwner(%q) = (%q, true), want ok=false", tc.topic, owner)
			}
		})
	}
}

func TestParseOwnerFirstValidTokenWins(t *testing.T) {
	owner, ok := ParseOwner("owner_id=bad owner_id=77")
	if !ok || owner != "77" {
		t.Fatalf("ParseOwner = (%q, %v), want (\"77\", true)", owner, ok)
	}
}

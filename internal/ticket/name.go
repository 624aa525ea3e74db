package ticket

import (
	"fmt"
	"strings"
)

// maxChannelNameLen is Discord's channel name limit.
const maxChannelNameLen = 100

// ChannelName computes a unique channel name for a new ticket:
// prefix + sanitized display name + "-" + tag, with a numeric suffix when the
// candidate collides with any existing sibling channel. The result is
// truncated to the platform limit.
func ChannelName(prefix, displayName, tag string, taken func(string) bool) string {
	base := prefix + sanitizeName(displayName)
	if tag != "" {
		base += "-" + sanitizeName(tag)
	}

	name := base
	for i := 1; taken(name); i++ {
		name = fmt.Sprintf("%s-%d", base, i)
	}
	return truncateName(name)
}

// sanitizeName lowercases and maps the display name onto Discord's channel
// name alphabet: letters, digits and single dashes.
func sanitizeName(s string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "user"
	}
	return out
}

func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= maxChannelNameLen {
		return name
	}
	return string(runes[:maxChannelNameLen])
}

package ticket

import "strings"

// Channel topics carry ticket ownership as a strict key-value token so the
// open-ticket set can be rebuilt from live channel state alone. The token
// must survive human edits to the surrounding topic text.
const (
	ownerKey    = "owner_id="
	topicHeader = "Ticket channel."
)

// EncodeTopic builds the topic text for a new ticket channel.
func EncodeTopic(ownerID string) string {
	return topicHeader + " " + ownerKey + ownerID
}

// ParseOwner extracts the owner user ID from a channel topic. A missing or
// malformed token yields ok=false, never an error: such a channel is simply
// unowned.
func ParseOwner(topic string) (string, bool) {
	for _, field := range strings.Fields(topic) {
		if !strings.HasPrefix(field, ownerKey) {
			continue
		}
		id := field[len(ownerKey):]
		if !validSnowflake(id) {
			continue
		}
		return id, true
	}
	return "", false
}

// validSnowflake accepts non-empty all-digit Discord IDs.
func validSnowflake(id string) bool {
	if id == "" {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}

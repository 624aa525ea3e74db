package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// maxDeletedContentLen keeps audit lines comfortably under the platform's
// 2000-character message limit.
const maxDeletedContentLen = 1900

// parseUserMention extracts the user ID from a mention token, accepting
// both the <@id> and nickname <@!id> forms.
func parseUserMention(token string) (string, bool) {
	if !strings.HasPrefix(token, "<@") || !strings.HasSuffix(token, ">") {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(token, "<@"), ">")
	id = strings.TrimPrefix(id, "!")
	if id == "" {
		return "", false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return id, true
}

// truncateContent shortens content to at most limit runes, appending an
// ellipsis when anything was cut.
func truncateContent(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "…"
}

// channelTag returns a short per-user suffix for ticket channel names: the
// legacy discriminator when the account still has one, otherwise the last
// four digits of the user ID.
func channelTag(u *discordgo.User) string {
	if u.Discriminator != "" && u.Discriminator != "0" {
		return u.Discriminator
	}
	if len(u.ID) <= 4 {
		return u.ID
	}
	return u.ID[len(u.ID)-4:]
}

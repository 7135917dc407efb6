package bot

import (
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/bwmarrin/discordgo"
)

// parseSnowflake converts a Discord string ID to int64
func parseSnowflake(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

func formatChatID(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// GetDisplayName returns the guild nickname for a user, falling back to
// their username
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.GuildMember(guildID, userID)
	if err == nil && member.Nick != "" {
		return member.Nick
	}
	if err == nil && member.User != nil {
		return member.User.Username
	}
	user, err := s.User(userID)
	if err != nil {
		log.Errorf("Failed to look up user %s: %v", userID, err)
		return userID
	}
	return user.Username
}

// FormatDelta renders a delta with an explicit sign
func FormatDelta(delta int64) string {
	if delta > 0 {
		return fmt.Sprintf("+%d", delta)
	}
	return strconv.FormatInt(delta, 10)
}

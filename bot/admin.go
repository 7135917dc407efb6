package bot

import (
	"context"
	"fmt"

	"karma/service"

	"github.com/bwmarrin/discordgo"
)

// adminChecker answers chat administrator checks against the live
// Discord permission state. Results are deliberately not cached so a
// revoked administrator loses multi-point access immediately.
type adminChecker struct {
	session *discordgo.Session
}

// NewAdminChecker creates the transport-side administrator check
func NewAdminChecker(session *discordgo.Session) service.ChatAdminChecker {
	return &adminChecker{session: session}
}

func (c *adminChecker) IsChatAdministrator(ctx context.Context, chatID, externalUserID int64) (bool, error) {
	channelID := formatChatID(chatID)
	userID := formatChatID(externalUserID)

	perms, err := c.session.UserChannelPermissions(userID, channelID)
	if err != nil {
		return false, fmt.Errorf("failed to get channel permissions: %w", err)
	}
	return perms&discordgo.PermissionAdministrator != 0 ||
		perms&discordgo.PermissionManageServer != 0, nil
}

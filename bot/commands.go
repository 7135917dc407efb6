package bot

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"karma/models"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) registerCommands() error {
	var manageServer int64 = discordgo.PermissionManageServer

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "top",
			Description: "Show the channel's score ranking",
		},
		{
			Name:        "history",
			Description: "Show a member's score history",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to show history for (defaults to you)",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "full",
					Description: "Include entries from before the last reset",
					Required:    false,
				},
			},
		},
		{
			Name:        "give",
			Description: "Pick a member to score, then send the amount as your next message",
		},
		{
			Name:                     "reset",
			Description:              "Zero all scores in this channel, keeping history",
			DefaultMemberPermissions: &manageServer,
		},
		{
			Name:                     "policy",
			Description:              "Choose who may move more than one point",
			DefaultMemberPermissions: &manageServer,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "policy",
					Description: "Multi-point policy",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "anyone", Value: string(models.PolicyAnyone)},
						{Name: "managers only", Value: string(models.PolicyManagersOnly)},
					},
				},
			},
		},
		{
			Name:                     "manager",
			Description:              "Grant or revoke a member's manager status",
			DefaultMemberPermissions: &manageServer,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to update",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "grant",
					Description: "true to grant, false to revoke",
					Required:    true,
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "top":
		b.handleTop(s, i)
	case "history":
		b.handleHistory(s, i)
	case "give":
		b.handleGive(s, i)
	case "reset":
		b.handleReset(s, i)
	case "policy":
		b.handlePolicy(s, i)
	case "manager":
		b.handleManager(s, i)
	}
}

func (b *Bot) handleTop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	chatID, err := parseSnowflake(i.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", i.ChannelID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	ranking, err := b.chatService.Ranking(ctx, chatID, 10)
	if err != nil {
		log.Errorf("Error getting ranking for chat %d: %v", chatID, err)
		b.respondWithError(s, i, "Unable to load the ranking. Please try again.")
		return
	}
	b.respond(s, i, formatRanking(ranking))
}

func (b *Bot) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	chatID, err := parseSnowflake(i.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", i.ChannelID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	targetUser := i.Member.User
	full := false
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			targetUser = opt.UserValue(s)
		case "full":
			full = opt.BoolValue()
		}
	}

	targetID, err := parseSnowflake(targetUser.ID)
	if err != nil {
		log.Errorf("Error parsing user ID %s: %v", targetUser.ID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	account, err := b.accountService.GetOrCreateAccount(ctx, chatID, targetID, targetUser.Username)
	if err != nil {
		log.Errorf("Error getting account for user %d: %v", targetID, err)
		b.respondWithError(s, i, "Unable to load the history. Please try again.")
		return
	}

	var history *models.AccountHistory
	if full {
		history, err = b.ledgerService.FullHistory(ctx, chatID, account.ID)
	} else {
		history, err = b.ledgerService.RecentHistory(ctx, chatID, account.ID)
	}
	if err != nil {
		log.Errorf("Error getting history for account %d: %v", account.ID, err)
		b.respondWithError(s, i, "Unable to load the history. Please try again.")
		return
	}
	b.respond(s, i, formatHistory(history))
}

func (b *Bot) handleReset(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	chatID, err := parseSnowflake(i.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", i.ChannelID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if err := b.chatService.ResetScores(ctx, chatID); err != nil {
		log.Errorf("Error resetting scores in chat %d: %v", chatID, err)
		b.respondWithError(s, i, "Unable to reset scores. Please try again.")
		return
	}
	b.respond(s, i, "Scores reset. History from before the reset is kept.")
}

func (b *Bot) handlePolicy(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	chatID, err := parseSnowflake(i.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", i.ChannelID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) != 1 {
		b.respondWithError(s, i, "Please pick a policy.")
		return
	}
	policy := models.MultiPointPolicy(options[0].StringValue())

	if err := b.chatService.SetMultiPointPolicy(ctx, chatID, policy); err != nil {
		log.Errorf("Error setting policy in chat %d: %v", chatID, err)
		b.respondWithError(s, i, "Unable to update the policy. Please try again.")
		return
	}
	b.respond(s, i, fmt.Sprintf("Multi-point changes are now open to: **%s**", policy))
}

func (b *Bot) handleManager(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	chatID, err := parseSnowflake(i.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", i.ChannelID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var targetUser *discordgo.User
	grant := false
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			targetUser = opt.UserValue(s)
		case "grant":
			grant = opt.BoolValue()
		}
	}
	if targetUser == nil {
		b.respondWithError(s, i, "Please pick a member.")
		return
	}

	targetID, err := parseSnowflake(targetUser.ID)
	if err != nil {
		log.Errorf("Error parsing user ID %s: %v", targetUser.ID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if _, err := b.accountService.GetOrCreateAccount(ctx, chatID, targetID, targetUser.Username); err != nil {
		log.Errorf("Error getting account for user %d: %v", targetID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	if err := b.accountService.SetManager(ctx, chatID, targetID, grant); err != nil {
		log.Errorf("Error setting manager flag for user %d: %v", targetID, err)
		b.respondWithError(s, i, "Unable to update manager status. Please try again.")
		return
	}

	verb := "is no longer"
	if grant {
		verb = "is now"
	}
	b.respond(s, i, fmt.Sprintf("**%s** %s a score manager.", targetUser.Username, verb))
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
		},
	})
	if err != nil {
		log.Errorf("Error responding to command: %v", err)
	}
}

func (b *Bot) respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

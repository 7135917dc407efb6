package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"karma/service"

	"github.com/bwmarrin/discordgo"
)

const targetButtonPrefix = "karma_target_"

// maximum buttons Discord allows per message: 5 rows of 5
const maxTargetButtons = 25

// handleGive presents a target picker; the pressed button arms a
// pending action finished by the actor's next message
func (b *Bot) handleGive(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	chatID, err := parseSnowflake(i.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", i.ChannelID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	accounts, err := b.accountService.ListAccounts(ctx, chatID)
	if err != nil {
		log.Errorf("Error listing accounts for chat %d: %v", chatID, err)
		b.respondWithError(s, i, "Unable to load members. Please try again.")
		return
	}
	if len(accounts) == 0 {
		b.respondWithError(s, i, "Nobody has an account here yet.")
		return
	}
	if len(accounts) > maxTargetButtons {
		accounts = accounts[:maxTargetButtons]
	}

	var rows []discordgo.MessageComponent
	var row discordgo.ActionsRow
	for _, account := range accounts {
		row.Components = append(row.Components, discordgo.Button{
			Label:    account.Username,
			Style:    discordgo.SecondaryButton,
			CustomID: fmt.Sprintf("%s%d", targetButtonPrefix, account.ID),
		})
		if len(row.Components) == 5 {
			rows = append(rows, row)
			row = discordgo.ActionsRow{}
		}
	}
	if len(row.Components) > 0 {
		rows = append(rows, row)
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    "Who gets the points? Send the amount as your next message.",
			Components: rows,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to give command: %v", err)
	}
}

func (b *Bot) handleTargetSelect(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	ctx := context.Background()

	chatID, err := parseSnowflake(i.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", i.ChannelID, err)
		return
	}
	actorID, err := parseSnowflake(i.Member.User.ID)
	if err != nil {
		log.Errorf("Error parsing actor ID %s: %v", i.Member.User.ID, err)
		return
	}
	targetAccountID, err := parseSnowflake(strings.TrimPrefix(customID, targetButtonPrefix))
	if err != nil {
		log.Errorf("Error parsing target button ID %s: %v", customID, err)
		return
	}

	err = b.pending.Select(ctx, chatID, actorID, i.Member.User.Username, targetAccountID)
	switch {
	case err == nil:
		b.respondWithError(s, i, "Got it. Send the amount, for example `+3`, `++` or `-2`.")
	case errors.Is(err, service.ErrSelfTarget):
		b.respondWithError(s, i, "You cannot change your own score.")
	default:
		var notFound *service.TargetNotFoundError
		if errors.As(err, &notFound) {
			b.respondWithError(s, i, "That member is not in this channel anymore.")
			return
		}
		log.Errorf("Error arming pending action in chat %d: %v", chatID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
	}
}

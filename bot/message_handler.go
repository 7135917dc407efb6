package bot

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"karma/models"
	"karma/parser"
	"karma/service"

	"github.com/bwmarrin/discordgo"
)

// handleMessage is the engine's front door: every chat message is
// checked for a pending amount, a reply-mode score, or in-message
// intents, in that order.
func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	ctx := context.Background()

	chatID, err := parseSnowflake(m.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", m.ChannelID, err)
		return
	}
	actorID, err := parseSnowflake(m.Author.ID)
	if err != nil {
		log.Errorf("Error parsing author ID %s: %v", m.Author.ID, err)
		return
	}
	actorName := m.Author.Username

	if err := b.ensureParticipant(ctx, s, m, chatID, actorID, actorName); err != nil {
		log.Errorf("Error registering participant %d in chat %d: %v", actorID, chatID, err)
		return
	}

	// an armed target selection consumes the actor's next message
	if b.pending.Pending(chatID, actorID) {
		b.completePending(ctx, s, m, chatID, actorID, actorName)
		return
	}

	if ref := m.ReferencedMessage; ref != nil && ref.Author != nil && !ref.Author.Bot {
		b.handleReply(ctx, s, m, chatID, actorID, actorName, ref)
		return
	}

	intents := parser.Parse(m.Content)
	if len(intents) == 0 {
		return
	}

	result, err := b.engine.Process(ctx, chatID, actorID, actorName, intents)
	if err != nil {
		log.Errorf("Error processing intents in chat %d: %v", chatID, err)
		return
	}
	b.respondWithResult(s, m.ChannelID, result)
}

func (b *Bot) handleReply(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, chatID, actorID int64, actorName string, ref *discordgo.Message) {
	targetID, err := parseSnowflake(ref.Author.ID)
	if err != nil {
		log.Errorf("Error parsing replied-to author ID %s: %v", ref.Author.ID, err)
		return
	}

	result, err := b.engine.ProcessReply(ctx, chatID, actorID, actorName, targetID, ref.Author.Username, m.Content)
	if err != nil {
		log.Errorf("Error processing reply in chat %d: %v", chatID, err)
		return
	}
	b.respondWithResult(s, m.ChannelID, result)
}

func (b *Bot) completePending(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, chatID, actorID int64, actorName string) {
	change, err := b.pending.CompleteWithMessage(ctx, chatID, actorID, actorName, m.Content)
	switch {
	case err == nil:
		b.sendMessage(s, m.ChannelID, formatApplied(*change))
	case errors.Is(err, service.ErrAmountRetry):
		b.sendMessage(s, m.ChannelID, "I need an amount like `+3` or `--` to finish that. Try again.")
	case errors.Is(err, service.ErrPermissionDenied):
		b.sendMessage(s, m.ChannelID, permissionDeniedMessage)
	case errors.Is(err, service.ErrNoPendingAction):
		// expired between the check and the completion, drop silently
	default:
		log.Errorf("Error completing pending action in chat %d: %v", chatID, err)
		b.sendMessage(s, m.ChannelID, "Something went wrong, the score was not changed.")
	}
}

// ensureParticipant makes sure the chat and the message author exist
// before any scoring runs
func (b *Bot) ensureParticipant(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, chatID, actorID int64, actorName string) error {
	chatName := m.ChannelID
	if channel, err := s.State.Channel(m.ChannelID); err == nil && channel.Name != "" {
		chatName = channel.Name
	}
	if _, err := b.chatService.GetOrCreateChat(ctx, chatID, chatName); err != nil {
		return err
	}
	_, err := b.accountService.GetOrCreateAccount(ctx, chatID, actorID, actorName)
	return err
}

func (b *Bot) respondWithResult(s *discordgo.Session, channelID string, result *models.ProcessResult) {
	message := formatResult(result)
	if message == "" {
		return
	}
	b.sendMessage(s, channelID, message)
}

func (b *Bot) sendMessage(s *discordgo.Session, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		log.Errorf("Error sending message to channel %s: %v", channelID, err)
	}
}

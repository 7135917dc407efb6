package bot

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"karma/events"
	"karma/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

type Bot struct {
	config         Config
	session        *discordgo.Session
	accountService service.AccountService
	chatService    service.ChatService
	ledgerService  service.LedgerService
	engine         service.EngineService
	pending        *service.PendingActions
	eventBus       *events.Bus
}

// NewSession creates the Discord session the bot and the administrator
// check share. The caller wires it into New once the services exist.
func NewSession(config Config) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAllWithoutPrivileged | discordgo.IntentsMessageContent
	return dg, nil
}

func New(config Config, dg *discordgo.Session, accountService service.AccountService, chatService service.ChatService, ledgerService service.LedgerService, engine service.EngineService, pending *service.PendingActions, eventBus *events.Bus) (*Bot, error) {

	bot := &Bot{
		config:         config,
		session:        dg,
		accountService: accountService,
		chatService:    chatService,
		ledgerService:  ledgerService,
		engine:         engine,
		pending:        pending,
		eventBus:       eventBus,
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Register message and component handlers
	dg.AddHandler(bot.handleMessage)
	dg.AddHandler(bot.handleTargetInteraction)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Announce committed score changes in the chat they happened in
	eventBus.Subscribe(events.EventTypeScoresReset, func(ctx context.Context, event events.Event) {
		reset, ok := event.(events.ScoresResetEvent)
		if !ok {
			return
		}
		channelID := formatChatID(reset.ChatID)
		if _, err := dg.ChannelMessageSend(channelID, "All scores have been reset. History is preserved."); err != nil {
			log.Errorf("Failed to announce score reset in %s: %v", channelID, err)
		}
	})

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// handleTargetInteraction routes target-picker button presses
func (b *Bot) handleTargetInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	customID := i.MessageComponentData().CustomID
	if strings.HasPrefix(customID, targetButtonPrefix) {
		b.handleTargetSelect(s, i, customID)
	}
}

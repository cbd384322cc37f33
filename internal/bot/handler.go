package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"stock_advisor/internal/aggregator"
	"stock_advisor/internal/ai"
	"stock_advisor/internal/config"
	"stock_advisor/internal/models"
	"stock_advisor/internal/telegram"
)

const newsLookbackDays = 14

// ChatSender is the slice of the chat platform the handler uses.
type ChatSender interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts *telegram.SendOptions) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string) error
	SendTyping(ctx context.Context, chatID int64) error
}

// MarketAggregator assembles analysis bundles and serves the news menu.
type MarketAggregator interface {
	Aggregate(ctx context.Context, symbol string, windowDays int) (*aggregator.Outcome, error)
	LatestNews(ctx context.Context, symbol string, days int) models.NewsResult
}

// Generator produces analysis text from bundles and streams chat.
type Generator interface {
	Analyze(ctx context.Context, bundle *models.AnalysisBundle, profile ai.Profile) (string, error)
	ChatStream(ctx context.Context, text string) (ai.TokenStream, error)
}

// Bot wires intent routing, aggregation, generation and delivery for
// one chat platform. One HandleUpdate call per inbound message; calls
// for different chats run concurrently.
type Bot struct {
	cfg      *config.Config
	chat     ChatSender
	agg      MarketAggregator
	gen      Generator
	sessions *SessionStore
	acl      *ACL
	log      zerolog.Logger
}

func New(cfg *config.Config, chat ChatSender, agg MarketAggregator, gen Generator, log zerolog.Logger) *Bot {
	return &Bot{
		cfg:      cfg,
		chat:     chat,
		agg:      agg,
		gen:      gen,
		sessions: NewSessionStore(),
		acl:      NewACL(cfg.AllowedChatIDs),
		log:      log,
	}
}

// HandleUpdate processes one inbound update end to end.
func (b *Bot) HandleUpdate(ctx context.Context, upd telegram.Update) {
	if upd.Message == nil || strings.TrimSpace(upd.Message.Text) == "" {
		return
	}
	chatID := upd.Message.Chat.ID
	text := strings.TrimSpace(upd.Message.Text)

	if !b.acl.Allows(chatID) {
		b.log.Warn().
			Int64("chat_id", chatID).
			Str("username", upd.Message.From.Username).
			Str("text", text).
			Msg("acl denied")
		// No reply: denied users must not learn the bot exists.
		return
	}
	b.log.Info().
		Int64("chat_id", chatID).
		Str("username", upd.Message.From.Username).
		Msg("acl allowed")

	if text == "/start" {
		b.sendMenu(ctx, chatID,
			"👋 Hello there! I'm your AI assistant bot.\n\n"+
				"Use the menu below or type a stock symbol (e.g. AMD) to get a rating.")
		return
	}

	session := b.sessions.Get(chatID)

	switch intent := Route(text, session); intent.Kind {
	case IntentTickerLookup:
		b.handleTicker(ctx, chatID, intent.Symbol)
	case IntentMenuNews:
		b.handleMenuNews(ctx, chatID, session)
	case IntentMenuHelp:
		b.sendMenu(ctx, chatID,
			"Send a stock ticker like AMD or NVDA to get a rating, press "+
				MenuDeepDiveLabel+" for a longer analysis, or start a message with ! to just chat.")
	case IntentMenuDeepDive:
		b.handleDeepDive(ctx, chatID, session)
	case IntentFreeformChat:
		b.handleFreeform(ctx, chatID, session, intent.Text)
	default:
		b.sendMenu(ctx, chatID, fmt.Sprintf("🪞 You said: %s", intent.Text))
	}
}

// handleTicker runs the short-rating flow: staged progress messages,
// typing signals for the whole duration, then the analysis.
func (b *Bot) handleTicker(ctx context.Context, chatID int64, symbol string) {
	b.sendMenu(ctx, chatID, "⏳ Request started...")

	stop := b.typing(chatID).Start(ctx)
	defer stop()

	b.sendMenu(ctx, chatID, fmt.Sprintf("Fetching data for %s", symbol))

	outcome, err := b.agg.Aggregate(ctx, symbol, ai.ShortRating.WindowDays())
	if err != nil {
		b.log.Error().Err(err).Str("symbol", symbol).Msg("aggregation failed")
		stop()
		b.sendMenu(ctx, chatID, fmt.Sprintf("⚠️ I couldn't reach the market data service for %s. Please try again in a moment.", symbol))
		return
	}
	if outcome.NotFound() {
		stop()
		b.sendMenu(ctx, chatID, suggestionMessage(symbol, outcome.Suggestions))
		return
	}

	b.sendMenu(ctx, chatID, fmt.Sprintf("🤖 Feeding the beast with %s data", symbol))

	analysis, err := b.gen.Analyze(ctx, outcome.Bundle, ai.ShortRating)

	b.sendMenu(ctx, chatID, "Generating response!")
	stop()

	if err != nil {
		b.log.Error().Err(err).Str("symbol", symbol).Msg("generation failed")
		b.sendMenu(ctx, chatID, "⚠️ I couldn't generate an analysis right now. Please try again in a moment.")
		return
	}
	b.sendFormatted(ctx, chatID, analysis)
}

// handleDeepDive reruns the flow over the long window for the chat's
// last symbol.
func (b *Bot) handleDeepDive(ctx context.Context, chatID int64, session *Session) {
	symbol := session.LastSymbol()
	if symbol == "" {
		b.sendMenu(ctx, chatID, "No stock provided, run a quick search before deep diving. 🤿")
		return
	}

	b.sendMenu(ctx, chatID, fmt.Sprintf("Let's go! Deep diving into %s 🤿", symbol))

	stop := b.typing(chatID).Start(ctx)
	defer stop()

	outcome, err := b.agg.Aggregate(ctx, symbol, ai.DeepRating.WindowDays())
	if err != nil {
		b.log.Error().Err(err).Str("symbol", symbol).Msg("aggregation failed")
		stop()
		b.sendMenu(ctx, chatID, fmt.Sprintf("⚠️ I couldn't reach the market data service for %s. Please try again in a moment.", symbol))
		return
	}
	if outcome.NotFound() {
		stop()
		b.sendMenu(ctx, chatID, suggestionMessage(symbol, outcome.Suggestions))
		return
	}

	b.sendMenu(ctx, chatID, fmt.Sprintf("🤖 Feeding the beast with %s data", symbol))

	analysis, err := b.gen.Analyze(ctx, outcome.Bundle, ai.DeepRating)

	b.sendMenu(ctx, chatID, "Generating response!")
	stop()

	if err != nil {
		b.log.Error().Err(err).Str("symbol", symbol).Msg("generation failed")
		b.sendMenu(ctx, chatID, "⚠️ I couldn't generate an analysis right now. Please try again in a moment.")
		return
	}
	b.sendFormatted(ctx, chatID, analysis)
}

// handleMenuNews answers the news shortcut from the reply keyboard.
func (b *Bot) handleMenuNews(ctx context.Context, chatID int64, session *Session) {
	symbol := session.LastSymbol()
	if symbol == "" {
		b.sendMenu(ctx, chatID, "Send a stock ticker (e.g. AMD) first, then press '"+MenuNewsLabel+"'.")
		return
	}
	result := b.agg.LatestNews(ctx, symbol, newsLookbackDays)
	b.sendMenu(ctx, chatID, newsMessage(symbol, result))
}

// handleFreeform streams a chat generation into a single edited
// message. A new freeform message cancels the chat's previous in-flight
// generation; the cancelled one finishes with its partial buffer.
func (b *Bot) handleFreeform(ctx context.Context, chatID int64, session *Session, text string) {
	msgID, err := b.chat.SendMessage(ctx, chatID, "🤖 Generating response...", nil)
	if err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("placeholder send failed")
		return
	}

	stop := b.typing(chatID).Start(ctx)
	defer stop()

	genCtx := session.BeginGeneration(ctx)
	defer session.EndGeneration()

	stream, err := b.gen.ChatStream(genCtx, text)
	if err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("chat stream failed to start")
		stop()
		_ = b.chat.EditMessage(ctx, chatID, msgID, "⚠️ I couldn't generate a response right now. Please try again in a moment.")
		return
	}

	renderer := &Renderer{
		Edit: func(content string) error {
			return b.chat.EditMessage(ctx, chatID, msgID, content)
		},
		MinInterval: b.cfg.EditInterval,
		Cancelled:   func() bool { return genCtx.Err() != nil },
	}

	final, err := renderer.Render(stream)
	stop()

	switch {
	case err == nil || errors.Is(err, context.Canceled):
		// The renderer already flushed the (possibly partial) buffer.
	case final == "":
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("chat stream failed")
		_ = b.chat.EditMessage(ctx, chatID, msgID, "⚠️ I couldn't generate a response right now. Please try again in a moment.")
	default:
		// Partial text was delivered before the stream broke; keep it.
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("chat stream ended early")
	}
}

func (b *Bot) typing(chatID int64) *Notifier {
	return &Notifier{
		Interval: b.cfg.TypingInterval,
		Signal: func() {
			// Best effort: a dropped typing signal is invisible anyway.
			_ = b.chat.SendTyping(context.Background(), chatID)
		},
	}
}

// sendMenu delivers plain text with the persistent reply keyboard.
func (b *Bot) sendMenu(ctx context.Context, chatID int64, text string) {
	_, err := b.chat.SendMessage(ctx, chatID, text, &telegram.SendOptions{
		ReplyMarkup: telegram.Menu(MenuNewsLabel, MenuHelpLabel, MenuDeepDiveLabel),
	})
	if err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
	}
}

// sendFormatted tries Markdown, then escaped MarkdownV2, then plain
// text, so a formatting quirk in generated output never loses the
// analysis.
func (b *Bot) sendFormatted(ctx context.Context, chatID int64, text string) {
	if _, err := b.chat.SendMessage(ctx, chatID, text, &telegram.SendOptions{ParseMode: "Markdown"}); err == nil {
		return
	}
	escaped := telegram.EscapeMarkdownV2(text)
	if _, err := b.chat.SendMessage(ctx, chatID, escaped, &telegram.SendOptions{ParseMode: "MarkdownV2"}); err == nil {
		return
	}
	if _, err := b.chat.SendMessage(ctx, chatID, text, nil); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("final send failed")
	}
}

func suggestionMessage(symbol string, matches []models.SymbolMatch) string {
	if len(matches) == 0 {
		return fmt.Sprintf("🔎 I couldn't find %q and have no close matches. Double-check the ticker.", symbol)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔎 I couldn't find %q. Did you mean:\n", symbol)
	for _, m := range matches {
		fmt.Fprintf(&sb, "• %s (%s)\n", m.Description, m.Symbol)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func newsMessage(symbol string, result models.NewsResult) string {
	switch result.Status {
	case models.FieldOK:
		lines := []string{fmt.Sprintf("📰 Latest news for %s (last 2w):", symbol)}
		for _, item := range result.Items {
			lines = append(lines, "• "+item.Headline)
			if item.URL != "" {
				lines = append(lines, item.URL)
			}
		}
		return strings.Join(lines, "\n")
	case models.FieldEmpty:
		return fmt.Sprintf("No recent news found for %s.", symbol)
	default:
		return fmt.Sprintf("⚠️ I couldn't fetch news for %s right now. Please try again later.", symbol)
	}
}

package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Recommender/models"
)

// sender is the part of tgbotapi.BotAPI the notifier needs
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends recommendations to a chat
type Telegram struct {
	bot    sender
	chatID int64
	logger zerolog.Logger
}

// NewTelegram authorizes the bot and returns a notifier for chatID
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	t := newTelegram(bot, chatID)
	t.logger.Info().Str("username", bot.Self.UserName).Msg("Authorized on Telegram")
	return t, nil
}

func newTelegram(bot sender, chatID int64) *Telegram {
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram_notifier").Logger(),
	}
}

// Notify sends rec as a formatted message. The context is not used by the
// bot API and is only checked before sending.
func (t *Telegram) Notify(ctx context.Context, rec models.FinalRecommendation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, FormatMessage(rec))
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error().Err(err).Str("ticker", rec.Ticker).Msg("Failed to send message")
		return fmt.Errorf("telegram send %s: %w", rec.Ticker, err)
	}
	return nil
}

var directionIcons = map[string]string{
	"buy":   "🟢",
	"sell":  "🔴",
	"avoid": "🔴",
	"hold":  "⚪",
	"stay":  "⚪",
}

// FormatMessage renders a recommendation as plain text
func FormatMessage(rec models.FinalRecommendation) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s: %s (confidence %.0f%%)\n", directionIcons[rec.Direction], rec.Ticker, strings.ToUpper(rec.Direction), rec.Confidence*100)
	if rec.Reason != "" {
		fmt.Fprintf(&sb, "%s\n", rec.Reason)
	}
	if rec.Caution != "" {
		fmt.Fprintf(&sb, "⚠️ %s\n", rec.Caution)
	}
	if rec.SuggestedPrice > 0 {
		fmt.Fprintf(&sb, "Suggested price: %.2f\n", rec.SuggestedPrice)
	}
	if rec.SellFraction > 0 {
		fmt.Fprintf(&sb, "Sell %.0f%% of the position\n", rec.SellFraction*100)
	}
	if rec.Condition != "" {
		fmt.Fprintf(&sb, "Condition: %s\n", rec.Condition)
	}
	if rec.Timing.Note != "" {
		fmt.Fprintf(&sb, "Timing: %s\n", rec.Timing.Note)
	}
	if rec.Original.Direction != "" && rec.Original.Direction != rec.Direction {
		fmt.Fprintf(&sb, "Advisor proposed %s, overridden by safety checks\n", rec.Original.Direction)
	}
	for _, note := range rec.Annotations {
		fmt.Fprintf(&sb, "• %s\n", note)
	}
	if !rec.AsOf.IsZero() {
		fmt.Fprintf(&sb, "As of %s", models.DayKey(rec.AsOf))
	}

	return strings.TrimRight(sb.String(), "\n")
}

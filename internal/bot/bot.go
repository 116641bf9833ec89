// Package bot is the Telegram gateway. It translates updates into
// service calls and renders reports back as Markdown messages. No game
// rules live here.
package bot

import (
	"context"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tengfone/deadtext/internal/game/service"
	apperrors "github.com/tengfone/deadtext/internal/platform/errors"
)

// lowQuotaWarning is the remaining-message threshold that triggers a
// warning after a turn.
const lowQuotaWarning = 10

// Bot wires Telegram updates to the game service.
type Bot struct {
	api *tgbotapi.BotAPI
	svc *service.Service
}

// New builds the gateway over an authorized Telegram client.
func New(api *tgbotapi.BotAPI, svc *service.Service) *Bot {
	return &Bot{api: api, svc: svc}
}

// Run consumes updates until the context ends. Each update is handled
// on its own goroutine; the service serializes per player.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleAction(ctx, update.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	playerID := playerIDOf(chatID)

	switch msg.Command() {
	case "start":
		b.send(chatID, welcomeText, difficultyKeyboard())
	case "help":
		b.send(chatID, helpText(), nil)
	case "status":
		b.sendStatus(ctx, chatID, playerID)
	case "inventory":
		b.sendInventory(ctx, chatID, playerID)
	case "daily":
		b.sendDaily(ctx, chatID, playerID)
	case "location":
		b.sendLocation(ctx, chatID, playerID)
	case "stats":
		b.sendStats(ctx, chatID, playerID)
	default:
		b.send(chatID, "Unknown command. Use /help to see what I understand.", nil)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		log.Printf("event=callback_ack_failed error=%q", err)
	}
	if cq.Message == nil {
		return
	}

	chatID := cq.Message.Chat.ID
	playerID := playerIDOf(chatID)
	displayName := cq.From.FirstName

	switch {
	case strings.HasPrefix(cq.Data, "difficulty_"):
		difficulty := strings.TrimPrefix(cq.Data, "difficulty_")
		report, err := b.svc.StartSession(ctx, playerID, displayName, difficulty)
		if err != nil {
			log.Printf("event=start_failed player=%s error=%q", playerID, err)
			b.send(chatID, "❌ Sorry, there was an error starting your game. Please try again with /start", nil)
			return
		}
		b.send(chatID, renderStart(report), statusKeyboard())
	case cq.Data == "action_status":
		b.sendStatus(ctx, chatID, playerID)
	case cq.Data == "action_inventory":
		b.sendInventory(ctx, chatID, playerID)
	case cq.Data == "start_new":
		b.send(chatID, welcomeText, difficultyKeyboard())
	}
}

func (b *Bot) handleAction(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	playerID := playerIDOf(chatID)

	report, err := b.svc.SubmitAction(ctx, playerID, msg.Text)
	if err != nil {
		b.send(chatID, actionErrorText(err), nil)
		return
	}

	if report.Result.Ineffective {
		b.send(chatID, ineffectiveRestText, statusKeyboard())
		return
	}

	if report.Session.Active {
		b.send(chatID, renderTurn(report), statusKeyboard())
		if report.QuotaRemaining < lowQuotaWarning {
			b.send(chatID, quotaWarningText(report.QuotaRemaining), nil)
		}
		return
	}

	b.send(chatID, renderGameOver(report), newGameKeyboard())
}

func (b *Bot) send(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("event=send_failed chat=%d error=%q", chatID, err)
	}
}

func (b *Bot) sendStatus(ctx context.Context, chatID int64, playerID string) {
	sess, err := b.svc.GetSession(ctx, playerID)
	if err != nil {
		b.send(chatID, noGameText(err), nil)
		return
	}
	b.send(chatID, renderStatus(sess), nil)
}

func (b *Bot) sendInventory(ctx context.Context, chatID int64, playerID string) {
	sess, err := b.svc.GetSession(ctx, playerID)
	if err != nil {
		b.send(chatID, noGameText(err), nil)
		return
	}
	b.send(chatID, renderInventory(sess), nil)
}

func (b *Bot) sendDaily(ctx context.Context, chatID int64, playerID string) {
	decision, err := b.svc.CheckQuota(ctx, playerID)
	if err != nil {
		log.Printf("event=quota_peek_failed player=%s error=%q", playerID, err)
		b.send(chatID, "❌ Could not check your daily quota. Please try again.", nil)
		return
	}
	b.send(chatID, renderDaily(decision, b.svc.Table().RateLimit.MaxMessagesPerDay), nil)
}

func (b *Bot) sendLocation(ctx context.Context, chatID int64, playerID string) {
	sess, err := b.svc.GetSession(ctx, playerID)
	if err != nil {
		b.send(chatID, noGameText(err), nil)
		return
	}
	b.send(chatID, renderLocation(sess), nil)
}

func (b *Bot) sendStats(ctx context.Context, chatID int64, playerID string) {
	sess, err := b.svc.GetSession(ctx, playerID)
	if err == nil {
		b.send(chatID, renderCurrentStats(sess, b.svc.Table().DaysToWin), nil)
		return
	}
	if !apperrors.IsCode(err, apperrors.CodeNoActiveSession) {
		b.send(chatID, noGameText(err), nil)
		return
	}

	summary, err := b.svc.HistorySummary(ctx, playerID)
	if err != nil {
		log.Printf("event=stats_failed player=%s error=%q", playerID, err)
		b.send(chatID, "❌ Could not load your statistics. Please try again.", nil)
		return
	}
	b.send(chatID, renderHistoryStats(summary), nil)
}

func playerIDOf(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

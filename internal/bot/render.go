package bot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tengfone/deadtext/internal/game/domain/session"
	"github.com/tengfone/deadtext/internal/game/domain/turn"
	"github.com/tengfone/deadtext/internal/game/ratelimit"
	"github.com/tengfone/deadtext/internal/game/service"
	"github.com/tengfone/deadtext/internal/game/storage"
	apperrors "github.com/tengfone/deadtext/internal/platform/errors"
)

const welcomeText = "🧟‍♂️ Welcome to DeadText! 🧟‍♀️\n\n" +
	"The world has been overrun by zombies, and your survival depends on " +
	"your choices. Choose your difficulty level to begin:"

const ineffectiveRestText = "😴 You try to rest, but without food and water " +
	"it does you no good. Find supplies first."

func difficultyKeyboard() *tgbotapi.InlineKeyboardMarkup {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Easy", "difficulty_easy"),
			tgbotapi.NewInlineKeyboardButtonData("Normal", "difficulty_normal"),
			tgbotapi.NewInlineKeyboardButtonData("Hard", "difficulty_hard"),
		),
	)
	return &markup
}

func statusKeyboard() *tgbotapi.InlineKeyboardMarkup {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Status", "action_status"),
			tgbotapi.NewInlineKeyboardButtonData("🎒 Inventory", "action_inventory"),
		),
	)
	return &markup
}

func newGameKeyboard() *tgbotapi.InlineKeyboardMarkup {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Start New Game", "start_new"),
		),
	)
	return &markup
}

func helpText() string {
	return "🎮 *DeadText Commands*:\n\n" +
		"/start - Start a new game\n" +
		"/help - Show this help message\n" +
		"/status - Check your current status\n" +
		"/inventory - View your inventory\n" +
		"/daily - Check remaining messages\n" +
		"/location - See current location\n" +
		"/stats - View survival statistics\n\n" +
		"*Available Actions*:\n" +
		"🔍 Search - Look for supplies (try: 'search the building')\n" +
		"⚔️ Fight - Combat nearby zombies (try: 'attack the zombie')\n" +
		"😴 Rest - Recover health (try: 'rest for a while')\n" +
		"🏃 Move - Change location (try: 'move to the store')\n\n" +
		"*Tips*:\n" +
		"- Balance your resources carefully\n" +
		"- Fighting without weapons is dangerous\n" +
		"- Rest when your health is low\n" +
		"- Survive for 30 days to win!"
}

func renderStart(report service.StartReport) string {
	sess := report.Session
	return fmt.Sprintf("🎮 *Game Started!*\nDifficulty: _%s_\n\n%s\n\n"+
		"❤️ Health: %d | 🍗 Food: %s | 💧 Water: %s\n\n"+
		"_What would you like to do? Describe your action..._",
		sess.Difficulty, report.Scenario,
		sess.Health, fmtRes(sess.Food), fmtRes(sess.Water))
}

func renderTurn(report service.TurnReport) string {
	parts := make([]string, 0, 3)
	if report.OutcomeText != "" {
		parts = append(parts, report.OutcomeText)
	}
	if report.NextScenario != "" {
		parts = append(parts, report.NextScenario)
	}
	parts = append(parts, "_What do you do next?_")
	return strings.Join(parts, "\n\n")
}

func renderGameOver(report service.TurnReport) string {
	sess := report.Session
	var banner string
	switch report.Outcome {
	case turn.OutcomeWon:
		banner = "🏆 *You survived the apocalypse!*"
	default:
		banner = "💀 *You did not survive.*"
	}

	weapons := "None"
	if len(sess.Weapons) > 0 {
		weapons = strings.Join(sess.Weapons, ", ")
	}

	final := fmt.Sprintf("*Final Status*\n"+
		"Survived for: %d days\n"+
		"Difficulty: %s\n"+
		"Final Health: %d\n"+
		"Supplies Left: %s food, %s water\n"+
		"Weapons: %s",
		sess.CurrentDay, sess.Difficulty, sess.Health,
		fmtRes(sess.Food), fmtRes(sess.Water), weapons)

	parts := []string{banner}
	if report.OutcomeText != "" {
		parts = append(parts, report.OutcomeText)
	}
	parts = append(parts, final, "_Your story has ended. Ready to survive again?_")
	return strings.Join(parts, "\n\n")
}

func renderStatus(sess session.Session) string {
	weapons := "None"
	if len(sess.Weapons) > 0 {
		weapons = strings.Join(sess.Weapons, ", ")
	}
	return fmt.Sprintf("📊 *Status Report - Day %d*\n\n"+
		"❤️ Health: %d\n"+
		"🍗 Food: %s\n"+
		"💧 Water: %s\n"+
		"🔫 Weapons: %s\n"+
		"📍 Location: %s\n"+
		"⚙️ Difficulty: %s",
		sess.CurrentDay, sess.Health, fmtRes(sess.Food), fmtRes(sess.Water),
		weapons, sess.Location, sess.Difficulty)
}

func renderInventory(sess session.Session) string {
	weapons := "- None"
	if len(sess.Weapons) > 0 {
		lines := make([]string, 0, len(sess.Weapons))
		for _, w := range sess.Weapons {
			lines = append(lines, "- "+w)
		}
		weapons = strings.Join(lines, "\n")
	}

	items := "- None"
	if names := sortedItems(sess.Inventory); len(names) > 0 {
		lines := make([]string, 0, len(names))
		for _, name := range names {
			lines = append(lines, fmt.Sprintf("- %s: %d", name, sess.Inventory[name]))
		}
		items = strings.Join(lines, "\n")
	}

	return fmt.Sprintf("🎒 *Inventory Contents*\n\n"+
		"*Supplies*:\n- Food: %s\n- Water: %s\n\n"+
		"*Weapons*:\n%s\n\n"+
		"*Other Items*:\n%s",
		fmtRes(sess.Food), fmtRes(sess.Water), weapons, items)
}

func renderLocation(sess session.Session) string {
	return fmt.Sprintf("📍 *Current Location*\n\n"+
		"You are at: *%s*\n\n"+
		"_Use natural language to move to a new location, for example:_\n"+
		"'move to the pharmacy' or 'sneak to the grocery store'", sess.Location)
}

func renderDaily(decision ratelimit.Decision, max int) string {
	until := time.Until(decision.NextReset)
	if until < 0 {
		until = 0
	}
	hours := int(until.Hours())
	minutes := int(until.Minutes()) % 60

	return fmt.Sprintf("📊 *Daily Message Status*\n\n"+
		"Messages Remaining: %d/%d\n"+
		"Reset in: %dh %dm\n\n"+
		"_The limit resets at midnight UTC._",
		decision.Remaining, max, hours, minutes)
}

func renderCurrentStats(sess session.Session, daysToWin int) string {
	itemCount := 0
	for _, qty := range sess.Inventory {
		itemCount += qty
	}
	left := daysToWin - sess.CurrentDay
	if left < 0 {
		left = 0
	}
	return fmt.Sprintf("📊 *Current Game Statistics*\n\n"+
		"Days Survived: %d\n"+
		"Current Health: %d%%\n"+
		"Resources: %s food, %s water\n"+
		"Weapons Found: %d\n"+
		"Items Collected: %d\n\n"+
		"_Keep surviving! %d days left to win!_",
		sess.CurrentDay, sess.Health, fmtRes(sess.Food), fmtRes(sess.Water),
		len(sess.Weapons), itemCount, left)
}

func renderHistoryStats(summary storage.HistorySummary) string {
	if summary.GamesPlayed == 0 {
		return "No game history found.\n\n_Use /start to begin your first game!_"
	}
	return fmt.Sprintf("📊 *Survival Statistics*\n\n"+
		"Games Played: %d\n"+
		"Best Run: %d days\n"+
		"Average Survival: %.1f days\n"+
		"Wins: %d\n\n"+
		"_Use /start to begin a new game!_",
		summary.GamesPlayed, summary.BestRun, summary.AverageDays, summary.Wins)
}

func quotaWarningText(remaining int) string {
	return fmt.Sprintf("⚠️ You have %d messages remaining today. The limit resets at midnight UTC.", remaining)
}

func noGameText(err error) string {
	if apperrors.IsCode(err, apperrors.CodeNoActiveSession) {
		return "No active game found. Use /start to begin a new game."
	}
	return "❌ Something went wrong. Please try again."
}

func actionErrorText(err error) string {
	switch apperrors.GetCode(err) {
	case apperrors.CodeQuotaExceeded:
		reset := "midnight UTC"
		if meta := apperrors.GetMetadata(err); meta["next_reset"] != "" {
			if t, parseErr := time.Parse(time.RFC3339, meta["next_reset"]); parseErr == nil {
				until := time.Until(t)
				reset = fmt.Sprintf("%dh %dm", int(until.Hours()), int(until.Minutes())%60)
			}
		}
		return fmt.Sprintf("❌ You've reached the daily message limit.\n"+
			"The limit will reset in %s.\nPlease try again later!", reset)
	case apperrors.CodeNoActiveSession:
		return "No active game found. Use /start to begin a new game."
	case apperrors.CodeInvalidAction:
		return fmt.Sprintf("❌ That's not possible right now:\n%s\n\n"+
			"Try something else that fits your current situation.", err.Error())
	}
	return "❌ Sorry, I had trouble processing that action. Please try again."
}

// fmtRes renders fractional resources without trailing zeros.
func fmtRes(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func sortedItems(inventory map[string]int) []string {
	names := make([]string, 0, len(inventory))
	for name, qty := range inventory {
		if qty > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

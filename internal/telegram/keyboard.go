package telegram

import (
	"github.com/go-telegram/bot/models"
	"github.com/pinodelabs/pinode/internal/domain"
)

// Callback data understood by the handlers.
const (
	CallbackStats        = "get_stats"
	CallbackBalance      = "get_balance"
	CallbackReferralLink = "get_referral_link"
	CallbackMissionClaim = "mclaim_"
)

// InlineButton creates a single inline keyboard button.
func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// URLButton creates a URL inline keyboard button.
func URLButton(text, url string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text: text,
		URL:  url,
	}
}

// WebAppButton opens url as a Telegram Mini App.
func WebAppButton(text, url string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:   text,
		WebApp: &models.WebAppInfo{URL: url},
	}
}

// InlineKeyboard creates an inline keyboard from rows of buttons.
func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// ButtonRow creates a row of inline buttons.
func ButtonRow(buttons ...models.InlineKeyboardButton) []models.InlineKeyboardButton {
	return buttons
}

// MainMenu is shown with the welcome message.
func MainMenu(webAppURL string) *models.InlineKeyboardMarkup {
	return InlineKeyboard(
		ButtonRow(WebAppButton("📱 Open Web App", webAppURL)),
		ButtonRow(
			InlineButton("📊 My Stats", CallbackStats),
			InlineButton("💰 Balance", CallbackBalance),
		),
		ButtonRow(InlineButton("🎁 Referral Link", CallbackReferralLink)),
	)
}

func WebAppMenu(webAppURL string) *models.InlineKeyboardMarkup {
	return InlineKeyboard(
		ButtonRow(WebAppButton("📱 Open Web App", webAppURL)),
		ButtonRow(
			InlineButton("📊 My Stats", CallbackStats),
			InlineButton("💰 Balance", CallbackBalance),
		),
	)
}

// MissionsKeyboard has a link and a claim button per unclaimed mission.
func MissionsKeyboard(views []domain.MissionView) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	for _, v := range views {
		if v.Status == domain.MissionStatusClaimed {
			continue
		}
		rows = append(rows, ButtonRow(
			URLButton("🔗 "+v.Title, v.Link),
			InlineButton("✅ Claim "+v.Reward.String(), CallbackMissionClaim+v.ID),
		))
	}
	if len(rows) == 0 {
		return nil
	}
	return InlineKeyboard(rows...)
}

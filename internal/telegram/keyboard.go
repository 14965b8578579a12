package telegram

import (
	"github.com/go-telegram/bot/models"
)

// Reply keyboard labels. Text matching one of these exactly is a menu press.
const (
	MenuReferralLink = "📋 Copy Referral Link"
	MenuDashboard    = "📊 Dashboard"
	MenuTasks        = "🎯 Tasks"
	MenuWithdraw     = "💰 Withdraw"
	MenuSetWallet    = "🏦 Set Wallet"
	MenuBonus        = "🎁 Bonus"
	MenuReferrals    = "👥 Referrals"
	MenuHelp         = "ℹ Help"
	MenuAdminPanel   = "🛠 Admin Panel"
)

var menuLabels = map[string]bool{
	MenuReferralLink: true,
	MenuDashboard:    true,
	MenuTasks:        true,
	MenuWithdraw:     true,
	MenuSetWallet:    true,
	MenuBonus:        true,
	MenuReferrals:    true,
	MenuHelp:         true,
	MenuAdminPanel:   true,
}

// IsMenuLabel reports whether text is one of the reply keyboard labels.
func IsMenuLabel(text string) bool {
	return menuLabels[text]
}

// MainMenu is the persistent reply keyboard. The admin gets an extra row.
func MainMenu(isAdmin bool) *models.ReplyKeyboardMarkup {
	rows := [][]models.KeyboardButton{
		{{Text: MenuReferralLink}},
		{{Text: MenuDashboard}, {Text: MenuTasks}},
		{{Text: MenuWithdraw}, {Text: MenuSetWallet}},
		{{Text: MenuBonus}, {Text: MenuReferrals}},
		{{Text: MenuHelp}},
	}
	if isAdmin {
		rows = append(rows, []models.KeyboardButton{{Text: MenuAdminPanel}})
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:       rows,
		ResizeKeyboard: true,
	}
}

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

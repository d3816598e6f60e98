package bot

import (
	"github.com/giftelf/escrow-bot/internal/model"
	"github.com/giftelf/escrow-bot/internal/telegram"
)

// Идентификаторы действий в callback data. Действия над конкретной сделкой
// кодируются как "<action>:<deal_token>".
const (
	actionCreateDeal = "create_deal"
	actionMyDeals    = "my_deals"
	actionHelp       = "help"
	actionBackMenu   = "back_menu"
	actionOpen       = "open"
	actionGetLink    = "get_link"
	actionCancel     = "cancel"
	actionShipped    = "shipped"
	actionReceived   = "received"
)

func button(text, data string) telegram.InlineKeyboardButton {
	return telegram.InlineKeyboardButton{Text: text, CallbackData: data}
}

func mainMenu() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{button("📄 Neues Deal", actionCreateDeal)},
			{button("🔎 Meine Deals", actionMyDeals)},
			{button("❓ Hilfe", actionHelp)},
		},
	}
}

func openDealButton(dealToken string) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{button("Öffnen", actionOpen+":"+dealToken)},
		},
	}
}

// dealButtons собирает клавиатуру карточки сделки в зависимости от статуса
// и роли смотрящего. Чужие действия не показываются.
func dealButtons(d *model.Deal, viewerID int64) *telegram.InlineKeyboardMarkup {
	var rows [][]telegram.InlineKeyboardButton

	if d.Status == model.DealStatusOpen && d.SellerID == viewerID {
		rows = append(rows,
			[]telegram.InlineKeyboardButton{button("🔗 Käufer-Link", actionGetLink+":"+d.DealToken)},
			[]telegram.InlineKeyboardButton{button("❌ Abbrechen", actionCancel+":"+d.DealToken)},
		)
	}
	if d.Status == model.DealStatusPaid && d.SellerID == viewerID {
		rows = append(rows,
			[]telegram.InlineKeyboardButton{button("📤 Markiere als versandt", actionShipped+":"+d.DealToken)},
		)
	}
	if d.Status == model.DealStatusShipped && d.BuyerID != nil && *d.BuyerID == viewerID {
		rows = append(rows,
			[]telegram.InlineKeyboardButton{button("📦 Ich habe erhalten", actionReceived+":"+d.DealToken)},
		)
	}

	rows = append(rows, []telegram.InlineKeyboardButton{button("🔙 Menü", actionBackMenu)})

	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

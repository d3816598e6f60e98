package bot

import (
	"fmt"

	"github.com/giftelf/escrow-bot/internal/model"
)

// Тексты ответов бота. Формулировки пользовательских сообщений немецкие,
// как в продакшен-версии GiftElf.
const (
	msgWelcome           = "👋 Willkommen bei GiftElf!\nErstelle sichere Deals über mich."
	msgMenu              = "Menü:"
	msgHelp              = "GiftElf vermittelt sichere Deals zwischen Käufer und Verkäufer.\nDer Betrag wird über die Treuhand-Wallet abgewickelt und erst nach Empfangsbestätigung ausgezahlt."
	msgPromptAmount      = "Gib den Betrag in TON ein (z. B. 10.5):"
	msgPromptDescription = "Beschreibung des Deals eingeben:"
	msgInvalidAmount     = "Ungültiger Betrag. Bitte erneut eingeben:"
	msgNoDeals           = "Du hast keine Deals."
	msgDealNotFound      = "Deal nicht gefunden."
	msgDealCancelled     = "Deal abgebrochen."
	msgMarkedShipped     = "📤 Als versandt markiert."
	msgReceiptConfirmed  = "📦 Empfang bestätigt. Auszahlung erfolgt automatisch durch das System."
	msgActionNotPossible = "Diese Aktion ist gerade nicht möglich."
	msgInternalError     = "Etwas ist schiefgelaufen. Bitte versuche es später erneut."
)

func dealLink(botUsername, dealToken string) string {
	return fmt.Sprintf("https://t.me/%s?start=join_%s", botUsername, dealToken)
}

func dealCreatedMessage(d *model.Deal, botUsername string) string {
	return fmt.Sprintf("✅ Deal erstellt!\nToken: %s\nPayment Token: %s\n\nTeile den Käufer-Link:\n%s",
		d.DealToken, d.PaymentToken, dealLink(botUsername, d.DealToken))
}

func dealSummaryMessage(s model.DealSummary) string {
	return fmt.Sprintf("Deal %s\n%s TON\n%s\nStatus: %s", s.DealToken, s.Amount, s.Description, s.Status)
}

func dealCardMessage(d *model.Deal, walletAddress string) string {
	return fmt.Sprintf("Deal %s\nBetrag: %s TON\nBeschreibung: %s\nStatus: %s\nPayment Token: %s\nWallet: %s",
		d.DealToken, d.Amount, d.Description, d.Status, d.PaymentToken, walletAddress)
}

func dealLinkMessage(botUsername, dealToken string) string {
	return fmt.Sprintf("🔗 Käufer-Link:\n%s", dealLink(botUsername, dealToken))
}

func joinedMessage(d *model.Deal, walletAddress string) string {
	return fmt.Sprintf("Deal %s\nBetrag: %s TON\n%s\n\n💰 Zahle an:\n`%s`\n\nMemo: `%s`\n\nSobald die Zahlung eingegangen ist, bestätigt das System automatisch.",
		d.DealToken, d.Amount, d.Description, walletAddress, d.PaymentToken)
}

func operatorPaidMessage(dealToken string) string {
	return fmt.Sprintf("✅ Deal %s als bezahlt markiert. Verkäufer wird informiert.", dealToken)
}

func operatorPayoutMessage(dealToken string) string {
	return fmt.Sprintf("💸 Auszahlung für Deal %s abgeschlossen.", dealToken)
}

func operatorCancelMessage(dealToken string) string {
	return fmt.Sprintf("❌ Deal %s storniert.", dealToken)
}

// Уведомления контрагенту о смене статуса.
func notifyBuyerJoined(dealToken string) string {
	return fmt.Sprintf("👥 Ein Käufer ist Deal %s beigetreten.", dealToken)
}

func notifyPaid(dealToken string) string {
	return fmt.Sprintf("💰 Zahlung für Deal %s ist eingegangen. Du kannst jetzt versenden.", dealToken)
}

func notifyShipped(dealToken string) string {
	return fmt.Sprintf("📤 Deal %s wurde als versandt markiert.", dealToken)
}

func notifyReceived(dealToken string) string {
	return fmt.Sprintf("📦 Der Käufer hat den Empfang für Deal %s bestätigt.", dealToken)
}

func notifyPayoutDone(dealToken string) string {
	return fmt.Sprintf("💸 Auszahlung für Deal %s wurde veranlasst.", dealToken)
}

func notifyCancelled(dealToken string) string {
	return fmt.Sprintf("❌ Deal %s wurde storniert.", dealToken)
}

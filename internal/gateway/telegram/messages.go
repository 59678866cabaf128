// internal/gateway/telegram/messages.go
package telegram

import (
	"fmt"
	"time"
)

// User-facing texts. The core hands the gateway outcomes; rendering them
// into chat messages happens only here.
const (
	msgAlreadyPremium = "You already have an active premium subscription.\nEnjoy the premium features!"

	msgInvoiceTitleFmt = "%d-day Premium"
	msgInvoiceDesc     = "Pay to activate premium and unlock all features!"
	msgInvoiceLabel    = "Telegram Stars"

	msgStatusInactive = "No active premium subscription.\nSend /start to get premium."

	msgPremiumInfo = "Premium unlocks all bot features for the configured period. Pay once with Telegram Stars, no recurring charge."

	msgGenericError = "Something went wrong. Please try again."
)

func statusActiveMessage(expiresAt time.Time) string {
	return fmt.Sprintf("Premium subscription is active!\nExpires: %s", expiresAt.UTC().Format("2006-01-02 15:04"))
}

func activationSuccessMessage(durationDays int, expiresAt time.Time, amount int64, currency string) string {
	return fmt.Sprintf(
		"Congratulations! Premium has been activated.\n\n"+
			"Plan: %d-day Premium\n"+
			"Expires: %s\n"+
			"Paid: %d %s\n\n"+
			"All premium features are now available!",
		durationDays, expiresAt.UTC().Format("2006-01-02 15:04"), amount, currency,
	)
}

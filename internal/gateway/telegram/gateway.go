// internal/gateway/telegram/gateway.go

// Package telegram adapts Telegram Bot API updates to the payment core.
// Everything here is I/O glue: commands in, invoices and rendered outcomes
// out. The core never sees a Telegram type.
package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"premium-bot/internal/common/config"
	stderrors "premium-bot/internal/common/errors"
	"premium-bot/internal/common/logger"
	"premium-bot/internal/models"
	"premium-bot/internal/payment"
)

const callbackPremiumInfo = "info_premium"

// Gateway owns the bot connection and routes updates to the coordinator.
type Gateway struct {
	bot          *bot.Bot
	coordinator  *payment.Coordinator
	starPrice    int64
	durationDays int
	logger       logger.Logger
}

// New builds the gateway and registers all handlers.
func New(cfg config.TelegramConfig, policyCfg config.PolicyConfig, coordinator *payment.Coordinator, log logger.Logger) (*Gateway, error) {
	g := &Gateway{
		coordinator:  coordinator,
		starPrice:    policyCfg.StarPrice,
		durationDays: policyCfg.DurationDays,
		logger:       log.WithFields(map[string]interface{}{"component": "telegram"}),
	}

	b, err := bot.New(cfg.Token,
		bot.WithDefaultHandler(g.handleUpdate),
	)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, g.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypePrefix, g.handleStatus)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackPremiumInfo, bot.MatchTypeExact, g.handlePremiumInfo)

	g.bot = b
	return g, nil
}

// Start runs the long-polling loop until the context is cancelled.
func (g *Gateway) Start(ctx context.Context) {
	g.logger.Info("starting long polling", nil)
	g.bot.Start(ctx)
}

// handleStart answers /start: an already-premium user gets a reminder,
// everyone else gets an XTR invoice.
func (g *Gateway) handleStart(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	userID := models.UserID(update.Message.From.ID)
	chatID := update.Message.Chat.ID

	log := g.logger.WithFields(map[string]interface{}{"userId": userID})
	log.Info("start command received", map[string]interface{}{
		"username": update.Message.From.Username,
	})

	report, err := g.coordinator.QueryStatus(ctx, userID)
	if err != nil {
		log.WithError(err).Error("status lookup failed", nil)
		g.sendText(ctx, b, chatID, msgGenericError)
		return
	}
	if report.Active {
		g.sendText(ctx, b, chatID, msgAlreadyPremium)
		return
	}

	payload := g.coordinator.Policy().BuildPayload(userID, g.durationDays)
	_, err = b.SendInvoice(ctx, &bot.SendInvoiceParams{
		ChatID:      chatID,
		Title:       fmt.Sprintf(msgInvoiceTitleFmt, g.durationDays),
		Description: msgInvoiceDesc,
		Payload:     payload,
		Currency:    g.coordinator.Policy().RequiredCurrency,
		Prices: []tgmodels.LabeledPrice{
			{Label: msgInvoiceLabel, Amount: int(g.starPrice)},
		},
		ReplyMarkup: &tgmodels.InlineKeyboardMarkup{
			InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
				{{Text: "About Premium", CallbackData: callbackPremiumInfo}},
			},
		},
	})
	if err != nil {
		stdErr := stderrors.NewGatewaySendFailedError(err)
		log.WithError(stdErr).Error("invoice send failed", nil)
		g.sendText(ctx, b, chatID, msgGenericError)
		return
	}

	log.Info("invoice sent", map[string]interface{}{"payload": payload})
}

// handleStatus answers /status with the entitlement report.
func (g *Gateway) handleStatus(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	userID := models.UserID(update.Message.From.ID)
	chatID := update.Message.Chat.ID

	report, err := g.coordinator.QueryStatus(ctx, userID)
	if err != nil {
		g.logger.WithError(err).Error("status lookup failed", map[string]interface{}{"userId": userID})
		g.sendText(ctx, b, chatID, msgGenericError)
		return
	}

	if report.Active && report.ExpiresAt != nil {
		g.sendText(ctx, b, chatID, statusActiveMessage(*report.ExpiresAt))
	} else {
		g.sendText(ctx, b, chatID, msgStatusInactive)
	}
}

// handlePremiumInfo answers the inline info button.
func (g *Gateway) handlePremiumInfo(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.CallbackQuery == nil {
		return
	}

	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
	})
	if err != nil {
		g.logger.WithError(err).Warn("callback answer failed", nil)
	}

	if update.CallbackQuery.Message.Message != nil {
		g.sendText(ctx, b, update.CallbackQuery.Message.Message.Chat.ID, msgPremiumInfo)
	}
}

// handleUpdate catches the payment lifecycle events that have no command
// entry point: pre-checkout queries and successful payments.
func (g *Gateway) handleUpdate(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	switch {
	case update.PreCheckoutQuery != nil:
		g.handlePreCheckout(ctx, b, update.PreCheckoutQuery)
	case update.Message != nil && update.Message.SuccessfulPayment != nil:
		g.handleSuccessfulPayment(ctx, b, update.Message)
	}
}

// handlePreCheckout must answer within the platform window or the provider
// treats the query as failed. Exactly one answer per query, always.
func (g *Gateway) handlePreCheckout(ctx context.Context, b *bot.Bot, query *tgmodels.PreCheckoutQuery) {
	decision := g.coordinator.HandlePreAuth(ctx, models.PreAuthRequest{
		QueryID: query.ID,
		PayerID: models.UserID(query.From.ID),
		Amount: models.Money{
			Amount:   int64(query.TotalAmount),
			Currency: query.Currency,
		},
		Payload: query.InvoicePayload,
	})

	params := &bot.AnswerPreCheckoutQueryParams{
		PreCheckoutQueryID: query.ID,
		OK:                 decision.OK,
	}
	if !decision.OK {
		params.ErrorMessage = decision.Reason
	}

	if _, err := b.AnswerPreCheckoutQuery(ctx, params); err != nil {
		stdErr := stderrors.NewGatewaySendFailedError(err)
		g.logger.WithError(stdErr).Error("pre-checkout answer failed", map[string]interface{}{
			"queryId": query.ID,
		})
	}
}

// handleSuccessfulPayment feeds the completed payment to the coordinator and
// renders the outcome back to the user.
func (g *Gateway) handleSuccessfulPayment(ctx context.Context, b *bot.Bot, msg *tgmodels.Message) {
	if msg.From == nil {
		return
	}
	sp := msg.SuccessfulPayment

	outcome := g.coordinator.HandleCompletedPayment(ctx, models.CompletedPayment{
		PayerID: models.UserID(msg.From.ID),
		Amount: models.Money{
			Amount:   int64(sp.TotalAmount),
			Currency: sp.Currency,
		},
		Payload:          sp.InvoicePayload,
		ProviderChargeID: sp.TelegramPaymentChargeID,
	})

	text := outcome.Message
	if outcome.OK && !outcome.AlreadyProcessed && outcome.ExpiresAt != nil {
		text = activationSuccessMessage(g.durationDays, *outcome.ExpiresAt, int64(sp.TotalAmount), sp.Currency)
	}

	g.sendText(ctx, b, msg.Chat.ID, text)
}

// sendText delivers a message best-effort; a failed send is logged, never
// retried here.
func (g *Gateway) sendText(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		stdErr := stderrors.NewGatewaySendFailedError(err)
		g.logger.WithError(stdErr).Error("message send failed", map[string]interface{}{
			"chatId": chatID,
		})
	}
}

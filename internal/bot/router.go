package bot

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/giftelf/escrow-bot/internal/deal"
	"github.com/giftelf/escrow-bot/internal/model"
	"github.com/giftelf/escrow-bot/internal/repository"
	"github.com/giftelf/escrow-bot/internal/session"
	"github.com/giftelf/escrow-bot/internal/telegram"
)

// DealService определяет контракт машины состояний сделок, используемый маршрутизатором.
type DealService interface {
	Create(ctx context.Context, sellerID int64, sellerName, amount, description string) (*model.Deal, error)
	Get(ctx context.Context, dealToken string) (*model.Deal, error)
	ListByParticipant(ctx context.Context, userID int64) ([]model.DealSummary, error)
	Join(ctx context.Context, dealToken string, buyerID int64) (*model.Deal, error)
	Apply(ctx context.Context, action deal.Action, dealToken string, actorID int64) (*model.Deal, error)
}

// Sender определяет контракт отправки исходящих сообщений.
type Sender interface {
	SendMessage(ctx context.Context, msg telegram.OutgoingMessage) error
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
}

// Router превращает входящие обновления Telegram в переходы машины состояний
// и шаги диалоговых сессий и отправляет ответы.
type Router struct {
	deals       DealService
	sessions    session.Store
	sender      Sender
	logger      *zap.Logger
	operatorID  int64
	wallet      string
	botUsername string
}

// NewRouter создаёт маршрутизатор событий бота.
func NewRouter(deals DealService, sessions session.Store, sender Sender, logger *zap.Logger, operatorID int64, walletAddress, botUsername string) *Router {
	return &Router{
		deals:       deals,
		sessions:    sessions,
		sender:      sender,
		logger:      logger,
		operatorID:  operatorID,
		wallet:      walletAddress,
		botUsername: botUsername,
	}
}

// HandleUpdate обрабатывает одно входящее обновление. Все ошибки локальны
// для события: пользователь получает ответ, состояние не портится.
func (r *Router) HandleUpdate(ctx context.Context, u telegram.Update) {
	switch ev := Classify(u, r.operatorID).(type) {
	case StartSession:
		r.reply(ctx, ev.ChatID, msgWelcome, mainMenu())
	case JoinViaLink:
		r.handleJoin(ctx, ev)
	case ButtonPress:
		r.handleButton(ctx, ev)
	case OperatorCommand:
		r.handleOperator(ctx, ev)
	case TextMessage:
		r.handleText(ctx, ev)
	}
}

func (r *Router) handleJoin(ctx context.Context, ev JoinViaLink) {
	d, err := r.deals.Join(ctx, ev.DealToken, ev.UserID)
	if err != nil {
		r.replyError(ctx, ev.ChatID, err)
		return
	}

	r.send(ctx, telegram.OutgoingMessage{
		ChatID:      ev.ChatID,
		Text:        joinedMessage(d, r.wallet),
		ParseMode:   "Markdown",
		ReplyMarkup: nil,
	})
	r.notify(ctx, d.SellerID, notifyBuyerJoined(d.DealToken))
}

func (r *Router) handleButton(ctx context.Context, ev ButtonPress) {
	defer func() {
		if err := r.sender.AnswerCallbackQuery(ctx, ev.CallbackID); err != nil {
			r.logger.Warn("answer callback error", zap.Error(err))
		}
	}()

	switch ev.Action {
	case actionCreateDeal:
		if err := r.sessions.Put(ctx, ev.UserID, session.NewCreateDeal()); err != nil {
			r.replyError(ctx, ev.ChatID, err)
			return
		}
		r.reply(ctx, ev.ChatID, msgPromptAmount, nil)

	case actionMyDeals:
		r.handleMyDeals(ctx, ev)

	case actionHelp:
		r.reply(ctx, ev.ChatID, msgHelp, mainMenu())

	case actionBackMenu:
		// Возврат в меню завершает незаконченный сценарий.
		if err := r.sessions.Delete(ctx, ev.UserID); err != nil {
			r.logger.Warn("delete session error", zap.Error(err), zap.Int64("userID", ev.UserID))
		}
		r.reply(ctx, ev.ChatID, msgMenu, mainMenu())

	case actionOpen:
		d, err := r.deals.Get(ctx, ev.Token)
		if err != nil {
			r.replyError(ctx, ev.ChatID, err)
			return
		}
		r.reply(ctx, ev.ChatID, dealCardMessage(d, r.wallet), dealButtons(d, ev.UserID))

	case actionGetLink:
		d, err := r.deals.Get(ctx, ev.Token)
		if err != nil {
			r.replyError(ctx, ev.ChatID, err)
			return
		}
		if d.SellerID != ev.UserID {
			r.reply(ctx, ev.ChatID, msgActionNotPossible, nil)
			return
		}
		r.reply(ctx, ev.ChatID, dealLinkMessage(r.botUsername, d.DealToken), nil)

	case actionCancel:
		r.applyTransition(ctx, ev.ChatID, deal.ActionSellerCancel, ev.Token, ev.UserID, msgDealCancelled)

	case actionShipped:
		r.applyTransition(ctx, ev.ChatID, deal.ActionMarkShipped, ev.Token, ev.UserID, msgMarkedShipped)

	case actionReceived:
		r.applyTransition(ctx, ev.ChatID, deal.ActionConfirmReceived, ev.Token, ev.UserID, msgReceiptConfirmed)

	default:
		r.reply(ctx, ev.ChatID, msgMenu, mainMenu())
	}
}

func (r *Router) handleMyDeals(ctx context.Context, ev ButtonPress) {
	summaries, err := r.deals.ListByParticipant(ctx, ev.UserID)
	if err != nil {
		r.replyError(ctx, ev.ChatID, err)
		return
	}

	if len(summaries) == 0 {
		r.reply(ctx, ev.ChatID, msgNoDeals, mainMenu())
		return
	}

	for _, s := range summaries {
		r.reply(ctx, ev.ChatID, dealSummaryMessage(s), openDealButton(s.DealToken))
	}
}

func (r *Router) handleOperator(ctx context.Context, ev OperatorCommand) {
	var (
		action  deal.Action
		confirm string
	)

	switch ev.Verb {
	case "paid":
		action, confirm = deal.ActionMarkPaid, operatorPaidMessage(ev.Token)
	case "payout":
		action, confirm = deal.ActionPayout, operatorPayoutMessage(ev.Token)
	case "cancel":
		action, confirm = deal.ActionOperatorCancel, operatorCancelMessage(ev.Token)
	default:
		return
	}

	d, err := r.deals.Apply(ctx, action, ev.Token, ev.UserID)
	if err != nil {
		r.replyError(ctx, ev.ChatID, err)
		return
	}

	r.reply(ctx, ev.ChatID, confirm, nil)
	r.notifyTransition(ctx, d, action)
}

func (r *Router) handleText(ctx context.Context, ev TextMessage) {
	sess, err := r.sessions.Get(ctx, ev.UserID)
	if err != nil {
		r.replyError(ctx, ev.ChatID, err)
		return
	}

	if sess == nil || sess.Flow != model.FlowCreateDeal {
		r.reply(ctx, ev.ChatID, msgMenu, mainMenu())
		return
	}

	next, outcome := session.AdvanceCreateDeal(*sess, ev.Text)

	switch outcome {
	case session.OutcomeReprompt:
		r.reply(ctx, ev.ChatID, msgInvalidAmount, nil)

	case session.OutcomeAmountAccepted:
		if err := r.sessions.Put(ctx, ev.UserID, &next); err != nil {
			r.replyError(ctx, ev.ChatID, err)
			return
		}
		r.reply(ctx, ev.ChatID, msgPromptDescription, nil)

	case session.OutcomeCompleted:
		d, err := r.deals.Create(ctx, ev.UserID, ev.DisplayName, next.Amount, ev.Text)
		if err != nil {
			// Сессия сохраняется: пользователь может повторить описание.
			r.replyError(ctx, ev.ChatID, err)
			return
		}

		if err := r.sessions.Delete(ctx, ev.UserID); err != nil {
			r.logger.Warn("delete session error", zap.Error(err), zap.Int64("userID", ev.UserID))
		}
		r.reply(ctx, ev.ChatID, dealCreatedMessage(d, r.botUsername), nil)
	}
}

func (r *Router) applyTransition(ctx context.Context, chatID int64, action deal.Action, dealToken string, actorID int64, confirm string) {
	d, err := r.deals.Apply(ctx, action, dealToken, actorID)
	if err != nil {
		r.replyError(ctx, chatID, err)
		return
	}

	r.reply(ctx, chatID, confirm, nil)
	r.notifyTransition(ctx, d, action)
}

// notifyTransition отправляет контрагенту уведомление о смене статуса.
// Ошибка доставки не отменяет уже выполненный переход.
func (r *Router) notifyTransition(ctx context.Context, d *model.Deal, action deal.Action) {
	var buyerID int64
	if d.BuyerID != nil {
		buyerID = *d.BuyerID
	}

	switch action {
	case deal.ActionMarkPaid:
		r.notify(ctx, d.SellerID, notifyPaid(d.DealToken))
	case deal.ActionMarkShipped:
		r.notify(ctx, buyerID, notifyShipped(d.DealToken))
	case deal.ActionConfirmReceived:
		r.notify(ctx, d.SellerID, notifyReceived(d.DealToken))
	case deal.ActionPayout:
		r.notify(ctx, d.SellerID, notifyPayoutDone(d.DealToken))
	case deal.ActionSellerCancel:
		r.notify(ctx, buyerID, notifyCancelled(d.DealToken))
	case deal.ActionOperatorCancel:
		r.notify(ctx, d.SellerID, notifyCancelled(d.DealToken))
		r.notify(ctx, buyerID, notifyCancelled(d.DealToken))
	}
}

func (r *Router) notify(ctx context.Context, userID int64, text string) {
	if userID == 0 {
		return
	}

	// В личной переписке chat_id совпадает с идентификатором пользователя.
	err := r.sender.SendMessage(ctx, telegram.OutgoingMessage{ChatID: userID, Text: text})
	if err != nil {
		r.logger.Warn("notify error", zap.Error(err), zap.Int64("userID", userID))
	}
}

func (r *Router) reply(ctx context.Context, chatID int64, text string, kb *telegram.InlineKeyboardMarkup) {
	r.send(ctx, telegram.OutgoingMessage{ChatID: chatID, Text: text, ReplyMarkup: kb})
}

func (r *Router) send(ctx context.Context, msg telegram.OutgoingMessage) {
	if err := r.sender.SendMessage(ctx, msg); err != nil {
		r.logger.Error("send message error", zap.Error(err), zap.Int64("chatID", msg.ChatID))
	}
}

// replyError переводит ошибку в пользовательский ответ. Нарушение роли и
// недопустимый статус отвечают одинаково, чтобы не раскрывать детали сделки.
func (r *Router) replyError(ctx context.Context, chatID int64, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		r.reply(ctx, chatID, msgDealNotFound, nil)
	case errors.Is(err, deal.ErrUnauthorized), errors.Is(err, deal.ErrIllegalTransition):
		r.reply(ctx, chatID, msgActionNotPossible, nil)
	case errors.Is(err, deal.ErrInvalidInput):
		r.reply(ctx, chatID, msgInvalidAmount, nil)
	default:
		r.logger.Error("handle event error", zap.Error(err))
		r.reply(ctx, chatID, msgInternalError, nil)
	}
}

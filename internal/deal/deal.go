// Package deal реализует машину состояний жизненного цикла сделки.
package deal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/giftelf/escrow-bot/internal/model"
	"github.com/giftelf/escrow-bot/internal/repository"
	"github.com/giftelf/escrow-bot/internal/token"
	"github.com/giftelf/escrow-bot/internal/validation"
)

// ErrUnauthorized возвращается, если у актора нет роли для запрошенного перехода.
var (
	ErrUnauthorized = errors.New("actor is not allowed to perform this transition")
	// ErrIllegalTransition возвращается, если текущий статус сделки не допускает переход.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrInvalidInput возвращается при некорректных данных создаваемой сделки.
	ErrInvalidInput = errors.New("invalid input")
)

// Action называет переход машины состояний, запрошенный актором.
type Action string

const (
	ActionSellerCancel    Action = "seller_cancel"
	ActionMarkPaid        Action = "mark_paid"
	ActionMarkShipped     Action = "mark_shipped"
	ActionConfirmReceived Action = "confirm_received"
	ActionPayout          Action = "payout"
	ActionOperatorCancel  Action = "operator_cancel"
)

// Repository описывает контракт доступа к данным, используемый машиной состояний.
type Repository interface {
	Close() error
	CreateDeal(ctx context.Context, d *model.Deal) (int64, error)
	GetDealByToken(ctx context.Context, token string) (*model.Deal, error)
	ListDealsByParticipant(ctx context.Context, userID int64) ([]model.DealSummary, error)
	UpdateDealStatus(ctx context.Context, token string, from []model.DealStatus, to model.DealStatus) (bool, error)
	SetDealBuyer(ctx context.Context, token string, buyerID int64) (bool, error)
}

// transition описывает одну строку таблицы переходов: допустимые исходные
// статусы, целевой статус и проверку роли актора по записи сделки.
type transition struct {
	from      []model.DealStatus
	to        model.DealStatus
	authorize func(d *model.Deal, actorID, operatorID int64) bool
}

var transitions = map[Action]transition{
	ActionSellerCancel: {
		from: []model.DealStatus{model.DealStatusOpen, model.DealStatusPaid},
		to:   model.DealStatusCancelled,
		authorize: func(d *model.Deal, actorID, _ int64) bool {
			return d.SellerID == actorID
		},
	},
	ActionMarkPaid: {
		from: []model.DealStatus{model.DealStatusOpen},
		to:   model.DealStatusPaid,
		authorize: func(_ *model.Deal, actorID, operatorID int64) bool {
			return actorID == operatorID
		},
	},
	ActionMarkShipped: {
		from: []model.DealStatus{model.DealStatusPaid},
		to:   model.DealStatusShipped,
		authorize: func(d *model.Deal, actorID, _ int64) bool {
			return d.SellerID == actorID
		},
	},
	ActionConfirmReceived: {
		from: []model.DealStatus{model.DealStatusShipped},
		to:   model.DealStatusReceived,
		authorize: func(d *model.Deal, actorID, _ int64) bool {
			return d.BuyerID != nil && *d.BuyerID == actorID
		},
	},
	ActionPayout: {
		from: []model.DealStatus{model.DealStatusReceived},
		to:   model.DealStatusPayoutDone,
		authorize: func(_ *model.Deal, actorID, operatorID int64) bool {
			return actorID == operatorID
		},
	},
	// Безусловный оверрайд оператора: допустим из любого неконечного статуса.
	ActionOperatorCancel: {
		from: []model.DealStatus{
			model.DealStatusOpen,
			model.DealStatusPaid,
			model.DealStatusShipped,
			model.DealStatusReceived,
		},
		to: model.DealStatusCancelled,
		authorize: func(_ *model.Deal, actorID, operatorID int64) bool {
			return actorID == operatorID
		},
	},
}

// Service реализует бизнес-логику жизненного цикла сделок.
type Service struct {
	repo       Repository
	operatorID int64
}

// NewService создаёт сервис сделок с указанным репозиторием и идентификатором оператора.
func NewService(repo Repository, operatorID int64) *Service {
	return &Service{
		repo:       repo,
		operatorID: operatorID,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

const createRetries = 3

// Create создаёт новую сделку со статусом open. Коллизия токена в хранилище —
// единственная ретраибельная ошибка: генерация повторяется с новыми токенами.
func (s *Service) Create(ctx context.Context, sellerID int64, sellerName, amount, description string) (*model.Deal, error) {
	normalized, ok := validation.NormalizeAmount(amount)
	if !ok {
		return nil, fmt.Errorf("%w: amount must be a positive decimal", ErrInvalidInput)
	}

	var created *model.Deal

	backoff := retry.WithMaxRetries(createRetries, retry.NewConstant(10*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		dealToken, err := token.NewDealToken()
		if err != nil {
			return fmt.Errorf("generate deal token: %w", err)
		}
		paymentToken, err := token.NewPaymentToken(dealToken)
		if err != nil {
			return fmt.Errorf("generate payment token: %w", err)
		}

		d := &model.Deal{
			DealToken:    dealToken,
			SellerID:     sellerID,
			SellerName:   sellerName,
			Amount:       normalized,
			Description:  description,
			Status:       model.DealStatusOpen,
			PaymentToken: paymentToken,
			CreatedAt:    time.Now().Unix(),
		}

		id, err := s.repo.CreateDeal(ctx, d)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateToken) {
				return retry.RetryableError(err)
			}
			return err
		}

		d.ID = id
		created = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Get возвращает сделку по токену.
func (s *Service) Get(ctx context.Context, dealToken string) (*model.Deal, error) {
	return s.repo.GetDealByToken(ctx, dealToken)
}

// ListByParticipant возвращает сделки, в которых пользователь участвует
// как продавец или покупатель.
func (s *Service) ListByParticipant(ctx context.Context, userID int64) ([]model.DealSummary, error) {
	return s.repo.ListDealsByParticipant(ctx, userID)
}

// Join назначает покупателя открытой сделки. Назначение однократное: повторный
// переход по ссылке другим пользователем покупателя не меняет. Продавец не
// может выступить покупателем собственной сделки.
func (s *Service) Join(ctx context.Context, dealToken string, buyerID int64) (*model.Deal, error) {
	d, err := s.repo.GetDealByToken(ctx, dealToken)
	if err != nil {
		return nil, err
	}

	if d.SellerID == buyerID {
		return nil, fmt.Errorf("%w: seller cannot join own deal", ErrUnauthorized)
	}

	if d.BuyerID != nil {
		if *d.BuyerID == buyerID {
			return d, nil
		}
		return nil, fmt.Errorf("%w: deal already has a buyer", ErrIllegalTransition)
	}

	if d.Status != model.DealStatusOpen {
		return nil, fmt.Errorf("%w: deal is not open", ErrIllegalTransition)
	}

	ok, err := s.repo.SetDealBuyer(ctx, dealToken, buyerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Проиграли гонку другому покупателю: перечитываем актуальную запись.
		d, err = s.repo.GetDealByToken(ctx, dealToken)
		if err != nil {
			return nil, err
		}
		if d.BuyerID != nil && *d.BuyerID == buyerID {
			return d, nil
		}
		return nil, fmt.Errorf("%w: deal already has a buyer", ErrIllegalTransition)
	}

	d.BuyerID = &buyerID
	return d, nil
}

// Apply выполняет переход таблицы состояний для указанного актора.
// Порядок фиксированный: чтение записи, проверка роли, проверка статуса,
// атомарная условная запись. Проигравший гонку переход получает
// ErrIllegalTransition, запись при этом не меняется.
func (s *Service) Apply(ctx context.Context, action Action, dealToken string, actorID int64) (*model.Deal, error) {
	t, ok := transitions[action]
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q", ErrIllegalTransition, action)
	}

	d, err := s.repo.GetDealByToken(ctx, dealToken)
	if err != nil {
		return nil, err
	}

	if !t.authorize(d, actorID, s.operatorID) {
		return nil, fmt.Errorf("%w: action %s", ErrUnauthorized, action)
	}

	if !statusIn(d.Status, t.from) {
		return nil, fmt.Errorf("%w: %s from %s", ErrIllegalTransition, action, d.Status)
	}

	applied, err := s.repo.UpdateDealStatus(ctx, dealToken, t.from, t.to)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Статус успел измениться между чтением и записью.
		if _, err := s.repo.GetDealByToken(ctx, dealToken); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s lost the race", ErrIllegalTransition, action)
	}

	d.Status = t.to
	return d, nil
}

func statusIn(status model.DealStatus, set []model.DealStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

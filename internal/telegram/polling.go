package telegram

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// UpdateHandler обрабатывает одно входящее обновление.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, u Update)
}

const pollTimeoutSeconds = 30

// Poller получает обновления long-polling'ом и последовательно передаёт их обработчику.
type Poller struct {
	client  *Client
	handler UpdateHandler
	logger  *zap.Logger
}

// NewPoller создаёт цикл опроса обновлений для указанного клиента и обработчика.
func NewPoller(client *Client, handler UpdateHandler, logger *zap.Logger) *Poller {
	return &Poller{
		client:  client,
		handler: handler,
		logger:  logger,
	}
}

// Run крутит цикл getUpdates до отмены контекста. Ошибки опроса логируются,
// цикл продолжается после паузы.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		updates, err := p.client.GetUpdates(ctx, offset, pollTimeoutSeconds)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			p.logger.Error("get updates error", zap.Error(err))

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		for _, u := range updates {
			p.handler.HandleUpdate(ctx, u)
			offset = u.UpdateID + 1
		}
	}
}

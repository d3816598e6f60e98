// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/giftelf/escrow-bot/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDuplicateToken возвращается, если токен сделки или платёжная метка уже заняты.
var (
	ErrDuplicateToken = errors.New("token already exists")
	// ErrNotFound возвращается, если сделка с указанным токеном не найдена.
	ErrNotFound = errors.New("deal not found")
)

// PostgresRepository предоставляет доступ к хранилищу сделок в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		// Если ошибка контекста — выходим сразу
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				if i < len(delays) {
					time.Sleep(delays[i])
					continue
				}
			}
		}

		// Если это не pg-ошибка, но сетевая
		if isConnectionError(err) {
			if i < len(delays) {
				time.Sleep(delays[i])
				continue
			}
		}

		break
	}
	return err
}

func isConnectionError(err error) bool {
	// Упрощенная проверка на ошибки соединения
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateDeal сохраняет новую сделку и возвращает её идентификатор.
// При занятом токене сделки или платёжной метке возвращает ErrDuplicateToken.
func (r *PostgresRepository) CreateDeal(ctx context.Context, d *model.Deal) (int64, error) {
	var id int64
	err := r.withRetry(ctx, func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO deals (deal_token, seller_id, seller_name, amount, description, status, payment_token, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id`,
			d.DealToken, d.SellerID, d.SellerName, d.Amount, d.Description, string(d.Status), d.PaymentToken, d.CreatedAt,
		).Scan(&id)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateToken, d.DealToken)
		}
		return 0, fmt.Errorf("create deal: %w", err)
	}
	return id, nil
}

// GetDealByToken возвращает сделку по её публичному токену.
func (r *PostgresRepository) GetDealByToken(ctx context.Context, token string) (*model.Deal, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, deal_token, seller_id, seller_name, amount, description, status, buyer_id, payment_token, created_at
		 FROM deals
		 WHERE deal_token = $1`,
		token,
	)

	var (
		d      model.Deal
		status string
	)
	err := row.Scan(&d.ID, &d.DealToken, &d.SellerID, &d.SellerName, &d.Amount,
		&d.Description, &status, &d.BuyerID, &d.PaymentToken, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get deal: %w", err)
	}
	d.Status = model.DealStatus(status)

	return &d, nil
}

// ListDealsByParticipant возвращает сделки, где пользователь выступает продавцом или покупателем.
func (r *PostgresRepository) ListDealsByParticipant(ctx context.Context, userID int64) ([]model.DealSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT deal_token, amount, description, status
		 FROM deals
		 WHERE seller_id = $1 OR buyer_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select deals: %w", err)
	}
	defer rows.Close()

	var res []model.DealSummary
	for rows.Next() {
		var (
			s      model.DealSummary
			status string
		)
		if err := rows.Scan(&s.DealToken, &s.Amount, &s.Description, &status); err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		s.Status = model.DealStatus(status)
		res = append(res, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpdateDealStatus атомарно переводит сделку в новый статус, если текущий
// статус входит в множество from. Возвращает false, если условие не выполнено:
// так проигравшая из двух гонящихся транзиций наблюдает несовпадение статуса.
func (r *PostgresRepository) UpdateDealStatus(ctx context.Context, token string, from []model.DealStatus, to model.DealStatus) (bool, error) {
	states := make([]string, 0, len(from))
	for _, s := range from {
		states = append(states, string(s))
	}

	var tag pgconn.CommandTag
	err := r.withRetry(ctx, func() error {
		var execErr error
		tag, execErr = r.pool.Exec(ctx,
			`UPDATE deals SET status = $2 WHERE deal_token = $1 AND status = ANY($3)`,
			token, string(to), states,
		)
		return execErr
	})
	if err != nil {
		return false, fmt.Errorf("update deal status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// SetDealBuyer назначает покупателя сделки, только если он ещё не назначен.
// Возвращает false, если покупатель уже был записан ранее.
func (r *PostgresRepository) SetDealBuyer(ctx context.Context, token string, buyerID int64) (bool, error) {
	var tag pgconn.CommandTag
	err := r.withRetry(ctx, func() error {
		var execErr error
		tag, execErr = r.pool.Exec(ctx,
			`UPDATE deals SET buyer_id = $2 WHERE deal_token = $1 AND buyer_id IS NULL`,
			token, buyerID,
		)
		return execErr
	})
	if err != nil {
		return false, fmt.Errorf("set deal buyer: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

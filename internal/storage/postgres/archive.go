package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
)

const uniqueViolation = "23505"

// Archive - архив заказов; вместе с заказом в той же транзакции пишет событие outbox.
type Archive struct {
	db  *sql.DB
	now func() time.Time
}

// NewArchive создаёт PostgreSQL-архив.
func NewArchive(store *Store) *Archive {
	return &Archive{
		db:  store.DB(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Archive сохраняет заказ, его позиции и событие outbox атомарно.
func (a *Archive) Archive(ctx context.Context, order domain.Order, event domain.OutboxMessage) (_ domain.OutboxMessage, err error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	c := order.Customer
	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, created_at, customer_index, customer_name, street, postal_code, city, email, phone,
			line_count, item_count, amount, currency
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		order.ID, order.CreatedAt.UTC(), order.CustomerIndex, c.Name, c.Street, c.PostalCode, c.City, c.Email, c.Phone,
		order.Totals.Lines, order.Totals.Items, order.Totals.Amount, domain.Currency,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.OutboxMessage{}, domain.ErrOrderAlreadyArchived
		}
		return domain.OutboxMessage{}, fmt.Errorf("insert order: %w", err)
	}

	for i, line := range order.Lines {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (
				order_id, position, article_number, name, unit, price, quantity, total
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
			order.ID, i, line.ArticleNumber, line.Name, line.Unit, line.Price, line.Quantity, line.Total,
		); err != nil {
			return domain.OutboxMessage{}, fmt.Errorf("insert order line: %w", err)
		}
	}

	now := a.now()
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO outbox_messages (
			id, aggregate_type, aggregate_id, event_type, payload,
			status, attempt_count, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,'pending',0,$6,$6)
	`,
		event.ID, event.AggregateType, event.AggregateID, event.EventType, event.Payload, now,
	); err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("enqueue outbox message: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("commit archive order: %w", err)
	}
	return event, nil
}

// Get возвращает заказ по идентификатору.
func (a *Archive) Get(ctx context.Context, id string) (domain.Order, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	order, err := scanOrder(a.db.QueryRowContext(ctx, selectOrder+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	if order.Lines, err = a.loadLines(ctx, order.ID); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// List возвращает последние заказы, новые первыми.
func (a *Archive) List(ctx context.Context, limit int) ([]domain.Order, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	query := selectOrder + ` ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range orders {
		if orders[i].Lines, err = a.loadLines(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// Ping проверяет доступность базы.
func (a *Archive) Ping(ctx context.Context) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	return a.db.PingContext(ctx)
}

const selectOrder = `
	SELECT id, created_at, customer_index, customer_name, street, postal_code, city, email, phone,
	       line_count, item_count, amount
	FROM orders`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var order domain.Order
	c := &order.Customer
	err := row.Scan(
		&order.ID, &order.CreatedAt, &order.CustomerIndex,
		&c.Name, &c.Street, &c.PostalCode, &c.City, &c.Email, &c.Phone,
		&order.Totals.Lines, &order.Totals.Items, &order.Totals.Amount,
	)
	order.CreatedAt = order.CreatedAt.UTC()
	return order, err
}

func (a *Archive) loadLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT article_number, name, unit, price, quantity, total
		FROM order_lines
		WHERE order_id = $1
		ORDER BY position
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ArticleNumber, &line.Name, &line.Unit, &line.Price, &line.Quantity, &line.Total); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}
	return lines, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var _ domain.OrderArchive = (*Archive)(nil)

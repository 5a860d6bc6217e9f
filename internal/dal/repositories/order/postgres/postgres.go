package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/order-lifecycle/internal/dal/postgres"
	"github.com/corray333/order-lifecycle/internal/service/models/order"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

var orderColumns = []string{
	"id",
	"customer_email",
	"amount",
	"is_confirmed",
	"created_at",
	"updated_at",
}

// OrderDal represents order data access layer model
type OrderDal struct {
	ID            uuid.UUID
	CustomerEmail string
	Amount        pgtype.Numeric
	IsConfirmed   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ToModel converts OrderDal to service layer Order model
func (o *OrderDal) ToModel() (*order.Order, error) {
	if !o.Amount.Valid || o.Amount.NaN || o.Amount.InfinityModifier != pgtype.Finite {
		return nil, fmt.Errorf("order %s has non-finite amount", o.ID)
	}

	return &order.Order{
		ID:            o.ID,
		CustomerEmail: o.CustomerEmail,
		Amount:        decimal.NewFromBigInt(o.Amount.Int, o.Amount.Exp),
		IsConfirmed:   o.IsConfirmed,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}, nil
}

// OrderDalFromModel converts service layer Order model to OrderDal
func OrderDalFromModel(o *order.Order) *OrderDal {
	return &OrderDal{
		ID:            o.ID,
		CustomerEmail: o.CustomerEmail,
		Amount: pgtype.Numeric{
			Int:   o.Amount.Coefficient(),
			Exp:   o.Amount.Exponent(),
			Valid: true,
		},
		IsConfirmed: o.IsConfirmed,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func (o *OrderDal) scanTargets() []any {
	return []any{
		&o.ID,
		&o.CustomerEmail,
		&o.Amount,
		&o.IsConfirmed,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
}

// OrderRepository implements the order repository for PostgreSQL.
type OrderRepository struct {
	client *postgres.Client
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(client *postgres.Client) *OrderRepository {
	return &OrderRepository{
		client: client,
	}
}

// GetByID returns the order with the given id or nil when it does not exist.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query, args, err := sq.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal OrderDal
	if err := r.client.Pool().QueryRow(ctx, query, args...).Scan(dal.scanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return dal.ToModel()
}

// Save inserts the order or overwrites the mutable columns of the stored one.
func (r *OrderRepository) Save(ctx context.Context, o order.Order) error {
	dal := OrderDalFromModel(&o)

	query, args, err := sq.Insert("orders").
		Columns(orderColumns...).
		Values(
			dal.ID,
			dal.CustomerEmail,
			dal.Amount,
			dal.IsConfirmed,
			dal.CreatedAt,
			dal.UpdatedAt,
		).
		Suffix("ON CONFLICT (id) DO UPDATE SET " +
			"amount = EXCLUDED.amount, " +
			"is_confirmed = EXCLUDED.is_confirmed, " +
			"updated_at = EXCLUDED.updated_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.client.Pool().Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	return nil
}

// Delete removes the order. Deleting a missing order is not an error.
func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := sq.Delete("orders").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.client.Pool().Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	return nil
}

// Query retrieves orders based on filter criteria
func (r *OrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	builder := sq.Select(orderColumns...).
		From("orders").
		OrderBy("created_at ASC", "id ASC").
		PlaceholderFormat(sq.Dollar)

	if filter != nil {
		if len(filter.Ids) > 0 {
			builder = builder.Where(sq.Eq{"id": filter.Ids})
		}
		if len(filter.CustomerEmails) > 0 {
			builder = builder.Where(sq.Eq{"customer_email": filter.CustomerEmails})
		}
		if filter.Confirmed != nil {
			builder = builder.Where(sq.Eq{"is_confirmed": *filter.Confirmed})
		}
		if filter.Limit > 0 {
			builder = builder.Limit(uint64(filter.Limit))
		}
		if filter.Offset > 0 {
			builder = builder.Offset(uint64(filter.Offset))
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.client.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	result := []order.Order{}
	for rows.Next() {
		var dal OrderDal
		if err := rows.Scan(dal.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

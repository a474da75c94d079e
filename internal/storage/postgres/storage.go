package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domainErrors "github.com/platewise/platewise/internal/domain/errors"
	"github.com/platewise/platewise/internal/domain/lifecycle"
	"github.com/platewise/platewise/internal/domain/model"
	"github.com/platewise/platewise/internal/domain/repository"
)

const uniqueViolation = "23505"

// pgxPool is the subset of pgxpool.Pool used by Storage; pgxmock satisfies it.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type customerRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type subOrderRepository struct {
	storage *Storage
}

type walletRepository struct {
	storage *Storage
}

type couponRepository struct {
	storage *Storage
}

type notificationRepository struct {
	storage *Storage
}

type webhookEventRepository struct {
	storage *Storage
}

type rolloverRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Customers() repository.CustomerRepository {
	return &customerRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) SubOrders() repository.SubOrderRepository {
	return &subOrderRepository{storage: s}
}

func (s *Storage) Wallets() repository.WalletRepository {
	return &walletRepository{storage: s}
}

func (s *Storage) Coupons() repository.CouponRepository {
	return &couponRepository{storage: s}
}

func (s *Storage) Notifications() repository.NotificationRepository {
	return &notificationRepository{storage: s}
}

func (s *Storage) WebhookEvents() repository.WebhookEventRepository {
	return &webhookEventRepository{storage: s}
}

func (s *Storage) Rollovers() repository.RolloverRepository {
	return &rolloverRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS customers (
            id SERIAL PRIMARY KEY,
            email TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            wallet NUMERIC(12,2) NOT NULL DEFAULT 0,
            provider_ref TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS customer_prefs (
            customer_id BIGINT NOT NULL REFERENCES customers(id),
            weekday INT NOT NULL,
            slot_start TEXT NOT NULL DEFAULT '',
            slot_end TEXT NOT NULL DEFAULT '',
            PRIMARY KEY (customer_id, weekday)
        )`,
		`CREATE TABLE IF NOT EXISTS pref_items (
            customer_id BIGINT NOT NULL REFERENCES customers(id),
            weekday INT NOT NULL,
            item_id TEXT NOT NULL,
            name TEXT NOT NULL DEFAULT '',
            price NUMERIC(12,2) NOT NULL,
            quantity INT NOT NULL,
            PRIMARY KEY (customer_id, weekday, item_id)
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id SERIAL PRIMARY KEY,
            customer_id BIGINT NOT NULL DEFAULT 0,
            code TEXT UNIQUE NOT NULL,
            kind TEXT NOT NULL,
            status TEXT NOT NULL,
            total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
            skipped_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
            paid_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
            delivery_fee NUMERIC(12,2) NOT NULL DEFAULT 0,
            invoice_id TEXT NOT NULL DEFAULT '',
            shipping_address TEXT NOT NULL DEFAULT '',
            first_delivery_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS suborders (
            id SERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            status TEXT NOT NULL,
            delivery_date TIMESTAMPTZ NOT NULL,
            slot_start TEXT NOT NULL DEFAULT '',
            slot_end TEXT NOT NULL DEFAULT '',
            dispatch_id TEXT,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id SERIAL PRIMARY KEY,
            suborder_id BIGINT NOT NULL REFERENCES suborders(id),
            item_id TEXT NOT NULL,
            name TEXT NOT NULL DEFAULT '',
            price NUMERIC(12,2) NOT NULL,
            quantity INT NOT NULL,
            refund_quantity INT NOT NULL DEFAULT 0,
            CHECK (refund_quantity >= 0 AND refund_quantity <= quantity)
        )`,
		`CREATE TABLE IF NOT EXISTS transactions (
            id SERIAL PRIMARY KEY,
            transaction_id TEXT UNIQUE NOT NULL,
            customer_id BIGINT NOT NULL REFERENCES customers(id),
            type TEXT NOT NULL,
            amount NUMERIC(12,2) NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS coupons (
            id SERIAL PRIMARY KEY,
            code TEXT UNIQUE NOT NULL,
            discount_percentage INT NOT NULL DEFAULT 0,
            discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
            max_usage_limit INT NOT NULL DEFAULT 0,
            address_usage_limit INT NOT NULL DEFAULT 0,
            usage_count INT NOT NULL DEFAULT 0,
            plan_type TEXT NOT NULL DEFAULT '',
            active BOOLEAN NOT NULL DEFAULT TRUE
        )`,
		`CREATE TABLE IF NOT EXISTS coupon_address_usage (
            coupon_id BIGINT NOT NULL REFERENCES coupons(id),
            address TEXT NOT NULL,
            usage_count INT NOT NULL DEFAULT 0,
            PRIMARY KEY (coupon_id, address)
        )`,
		`CREATE TABLE IF NOT EXISTS notifications (
            id SERIAL PRIMARY KEY,
            customer_id BIGINT NOT NULL,
            channel TEXT NOT NULL,
            template TEXT NOT NULL,
            payload JSONB NOT NULL DEFAULT '{}',
            status TEXT NOT NULL DEFAULT 'PENDING',
            attempts INT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS webhook_events (
            event_id TEXT PRIMARY KEY,
            event_type TEXT NOT NULL,
            processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_suborders_order ON suborders(order_id, delivery_date)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_customer ON transactions(customer_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_status ON notifications(status, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- CustomerRepository implementation ---

const customerColumns = `id, email, password_hash, wallet, provider_ref, address, created_at`

func scanCustomer(row pgx.Row) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.Email, &c.PasswordHash, &c.Wallet, &c.ProviderRef, &c.Address, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) Create(ctx context.Context, email, passwordHash string) (*model.Customer, error) {
	const query = `INSERT INTO customers (email, password_hash) VALUES ($1, $2) RETURNING id, created_at`
	var c model.Customer
	err := r.storage.pool.QueryRow(ctx, query, email, passwordHash).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	c.Email = email
	c.PasswordHash = passwordHash
	c.Wallet = decimal.Zero
	return &c, nil
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers WHERE email=$1`
	return scanCustomer(r.storage.pool.QueryRow(ctx, query, email))
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers WHERE id=$1`
	return scanCustomer(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *customerRepository) GetByProviderRef(ctx context.Context, ref string) (*model.Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers WHERE provider_ref=$1`
	return scanCustomer(r.storage.pool.QueryRow(ctx, query, ref))
}

func (r *customerRepository) Preferences(ctx context.Context, customerID int64) ([]model.DayPreference, error) {
	const prefQuery = `SELECT weekday, slot_start, slot_end FROM customer_prefs WHERE customer_id=$1 ORDER BY weekday`
	rows, err := r.storage.pool.Query(ctx, prefQuery, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prefs []model.DayPreference
	index := make(map[time.Weekday]int)
	for rows.Next() {
		var weekday int
		var p model.DayPreference
		if err := rows.Scan(&weekday, &p.SlotStart, &p.SlotEnd); err != nil {
			return nil, err
		}
		p.Weekday = time.Weekday(weekday)
		index[p.Weekday] = len(prefs)
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const itemQuery = `SELECT weekday, item_id, name, price, quantity FROM pref_items WHERE customer_id=$1 ORDER BY weekday, item_id`
	itemRows, err := r.storage.pool.Query(ctx, itemQuery, customerID)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var weekday int
		var item model.ItemDraft
		if err := itemRows.Scan(&weekday, &item.ItemID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return nil, err
		}
		if i, ok := index[time.Weekday(weekday)]; ok {
			prefs[i].Items = append(prefs[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}
	return prefs, nil
}

// --- OrderRepository implementation ---

const orderColumns = `id, customer_id, code, kind, status, total_amount, skipped_amount, paid_amount,
                      delivery_fee, invoice_id, shipping_address, first_delivery_date, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.Code, &o.Kind, &o.Status, &o.TotalAmount, &o.SkippedAmount,
		&o.PaidAmount, &o.DeliveryFee, &o.InvoiceID, &o.ShippingAddress, &o.FirstDeliveryDate, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE customer_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) GetByCustomerAndStatus(ctx context.Context, customerID int64, status model.OrderStatus) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE customer_id=$1 AND status=$2 AND kind='subscription'
                   ORDER BY created_at DESC LIMIT 1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, customerID, status))
}

// --- SubOrderRepository implementation ---

const subOrderColumns = `id, order_id, status, delivery_date, slot_start, slot_end, dispatch_id, updated_at`

func scanSubOrder(row pgx.Row) (*model.SubOrder, error) {
	var so model.SubOrder
	err := row.Scan(&so.ID, &so.OrderID, &so.Status, &so.DeliveryDate, &so.SlotStart, &so.SlotEnd, &so.DispatchID, &so.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &so, nil
}

func (r *subOrderRepository) GetByID(ctx context.Context, id int64) (*model.SubOrder, error) {
	const query = `SELECT ` + subOrderColumns + ` FROM suborders WHERE id=$1`
	return scanSubOrder(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *subOrderRepository) ListByOrder(ctx context.Context, orderID int64) ([]model.SubOrder, error) {
	const query = `SELECT ` + subOrderColumns + ` FROM suborders WHERE order_id=$1 ORDER BY delivery_date`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.SubOrder
	for rows.Next() {
		so, err := scanSubOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *so)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryItems(ctx context.Context, q queryer, query string, args ...any) ([]model.OrderItem, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.SubOrderID, &item.ItemID, &item.Name, &item.Price, &item.Quantity, &item.RefundQuantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *subOrderRepository) Items(ctx context.Context, subOrderID int64) ([]model.OrderItem, error) {
	const query = `SELECT id, suborder_id, item_id, name, price, quantity, refund_quantity
                   FROM order_items WHERE suborder_id=$1 ORDER BY id`
	return queryItems(ctx, r.storage.pool, query, subOrderID)
}

func (r *subOrderRepository) SetDispatchID(ctx context.Context, subOrderID int64, dispatchID string) error {
	const query = `UPDATE suborders SET dispatch_id=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.storage.pool.Exec(ctx, query, dispatchID, subOrderID)
	return err
}

// lockAggregate loads the suborder, its order and its items under row locks.
// Lock order is always suborder, order, customer so concurrent transitions
// on the same aggregate serialize without deadlocking.
func lockAggregate(ctx context.Context, tx pgx.Tx, subOrderID int64) (*model.SubOrder, *model.Order, []model.OrderItem, error) {
	const subQuery = `SELECT ` + subOrderColumns + ` FROM suborders WHERE id=$1 FOR UPDATE`
	sub, err := scanSubOrder(tx.QueryRow(ctx, subQuery, subOrderID))
	if err != nil {
		return nil, nil, nil, err
	}

	const ordQuery = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 FOR UPDATE`
	order, err := scanOrder(tx.QueryRow(ctx, ordQuery, sub.OrderID))
	if err != nil {
		return nil, nil, nil, err
	}

	const itemQuery = `SELECT id, suborder_id, item_id, name, price, quantity, refund_quantity
                       FROM order_items WHERE suborder_id=$1 ORDER BY id FOR UPDATE`
	items, err := queryItems(ctx, tx, itemQuery, subOrderID)
	if err != nil {
		return nil, nil, nil, err
	}
	return sub, order, items, nil
}

func (r *subOrderRepository) ApplySkip(ctx context.Context, subOrderID int64, upcoming bool, minTotal decimal.Decimal, cancel repository.DispatchCancel) (*lifecycle.SkipDecision, error) {
	var decision *lifecycle.SkipDecision
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		sub, order, items, err := lockAggregate(ctx, tx, subOrderID)
		if err != nil {
			return err
		}

		decision, err = lifecycle.DecideSkip(order, sub, items, upcoming, minTotal)
		if err != nil {
			return err
		}

		if decision.DispatchID != "" {
			if err := cancel(ctx, decision.DispatchID); err != nil {
				r.storage.logger.Error("cancel delivery failed",
					slog.Int64("suborder", subOrderID), slog.String("error", err.Error()))
				return fmt.Errorf("cancel delivery: %w", domainErrors.ErrExternalDependency)
			}
		}

		if _, err := tx.Exec(ctx, `UPDATE orders SET total_amount=$1, skipped_amount=$2, updated_at=NOW() WHERE id=$3`,
			decision.NewTotalAmount, decision.NewSkippedAmount, order.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE suborders SET status=$1, dispatch_id=NULL, updated_at=NOW() WHERE id=$2`,
			model.SubOrderStatusSkipped, subOrderID); err != nil {
			return err
		}
		if err := r.storage.creditTx(ctx, tx, decision.CustomerID, decision.ItemsTotal, decision.Note); err != nil {
			return err
		}
		return enqueueTx(ctx, tx, model.Notification{
			CustomerID: decision.CustomerID,
			Channel:    model.ChannelEmail,
			Template:   "delivery_skipped",
			Payload: map[string]string{
				"suborder_id": fmt.Sprintf("%d", subOrderID),
				"credit":      decision.ItemsTotal.StringFixed(2),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return decision, nil
}

func (r *subOrderRepository) ApplyUnskip(ctx context.Context, subOrderID int64, upcoming bool, create repository.DispatchCreate) (*lifecycle.UnskipDecision, error) {
	var decision *lifecycle.UnskipDecision
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		sub, order, items, err := lockAggregate(ctx, tx, subOrderID)
		if err != nil {
			return err
		}

		var balance decimal.Decimal
		if err := tx.QueryRow(ctx, `SELECT wallet FROM customers WHERE id=$1 FOR UPDATE`, order.CustomerID).Scan(&balance); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}

		decision, err = lifecycle.DecideUnskip(order, sub, items, upcoming, balance)
		if err != nil {
			return err
		}

		dispatchID, err := create(ctx, model.DispatchRequest{
			OrderCode:    order.Code,
			SubOrderID:   sub.ID,
			Address:      order.ShippingAddress,
			DeliveryDate: sub.DeliveryDate,
			SlotStart:    sub.SlotStart,
			SlotEnd:      sub.SlotEnd,
		})
		if err != nil {
			r.storage.logger.Error("create delivery failed",
				slog.Int64("suborder", subOrderID), slog.String("error", err.Error()))
			return fmt.Errorf("create delivery: %w", domainErrors.ErrExternalDependency)
		}

		if _, err := tx.Exec(ctx, `UPDATE orders SET total_amount=$1, skipped_amount=$2, updated_at=NOW() WHERE id=$3`,
			decision.NewTotalAmount, decision.NewSkippedAmount, order.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE suborders SET status=$1, dispatch_id=$2, updated_at=NOW() WHERE id=$3`,
			model.SubOrderStatusAccepted, dispatchID, subOrderID); err != nil {
			return err
		}
		if err := debitLockedTx(ctx, tx, decision.CustomerID, balance, decision.ItemsTotal, decision.Note); err != nil {
			return err
		}
		return enqueueTx(ctx, tx, model.Notification{
			CustomerID: decision.CustomerID,
			Channel:    model.ChannelEmail,
			Template:   "delivery_restored",
			Payload: map[string]string{
				"suborder_id": fmt.Sprintf("%d", subOrderID),
				"charge":      decision.ItemsTotal.StringFixed(2),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return decision, nil
}

func (r *subOrderRepository) ApplyRefund(ctx context.Context, req lifecycle.RefundRequest) (*lifecycle.RefundDecision, error) {
	var decision *lifecycle.RefundDecision
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		sub, order, items, err := lockAggregate(ctx, tx, req.SubOrderID)
		if err != nil {
			return err
		}

		decision, err = lifecycle.DecideRefund(order, sub, items, req)
		if err != nil {
			return err
		}

		for _, credit := range decision.Credits {
			if _, err := tx.Exec(ctx, `UPDATE order_items SET refund_quantity = refund_quantity + $1 WHERE id=$2`,
				credit.Quantity, credit.OrderItemID); err != nil {
				return err
			}
		}
		if decision.FullyRefunded {
			if _, err := tx.Exec(ctx, `UPDATE suborders SET status=$1, updated_at=now() WHERE id=$2`,
				model.SubOrderStatusRefunded, req.SubOrderID); err != nil {
				return err
			}
		}
		note := fmt.Sprintf("refund for delivery #%d", req.SubOrderID)
		if err := r.storage.creditTx(ctx, tx, decision.CustomerID, decision.Total, note); err != nil {
			return err
		}
		return enqueueTx(ctx, tx, model.Notification{
			CustomerID: decision.CustomerID,
			Channel:    model.ChannelEmail,
			Template:   "refund_issued",
			Payload: map[string]string{
				"suborder_id": fmt.Sprintf("%d", req.SubOrderID),
				"amount":      decision.Total.StringFixed(2),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return decision, nil
}

// --- WalletRepository implementation ---

// creditTx locks the customer wallet, increases it, and appends the paired
// ledger entry. Both writes commit together or not at all.
func (s *Storage) creditTx(ctx context.Context, tx pgx.Tx, customerID int64, amount decimal.Decimal, description string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domainErrors.ErrInvalidAmount
	}
	var balance decimal.Decimal
	if err := tx.QueryRow(ctx, `SELECT wallet FROM customers WHERE id=$1 FOR UPDATE`, customerID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrNotFound
		}
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE customers SET wallet = wallet + $1 WHERE id=$2`, amount, customerID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `INSERT INTO transactions (transaction_id, customer_id, type, amount, description) VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), customerID, model.TransactionCredit, amount, description)
	return err
}

// debitLockedTx assumes the caller already holds the wallet row lock and has
// read balance under it.
func debitLockedTx(ctx context.Context, tx pgx.Tx, customerID int64, balance, amount decimal.Decimal, description string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domainErrors.ErrInvalidAmount
	}
	if balance.LessThan(amount) {
		return domainErrors.ErrInsufficientWallet
	}
	if _, err := tx.Exec(ctx, `UPDATE customers SET wallet = wallet - $1 WHERE id=$2`, amount, customerID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `INSERT INTO transactions (transaction_id, customer_id, type, amount, description) VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), customerID, model.TransactionDebit, amount, description)
	return err
}

func (r *walletRepository) Balance(ctx context.Context, customerID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.storage.pool.QueryRow(ctx, `SELECT wallet FROM customers WHERE id=$1`, customerID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domainErrors.ErrNotFound
		}
		return decimal.Zero, err
	}
	return balance, nil
}

func (r *walletRepository) Credit(ctx context.Context, customerID int64, amount decimal.Decimal, description string) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		return r.storage.creditTx(ctx, tx, customerID, amount, description)
	})
}

func (r *walletRepository) Debit(ctx context.Context, customerID int64, amount decimal.Decimal, description string) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var balance decimal.Decimal
		if err := tx.QueryRow(ctx, `SELECT wallet FROM customers WHERE id=$1 FOR UPDATE`, customerID).Scan(&balance); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}
		return debitLockedTx(ctx, tx, customerID, balance, amount, description)
	})
}

func (r *walletRepository) History(ctx context.Context, customerID int64) ([]model.Transaction, error) {
	const query = `SELECT id, transaction_id, customer_id, type, amount, description, created_at
                   FROM transactions WHERE customer_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.TransactionID, &t.CustomerID, &t.Type, &t.Amount, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- CouponRepository implementation ---

func (r *couponRepository) GetActiveByCode(ctx context.Context, code string) (*model.Coupon, error) {
	const query = `SELECT id, code, discount_percentage, discount_amount, max_usage_limit,
                          address_usage_limit, usage_count, plan_type, active
                   FROM coupons WHERE code=$1 AND active`
	var c model.Coupon
	err := r.storage.pool.QueryRow(ctx, query, code).Scan(&c.ID, &c.Code, &c.DiscountPercentage, &c.DiscountAmount,
		&c.MaxUsageLimit, &c.AddressUsageLimit, &c.UsageCount, &c.PlanType, &c.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *couponRepository) AddressUsage(ctx context.Context, couponID int64, address string) (int, error) {
	var count int
	err := r.storage.pool.QueryRow(ctx, `SELECT usage_count FROM coupon_address_usage WHERE coupon_id=$1 AND address=$2`,
		couponID, address).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

func (r *couponRepository) Commit(ctx context.Context, couponID int64, address string) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE coupons SET usage_count = usage_count + 1 WHERE id=$1`, couponID); err != nil {
			return err
		}
		const upsert = `INSERT INTO coupon_address_usage (coupon_id, address, usage_count)
                        VALUES ($1, $2, 1)
                        ON CONFLICT (coupon_id, address) DO UPDATE
                        SET usage_count = coupon_address_usage.usage_count + 1`
		_, err := tx.Exec(ctx, upsert, couponID, address)
		return err
	})
}

// --- NotificationRepository implementation ---

func enqueueTx(ctx context.Context, tx pgx.Tx, n model.Notification) error {
	_, err := tx.Exec(ctx, `INSERT INTO notifications (customer_id, channel, template, payload, status) VALUES ($1, $2, $3, $4, $5)`,
		n.CustomerID, n.Channel, n.Template, n.Payload, model.NotificationPending)
	return err
}

func (r *notificationRepository) Enqueue(ctx context.Context, n model.Notification) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		return enqueueTx(ctx, tx, n)
	})
}

func (r *notificationRepository) SelectBatchForSending(ctx context.Context, limit int) ([]model.Notification, error) {
	const selectQuery = `SELECT id, customer_id, channel, template, payload, status, attempts, created_at, updated_at
                         FROM notifications
                         WHERE status='PENDING' AND attempts < 2
                         ORDER BY created_at
                         LIMIT $1
                         FOR UPDATE SKIP LOCKED`

	var batch []model.Notification
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var n model.Notification
			if err := rows.Scan(&n.ID, &n.CustomerID, &n.Channel, &n.Template, &n.Payload, &n.Status, &n.Attempts, &n.CreatedAt, &n.UpdatedAt); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `UPDATE notifications SET attempts = attempts + 1, updated_at=NOW() WHERE id=$1`, n.ID); err != nil {
				return err
			}
			n.Attempts++
			batch = append(batch, n)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *notificationRepository) MarkSent(ctx context.Context, id int64) error {
	_, err := r.storage.pool.Exec(ctx, `UPDATE notifications SET status=$1, updated_at=NOW() WHERE id=$2`,
		model.NotificationSent, id)
	return err
}

func (r *notificationRepository) MarkFailed(ctx context.Context, id int64) error {
	_, err := r.storage.pool.Exec(ctx, `UPDATE notifications SET status=$1, updated_at=NOW() WHERE id=$2`,
		model.NotificationFailed, id)
	return err
}

// --- WebhookEventRepository implementation ---

func (r *webhookEventRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := r.storage.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM webhook_events WHERE event_id=$1)`, eventID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// --- RolloverRepository implementation ---

func (r *rolloverRepository) CompleteAndActivate(ctx context.Context, eventID, invoiceID string, customerID int64) (*repository.RolloverTransition, error) {
	transition := &repository.RolloverTransition{}
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		// Dedupe insert goes first so a redelivered event aborts before
		// touching any order state.
		if _, err := tx.Exec(ctx, `INSERT INTO webhook_events (event_id, event_type) VALUES ($1, $2)`,
			eventID, model.EventRecurringPaymentSucceeded); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return domainErrors.ErrAlreadyExists
			}
			return err
		}

		const lockedOrderQuery = `SELECT ` + orderColumns + ` FROM orders
                                  WHERE customer_id=$1 AND status=$2 AND kind='subscription'
                                  ORDER BY created_at DESC LIMIT 1 FOR UPDATE`
		active, err := scanOrder(tx.QueryRow(ctx, lockedOrderQuery, customerID, model.OrderStatusActive))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2`,
			model.OrderStatusCompleted, active.ID); err != nil {
			return err
		}
		active.Status = model.OrderStatusCompleted
		transition.Completed = active

		upcoming, err := scanOrder(tx.QueryRow(ctx, lockedOrderQuery, customerID, model.OrderStatusUpcoming))
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				return nil
			}
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE orders SET status=$1, invoice_id=$2, updated_at=NOW() WHERE id=$3`,
			model.OrderStatusActive, invoiceID, upcoming.ID); err != nil {
			return err
		}
		upcoming.Status = model.OrderStatusActive
		upcoming.InvoiceID = invoiceID
		transition.Activated = upcoming

		const subQuery = `SELECT ` + subOrderColumns + ` FROM suborders WHERE order_id=$1 ORDER BY delivery_date`
		rows, err := tx.Query(ctx, subQuery, upcoming.ID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			so, err := scanSubOrder(rows)
			if err != nil {
				return err
			}
			transition.SubOrders = append(transition.SubOrders, *so)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return transition, nil
}

func (r *rolloverRepository) CreateUpcomingOrder(ctx context.Context, draft model.OrderDraft) (*model.Order, error) {
	var order *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const orderInsert = `INSERT INTO orders (customer_id, code, kind, status, total_amount, delivery_fee,
                                                 shipping_address, first_delivery_date)
                             VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                             RETURNING id, created_at, updated_at`
		order = &model.Order{
			CustomerID:        draft.CustomerID,
			Code:              draft.Code,
			Kind:              draft.Kind,
			Status:            draft.Status,
			TotalAmount:       draft.TotalAmount,
			SkippedAmount:     decimal.Zero,
			DeliveryFee:       draft.DeliveryFee,
			ShippingAddress:   draft.ShippingAddress,
			FirstDeliveryDate: draft.FirstDeliveryDate,
		}
		if err := tx.QueryRow(ctx, orderInsert, draft.CustomerID, draft.Code, draft.Kind, draft.Status,
			draft.TotalAmount, draft.DeliveryFee, draft.ShippingAddress, draft.FirstDeliveryDate).
			Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return err
		}

		for _, sub := range draft.SubOrders {
			var subOrderID int64
			const subInsert = `INSERT INTO suborders (order_id, status, delivery_date, slot_start, slot_end)
                               VALUES ($1, $2, $3, $4, $5) RETURNING id`
			if err := tx.QueryRow(ctx, subInsert, order.ID, model.SubOrderStatusAccepted,
				sub.DeliveryDate, sub.SlotStart, sub.SlotEnd).Scan(&subOrderID); err != nil {
				return err
			}
			for _, item := range sub.Items {
				const itemInsert = `INSERT INTO order_items (suborder_id, item_id, name, price, quantity)
                                    VALUES ($1, $2, $3, $4, $5)`
				if _, err := tx.Exec(ctx, itemInsert, subOrderID, item.ItemID, item.Name, item.Price, item.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}

package test

import (
	"context"

	"github.com/shopspring/decimal"

	domainErrors "github.com/platewise/platewise/internal/domain/errors"
	"github.com/platewise/platewise/internal/domain/lifecycle"
	"github.com/platewise/platewise/internal/domain/model"
	"github.com/platewise/platewise/internal/domain/repository"
)

// CustomerRepositoryStub stores customers in-memory for tests.
type CustomerRepositoryStub struct {
	Customers map[string]*model.Customer
	ByID      map[int64]*model.Customer
	Prefs     map[int64][]model.DayPreference
	Next      int64
	Err       error
	PrefsErr  error
}

// NewCustomerRepositoryStub constructs stub repository with initialized maps.
func NewCustomerRepositoryStub() *CustomerRepositoryStub {
	return &CustomerRepositoryStub{
		Customers: make(map[string]*model.Customer),
		ByID:      make(map[int64]*model.Customer),
		Prefs:     make(map[int64][]model.DayPreference),
		Next:      1,
	}
}

// Create registers customer unless already exists or stub has explicit error.
func (s *CustomerRepositoryStub) Create(ctx context.Context, email, passwordHash string) (*model.Customer, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Customers == nil {
		s.Customers = make(map[string]*model.Customer)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.Customer)
	}
	if _, exists := s.Customers[email]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	customer := &model.Customer{ID: s.Next, Email: email, PasswordHash: passwordHash}
	s.Next++
	s.Customers[email] = customer
	s.ByID[customer.ID] = customer
	return customer, nil
}

// GetByEmail fetches customer by email or returns not found.
func (s *CustomerRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if customer, ok := s.Customers[email]; ok {
		return customer, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches customer by identifier or returns not found.
func (s *CustomerRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if customer, ok := s.ByID[id]; ok {
		return customer, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByProviderRef scans stored customers for a billing-provider reference.
func (s *CustomerRepositoryStub) GetByProviderRef(ctx context.Context, ref string) (*model.Customer, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for _, customer := range s.ByID {
		if customer.ProviderRef == ref {
			return customer, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// Preferences returns the configured delivery plan for a customer.
func (s *CustomerRepositoryStub) Preferences(ctx context.Context, customerID int64) ([]model.DayPreference, error) {
	if s.PrefsErr != nil {
		return nil, s.PrefsErr
	}
	return s.Prefs[customerID], nil
}

// OrderRepositoryStub allows tests to customize behaviour.
type OrderRepositoryStub struct {
	GetByIDFn                func(context.Context, int64) (*model.Order, error)
	ListByCustomerFn         func(context.Context, int64) ([]model.Order, error)
	GetByCustomerAndStatusFn func(context.Context, int64, model.OrderStatus) (*model.Order, error)

	Orders []model.Order
}

// GetByID returns matched order either via override or stored slice.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	for _, o := range s.Orders {
		if o.ID == id {
			order := o
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// ListByCustomer returns orders from configured slice.
func (s *OrderRepositoryStub) ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error) {
	if s.ListByCustomerFn != nil {
		return s.ListByCustomerFn(ctx, customerID)
	}
	var out []model.Order
	for _, o := range s.Orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

// GetByCustomerAndStatus returns the first stored order in the given status.
func (s *OrderRepositoryStub) GetByCustomerAndStatus(ctx context.Context, customerID int64, status model.OrderStatus) (*model.Order, error) {
	if s.GetByCustomerAndStatusFn != nil {
		return s.GetByCustomerAndStatusFn(ctx, customerID, status)
	}
	for _, o := range s.Orders {
		if o.CustomerID == customerID && o.Status == status {
			order := o
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// SubOrderRepositoryStub lets tests control per-delivery transitions.
type SubOrderRepositoryStub struct {
	GetByIDFn       func(context.Context, int64) (*model.SubOrder, error)
	ListByOrderFn   func(context.Context, int64) ([]model.SubOrder, error)
	ItemsFn         func(context.Context, int64) ([]model.OrderItem, error)
	SetDispatchIDFn func(context.Context, int64, string) error
	ApplySkipFn     func(context.Context, int64, bool, decimal.Decimal, repository.DispatchCancel) (*lifecycle.SkipDecision, error)
	ApplyUnskipFn   func(context.Context, int64, bool, repository.DispatchCreate) (*lifecycle.UnskipDecision, error)
	ApplyRefundFn   func(context.Context, lifecycle.RefundRequest) (*lifecycle.RefundDecision, error)

	SubOrders     []model.SubOrder
	ItemsBySub    map[int64][]model.OrderItem
	DispatchCalls []DispatchAssignment
}

// DispatchAssignment records a SetDispatchID invocation.
type DispatchAssignment struct {
	SubOrderID int64
	DispatchID string
}

// GetByID returns matched suborder either via override or stored slice.
func (s *SubOrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.SubOrder, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	for _, sub := range s.SubOrders {
		if sub.ID == id {
			out := sub
			return &out, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// ListByOrder returns suborders from the configured slice.
func (s *SubOrderRepositoryStub) ListByOrder(ctx context.Context, orderID int64) ([]model.SubOrder, error) {
	if s.ListByOrderFn != nil {
		return s.ListByOrderFn(ctx, orderID)
	}
	var out []model.SubOrder
	for _, sub := range s.SubOrders {
		if sub.OrderID == orderID {
			out = append(out, sub)
		}
	}
	return out, nil
}

// Items returns configured line items for a suborder.
func (s *SubOrderRepositoryStub) Items(ctx context.Context, subOrderID int64) ([]model.OrderItem, error) {
	if s.ItemsFn != nil {
		return s.ItemsFn(ctx, subOrderID)
	}
	return s.ItemsBySub[subOrderID], nil
}

// SetDispatchID records dispatch assignments.
func (s *SubOrderRepositoryStub) SetDispatchID(ctx context.Context, subOrderID int64, dispatchID string) error {
	if s.SetDispatchIDFn != nil {
		return s.SetDispatchIDFn(ctx, subOrderID, dispatchID)
	}
	s.DispatchCalls = append(s.DispatchCalls, DispatchAssignment{SubOrderID: subOrderID, DispatchID: dispatchID})
	return nil
}

// ApplySkip executes the override when provided.
func (s *SubOrderRepositoryStub) ApplySkip(ctx context.Context, subOrderID int64, upcoming bool, minTotal decimal.Decimal, cancel repository.DispatchCancel) (*lifecycle.SkipDecision, error) {
	if s.ApplySkipFn != nil {
		return s.ApplySkipFn(ctx, subOrderID, upcoming, minTotal, cancel)
	}
	return nil, domainErrors.ErrNotFound
}

// ApplyUnskip executes the override when provided.
func (s *SubOrderRepositoryStub) ApplyUnskip(ctx context.Context, subOrderID int64, upcoming bool, create repository.DispatchCreate) (*lifecycle.UnskipDecision, error) {
	if s.ApplyUnskipFn != nil {
		return s.ApplyUnskipFn(ctx, subOrderID, upcoming, create)
	}
	return nil, domainErrors.ErrNotFound
}

// ApplyRefund executes the override when provided.
func (s *SubOrderRepositoryStub) ApplyRefund(ctx context.Context, req lifecycle.RefundRequest) (*lifecycle.RefundDecision, error) {
	if s.ApplyRefundFn != nil {
		return s.ApplyRefundFn(ctx, req)
	}
	return nil, domainErrors.ErrNotFound
}

// WalletRepositoryStub lets tests control store-credit data.
type WalletRepositoryStub struct {
	BalanceFn func(context.Context, int64) (decimal.Decimal, error)
	CreditFn  func(context.Context, int64, decimal.Decimal, string) error
	DebitFn   func(context.Context, int64, decimal.Decimal, string) error
	HistoryFn func(context.Context, int64) ([]model.Transaction, error)

	Balances map[int64]decimal.Decimal
	Ledger   []model.Transaction
	Credits  []WalletMutation
	Debits   []WalletMutation
}

// WalletMutation records one credit or debit invocation.
type WalletMutation struct {
	CustomerID  int64
	Amount      decimal.Decimal
	Description string
}

// Balance returns the configured balance, zero when absent.
func (s *WalletRepositoryStub) Balance(ctx context.Context, customerID int64) (decimal.Decimal, error) {
	if s.BalanceFn != nil {
		return s.BalanceFn(ctx, customerID)
	}
	if s.Balances == nil {
		return decimal.Zero, domainErrors.ErrNotFound
	}
	balance, ok := s.Balances[customerID]
	if !ok {
		return decimal.Zero, domainErrors.ErrNotFound
	}
	return balance, nil
}

// Credit records the mutation and applies it to the stored balance.
func (s *WalletRepositoryStub) Credit(ctx context.Context, customerID int64, amount decimal.Decimal, description string) error {
	if s.CreditFn != nil {
		return s.CreditFn(ctx, customerID, amount, description)
	}
	s.Credits = append(s.Credits, WalletMutation{CustomerID: customerID, Amount: amount, Description: description})
	if s.Balances != nil {
		s.Balances[customerID] = s.Balances[customerID].Add(amount)
	}
	return nil
}

// Debit records the mutation and applies it to the stored balance.
func (s *WalletRepositoryStub) Debit(ctx context.Context, customerID int64, amount decimal.Decimal, description string) error {
	if s.DebitFn != nil {
		return s.DebitFn(ctx, customerID, amount, description)
	}
	if s.Balances != nil && s.Balances[customerID].LessThan(amount) {
		return domainErrors.ErrInsufficientWallet
	}
	s.Debits = append(s.Debits, WalletMutation{CustomerID: customerID, Amount: amount, Description: description})
	if s.Balances != nil {
		s.Balances[customerID] = s.Balances[customerID].Sub(amount)
	}
	return nil
}

// History returns configured ledger entries.
func (s *WalletRepositoryStub) History(ctx context.Context, customerID int64) ([]model.Transaction, error) {
	if s.HistoryFn != nil {
		return s.HistoryFn(ctx, customerID)
	}
	return s.Ledger, nil
}

// CouponRepositoryStub lets tests control coupon lookups.
type CouponRepositoryStub struct {
	GetActiveByCodeFn func(context.Context, string) (*model.Coupon, error)
	AddressUsageFn    func(context.Context, int64, string) (int, error)
	CommitFn          func(context.Context, int64, string) error

	Coupons map[string]*model.Coupon
	Usage   map[string]int
	Commits []CouponCommit
}

// CouponCommit records one usage-counter commit.
type CouponCommit struct {
	CouponID int64
	Address  string
}

// GetActiveByCode returns the configured coupon or not found.
func (s *CouponRepositoryStub) GetActiveByCode(ctx context.Context, code string) (*model.Coupon, error) {
	if s.GetActiveByCodeFn != nil {
		return s.GetActiveByCodeFn(ctx, code)
	}
	if coupon, ok := s.Coupons[code]; ok {
		return coupon, nil
	}
	return nil, domainErrors.ErrNotFound
}

// AddressUsage returns the configured per-address count, zero by default.
func (s *CouponRepositoryStub) AddressUsage(ctx context.Context, couponID int64, address string) (int, error) {
	if s.AddressUsageFn != nil {
		return s.AddressUsageFn(ctx, couponID, address)
	}
	return s.Usage[address], nil
}

// Commit records usage-counter increments.
func (s *CouponRepositoryStub) Commit(ctx context.Context, couponID int64, address string) error {
	if s.CommitFn != nil {
		return s.CommitFn(ctx, couponID, address)
	}
	s.Commits = append(s.Commits, CouponCommit{CouponID: couponID, Address: address})
	return nil
}

// NotificationRepositoryStub stores the outbox queue for tests.
type NotificationRepositoryStub struct {
	EnqueueFn               func(context.Context, model.Notification) error
	SelectBatchForSendingFn func(context.Context, int) ([]model.Notification, error)
	MarkSentFn              func(context.Context, int64) error
	MarkFailedFn            func(context.Context, int64) error

	Enqueued []model.Notification
	Batch    []model.Notification
	Sent     []int64
	Failed   []int64
}

// Enqueue records queued notifications.
func (s *NotificationRepositoryStub) Enqueue(ctx context.Context, n model.Notification) error {
	if s.EnqueueFn != nil {
		return s.EnqueueFn(ctx, n)
	}
	s.Enqueued = append(s.Enqueued, n)
	return nil
}

// SelectBatchForSending returns queued notifications for delivery.
func (s *NotificationRepositoryStub) SelectBatchForSending(ctx context.Context, limit int) ([]model.Notification, error) {
	if s.SelectBatchForSendingFn != nil {
		return s.SelectBatchForSendingFn(ctx, limit)
	}
	if limit < len(s.Batch) {
		return s.Batch[:limit], nil
	}
	return s.Batch, nil
}

// MarkSent records terminal success transitions.
func (s *NotificationRepositoryStub) MarkSent(ctx context.Context, id int64) error {
	if s.MarkSentFn != nil {
		return s.MarkSentFn(ctx, id)
	}
	s.Sent = append(s.Sent, id)
	return nil
}

// MarkFailed records terminal failure transitions.
func (s *NotificationRepositoryStub) MarkFailed(ctx context.Context, id int64) error {
	if s.MarkFailedFn != nil {
		return s.MarkFailedFn(ctx, id)
	}
	s.Failed = append(s.Failed, id)
	return nil
}

// WebhookEventRepositoryStub tracks seen payment-provider event ids.
type WebhookEventRepositoryStub struct {
	ExistsFn func(context.Context, string) (bool, error)
	Seen     map[string]bool
}

// Exists reports whether an event id was already recorded.
func (s *WebhookEventRepositoryStub) Exists(ctx context.Context, eventID string) (bool, error) {
	if s.ExistsFn != nil {
		return s.ExistsFn(ctx, eventID)
	}
	return s.Seen[eventID], nil
}

// RolloverRepositoryStub lets tests control the cycle rollover steps.
type RolloverRepositoryStub struct {
	CompleteAndActivateFn func(context.Context, string, string, int64) (*repository.RolloverTransition, error)
	CreateUpcomingOrderFn func(context.Context, model.OrderDraft) (*model.Order, error)

	Transition *repository.RolloverTransition
	Drafts     []model.OrderDraft
}

// CompleteAndActivate returns the configured transition.
func (s *RolloverRepositoryStub) CompleteAndActivate(ctx context.Context, eventID, invoiceID string, customerID int64) (*repository.RolloverTransition, error) {
	if s.CompleteAndActivateFn != nil {
		return s.CompleteAndActivateFn(ctx, eventID, invoiceID, customerID)
	}
	if s.Transition == nil {
		return nil, domainErrors.ErrNotFound
	}
	return s.Transition, nil
}

// CreateUpcomingOrder records synthesized drafts.
func (s *RolloverRepositoryStub) CreateUpcomingOrder(ctx context.Context, draft model.OrderDraft) (*model.Order, error) {
	if s.CreateUpcomingOrderFn != nil {
		return s.CreateUpcomingOrderFn(ctx, draft)
	}
	s.Drafts = append(s.Drafts, draft)
	return &model.Order{
		ID:                int64(len(s.Drafts)),
		CustomerID:        draft.CustomerID,
		Code:              draft.Code,
		Kind:              draft.Kind,
		Status:            draft.Status,
		TotalAmount:       draft.TotalAmount,
		DeliveryFee:       draft.DeliveryFee,
		ShippingAddress:   draft.ShippingAddress,
		FirstDeliveryDate: draft.FirstDeliveryDate,
	}, nil
}

package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Customers() CustomerRepository
	Orders() OrderRepository
	SubOrders() SubOrderRepository
	Wallets() WalletRepository
	Coupons() CouponRepository
	Notifications() NotificationRepository
	WebhookEvents() WebhookEventRepository
	Rollovers() RolloverRepository
}

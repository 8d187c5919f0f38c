// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/albarakah/umrah-backoffice/internal/domain"
)

// Cache provides generic caching. Set uses the cache's default TTL;
// SetWithTTL gives one entry its own lifetime.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	SetWithTTL(key string, value T, ttl time.Duration)
	Delete(key string)
}

// RegionFetcher retrieves Indonesian administrative regions (wilayah).
type RegionFetcher interface {
	Provinces(ctx context.Context) ([]domain.Region, error)
	Regencies(ctx context.Context, provinceID string) ([]domain.Region, error)
	Districts(ctx context.Context, regencyID string) ([]domain.Region, error)
	Villages(ctx context.Context, districtID string) ([]domain.Region, error)
}

// ChatPublisher fans chat events out to connected clients.
type ChatPublisher interface {
	Publish(userID string, ev *domain.ChatEvent)
}

// LedgerStore defines the persistence operations of the payment ledger.
// Mutations on one account go through a single transaction with an
// optimistic version check; a conflict surfaces as
// domain.ErrConcurrentModification and the service retries.
type LedgerStore interface {
	// Accounts
	CreateAccount(ctx context.Context, acc *domain.BalanceAccount) error
	GetAccount(ctx context.Context, accountID string) (*domain.BalanceAccount, error)
	GetAccountByOwner(ctx context.Context, kind, ownerID string) (*domain.BalanceAccount, error)
	ListDebtAccounts(ctx context.Context, vendorID string) ([]domain.BalanceAccount, error)
	// UpdateAccountHeader amends totalDue/dueDate/cancelled and re-persists
	// the derived fields, guarded by the version check.
	UpdateAccountHeader(ctx context.Context, acc *domain.BalanceAccount) error

	// Payments. Each mutation persists the payment row and the recomputed
	// account state in one transaction, guarded by acc.Version. Expense
	// payments linked to a package roll their gross delta into the
	// package's actual cost within that same transaction.
	AppendPayment(ctx context.Context, acc *domain.BalanceAccount, p *domain.PaymentRecord) error
	UpdatePayment(ctx context.Context, acc *domain.BalanceAccount, p *domain.PaymentRecord) error
	DeletePayment(ctx context.Context, acc *domain.BalanceAccount, paymentID string) error

	GetPayment(ctx context.Context, paymentID string) (*domain.PaymentRecord, error)
	ListPayments(ctx context.Context, filter *domain.PaymentFilter) ([]domain.PaymentRecord, error)
}

// JamaahStore defines persistence for pilgrims.
type JamaahStore interface {
	CreateJamaah(ctx context.Context, j *domain.Jamaah) error
	GetJamaah(ctx context.Context, id string) (*domain.Jamaah, error)
	ListJamaah(ctx context.Context, filter *domain.JamaahFilter) ([]domain.JamaahWithBalance, error)
	UpdateJamaah(ctx context.Context, j *domain.Jamaah) error
	DeleteJamaah(ctx context.Context, id string) error
}

// PackageStore defines persistence for travel packages.
type PackageStore interface {
	CreatePackage(ctx context.Context, p *domain.Package) error
	GetPackage(ctx context.Context, id string) (*domain.Package, error)
	GetPackageByCode(ctx context.Context, code string) (*domain.Package, error)
	ListPackages(ctx context.Context, status string) ([]domain.Package, error)
	UpdatePackage(ctx context.Context, p *domain.Package) error
	DeletePackage(ctx context.Context, id string) error
	// AdjustBookedSeats changes booked_seats by delta, failing when the
	// capacity would be exceeded or the count would go negative.
	AdjustBookedSeats(ctx context.Context, id string, delta int) error

	// Scheduler sweeps. Dates compare as YYYY-MM-DD strings; both return
	// how many packages changed status.
	ClosePackagesDepartingBy(ctx context.Context, cutoff string) (int, error)
	CompletePackagesReturnedBefore(ctx context.Context, cutoff string) (int, error)
}

// VendorStore defines persistence for vendors.
type VendorStore interface {
	CreateVendor(ctx context.Context, v *domain.Vendor) error
	GetVendor(ctx context.Context, id string) (*domain.Vendor, error)
	ListVendors(ctx context.Context, vendorType string) ([]domain.Vendor, error)
	UpdateVendor(ctx context.Context, v *domain.Vendor) error
	DeleteVendor(ctx context.Context, id string) error
}

// ReportStore runs the aggregation queries behind reports and dashboards.
type ReportStore interface {
	TotalsByDirection(ctx context.Context, from, to string) (income, expense domain.Money, err error)
	OutstandingTotals(ctx context.Context) (receivables, debts domain.Money, err error)
	CountActiveJamaah(ctx context.Context) (int, error)
	CountOpenPackages(ctx context.Context) (int, error)
	CategoryBreakdown(ctx context.Context, direction, from, to string) ([]domain.CategoryTotal, error)
	MonthlyTrend(ctx context.Context, from, to string) ([]domain.MonthlyTotal, error)
	PackageProfits(ctx context.Context) ([]domain.PackageProfit, error)
}

// AuthStore defines persistence for users and refresh tokens.
type AuthStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, u *domain.User) error
	DeleteUser(ctx context.Context, id string) error

	StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

// ChatStore defines persistence for staff conversations.
type ChatStore interface {
	GetOrCreateConversation(ctx context.Context, userA, userB string) (*domain.Conversation, error)
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error)
	AppendMessage(ctx context.Context, m *domain.Message) error
	ListMessages(ctx context.Context, conversationID string, page, pageSize int) ([]domain.Message, error)
	MarkMessagesRead(ctx context.Context, conversationID, readerID string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// AuditStore records ledger mutations.
type AuditStore interface {
	AppendAudit(ctx context.Context, e *domain.AuditEntry) error
	ListAudit(ctx context.Context, entity string, page, pageSize int) ([]domain.AuditEntry, error)
}

// NotificationStore defines persistence for per-user notification feeds.
type NotificationStore interface {
	// CreateNotificationForAllUsers inserts one copy of n per user in a
	// single transaction, so every staff member gets their own read flag.
	CreateNotificationForAllUsers(ctx context.Context, n *domain.Notification) error
	ListNotifications(ctx context.Context, userID string, isRead *bool, page, pageSize int) ([]domain.Notification, error)
	CountUnreadNotifications(ctx context.Context, userID string) (int, error)
	MarkNotificationRead(ctx context.Context, id, userID string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, id, userID string) error
}

// Notifier broadcasts an event to every user's notification feed.
// Implementations are fire-and-forget: a failed broadcast must never
// fail the business operation that triggered it.
type Notifier interface {
	NotifyAll(ctx context.Context, typ, title, message, link string)
}

// SettingsStore persists the agency's singleton company profile.
type SettingsStore interface {
	GetCompanySettings(ctx context.Context) (*domain.CompanySettings, error)
	SaveCompanySettings(ctx context.Context, s *domain.CompanySettings) error
}

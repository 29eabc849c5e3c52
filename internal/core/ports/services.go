package ports

import (
	"context"
	"time"

	"github.com/atelier-boutique/storefront/internal/core/domain"
)

// --- Auth ---

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Logout is idempotent: unknown or invalid credentials succeed.
	Logout(ctx context.Context, credential string) error
}

// ViewerResolver turns a raw request credential into a Viewer. It never
// fails; anything it cannot prove resolves to a less privileged viewer.
type ViewerResolver interface {
	Resolve(ctx context.Context, credential string) domain.Viewer
}

// --- Account ---

type ProfileInput struct {
	Name  string
	Phone string
}

type AddressInput struct {
	Label      string
	FullName   string
	Line1      string
	Line2      string
	PostalCode string
	City       string
	Country    string
	Phone      string
	IsDefault  bool
}

type AccountOverview struct {
	User         *domain.User
	RecentOrders []domain.Order
	Addresses    int
}

type AccountService interface {
	Overview(ctx context.Context, viewer domain.Viewer) (*AccountOverview, error)
	UpdateProfile(ctx context.Context, viewer domain.Viewer, in ProfileInput) (*domain.User, error)
	SwitchRole(ctx context.Context, viewer domain.Viewer, target string) (domain.RolePair, error)
	Addresses(ctx context.Context, viewer domain.Viewer) ([]domain.Address, error)
	CreateAddress(ctx context.Context, viewer domain.Viewer, in AddressInput) (*domain.Address, error)
	UpdateAddress(ctx context.Context, viewer domain.Viewer, id string, in AddressInput) (*domain.Address, error)
	DeleteAddress(ctx context.Context, viewer domain.Viewer, id string) error
}

// --- Notifications ---

type NotificationList struct {
	Items  []domain.Notification
	Unread int64
}

type NotificationService interface {
	List(ctx context.Context, viewer domain.Viewer, filter NotificationFilter) (*NotificationList, error)
	MarkRead(ctx context.Context, viewer domain.Viewer, id string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, viewer domain.Viewer) (int64, error)
	Delete(ctx context.Context, viewer domain.Viewer, id string) error
}

// --- Catalog & stock ---

// CatalogQuery is the raw listing query; the service normalizes it.
type CatalogQuery struct {
	Category   string
	Collection string
	Search     string
	Sort       string
	Page       int
	Limit      int
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type ProductPage struct {
	Data       []domain.Product `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

type CatalogService interface {
	List(ctx context.Context, q CatalogQuery) (*ProductPage, error)
	Get(ctx context.Context, slug string) (*domain.Product, error)
}

type InventoryItem struct {
	Product  domain.Product
	LowStock bool
}

type InventoryOverview struct {
	Items         []InventoryItem
	LowStockCount int
	Threshold     int
}

type InventoryService interface {
	Overview(ctx context.Context, viewer domain.Viewer) (*InventoryOverview, error)
	SetStock(ctx context.Context, viewer domain.Viewer, productID string, stock int) (*domain.Product, error)
}

// --- Checkout & orders ---

type CheckoutItem struct {
	ProductID string
	Quantity  int
}

type CheckoutInput struct {
	Items     []CheckoutItem
	PromoCode string
}

type CheckoutResult struct {
	OrderID   string
	SessionID string
	URL       string
}

type CheckoutService interface {
	CreateSession(ctx context.Context, viewer domain.Viewer, in CheckoutInput) (*CheckoutResult, error)
	// HandleWebhook returns the verified event type.
	HandleWebhook(ctx context.Context, payload []byte, signature string) (string, error)
	CreateCoupon(ctx context.Context, viewer domain.Viewer, in CouponInput) (*PromotionCode, error)
}

type OrderQuery struct {
	Status string
	Page   int
	Limit  int
}

type OrderPage struct {
	Data       []domain.Order
	Pagination Pagination
}

type OrderService interface {
	List(ctx context.Context, viewer domain.Viewer, q OrderQuery) (*OrderPage, error)
	History(ctx context.Context, viewer domain.Viewer, q OrderQuery) (*OrderPage, error)
	UpdateStatus(ctx context.Context, viewer domain.Viewer, id, status string) (*domain.Order, error)
}

// --- Analytics ---

type TrackInput struct {
	Event      string
	Path       string
	SessionID  string
	Referrer   string
	UserAgent  string
	Properties map[string]any
}

type AnalyticsService interface {
	Track(ctx context.Context, viewer domain.Viewer, in TrackInput) error
	Summary(ctx context.Context, viewer domain.Viewer, from, to time.Time) (*domain.AnalyticsSummary, error)
}

// --- Revalidation & mail ---

type RevalidateResult struct {
	Tags   []string
	Purged int64
}

type RevalidationService interface {
	Revalidate(ctx context.Context, viewer domain.Viewer, secret string, tags []string) (*RevalidateResult, error)
}

type MailResult struct {
	ID string
	To []string
}

type MailService interface {
	SendTest(ctx context.Context, viewer domain.Viewer, to string) (*MailResult, error)
}

// --- Admin dashboard ---

type DashboardOverview struct {
	UnreadNotifications int64
	RecentNotifications []domain.Notification
	LowStockCount       int
	OrdersToShip        int64
	PendingOrders       int64
	EventsLast24h       int64
}

type DashboardService interface {
	Overview(ctx context.Context, viewer domain.Viewer) (*DashboardOverview, error)
}

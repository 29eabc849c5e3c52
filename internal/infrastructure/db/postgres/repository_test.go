package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

var (
	ts          = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	userCols    = []string{"id", "email", "name", "phone", "password_hash", "role", "active_role", "created_at", "updated_at"}
	notifCols   = []string{"id", "kind", "title", "message", "link", "is_read", "created_at", "updated_at"}
	productCols = []string{"id", "slug", "name", "description", "category", "collection", "price_cents", "currency", "stock", "image_url", "active", "created_at", "updated_at"}
)

// --- users ---

func TestUserRepository_FindRoles(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT role, active_role FROM users WHERE id = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"role", "active_role"}).AddRow("admin", "user"))

	roles, err := repo.FindRoles(context.Background(), "u1")
	if err != nil {
		t.Fatalf("FindRoles: %v", err)
	}
	if roles.Granted() != domain.RoleAdmin || roles.Active() != domain.RoleUser {
		t.Fatalf("unexpected roles %s/%s", roles.Granted(), roles.Active())
	}
	expectationsMet(t, mock)
}

func TestUserRepository_FindRoles_CorruptPairIsError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT role, active_role FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"role", "active_role"}).AddRow("user", "admin"))

	if _, err := repo.FindRoles(context.Background(), "u1"); err == nil {
		t.Fatalf("expected error for active admin without grant")
	}
	expectationsMet(t, mock)
}

func TestUserRepository_FindRoles_Missing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT role, active_role FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"role", "active_role"}))

	if _, err := repo.FindRoles(context.Background(), "u1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})

	u := &domain.User{ID: "u1", Email: "a@example.com", Roles: domain.UserRoles(), CreatedAt: ts, UpdatedAt: ts}
	if err := repo.Create(context.Background(), u); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "a@example.com", "A", "", "hash", "user", "user", ts, ts))

	u, err := repo.FindByEmail(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if u.ID != "u1" || u.Roles.Active() != domain.RoleUser {
		t.Fatalf("unexpected user %+v", u)
	}
	expectationsMet(t, mock)
}

func TestUserRepository_UpdateActiveRole(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET active_role = $2`)).
		WithArgs("u1", "admin", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET active_role = $2`)).
		WithArgs("u2", "admin", ts).
		WillReturnError(&pq.Error{Code: "23514"})
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET active_role = $2`)).
		WithArgs("u3", "user", ts).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateActiveRole(context.Background(), "u1", domain.RoleAdmin, ts); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := repo.UpdateActiveRole(context.Background(), "u2", domain.RoleAdmin, ts); !errors.Is(err, domain.ErrInvalidRoleTransition) {
		t.Fatalf("expected ErrInvalidRoleTransition, got %v", err)
	}
	if err := repo.UpdateActiveRole(context.Background(), "u3", domain.RoleUser, ts); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	expectationsMet(t, mock)
}

// --- notifications ---

func TestNotificationRepository_MarkRead(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE notifications SET is_read = true, updated_at = $2`)).
		WithArgs("n1", ts).
		WillReturnRows(sqlmock.NewRows(notifCols).AddRow("n1", "order", "T", "M", "", true, ts.Add(-time.Hour), ts))

	n, err := repo.MarkRead(context.Background(), "n1", ts)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !n.Read || !n.UpdatedAt.Equal(ts) || n.Kind != domain.NotificationOrder {
		t.Fatalf("unexpected notification %+v", n)
	}
	expectationsMet(t, mock)
}

func TestNotificationRepository_MarkRead_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationRepository(db)

	mock.ExpectQuery("UPDATE notifications").WillReturnRows(sqlmock.NewRows(notifCols))
	mock.ExpectQuery("UPDATE notifications").WillReturnError(&pq.Error{Code: "22P02"})

	if _, err := repo.MarkRead(context.Background(), "missing", ts); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}
	if _, err := repo.MarkRead(context.Background(), "not-a-uuid", ts); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("malformed id: expected ErrNotificationNotFound, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestNotificationRepository_MarkAllRead_ReturnsAffected(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`WHERE is_read = false`)).
		WithArgs(ts).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.MarkAllRead(context.Background(), ts)
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3, got %d", n)
	}
	expectationsMet(t, mock)
}

func TestNotificationRepository_ListUnread(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM notifications WHERE is_read = false ORDER BY created_at DESC LIMIT $1`)).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(notifCols).
			AddRow("n1", "low_stock", "Stock", "", "/admin/stocks", false, ts, ts).
			AddRow("n2", "order", "Commande", "", "", false, ts, ts))

	items, err := repo.List(context.Background(), ports.NotificationFilter{UnreadOnly: true, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].Kind != domain.NotificationLowStock {
		t.Fatalf("unexpected items %+v", items)
	}
	expectationsMet(t, mock)
}

func TestNotificationRepository_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationRepository(db)

	mock.ExpectExec("DELETE FROM notifications").WithArgs("n1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM notifications").WithArgs("n1").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "n1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(context.Background(), "n1"); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}
	expectationsMet(t, mock)
}

// --- products ---

func TestProductRepository_List_BuildsFilteredQuery(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM produits WHERE active = true AND category = $1 AND (name ILIKE $2 OR description ILIKE $2)`)).
		WithArgs("bagues", `%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(13))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY price_cents ASC, id LIMIT $3 OFFSET $4`)).
		WithArgs("bagues", `%50\%%`, 12, 12).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("p1", "bague", "Bague", "", "bagues", "", 1000, "eur", 3, "", true, ts, ts))

	items, total, err := repo.List(context.Background(), ports.ProductFilter{
		Category: "bagues", Search: "50%", Sort: domain.SortPriceAsc, Page: 2, Limit: 12,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 13 || len(items) != 1 || items[0].Slug != "bague" {
		t.Fatalf("unexpected result total=%d items=%+v", total, items)
	}
	expectationsMet(t, mock)
}

func TestProductRepository_DecrementStock(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SET stock = GREATEST(stock - $2, 0)`)).
		WithArgs("p1", 2, ts).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("p1", "bague", "Bague", "", "bagues", "", 1000, "eur", 1, "", true, ts, ts))

	p, err := repo.DecrementStock(context.Background(), "p1", 2, ts)
	if err != nil {
		t.Fatalf("DecrementStock: %v", err)
	}
	if p.Stock != 1 {
		t.Fatalf("unexpected stock %d", p.Stock)
	}
	expectationsMet(t, mock)
}

// --- orders ---

func TestOrderRepository_FindByCheckoutSession_DecodesItems(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)

	cols := []string{"id", "user_id", "email", "status", "items", "total_cents", "currency", "promotion_code", "checkout_session_id", "created_at", "updated_at"}
	items := `[{"product_id":"p1","name":"Bague","unit_price_cents":1000,"quantity":2}]`
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE checkout_session_id = $1`)).
		WithArgs("cs_1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("o1", "u1", "a@example.com", "pending", []byte(items), 2000, "eur", "", "cs_1", ts, ts))

	o, err := repo.FindByCheckoutSession(context.Background(), "cs_1")
	if err != nil {
		t.Fatalf("FindByCheckoutSession: %v", err)
	}
	if len(o.Items) != 1 || o.Items[0].Quantity != 2 || o.Subtotal() != 2000 {
		t.Fatalf("items not decoded: %+v", o.Items)
	}
	expectationsMet(t, mock)
}

func TestOrderRepository_TransitionStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)

	mock.ExpectExec("UPDATE commandes SET status = \\$3, updated_at = \\$4\\s+WHERE id = \\$1 AND status = \\$2").
		WithArgs("o1", "pending", "paid", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE commandes SET status").
		WithArgs("o1", "pending", "paid", ts).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.TransitionStatus(context.Background(), "o1", domain.OrderPending, domain.OrderPaid, ts); err != nil {
		t.Fatalf("first transition: %v", err)
	}
	err := repo.TransitionStatus(context.Background(), "o1", domain.OrderPending, domain.OrderPaid, ts)
	if !errors.Is(err, domain.ErrOrderStatusChanged) {
		t.Fatalf("expected ErrOrderStatusChanged, got %v", err)
	}
	expectationsMet(t, mock)
}

// --- addresses ---

func TestAddressRepository_DeleteScopedToOwner(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAddressRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM addresses WHERE id = $1 AND user_id = $2`)).
		WithArgs("a1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "intruder", "a1"); !errors.Is(err, domain.ErrAddressNotFound) {
		t.Fatalf("expected ErrAddressNotFound, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestAddressRepository_UpdateDefault_RollsBackWhenMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAddressRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE addresses SET is_default = false WHERE user_id = $1 AND id <> $2 AND is_default`)).
		WithArgs("u1", "missing").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("UPDATE addresses").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}))
	mock.ExpectRollback()

	a := &domain.Address{ID: "missing", UserID: "u1", IsDefault: true, UpdatedAt: ts}
	if err := repo.Update(context.Background(), a); !errors.Is(err, domain.ErrAddressNotFound) {
		t.Fatalf("expected ErrAddressNotFound, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestAddressRepository_CreateDefault_ClearsPreviousInTx(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAddressRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE addresses SET is_default = false`)).
		WithArgs("u1", "a2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO addresses").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	a := &domain.Address{ID: "a2", UserID: "u1", IsDefault: true, CreatedAt: ts, UpdatedAt: ts}
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("create: %v", err)
	}
	expectationsMet(t, mock)
}

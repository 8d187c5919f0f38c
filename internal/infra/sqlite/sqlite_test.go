package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/albarakah/umrah-backoffice/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testAccount(kind string, totalDue domain.Money) *domain.BalanceAccount {
	return &domain.BalanceAccount{
		ID:              uuid.NewString(),
		Kind:            kind,
		OwnerID:         uuid.NewString(),
		TotalDue:        totalDue,
		RemainingAmount: totalDue,
		Status:          domain.StatusPending,
	}
}

func testPayment(acc *domain.BalanceAccount, gross, discount domain.Money, category string) *domain.PaymentRecord {
	p, err := domain.NewPaymentRecord(uuid.NewString(), acc.ID, &domain.PaymentInput{
		Direction:   acc.Direction(),
		Category:    category,
		GrossAmount: gross,
		Discount:    discount,
		Method:      "transfer",
		OccurredOn:  "2024-03-10",
	}, time.Now())
	if err != nil {
		panic(err)
	}
	return p
}

func TestAccountRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	acc := testAccount(domain.AccountKindJamaah, 30_000_000)
	if err := store.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	got, err := store.GetAccount(ctx, acc.ID)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if got.TotalDue != 30_000_000 {
		t.Errorf("TotalDue = %d, want 30000000", got.TotalDue)
	}
	if got.Version != 1 {
		t.Errorf("Version = %d, want 1", got.Version)
	}

	if _, err := store.GetAccount(ctx, "missing"); err == nil {
		t.Error("GetAccount() on missing id expected error")
	} else {
		var nf *domain.ErrNotFound
		if !errors.As(err, &nf) {
			t.Errorf("GetAccount() error = %v, want ErrNotFound", err)
		}
	}
}

func TestAppendPaymentPersistsDerivedState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	acc := testAccount(domain.AccountKindJamaah, 30_000_000)
	if err := store.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	p := testPayment(acc, 10_000_000, 1_000_000, domain.CategoryDP)
	acc.Payments = append(acc.Payments, *p)
	acc.Recompute(time.Now())

	if err := store.AppendPayment(ctx, acc, p); err != nil {
		t.Fatalf("AppendPayment() error = %v", err)
	}
	if acc.Version != 2 {
		t.Errorf("Version after append = %d, want 2", acc.Version)
	}

	got, err := store.GetAccount(ctx, acc.ID)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if got.PaidAmount != 9_000_000 {
		t.Errorf("PaidAmount = %d, want 9000000", got.PaidAmount)
	}
	if got.RemainingAmount != 21_000_000 {
		t.Errorf("RemainingAmount = %d, want 21000000", got.RemainingAmount)
	}
	if got.Status != domain.StatusDP {
		t.Errorf("Status = %q, want %q", got.Status, domain.StatusDP)
	}
	if len(got.Payments) != 1 {
		t.Fatalf("len(Payments) = %d, want 1", len(got.Payments))
	}
}

func TestAppendPaymentVersionConflict(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	acc := testAccount(domain.AccountKindJamaah, 10_000_000)
	if err := store.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	// Two readers load the same version.
	first, _ := store.GetAccount(ctx, acc.ID)
	second, _ := store.GetAccount(ctx, acc.ID)

	p1 := testPayment(first, 2_000_000, 0, domain.CategoryDP)
	first.Payments = append(first.Payments, *p1)
	first.Recompute(time.Now())
	if err := store.AppendPayment(ctx, first, p1); err != nil {
		t.Fatalf("first AppendPayment() error = %v", err)
	}

	p2 := testPayment(second, 3_000_000, 0, domain.CategoryCicilan)
	second.Payments = append(second.Payments, *p2)
	second.Recompute(time.Now())

	err := store.AppendPayment(ctx, second, p2)
	var conflict *domain.ErrConcurrentModification
	if !errors.As(err, &conflict) {
		t.Fatalf("second AppendPayment() error = %v, want ErrConcurrentModification", err)
	}

	// The losing write must not leave a payment row behind.
	got, err := store.GetAccount(ctx, acc.ID)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if len(got.Payments) != 1 {
		t.Errorf("len(Payments) = %d, want 1 after rolled-back conflict", len(got.Payments))
	}
	if got.PaidAmount != 2_000_000 {
		t.Errorf("PaidAmount = %d, want 2000000", got.PaidAmount)
	}
}

func TestDeletePaymentRecomputes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	acc := testAccount(domain.AccountKindJamaah, 10_000_000)
	if err := store.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	p := testPayment(acc, 4_000_000, 0, domain.CategoryDP)
	acc.Payments = append(acc.Payments, *p)
	acc.Recompute(time.Now())
	if err := store.AppendPayment(ctx, acc, p); err != nil {
		t.Fatalf("AppendPayment() error = %v", err)
	}

	acc.Payments = nil
	acc.Recompute(time.Now())
	if err := store.DeletePayment(ctx, acc, p.ID); err != nil {
		t.Fatalf("DeletePayment() error = %v", err)
	}

	got, _ := store.GetAccount(ctx, acc.ID)
	if got.PaidAmount != 0 {
		t.Errorf("PaidAmount = %d, want 0 after delete", got.PaidAmount)
	}
	if got.Status != domain.StatusPending {
		t.Errorf("Status = %q, want %q", got.Status, domain.StatusPending)
	}
}

func TestPackageCostTracksExpensePayments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	pkg := &domain.Package{
		ID:           uuid.NewString(),
		Code:         "UMR-2024-09",
		Name:         "Umroh September",
		Type:         "umroh",
		SeatCapacity: 40,
		Status:       domain.PackageStatusOpen,
	}
	if err := store.CreatePackage(ctx, pkg); err != nil {
		t.Fatalf("CreatePackage() error = %v", err)
	}

	acc := testAccount(domain.AccountKindVendorDebt, 10_000_000)
	acc.Status = domain.DebtStatusUnpaid
	if err := store.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	p, err := domain.NewPaymentRecord(uuid.NewString(), acc.ID, &domain.PaymentInput{
		Direction:   domain.DirectionExpense,
		Category:    domain.CategoryHotel,
		GrossAmount: 4_000_000,
		Method:      "transfer",
		OccurredOn:  "2024-09-01",
		PackageID:   pkg.ID,
	}, time.Now())
	if err != nil {
		t.Fatalf("NewPaymentRecord() error = %v", err)
	}
	acc.Payments = append(acc.Payments, *p)
	acc.Recompute(time.Now())
	if err := store.AppendPayment(ctx, acc, p); err != nil {
		t.Fatalf("AppendPayment() error = %v", err)
	}

	got, _ := store.GetPackage(ctx, pkg.ID)
	if got.ActualCost != 4_000_000 {
		t.Errorf("ActualCost after append = %d, want 4000000", got.ActualCost)
	}

	// An edit that changes the gross amount moves the cost by the difference.
	edited, err := p.ApplyPatch(&domain.PaymentPatch{GrossAmount: moneyPtr(6_000_000)})
	if err != nil {
		t.Fatalf("ApplyPatch() error = %v", err)
	}
	acc.Payments[0] = *edited
	acc.Recompute(time.Now())
	if err := store.UpdatePayment(ctx, acc, edited); err != nil {
		t.Fatalf("UpdatePayment() error = %v", err)
	}
	got, _ = store.GetPackage(ctx, pkg.ID)
	if got.ActualCost != 6_000_000 {
		t.Errorf("ActualCost after edit = %d, want 6000000", got.ActualCost)
	}

	// Deleting the expense reverses its contribution.
	acc.Payments = nil
	acc.Recompute(time.Now())
	if err := store.DeletePayment(ctx, acc, p.ID); err != nil {
		t.Fatalf("DeletePayment() error = %v", err)
	}
	got, _ = store.GetPackage(ctx, pkg.ID)
	if got.ActualCost != 0 {
		t.Errorf("ActualCost after delete = %d, want 0", got.ActualCost)
	}
}

func TestExpenseForMissingPackageRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	acc := testAccount(domain.AccountKindVendorDebt, 10_000_000)
	acc.Status = domain.DebtStatusUnpaid
	if err := store.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	p, err := domain.NewPaymentRecord(uuid.NewString(), acc.ID, &domain.PaymentInput{
		Direction:   domain.DirectionExpense,
		Category:    domain.CategoryHotel,
		GrossAmount: 1_000_000,
		Method:      "transfer",
		OccurredOn:  "2024-09-01",
		PackageID:   "no-such-package",
	}, time.Now())
	if err != nil {
		t.Fatalf("NewPaymentRecord() error = %v", err)
	}
	acc.Payments = append(acc.Payments, *p)
	acc.Recompute(time.Now())

	var nf *domain.ErrNotFound
	if err := store.AppendPayment(ctx, acc, p); !errors.As(err, &nf) {
		t.Fatalf("AppendPayment() error = %v, want ErrNotFound", err)
	}

	// The whole transaction rolled back: no payment row, no paid amount.
	got, err := store.GetAccount(ctx, acc.ID)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if len(got.Payments) != 0 {
		t.Errorf("len(Payments) = %d, want 0 after rollback", len(got.Payments))
	}
	if got.PaidAmount != 0 {
		t.Errorf("PaidAmount = %d, want 0 after rollback", got.PaidAmount)
	}
}

func moneyPtr(m domain.Money) *domain.Money { return &m }

func TestJamaahListJoinsBalance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	acc := testAccount(domain.AccountKindJamaah, 25_000_000)
	if err := store.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	j := &domain.Jamaah{
		ID:        uuid.NewString(),
		Name:      "Siti Aminah",
		NIK:       "3201011234560001",
		AccountID: acc.ID,
	}
	if err := store.CreateJamaah(ctx, j); err != nil {
		t.Fatalf("CreateJamaah() error = %v", err)
	}

	list, err := store.ListJamaah(ctx, &domain.JamaahFilter{Search: "Aminah"})
	if err != nil {
		t.Fatalf("ListJamaah() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if list[0].TotalDue != 25_000_000 {
		t.Errorf("TotalDue = %d, want 25000000", list[0].TotalDue)
	}
	if list[0].PaymentStatus != domain.StatusPending {
		t.Errorf("PaymentStatus = %q, want %q", list[0].PaymentStatus, domain.StatusPending)
	}

	none, err := store.ListJamaah(ctx, &domain.JamaahFilter{Search: "nobody"})
	if err != nil {
		t.Fatalf("ListJamaah() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("len(none) = %d, want 0", len(none))
	}
}

func TestAdjustBookedSeatsGuards(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := &domain.Package{
		ID:           uuid.NewString(),
		Code:         "UMR-2024-03",
		Name:         "Umroh Ramadhan",
		Type:         "umroh",
		SeatCapacity: 2,
		Status:       domain.PackageStatusOpen,
	}
	if err := store.CreatePackage(ctx, p); err != nil {
		t.Fatalf("CreatePackage() error = %v", err)
	}

	if err := store.AdjustBookedSeats(ctx, p.ID, 2); err != nil {
		t.Fatalf("AdjustBookedSeats(+2) error = %v", err)
	}

	err := store.AdjustBookedSeats(ctx, p.ID, 1)
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("AdjustBookedSeats over capacity error = %v, want ErrValidation", err)
	}

	var nf *domain.ErrNotFound
	if err := store.AdjustBookedSeats(ctx, "missing", 1); !errors.As(err, &nf) {
		t.Errorf("AdjustBookedSeats missing package error = %v, want ErrNotFound", err)
	}
}

func TestConversationPairIsNormalized(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c1, err := store.GetOrCreateConversation(ctx, "user-b", "user-a")
	if err != nil {
		t.Fatalf("GetOrCreateConversation() error = %v", err)
	}
	c2, err := store.GetOrCreateConversation(ctx, "user-a", "user-b")
	if err != nil {
		t.Fatalf("GetOrCreateConversation() reversed error = %v", err)
	}
	if c1.ID != c2.ID {
		t.Errorf("conversation IDs differ: %q vs %q", c1.ID, c2.ID)
	}
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c, err := store.GetOrCreateConversation(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("GetOrCreateConversation() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		m := &domain.Message{
			ID:             uuid.NewString(),
			ConversationID: c.ID,
			SenderID:       "alice",
			Body:           "assalamualaikum",
		}
		if err := store.AppendMessage(ctx, m); err != nil {
			t.Fatalf("AppendMessage() error = %v", err)
		}
	}

	n, err := store.UnreadCount(ctx, "bob")
	if err != nil {
		t.Fatalf("UnreadCount() error = %v", err)
	}
	if n != 3 {
		t.Errorf("UnreadCount = %d, want 3", n)
	}

	if err := store.MarkMessagesRead(ctx, c.ID, "bob"); err != nil {
		t.Fatalf("MarkMessagesRead() error = %v", err)
	}
	n, _ = store.UnreadCount(ctx, "bob")
	if n != 0 {
		t.Errorf("UnreadCount after read = %d, want 0", n)
	}
}

func TestTotalsByDirection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	jam := testAccount(domain.AccountKindJamaah, 20_000_000)
	if err := store.CreateAccount(ctx, jam); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	p := testPayment(jam, 5_000_000, 500_000, domain.CategoryDP)
	jam.Payments = append(jam.Payments, *p)
	jam.Recompute(time.Now())
	if err := store.AppendPayment(ctx, jam, p); err != nil {
		t.Fatalf("AppendPayment() error = %v", err)
	}

	debt := testAccount(domain.AccountKindVendorDebt, 3_000_000)
	debt.Status = domain.DebtStatusUnpaid
	if err := store.CreateAccount(ctx, debt); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	e := testPayment(debt, 1_000_000, 0, domain.CategoryHotel)
	debt.Payments = append(debt.Payments, *e)
	debt.Recompute(time.Now())
	if err := store.AppendPayment(ctx, debt, e); err != nil {
		t.Fatalf("AppendPayment() error = %v", err)
	}

	income, expense, err := store.TotalsByDirection(ctx, "", "")
	if err != nil {
		t.Fatalf("TotalsByDirection() error = %v", err)
	}
	if income != 4_500_000 {
		t.Errorf("income = %d, want 4500000 (net of discount)", income)
	}
	if expense != 1_000_000 {
		t.Errorf("expense = %d, want 1000000", expense)
	}
}

func TestRefreshTokenLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := &domain.User{
		ID:           uuid.NewString(),
		Name:         "Owner",
		Email:        "owner@example.com",
		PasswordHash: "x",
		Role:         domain.RoleOwner,
	}
	if err := store.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	hash := "deadbeef"
	if err := store.StoreRefreshToken(ctx, u.ID, hash, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("StoreRefreshToken() error = %v", err)
	}

	rt, err := store.GetRefreshToken(ctx, hash)
	if err != nil {
		t.Fatalf("GetRefreshToken() error = %v", err)
	}
	if rt.Revoked {
		t.Error("token revoked before revocation")
	}

	if err := store.RevokeAllRefreshTokens(ctx, u.ID); err != nil {
		t.Fatalf("RevokeAllRefreshTokens() error = %v", err)
	}
	rt, _ = store.GetRefreshToken(ctx, hash)
	if !rt.Revoked {
		t.Error("token not revoked after RevokeAllRefreshTokens")
	}
}

func testUser(t *testing.T, store *Store, name, email string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Role:         domain.RoleAdmin,
	}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s) error = %v", email, err)
	}
	return u
}

func TestNotificationFanOutPerUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := testUser(t, store, "Alice", "alice@example.com")
	bob := testUser(t, store, "Bob", "bob@example.com")

	n := &domain.Notification{
		ID:        uuid.NewString(),
		Title:     "Hutang Vendor Baru",
		Message:   "Hutang baru ke PT Wisata Haramain",
		Type:      domain.NotificationWarning,
		Link:      "/keuangan/hutang",
		CreatedAt: time.Now(),
	}
	if err := store.CreateNotificationForAllUsers(ctx, n); err != nil {
		t.Fatalf("CreateNotificationForAllUsers() error = %v", err)
	}

	// Each user owns an independent copy with their own read flag.
	for _, u := range []*domain.User{alice, bob} {
		list, err := store.ListNotifications(ctx, u.ID, nil, 1, 20)
		if err != nil {
			t.Fatalf("ListNotifications(%s) error = %v", u.Email, err)
		}
		if len(list) != 1 {
			t.Fatalf("%s feed = %d rows, want 1", u.Email, len(list))
		}
		if list[0].Title != "Hutang Vendor Baru" || list[0].IsRead {
			t.Errorf("%s notification = %+v", u.Email, list[0])
		}
	}

	aliceFeed, _ := store.ListNotifications(ctx, alice.ID, nil, 1, 20)
	if err := store.MarkNotificationRead(ctx, aliceFeed[0].ID, alice.ID); err != nil {
		t.Fatalf("MarkNotificationRead() error = %v", err)
	}
	if n, _ := store.CountUnreadNotifications(ctx, alice.ID); n != 0 {
		t.Errorf("alice unread = %d, want 0", n)
	}
	if n, _ := store.CountUnreadNotifications(ctx, bob.ID); n != 1 {
		t.Errorf("bob unread = %d, want 1", n)
	}

	// One user cannot touch another's copy.
	bobFeed, _ := store.ListNotifications(ctx, bob.ID, nil, 1, 20)
	var nf *domain.ErrNotFound
	if err := store.MarkNotificationRead(ctx, bobFeed[0].ID, alice.ID); !errors.As(err, &nf) {
		t.Errorf("cross-user MarkNotificationRead error = %v, want ErrNotFound", err)
	}
}

func TestCompanySettingsUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.GetCompanySettings(ctx); err == nil {
		t.Fatal("GetCompanySettings() on empty table should fail")
	}

	cs := &domain.CompanySettings{
		ID:    uuid.NewString(),
		Name:  "Al Barakah Travel",
		City:  "Jakarta",
		Email: "info@albarakah.id",
		BankAccounts: []domain.BankAccount{
			{BankName: "BSI", AccountNumber: "7100123456", AccountHolder: "PT Al Barakah"},
			{BankName: "Mandiri", AccountNumber: "1230004567", AccountHolder: "PT Al Barakah"},
		},
		UpdatedAt: time.Now(),
	}
	if err := store.SaveCompanySettings(ctx, cs); err != nil {
		t.Fatalf("SaveCompanySettings() error = %v", err)
	}

	got, err := store.GetCompanySettings(ctx)
	if err != nil {
		t.Fatalf("GetCompanySettings() error = %v", err)
	}
	if got.Name != cs.Name || len(got.BankAccounts) != 2 {
		t.Errorf("settings = %+v", got)
	}
	if got.BankAccounts[1].BankName != "Mandiri" {
		t.Errorf("bank accounts lost order or content: %+v", got.BankAccounts)
	}

	// Saving again with the same ID replaces, never duplicates.
	cs.Name = "Al Barakah Tour & Travel"
	cs.BankAccounts = cs.BankAccounts[:1]
	if err := store.SaveCompanySettings(ctx, cs); err != nil {
		t.Fatalf("second SaveCompanySettings() error = %v", err)
	}
	got, _ = store.GetCompanySettings(ctx)
	if got.Name != "Al Barakah Tour & Travel" || len(got.BankAccounts) != 1 {
		t.Errorf("settings after replace = %+v", got)
	}
}

func TestPackageStatusSweeps(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mkPackage := func(code, status, departure, ret string) string {
		p := &domain.Package{
			ID:            uuid.NewString(),
			Code:          code,
			Name:          "Paket " + code,
			Type:          "umroh",
			Status:        status,
			DepartureDate: departure,
			ReturnDate:    ret,
		}
		if err := store.CreatePackage(ctx, p); err != nil {
			t.Fatalf("CreatePackage(%s) error = %v", code, err)
		}
		return p.ID
	}

	soon := mkPackage("soon", domain.PackageStatusOpen, "2024-06-05", "2024-06-16")
	later := mkPackage("later", domain.PackageStatusOpen, "2024-07-01", "2024-07-12")
	back := mkPackage("back", domain.PackageStatusClosed, "2024-05-01", "2024-05-20")
	abroad := mkPackage("abroad", domain.PackageStatusOngoing, "2024-05-25", "2024-06-10")

	closed, err := store.ClosePackagesDepartingBy(ctx, "2024-06-08")
	if err != nil {
		t.Fatalf("ClosePackagesDepartingBy() error = %v", err)
	}
	if closed != 1 {
		t.Errorf("closed = %d, want 1", closed)
	}

	completed, err := store.CompletePackagesReturnedBefore(ctx, "2024-06-01")
	if err != nil {
		t.Fatalf("CompletePackagesReturnedBefore() error = %v", err)
	}
	if completed != 1 {
		t.Errorf("completed = %d, want 1", completed)
	}

	want := map[string]string{
		soon:   domain.PackageStatusClosed,
		later:  domain.PackageStatusOpen,
		back:   domain.PackageStatusCompleted,
		abroad: domain.PackageStatusOngoing,
	}
	for id, status := range want {
		p, err := store.GetPackage(ctx, id)
		if err != nil {
			t.Fatalf("GetPackage() error = %v", err)
		}
		if p.Status != status {
			t.Errorf("%s status = %q, want %q", p.Code, p.Status, status)
		}
	}
}

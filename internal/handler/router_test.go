package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/handler"
	"github.com/albarakah/umrah-backoffice/internal/infra/observability"
	"github.com/albarakah/umrah-backoffice/internal/infra/resilience"
	"github.com/albarakah/umrah-backoffice/internal/infra/sqlite"
	"github.com/albarakah/umrah-backoffice/internal/infra/sse"
	"github.com/albarakah/umrah-backoffice/internal/service"
)

type testEnv struct {
	router http.Handler
	auth   *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("sqlite.New() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	retry := resilience.Config{MaxRetries: 3, InitialBackoff: time.Millisecond}
	hub := sse.NewHub(metrics)

	authSvc := service.NewAuthService(store, "test-secret", 15*time.Minute, 24*time.Hour, logger)
	notifSvc := service.NewNotificationService(store, logger)
	ledgerSvc := service.NewLedgerService(store, store, notifSvc, logger, metrics, retry)

	svcs := handler.Services{
		Auth:          authSvc,
		Ledger:        ledgerSvc,
		Jamaah:        service.NewJamaahService(store, store, store, notifSvc, logger),
		Packages:      service.NewPackageService(store, logger),
		Vendors:       service.NewVendorService(store, store, notifSvc, logger),
		Reports:       service.NewReportService(store, store, logger),
		Chat:          service.NewChatService(store, store, hub, logger),
		Notifications: notifSvc,
		Company:       service.NewCompanyService(store, store, logger),
	}

	return &testEnv{
		router: handler.NewRouter(svcs, nil, hub, metrics, nil, store.Ping, logger),
		auth:   authSvc,
	}
}

// loginAs registers a user with the given role and returns an access token.
func loginAs(t *testing.T, env *testEnv, email, role string) string {
	t.Helper()

	_, err := env.auth.Register(context.Background(), &domain.RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: "secret-password",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", role, err)
	}

	resp, err := env.auth.Login(context.Background(), &domain.LoginRequest{
		Email:    email,
		Password: "secret-password",
	})
	if err != nil {
		t.Fatalf("Login(%s) error = %v", role, err)
	}
	return resp.AccessToken
}

func doRequest(t *testing.T, env *testEnv, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestProbes(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rec := doRequest(t, env, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestLoginAndMe(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(context.Background(), &domain.RegisterRequest{
		Name: "Owner", Email: "owner@example.com", Password: "secret-password", Role: domain.RoleOwner,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	rec := doRequest(t, env, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "owner@example.com",
		"password": "secret-password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d, body %s", rec.Code, rec.Body.String())
	}
	var login domain.LoginResponse
	decodeBody(t, rec, &login)
	if login.AccessToken == "" || login.RefreshToken == "" {
		t.Fatal("login response missing tokens")
	}

	rec = doRequest(t, env, http.MethodGet, "/v1/auth/me", login.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /v1/auth/me = %d", rec.Code)
	}
	var me domain.User
	decodeBody(t, rec, &me)
	if me.Email != "owner@example.com" {
		t.Errorf("me.Email = %q", me.Email)
	}
}

func TestWrongPasswordRejected(t *testing.T) {
	env := newTestEnv(t)
	loginAs(t, env, "owner@example.com", domain.RoleOwner)

	rec := doRequest(t, env, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "owner@example.com",
		"password": "not-the-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login with wrong password = %d, want 401", rec.Code)
	}
}

func TestMissingTokenRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := doRequest(t, env, http.MethodGet, "/v1/dashboard", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("GET /v1/dashboard without token = %d, want 401", rec.Code)
	}
}

func TestRoleEnforcement(t *testing.T) {
	env := newTestEnv(t)
	userToken := loginAs(t, env, "user@example.com", domain.RoleUser)
	financeToken := loginAs(t, env, "finance@example.com", domain.RoleFinance)

	// Plain users cannot touch master data or the ledger.
	rec := doRequest(t, env, http.MethodPost, "/v1/packages", userToken, map[string]any{"code": "X"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("POST /v1/packages as user = %d, want 403", rec.Code)
	}
	rec = doRequest(t, env, http.MethodPost, "/v1/accounts/some-id/income", userToken, map[string]any{})
	if rec.Code != http.StatusForbidden {
		t.Errorf("POST income as user = %d, want 403", rec.Code)
	}

	// Finance cannot manage users.
	rec = doRequest(t, env, http.MethodGet, "/v1/users", financeToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("GET /v1/users as finance = %d, want 403", rec.Code)
	}

	// But everyone can read the dashboard.
	rec = doRequest(t, env, http.MethodGet, "/v1/dashboard", userToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /v1/dashboard as user = %d, want 200", rec.Code)
	}
}

func TestPackageJamaahIncomeFlow(t *testing.T) {
	env := newTestEnv(t)
	token := loginAs(t, env, "owner@example.com", domain.RoleOwner)

	rec := doRequest(t, env, http.MethodPost, "/v1/packages", token, map[string]any{
		"code":          "UMR-2024-01",
		"name":          "Umroh Reguler",
		"type":          "umroh",
		"pricePerPax":   25_000_000,
		"seatCapacity":  40,
		"departureDate": "2024-06-01",
		"returnDate":    "2024-06-12",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create package = %d, body %s", rec.Code, rec.Body.String())
	}
	var pkg domain.Package
	decodeBody(t, rec, &pkg)

	rec = doRequest(t, env, http.MethodPost, "/v1/jamaah", token, map[string]any{
		"name":      "Ahmad Fauzi",
		"packageId": pkg.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create jamaah = %d, body %s", rec.Code, rec.Body.String())
	}
	var j domain.Jamaah
	decodeBody(t, rec, &j)
	if j.AccountID == "" {
		t.Fatal("jamaah has no account")
	}

	rec = doRequest(t, env, http.MethodPost, "/v1/accounts/"+j.AccountID+"/income", token, map[string]any{
		"category":    "dp",
		"grossAmount": 5_000_000,
		"method":      "transfer",
		"occurredOn":  "2024-03-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("record income = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Account domain.AccountSummary `json:"account"`
	}
	decodeBody(t, rec, &resp)
	if resp.Account.Status != domain.StatusDP {
		t.Errorf("account status = %q, want %q", resp.Account.Status, domain.StatusDP)
	}
	if resp.Account.PaidAmount != 5_000_000 {
		t.Errorf("paid = %d, want 5000000", resp.Account.PaidAmount)
	}

	rec = doRequest(t, env, http.MethodGet, "/v1/accounts/"+j.AccountID+"/summary", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get summary = %d", rec.Code)
	}
	var summary domain.AccountSummary
	decodeBody(t, rec, &summary)
	if summary.RemainingAmount != 20_000_000 {
		t.Errorf("remaining = %d, want 20000000", summary.RemainingAmount)
	}
}

func TestDebtOverpaymentRejectedOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	token := loginAs(t, env, "finance@example.com", domain.RoleFinance)

	rec := doRequest(t, env, http.MethodPost, "/v1/vendors", token, map[string]any{
		"name": "Hotel Al Safwah",
		"type": "hotel",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create vendor = %d, body %s", rec.Code, rec.Body.String())
	}
	var vendor domain.Vendor
	decodeBody(t, rec, &vendor)

	rec = doRequest(t, env, http.MethodPost, "/v1/debts", token, map[string]any{
		"vendorId": vendor.ID,
		"totalDue": 1_000_000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create debt = %d, body %s", rec.Code, rec.Body.String())
	}
	var debt domain.BalanceAccount
	decodeBody(t, rec, &debt)

	rec = doRequest(t, env, http.MethodPost, "/v1/debts/"+debt.ID+"/pay", token, map[string]any{
		"amount": 1_500_000,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("overpay = %d, want 422, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, env, http.MethodPost, "/v1/debts/"+debt.ID+"/pay", token, map[string]any{
		"amount": 1_000_000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("exact pay = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Account domain.AccountSummary `json:"account"`
	}
	decodeBody(t, rec, &resp)
	if resp.Account.Status != domain.DebtStatusPaid {
		t.Errorf("debt status = %q, want %q", resp.Account.Status, domain.DebtStatusPaid)
	}
}

func TestCompanyProfileOwnerOnlyWrite(t *testing.T) {
	env := newTestEnv(t)
	ownerToken := loginAs(t, env, "owner@example.com", domain.RoleOwner)
	financeToken := loginAs(t, env, "finance@example.com", domain.RoleFinance)

	// Unsaved profile reads as null, not 404.
	rec := doRequest(t, env, http.MethodGet, "/v1/company", financeToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /v1/company = %d, want 200", rec.Code)
	}
	var initial struct {
		Settings *domain.CompanySettings `json:"settings"`
	}
	decodeBody(t, rec, &initial)
	if initial.Settings != nil {
		t.Errorf("settings before save = %+v, want null", initial.Settings)
	}

	body := map[string]any{
		"name": "Al Barakah Travel",
		"city": "Jakarta",
		"bankAccounts": []map[string]string{
			{"bankName": "BSI", "accountNumber": "7100123456", "accountHolder": "PT Al Barakah"},
		},
	}
	rec = doRequest(t, env, http.MethodPut, "/v1/company", financeToken, body)
	if rec.Code != http.StatusForbidden {
		t.Errorf("PUT /v1/company as finance = %d, want 403", rec.Code)
	}
	rec = doRequest(t, env, http.MethodPut, "/v1/company", ownerToken, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /v1/company as owner = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, env, http.MethodGet, "/v1/company", financeToken, nil)
	var saved struct {
		Settings *domain.CompanySettings `json:"settings"`
	}
	decodeBody(t, rec, &saved)
	if saved.Settings == nil || saved.Settings.Name != "Al Barakah Travel" {
		t.Errorf("settings after save = %+v", saved.Settings)
	}
}

func TestDebtCreationFeedsNotifications(t *testing.T) {
	env := newTestEnv(t)
	financeToken := loginAs(t, env, "finance@example.com", domain.RoleFinance)

	rec := doRequest(t, env, http.MethodPost, "/v1/vendors", financeToken, map[string]any{
		"name": "Saudia Ticketing Agent",
		"type": "flight",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create vendor = %d, body %s", rec.Code, rec.Body.String())
	}
	var vendor domain.Vendor
	decodeBody(t, rec, &vendor)

	rec = doRequest(t, env, http.MethodPost, "/v1/debts", financeToken, map[string]any{
		"vendorId": vendor.ID,
		"totalDue": 2_000_000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create debt = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, env, http.MethodGet, "/v1/notifications", financeToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /v1/notifications = %d", rec.Code)
	}
	var feed struct {
		Notifications []domain.Notification `json:"notifications"`
		UnreadCount   int                   `json:"unreadCount"`
	}
	decodeBody(t, rec, &feed)
	if feed.UnreadCount != 1 || len(feed.Notifications) != 1 {
		t.Fatalf("feed = %d rows, %d unread; want 1, 1; body %s", len(feed.Notifications), feed.UnreadCount, rec.Body.String())
	}
	if feed.Notifications[0].Title != "Hutang Vendor Baru" {
		t.Errorf("title = %q, want Hutang Vendor Baru", feed.Notifications[0].Title)
	}

	rec = doRequest(t, env, http.MethodPut, "/v1/notifications/read-all", financeToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("read-all = %d, want 204", rec.Code)
	}
	rec = doRequest(t, env, http.MethodGet, "/v1/notifications", financeToken, nil)
	decodeBody(t, rec, &feed)
	if feed.UnreadCount != 0 {
		t.Errorf("unread after read-all = %d, want 0", feed.UnreadCount)
	}
}

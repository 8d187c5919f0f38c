// Command seed fills the database with demo data: staff logins, two
// packages, a handful of jamaah with payments, vendors and one open
// debt. Useful for local frontend work and manual testing.
package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/albarakah/umrah-backoffice/internal/config"
	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/infra/observability"
	"github.com/albarakah/umrah-backoffice/internal/infra/resilience"
	"github.com/albarakah/umrah-backoffice/internal/infra/sqlite"
	"github.com/albarakah/umrah-backoffice/internal/service"
)

func main() {
	_ = config.LoadDotEnv(".env")
	cfg := config.Load()

	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close()

	metrics := observability.NewMetrics()
	retry := resilience.Config{MaxRetries: cfg.MaxRetries, InitialBackoff: cfg.InitialBackoff}

	authSvc := service.NewAuthService(store, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, logger)
	notifSvc := service.NewNotificationService(store, logger)
	packageSvc := service.NewPackageService(store, logger)
	jamaahSvc := service.NewJamaahService(store, store, store, notifSvc, logger)
	vendorSvc := service.NewVendorService(store, store, notifSvc, logger)
	ledgerSvc := service.NewLedgerService(store, store, notifSvc, logger, metrics, retry)

	ctx := context.Background()

	// --- Staff logins ---
	owner := mustUser(ctx, logger, authSvc, "Hj. Siti Aminah", "owner@albarakah.id", domain.RoleOwner)
	mustUser(ctx, logger, authSvc, "Budi Santoso", "finance@albarakah.id", domain.RoleFinance)
	mustUser(ctx, logger, authSvc, "Rina Wulandari", "admin@albarakah.id", domain.RoleAdmin)

	// --- Packages ---
	umroh, err := packageSvc.CreatePackage(ctx, &domain.PackageInput{
		Code:          "UMR-2024-06",
		Name:          "Umroh Reguler Juni",
		Type:          "umroh",
		PricePerPax:   28_500_000,
		SeatCapacity:  45,
		DepartureDate: "2024-06-10",
		ReturnDate:    "2024-06-21",
		HotelMakkah:   "Al Safwah Royale Orchid",
		HotelMadinah:  "Al Eiman Taibah",
		Airline:       "Saudia",
		EstimatedCost: 1_000_000_000,
	})
	if err != nil {
		logger.Fatal("seed package", zap.Error(err))
	}
	if _, err := packageSvc.CreatePackage(ctx, &domain.PackageInput{
		Code:          "HAJ-2025-01",
		Name:          "Haji Khusus 2025",
		Type:          "haji",
		PricePerPax:   185_000_000,
		SeatCapacity:  20,
		DepartureDate: "2025-05-20",
		ReturnDate:    "2025-06-30",
		Airline:       "Garuda Indonesia",
	}); err != nil {
		logger.Fatal("seed package", zap.Error(err))
	}

	// --- Jamaah with a first payment each ---
	names := []string{"Ahmad Fauzi", "Dewi Lestari", "Muhammad Rizki", "Fatimah Azzahra", "Hasan Basri"}
	for i, name := range names {
		j, err := jamaahSvc.CreateJamaah(ctx, &domain.JamaahInput{
			Name:      name,
			PackageID: umroh.ID,
			RoomType:  "quad",
			Province:  "Jawa Barat",
		})
		if err != nil {
			logger.Fatal("seed jamaah", zap.Error(err))
		}

		// Stagger payments so statuses differ across the list.
		amount := domain.Money(5_000_000 * (i + 1))
		occurred := time.Now().AddDate(0, 0, -7*i).Format(domain.DateLayout)
		if _, _, err := ledgerSvc.RecordIncome(ctx, owner.ID, j.AccountID, &domain.PaymentInput{
			Category:    domain.CategoryDP,
			GrossAmount: amount,
			Method:      "transfer",
			OccurredOn:  occurred,
		}); err != nil {
			logger.Fatal("seed payment", zap.Error(err))
		}
	}

	// --- Vendors and one open debt ---
	hotel, err := vendorSvc.CreateVendor(ctx, &domain.VendorInput{
		Name:          "PT Wisata Haramain",
		Type:          "hotel",
		ContactPerson: "Ust. Abdullah",
		Phone:         "+62 812 3456 7890",
	})
	if err != nil {
		logger.Fatal("seed vendor", zap.Error(err))
	}
	if _, err := vendorSvc.CreateVendor(ctx, &domain.VendorInput{
		Name: "Saudia Ticketing Agent",
		Type: "flight",
	}); err != nil {
		logger.Fatal("seed vendor", zap.Error(err))
	}

	debt, err := vendorSvc.CreateDebt(ctx, &domain.VendorDebtInput{
		VendorID:    hotel.ID,
		Description: "Hotel booking Juni, 45 pax",
		TotalDue:    450_000_000,
		DueDate:     time.Now().AddDate(0, 1, 0).Format(domain.DateLayout),
	})
	if err != nil {
		logger.Fatal("seed debt", zap.Error(err))
	}
	if _, _, err := ledgerSvc.PayVendorDebt(ctx, owner.ID, debt.ID, 150_000_000, "transfer", "first installment"); err != nil {
		logger.Fatal("seed debt payment", zap.Error(err))
	}

	logger.Info("seed complete",
		zap.String("db_path", cfg.DBPath),
		zap.String("owner_login", "owner@albarakah.id / rahasia-123"))
}

func mustUser(ctx context.Context, logger *zap.Logger, authSvc *service.AuthService, name, email, role string) *domain.User {
	u, err := authSvc.Register(ctx, &domain.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "rahasia-123",
		Role:     role,
	})
	if err != nil {
		logger.Fatal("seed user", zap.String("email", email), zap.Error(err))
	}
	return u
}

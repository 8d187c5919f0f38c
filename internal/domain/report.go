package domain

// ============================================================
// Reports & dashboard
// ============================================================

// DashboardSummary is the headline figures for the dashboard.
type DashboardSummary struct {
	TotalIncome            Money `json:"totalIncome"`
	TotalExpense           Money `json:"totalExpense"`
	NetBalance             Money `json:"netBalance"`
	OutstandingReceivables Money `json:"outstandingReceivables"` // unpaid jamaah balances
	OutstandingDebts       Money `json:"outstandingDebts"`       // unpaid vendor debts
	ActiveJamaah           int   `json:"activeJamaah"`
	OpenPackages           int   `json:"openPackages"`
}

// CategoryTotal is one row of a per-category breakdown.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    Money  `json:"total"`
	Count    int    `json:"count"`
}

// MonthlyTotal is one month of the income/expense trend.
type MonthlyTotal struct {
	Month   string `json:"month"` // YYYY-MM
	Income  Money  `json:"income"`
	Expense Money  `json:"expense"`
}

// PackageProfit is the profitability view of one package.
type PackageProfit struct {
	PackageID   string `json:"packageId"`
	PackageName string `json:"packageName"`
	Income      Money  `json:"income"`
	Expense     Money  `json:"expense"`
	Profit      Money  `json:"profit"`
	BookedSeats int    `json:"bookedSeats"`
}

// FinancialReport is the full report for a date range.
type FinancialReport struct {
	From              string          `json:"from"`
	To                string          `json:"to"`
	Summary           *DashboardSummary `json:"summary"`
	IncomeByCategory  []CategoryTotal `json:"incomeByCategory"`
	ExpenseByCategory []CategoryTotal `json:"expenseByCategory"`
	MonthlyTrend      []MonthlyTotal  `json:"monthlyTrend"`
	PackageProfits    []PackageProfit `json:"packageProfits"`
}

// PaymentFilter narrows transaction list queries.
type PaymentFilter struct {
	Direction string
	Category  string
	PackageID string
	AccountID string
	From      string
	To        string
	Page      int
	PageSize  int
}

// AuditEntry records one ledger mutation for the audit trail.
type AuditEntry struct {
	ID        string `json:"id"`
	ActorID   string `json:"actorId"`
	Action    string `json:"action"` // create, edit, delete, pay
	Entity    string `json:"entity"`
	EntityID  string `json:"entityId"`
	Amount    Money  `json:"amount"`
	CreatedAt string `json:"createdAt"`
}

// LedgerMetricsSnapshot is the aggregate view served by the metrics
// summary endpoint, assembled from the Prometheus counters.
type LedgerMetricsSnapshot struct {
	PaymentsRecorded float64 `json:"paymentsRecorded"`
	PaymentsRejected float64 `json:"paymentsRejected"`
	ConflictRetries  float64 `json:"conflictRetries"`
	CacheHitRate     float64 `json:"cacheHitRate"`
	SSEClients       float64 `json:"sseClients"`
}

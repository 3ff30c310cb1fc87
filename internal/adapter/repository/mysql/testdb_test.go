package mysql

import (
	"path/filepath"
	"testing"
	"time"

	"loanappl-backend/internal/domain/loan"
	"loanappl-backend/internal/domain/loanappl"
	"loanappl-backend/internal/domain/loantype"
	"loanappl-backend/internal/domain/party"
	"loanappl-backend/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates a file-backed sqlite DB per test; a plain :memory: DB
// is per-connection and would lose the schema inside transactions.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&loanappl.Application{}, &loan.Loan{}, &loantype.LoanType{}, &party.Party{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func makeApplication(owner string) *loanappl.Application {
	return &loanappl.Application{
		ApplicationID:        id.NewID32(),
		Status:               loanappl.StatusOpen,
		PostingDate:          time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		PartyType:            loanappl.PartyCustomer,
		Party:                "CUST-0001",
		PartyName:            "Acme Corp",
		Currency:             "USD",
		Owner:                owner,
		RequestedGrossAmount: decimal.NewFromInt(1000),
		ApprovedGrossAmount:  decimal.NewFromInt(1000),
		LegalExpensesRate:    decimal.NewFromInt(5),
		LegalExpensesAmount:  decimal.NewFromInt(50),
		RequestedNetAmount:   decimal.NewFromInt(1050),
		ApprovedNetAmount:    decimal.NewFromInt(1050),
		RepaymentPeriods:     12,
		RepaymentFrequency:   loanappl.FrequencyMonthly,
		InterestRate:         decimal.NewFromInt(2),
		InterestType:         loanappl.InterestSimple,
	}
}

package core

import (
	"errors"
	"testing"
	"time"
)

func TestCategory_Validate(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		wantErr  error
	}{
		{
			name:     "valid",
			category: Category{Name: "Groceries", Tag: TagRegular, MonthlyLimit: 400},
		},
		{
			name:     "empty name",
			category: Category{Name: "  ", Tag: TagRegular},
			wantErr:  ErrEmptyName,
		},
		{
			name:     "bad tag",
			category: Category{Name: "Groceries", Tag: "misc"},
			wantErr:  ErrInvalidTag,
		},
		{
			name:     "negative limit",
			category: Category{Name: "Groceries", Tag: TagRegular, MonthlyLimit: -1},
			wantErr:  ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.category.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDebt_Validate(t *testing.T) {
	valid := Debt{Name: "Card", Balance: 1000, APR: 19.9, Minimum: 40}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	negative := Debt{Name: "Card", Balance: -5, Minimum: 40}
	if !errors.Is(negative.Validate(), ErrInvalidBalance) {
		t.Error("negative balance accepted")
	}

	zeroAPR := Debt{Name: "Family loan", Balance: 500, APR: 0, Minimum: 25}
	if err := zeroAPR.Validate(); err != nil {
		t.Errorf("zero APR rejected: %v", err)
	}
}

func TestIncomeRecord_Validate(t *testing.T) {
	valid := IncomeRecord{Year: 2025, Month: 6, Salary: 2000, Sources: []IncomeSource{{Name: "Rental", Amount: 300}}}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	badMonth := IncomeRecord{Year: 2025, Month: 0, Salary: 2000}
	if !errors.Is(badMonth.Validate(), ErrInvalidMonth) {
		t.Error("month 0 accepted")
	}

	unnamedSource := IncomeRecord{Year: 2025, Month: 6, Sources: []IncomeSource{{Name: "", Amount: 10}}}
	if !errors.Is(unnamedSource.Validate(), ErrEmptyName) {
		t.Error("unnamed income source accepted")
	}
}

func TestExpense_Validate(t *testing.T) {
	valid := Expense{Amount: 12.50, Date: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	if err := (Expense{Amount: 0, Date: time.Now()}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Error("zero amount accepted")
	}
	if err := (Expense{Amount: 10}).Validate(); err == nil {
		t.Error("zero date accepted")
	}
}

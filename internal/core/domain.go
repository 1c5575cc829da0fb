package core

import (
	"errors"
	"strings"
	"time"
)

const (
	TagRegular       CategoryTag = "regular"
	TagSavings       CategoryTag = "savings"
	TagDebt          CategoryTag = "debt"
	TagUncategorized CategoryTag = "uncategorized"
)

type (
	CategoryTag string

	Category struct {
		ID           int64
		UserID       int64
		Name         string
		MonthlyLimit float64 // default limit, superseded by LimitVersion rows
		Tag          CategoryTag
		IsSystem     bool
		IsActive     bool
	}

	// LimitVersion is an effective-dated override of a category's monthly
	// limit: "this limit applies starting in (Year, Month)". At most one row
	// exists per (category, year, month); writes overwrite the exact key.
	LimitVersion struct {
		CategoryID int64
		Year       int
		Month      int
		Limit      float64
	}

	IncomeSource struct {
		Name   string
		Amount float64
	}

	IncomeRecord struct {
		UserID      int64
		Year        int
		Month       int
		Salary      float64
		OtherIncome float64
		Sources     []IncomeSource
	}

	Expense struct {
		ID         int64
		UserID     int64
		CategoryID int64 // 0 means uncategorized
		Amount     float64
		Date       time.Time
		Note       string
	}

	Debt struct {
		ID       int64
		UserID   int64
		Name     string
		Balance  float64
		APR      float64 // annual percentage, 0 for interest-free
		Minimum  float64
		Extra    float64 // per-debt fixed additional payment
		IsActive bool
	}

	Alert struct {
		ID         int64
		UserID     int64
		CategoryID int64 // 0 for portfolio-wide alerts such as pacing
		Year       int
		Month      int
		Code       string
		Level      AlertLevel
		Message    string
		IsRead     bool
		CreatedAt  time.Time
	}

	AlertLevel string
)

const (
	LevelWarning AlertLevel = "warning"
	LevelAlert   AlertLevel = "alert"
)

var (
	ErrEmptyName      = errors.New("empty name")
	ErrInvalidTag     = errors.New("invalid category tag")
	ErrInvalidMonth   = errors.New("invalid month")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidBalance = errors.New("balance cannot be negative")
)

func (t CategoryTag) Valid() bool {
	switch t {
	case TagRegular, TagSavings, TagDebt, TagUncategorized:
		return true
	}
	return false
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 80 {
		return errors.New("name too long (max 80 characters)")
	}
	if !c.Tag.Valid() {
		return ErrInvalidTag
	}
	if c.MonthlyLimit < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (v LimitVersion) Validate() error {
	if v.CategoryID <= 0 {
		return errors.New("missing category id")
	}
	if v.Month < 1 || v.Month > 12 {
		return ErrInvalidMonth
	}
	if v.Limit < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (r IncomeRecord) Validate() error {
	if r.Month < 1 || r.Month > 12 {
		return ErrInvalidMonth
	}
	if r.Salary < 0 || r.OtherIncome < 0 {
		return ErrInvalidAmount
	}
	for _, s := range r.Sources {
		if strings.TrimSpace(s.Name) == "" {
			return ErrEmptyName
		}
		if s.Amount < 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

func (e Expense) Validate() error {
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if e.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	if len(e.Note) > 500 {
		return errors.New("note too long (max 500 characters)")
	}
	return nil
}

func (d Debt) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if d.Balance < 0 {
		return ErrInvalidBalance
	}
	if d.APR < 0 || d.Minimum < 0 || d.Extra < 0 {
		return ErrInvalidAmount
	}
	return nil
}

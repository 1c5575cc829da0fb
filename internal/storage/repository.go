package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"budgetd/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// ErrNotFound reports a missing row for single-record lookups.
var ErrNotFound = errors.New("not found")

// defaultCategories seeds a new user's budget. The system Uncategorized
// category is created separately and is never deletable.
var defaultCategories = []struct {
	Name string
	Tag  core.CategoryTag
}{
	{"Rent/Mortgage", core.TagRegular},
	{"Utilities", core.TagRegular},
	{"Groceries", core.TagRegular},
	{"Dining", core.TagRegular},
	{"Transportation", core.TagRegular},
	{"Insurance", core.TagRegular},
	{"Subscriptions", core.TagRegular},
	{"Kids", core.TagRegular},
	{"Savings", core.TagSavings},
	{"Debt Payment", core.TagDebt},
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- categories ---

func (r *SQLiteRepository) ListActiveCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, monthly_limit, tag, is_system, is_active
		FROM categories
		WHERE user_id = ? AND is_active = 1
		ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.MonthlyLimit, &c.Tag, &c.IsSystem, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, userID, categoryID int64) (*core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, monthly_limit, tag, is_system, is_active
		FROM categories
		WHERE user_id = ? AND id = ?`, userID, categoryID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.MonthlyLimit, &c.Tag, &c.IsSystem, &c.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (user_id, name, monthly_limit, tag, is_system, is_active)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.UserID, c.Name, c.MonthlyLimit, c.Tag, c.IsSystem, c.IsActive)
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("category insert id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, monthly_limit = ?, tag = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND id = ? AND is_system = 0`,
		c.Name, c.MonthlyLimit, c.Tag, c.IsActive, c.UserID, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateCategory soft-deletes a non-system category and reassigns its
// expenses: to the given replacement, or to the user's system Uncategorized
// category when replacementID is 0.
func (r *SQLiteRepository) DeactivateCategory(ctx context.Context, userID, categoryID, replacementID int64) (int64, error) {
	category, err := r.GetCategory(ctx, userID, categoryID)
	if err != nil {
		return 0, err
	}
	if category.IsSystem || category.Tag == core.TagUncategorized {
		return 0, errors.New("system category cannot be deleted")
	}

	if replacementID == 0 {
		uncategorized, err := r.EnsureUncategorized(ctx, userID)
		if err != nil {
			return 0, err
		}
		replacementID = uncategorized.ID
	} else if _, err := r.GetCategory(ctx, userID, replacementID); err != nil {
		return 0, fmt.Errorf("replacement category: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE expenses SET category_id = ? WHERE user_id = ? AND category_id = ?`,
		replacementID, userID, categoryID); err != nil {
		return 0, fmt.Errorf("reassign expenses: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE categories SET is_active = 0, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND id = ?`, userID, categoryID); err != nil {
		return 0, fmt.Errorf("deactivate category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return replacementID, nil
}

// EnsureUncategorized returns the user's system Uncategorized category,
// creating it when missing.
func (r *SQLiteRepository) EnsureUncategorized(ctx context.Context, userID int64) (*core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, monthly_limit, tag, is_system, is_active
		FROM categories
		WHERE user_id = ? AND tag = ? AND is_system = 1`,
		userID, core.TagUncategorized).
		Scan(&c.ID, &c.UserID, &c.Name, &c.MonthlyLimit, &c.Tag, &c.IsSystem, &c.IsActive)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find uncategorized: %w", err)
	}

	c = core.Category{
		UserID:   userID,
		Name:     "Uncategorized",
		Tag:      core.TagUncategorized,
		IsSystem: true,
		IsActive: true,
	}
	id, err := r.CreateCategory(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return &c, nil
}

// SeedDefaultCategories creates the starter category set for a user with no
// categories yet. Calling it again is a no-op.
func (r *SQLiteRepository) SeedDefaultCategories(ctx context.Context, userID int64) error {
	var count int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE user_id = ?`, userID).Scan(&count); err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	if _, err := r.EnsureUncategorized(ctx, userID); err != nil {
		return err
	}
	for _, seed := range defaultCategories {
		if _, err := r.CreateCategory(ctx, core.Category{
			UserID:   userID,
			Name:     seed.Name,
			Tag:      seed.Tag,
			IsActive: true,
		}); err != nil {
			return err
		}
	}

	slog.InfoContext(ctx, "Seeded default categories", "user_id", userID)
	return nil
}

// --- limit versions ---

func (r *SQLiteRepository) ListLimitVersions(ctx context.Context, userID int64, categoryIDs []int64) ([]core.LimitVersion, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(categoryIDs)-1) + "?"
	args := make([]any, 0, len(categoryIDs)+1)
	args = append(args, userID)
	for _, id := range categoryIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT category_id, year, month, monthly_limit
		FROM category_limits
		WHERE user_id = ? AND category_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("list limit versions: %w", err)
	}
	defer rows.Close()

	var versions []core.LimitVersion
	for rows.Next() {
		var v core.LimitVersion
		if err := rows.Scan(&v.CategoryID, &v.Year, &v.Month, &v.Limit); err != nil {
			return nil, fmt.Errorf("scan limit version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (r *SQLiteRepository) UpsertLimit(ctx context.Context, userID int64, v core.LimitVersion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO category_limits (user_id, category_id, year, month, monthly_limit)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, category_id, year, month)
		DO UPDATE SET monthly_limit = excluded.monthly_limit`,
		userID, v.CategoryID, v.Year, v.Month, v.Limit)
	if err != nil {
		return fmt.Errorf("upsert limit: %w", err)
	}
	return nil
}

// --- income ---

func (r *SQLiteRepository) GetIncome(ctx context.Context, userID int64, period core.Period) (*core.IncomeRecord, error) {
	var id int64
	record := core.IncomeRecord{UserID: userID, Year: period.Year, Month: period.Month}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, salary, other_income FROM budget_months
		WHERE user_id = ? AND year = ? AND month = ?`,
		userID, period.Year, period.Month).
		Scan(&id, &record.Salary, &record.OtherIncome)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get income: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT name, amount FROM budget_income_sources
		WHERE budget_month_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("list income sources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var src core.IncomeSource
		if err := rows.Scan(&src.Name, &src.Amount); err != nil {
			return nil, fmt.Errorf("scan income source: %w", err)
		}
		record.Sources = append(record.Sources, src)
	}
	return &record, rows.Err()
}

// UpsertIncome writes the month's salary and other income, then replaces
// the named income source list wholesale.
func (r *SQLiteRepository) UpsertIncome(ctx context.Context, record core.IncomeRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO budget_months (user_id, year, month, salary, other_income)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, year, month)
		DO UPDATE SET salary = excluded.salary, other_income = excluded.other_income`,
		record.UserID, record.Year, record.Month, record.Salary, record.OtherIncome); err != nil {
		return fmt.Errorf("upsert budget month: %w", err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx, `
		SELECT id FROM budget_months WHERE user_id = ? AND year = ? AND month = ?`,
		record.UserID, record.Year, record.Month).Scan(&id); err != nil {
		return fmt.Errorf("find budget month: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM budget_income_sources WHERE budget_month_id = ?`, id); err != nil {
		return fmt.Errorf("clear income sources: %w", err)
	}
	for _, src := range record.Sources {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO budget_income_sources (budget_month_id, name, amount)
			VALUES (?, ?, ?)`, id, src.Name, src.Amount); err != nil {
			return fmt.Errorf("insert income source: %w", err)
		}
	}

	return tx.Commit()
}

// --- expenses ---

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	var categoryID any
	if e.CategoryID != 0 {
		categoryID = e.CategoryID
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (user_id, category_id, amount, date, note)
		VALUES (?, ?, ?, ?, ?)`,
		e.UserID, categoryID, e.Amount, e.Date.Format(dateLayout), e.Note)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense insert id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64, period core.Period) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, COALESCE(category_id, 0), amount, date, COALESCE(note, '')
		FROM expenses
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date DESC, id DESC`,
		userID, period.Start().Format(dateLayout), period.End().Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var e core.Expense
		var date string
		if err := rows.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Amount, &date, &e.Note); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Date, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse expense date %q: %w", date, err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// SumExpensesByCategory totals the month's spend per category. Expenses
// with no category are grouped under id 0.
func (r *SQLiteRepository) SumExpensesByCategory(ctx context.Context, userID int64, period core.Period) (map[int64]float64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT COALESCE(category_id, 0), SUM(amount)
		FROM expenses
		WHERE user_id = ? AND date >= ? AND date <= ?
		GROUP BY COALESCE(category_id, 0)`,
		userID, period.Start().Format(dateLayout), period.End().Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("sum expenses: %w", err)
	}
	defer rows.Close()

	totals := make(map[int64]float64)
	for rows.Next() {
		var categoryID int64
		var total float64
		if err := rows.Scan(&categoryID, &total); err != nil {
			return nil, fmt.Errorf("scan expense total: %w", err)
		}
		totals[categoryID] = total
	}
	return totals, rows.Err()
}

// --- debts ---

func (r *SQLiteRepository) ListActiveDebts(ctx context.Context, userID int64) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, debt_name, balance, apr, minimum_payment, extra_payment, is_active
		FROM debts
		WHERE user_id = ? AND is_active = 1
		ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	var debts []core.Debt
	for rows.Next() {
		var d core.Debt
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Balance, &d.APR, &d.Minimum, &d.Extra, &d.IsActive); err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

func (r *SQLiteRepository) CreateDebt(ctx context.Context, d core.Debt) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO debts (user_id, debt_name, balance, apr, minimum_payment, extra_payment, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.UserID, d.Name, d.Balance, d.APR, d.Minimum, d.Extra, d.IsActive)
	if err != nil {
		return 0, fmt.Errorf("create debt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("debt insert id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) UpdateDebt(ctx context.Context, d core.Debt) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE debts
		SET debt_name = ?, balance = ?, apr = ?, minimum_payment = ?, extra_payment = ?, is_active = ?
		WHERE user_id = ? AND id = ?`,
		d.Name, d.Balance, d.APR, d.Minimum, d.Extra, d.IsActive, d.UserID, d.ID)
	if err != nil {
		return fmt.Errorf("update debt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update debt result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeactivateDebt(ctx context.Context, userID, debtID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE debts SET is_active = 0 WHERE user_id = ? AND id = ?`, userID, debtID)
	if err != nil {
		return fmt.Errorf("deactivate debt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate debt result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- alerts ---

// InsertAlertIfAbsent creates the alert unless its (user, code, year,
// month) key already exists. The unique constraint makes the check-and-
// insert atomic; a conflict is the expected idempotency outcome.
func (r *SQLiteRepository) InsertAlertIfAbsent(ctx context.Context, alert core.Alert) (bool, error) {
	var categoryID any
	if alert.CategoryID != 0 {
		categoryID = alert.CategoryID
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO alerts (user_id, category_id, year, month, code, level, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, code, year, month) DO NOTHING`,
		alert.UserID, categoryID, alert.Year, alert.Month, alert.Code, alert.Level, alert.Message)
	if err != nil {
		return false, fmt.Errorf("insert alert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert alert result: %w", err)
	}
	return affected > 0, nil
}

func (r *SQLiteRepository) ListAlerts(ctx context.Context, userID int64, period core.Period) ([]core.Alert, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, COALESCE(category_id, 0), year, month, code, level, message, is_read, created_at
		FROM alerts
		WHERE user_id = ? AND year = ? AND month = ?
		ORDER BY created_at DESC, id DESC`,
		userID, period.Year, period.Month)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []core.Alert
	for rows.Next() {
		var a core.Alert
		if err := rows.Scan(&a.ID, &a.UserID, &a.CategoryID, &a.Year, &a.Month,
			&a.Code, &a.Level, &a.Message, &a.IsRead, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *SQLiteRepository) MarkAlertRead(ctx context.Context, userID, alertID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET is_read = 1 WHERE user_id = ? AND id = ?`, userID, alertID)
	if err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark alert result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUserIDs returns every user with any budgeting data, for the periodic
// alert sweep.
func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT user_id FROM categories
		UNION SELECT DISTINCT user_id FROM expenses
		UNION SELECT DISTINCT user_id FROM budget_months`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

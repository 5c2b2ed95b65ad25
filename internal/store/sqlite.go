// Package store persists agents, orders, payouts, and the chat exchange log
// in SQLite. It owns the schema; the query side exposes only the two lookups
// the engine needs plus agent resolution for login.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fieldbot/internal/domain"

	_ "modernc.org/sqlite"
)

// maxOrderResults caps customer searches, newest order first.
const maxOrderResults = 10

// SQLite implements domain.DataStore, domain.ExchangeLog, and
// domain.AgentDirectory on a single SQLite database.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

func Open(dbPath string, logger *slog.Logger) (*SQLite, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
		}
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection: SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLite{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS user_employees (
		EmpID     INTEGER PRIMARY KEY AUTOINCREMENT,
		Name      TEXT NOT NULL,
		Email     TEXT UNIQUE NOT NULL,
		Phone     TEXT,
		Position  TEXT,
		City      TEXT,
		Status    TEXT CHECK(Status IN ('Active','Inactive')) DEFAULT 'Active',
		Password  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS orders (
		PID           INTEGER PRIMARY KEY AUTOINCREMENT,
		CustomerName  TEXT NOT NULL,
		Email         TEXT,
		Phone         TEXT,
		Closer        INTEGER,
		ContractPrice DECIMAL(12,2),
		SystemSize    TEXT,
		Stage         TEXT,
		Redline       TEXT,
		FOREIGN KEY (Closer) REFERENCES user_employees(EmpID) ON DELETE SET NULL
	);

	CREATE TABLE IF NOT EXISTS payout (
		ID         INTEGER PRIMARY KEY AUTOINCREMENT,
		PID        INTEGER,
		EmpID      INTEGER,
		Amount     DECIMAL(12,2),
		Type       TEXT CHECK(Type IN ('M1','M2','M3','Clawback')),
		PayingDate DATE,
		FOREIGN KEY (PID) REFERENCES orders(PID) ON DELETE CASCADE,
		FOREIGN KEY (EmpID) REFERENCES user_employees(EmpID) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_payout_emp_date ON payout(EmpID, PayingDate);

	CREATE TABLE IF NOT EXISTS chat_history (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL,
		message     TEXT NOT NULL,
		response    TEXT NOT NULL,
		timestamp   DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (employee_id) REFERENCES user_employees(EmpID)
	);
	CREATE INDEX IF NOT EXISTS idx_chat_emp ON chat_history(employee_id, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SumPayout sums payout amounts for the agent with paying dates inside the
// range, inclusive on both ends. Returns 0 when nothing matches.
func (s *SQLite) SumPayout(ctx context.Context, agentID int64, r domain.DateRange) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(Amount), 0) FROM payout
		 WHERE EmpID = ? AND PayingDate >= ? AND PayingDate <= ?`,
		agentID, r.StartDate(), r.EndDate(),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum payout: %w", err)
	}
	return total, nil
}

// FindOrdersByCustomer matches the fragment against customer names with a
// case-insensitive substring search, newest order first, capped at 10.
func (s *SQLite) FindOrdersByCustomer(ctx context.Context, fragment string) ([]domain.OrderRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT PID, CustomerName, Email, Phone, ContractPrice, SystemSize, Stage, Redline
		 FROM orders
		 WHERE CustomerName LIKE ?
		 ORDER BY PID DESC
		 LIMIT ?`,
		"%"+fragment+"%", maxOrderResults,
	)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.OrderRecord
	for rows.Next() {
		var o domain.OrderRecord
		var email, phone, size, stage, redline sql.NullString
		var price sql.NullFloat64
		if err := rows.Scan(&o.ID, &o.CustomerName, &email, &phone, &price, &size, &stage, &redline); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Email = email.String
		o.Phone = phone.String
		o.SystemSize = size.String
		o.Stage = stage.String
		o.Redline = redline.String
		if price.Valid {
			v := price.Float64
			o.ContractPrice = &v
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Append records one processed exchange.
func (s *SQLite) Append(ctx context.Context, agentID int64, message, response string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_history (employee_id, message, response, timestamp) VALUES (?, ?, ?, ?)`,
		agentID, message, response, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("append exchange: %w", err)
	}
	return nil
}

// Recent returns the agent's last exchanges in chronological order.
func (s *SQLite) Recent(ctx context.Context, agentID int64, limit int) ([]domain.Exchange, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, message, response, timestamp
		 FROM chat_history WHERE employee_id = ?
		 ORDER BY id DESC LIMIT ?`,
		agentID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []domain.Exchange
	for rows.Next() {
		var e domain.Exchange
		if err := rows.Scan(&e.ID, &e.AgentID, &e.Message, &e.Response, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		exchanges = append(exchanges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to chronological order.
	for i, j := 0, len(exchanges)-1; i < j; i, j = i+1, j-1 {
		exchanges[i], exchanges[j] = exchanges[j], exchanges[i]
	}
	return exchanges, nil
}

// AgentByEmail resolves an agent for login. Returns (nil, nil) when no such
// agent exists.
func (s *SQLite) AgentByEmail(ctx context.Context, email string) (*domain.Agent, error) {
	var a domain.Agent
	var phone, position, city sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT EmpID, Name, Email, Phone, Position, City, Status, Password
		 FROM user_employees WHERE Email = ?`, email,
	).Scan(&a.ID, &a.Name, &a.Email, &phone, &position, &city, &a.Status, &a.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("agent by email: %w", err)
	}
	a.Phone = phone.String
	a.Position = position.String
	a.City = city.String
	return &a, nil
}

// CountAgents reports how many agents exist; the seeder uses it to skip
// already-populated databases.
func (s *SQLite) CountAgents(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_employees`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count agents: %w", err)
	}
	return n, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

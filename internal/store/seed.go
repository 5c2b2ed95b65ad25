package store

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// SeedFile is the on-disk dataset format. Agent passwords are given in plain
// text and bcrypt-hashed on insert.
type SeedFile struct {
	Agents  []SeedAgent  `yaml:"agents"`
	Orders  []SeedOrder  `yaml:"orders"`
	Payouts []SeedPayout `yaml:"payouts"`
}

type SeedAgent struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Phone    string `yaml:"phone"`
	Position string `yaml:"position"`
	City     string `yaml:"city"`
	Status   string `yaml:"status"`
	Password string `yaml:"password"`
}

type SeedOrder struct {
	Customer      string   `yaml:"customer"`
	Email         string   `yaml:"email"`
	Phone         string   `yaml:"phone"`
	Closer        int64    `yaml:"closer"`
	ContractPrice *float64 `yaml:"contract_price"`
	SystemSize    string   `yaml:"system_size"`
	Stage         string   `yaml:"stage"`
	Redline       string   `yaml:"redline"`
}

type SeedPayout struct {
	Order      int64   `yaml:"order"`
	Agent      int64   `yaml:"agent"`
	Amount     float64 `yaml:"amount"`
	Type       string  `yaml:"type"` // M1 | M2 | M3 | Clawback
	PayingDate string  `yaml:"paying_date"`
}

// LoadSeedFile reads a dataset from path, or the embedded default dataset
// when path is empty.
func LoadSeedFile(path string) (*SeedFile, error) {
	data := defaultSeed
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read seed file %s: %w", path, err)
		}
	}
	var sf SeedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("cannot parse seed file: %w", err)
	}
	return &sf, nil
}

// Seed inserts the dataset. A database that already has agents is left
// untouched so restarts never duplicate rows.
func (s *SQLite) Seed(ctx context.Context, sf *SeedFile) error {
	n, err := s.CountAgents(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("seed skipped, agents already present", "count", n)
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, a := range sf.Agents {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", a.Email, err)
		}
		status := a.Status
		if status == "" {
			status = "Active"
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_employees (Name, Email, Phone, Position, City, Status, Password)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.Name, a.Email, a.Phone, a.Position, a.City, status, string(hash),
		); err != nil {
			return fmt.Errorf("insert agent %s: %w", a.Email, err)
		}
	}

	for _, o := range sf.Orders {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO orders (CustomerName, Email, Phone, Closer, ContractPrice, SystemSize, Stage, Redline)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			o.Customer, o.Email, o.Phone, o.Closer, o.ContractPrice, o.SystemSize, o.Stage, o.Redline,
		); err != nil {
			return fmt.Errorf("insert order for %s: %w", o.Customer, err)
		}
	}

	for _, p := range sf.Payouts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO payout (PID, EmpID, Amount, Type, PayingDate) VALUES (?, ?, ?, ?, ?)`,
			p.Order, p.Agent, p.Amount, p.Type, p.PayingDate,
		); err != nil {
			return fmt.Errorf("insert payout for agent %d: %w", p.Agent, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	s.logger.Info("database seeded",
		"agents", len(sf.Agents),
		"orders", len(sf.Orders),
		"payouts", len(sf.Payouts),
	)
	return nil
}

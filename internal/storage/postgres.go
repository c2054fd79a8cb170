package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"
	_ "github.com/lib/pq"
	"github.com/mselser95/dex-arb/internal/spread"
	"github.com/mselser95/dex-arb/pkg/types"
	"go.uber.org/zap"
)

// PostgresStorage implements Storage using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage creates a new PostgreSQL storage.
func NewPostgresStorage(cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Test connection
	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStorage{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// StoreReport stores one tick's spread report. Per-venue samples land in a
// JSONB column so adding a venue never needs a schema change.
func (p *PostgresStorage) StoreReport(ctx context.Context, report *spread.Report) error {
	samplesJSON, err := json.Marshal(report.Samples)
	if err != nil {
		return fmt.Errorf("marshal samples: %w", err)
	}

	var (
		spreadPct, threshold, buyPrice, sellPrice string
		buyVenue, sellVenue                       string
		qualifies                                 bool
	)
	if report.Result != nil {
		spreadPct = report.Result.Spread.String()
		threshold = report.Result.Threshold.String()
		buyVenue = report.Result.BuyVenue
		sellVenue = report.Result.SellVenue
		buyPrice = report.Result.BuyPrice.String()
		sellPrice = report.Result.SellPrice.String()
		qualifies = report.Result.Qualifies
	}

	query := `
		INSERT INTO spread_reports (
			id, tick, pair, created_at, samples,
			spread_pct, threshold_pct, buy_venue, sell_venue,
			buy_price, sell_price, qualifies, inconclusive
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	_, err = p.db.ExecContext(ctx, query,
		report.ID,
		report.Tick,
		report.Pair.Key(),
		report.CreatedAt,
		samplesJSON,
		spreadPct,
		threshold,
		buyVenue,
		sellVenue,
		buyPrice,
		sellPrice,
		qualifies,
		string(report.Inconclusive),
	)

	if err != nil {
		return fmt.Errorf("insert spread report: %w", err)
	}

	p.logger.Debug("report-stored",
		zap.String("report-id", report.ID),
		zap.Uint64("tick", report.Tick),
		zap.Bool("qualifies", qualifies))

	return nil
}

// StoreOutcome stores the terminal state of one trigger attempt.
func (p *PostgresStorage) StoreOutcome(ctx context.Context, outcome types.ExecutionOutcome) error {
	var errText string
	if outcome.Err != nil {
		errText = outcome.Err.Error()
	}

	query := `
		INSERT INTO trigger_outcomes (
			request_id, pair, status, tx_hash, gas_used, revert_reason, error
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := p.db.ExecContext(ctx, query,
		outcome.RequestID,
		outcome.Pair.Key(),
		string(outcome.Status),
		outcome.TxHash.Hex(),
		outcome.GasUsed,
		outcome.RevertReason,
		errText,
	)

	if err != nil {
		return fmt.Errorf("insert trigger outcome: %w", err)
	}

	p.logger.Debug("outcome-stored",
		zap.String("request-id", outcome.RequestID),
		zap.String("status", string(outcome.Status)))

	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}

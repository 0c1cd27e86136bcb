package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fieldtel/number-provisioning-backend/internal/domain/numbering"
	"github.com/fieldtel/number-provisioning-backend/internal/domain/values"
)

// ProvisionedNumberRepository persists generated numbers so the uniqueness
// scope survives restarts.
type ProvisionedNumberRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewProvisionedNumberRepository wraps a pool.
func NewProvisionedNumberRepository(pool *pgxpool.Pool, logger *zap.Logger) *ProvisionedNumberRepository {
	return &ProvisionedNumberRepository{pool: pool, logger: logger}
}

// StoreGenerated inserts one batch of generated numbers. The e164 column is
// unique; conflicts are skipped rather than failing the batch, since a
// conflicting row means the number is already provisioned.
func (r *ProvisionedNumberRepository) StoreGenerated(ctx context.Context, batchID uuid.UUID, numbers []numbering.GeneratedNumber) error {
	if len(numbers) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, gen := range numbers {
		batch.Queue(`
			INSERT INTO provisioned_numbers (batch_id, country, e164, prefix)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (e164) DO NOTHING`,
			batchID, gen.Country, gen.E164, numbering.Prefix(gen.E164, gen.Country),
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range numbers {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("inserting provisioned number: %w", err)
		}
	}

	r.logger.Debug("stored provisioned numbers",
		zap.String("batch_id", batchID.String()),
		zap.Int("count", len(numbers)))
	return nil
}

// LoadUsed returns every provisioned number and prefix. Numbers pass through
// the PhoneNumber scanner so a corrupted row fails loudly instead of seeding
// the uniqueness sets with garbage.
func (r *ProvisionedNumberRepository) LoadUsed(ctx context.Context) ([]string, []string, error) {
	rows, err := r.pool.Query(ctx, `SELECT e164, prefix FROM provisioned_numbers`)
	if err != nil {
		return nil, nil, fmt.Errorf("querying provisioned numbers: %w", err)
	}
	defer rows.Close()

	var fulls, prefixes []string
	for rows.Next() {
		var phone values.PhoneNumber
		var prefix string
		if err := rows.Scan(&phone, &prefix); err != nil {
			return nil, nil, fmt.Errorf("scanning provisioned number: %w", err)
		}
		fulls = append(fulls, phone.E164())
		prefixes = append(prefixes, prefix)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating provisioned numbers: %w", err)
	}
	return fulls, prefixes, nil
}

// CountByCountry returns how many numbers each country has provisioned.
func (r *ProvisionedNumberRepository) CountByCountry(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT country, COUNT(*) FROM provisioned_numbers GROUP BY country`)
	if err != nil {
		return nil, fmt.Errorf("counting provisioned numbers: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var country string
		var n int
		if err := rows.Scan(&country, &n); err != nil {
			return nil, fmt.Errorf("scanning count row: %w", err)
		}
		counts[country] = n
	}
	return counts, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/leadflow/leadflow-backend/internal/leads/domain"
	"github.com/leadflow/leadflow-backend/pkg/database"
	"github.com/leadflow/leadflow-backend/pkg/errors"
	"github.com/lib/pq"
)

const leadColumns = `id, reg_nr, chassis_nr, owner_name, phone, source,
	purchase_date, sold_date, ownership_duration, details, created_at`

// LeadRepository handles lead persistence
type LeadRepository struct {
	db *database.DB
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *database.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// EnsureSchema creates the leads table and indexes if they are missing
func (r *LeadRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to ensure leads schema: %w", err)
	}
	return nil
}

// Create inserts a lead, assigning an id when none is set
func (r *LeadRepository) Create(ctx context.Context, lead *domain.LeadRecord) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}

	query := `
		INSERT INTO leads (id, reg_nr, chassis_nr, owner_name, phone, source,
			purchase_date, sold_date, ownership_duration, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		lead.ID,
		lead.RegNr,
		lead.ChassisNr,
		lead.OwnerName,
		lead.Phone,
		lead.Source,
		lead.PurchaseDate,
		lead.SoldDate,
		lead.OwnershipDuration,
		lead.Details,
	).Scan(&lead.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a lead by id
func (r *LeadRepository) GetByID(ctx context.Context, id string) (*domain.LeadRecord, error) {
	var lead domain.LeadRecord
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	if err := r.db.GetContext(ctx, &lead, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("lead")
		}
		return nil, err
	}

	return &lead, nil
}

// List lists leads newest first with pagination
func (r *LeadRepository) List(ctx context.Context, page, perPage int) ([]*domain.LeadRecord, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM leads`); err != nil {
		return nil, 0, err
	}

	leads := []*domain.LeadRecord{}
	offset := (page - 1) * perPage
	query := `SELECT ` + leadColumns + `
		FROM leads
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`

	if err := r.db.SelectContext(ctx, &leads, query, perPage, offset); err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}

// ListAll loads every lead's identifying fields, oldest first. This is the
// population a duplicate check runs against.
func (r *LeadRepository) ListAll(ctx context.Context) ([]domain.LeadRecord, error) {
	leads := []domain.LeadRecord{}
	query := `
		SELECT id, reg_nr, chassis_nr, owner_name, phone, source, created_at
		FROM leads
		ORDER BY created_at, id
	`

	if err := r.db.SelectContext(ctx, &leads, query); err != nil {
		return nil, err
	}

	return leads, nil
}

// DeleteByIDs deletes leads in batches inside one transaction, so either all
// batches are removed or none are
func (r *LeadRepository) DeleteByIDs(ctx context.Context, ids []string, batchSize int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = len(ids)
	}

	deleted := 0
	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for start := 0; start < len(ids); start += batchSize {
			end := start + batchSize
			if end > len(ids) {
				end = len(ids)
			}

			result, err := tx.ExecContext(ctx, `DELETE FROM leads WHERE id = ANY($1)`, pq.Array(ids[start:end]))
			if err != nil {
				return fmt.Errorf("failed to delete leads batch %d-%d: %w", start, end, err)
			}

			n, err := result.RowsAffected()
			if err != nil {
				return err
			}
			deleted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

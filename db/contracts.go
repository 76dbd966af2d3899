package db

import (
	"context"

	"github.com/google/uuid"

	"procurement/models"
)

// Contract (Договор)

func (s *Storage) CreateContract(ctx context.Context, c *models.Contract) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	query := `
        INSERT INTO contracts
            (id, title, category, division, department, description,
             effective_date, expiry_date, status, current_step, version)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1)
        RETURNING version, created_at, updated_at`
	return s.db.QueryRowContext(ctx, query,
		c.ID, c.Title, c.Category, c.Division, c.Department, c.Description,
		c.EffectiveDate, c.ExpiryDate, c.Status, c.CurrentStep).
		Scan(&c.Version, &c.CreatedAt, &c.UpdatedAt)
}

func (s *Storage) GetContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	c := &models.Contract{}
	query := `SELECT * FROM contracts WHERE id=$1`
	if err := s.db.GetContext(ctx, c, query, id); err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (s *Storage) ListContracts(ctx context.Context, limit, offset int) ([]models.Contract, error) {
	query := `
        SELECT * FROM contracts
        ORDER BY created_at DESC, id
        LIMIT $1 OFFSET $2`
	contracts := []models.Contract{}
	err := s.db.SelectContext(ctx, &contracts, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

// ListAllContractIDs для пакетного пересчёта текущего шага
func (s *Storage) ListAllContractIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids, `SELECT id FROM contracts ORDER BY created_at`)
	return ids, err
}

// UpdateContract перезаписывает заголовок договора. Версию увеличивает вызывающий.
func (s *Storage) UpdateContract(ctx context.Context, c *models.Contract) error {
	query := `
        UPDATE contracts
        SET title=$1, category=$2, division=$3, department=$4, description=$5,
            effective_date=$6, expiry_date=$7, status=$8, current_step=$9, version=$10,
            updated_at=NOW()
        WHERE id=$11`
	res, err := s.db.ExecContext(ctx, query,
		c.Title, c.Category, c.Division, c.Department, c.Description,
		c.EffectiveDate, c.ExpiryDate, c.Status, c.CurrentStep, c.Version, c.ID)
	return expectAffected(res, err)
}

func (s *Storage) UpdateContractCurrentStep(ctx context.Context, id uuid.UUID, step string) error {
	query := `UPDATE contracts SET current_step=$1, updated_at=NOW() WHERE id=$2`
	res, err := s.db.ExecContext(ctx, query, step, id)
	return expectAffected(res, err)
}

func (s *Storage) DeleteContract(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM contracts WHERE id=$1`
	res, err := s.db.ExecContext(ctx, query, id)
	return expectAffected(res, err)
}

// SaveContractVersion сохраняет снимок текущей версии перед поправкой
func (s *Storage) SaveContractVersion(ctx context.Context, c *models.Contract) error {
	query := `
        INSERT INTO contract_versions
            (contract_id, version, title, category, division, department, description,
             effective_date, expiry_date, status, created_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
        ON CONFLICT (contract_id, version) DO NOTHING`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.Version, c.Title, c.Category, c.Division, c.Department, c.Description,
		c.EffectiveDate, c.ExpiryDate, c.Status)
	return err
}

func (s *Storage) GetContractVersion(ctx context.Context, contractID uuid.UUID, version int) (*models.ContractVersion, error) {
	var v models.ContractVersion
	query := `SELECT * FROM contract_versions WHERE contract_id = $1 AND version = $2`
	if err := s.db.GetContext(ctx, &v, query, contractID, version); err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

package db

import (
	"context"

	"github.com/google/uuid"

	"procurement/models"
)

// AgendaItem (Шаг повестки)

func (s *Storage) CreateAgendaItem(ctx context.Context, it *models.AgendaItem) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	query := `
        INSERT INTO agenda_items
            (id, contract_id, step_name, status, start_date, end_date, remarks)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at`
	return s.db.QueryRowContext(ctx, query,
		it.ID, it.ContractID, it.StepName, it.Status, it.StartDate, it.EndDate, it.Remarks).
		Scan(&it.CreatedAt)
}

func (s *Storage) ListAgendaItems(ctx context.Context, contractID uuid.UUID) ([]models.AgendaItem, error) {
	items := []models.AgendaItem{}
	query := `SELECT * FROM agenda_items WHERE contract_id=$1 ORDER BY created_at`
	err := s.db.SelectContext(ctx, &items, query, contractID)
	return items, err
}

func (s *Storage) UpdateAgendaItem(ctx context.Context, it *models.AgendaItem) error {
	query := `
        UPDATE agenda_items
        SET step_name=$1, status=$2, start_date=$3, end_date=$4, remarks=$5
        WHERE id=$6 AND contract_id=$7`
	res, err := s.db.ExecContext(ctx, query,
		it.StepName, it.Status, it.StartDate, it.EndDate, it.Remarks, it.ID, it.ContractID)
	return expectAffected(res, err)
}

// DeleteAgendaItem даты поставщиков по шагу удаляются каскадом
func (s *Storage) DeleteAgendaItem(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM agenda_items WHERE id=$1`, id)
	return expectAffected(res, err)
}

package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"procurement/models"
)

// ContractVendor (Поставщик)

func (s *Storage) CreateVendor(ctx context.Context, v *models.ContractVendor) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	query := `
        INSERT INTO contract_vendors
            (id, contract_id, agenda_step_id, vendor_name, kyc_result, kyc_notes,
             tech_score, tech_notes, price, revised_price, is_appointed)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE)
        RETURNING created_at`
	v.IsAppointed = false
	return s.db.QueryRowContext(ctx, query,
		v.ID, v.ContractID, v.AgendaStepID, v.VendorName, v.KYCResult, v.KYCNotes,
		v.TechScore, v.TechNotes, v.Price, v.RevisedPrice).
		Scan(&v.CreatedAt)
}

func (s *Storage) ListVendors(ctx context.Context, contractID uuid.UUID) ([]models.ContractVendor, error) {
	vendors := []models.ContractVendor{}
	query := `SELECT * FROM contract_vendors WHERE contract_id=$1 ORDER BY created_at`
	err := s.db.SelectContext(ctx, &vendors, query, contractID)
	return vendors, err
}

// UpdateVendor обновляет поля оценки. Назначение меняется только через SetAppointedVendor.
func (s *Storage) UpdateVendor(ctx context.Context, v *models.ContractVendor) error {
	query := `
        UPDATE contract_vendors
        SET agenda_step_id=$1, vendor_name=$2, kyc_result=$3, kyc_notes=$4,
            tech_score=$5, tech_notes=$6, price=$7, revised_price=$8
        WHERE id=$9 AND contract_id=$10`
	res, err := s.db.ExecContext(ctx, query,
		v.AgendaStepID, v.VendorName, v.KYCResult, v.KYCNotes,
		v.TechScore, v.TechNotes, v.Price, v.RevisedPrice, v.ID, v.ContractID)
	return expectAffected(res, err)
}

func (s *Storage) DeleteVendor(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contract_vendors WHERE id=$1`, id)
	return expectAffected(res, err)
}

// SetAppointedVendor снимает назначение со всех поставщиков договора и ставит на vendorID.
// nil просто снимает назначение. Уникальный частичный индекс требует именно такого порядка.
func (s *Storage) SetAppointedVendor(ctx context.Context, contractID uuid.UUID, vendorID *uuid.UUID) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`UPDATE contract_vendors SET is_appointed=FALSE WHERE contract_id=$1 AND is_appointed`,
		contractID); err != nil {
		return fmt.Errorf("clear appointment: %w", err)
	}
	if vendorID != nil {
		res, execErr := tx.ExecContext(ctx,
			`UPDATE contract_vendors SET is_appointed=TRUE WHERE id=$1 AND contract_id=$2`,
			*vendorID, contractID)
		if err = expectAffected(res, execErr); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// VendorStepDate (Даты поставщика по шагу)

// UpsertVendorStepDate одна запись на пару (vendor_id, agenda_step_id)
func (s *Storage) UpsertVendorStepDate(ctx context.Context, d *models.VendorStepDate) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	query := `
        INSERT INTO vendor_step_dates (id, vendor_id, agenda_step_id, start_date, end_date, remarks)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (vendor_id, agenda_step_id) DO UPDATE
        SET start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date, remarks = EXCLUDED.remarks
        RETURNING id`
	return s.db.QueryRowContext(ctx, query,
		d.ID, d.VendorID, d.AgendaStepID, d.StartDate, d.EndDate, d.Remarks).
		Scan(&d.ID)
}

func (s *Storage) ListVendorStepDates(ctx context.Context, contractID uuid.UUID) ([]models.VendorStepDate, error) {
	dates := []models.VendorStepDate{}
	query := `
        SELECT d.* FROM vendor_step_dates d
        JOIN contract_vendors v ON v.id = d.vendor_id
        WHERE v.contract_id = $1`
	err := s.db.SelectContext(ctx, &dates, query, contractID)
	return dates, err
}

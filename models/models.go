package models

import (
	"time"

	"github.com/google/uuid"
)

// Хранимые статусы договора. Набор открытый, в БД может лежать и другое значение.
const (
	ContractOnProgress = "On Progress"
	ContractActive     = "Active"
	ContractCompleted  = "Completed"
)

// Статусы шага повестки
const (
	StepPending    = "Pending"
	StepInProgress = "In Progress"
	StepCompleted  = "Completed"
)

// Результаты KYC
const (
	KYCPass = "Pass"
	KYCFail = "Fail"
)

// Сущность Договора
type Contract struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Category      string    `db:"category" json:"category"`
	Division      string    `db:"division" json:"division"`
	Department    string    `db:"department" json:"department"`
	Description   string    `db:"description" json:"description"`
	EffectiveDate NullDate  `db:"effective_date" json:"effectiveDate"`
	ExpiryDate    NullDate  `db:"expiry_date" json:"expiryDate"`
	Status        string    `db:"status" json:"status"`
	CurrentStep   string    `db:"current_step" json:"currentStep"`
	Version       int       `db:"version" json:"version"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"-"`
}

// Снимок договора до поправки (amendment)
type ContractVersion struct {
	ContractID    uuid.UUID `db:"contract_id" json:"contractId"`
	Version       int       `db:"version" json:"version"`
	Title         string    `db:"title" json:"title"`
	Category      string    `db:"category" json:"category"`
	Division      string    `db:"division" json:"division"`
	Department    string    `db:"department" json:"department"`
	Description   string    `db:"description" json:"description"`
	EffectiveDate NullDate  `db:"effective_date" json:"effectiveDate"`
	ExpiryDate    NullDate  `db:"expiry_date" json:"expiryDate"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// Шаг повестки закупки
type AgendaItem struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ContractID uuid.UUID `db:"contract_id" json:"contractId"`
	StepName   string    `db:"step_name" json:"stepName"`
	Status     string    `db:"status" json:"status"`
	StartDate  NullDate  `db:"start_date" json:"startDate"`
	EndDate    NullDate  `db:"end_date" json:"endDate"`
	Remarks    *string   `db:"remarks" json:"remarks"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Поставщик-кандидат по договору
type ContractVendor struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ContractID   uuid.UUID  `db:"contract_id" json:"contractId"`
	AgendaStepID *uuid.UUID `db:"agenda_step_id" json:"agendaStepId"`
	VendorName   string     `db:"vendor_name" json:"vendorName"`
	KYCResult    *string    `db:"kyc_result" json:"kycResult"`
	KYCNotes     *string    `db:"kyc_notes" json:"kycNotes"`
	TechScore    *float64   `db:"tech_score" json:"techScore"`
	TechNotes    *string    `db:"tech_notes" json:"techNotes"`
	Price        *string    `db:"price" json:"price"`
	RevisedPrice *string    `db:"revised_price" json:"revisedPrice"`
	IsAppointed  bool       `db:"is_appointed" json:"isAppointed"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}

// Даты прохождения шага конкретным поставщиком, одна запись на пару (vendor, step)
type VendorStepDate struct {
	ID           uuid.UUID `db:"id" json:"id"`
	VendorID     uuid.UUID `db:"vendor_id" json:"vendorId"`
	AgendaStepID uuid.UUID `db:"agenda_step_id" json:"agendaStepId"`
	StartDate    NullDate  `db:"start_date" json:"startDate"`
	EndDate      NullDate  `db:"end_date" json:"endDate"`
	Remarks      *string   `db:"remarks" json:"remarks"`
}

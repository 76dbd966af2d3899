package handlers

import (
	"context"

	"github.com/google/uuid"

	"procurement/internal/lifecycle"
	"procurement/internal/progress"
	"procurement/models"
)

type StorageInterface interface {
	lifecycle.Store

	Ping(ctx context.Context) error

	CreateContract(ctx context.Context, c *models.Contract) error
	GetContract(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	ListContracts(ctx context.Context, limit, offset int) ([]models.Contract, error)
	DeleteContract(ctx context.Context, id uuid.UUID) error
	GetContractVersion(ctx context.Context, contractID uuid.UUID, version int) (*models.ContractVersion, error)

	LoadSnapshots(ctx context.Context, contracts []models.Contract) ([]progress.Snapshot, error)
}

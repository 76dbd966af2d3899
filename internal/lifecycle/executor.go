// Package lifecycle применяет изменения к договору: сначала к снимку в памяти,
// затем отдельными запросами к хранилищу. Транзакции между записями нет,
// при ошибке снимок перечитывается из хранилища.
package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"procurement/internal/logger"
	"procurement/internal/progress"
	"procurement/models"
)

// ErrInvalidTransition переход статуса договора недопустим
var ErrInvalidTransition = errors.New("invalid status transition")

// Writer операции записи, которые нужны командам.
type Writer interface {
	UpdateContract(ctx context.Context, c *models.Contract) error
	UpdateContractCurrentStep(ctx context.Context, id uuid.UUID, step string) error
	SaveContractVersion(ctx context.Context, c *models.Contract) error

	CreateAgendaItem(ctx context.Context, it *models.AgendaItem) error
	UpdateAgendaItem(ctx context.Context, it *models.AgendaItem) error
	DeleteAgendaItem(ctx context.Context, id uuid.UUID) error

	CreateVendor(ctx context.Context, v *models.ContractVendor) error
	UpdateVendor(ctx context.Context, v *models.ContractVendor) error
	DeleteVendor(ctx context.Context, id uuid.UUID) error
	SetAppointedVendor(ctx context.Context, contractID uuid.UUID, vendorID *uuid.UUID) error

	UpsertVendorStepDate(ctx context.Context, d *models.VendorStepDate) error
}

type Store interface {
	Writer
	LoadSnapshot(ctx context.Context, contractID uuid.UUID) (*progress.Snapshot, error)
}

// Command одно изменение. Apply проверяет и меняет локальный снимок,
// Persist отправляет соответствующие записи в хранилище.
type Command interface {
	Apply(s *progress.Snapshot, now time.Time) error
	Persist(ctx context.Context, w Writer) error
}

type Executor struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

func NewExecutor(store Store, log *logger.Logger) *Executor {
	return &Executor{store: store, log: log, now: time.Now}
}

// WithClock подменяет часы, нужно тестам.
func (e *Executor) WithClock(now func() time.Time) *Executor {
	e.now = now
	return e
}

// Run применяет команды к копии снимка и сохраняет их по очереди.
//
// Ошибка Apply ничего не записывает и возвращает исходный снимок.
// Ошибки записи собираются все; после любой из них снимок перечитывается,
// частично сохранённое состояние не откатывается. После успешной записи
// пересчитывается и сохраняется current_step договора.
func (e *Executor) Run(ctx context.Context, snap *progress.Snapshot, cmds ...Command) (*progress.Snapshot, error) {
	now := e.now()
	local := cloneSnapshot(snap)
	for _, cmd := range cmds {
		if err := cmd.Apply(local, now); err != nil {
			return snap, err
		}
	}

	var errs error
	for _, cmd := range cmds {
		errs = multierr.Append(errs, cmd.Persist(ctx, e.store))
	}

	if errs == nil {
		step := progress.ResolveCurrentStep(local.Agenda, local.Vendors, local.StepDates)
		if step != local.Contract.CurrentStep {
			if err := e.store.UpdateContractCurrentStep(ctx, local.Contract.ID, step); err != nil {
				errs = err
			} else {
				local.Contract.CurrentStep = step
			}
		}
	}
	if errs == nil {
		return local, nil
	}

	e.log.ForContract(local.Contract.ID).Error("contract save failed, reloading",
		"errors", len(multierr.Errors(errs)), "err", errs)
	fresh, err := e.store.LoadSnapshot(ctx, local.Contract.ID)
	if err != nil {
		return snap, multierr.Append(errs, err)
	}
	return fresh, errs
}

func cloneSnapshot(s *progress.Snapshot) *progress.Snapshot {
	out := &progress.Snapshot{Contract: s.Contract}
	out.Agenda = append([]models.AgendaItem(nil), s.Agenda...)
	out.Vendors = append([]models.ContractVendor(nil), s.Vendors...)
	out.StepDates = append([]models.VendorStepDate(nil), s.StepDates...)
	return out
}

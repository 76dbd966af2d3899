package lifecycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"procurement/internal/logger"
	"procurement/internal/progress"
)

type StepStore interface {
	ListAllContractIDs(ctx context.Context) ([]uuid.UUID, error)
	LoadSnapshot(ctx context.Context, contractID uuid.UUID) (*progress.Snapshot, error)
	UpdateContractCurrentStep(ctx context.Context, id uuid.UUID, step string) error
}

// RecomputeCurrentSteps пересчитывает current_step всех договоров и пишет только
// изменившиеся. Ошибка по одному договору не останавливает обход.
func RecomputeCurrentSteps(ctx context.Context, store StepStore, log *logger.Logger) (int, error) {
	ids, err := store.ListAllContractIDs(ctx)
	if err != nil {
		return 0, err
	}

	var (
		updated int
		errs    error
	)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return updated, multierr.Append(errs, err)
		}
		snap, err := store.LoadSnapshot(ctx, id)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("load %s: %w", id, err))
			continue
		}
		step := progress.ResolveCurrentStep(snap.Agenda, snap.Vendors, snap.StepDates)
		if step == snap.Contract.CurrentStep {
			continue
		}
		if err := store.UpdateContractCurrentStep(ctx, id, step); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("update %s: %w", id, err))
			continue
		}
		log.ForContract(id).Debug("current step changed", "from", snap.Contract.CurrentStep, "to", step)
		updated++
	}
	return updated, errs
}

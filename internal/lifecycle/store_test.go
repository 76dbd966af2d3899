package lifecycle_test

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"procurement/internal/progress"
	"procurement/models"
)

// fakeStore записывает вызовы и умеет падать на выбранной операции.
type fakeStore struct {
	calls    []string
	failOn   map[string]error
	reloaded *progress.Snapshot

	currentStep string
	appointed   *uuid.UUID
	versions    []models.Contract
	contract    models.Contract
	created     []models.AgendaItem
	stepDates   []models.VendorStepDate
}

func newFakeStore() *fakeStore {
	return &fakeStore{failOn: map[string]error{}}
}

func (f *fakeStore) record(op string) error {
	f.calls = append(f.calls, op)
	return f.failOn[op]
}

func (f *fakeStore) UpdateContract(ctx context.Context, c *models.Contract) error {
	f.contract = *c
	return f.record("UpdateContract")
}
func (f *fakeStore) UpdateContractCurrentStep(ctx context.Context, id uuid.UUID, step string) error {
	f.currentStep = step
	return f.record("UpdateContractCurrentStep")
}
func (f *fakeStore) SaveContractVersion(ctx context.Context, c *models.Contract) error {
	f.versions = append(f.versions, *c)
	return f.record("SaveContractVersion")
}
func (f *fakeStore) CreateAgendaItem(ctx context.Context, it *models.AgendaItem) error {
	f.created = append(f.created, *it)
	return f.record("CreateAgendaItem")
}
func (f *fakeStore) UpdateAgendaItem(ctx context.Context, it *models.AgendaItem) error {
	return f.record("UpdateAgendaItem")
}
func (f *fakeStore) DeleteAgendaItem(ctx context.Context, id uuid.UUID) error {
	return f.record("DeleteAgendaItem")
}
func (f *fakeStore) CreateVendor(ctx context.Context, v *models.ContractVendor) error {
	return f.record("CreateVendor")
}
func (f *fakeStore) UpdateVendor(ctx context.Context, v *models.ContractVendor) error {
	return f.record("UpdateVendor")
}
func (f *fakeStore) DeleteVendor(ctx context.Context, id uuid.UUID) error {
	return f.record("DeleteVendor")
}
func (f *fakeStore) SetAppointedVendor(ctx context.Context, contractID uuid.UUID, vendorID *uuid.UUID) error {
	f.appointed = vendorID
	return f.record("SetAppointedVendor")
}
func (f *fakeStore) UpsertVendorStepDate(ctx context.Context, d *models.VendorStepDate) error {
	f.stepDates = append(f.stepDates, *d)
	return f.record("UpsertVendorStepDate")
}
func (f *fakeStore) LoadSnapshot(ctx context.Context, contractID uuid.UUID) (*progress.Snapshot, error) {
	if err := f.record("LoadSnapshot"); err != nil {
		return nil, err
	}
	if f.reloaded == nil {
		return nil, fmt.Errorf("no snapshot for %s", contractID)
	}
	return f.reloaded, nil
}

func (f *fakeStore) count(op string) int {
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

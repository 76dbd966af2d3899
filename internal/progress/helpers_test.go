package progress_test

import (
	"time"

	"github.com/google/uuid"

	"procurement/models"
)

var now = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func d(s string) models.NullDate {
	return models.LenientDate(s)
}

func step(name, status, start, end string) models.AgendaItem {
	return models.AgendaItem{
		ID:        uuid.New(),
		StepName:  name,
		Status:    status,
		StartDate: d(start),
		EndDate:   d(end),
		CreatedAt: now,
	}
}

func vendor(name string) models.ContractVendor {
	return models.ContractVendor{ID: uuid.New(), VendorName: name}
}

func stepDate(v models.ContractVendor, s models.AgendaItem, start, end string) models.VendorStepDate {
	return models.VendorStepDate{
		ID:           uuid.New(),
		VendorID:     v.ID,
		AgendaStepID: s.ID,
		StartDate:    d(start),
		EndDate:      d(end),
	}
}

func strp(s string) *string { return &s }

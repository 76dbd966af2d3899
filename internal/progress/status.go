package progress

import (
	"time"

	"procurement/models"
)

// DisplayStatus статус договора для отображения. Не хранится.
type DisplayStatus string

const (
	StatusOnProgress      DisplayStatus = "On Progress"
	StatusReadyToFinalize DisplayStatus = "Ready to Finalize"
	StatusActive          DisplayStatus = "Active"
	StatusCompleted       DisplayStatus = "Completed"
	StatusExpired         DisplayStatus = "Expired"
)

// ParseDisplayStatus для фильтров в запросах.
func ParseDisplayStatus(s string) (DisplayStatus, bool) {
	switch DisplayStatus(s) {
	case StatusOnProgress, StatusReadyToFinalize, StatusActive, StatusCompleted, StatusExpired:
		return DisplayStatus(s), true
	}
	return "", false
}

// IsExpired истёк ли договор на дату now. Сравниваются только календарные дни.
func IsExpired(c models.Contract, now time.Time) bool {
	return c.ExpiryDate.Before(models.DateOf(now))
}

// ResolveDisplayStatus выводит статус договора, первое совпадение побеждает:
// истёкший срок, затем хранимые Active/Completed, затем оба шага подписания с датами.
// Даты поставщиков учитываются только для vendors, как и в ResolveCurrentStep.
func ResolveDisplayStatus(c models.Contract, items []models.AgendaItem, vendors []models.ContractVendor, stepDates []models.VendorStepDate, now time.Time) DisplayStatus {
	if IsExpired(c, now) {
		return StatusExpired
	}
	switch c.Status {
	case models.ContractActive:
		return StatusActive
	case models.ContractCompleted:
		return StatusCompleted
	}
	if MilestonesDone(items, vendors, stepDates) {
		return StatusReadyToFinalize
	}
	return StatusOnProgress
}

// MilestonesDone оба шага подписания существуют и у каждого есть эффективные start и end.
func MilestonesDone(items []models.AgendaItem, vendors []models.ContractVendor, stepDates []models.VendorStepDate) bool {
	own := vendorStepDates(vendors, stepDates)
	return milestoneDone(StepInternalSignature, items, own) &&
		milestoneDone(StepVendorSignature, items, own)
}

func milestoneDone(name string, items []models.AgendaItem, stepDates []models.VendorStepDate) bool {
	for _, it := range items {
		if it.StepName != name {
			continue
		}
		if AggregateStepDates(it, stepDates).Done() {
			return true
		}
	}
	return false
}

package progress

import (
	"procurement/models"
)

// ResolveCurrentStep определяет текущий шаг договора.
//
// Порядок: явный In Progress; самый поздний start среди незавершённых шагов
// (собственный или любого поставщика); первый Pending по каталогу;
// "Contract Completed" если всё завершено; иначе первый шаг по каталогу.
// Для пустой повестки возвращается "Initiated".
func ResolveCurrentStep(items []models.AgendaItem, vendors []models.ContractVendor, stepDates []models.VendorStepDate) string {
	if len(items) == 0 {
		return CurrentStepInitiated
	}
	sorted := sortedByCatalog(items)

	for _, it := range sorted {
		if NormalizeStepStatus(it.Status) == models.StepInProgress {
			return it.StepName
		}
	}

	byStep := groupByStep(vendorStepDates(vendors, stepDates))
	var (
		latest     models.NullDate
		latestName string
	)
	for _, it := range sorted {
		if NormalizeStepStatus(it.Status) == models.StepCompleted {
			continue
		}
		d := latestStart(it, byStep[it.ID])
		if d.After(latest) || (d.Valid && !latest.Valid) {
			latest = d
			latestName = it.StepName
		}
	}
	if latest.Valid {
		return latestName
	}

	allCompleted := true
	for _, it := range sorted {
		switch NormalizeStepStatus(it.Status) {
		case models.StepPending:
			return it.StepName
		case models.StepCompleted:
		default:
			allCompleted = false
		}
	}
	if allCompleted {
		return CurrentStepCompleted
	}
	return sorted[0].StepName
}

// latestStart MAX по собственному start и start всех поставщиков шага.
// Здесь нужен самый свежий момент активности, а не ранний, как у диаграммы.
func latestStart(step models.AgendaItem, stepDates []models.VendorStepDate) models.NullDate {
	latest := step.StartDate
	for _, sd := range stepDates {
		if sd.StartDate.After(latest) || (sd.StartDate.Valid && !latest.Valid) {
			latest = sd.StartDate
		}
	}
	return latest
}

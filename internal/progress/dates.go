package progress

import (
	"sort"

	"github.com/google/uuid"

	"procurement/models"
)

// Span эффективные даты шага. Нигде не хранится, всегда вычисляется.
type Span struct {
	Start models.NullDate `json:"start"`
	End   models.NullDate `json:"end"`
}

// Done шаг считается пройденным, когда заданы обе даты.
func (s Span) Done() bool {
	return s.Start.Valid && s.End.Valid
}

// AggregateStepDates считает эффективные даты шага.
//
// Собственные даты шага берутся как есть, если шаг не зависит от поставщиков.
// Иначе, как и для незаполненной собственной даты, start = MIN, end = MAX
// по датам поставщиков для этого шага. Строки с другим agenda_step_id пропускаются,
// невалидные даты в агрегат не попадают.
func AggregateStepDates(step models.AgendaItem, stepDates []models.VendorStepDate) Span {
	var span Span
	if !IsVendorDependent(step.StepName) {
		span.Start = step.StartDate
		span.End = step.EndDate
		if span.Done() {
			return span
		}
	}

	var minStart, maxEnd models.NullDate
	for _, sd := range stepDates {
		if sd.AgendaStepID != step.ID {
			continue
		}
		if sd.StartDate.Valid && (!minStart.Valid || sd.StartDate.Before(minStart)) {
			minStart = sd.StartDate
		}
		if sd.EndDate.Valid && (!maxEnd.Valid || sd.EndDate.After(maxEnd)) {
			maxEnd = sd.EndDate
		}
	}
	if !span.Start.Valid {
		span.Start = minStart
	}
	if !span.End.Valid {
		span.End = maxEnd
	}
	return span
}

// StepView шаг повестки вместе с вычисленными датами.
type StepView struct {
	models.AgendaItem
	Effective       Span `json:"effective"`
	VendorDependent bool `json:"vendorDependent"`
	Milestone       bool `json:"milestone"`
}

// EnrichAgenda возвращает шаги в каноническом порядке с эффективными датами.
func EnrichAgenda(items []models.AgendaItem, stepDates []models.VendorStepDate) []StepView {
	byStep := groupByStep(stepDates)
	sorted := sortedByCatalog(items)
	views := make([]StepView, 0, len(sorted))
	for _, it := range sorted {
		it.Status = NormalizeStepStatus(it.Status)
		views = append(views, StepView{
			AgendaItem:      it,
			Effective:       AggregateStepDates(it, byStep[it.ID]),
			VendorDependent: IsVendorDependent(it.StepName),
			Milestone:       IsMilestone(it.StepName),
		})
	}
	return views
}

func groupByStep(stepDates []models.VendorStepDate) map[uuid.UUID][]models.VendorStepDate {
	m := make(map[uuid.UUID][]models.VendorStepDate)
	for _, sd := range stepDates {
		m[sd.AgendaStepID] = append(m[sd.AgendaStepID], sd)
	}
	return m
}

func sortedByCatalog(items []models.AgendaItem) []models.AgendaItem {
	out := make([]models.AgendaItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return lessByCatalog(out[i], out[j]) })
	return out
}

// vendorStepDates оставляет только даты поставщиков из списка.
func vendorStepDates(vendors []models.ContractVendor, stepDates []models.VendorStepDate) []models.VendorStepDate {
	ids := make(map[uuid.UUID]struct{}, len(vendors))
	for _, v := range vendors {
		ids[v.ID] = struct{}{}
	}
	out := make([]models.VendorStepDate, 0, len(stepDates))
	for _, sd := range stepDates {
		if _, ok := ids[sd.VendorID]; ok {
			out = append(out, sd)
		}
	}
	return out
}

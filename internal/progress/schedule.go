package progress

import (
	"github.com/google/uuid"

	"procurement/models"
)

// VendorBar отрезок одного поставщика на диаграмме.
type VendorBar struct {
	VendorID   uuid.UUID       `json:"vendorId"`
	VendorName string          `json:"vendorName"`
	Start      models.NullDate `json:"start"`
	End        models.NullDate `json:"end"`
	Remarks    *string         `json:"remarks,omitempty"`
}

// ScheduleRow строка диаграммы Ганта.
type ScheduleRow struct {
	StepID   uuid.UUID   `json:"stepId"`
	StepName string      `json:"stepName"`
	Status   string      `json:"status"`
	Span     Span        `json:"span"`
	Vendors  []VendorBar `json:"vendors"`
}

type Schedule struct {
	Start models.NullDate `json:"start"`
	End   models.NullDate `json:"end"`
	Rows  []ScheduleRow   `json:"rows"`
}

// BuildSchedule строит диаграмму: шаги в каноническом порядке с агрегированными
// датами и отрезками поставщиков, у которых есть хоть одна дата по шагу.
func BuildSchedule(items []models.AgendaItem, vendors []models.ContractVendor, stepDates []models.VendorStepDate) Schedule {
	names := make(map[uuid.UUID]string, len(vendors))
	for _, v := range vendors {
		names[v.ID] = v.VendorName
	}
	own := vendorStepDates(vendors, stepDates)
	byStep := groupByStep(own)

	sched := Schedule{Rows: []ScheduleRow{}}
	for _, view := range EnrichAgenda(items, own) {
		row := ScheduleRow{
			StepID:   view.ID,
			StepName: view.StepName,
			Status:   view.Status,
			Span:     view.Effective,
			Vendors:  []VendorBar{},
		}
		for _, sd := range byStep[view.ID] {
			if !sd.StartDate.Valid && !sd.EndDate.Valid {
				continue
			}
			row.Vendors = append(row.Vendors, VendorBar{
				VendorID:   sd.VendorID,
				VendorName: names[sd.VendorID],
				Start:      sd.StartDate,
				End:        sd.EndDate,
				Remarks:    sd.Remarks,
			})
		}
		if row.Span.Start.Valid && (!sched.Start.Valid || row.Span.Start.Before(sched.Start)) {
			sched.Start = row.Span.Start
		}
		if row.Span.End.Valid && (!sched.End.Valid || row.Span.End.After(sched.End)) {
			sched.End = row.Span.End
		}
		sched.Rows = append(sched.Rows, row)
	}
	return sched
}

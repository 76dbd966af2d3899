package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"procurement/internal/apierr"
	"procurement/internal/progress"
	"procurement/models"
)

func notFound(what string, id uuid.UUID) error {
	return apierr.NotFound(fmt.Errorf("%s %s not found", what, id))
}

func checkRange(start, end models.NullDate) error {
	if start.Valid && end.Valid && end.Before(start) {
		return apierr.BadRequest("end date is before start date")
	}
	return nil
}

func findItem(s *progress.Snapshot, id uuid.UUID) int {
	for i, it := range s.Agenda {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func findVendor(s *progress.Snapshot, id uuid.UUID) int {
	for i, v := range s.Vendors {
		if v.ID == id {
			return i
		}
	}
	return -1
}

// UpsertAgendaItem добавляет шаг (пустой ID) или обновляет существующий.
type UpsertAgendaItem struct {
	Item  models.AgendaItem
	isNew bool
}

func (c *UpsertAgendaItem) Apply(s *progress.Snapshot, now time.Time) error {
	c.Item.StepName = strings.TrimSpace(c.Item.StepName)
	if c.Item.StepName == "" || len(c.Item.StepName) > 100 {
		return apierr.BadRequest("stepName is required and max length 100")
	}
	if !progress.IsValidStepStatus(c.Item.Status) {
		return apierr.BadRequest("invalid step status")
	}
	c.Item.Status = progress.NormalizeStepStatus(c.Item.Status)
	if err := checkRange(c.Item.StartDate, c.Item.EndDate); err != nil {
		return err
	}
	c.Item.ContractID = s.Contract.ID

	if c.Item.ID == uuid.Nil {
		c.isNew = true
		c.Item.ID = uuid.New()
		c.Item.CreatedAt = now
		s.Agenda = append(s.Agenda, c.Item)
		return nil
	}
	i := findItem(s, c.Item.ID)
	if i < 0 {
		return notFound("agenda step", c.Item.ID)
	}
	c.Item.CreatedAt = s.Agenda[i].CreatedAt
	s.Agenda[i] = c.Item
	return nil
}

func (c *UpsertAgendaItem) Persist(ctx context.Context, w Writer) error {
	if c.isNew {
		return w.CreateAgendaItem(ctx, &c.Item)
	}
	return w.UpdateAgendaItem(ctx, &c.Item)
}

// DeleteAgendaItem удаляет шаг вместе с датами поставщиков по нему.
// Удаление шага "Appointed Vendor" снимает назначение со всех поставщиков.
type DeleteAgendaItem struct {
	ID                uuid.UUID
	contractID        uuid.UUID
	clearsAppointment bool
}

func (c *DeleteAgendaItem) Apply(s *progress.Snapshot, _ time.Time) error {
	i := findItem(s, c.ID)
	if i < 0 {
		return notFound("agenda step", c.ID)
	}
	c.contractID = s.Contract.ID
	c.clearsAppointment = s.Agenda[i].StepName == progress.StepAppointedVendor
	s.Agenda = append(s.Agenda[:i], s.Agenda[i+1:]...)

	dates := s.StepDates[:0]
	for _, d := range s.StepDates {
		if d.AgendaStepID != c.ID {
			dates = append(dates, d)
		}
	}
	s.StepDates = dates

	for i := range s.Vendors {
		if s.Vendors[i].AgendaStepID != nil && *s.Vendors[i].AgendaStepID == c.ID {
			s.Vendors[i].AgendaStepID = nil
		}
	}
	if c.clearsAppointment {
		s.Vendors = progress.ClearAppointment(s.Vendors)
	}
	return nil
}

func (c *DeleteAgendaItem) Persist(ctx context.Context, w Writer) error {
	if err := w.DeleteAgendaItem(ctx, c.ID); err != nil {
		return err
	}
	if c.clearsAppointment {
		return w.SetAppointedVendor(ctx, c.contractID, nil)
	}
	return nil
}

// UpsertVendor добавляет кандидата или обновляет поля оценки.
// Флаг назначения здесь не меняется, для этого есть AppointVendor.
type UpsertVendor struct {
	Vendor models.ContractVendor
	isNew  bool
}

func (c *UpsertVendor) Apply(s *progress.Snapshot, now time.Time) error {
	c.Vendor.VendorName = strings.TrimSpace(c.Vendor.VendorName)
	if c.Vendor.VendorName == "" || len(c.Vendor.VendorName) > 200 {
		return apierr.BadRequest("vendorName is required and max length 200")
	}
	if r := c.Vendor.KYCResult; r != nil && *r != models.KYCPass && *r != models.KYCFail {
		return apierr.BadRequest("kycResult must be Pass, Fail or null")
	}
	if sc := c.Vendor.TechScore; sc != nil && (*sc < 0 || *sc > 100) {
		return apierr.BadRequest("techScore must be between 0 and 100")
	}
	if id := c.Vendor.AgendaStepID; id != nil && findItem(s, *id) < 0 {
		return notFound("agenda step", *id)
	}
	c.Vendor.ContractID = s.Contract.ID

	if c.Vendor.ID == uuid.Nil {
		c.isNew = true
		c.Vendor.ID = uuid.New()
		c.Vendor.CreatedAt = now
		c.Vendor.IsAppointed = false
		if c.Vendor.AgendaStepID == nil {
			c.Vendor.AgendaStepID = findingsStep(s)
		}
		s.Vendors = append(s.Vendors, c.Vendor)
		return nil
	}
	i := findVendor(s, c.Vendor.ID)
	if i < 0 {
		return notFound("vendor", c.Vendor.ID)
	}
	c.Vendor.IsAppointed = s.Vendors[i].IsAppointed
	c.Vendor.CreatedAt = s.Vendors[i].CreatedAt
	s.Vendors[i] = c.Vendor
	return nil
}

func (c *UpsertVendor) Persist(ctx context.Context, w Writer) error {
	if c.isNew {
		return w.CreateVendor(ctx, &c.Vendor)
	}
	return w.UpdateVendor(ctx, &c.Vendor)
}

func findingsStep(s *progress.Snapshot) *uuid.UUID {
	for _, it := range s.Agenda {
		if it.StepName == progress.StepVendorFindings {
			id := it.ID
			return &id
		}
	}
	return nil
}

// DeleteVendor удаляет кандидата и его даты по шагам.
type DeleteVendor struct {
	ID uuid.UUID
}

func (c *DeleteVendor) Apply(s *progress.Snapshot, _ time.Time) error {
	i := findVendor(s, c.ID)
	if i < 0 {
		return notFound("vendor", c.ID)
	}
	s.Vendors = append(s.Vendors[:i], s.Vendors[i+1:]...)
	dates := s.StepDates[:0]
	for _, d := range s.StepDates {
		if d.VendorID != c.ID {
			dates = append(dates, d)
		}
	}
	s.StepDates = dates
	return nil
}

func (c *DeleteVendor) Persist(ctx context.Context, w Writer) error {
	return w.DeleteVendor(ctx, c.ID)
}

// AppointVendor назначает поставщика по имени; неизвестное имя снимает назначение.
type AppointVendor struct {
	Name       string
	contractID uuid.UUID
	vendorID   *uuid.UUID
}

func (c *AppointVendor) Apply(s *progress.Snapshot, _ time.Time) error {
	c.contractID = s.Contract.ID
	s.Vendors = progress.AppointVendor(s.Vendors, c.Name)
	c.vendorID = nil
	if v, ok := progress.AppointedVendor(s.Vendors); ok {
		id := v.ID
		c.vendorID = &id
	}
	return nil
}

func (c *AppointVendor) Persist(ctx context.Context, w Writer) error {
	return w.SetAppointedVendor(ctx, c.contractID, c.vendorID)
}

// UpsertVendorStepDate обновляет даты пары (поставщик, шаг) или создаёт их.
type UpsertVendorStepDate struct {
	Date models.VendorStepDate
}

func (c *UpsertVendorStepDate) Apply(s *progress.Snapshot, _ time.Time) error {
	if findVendor(s, c.Date.VendorID) < 0 {
		return notFound("vendor", c.Date.VendorID)
	}
	if findItem(s, c.Date.AgendaStepID) < 0 {
		return notFound("agenda step", c.Date.AgendaStepID)
	}
	if err := checkRange(c.Date.StartDate, c.Date.EndDate); err != nil {
		return err
	}
	for i, d := range s.StepDates {
		if d.VendorID == c.Date.VendorID && d.AgendaStepID == c.Date.AgendaStepID {
			c.Date.ID = d.ID
			s.StepDates[i] = c.Date
			return nil
		}
	}
	c.Date.ID = uuid.New()
	s.StepDates = append(s.StepDates, c.Date)
	return nil
}

func (c *UpsertVendorStepDate) Persist(ctx context.Context, w Writer) error {
	return w.UpsertVendorStepDate(ctx, &c.Date)
}

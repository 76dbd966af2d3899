package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"procurement/internal/apierr"
	"procurement/internal/progress"
	"procurement/models"
)

func invalidTransition(format string, args ...any) error {
	return apierr.Conflict(fmt.Errorf("%w: %s", ErrInvalidTransition, fmt.Sprintf(format, args...)))
}

// SeedAgenda добавляет стандартный набор шагов в статусе Pending.
type SeedAgenda struct {
	items []models.AgendaItem
}

func (c *SeedAgenda) Apply(s *progress.Snapshot, now time.Time) error {
	c.items = c.items[:0]
	for i, name := range progress.DefaultAgenda() {
		it := models.AgendaItem{
			ID:         uuid.New(),
			ContractID: s.Contract.ID,
			StepName:   name,
			Status:     models.StepPending,
			// порядок создания совпадает с порядком каталога
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
		}
		c.items = append(c.items, it)
		s.Agenda = append(s.Agenda, it)
	}
	return nil
}

func (c *SeedAgenda) Persist(ctx context.Context, w Writer) error {
	var errs error
	for i := range c.items {
		errs = multierr.Append(errs, w.CreateAgendaItem(ctx, &c.items[i]))
	}
	return errs
}

// contractUpdate общая часть переходов, которые переписывают заголовок договора.
type contractUpdate struct {
	contract models.Contract
}

func (c *contractUpdate) Persist(ctx context.Context, w Writer) error {
	return w.UpdateContract(ctx, &c.contract)
}

// EditContract правка заголовка договора. Статус и версия не трогаются.
type EditContract struct {
	contractUpdate
	Title       *string
	Category    *string
	Division    *string
	Department  *string
	Description *string
}

func (c *EditContract) Apply(s *progress.Snapshot, _ time.Time) error {
	ct := s.Contract
	if c.Title != nil {
		if *c.Title == "" || len(*c.Title) > 200 {
			return apierr.BadRequest("title is required and max length 200")
		}
		ct.Title = *c.Title
	}
	if c.Category != nil {
		ct.Category = *c.Category
	}
	if c.Division != nil {
		ct.Division = *c.Division
	}
	if c.Department != nil {
		ct.Department = *c.Department
	}
	if c.Description != nil {
		ct.Description = *c.Description
	}
	s.Contract = ct
	c.contract = ct
	return nil
}

// Finalize переводит договор в Active. Разрешён только из "Ready to Finalize"
// и только при назначенном поставщике.
type Finalize struct {
	contractUpdate
	EffectiveDate models.NullDate
	ExpiryDate    models.NullDate
}

func (c *Finalize) Apply(s *progress.Snapshot, now time.Time) error {
	status := progress.ResolveDisplayStatus(s.Contract, s.Agenda, s.Vendors, s.StepDates, now)
	if status != progress.StatusReadyToFinalize {
		return invalidTransition("contract is %s, not %s", status, progress.StatusReadyToFinalize)
	}
	if _, ok := progress.AppointedVendor(s.Vendors); !ok {
		return invalidTransition("no appointed vendor")
	}
	effective := c.EffectiveDate
	if !effective.Valid {
		effective = models.DateOf(now)
	}
	if !c.ExpiryDate.Valid {
		return apierr.BadRequest("expiryDate is required")
	}
	if !c.ExpiryDate.After(effective) {
		return apierr.BadRequest("expiryDate must be after effectiveDate")
	}
	s.Contract.EffectiveDate = effective
	s.Contract.ExpiryDate = c.ExpiryDate
	s.Contract.Status = models.ContractActive
	c.contract = s.Contract
	return nil
}

// Complete закрывает действующий договор.
type Complete struct {
	contractUpdate
}

func (c *Complete) Apply(s *progress.Snapshot, _ time.Time) error {
	if s.Contract.Status != models.ContractActive {
		return invalidTransition("only Active contracts can be completed, got %s", s.Contract.Status)
	}
	s.Contract.Status = models.ContractCompleted
	c.contract = s.Contract
	return nil
}

// Extend продлевает срок. Новая дата должна быть строго позже текущей.
// Истёкший договор продлевается при любом хранимом статусе, в том числе
// после Revert, и снова становится Active.
type Extend struct {
	contractUpdate
	ExpiryDate models.NullDate
}

func (c *Extend) Apply(s *progress.Snapshot, now time.Time) error {
	switch {
	case s.Contract.Status == models.ContractActive, s.Contract.Status == models.ContractCompleted:
	case progress.IsExpired(s.Contract, now):
	default:
		return invalidTransition("contract in status %s cannot be extended", s.Contract.Status)
	}
	if !c.ExpiryDate.Valid {
		return apierr.BadRequest("expiryDate is required")
	}
	if s.Contract.ExpiryDate.Valid && !c.ExpiryDate.After(s.Contract.ExpiryDate) {
		return apierr.BadRequest("new expiryDate must be after the current one")
	}
	if c.ExpiryDate.Before(models.DateOf(now)) {
		return apierr.BadRequest("new expiryDate is already in the past")
	}
	s.Contract.ExpiryDate = c.ExpiryDate
	s.Contract.Status = models.ContractActive
	c.contract = s.Contract
	return nil
}

// Amend открывает поправку: снимок текущей версии, version+1, статус On Progress,
// старая повестка заменяется стандартной, назначение поставщика снимается.
// Поставщики остаются кандидатами нового круга.
type Amend struct {
	contractUpdate
	ExpiryDate models.NullDate

	previous models.Contract
	removed  []uuid.UUID
	vendors  []models.ContractVendor
	seed     SeedAgenda
}

func (c *Amend) Apply(s *progress.Snapshot, now time.Time) error {
	status := progress.ResolveDisplayStatus(s.Contract, s.Agenda, s.Vendors, s.StepDates, now)
	switch status {
	case progress.StatusActive, progress.StatusCompleted, progress.StatusExpired:
	default:
		return invalidTransition("contract is %s and cannot be amended", status)
	}
	if c.ExpiryDate.Valid && c.ExpiryDate.Before(models.DateOf(now)) {
		return apierr.BadRequest("expiryDate is already in the past")
	}

	c.previous = s.Contract
	c.removed = c.removed[:0]
	for _, it := range s.Agenda {
		c.removed = append(c.removed, it.ID)
	}
	s.Agenda = nil
	s.StepDates = nil
	s.Vendors = progress.ClearAppointment(s.Vendors)
	for i := range s.Vendors {
		s.Vendors[i].AgendaStepID = nil
	}
	if err := c.seed.Apply(s, now); err != nil {
		return err
	}
	if id := findingsStep(s); id != nil {
		for i := range s.Vendors {
			s.Vendors[i].AgendaStepID = id
		}
	}

	s.Contract.Version++
	s.Contract.Status = models.ContractOnProgress
	if c.ExpiryDate.Valid {
		s.Contract.ExpiryDate = c.ExpiryDate
	}
	c.contract = s.Contract
	c.vendors = append([]models.ContractVendor(nil), s.Vendors...)
	return nil
}

func (c *Amend) Persist(ctx context.Context, w Writer) error {
	// без снимка версии откатиться будет не к чему, дальше не идём
	if err := w.SaveContractVersion(ctx, &c.previous); err != nil {
		return fmt.Errorf("save version %d: %w", c.previous.Version, err)
	}
	errs := w.UpdateContract(ctx, &c.contract)
	for _, id := range c.removed {
		errs = multierr.Append(errs, w.DeleteAgendaItem(ctx, id))
	}
	errs = multierr.Append(errs, w.SetAppointedVendor(ctx, c.contract.ID, nil))
	errs = multierr.Append(errs, c.seed.Persist(ctx, w))
	for i := range c.vendors {
		errs = multierr.Append(errs, w.UpdateVendor(ctx, &c.vendors[i]))
	}
	return errs
}

// Revert ручной возврат Active/Completed договора в работу.
type Revert struct {
	contractUpdate
}

func (c *Revert) Apply(s *progress.Snapshot, _ time.Time) error {
	switch s.Contract.Status {
	case models.ContractActive, models.ContractCompleted:
	default:
		return invalidTransition("contract in status %s cannot be reverted", s.Contract.Status)
	}
	s.Contract.Status = models.ContractOnProgress
	c.contract = s.Contract
	return nil
}

// RestoreVersion возвращает поля заголовка из сохранённой версии.
// Номер версии не меняется: он растёт только при поправке.
type RestoreVersion struct {
	contractUpdate
	Version models.ContractVersion
}

func (c *RestoreVersion) Apply(s *progress.Snapshot, _ time.Time) error {
	if c.Version.ContractID != s.Contract.ID {
		return apierr.BadRequest("version belongs to another contract")
	}
	if c.Version.Version >= s.Contract.Version {
		return apierr.BadRequest("can only restore an earlier version")
	}
	s.Contract.Title = c.Version.Title
	s.Contract.Category = c.Version.Category
	s.Contract.Division = c.Version.Division
	s.Contract.Department = c.Version.Department
	s.Contract.Description = c.Version.Description
	s.Contract.EffectiveDate = c.Version.EffectiveDate
	s.Contract.ExpiryDate = c.Version.ExpiryDate
	s.Contract.Status = c.Version.Status
	c.contract = s.Contract
	return nil
}

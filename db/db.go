package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"procurement/internal/progress"
	"procurement/models"
)

// ErrNotFound запись не найдена
var ErrNotFound = errors.New("not found")

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// Connect подключается к postgres, повторяя попытки с экспоненциальной паузой.
func Connect(ctx context.Context, dsn string, attempts uint64) (*sqlx.DB, error) {
	var conn *sqlx.DB
	backoff := retry.WithMaxRetries(attempts, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, err := sqlx.ConnectContext(ctx, "postgres", dsn)
		if err != nil {
			return retry.RetryableError(err)
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to DB: %w", err)
	}
	return conn, nil
}

// Ping для проверки живости из /api/ping
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func expectAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// LoadSnapshot загружает договор и все связанные записи параллельно.
func (s *Storage) LoadSnapshot(ctx context.Context, contractID uuid.UUID) (*progress.Snapshot, error) {
	snap := &progress.Snapshot{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.GetContract(gctx, contractID)
		if err != nil {
			return err
		}
		snap.Contract = *c
		return nil
	})
	g.Go(func() error {
		items, err := s.ListAgendaItems(gctx, contractID)
		snap.Agenda = items
		return err
	})
	g.Go(func() error {
		vendors, err := s.ListVendors(gctx, contractID)
		snap.Vendors = vendors
		return err
	})
	g.Go(func() error {
		dates, err := s.ListVendorStepDates(gctx, contractID)
		snap.StepDates = dates
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// LoadSnapshots собирает снимки для списка договоров тремя запросами вместо N.
func (s *Storage) LoadSnapshots(ctx context.Context, contracts []models.Contract) ([]progress.Snapshot, error) {
	if len(contracts) == 0 {
		return []progress.Snapshot{}, nil
	}
	ids := make([]uuid.UUID, len(contracts))
	for i, c := range contracts {
		ids[i] = c.ID
	}

	var (
		agenda  []models.AgendaItem
		vendors []models.ContractVendor
		dates   []models.VendorStepDate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.selectIn(gctx, &agenda, `SELECT * FROM agenda_items WHERE contract_id IN (?) ORDER BY created_at`, ids)
	})
	g.Go(func() error {
		return s.selectIn(gctx, &vendors, `SELECT * FROM contract_vendors WHERE contract_id IN (?) ORDER BY created_at`, ids)
	})
	g.Go(func() error {
		return s.selectIn(gctx, &dates, `
            SELECT d.* FROM vendor_step_dates d
            JOIN contract_vendors v ON v.id = d.vendor_id
            WHERE v.contract_id IN (?)`, ids)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	index := make(map[uuid.UUID]int, len(contracts))
	snaps := make([]progress.Snapshot, len(contracts))
	for i, c := range contracts {
		index[c.ID] = i
		snaps[i].Contract = c
	}
	vendorContract := make(map[uuid.UUID]uuid.UUID, len(vendors))
	for _, it := range agenda {
		if i, ok := index[it.ContractID]; ok {
			snaps[i].Agenda = append(snaps[i].Agenda, it)
		}
	}
	for _, v := range vendors {
		vendorContract[v.ID] = v.ContractID
		if i, ok := index[v.ContractID]; ok {
			snaps[i].Vendors = append(snaps[i].Vendors, v)
		}
	}
	for _, d := range dates {
		if i, ok := index[vendorContract[d.VendorID]]; ok {
			snaps[i].StepDates = append(snaps[i].StepDates, d)
		}
	}
	return snaps, nil
}

func (s *Storage) selectIn(ctx context.Context, dest any, query string, ids []uuid.UUID) error {
	q, args, err := sqlx.In(query, ids)
	if err != nil {
		return err
	}
	return s.db.SelectContext(ctx, dest, s.db.Rebind(q), args...)
}

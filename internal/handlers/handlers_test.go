package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"procurement/db"
	"procurement/internal/handlers"
	"procurement/internal/handlers/testutils"
	"procurement/internal/logger"
	"procurement/internal/progress"
	"procurement/models"
)

var now = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

// MockStorage реализует StorageInterface
type MockStorage struct {
	snapshot *progress.Snapshot
	writes   []string
	failOn   map[string]error

	appointed *uuid.UUID
	updated   *models.ContractVendor

	ListContractsFunc      func(ctx context.Context, limit, offset int) ([]models.Contract, error)
	GetContractVersionFunc func(ctx context.Context, contractID uuid.UUID, version int) (*models.ContractVersion, error)
}

func (m *MockStorage) write(op string) error {
	m.writes = append(m.writes, op)
	if m.failOn == nil {
		return nil
	}
	return m.failOn[op]
}

func (m *MockStorage) Ping(ctx context.Context) error { return nil }

func (m *MockStorage) CreateContract(ctx context.Context, c *models.Contract) error {
	m.snapshot = &progress.Snapshot{Contract: *c}
	return m.write("CreateContract")
}
func (m *MockStorage) GetContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	if m.snapshot == nil || m.snapshot.Contract.ID != id {
		return nil, db.ErrNotFound
	}
	c := m.snapshot.Contract
	return &c, nil
}
func (m *MockStorage) ListContracts(ctx context.Context, limit, offset int) ([]models.Contract, error) {
	if m.ListContractsFunc != nil {
		return m.ListContractsFunc(ctx, limit, offset)
	}
	return []models.Contract{}, nil
}
func (m *MockStorage) DeleteContract(ctx context.Context, id uuid.UUID) error {
	if m.snapshot == nil || m.snapshot.Contract.ID != id {
		return db.ErrNotFound
	}
	return m.write("DeleteContract")
}
func (m *MockStorage) GetContractVersion(ctx context.Context, contractID uuid.UUID, version int) (*models.ContractVersion, error) {
	if m.GetContractVersionFunc != nil {
		return m.GetContractVersionFunc(ctx, contractID, version)
	}
	return nil, db.ErrNotFound
}
func (m *MockStorage) LoadSnapshot(ctx context.Context, id uuid.UUID) (*progress.Snapshot, error) {
	if m.snapshot == nil || m.snapshot.Contract.ID != id {
		return nil, db.ErrNotFound
	}
	return m.snapshot, nil
}
func (m *MockStorage) LoadSnapshots(ctx context.Context, contracts []models.Contract) ([]progress.Snapshot, error) {
	snaps := make([]progress.Snapshot, len(contracts))
	for i, c := range contracts {
		snaps[i].Contract = c
	}
	return snaps, nil
}

func (m *MockStorage) UpdateContract(ctx context.Context, c *models.Contract) error {
	return m.write("UpdateContract")
}
func (m *MockStorage) UpdateContractCurrentStep(ctx context.Context, id uuid.UUID, step string) error {
	return m.write("UpdateContractCurrentStep")
}
func (m *MockStorage) SaveContractVersion(ctx context.Context, c *models.Contract) error {
	return m.write("SaveContractVersion")
}
func (m *MockStorage) CreateAgendaItem(ctx context.Context, it *models.AgendaItem) error {
	return m.write("CreateAgendaItem")
}
func (m *MockStorage) UpdateAgendaItem(ctx context.Context, it *models.AgendaItem) error {
	return m.write("UpdateAgendaItem")
}
func (m *MockStorage) DeleteAgendaItem(ctx context.Context, id uuid.UUID) error {
	return m.write("DeleteAgendaItem")
}
func (m *MockStorage) CreateVendor(ctx context.Context, v *models.ContractVendor) error {
	return m.write("CreateVendor")
}
func (m *MockStorage) UpdateVendor(ctx context.Context, v *models.ContractVendor) error {
	m.updated = v
	return m.write("UpdateVendor")
}
func (m *MockStorage) DeleteVendor(ctx context.Context, id uuid.UUID) error {
	return m.write("DeleteVendor")
}
func (m *MockStorage) SetAppointedVendor(ctx context.Context, contractID uuid.UUID, vendorID *uuid.UUID) error {
	m.appointed = vendorID
	return m.write("SetAppointedVendor")
}
func (m *MockStorage) UpsertVendorStepDate(ctx context.Context, d *models.VendorStepDate) error {
	return m.write("UpsertVendorStepDate")
}

func newHandler(store *MockStorage) *handlers.Handler {
	return handlers.NewHandler(store, logger.Nop()).WithClock(func() time.Time { return now })
}

// fixture договор в работе: Vendor Findings закрыт, два кандидата
func fixture() (*progress.Snapshot, uuid.UUID, uuid.UUID) {
	contractID := uuid.New()
	findings, kyc := uuid.New(), uuid.New()
	snap := &progress.Snapshot{
		Contract: models.Contract{
			ID:          contractID,
			Title:       "Office Cleaning",
			Status:      models.ContractOnProgress,
			CurrentStep: progress.StepKYC,
			Version:     2,
		},
		Agenda: []models.AgendaItem{
			{ID: findings, ContractID: contractID, StepName: progress.StepVendorFindings, Status: models.StepCompleted, CreatedAt: now},
			{ID: kyc, ContractID: contractID, StepName: progress.StepKYC, Status: models.StepPending, CreatedAt: now.Add(time.Millisecond)},
		},
		Vendors: []models.ContractVendor{
			{ID: uuid.New(), ContractID: contractID, VendorName: "Alpha", AgendaStepID: &findings},
			{ID: uuid.New(), ContractID: contractID, VendorName: "Beta", AgendaStepID: &findings},
		},
	}
	return snap, contractID, kyc
}

func readBody(t *testing.T, res *http.Response) string {
	t.Helper()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPingHandler(t *testing.T) {
	handler := newHandler(&MockStorage{})

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	w := httptest.NewRecorder()

	handler.PingHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestCreateContractHandler(t *testing.T) {
	mockStore := &MockStorage{}
	handler := newHandler(mockStore)

	reqBody := `{
        "title": "Office Cleaning",
        "category": "Services",
        "division": "GA",
        "department": "Facilities"
    }`
	req := httptest.NewRequest(http.MethodPost, "/api/contracts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.CreateContractHandler(w, req)

	body := readBody(t, w.Result())
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, body, "Office Cleaning")

	var got handlers.ContractDetail
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.Len(t, got.Agenda, len(progress.DefaultAgenda()))
	require.Equal(t, progress.StepVendorFindings, got.Contract.CurrentStep)
	require.Equal(t, progress.StatusOnProgress, got.Summary.DisplayStatus)
	require.Equal(t, "CreateContract", mockStore.writes[0])
	require.Equal(t, "UpdateContractCurrentStep", mockStore.writes[len(mockStore.writes)-1])
}

func TestCreateContractHandlerValidation(t *testing.T) {
	mockStore := &MockStorage{}
	handler := newHandler(mockStore)

	for _, body := range []string{`{"title": ""}`, `{"title": 5}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/contracts", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateContractHandler(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	require.Empty(t, mockStore.writes)
}

func TestGetContractsHandlerPagination(t *testing.T) {
	var gotLimit, gotOffset int
	mockStore := &MockStorage{
		ListContractsFunc: func(ctx context.Context, limit, offset int) ([]models.Contract, error) {
			gotLimit, gotOffset = limit, offset
			return []models.Contract{{ID: uuid.New(), Title: "Security", Status: models.ContractActive}}, nil
		},
	}
	handler := newHandler(mockStore)

	req := httptest.NewRequest(http.MethodGet, "/api/contracts?limit=500&offset=10", nil)
	w := httptest.NewRecorder()

	handler.GetContractsHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, readBody(t, w.Result()), "Security")
	require.Equal(t, 5, gotLimit)
	require.Equal(t, 10, gotOffset)
}

// pagedContracts отдаёт срез contracts так же, как LIMIT/OFFSET в хранилище
func pagedContracts(contracts []models.Contract, calls *int) func(ctx context.Context, limit, offset int) ([]models.Contract, error) {
	return func(ctx context.Context, limit, offset int) ([]models.Contract, error) {
		*calls++
		if offset >= len(contracts) {
			return []models.Contract{}, nil
		}
		end := offset + limit
		if end > len(contracts) {
			end = len(contracts)
		}
		return contracts[offset:end], nil
	}
}

func TestGetContractsHandlerFiltersByDisplayStatus(t *testing.T) {
	// истёкшие договоры на позициях 0, 55 и 70, остальные действуют
	contracts := make([]models.Contract, 80)
	for i := range contracts {
		contracts[i] = models.Contract{
			ID: uuid.New(), Title: fmt.Sprintf("Running %02d", i), Status: models.ContractActive,
			ExpiryDate: models.NewDate(2024, 6, 15),
		}
	}
	for _, i := range []int{0, 55, 70} {
		contracts[i].Title = fmt.Sprintf("Expired %02d", i)
		contracts[i].ExpiryDate = models.NewDate(2024, 6, 14)
	}

	tests := []struct {
		query string
		want  []string
		calls int
	}{
		{"status=Expired&limit=2", []string{"Expired 00", "Expired 55"}, 2},
		{"status=Expired&limit=5&offset=1", []string{"Expired 55", "Expired 70"}, 2},
		{"status=Expired&offset=3", nil, 2},
		{"status=Active&limit=3&offset=48", []string{"Running 49", "Running 50", "Running 51"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var calls int
			handler := newHandler(&MockStorage{ListContractsFunc: pagedContracts(contracts, &calls)})

			req := httptest.NewRequest(http.MethodGet, "/api/contracts?"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.GetContractsHandler(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			var rows []handlers.ContractRow
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
			var titles []string
			for _, row := range rows {
				titles = append(titles, row.Title)
			}
			require.Equal(t, tt.want, titles)
			require.Equal(t, tt.calls, calls)
		})
	}
}

func TestGetContractsHandlerBadStatus(t *testing.T) {
	handler := newHandler(&MockStorage{})

	req := httptest.NewRequest(http.MethodGet, "/api/contracts?status=Archived", nil)
	w := httptest.NewRecorder()

	handler.GetContractsHandler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetContractHandler(t *testing.T) {
	snap, contractID, _ := fixture()
	handler := newHandler(&MockStorage{snapshot: snap})

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/contracts/"+contractID.String(), nil)
		req = testutils.WithChiURLParams(req, map[string]string{"contractId": contractID.String()})
		w := httptest.NewRecorder()

		handler.GetContractHandler(w, req)

		var got handlers.ContractDetail
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Equal(t, progress.StepKYC, got.Summary.CurrentStep)
		require.Len(t, got.Vendors, 2)
	})

	t.Run("not found", func(t *testing.T) {
		other := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/api/contracts/"+other, nil)
		req = testutils.WithChiURLParams(req, map[string]string{"contractId": other})
		w := httptest.NewRecorder()

		handler.GetContractHandler(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/contracts/123", nil)
		req = testutils.WithChiURLParams(req, map[string]string{"contractId": "123"})
		w := httptest.NewRecorder()

		handler.GetContractHandler(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAppointVendorHandler(t *testing.T) {
	snap, contractID, _ := fixture()
	mockStore := &MockStorage{snapshot: snap}
	handler := newHandler(mockStore)

	req := httptest.NewRequest(http.MethodPut, "/api/contracts/x/appointed?vendor=%20Beta%20", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"contractId": contractID.String()})
	w := httptest.NewRecorder()

	handler.AppointVendorHandler(w, req)

	var got handlers.ContractDetail
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "Beta", got.Summary.AppointedVendor)
	require.NotNil(t, mockStore.appointed)
	require.Equal(t, snap.Vendors[1].ID, *mockStore.appointed)
}

func TestFinalizeContractHandlerNotReady(t *testing.T) {
	snap, contractID, _ := fixture()
	mockStore := &MockStorage{snapshot: snap}
	handler := newHandler(mockStore)

	req := testutils.ContractRequest(http.MethodPut, "/api/contracts/x/finalize", contractID.String(), `{"expiryDate": "2025-06-30"}`)
	w := httptest.NewRecorder()

	handler.FinalizeContractHandler(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	require.Empty(t, mockStore.writes)
}

func TestSaveAgendaHandler(t *testing.T) {
	snap, contractID, kyc := fixture()
	mockStore := &MockStorage{snapshot: snap}
	handler := newHandler(mockStore)

	reqBody := `{
        "items": [{"id": "` + kyc.String() + `", "stepName": "KYC", "status": "done", "startDate": "2024-06-01", "endDate": "2024-06-10"}],
        "stepDates": [{"vendorId": "` + snap.Vendors[0].ID.String() + `", "agendaStepId": "` + kyc.String() + `", "startDate": "2024-06-02"}]
    }`
	req := testutils.ContractRequest(http.MethodPut, "/api/contracts/x/agenda", contractID.String(), reqBody)
	w := httptest.NewRecorder()

	handler.SaveAgendaHandler(w, req)

	var got handlers.ContractDetail
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, []string{"UpdateAgendaItem", "UpsertVendorStepDate", "UpdateContractCurrentStep"}, mockStore.writes)
	require.Equal(t, models.StepCompleted, got.Agenda[1].Status)
	require.Equal(t, progress.CurrentStepCompleted, got.Summary.CurrentStep)
}

func TestSaveAgendaHandlerRejectsWholeBatch(t *testing.T) {
	snap, contractID, kyc := fixture()
	mockStore := &MockStorage{snapshot: snap}
	handler := newHandler(mockStore)

	reqBody := `{"items": [
        {"stepName": "Site Visit", "status": "Pending"},
        {"id": "` + kyc.String() + `", "stepName": "KYC", "startDate": "2024-06-10", "endDate": "2024-06-01"}
    ]}`
	req := testutils.ContractRequest(http.MethodPut, "/api/contracts/x/agenda", contractID.String(), reqBody)
	w := httptest.NewRecorder()

	handler.SaveAgendaHandler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, mockStore.writes)
}

func TestSaveAgendaHandlerBadDate(t *testing.T) {
	snap, contractID, _ := fixture()
	handler := newHandler(&MockStorage{snapshot: snap})

	req := httptest.NewRequest(http.MethodPut, "/api/contracts/x/agenda",
		strings.NewReader(`{"items": [{"stepName": "KYC", "startDate": "15/06/2024"}]}`))
	req = testutils.WithChiURLParams(req, map[string]string{"contractId": contractID.String()})
	w := httptest.NewRecorder()

	handler.SaveAgendaHandler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveAgendaHandlerWriteFailure(t *testing.T) {
	snap, contractID, kyc := fixture()
	mockStore := &MockStorage{
		snapshot: snap,
		failOn:   map[string]error{"UpdateAgendaItem": errors.New("connection reset")},
	}
	handler := newHandler(mockStore)

	reqBody := `{"items": [{"id": "` + kyc.String() + `", "stepName": "KYC", "status": "In Progress"}]}`
	req := testutils.ContractRequest(http.MethodPut, "/api/contracts/x/agenda", contractID.String(), reqBody)
	w := httptest.NewRecorder()

	handler.SaveAgendaHandler(w, req)

	body := readBody(t, w.Result())
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, body, "Failed to save contract")
	require.NotContains(t, body, "connection reset")
}

func TestEditVendorHandler(t *testing.T) {
	snap, contractID, _ := fixture()
	mockStore := &MockStorage{snapshot: snap}
	handler := newHandler(mockStore)
	vendorID := snap.Vendors[0].ID.String()

	req := httptest.NewRequest(http.MethodPatch, "/api/contracts/x/vendors/"+vendorID,
		strings.NewReader(`{"kycResult": "Fail", "price": "Rp 1.500.000", "techScore": 80}`))
	req = testutils.WithChiURLParams(req, map[string]string{"contractId": contractID.String(), "vendorId": vendorID})
	w := httptest.NewRecorder()

	handler.EditVendorHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, mockStore.updated)
	require.Equal(t, "Alpha", mockStore.updated.VendorName)
	require.Equal(t, models.KYCFail, *mockStore.updated.KYCResult)
	require.Equal(t, 80.0, *mockStore.updated.TechScore)
}

func TestEditVendorHandlerValidation(t *testing.T) {
	snap, contractID, _ := fixture()
	mockStore := &MockStorage{snapshot: snap}
	handler := newHandler(mockStore)

	t.Run("unknown vendor", func(t *testing.T) {
		other := uuid.NewString()
		req := httptest.NewRequest(http.MethodPatch, "/api/contracts/x/vendors/"+other, strings.NewReader(`{}`))
		req = testutils.WithChiURLParams(req, map[string]string{"contractId": contractID.String(), "vendorId": other})
		w := httptest.NewRecorder()

		handler.EditVendorHandler(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad kyc", func(t *testing.T) {
		vendorID := snap.Vendors[1].ID.String()
		req := httptest.NewRequest(http.MethodPatch, "/api/contracts/x/vendors/"+vendorID, strings.NewReader(`{"kycResult": "Maybe"}`))
		req = testutils.WithChiURLParams(req, map[string]string{"contractId": contractID.String(), "vendorId": vendorID})
		w := httptest.NewRecorder()

		handler.EditVendorHandler(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
	require.Empty(t, mockStore.writes)
}

func TestRollbackContractHandler(t *testing.T) {
	snap, contractID, _ := fixture()
	mockStore := &MockStorage{
		snapshot: snap,
		GetContractVersionFunc: func(ctx context.Context, id uuid.UUID, version int) (*models.ContractVersion, error) {
			if version != 1 {
				return nil, db.ErrNotFound
			}
			return &models.ContractVersion{
				ContractID: id, Version: 1, Title: "Office Cleaning 2023", Status: models.ContractCompleted,
			}, nil
		},
	}
	handler := newHandler(mockStore)

	cases := []struct {
		version string
		code    int
	}{
		{"1", http.StatusOK},
		{"7", http.StatusNotFound},
		{"abc", http.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPut, "/api/contracts/x/rollback/"+tc.version, nil)
		req = testutils.WithChiURLParams(req, map[string]string{"contractId": contractID.String(), "version": tc.version})
		w := httptest.NewRecorder()

		handler.RollbackContractHandler(w, req)

		require.Equal(t, tc.code, w.Code, tc.version)
		if tc.code == http.StatusOK {
			require.Contains(t, w.Body.String(), "Office Cleaning 2023")
		}
	}
}

func TestDeleteContractHandler(t *testing.T) {
	snap, contractID, _ := fixture()
	mockStore := &MockStorage{snapshot: snap}
	handler := newHandler(mockStore)

	req := testutils.ContractRequest(http.MethodDelete, "/api/contracts/x", contractID.String(), "")
	w := httptest.NewRecorder()

	handler.DeleteContractHandler(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, []string{"DeleteContract"}, mockStore.writes)
}

func TestRoutes(t *testing.T) {
	snap, contractID, _ := fixture()
	d := models.NewDate(2024, 6, 1)
	snap.Agenda[0].StartDate, snap.Agenda[0].EndDate = d, d
	router := newHandler(&MockStorage{snapshot: snap}).Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/contracts/"+contractID.String()+"/schedule", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var got progress.Schedule
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Rows, 2)

	req = httptest.NewRequest(http.MethodPut, "/api/contracts/"+contractID.String()+"/complete", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusConflict, w.Code)
}

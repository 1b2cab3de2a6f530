package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	installmentapp "github.com/goldshop/backend/internal/application/installment"
	"github.com/goldshop/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freshQuote() map[string]any {
	return map[string]any{
		"cash_amount":          "2602.50",
		"quote_price_per_gram": "520.50",
		"quoted_at":            time.Now().UTC().Format(time.RFC3339),
		"quote_source":         "SGE-AU9999",
		"actor":                "clerk-zhang",
	}
}

func TestPaymentHandler_Process(t *testing.T) {
	t.Run("applies a payment and reduces the balance", func(t *testing.T) {
		s := newTestServer()
		id := s.createContract(t, nil)

		w := s.do(t, http.MethodPost, "/api/v1/contracts/"+id.String()+"/payments", freshQuote(), nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "5.000", data["applied_weight"])
		assert.Equal(t, "5.000", data["balance_after"])
		assert.Equal(t, false, data["completed"])
		assert.Equal(t, false, data["duplicate"])
	})

	t.Run("replays the original outcome on an idempotent retry", func(t *testing.T) {
		s := newTestServer()
		id := s.createContract(t, nil)
		headers := map[string]string{"X-Idempotency-Key": "pay-2026-03-01-0007"}

		w := s.do(t, http.MethodPost, "/api/v1/contracts/"+id.String()+"/payments", freshQuote(), headers)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = s.do(t, http.MethodPost, "/api/v1/contracts/"+id.String()+"/payments", freshQuote(), headers)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, true, data["duplicate"])
		assert.Equal(t, "5.000", data["balance_after"])

		// only one entry was written
		entries, err := s.entryRepo.AllByContract(t.Context(), testTenantID, id)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("rejects a stale quote", func(t *testing.T) {
		s := newTestServer()
		id := s.createContract(t, nil)

		body := freshQuote()
		body["quoted_at"] = time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)

		w := s.do(t, http.MethodPost, "/api/v1/contracts/"+id.String()+"/payments", body, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeStalePrice, resp.Error.Code)
	})

	t.Run("rejects an overpayment on a credit-disabled contract", func(t *testing.T) {
		s := newTestServer()
		id := s.createContract(t, nil)

		body := freshQuote()
		body["cash_amount"] = "99999.00"

		w := s.do(t, http.MethodPost, "/api/v1/contracts/"+id.String()+"/payments", body, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeOverpayment, resp.Error.Code)
	})

	t.Run("completes the contract when the balance reaches zero", func(t *testing.T) {
		s := newTestServer()
		id := s.createContract(t, nil)

		body := freshQuote()
		body["cash_amount"] = "5205.00" // exactly 10.000 grams at 520.50

		w := s.do(t, http.MethodPost, "/api/v1/contracts/"+id.String()+"/payments", body, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "0.000", data["balance_after"])
		assert.Equal(t, true, data["completed"])
	})

	t.Run("rejects a payment on a cancelled contract", func(t *testing.T) {
		s := newTestServer()
		id := s.createContract(t, nil)

		w := s.do(t, http.MethodPost, "/api/v1/contracts/"+id.String()+"/cancel",
			map[string]any{"reason": "customer withdrew"}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, http.MethodPost, "/api/v1/contracts/"+id.String()+"/payments", freshQuote(), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeStaleContract, resp.Error.Code)
	})

	t.Run("missing quote source is a 400", func(t *testing.T) {
		s := newTestServer()
		id := s.createContract(t, nil)

		body := freshQuote()
		delete(body, "quote_source")

		w := s.do(t, http.MethodPost, "/api/v1/contracts/"+id.String()+"/payments", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAdjustmentHandler_Apply(t *testing.T) {
	t.Run("appends a signed correction", func(t *testing.T) {
		s := newTestServer()
		id := s.createContract(t, nil)

		w := s.do(t, http.MethodPost, "/api/v1/contracts/"+id.String()+"/adjustments", map[string]any{
			"weight_delta": "-0.500",
			"reason":       "scale drift found during audit",
			"actor":        "manager-li",
		}, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "MANUAL_ADJUSTMENT", data["kind"])
		assert.Equal(t, "9.500", data["balance_after"])
	})

	t.Run("reason is mandatory", func(t *testing.T) {
		s := newTestServer()
		id := s.createContract(t, nil)

		w := s.do(t, http.MethodPost, "/api/v1/contracts/"+id.String()+"/adjustments", map[string]any{
			"weight_delta": "-0.500",
			"actor":        "manager-li",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAdjustmentHandler_Reverse(t *testing.T) {
	s := newTestServer()
	id := s.createContract(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/contracts/"+id.String()+"/adjustments", map[string]any{
		"weight_delta": "-0.500",
		"reason":       "scale drift found during audit",
		"actor":        "manager-li",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entryID := decodeResponse(t, w).Data.(map[string]any)["id"].(string)

	w = s.do(t, http.MethodPost, "/api/v1/contracts/"+id.String()+"/entries/"+entryID+"/reverse", map[string]any{
		"reason": "adjustment was applied to the wrong contract",
		"actor":  "manager-li",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "REVERSAL", data["kind"])
	assert.Equal(t, "10.000", data["balance_after"])
	assert.Equal(t, entryID, data["reverses_entry_id"])
}

func TestDefaultHandler_Assess(t *testing.T) {
	s := newTestServer()
	id := s.createContract(t, nil)

	w := s.do(t, http.MethodGet, "/api/v1/contracts/"+id.String()+"/assessment", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]any)
	assert.Equal(t, id.String(), data["contract_id"])
	assert.NotEmpty(t, data["state"])
}

func TestDefaultHandler_ApplyPenalty(t *testing.T) {
	s := newTestServer()
	id := s.createContract(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/contracts/"+id.String()+"/penalties", map[string]any{
		"penalty_weight": "0.020",
		"reason":         "missed the March installment past grace",
		"actor":          "collections-wu",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "PENALTY", data["kind"])
	assert.Equal(t, "10.020", data["balance_after"])
}

func TestDefaultHandler_TriggerScan(t *testing.T) {
	s := newTestServer()
	s.createContract(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/defaults/scan", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), data["scanned"])
}

type stubScanScheduler struct {
	at  *time.Time
	err error
}

func (s *stubScanScheduler) LastRun() (*time.Time, *installmentapp.ScanResult, error) {
	return s.at, nil, s.err
}

func TestDefaultHandler_SchedulerStatus(t *testing.T) {
	t.Run("disabled when no scheduler attached", func(t *testing.T) {
		s := newTestServer()

		w := s.do(t, http.MethodGet, "/api/v1/defaults/scheduler", nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, false, data["enabled"])
	})

	t.Run("reports the last run and error", func(t *testing.T) {
		s := newTestServer()
		at := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)
		s.defaultHandler.SetScheduler(&stubScanScheduler{at: &at, err: errors.New("database unavailable")})

		w := s.do(t, http.MethodGet, "/api/v1/defaults/scheduler", nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, true, data["enabled"])
		assert.Equal(t, "2026-03-01T03:00:00Z", data["last_run_at"])
		assert.Equal(t, "database unavailable", data["last_error"])
	})
}

package api

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skyfield-data/spectrum.report/internal/beamplan"
	"github.com/skyfield-data/spectrum.report/internal/beamplan/storage/sqlite"
	"github.com/skyfield-data/spectrum.report/internal/db"
	"github.com/skyfield-data/spectrum.report/internal/testutil"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	plan, err := beamplan.NewPlan(beamplan.DefaultPlanConfig())
	testutil.AssertNoError(t, err)
	return NewServer(plan, nil)
}

func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	return rec
}

func TestAllocateEmptyPlanTakesChannelZero(t *testing.T) {
	s := newTestServer(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/allocate", allocateRequest{
		BeamRow: 5, BeamCol: 5, Priority: 0, ID: "carrier-1",
	})
	rec := doRequest(s, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp allocateResponse
	testutil.DecodeJSONBody(t, rec, &resp)
	if resp.Channel != 0 {
		t.Errorf("channel = %d, want 0", resp.Channel)
	}
	if resp.FinalPriority != 0 {
		t.Errorf("final priority = %d, want 0", resp.FinalPriority)
	}
	if resp.ID != "carrier-1" {
		t.Errorf("identity = %q, want carrier-1", resp.ID)
	}
}

func TestAllocateGeneratesIdentityWhenMissing(t *testing.T) {
	s := newTestServer(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/allocate", allocateRequest{
		BeamRow: 5, BeamCol: 5,
	})
	rec := doRequest(s, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp allocateResponse
	testutil.DecodeJSONBody(t, rec, &resp)
	if resp.ID == "" {
		t.Error("expected a generated identity")
	}
}

func TestAllocateRejectsOutOfRangeBeam(t *testing.T) {
	s := newTestServer(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/allocate", allocateRequest{
		BeamRow: 0, BeamCol: 0, ID: "edge",
	})
	rec := doRequest(s, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestAllocateRejectsDuplicateIdentity(t *testing.T) {
	s := newTestServer(t)

	body := allocateRequest{BeamRow: 5, BeamCol: 5, ID: "dup"}
	rec := doRequest(s, testutil.NewJSONRequest(t, http.MethodPost, "/api/allocate", body))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	rec = doRequest(s, testutil.NewJSONRequest(t, http.MethodPost, "/api/allocate", body))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestAllocateRejectsUnknownFields(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/allocate",
		strings.NewReader(`{"beam_row":5,"beam_col":5,"bogus":1}`))
	rec := doRequest(s, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestAllocateMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/allocate", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}

func TestBatchContestedNeighboursGetDistinctChannels(t *testing.T) {
	s := newTestServer(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/batch", []allocateRequest{
		{BeamRow: 5, BeamCol: 5, ID: "a"},
		{BeamRow: 6, BeamCol: 6, ID: "b"},
	})
	rec := doRequest(s, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var entries []struct {
		Result *allocateResponse `json:"result"`
		Error  string            `json:"error"`
	}
	testutil.DecodeJSONBody(t, rec, &entries)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for i, e := range entries {
		if e.Error != "" {
			t.Fatalf("entry %d failed: %s", i, e.Error)
		}
	}
	if entries[0].Result.Channel == entries[1].Result.Channel {
		t.Errorf("contested neighbours share channel %d", entries[0].Result.Channel)
	}
}

func TestBatchIsolatesBadEntry(t *testing.T) {
	s := newTestServer(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/batch", []allocateRequest{
		{BeamRow: 5, BeamCol: 5, ID: "good"},
		{BeamRow: -1, BeamCol: -1, ID: "bad"},
	})
	rec := doRequest(s, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var entries []struct {
		Result *allocateResponse `json:"result"`
		Error  string            `json:"error"`
	}
	testutil.DecodeJSONBody(t, rec, &entries)
	if entries[0].Result == nil || entries[0].Error != "" {
		t.Errorf("good entry should succeed, got error %q", entries[0].Error)
	}
	if entries[1].Error == "" {
		t.Error("bad entry should carry an error")
	}
	if s.plan.CarrierCount() != 1 {
		t.Errorf("carrier count = %d, want 1", s.plan.CarrierCount())
	}
}

func TestDeallocateRoundTrip(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, testutil.NewJSONRequest(t, http.MethodPost, "/api/allocate",
		allocateRequest{BeamRow: 5, BeamCol: 5, ID: "gone"}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var resp allocateResponse
	testutil.DecodeJSONBody(t, rec, &resp)

	rec = doRequest(s, testutil.NewJSONRequest(t, http.MethodPost, "/api/deallocate",
		map[string]interface{}{
			"beam_row": 5, "beam_col": 5, "channel": resp.Channel, "identity": "gone",
		}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	if s.plan.CarrierCount() != 0 {
		t.Errorf("carrier count = %d, want 0", s.plan.CarrierCount())
	}
}

func TestDeallocateUnknownCarrierIs404(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, testutil.NewJSONRequest(t, http.MethodPost, "/api/deallocate",
		map[string]interface{}{
			"beam_row": 5, "beam_col": 5, "channel": 0, "identity": "phantom",
		}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestPlanExportAndReplace(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, testutil.NewJSONRequest(t, http.MethodPost, "/api/allocate",
		allocateRequest{BeamRow: 5, BeamCol: 5, ID: "keep"}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/plan", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var records []beamplan.CarrierRecord
	testutil.DecodeJSONBody(t, rec, &records)
	if len(records) != 1 || records[0].ID != "keep" {
		t.Fatalf("exported records = %+v", records)
	}

	replacement := []beamplan.CarrierRecord{
		{BeamRow: 7, BeamCol: 7, Channel: 3, Priority: 1, ID: "new-a"},
		{BeamRow: 9, BeamCol: 9, Channel: 0, Priority: 0, ID: "new-b"},
	}
	rec = doRequest(s, testutil.NewJSONRequest(t, http.MethodPost, "/api/plan", replacement))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	if s.plan.CarrierCount() != 2 {
		t.Errorf("carrier count = %d, want 2", s.plan.CarrierCount())
	}
}

func TestPlanReplaceRejectsBadRecords(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, testutil.NewJSONRequest(t, http.MethodPost, "/api/plan",
		[]beamplan.CarrierRecord{{BeamRow: 0, BeamCol: 0, Channel: 0, ID: "oob"}}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestScanReportsNeighbourPressure(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, testutil.NewJSONRequest(t, http.MethodPost, "/api/allocate",
		allocateRequest{BeamRow: 5, BeamCol: 5, ID: "src"}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/scan?row=6&col=6&threshold=0", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var scan struct {
		Admissible []int `json:"admissible"`
		Scores     []int `json:"scores"`
	}
	testutil.DecodeJSONBody(t, rec, &scan)
	if scan.Scores[0] != 1 {
		t.Errorf("channel 0 score = %d, want 1 (one occupied neighbour)", scan.Scores[0])
	}
	for _, ch := range scan.Admissible {
		if ch == 0 {
			t.Error("channel 0 should not be admissible at threshold 0")
		}
	}
}

func TestScanRejectsMalformedQuery(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/scan?row=x&col=5", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestOccupancyChartServesHTML(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, testutil.NewJSONRequest(t, http.MethodPost, "/api/allocate",
		allocateRequest{BeamRow: 5, BeamCol: 5, ID: "dot"}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/debug/occupancy", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q, want text/html", ct)
	}
	if !strings.Contains(rec.Body.String(), "echarts") {
		t.Error("chart body should reference echarts")
	}
}

func TestMutationsPersistThroughStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.db")
	database, err := db.NewDB(path)
	testutil.AssertNoError(t, err)
	defer database.Close()

	plan, err := beamplan.NewPlan(beamplan.DefaultPlanConfig())
	testutil.AssertNoError(t, err)
	store := sqlite.NewPlanStore(database.DB)
	s := NewServer(plan, store)

	rec := doRequest(s, testutil.NewJSONRequest(t, http.MethodPost, "/api/allocate",
		allocateRequest{BeamRow: 5, BeamCol: 5, ID: "durable"}))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	records, err := store.LoadRecords()
	testutil.AssertNoError(t, err)
	if len(records) != 1 || records[0].ID != "durable" {
		t.Fatalf("persisted records = %+v", records)
	}

	n, err := store.EventCount()
	testutil.AssertNoError(t, err)
	if n != 1 {
		t.Errorf("event count = %d, want 1", n)
	}
}

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/skyfield-data/spectrum.report/internal/beamplan"
	"github.com/skyfield-data/spectrum.report/internal/httputil"
)

// allocateRequest is the wire shape for one allocation request.
type allocateRequest struct {
	BeamRow  int    `json:"beam_row"`
	BeamCol  int    `json:"beam_col"`
	Priority int    `json:"priority"`
	ID       string `json:"identity"`
}

func (a allocateRequest) toRequest() beamplan.Request {
	return beamplan.Request{
		Beam:     beamplan.BeamCoord{Row: a.BeamRow, Col: a.BeamCol},
		Priority: a.Priority,
		ID:       beamplan.CarrierID(a.ID),
	}
}

// allocateResponse reports one placement.
type allocateResponse struct {
	BeamRow       int    `json:"beam_row"`
	BeamCol       int    `json:"beam_col"`
	Channel       int    `json:"channel"`
	FinalPriority int    `json:"final_priority"`
	ID            string `json:"identity"`
	Scores        []int  `json:"scores"`
}

func placementResponse(req beamplan.Request, pl beamplan.Placement) allocateResponse {
	return allocateResponse{
		BeamRow:       req.Beam.Row,
		BeamCol:       req.Beam.Col,
		Channel:       pl.Channel,
		FinalPriority: pl.FinalPriority,
		ID:            string(req.ID),
		Scores:        pl.Scores,
	}
}

// errorStatus maps core errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, beamplan.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, beamplan.ErrCarrierNotFound):
		return http.StatusNotFound
	case errors.Is(err, beamplan.ErrSlotOccupied):
		return http.StatusConflict
	case errors.Is(err, beamplan.ErrChannelsExhausted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var body allocateRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.BadRequest(w, "malformed request body: "+err.Error())
		return
	}
	if body.ID == "" {
		// Unlabelled requests get a generated identity.
		body.ID = uuid.New().String()
	}

	req := body.toRequest()
	pl, err := s.plan.Allocate(req)
	if err != nil {
		httputil.WriteJSONError(w, errorStatus(err), err.Error())
		return
	}

	s.logEvent("allocate", beamplan.CarrierRecord{
		BeamRow: req.Beam.Row, BeamCol: req.Beam.Col,
		Channel: pl.Channel, Priority: pl.FinalPriority, ID: string(req.ID),
	})
	s.savePlan()
	httputil.WriteJSONOK(w, placementResponse(req, pl))
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var bodies []allocateRequest
	if err := httputil.DecodeJSON(r, &bodies); err != nil {
		httputil.BadRequest(w, "malformed request body: "+err.Error())
		return
	}

	reqs := make([]beamplan.Request, len(bodies))
	for i, b := range bodies {
		if b.ID == "" {
			b.ID = uuid.New().String()
		}
		reqs[i] = b.toRequest()
	}

	results := s.plan.AllocateBatch(reqs)

	type batchEntry struct {
		Result *allocateResponse `json:"result,omitempty"`
		Error  string            `json:"error,omitempty"`
	}
	entries := make([]batchEntry, len(results))
	committed := false
	for i, res := range results {
		if res.Err != nil {
			entries[i].Error = res.Err.Error()
			continue
		}
		resp := placementResponse(res.Request, res.Placement)
		entries[i].Result = &resp
		committed = true
		s.logEvent("allocate", beamplan.CarrierRecord{
			BeamRow: res.Request.Beam.Row, BeamCol: res.Request.Beam.Col,
			Channel: res.Placement.Channel, Priority: res.Placement.FinalPriority,
			ID: string(res.Request.ID),
		})
	}
	if committed {
		s.savePlan()
	}
	httputil.WriteJSONOK(w, entries)
}

func (s *Server) handleDeallocate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var body struct {
		BeamRow int    `json:"beam_row"`
		BeamCol int    `json:"beam_col"`
		Channel int    `json:"channel"`
		ID      string `json:"identity"`
	}
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.BadRequest(w, "malformed request body: "+err.Error())
		return
	}

	key := beamplan.CarrierKey{
		Beam:    beamplan.BeamCoord{Row: body.BeamRow, Col: body.BeamCol},
		Channel: body.Channel,
		ID:      beamplan.CarrierID(body.ID),
	}
	if err := s.plan.Deallocate(key); err != nil {
		httputil.WriteJSONError(w, errorStatus(err), err.Error())
		return
	}

	s.logEvent("deallocate", beamplan.CarrierRecord{
		BeamRow: body.BeamRow, BeamCol: body.BeamCol,
		Channel: body.Channel, ID: body.ID,
	})
	s.savePlan()
	httputil.WriteJSONOK(w, map[string]string{"status": "released"})
}

// handlePlan exports the current plan as flat records on GET and replaces
// it wholesale on POST.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSONOK(w, s.plan.Export())

	case http.MethodPost:
		var records []beamplan.CarrierRecord
		if err := httputil.DecodeJSON(r, &records); err != nil {
			httputil.BadRequest(w, "malformed request body: "+err.Error())
			return
		}
		if err := s.plan.Reset(records); err != nil {
			httputil.WriteJSONError(w, errorStatus(err), err.Error())
			return
		}
		s.savePlan()
		httputil.WriteJSONOK(w, map[string]int{"carriers": s.plan.CarrierCount()})

	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	q := r.URL.Query()
	row, err := strconv.Atoi(q.Get("row"))
	if err != nil {
		httputil.BadRequest(w, "row must be an integer")
		return
	}
	col, err := strconv.Atoi(q.Get("col"))
	if err != nil {
		httputil.BadRequest(w, "col must be an integer")
		return
	}
	threshold := 0
	if t := q.Get("threshold"); t != "" {
		if threshold, err = strconv.Atoi(t); err != nil {
			httputil.BadRequest(w, "threshold must be an integer")
			return
		}
	}

	admissible, scores, err := s.plan.ScanChannels(beamplan.BeamCoord{Row: row, Col: col}, threshold)
	if err != nil {
		httputil.WriteJSONError(w, errorStatus(err), err.Error())
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"admissible": admissible,
		"scores":     scores,
	})
}

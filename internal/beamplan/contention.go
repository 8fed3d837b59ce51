package beamplan

import (
	"fmt"

	"github.com/skyfield-data/spectrum.report/internal/monitoring"
)

// BatchResult reports the outcome for one request of a batch. Err is nil
// on success; a failed request never mutates the plan and never blocks the
// rest of the batch.
type BatchResult struct {
	Request   Request
	Placement Placement
	Err       error
}

// batchCandidate is the pre-commit view of one request: its escalated
// admissible set and the threshold that produced it.
type batchCandidate struct {
	req        Request
	admissible []int
	scores     []int
	threshold  int
	err        error
}

// AllocateBatch processes several requests as one batch. Unlike the
// strictly sequential path, candidates are computed against the same plan
// snapshot, so two mutually neighbouring requests can both see the same
// channel as free. Contention is resolved before anything commits:
//
//   - two requests are in contention when their beams coincide or are
//     mutual neighbours, and their admissible sets intersect;
//   - the request with the higher final escalated priority keeps the
//     channel it is about to commit; ties break by batch order, earlier
//     wins;
//   - the loser drops that channel and, if its set empties, re-scans one
//     threshold higher with the channel still excluded.
//
// Resolution only filters candidates; commits run per request in batch
// order through the normal assign path, whose emptiness check remains the
// final backstop. The whole batch runs under the plan lock.
func (p *Plan) AllocateBatch(reqs []Request) []BatchResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	candidates := make([]batchCandidate, len(reqs))
	seen := make(map[CarrierID]int, len(reqs))
	for i, req := range reqs {
		candidates[i] = batchCandidate{req: req}
		if err := p.validateRequest(req); err != nil {
			candidates[i].err = err
			continue
		}
		if p.hasIdentity(req.ID) {
			candidates[i].err = fmt.Errorf("%w: identity %q already active", ErrInvalidInput, req.ID)
			continue
		}
		if first, dup := seen[req.ID]; dup {
			candidates[i].err = fmt.Errorf("%w: identity %q duplicated in batch (first at index %d)",
				ErrInvalidInput, req.ID, first)
			continue
		}
		seen[req.ID] = i
		p.escalateCandidate(&candidates[i], req.Priority, nil)
	}

	p.resolveContention(candidates)

	results := make([]BatchResult, len(reqs))
	for i := range candidates {
		c := &candidates[i]
		results[i].Request = c.req
		if c.err != nil {
			results[i].Err = c.err
			continue
		}
		ch := c.admissible[0]
		if err := p.assignLocked(c.req.Beam, ch, c.req.ID, c.threshold); err != nil {
			// A neighbour that won resolution committed here first. No
			// silent retry: report and move on.
			results[i].Err = err
			continue
		}
		results[i].Placement = Placement{Channel: ch, FinalPriority: c.threshold, Scores: c.scores}
	}
	return results
}

// escalateCandidate runs the scan-and-escalate loop for c without
// committing, starting at baseline. Channels in exclude stay out of the
// admissible set even when a higher threshold would re-admit them: they
// are already promised to a contention winner. Sets c.err on exhaustion.
func (p *Plan) escalateCandidate(c *batchCandidate, baseline int, exclude []int) {
	for threshold := baseline; threshold <= MaxInterferenceScore; threshold++ {
		admissible, scores := p.scanLocked(c.req.Beam, threshold)
		admissible = p.freeOnly(c.req.Beam, admissible)
		if len(exclude) > 0 {
			admissible = subtract(admissible, exclude)
		}
		if len(admissible) == 0 {
			continue
		}
		c.admissible = admissible
		c.scores = scores
		c.threshold = threshold
		return
	}
	c.err = fmt.Errorf("beam (%d,%d): %w", c.req.Beam.Row, c.req.Beam.Col, ErrChannelsExhausted)
}

// resolveContention filters the admissible sets of contending candidate
// pairs. Pairs are visited in batch order, which keeps the outcome
// deterministic for equal priorities.
//
// Contention is detected on the full intersection, but the loser only
// yields the winner's head channel: that is the one the winner will
// commit, and removing the whole intersection would strand the loser
// whenever both scans admit most of the budget.
func (p *Plan) resolveContention(candidates []batchCandidate) {
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			a, b := &candidates[i], &candidates[j]
			if a.err != nil || b.err != nil {
				continue
			}
			// The neighbour template excludes the centre, so distance
			// zero needs its own check: two requests on one beam fight
			// over every free channel there.
			if a.req.Beam != b.req.Beam && !AreNeighbours(a.req.Beam, b.req.Beam) {
				continue
			}
			if len(intersect(a.admissible, b.admissible)) == 0 {
				continue
			}
			winner, loser := a, b
			if b.threshold > a.threshold {
				winner, loser = b, a // higher final priority keeps its pick
			}
			contested := winner.admissible[0]
			if !contains(loser.admissible, contested) {
				continue
			}
			monitoring.Logf("contention: beams (%d,%d)/(%d,%d) over channel %d; %q yields",
				a.req.Beam.Row, a.req.Beam.Col, b.req.Beam.Row, b.req.Beam.Col, contested, loser.req.ID)
			loser.admissible = subtract(loser.admissible, []int{contested})
			if len(loser.admissible) == 0 {
				p.escalateCandidate(loser, loser.threshold+1, []int{contested})
			}
		}
	}
}

// contains reports whether ch is in the ascending-ordered set.
func contains(set []int, ch int) bool {
	for _, c := range set {
		if c == ch {
			return true
		}
		if c > ch {
			return false
		}
	}
	return false
}

// intersect returns the channels present in both ascending-ordered sets.
func intersect(a, b []int) []int {
	var out []int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// subtract returns a without the channels in b, preserving order.
func subtract(a, b []int) []int {
	drop := make(map[int]bool, len(b))
	for _, ch := range b {
		drop[ch] = true
	}
	var out []int
	for _, ch := range a {
		if !drop[ch] {
			out = append(out, ch)
		}
	}
	return out
}

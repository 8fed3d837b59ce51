package beamplan

// Interference scoring constants. A channel already active in the target
// beam is effectively disqualified; each active neighbour adds one.
const (
	// SelfOccupiedScore is added when the channel is in use at the target
	// beam itself.
	SelfOccupiedScore = 100

	// MaxInterferenceScore is the worst case: self-occupied plus all 18
	// neighbours active. It bounds the escalation loop.
	MaxInterferenceScore = SelfOccupiedScore + NeighbourCount
)

// ScanChannels scores every channel at beam against the reuse cluster and
// returns the admissible ones (score <= threshold) in ascending channel
// order, together with the full score vector.
//
// Preferring the lowest admissible index is deliberate: concentrating
// assignments on low channel numbers pushes reuse pressure onto high
// indices elsewhere and maximises spatial reuse system-wide.
//
// The scan is side-effect free. It takes the plan lock, so concurrent
// scans and commits serialise; see Allocate for the scan-to-commit
// protocol.
func (p *Plan) ScanChannels(beam BeamCoord, threshold int) (admissible []int, scores []int, err error) {
	if err := p.validateBeam(beam); err != nil {
		return nil, nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	admissible, scores = p.scanLocked(beam, threshold)
	return admissible, scores, nil
}

// scanLocked is the scoring core. Caller holds p.mu and has validated beam.
func (p *Plan) scanLocked(beam BeamCoord, threshold int) (admissible []int, scores []int) {
	neighbours := NeighbourCoords(beam)
	scores = make([]int, p.Config.Channels)

	for ch := 0; ch < p.Config.Channels; ch++ {
		if p.Grid.Occupied(beam, ch) {
			scores[ch] += SelfOccupiedScore
		}
		for _, nb := range neighbours {
			if p.Grid.Occupied(nb, ch) {
				scores[ch]++
			}
		}
		if scores[ch] <= threshold {
			admissible = append(admissible, ch)
		}
	}
	return admissible, scores
}

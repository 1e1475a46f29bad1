package valuation

import (
	"equitylens/pkg/models"
)

// Plausibility windows for peer multiples. A multiple outside its window is
// treated as invalid and excluded from the peer average, so one distressed or
// hyper-priced peer cannot poison the comparison.
const (
	maxPeerPE       = 100.0
	maxPeerPB       = 50.0
	maxPeerEVEBITDA = 100.0
	maxPeerPS       = 50.0
)

// RelativeInput holds the target company metrics and the peer set.
type RelativeInput struct {
	Derived   *models.DerivedFinancials
	Shares    models.ShareCount
	Peers     []models.PeerMultiples
	NetDebt   float64 // Internal reporting-unit blocks
	UnitScale float64
}

// RelativeResult maps each multiple-based method to its fair value per share.
type RelativeResult struct {
	PE       models.MethodResult
	PB       models.MethodResult
	EVEBITDA models.MethodResult
	PS       models.MethodResult
}

// CalculateRelative runs the four multiple-based methods. Any method with no
// plausible peer multiple, an unresolved share count, or a non-positive
// target metric is marked invalid rather than reported as zero.
func CalculateRelative(input RelativeInput) RelativeResult {
	res := RelativeResult{
		PE:       models.MethodResult{Method: "pe"},
		PB:       models.MethodResult{Method: "pb"},
		EVEBITDA: models.MethodResult{Method: "ev_ebitda"},
		PS:       models.MethodResult{Method: "ps"},
	}
	if !input.Shares.Resolved() {
		note := "share count unresolved"
		res.PE.Note, res.PB.Note, res.EVEBITDA.Note, res.PS.Note = note, note, note, note
		return res
	}

	d := input.Derived
	perShare := func(v float64) float64 {
		return v * input.UnitScale / input.Shares.Value
	}
	eps := perShare(d.NOPAT.Latest())
	bvps := perShare(d.Equity.Latest())
	rps := perShare(d.Revenue.Latest())

	if avg, ok := peerAverage(input.Peers, func(p models.PeerMultiples) float64 { return p.PE }, maxPeerPE); ok && eps > 0 {
		res.PE.FairValue = avg * eps
		res.PE.Valid = true
	}
	if avg, ok := peerAverage(input.Peers, func(p models.PeerMultiples) float64 { return p.PB }, maxPeerPB); ok && bvps > 0 {
		res.PB.FairValue = avg * bvps
		res.PB.Valid = true
	}
	if avg, ok := peerAverage(input.Peers, func(p models.PeerMultiples) float64 { return p.EVEBITDA }, maxPeerEVEBITDA); ok && d.EBITDA.Latest() > 0 {
		impliedEV := avg * d.EBITDA.Latest()
		res.EVEBITDA.FairValue = perShare(impliedEV - input.NetDebt)
		res.EVEBITDA.Valid = res.EVEBITDA.FairValue > 0
	}
	if avg, ok := peerAverage(input.Peers, func(p models.PeerMultiples) float64 { return p.PS }, maxPeerPS); ok && rps > 0 {
		res.PS.FairValue = avg * rps
		res.PS.Valid = true
	}
	return res
}

// peerAverage averages one multiple across peers, excluding values outside
// (0, max). The second return is false when no plausible peer remains.
func peerAverage(peers []models.PeerMultiples, pick func(models.PeerMultiples) float64, max float64) (float64, bool) {
	var sum float64
	var count int
	for _, p := range peers {
		v := pick(p)
		if v <= 0 || v >= max {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

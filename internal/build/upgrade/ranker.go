package upgrade

import (
	"sort"
	"sync"

	"github.com/dochoss/poe2-mcp/internal/build/defense"
	"github.com/dochoss/poe2-mcp/internal/build/stats"
)

// DefaultTopK is the number of ranked candidates returned when the caller
// does not specify one.
const DefaultTopK = 5

// maxRankWorkers bounds the evaluation fan-out.
const maxRankWorkers = 8

// Candidate is one item under consideration in a batch ranking.
type Candidate struct {
	// Name labels the candidate in the ranked output.
	Name string
	Gear stats.GearContribution
	// Price is the optional market price in the trade currency.
	Price *float64
}

// RankedUpgrade pairs a candidate with its evaluation, ordered by score.
type RankedUpgrade struct {
	Name string
	// Index is the candidate's position in the input slice.
	Index int
	Value *UpgradeValue
}

// EvaluateMany evaluates every candidate independently against the same
// current gear and base stats, then returns the topK best by priority score.
// Evaluations run in parallel; each call operates only on its own inputs, so
// no locking beyond the result fan-in is needed. The sort is the only
// serialization point.
//
// Precondition: base must be non-nil.
// Postcondition: Returns at most topK results sorted descending by
// PriorityScore; ties keep input order.
func (e *Evaluator) EvaluateMany(
	current stats.GearContribution,
	candidates []Candidate,
	base *stats.DefensiveProfile,
	threat defense.ThreatProfile,
	topK int,
) ([]RankedUpgrade, error) {
	if base == nil {
		return nil, ErrMissingBaseProfile
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	results := make([]RankedUpgrade, len(candidates))
	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := maxRankWorkers
	if len(candidates) < workers {
		workers = len(candidates)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				c := candidates[i]
				// base was checked above; per-candidate evaluation cannot fail.
				value, _ := e.EvaluateUpgrade(current, c.Gear, base, threat, c.Price)
				results[i] = RankedUpgrade{Name: c.Name, Index: i, Value: value}
			}
		}()
	}
	for i := range candidates {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Value.PriorityScore > results[b].Value.PriorityScore
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

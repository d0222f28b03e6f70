package upgrade

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dochoss/poe2-mcp/internal/build/stats"
)

func lifeCandidate(name string, life int) Candidate {
	return Candidate{Name: name, Gear: stats.GearContribution{Life: life}}
}

func TestEvaluateMany_NilBase(t *testing.T) {
	e := NewEvaluator(nil)
	_, err := e.EvaluateMany(stats.GearContribution{}, []Candidate{lifeCandidate("x", 100)}, nil, nil, 5)
	assert.ErrorIs(t, err, ErrMissingBaseProfile)
}

func TestEvaluateMany_EmptyCandidates(t *testing.T) {
	e := NewEvaluator(nil)
	ranked, err := e.EvaluateMany(stats.GearContribution{}, nil, baseProfile(), nil, 5)
	require.NoError(t, err)
	assert.Nil(t, ranked)
}

func TestEvaluateMany_SortsByScoreDescending(t *testing.T) {
	e := NewEvaluator(nil)
	candidates := []Candidate{
		lifeCandidate("small", 100),
		lifeCandidate("big", 300),
		lifeCandidate("medium", 200),
	}

	ranked, err := e.EvaluateMany(stats.GearContribution{}, candidates, baseProfile(), nil, 5)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "big", ranked[0].Name)
	assert.Equal(t, "medium", ranked[1].Name)
	assert.Equal(t, "small", ranked[2].Name)
	assert.Equal(t, 1, ranked[0].Index)
	assert.Equal(t, 2, ranked[1].Index)
	assert.Equal(t, 0, ranked[2].Index)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Value.PriorityScore, ranked[i].Value.PriorityScore)
	}
}

func TestEvaluateMany_TopKTruncates(t *testing.T) {
	e := NewEvaluator(nil)
	var candidates []Candidate
	for i := 0; i < 20; i++ {
		candidates = append(candidates, lifeCandidate(fmt.Sprintf("c%d", i), 50+i*10))
	}

	ranked, err := e.EvaluateMany(stats.GearContribution{}, candidates, baseProfile(), nil, 3)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, "c19", ranked[0].Name)
}

func TestEvaluateMany_ZeroTopKUsesDefault(t *testing.T) {
	e := NewEvaluator(nil)
	var candidates []Candidate
	for i := 0; i < 10; i++ {
		candidates = append(candidates, lifeCandidate(fmt.Sprintf("c%d", i), 50+i*10))
	}

	ranked, err := e.EvaluateMany(stats.GearContribution{}, candidates, baseProfile(), nil, 0)
	require.NoError(t, err)
	assert.Len(t, ranked, DefaultTopK)
}

func TestEvaluateMany_TiesKeepInputOrder(t *testing.T) {
	e := NewEvaluator(nil)
	candidates := []Candidate{
		lifeCandidate("first", 100),
		lifeCandidate("second", 100),
		lifeCandidate("third", 100),
	}

	ranked, err := e.EvaluateMany(stats.GearContribution{}, candidates, baseProfile(), nil, 5)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "first", ranked[0].Name)
	assert.Equal(t, "second", ranked[1].Name)
	assert.Equal(t, "third", ranked[2].Name)
}

func TestEvaluateMany_PriceFlowsThrough(t *testing.T) {
	e := NewEvaluator(nil)
	price := 500.0
	candidates := []Candidate{
		{Name: "priced", Gear: stats.GearContribution{Life: 300}, Price: &price},
		lifeCandidate("free", 300),
	}

	ranked, err := e.EvaluateMany(stats.GearContribution{}, candidates, baseProfile(), nil, 5)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	// The expensive copy of the same item scores lower.
	assert.Equal(t, "free", ranked[0].Name)
	assert.Equal(t, "priced", ranked[1].Name)
	assert.Less(t, ranked[1].Value.PriorityScore, ranked[0].Value.PriorityScore)
}

func TestEvaluateMany_ManyCandidatesAllEvaluated(t *testing.T) {
	// More candidates than workers exercises the fan-out path.
	e := NewEvaluator(nil)
	var candidates []Candidate
	for i := 0; i < 100; i++ {
		candidates = append(candidates, lifeCandidate(fmt.Sprintf("c%d", i), i))
	}

	ranked, err := e.EvaluateMany(stats.GearContribution{}, candidates, baseProfile(), nil, 100)
	require.NoError(t, err)
	require.Len(t, ranked, 100)
	for _, r := range ranked {
		require.NotNil(t, r.Value, "candidate %s", r.Name)
	}
}

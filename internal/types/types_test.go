package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLifecycleTagsOrder(t *testing.T) {
	assert.Equal(t, TagProposed, LifecycleTags[0])
	assert.Equal(t, TagUnknown, LifecycleTags[len(LifecycleTags)-1])
}

func TestDependencyKindIsValid(t *testing.T) {
	for _, k := range []DependencyKind{KindPython, KindExec, KindGoMod} {
		assert.True(t, k.IsValid(), "kind %s should be valid", k)
	}
	assert.False(t, DependencyKind("npm").IsValid())
	assert.False(t, DependencyKind("").IsValid())
}

func TestHealthVerdictRank(t *testing.T) {
	assert.Greater(t, VerdictExcellent.Rank(), VerdictGood.Rank())
	assert.Greater(t, VerdictGood.Rank(), VerdictFunctional.Rank())
	assert.Greater(t, VerdictFunctional.Rank(), VerdictCritical.Rank())
	assert.Equal(t, -1, HealthVerdict("bogus").Rank())
	assert.False(t, HealthVerdict("bogus").IsValid())
}

func TestCheckStatusPassed(t *testing.T) {
	assert.True(t, CheckPass.Passed())
	assert.True(t, CheckPartial.Passed())
	assert.False(t, CheckFail.Passed())
}

func TestFitnessRunValidate(t *testing.T) {
	valid := FitnessRun{ID: "r1", StartedAt: time.Now(), Verdict: VerdictGood}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *FitnessRun)
	}{
		{"missing id", func(r *FitnessRun) { r.ID = "" }},
		{"zero time", func(r *FitnessRun) { r.StartedAt = time.Time{} }},
		{"bad verdict", func(r *FitnessRun) { r.Verdict = "great" }},
		{"negative unknown docs", func(r *FitnessRun) { r.UnknownDocs = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			assert.Error(t, r.Validate())
		})
	}
}

package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankingsEmpty(t *testing.T) {
	assert.True(t, Rankings{}.Empty())

	row := &AggregateRow{Name: "Sid", Count: 1}
	assert.False(t, Rankings{MostUsed: row, BestDPS: row, BestBossDamage: row, MostBalanced: row}.Empty())
}

func TestRankingsJSONKeepsNulls(t *testing.T) {
	data, err := json.Marshal(RoleSummary{Role: RoleSecondary})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"most_used":null`)
	assert.Contains(t, string(data), `"role":"secondary"`)
}

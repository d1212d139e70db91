package databases

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/shift-handover/models"
)

func decodeDoc(t *testing.T, payload string) map[string]interface{} {
	t.Helper()
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(payload), &doc))
	return doc
}

func TestUpcastLegacyTeamString(t *testing.T) {
	doc := Upcast(decodeDoc(t, `{"reportDate":"2023-01-05","onDutyTeam":"BS. An, BS. Bình"}`))

	assert.Equal(t, map[string]interface{}{"doctors": "BS. An, BS. Bình", "nurses": ""}, doc["onDutyTeam"])
	assert.Equal(t, models.CurrentSchemaVersion, doc["schemaVersion"])
}

func TestUpcastIsIdempotent(t *testing.T) {
	once := Upcast(decodeDoc(t, `{"onDutyTeam":"BS. An","newAdmissions":3.7}`))
	encoded, err := json.Marshal(once)
	require.NoError(t, err)

	twice := Upcast(decodeDoc(t, string(encoded)))
	reencoded, err := json.Marshal(twice)
	require.NoError(t, err)

	assert.JSONEq(t, string(encoded), string(reencoded))
}

func TestUpcastCoercesLegacyCounters(t *testing.T) {
	doc := Upcast(decodeDoc(t, `{"newAdmissions":3.7,"discharges":"4","transfersIn":"abc","outpatients":null,"minorSurgeries":2}`))

	assert.Equal(t, 3, doc["newAdmissions"])
	assert.Equal(t, 4, doc["discharges"])
	assert.Equal(t, 0, doc["transfersIn"])
	assert.Equal(t, 2, doc["minorSurgeries"])
	_, present := doc["outpatients"]
	assert.False(t, present)
}

func TestUpcastLeavesCurrentVersionAlone(t *testing.T) {
	doc := decodeDoc(t, `{"schemaVersion":2,"onDutyTeam":{"doctors":"A","nurses":"B"},"newAdmissions":5}`)
	out := Upcast(doc)

	assert.Equal(t, map[string]interface{}{"doctors": "A", "nurses": "B"}, out["onDutyTeam"])
	assert.Equal(t, float64(5), out["newAdmissions"])
	assert.Equal(t, float64(2), out["schemaVersion"])
}

func TestDocumentVersion(t *testing.T) {
	assert.Equal(t, 1, documentVersion(map[string]interface{}{}))
	assert.Equal(t, 1, documentVersion(map[string]interface{}{"schemaVersion": "two"}))
	assert.Equal(t, 1, documentVersion(map[string]interface{}{"schemaVersion": float64(0)}))
	assert.Equal(t, 2, documentVersion(map[string]interface{}{"schemaVersion": float64(2)}))
	assert.Equal(t, 2, documentVersion(map[string]interface{}{"schemaVersion": 2}))
}

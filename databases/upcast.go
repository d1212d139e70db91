package databases

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/linesmerrill/shift-handover/models"
	"github.com/linesmerrill/shift-handover/mutations"
)

const schemaVersionKey = "schemaVersion"

// migration upgrades a stored document from version n to n+1
type migration func(doc map[string]interface{})

// migrations[i] upgrades a document from version i+1 to i+2
var migrations = []migration{
	upcastV1,
}

// Upcast brings a stored report document to models.CurrentSchemaVersion. It is
// applied once per load, before the document is decoded into a models.Report.
// Documents already at the current version pass through unchanged, so Upcast
// is idempotent.
func Upcast(doc map[string]interface{}) map[string]interface{} {
	version := documentVersion(doc)
	for v := version; v < models.CurrentSchemaVersion; v++ {
		if v-1 < len(migrations) {
			migrations[v-1](doc)
		}
	}
	if version < models.CurrentSchemaVersion {
		doc[schemaVersionKey] = models.CurrentSchemaVersion
	}
	return doc
}

func documentVersion(doc map[string]interface{}) int {
	switch v := doc[schemaVersionKey].(type) {
	case float64:
		if v >= 1 {
			return int(v)
		}
	case json.Number:
		if n, err := v.Int64(); err == nil && n >= 1 {
			return int(n)
		}
	case int:
		if v >= 1 {
			return v
		}
	}
	return 1
}

// upcastV1 handles documents written before the schema was versioned: the
// on-duty team used to be a single string, and counters could be stored as
// fractional numbers or numeric strings.
func upcastV1(doc map[string]interface{}) {
	if team, ok := doc[models.FieldOnDutyTeam].(string); ok {
		doc[models.FieldOnDutyTeam] = map[string]interface{}{
			models.RoleDoctors: team,
			models.RoleNurses:  "",
		}
	}

	for _, field := range models.NumericFields {
		raw, ok := doc[field]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				doc[field] = 0
			} else {
				doc[field] = mutations.CoerceInt(strconv.FormatFloat(v, 'f', -1, 64))
			}
		case json.Number:
			doc[field] = mutations.CoerceInt(v.String())
		case string:
			doc[field] = mutations.CoerceInt(v)
		case nil:
			delete(doc, field)
		}
	}
}

package mutations

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/shift-handover/models"
)

func sequentialIDs(t *testing.T) {
	t.Helper()
	n := 0
	orig := NewID
	NewID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	t.Cleanup(func() { NewID = orig })
}

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 0},
		{"12", 12},
		{"abc", 0},
		{"  7 ", 7},
		{"12.9", 12},
		{"-3", -3},
		{"NaN", 0},
		{"Inf", 0},
		{"1e3", 1000},
		{"99999999999999", 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceInt(tt.raw))
		})
	}
}

func TestSetScalarFieldNumeric(t *testing.T) {
	r := models.NewReport("2024-06-01")

	out, err := SetScalarField(r, models.FieldNewAdmissions, "12")
	require.NoError(t, err)
	assert.Equal(t, 12, out.NewAdmissions)
	assert.Equal(t, 0, r.NewAdmissions, "input must not change")

	out, err = SetScalarField(out, models.FieldNewAdmissions, "")
	require.NoError(t, err)
	assert.Equal(t, 0, out.NewAdmissions)

	out, err = SetScalarField(out, models.FieldScheduledSurgeriesCount, "abc")
	require.NoError(t, err)
	assert.Equal(t, 0, out.ScheduledSurgeriesCount)
}

func TestSetScalarFieldEveryCounter(t *testing.T) {
	r := models.NewReport("2024-06-01")
	for i, f := range models.NumericFields {
		var err error
		r, err = SetScalarField(r, f, fmt.Sprint(i+1))
		require.NoError(t, err, f)
	}
	assert.Equal(t, 1, r.PreviousPatients)
	assert.Equal(t, 9, r.MinorSurgeries)
	assert.Equal(t, 10, r.ScheduledSurgeriesCount)
	assert.Equal(t, 11, r.EmergencySurgeriesCount)
}

func TestSetScalarFieldText(t *testing.T) {
	r := models.NewReport("2024-06-01")

	out, err := SetScalarField(r, models.FieldAdditionalNotes, "  check drains \n")
	require.NoError(t, err)
	assert.Equal(t, "  check drains \n", out.AdditionalNotes)

	out, err = SetScalarField(out, models.FieldReportDate, "2024-06-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-02", out.ReportDate)

	_, err = SetScalarField(out, "bogus", "1")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSetTeamField(t *testing.T) {
	r := models.NewReport("2024-06-01")
	r.OnDutyTeam.Nurses = "ĐD. B"

	out, err := SetTeamField(r, models.RoleDoctors, "BS. A")
	require.NoError(t, err)
	assert.Equal(t, models.OnDutyTeam{Doctors: "BS. A", Nurses: "ĐD. B"}, out.OnDutyTeam)
	assert.Equal(t, "", r.OnDutyTeam.Doctors)

	_, err = SetTeamField(r, "surgeons", "x")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestAddThenRemoveRestoresList(t *testing.T) {
	sequentialIDs(t)
	lists := []models.ListName{models.ListScheduledSurgeries, models.ListEmergencySurgeries, models.ListSevereHandovers}
	for _, list := range lists {
		t.Run(string(list), func(t *testing.T) {
			r := models.NewReport("2024-06-01")
			r, first, err := AddListItem(r, list)
			require.NoError(t, err)
			r, err = UpdateListItem(r, list, first, models.ItemFieldPatientName, "Nguyễn Văn A")
			require.NoError(t, err)
			before := r.Clone()

			added, id, err := AddListItem(r, list)
			require.NoError(t, err)
			assert.NotEqual(t, first, id)

			removed, err := RemoveListItem(added, list, id)
			require.NoError(t, err)
			if diff := cmp.Diff(before, removed); diff != "" {
				t.Errorf("list not restored (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRemoveKeepsOrder(t *testing.T) {
	sequentialIDs(t)
	r := models.NewReport("2024-06-01")
	var ids []string
	for i := 0; i < 4; i++ {
		var id string
		r, id, _ = AddListItem(r, models.ListScheduledSurgeries)
		ids = append(ids, id)
	}

	out, err := RemoveListItem(r, models.ListScheduledSurgeries, ids[1])
	require.NoError(t, err)

	var got []string
	for _, s := range out.ScheduledSurgeriesDetails {
		got = append(got, s.ID)
	}
	assert.Equal(t, []string{ids[0], ids[2], ids[3]}, got)
	assert.Len(t, r.ScheduledSurgeriesDetails, 4, "input must not change")
}

func TestRemoveUnknownIDIsNoop(t *testing.T) {
	sequentialIDs(t)
	r := models.NewReport("2024-06-01")
	r, _, _ = AddListItem(r, models.ListSevereHandovers)

	out, err := RemoveListItem(r, models.ListSevereHandovers, "missing")
	require.NoError(t, err)
	assert.Equal(t, r, out)
}

func TestUpdateListItem(t *testing.T) {
	sequentialIDs(t)
	r := models.NewReport("2024-06-01")
	r, a, _ := AddListItem(r, models.ListEmergencySurgeries)
	r, b, _ := AddListItem(r, models.ListEmergencySurgeries)

	out, err := UpdateListItem(r, models.ListEmergencySurgeries, b, models.ItemFieldSurgeon, "BS. C")
	require.NoError(t, err)
	assert.Equal(t, "BS. C", out.EmergencySurgeriesDetails[1].Surgeon)
	assert.Equal(t, "", out.EmergencySurgeriesDetails[0].Surgeon)
	assert.Equal(t, a, out.EmergencySurgeriesDetails[0].ID)
	assert.Equal(t, "", r.EmergencySurgeriesDetails[1].Surgeon, "input must not change")

	r, h, _ := AddListItem(out, models.ListSevereHandovers)
	out, err = UpdateListItem(r, models.ListSevereHandovers, h, models.ItemFieldCurrentStatus, "Thở máy")
	require.NoError(t, err)
	assert.Equal(t, "Thở máy", out.SeverePatientHandovers[0].CurrentStatus)
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	sequentialIDs(t)
	r := models.NewReport("2024-06-01")
	r, _, _ = AddListItem(r, models.ListScheduledSurgeries)

	out, err := UpdateListItem(r, models.ListScheduledSurgeries, "missing", models.ItemFieldDiagnosis, "x")
	require.NoError(t, err)
	if diff := cmp.Diff(r, out); diff != "" {
		t.Errorf("unexpected change (-want +got):\n%s", diff)
	}
}

func TestUpdateRejectsUnknownFields(t *testing.T) {
	sequentialIDs(t)
	r := models.NewReport("2024-06-01")
	r, id, _ := AddListItem(r, models.ListScheduledSurgeries)

	_, err := UpdateListItem(r, models.ListScheduledSurgeries, id, models.ItemFieldCurrentStatus, "x")
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = UpdateListItem(r, models.ListScheduledSurgeries, id, models.ItemFieldID, "x")
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = UpdateListItem(r, models.ListSevereHandovers, id, models.ItemFieldProcedure, "x")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestUnknownList(t *testing.T) {
	r := models.NewReport("2024-06-01")
	_, _, err := AddListItem(r, "consults")
	assert.ErrorIs(t, err, ErrUnknownList)
	_, err = RemoveListItem(r, "consults", "x")
	assert.ErrorIs(t, err, ErrUnknownList)
	_, err = UpdateListItem(r, "consults", "x", models.ItemFieldDiagnosis, "y")
	assert.ErrorIs(t, err, ErrUnknownList)
}

func TestGeneratedIDsAreUnique(t *testing.T) {
	r := models.NewReport("2024-06-01")
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		var id string
		r, id, _ = AddListItem(r, models.ListSevereHandovers)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

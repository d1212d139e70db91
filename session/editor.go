// Package session holds the report currently open in the form. Every request
// that reads or changes it goes through an Editor.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/linesmerrill/shift-handover/databases"
	"github.com/linesmerrill/shift-handover/models"
	"github.com/linesmerrill/shift-handover/mutations"
)

// Mutation is a pure update of a report, usually one of the mutations package functions
type Mutation func(models.Report) (models.Report, error)

// Editor owns the single current record. Requests are applied one at a time.
type Editor struct {
	mu      sync.Mutex
	store   databases.ReportDatabase
	current models.Report
}

// NewEditor opens the report stored for date
func NewEditor(ctx context.Context, store databases.ReportDatabase, date string) *Editor {
	return &Editor{
		store:   store,
		current: store.Load(ctx, date),
	}
}

// Snapshot returns a deep copy of the current record
func (e *Editor) Snapshot() models.Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current.Clone()
}

// Date returns the date of the current record
func (e *Editor) Date() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current.ReportDate
}

// Apply runs fn against the current record and adopts its result. On error the
// current record is left as it was.
func (e *Editor) Apply(fn Mutation) (models.Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fn(e.current.Clone())
	if err != nil {
		return e.current.Clone(), err
	}
	e.current = next
	return next.Clone(), nil
}

// SetField updates a top-level field. Changing reportDate opens the report of
// the new date instead of renaming the current one.
func (e *Editor) SetField(ctx context.Context, field, raw string) (models.Report, error) {
	if field == models.FieldReportDate {
		return e.SwitchDate(ctx, raw), nil
	}
	return e.Apply(func(r models.Report) (models.Report, error) {
		return mutations.SetScalarField(r, field, raw)
	})
}

// SetTeam updates one role of the on-duty team
func (e *Editor) SetTeam(role, value string) (models.Report, error) {
	return e.Apply(func(r models.Report) (models.Report, error) {
		return mutations.SetTeamField(r, role, value)
	})
}

// AddItem appends an empty item to list and returns the new item's id
func (e *Editor) AddItem(list models.ListName) (models.Report, string, error) {
	var id string
	r, err := e.Apply(func(r models.Report) (models.Report, error) {
		next, newID, err := mutations.AddListItem(r, list)
		id = newID
		return next, err
	})
	return r, id, err
}

// RemoveItem drops the item with id from list
func (e *Editor) RemoveItem(list models.ListName, id string) (models.Report, error) {
	return e.Apply(func(r models.Report) (models.Report, error) {
		return mutations.RemoveListItem(r, list, id)
	})
}

// UpdateItem sets one field of the item with id
func (e *Editor) UpdateItem(list models.ListName, id, field, value string) (models.Report, error) {
	return e.Apply(func(r models.Report) (models.Report, error) {
		return mutations.UpdateListItem(r, list, id, field, value)
	})
}

// SwitchDate replaces the current record with the one stored for date.
// Unsaved edits are discarded. Selecting the date already open keeps the
// current record as it is.
func (e *Editor) SwitchDate(ctx context.Context, date string) models.Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current.ReportDate == date {
		return e.current.Clone()
	}
	zap.S().Debugw("switching report date", "from", e.current.ReportDate, "to", date)
	e.current = e.store.Load(ctx, date)
	return e.current.Clone()
}

// Save persists the current record. A failed save leaves the record in memory
// so the user can retry.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.store.Save(ctx, e.current.Clone())
}

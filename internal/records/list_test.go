package records

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/coedash/internal/model"
	"github.com/dharsanguruparan/coedash/internal/validation"
)

func funding(id, owner, title string) *model.Record {
	return &model.Record{ID: id, OwnerID: owner, Fields: map[string]any{"projectTitle": title}}
}

func fundingSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := SchemaFor(model.KindFundings)
	require.NoError(t, err)
	return s
}

func TestDirectorTogglesToOwnRecords(t *testing.T) {
	store := newFakeStore("userB")
	store.seed(model.KindFundings,
		funding("f1", "userA", "Created by A"),
		funding("f2", "userB", "Created by B"),
	)
	director := model.Viewer{UserID: "userB", Role: model.RoleDirector}
	l := NewListController(fundingSchema(t), store, director, validation.New())

	all, err := l.Load(context.Background(), ScopeAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scope, err := l.ToggleScope(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ScopeMine, scope)
	mine := l.Records()
	require.Len(t, mine, 1)
	assert.Equal(t, "userB", mine[0].OwnerID)

	scope, err = l.ToggleScope(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ScopeAll, scope)
	assert.Len(t, l.Records(), 2)
}

func TestMineScopeFiltersClientSide(t *testing.T) {
	store := newFakeStore("someone-else")
	store.ignoreScope = true
	store.seed(model.KindFundings, funding("f1", "userA", "x"), funding("f2", "userB", "y"))
	l := NewListController(fundingSchema(t), store, model.Viewer{UserID: "userB", Role: model.RoleWingHead}, validation.New())

	recs, err := l.Load(context.Background(), ScopeAll)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	recs, err = l.Load(context.Background(), ScopeMine)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "f2", recs[0].ID)
}

func TestNonDirectorCannotToggle(t *testing.T) {
	l := NewListController(fundingSchema(t), newFakeStore("u"), model.Viewer{UserID: "u", Role: model.RoleRODev}, validation.New())
	_, err := l.ToggleScope(context.Background())
	assert.ErrorIs(t, err, ErrScopeNotAllowed)
}

func TestRequestNewReloadsAfterSave(t *testing.T) {
	store := newFakeStore("u1")
	s, err := SchemaFor(model.KindEvents)
	require.NoError(t, err)
	l := NewListController(s, store, model.Viewer{UserID: "u1", Role: model.RoleDirector}, validation.New())
	_, err = l.Load(context.Background(), ScopeAll)
	require.NoError(t, err)
	assert.Empty(t, l.Records())

	f := l.RequestNew()
	for k, v := range map[string]string{"eventName": "Expo", "date": "2024-03-01", "location": "Hall", "organizer": "CoE", "attendees": "1200"} {
		require.NoError(t, f.Set(k, v))
	}
	_, err = f.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, l.Records(), 1)
	assert.Equal(t, 1200.0, l.Records()[0].Fields["attendees"])
}

func TestRequestDeleteNeedsConfirmation(t *testing.T) {
	store := newFakeStore("u1")
	store.seed(model.KindFundings, funding("f1", "u1", "x"))
	l := NewListController(fundingSchema(t), store, model.Viewer{UserID: "u1"}, validation.New())
	recs, err := l.Load(context.Background(), ScopeAll)
	require.NoError(t, err)

	deleted, err := l.RequestDelete(context.Background(), recs[0], func(*model.Record) bool { return false })
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Len(t, l.Records(), 1)

	deleted, err = l.RequestDelete(context.Background(), recs[0], func(*model.Record) bool { return true })
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, l.Records())
}

func TestRequestDeleteFailureLeavesList(t *testing.T) {
	store := newFakeStore("u1")
	store.seed(model.KindFundings, funding("f1", "u1", "x"))
	store.deleteFn = func(context.Context, model.Kind, string) error { return errors.New("503") }
	l := NewListController(fundingSchema(t), store, model.Viewer{UserID: "u1"}, validation.New())
	recs, err := l.Load(context.Background(), ScopeAll)
	require.NoError(t, err)

	deleted, err := l.RequestDelete(context.Background(), recs[0], func(*model.Record) bool { return true })
	assert.False(t, deleted)
	assert.EqualError(t, err, "Error deleting funding. Please try again.")
	assert.Len(t, l.Records(), 1)
}

func TestApplyFilterKeepsLoadedCollection(t *testing.T) {
	store := newFakeStore("u1")
	store.seed(model.KindFundings, funding("f1", "u1", "Solar"), funding("f2", "u1", "Water"))
	l := NewListController(fundingSchema(t), store, model.Viewer{UserID: "u1"}, validation.New())
	_, err := l.Load(context.Background(), ScopeAll)
	require.NoError(t, err)

	got, err := l.ApplyFilter(Criteria{Text: map[string]string{"projectTitle": "sol"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, l.Records(), 2)
	assert.Len(t, l.Visible(), 1)

	_, err = l.ApplyFilter(Criteria{Text: map[string]string{"status": "open"}})
	assert.Error(t, err)
}

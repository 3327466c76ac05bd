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

func fillProject(t *testing.T, f *Form, overrides map[string]string) {
	t.Helper()
	values := map[string]string{
		"projectTitle":                   "Solar Grid",
		"supervisor":                     "Dr. Khan",
		"rndTeam":                        "Alice, Bob",
		"clientCompany":                  "Acme",
		"dateOfContractSign":             "2024-01-10",
		"dateOfDeploymentAsPerContract":  "2024-06-10",
		"amountInPKRM":                   "1500000",
		"advPaymentPercentage":           "20",
		"advPaymentAmount":               "300000",
		"dateOfReceivingAdvancePayment":  "2024-01-20",
		"actualDateOfDeployment":         "2024-06-20",
		"dateOfReceivingCompletePayment": "2024-07-01",
	}
	for k, v := range overrides {
		values[k] = v
	}
	for k, v := range values {
		require.NoError(t, f.Set(k, v))
	}
}

func TestFormCreateConvertsFields(t *testing.T) {
	store := newFakeStore("u1")
	f := NewForm(projectSchema(t), store, validation.New())
	f.OpenCreate()
	fillProject(t, f, nil)

	rec, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateClosed, f.State())
	assert.Equal(t, []string{"Alice", "Bob"}, rec.Fields["rndTeam"])
	assert.Equal(t, 1500000.0, rec.Fields["amountInPKRM"])
	assert.Equal(t, "", rec.Fields["remarks"])
	assert.Equal(t, 1, store.writeCount())
}

func TestFormEditRedisplaysList(t *testing.T) {
	store := newFakeStore("u1")
	s := projectSchema(t)
	f := NewForm(s, store, validation.New())
	f.OpenCreate()
	fillProject(t, f, nil)
	rec, err := f.Submit(context.Background())
	require.NoError(t, err)

	f.OpenEdit(rec)
	assert.Equal(t, ModeEdit, f.Mode())
	assert.Equal(t, "Alice, Bob", f.Value("rndTeam"))
	assert.Equal(t, "1500000", f.Value("amountInPKRM"))

	require.NoError(t, f.Set("remarks", "on track"))
	updated, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, rec.OwnerID, updated.OwnerID)
	assert.Equal(t, "on track", updated.Fields["remarks"])
	assert.Equal(t, 2, store.writeCount())
}

func TestFormValidationNeverWrites(t *testing.T) {
	store := newFakeStore("u1")
	f := NewForm(projectSchema(t), store, validation.New())
	f.OpenCreate()
	fillProject(t, f, map[string]string{
		"amountInPKRM":       "1.5 million",
		"supervisor":         "  ",
		"dateOfContractSign": "10/01/2024",
		"rndTeam":            " , ",
	})

	_, err := f.Submit(context.Background())
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Amount in PKR (M) must be a number", verr.Fields["amountInPKRM"])
	assert.Equal(t, "Supervisor is required", verr.Fields["supervisor"])
	assert.Contains(t, verr.Fields, "dateOfContractSign")
	assert.Equal(t, "R&D Team is required", verr.Fields["rndTeam"])
	assert.Equal(t, StateOpen, f.State())
	assert.Equal(t, verr.Fields, f.Errors())
	assert.Equal(t, 0, store.writeCount())
}

func TestFormOptionalEmptyNumberIsNull(t *testing.T) {
	store := newFakeStore("u1")
	s, err := SchemaFor(model.KindEvents)
	require.NoError(t, err)
	f := NewForm(s, store, validation.New())
	f.OpenCreate()
	require.NoError(t, f.Set("eventName", "Expo"))
	require.NoError(t, f.Set("date", "2024-03-01"))
	require.NoError(t, f.Set("location", "Hall A"))
	require.NoError(t, f.Set("organizer", "CoE"))

	rec, err := f.Submit(context.Background())
	require.NoError(t, err)
	v, ok := rec.Fields["attendees"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestFormStoreFailureKeepsFormOpen(t *testing.T) {
	store := newFakeStore("u1")
	store.createFn = func(context.Context, model.Kind, map[string]any) (*model.Record, error) {
		return nil, errors.New("connection refused")
	}
	f := NewForm(projectSchema(t), store, validation.New())
	f.OpenCreate()
	fillProject(t, f, nil)

	_, err := f.Submit(context.Background())
	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, "Error saving project. Please try again.", err.Error())
	assert.Equal(t, StateOpen, f.State())
	assert.Equal(t, "Solar Grid", f.Value("projectTitle"))
	assert.Equal(t, 1, store.writeCount())
}

func TestFormRejectsSecondSubmitWhileSubmitting(t *testing.T) {
	store := newFakeStore("u1")
	started := make(chan struct{})
	release := make(chan struct{})
	store.createFn = func(_ context.Context, _ model.Kind, fields map[string]any) (*model.Record, error) {
		close(started)
		<-release
		return &model.Record{ID: "r1", OwnerID: "u1", Fields: fields}, nil
	}
	f := NewForm(projectSchema(t), store, validation.New())
	f.OpenCreate()
	fillProject(t, f, nil)

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()
	<-started
	assert.Equal(t, StateSubmitting, f.State())
	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, f.Set("remarks", "x"), ErrNotOpen)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, f.State())
	assert.Equal(t, 1, store.writeCount())
}

func TestFormClosedRejectsSubmit(t *testing.T) {
	f := NewForm(projectSchema(t), newFakeStore("u1"), validation.New())
	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotOpen)
	f.OpenCreate()
	assert.Error(t, f.Set("bogus", "x"))
}

func TestInternshipFieldRules(t *testing.T) {
	s, err := SchemaFor(model.KindInternships)
	require.NoError(t, err)
	v := validation.New()
	field, _ := s.Field("officialEmail")
	_, msg := ParseInput(v, field, "someone@nowhere")
	assert.Equal(t, "Official Email must be a valid email address", msg)
	field, _ = s.Field("contactNumber")
	_, msg = ParseInput(v, field, "12345")
	assert.NotEmpty(t, msg)
	val, msg := ParseInput(v, field, "0300123456")
	assert.Empty(t, msg)
	assert.Equal(t, "0300123456", val)
	field, _ = s.Field("year")
	val, msg = ParseInput(v, field, "2024")
	assert.Empty(t, msg)
	assert.Equal(t, 2024.0, val)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{}, SplitList(""))
	assert.Equal(t, []string{"Alice", "Bob"}, SplitList("Alice, Bob"))
	assert.Equal(t, []string{"Alice", "Bob"}, SplitList(" Alice ,, Bob ,"))
}

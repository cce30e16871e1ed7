package converter_test

import (
	"context"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unitd/internal/converter"
	"unitd/internal/converter/store"
	"unitd/internal/units"
)

type catalogOpener struct{}

func (catalogOpener) Open(_ context.Context, system string, scope units.Scope) (*units.Registry, error) {
	return units.Open(system, scope, nil, slog.Default())
}

func newTestConverter(t *testing.T, sessions converter.Sessions, target, id string) *converter.Converter {
	t.Helper()
	conv, err := converter.New(context.Background(), catalogOpener{}, sessions, "SI", target, units.GlobalScope(), id, time.Hour, slog.Default())
	require.NoError(t, err)
	return conv
}

func TestNewUnknownSystem(t *testing.T) {
	_, err := converter.New(context.Background(), catalogOpener{}, store.NewMemory(), "martian", "meter", units.GlobalScope(), "", time.Hour, slog.Default())
	require.ErrorIs(t, err, converter.ErrInit)
}

func TestNewUnknownTargetUnit(t *testing.T) {
	_, err := converter.New(context.Background(), catalogOpener{}, store.NewMemory(), "SI", "cubit", units.GlobalScope(), "", time.Hour, slog.Default())
	require.ErrorIs(t, err, converter.ErrInit)
}

func TestAddDataValidation(t *testing.T) {
	conv := newTestConverter(t, store.NewMemory(), "meter", "")

	invalid := conv.AddData([]converter.Quantity{
		{Unit: "meter", Value: 1},
		{Unit: "", Value: 2},
		{Unit: "meter", Value: math.NaN()},
		{Unit: "meter", Value: math.Inf(1)},
		{Unit: "meter", Value: 3, Date: "2026-08-29"},
		{Unit: "meter", Value: 4, Date: "29/08/2026"},
	})

	require.Len(t, invalid, 4)
	assert.Equal(t, "unit", invalid[0].Field)
	assert.Equal(t, 1, invalid[0].Index)
	assert.Equal(t, "value", invalid[1].Field)
	assert.Equal(t, "value", invalid[2].Field)
	assert.Equal(t, "date", invalid[3].Field)
	assert.Equal(t, 5, invalid[3].Index)
	assert.Equal(t, 2, conv.Accumulated())
}

func TestConvertIsolatesFailures(t *testing.T) {
	conv := newTestConverter(t, store.NewMemory(), "meter", "")
	require.Empty(t, conv.AddData([]converter.Quantity{
		{Unit: "meter", Value: 1},
		{Unit: "bogus", Value: 1},
		{Unit: "kilogram", Value: 1},
	}))

	result, err := conv.Convert(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Details, 1)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "meter", result.Details[0].Unit)
	assert.Equal(t, "undefined unit", result.Errors[0].Reason)
	assert.Equal(t, "bogus", result.Errors[0].Unit)
	assert.Equal(t, "dimensionality error", result.Errors[1].Reason)
	assert.Equal(t, "kilogram", result.Errors[1].Unit)
	assert.InDelta(t, 1, result.Sum, 1e-9)
}

func TestConvertScalesValues(t *testing.T) {
	conv := newTestConverter(t, store.NewMemory(), "meter", "")
	require.Empty(t, conv.AddData([]converter.Quantity{
		{Unit: "kilometer", Value: 2},
		{Unit: "millimeter", Value: 500},
		{Unit: "meter", Value: 3, Date: "2026-08-29"},
	}))

	result, err := conv.Convert(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Details, 3)
	assert.InDelta(t, 2000, result.Details[0].ConvertedValue, 1e-9)
	assert.InDelta(t, 0.5, result.Details[1].ConvertedValue, 1e-9)
	assert.InDelta(t, 3, result.Details[2].ConvertedValue, 1e-9)
	assert.Equal(t, "2026-08-29", result.Details[2].Date)
	assert.InDelta(t, 2003.5, result.Sum, 1e-9)
	assert.Equal(t, "meter", result.TargetUnit)
}

func TestConvertRoundTrip(t *testing.T) {
	ctx := context.Background()
	sessions := store.NewMemory()

	toMeters := newTestConverter(t, sessions, "meter", "")
	require.Empty(t, toMeters.AddData([]converter.Quantity{{Unit: "kilometer", Value: 1.25}}))
	there, err := toMeters.Convert(ctx)
	require.NoError(t, err)

	back := newTestConverter(t, sessions, "kilometer", "")
	require.Empty(t, back.AddData([]converter.Quantity{{Unit: "meter", Value: there.Sum}}))
	home, err := back.Convert(ctx)
	require.NoError(t, err)

	assert.InDelta(t, 1.25, home.Sum, 1e-9)
}

func TestSaveAssignsID(t *testing.T) {
	sessions := store.NewMemory()
	conv := newTestConverter(t, sessions, "meter", "")
	assert.Equal(t, converter.StatusOpen, conv.Status())
	assert.Empty(t, conv.ID())

	conv.AddData([]converter.Quantity{{Unit: "meter", Value: 1}})
	id, err := conv.Save(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, converter.StatusAccumulating, conv.Status())
}

func TestResumeAccumulatesAcrossCalls(t *testing.T) {
	ctx := context.Background()
	sessions := store.NewMemory()

	first := newTestConverter(t, sessions, "meter", "")
	first.AddData([]converter.Quantity{{Unit: "kilometer", Value: 1}})
	id, err := first.Save(ctx)
	require.NoError(t, err)

	second, err := converter.Load(ctx, catalogOpener{}, sessions, id, time.Hour, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, 1, second.Accumulated())
	second.AddData([]converter.Quantity{{Unit: "meter", Value: 500}})

	result, err := second.Convert(ctx)
	require.NoError(t, err)
	require.Len(t, result.Details, 2)
	assert.InDelta(t, 1500, result.Sum, 1e-9)
}

func TestNewWithExistingIDResumes(t *testing.T) {
	ctx := context.Background()
	sessions := store.NewMemory()

	first := newTestConverter(t, sessions, "meter", "")
	first.AddData([]converter.Quantity{{Unit: "meter", Value: 1}})
	id, err := first.Save(ctx)
	require.NoError(t, err)

	// target unit in the resume call is ignored, the stored one wins
	resumed, err := converter.New(ctx, catalogOpener{}, sessions, "SI", "kilometer", units.GlobalScope(), id, time.Hour, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, 1, resumed.Accumulated())

	result, err := resumed.Convert(ctx)
	require.NoError(t, err)
	assert.Equal(t, "meter", result.TargetUnit)
}

func TestConvertDeletesSession(t *testing.T) {
	ctx := context.Background()
	sessions := store.NewMemory()

	conv := newTestConverter(t, sessions, "meter", "")
	conv.AddData([]converter.Quantity{{Unit: "meter", Value: 1}})
	id, err := conv.Save(ctx)
	require.NoError(t, err)

	resumed, err := converter.Load(ctx, catalogOpener{}, sessions, id, time.Hour, slog.Default())
	require.NoError(t, err)
	_, err = resumed.Convert(ctx)
	require.NoError(t, err)
	assert.Equal(t, converter.StatusClosed, resumed.Status())

	_, err = converter.Load(ctx, catalogOpener{}, sessions, id, time.Hour, slog.Default())
	require.ErrorIs(t, err, converter.ErrLoad)
}

func TestLoadUnknownID(t *testing.T) {
	_, err := converter.Load(context.Background(), catalogOpener{}, store.NewMemory(), "nope", time.Hour, slog.Default())
	require.ErrorIs(t, err, converter.ErrLoad)
}

func TestScopedCustomUnitsResolveOnResume(t *testing.T) {
	ctx := context.Background()
	sessions := store.NewMemory()
	owner := units.UserScope("u1")

	opener := customOpener{rows: []units.CustomRow{
		{Code: "league", Relation: "4828 meter", Owner: owner},
	}}

	conv, err := converter.New(ctx, opener, sessions, "SI", "meter", owner, "", time.Hour, slog.Default())
	require.NoError(t, err)
	conv.AddData([]converter.Quantity{{Unit: "league", Value: 1}})
	id, err := conv.Save(ctx)
	require.NoError(t, err)

	resumed, err := converter.Load(ctx, opener, sessions, id, time.Hour, slog.Default())
	require.NoError(t, err)
	result, err := resumed.Convert(ctx)
	require.NoError(t, err)
	require.Len(t, result.Details, 1)
	assert.InDelta(t, 4828, result.Sum, 1e-9)
}

type customOpener struct {
	rows []units.CustomRow
}

func (o customOpener) Open(_ context.Context, system string, scope units.Scope) (*units.Registry, error) {
	return units.Open(system, scope, o.rows, slog.Default())
}

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"unitd/internal/units"
	"unitd/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Memory
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) newUnitRow(system, code string, owner units.Scope) CustomUnitRow {
	return CustomUnitRow{
		ID:       uuid.NewString(),
		System:   system,
		Owner:    owner,
		Code:     code,
		Name:     code,
		Relation: "2 meter",
	}
}

func (s *MemoryStoreSuite) TestCreateAndList() {
	owner := units.UserScope("u1")
	s.Require().NoError(s.store.CreateUnit(s.ctx, s.newUnitRow("SI", "league", owner)))

	rows, err := s.store.ListUnits(s.ctx, "SI", owner)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("league", rows[0].Code)
	s.False(rows[0].CreatedAt.IsZero())
}

func (s *MemoryStoreSuite) TestListFiltersBySystem() {
	owner := units.UserScope("u1")
	s.Require().NoError(s.store.CreateUnit(s.ctx, s.newUnitRow("SI", "league", owner)))

	rows, err := s.store.ListUnits(s.ctx, "US", owner)
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *MemoryStoreSuite) TestVisibility() {
	s.Require().NoError(s.store.CreateUnit(s.ctx, s.newUnitRow("SI", "mine", units.UserScope("u1"))))
	s.Require().NoError(s.store.CreateUnit(s.ctx, s.newUnitRow("SI", "theirs", units.UserScope("u2"))))
	s.Require().NoError(s.store.CreateUnit(s.ctx, s.newUnitRow("SI", "shared", units.GlobalScope())))

	s.Run("user sees own plus global", func() {
		rows, err := s.store.ListUnits(s.ctx, "SI", units.UserScope("u1"))
		s.Require().NoError(err)
		codes := codesOf(rows)
		s.True(codes["mine"])
		s.True(codes["shared"])
		s.False(codes["theirs"])
	})

	s.Run("anonymous sees global only", func() {
		rows, err := s.store.ListUnits(s.ctx, "SI", units.GlobalScope())
		s.Require().NoError(err)
		codes := codesOf(rows)
		s.True(codes["shared"])
		s.False(codes["mine"])
	})

	s.Run("privileged sees all", func() {
		admin := units.UserScope("admin")
		admin.Privileged = true
		rows, err := s.store.ListUnits(s.ctx, "SI", admin)
		s.Require().NoError(err)
		s.Len(rows, 3)
	})
}

func (s *MemoryStoreSuite) TestKeyedVisibility() {
	owner := units.UserKeyedScope("u1", "acme")
	s.Require().NoError(s.store.CreateUnit(s.ctx, s.newUnitRow("SI", "keyed", owner)))

	rows, err := s.store.ListUnits(s.ctx, "SI", units.UserKeyedScope("u1", "acme"))
	s.Require().NoError(err)
	s.Len(rows, 1)

	rows, err = s.store.ListUnits(s.ctx, "SI", units.UserKeyedScope("u1", "other"))
	s.Require().NoError(err)
	s.Empty(rows)

	rows, err = s.store.ListUnits(s.ctx, "SI", units.UserScope("u1"))
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *MemoryStoreSuite) TestCreateUnitConflict() {
	owner := units.UserScope("u1")
	s.Require().NoError(s.store.CreateUnit(s.ctx, s.newUnitRow("SI", "league", owner)))

	err := s.store.CreateUnit(s.ctx, s.newUnitRow("SI", "league", owner))
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	s.Run("same code for another owner is fine", func() {
		s.NoError(s.store.CreateUnit(s.ctx, s.newUnitRow("SI", "league", units.UserScope("u2"))))
	})

	s.Run("same code in another system is fine", func() {
		s.NoError(s.store.CreateUnit(s.ctx, s.newUnitRow("US", "league", owner)))
	})
}

func (s *MemoryStoreSuite) TestDimensions() {
	owner := units.UserScope("u1")
	row := CustomDimensionRow{
		ID:       uuid.NewString(),
		System:   "SI",
		Owner:    owner,
		Code:     "[fuel_economy]",
		Name:     "Fuel economy",
		Relation: "[length] / [volume]",
	}
	s.Require().NoError(s.store.CreateDimension(s.ctx, row))

	s.Require().ErrorIs(s.store.CreateDimension(s.ctx, row), sentinel.ErrConflict)

	rows, err := s.store.ListDimensions(s.ctx, "SI", owner)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("[fuel_economy]", rows[0].Code)
}

func codesOf(rows []CustomUnitRow) map[string]bool {
	out := make(map[string]bool, len(rows))
	for _, row := range rows {
		out[row.Code] = true
	}
	return out
}

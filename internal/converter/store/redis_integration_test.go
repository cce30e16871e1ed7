//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"unitd/internal/converter"
	"unitd/internal/units"
	"unitd/pkg/platform/sentinel"
	"unitd/pkg/testutil/containers"
)

type RedisSessionSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *Redis
	ctx   context.Context
}

func (s *RedisSessionSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
	s.store = NewRedis(s.redis.Client)
}

func (s *RedisSessionSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func TestRedisSessionSuite(t *testing.T) {
	suite.Run(t, new(RedisSessionSuite))
}

func (s *RedisSessionSuite) newSession(id string) converter.Session {
	return converter.Session{
		ID:         id,
		System:     "SI",
		TargetUnit: "meter",
		Owner:      units.UserKeyedScope("u1", "acme"),
		Data:       []converter.Quantity{{Unit: "kilometer", Value: 2, Date: "2026-08-29"}},
		Status:     converter.StatusAccumulating,
	}
}

func (s *RedisSessionSuite) TestRoundTrip() {
	stored, err := s.store.Put(s.ctx, s.newSession("b1"), time.Hour)
	s.Require().NoError(err)
	s.Equal(int64(1), stored.Version)

	got, err := s.store.Get(s.ctx, "b1")
	s.Require().NoError(err)
	s.Equal("SI", got.System)
	s.Equal("meter", got.TargetUnit)
	s.Equal(units.UserKeyedScope("u1", "acme"), got.Owner)
	s.Require().Len(got.Data, 1)
	s.Equal("2026-08-29", got.Data[0].Date)
	s.Equal(converter.StatusAccumulating, got.Status)
}

func (s *RedisSessionSuite) TestGetUnknown() {
	_, err := s.store.Get(s.ctx, "missing")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisSessionSuite) TestOptimisticVersioning() {
	stored, err := s.store.Put(s.ctx, s.newSession("b1"), time.Hour)
	s.Require().NoError(err)

	stale := s.newSession("b1")
	_, err = s.store.Put(s.ctx, stale, time.Hour)
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	next, err := s.store.Put(s.ctx, stored, time.Hour)
	s.Require().NoError(err)
	s.Equal(int64(2), next.Version)
}

func (s *RedisSessionSuite) TestDelete() {
	_, err := s.store.Put(s.ctx, s.newSession("b1"), time.Hour)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(s.ctx, "b1"))
	s.Require().NoError(s.store.Delete(s.ctx, "b1"))

	_, err = s.store.Get(s.ctx, "b1")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisSessionSuite) TestTTL() {
	_, err := s.store.Put(s.ctx, s.newSession("b1"), 100*time.Millisecond)
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		_, err := s.store.Get(s.ctx, "b1")
		return err != nil
	}, 2*time.Second, 50*time.Millisecond)
}

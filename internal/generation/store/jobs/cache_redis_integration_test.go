//go:build integration

package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"datareplicator/internal/generation/models"
	"datareplicator/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	next  *MemoryStore
	cache *RedisCache
	ctx   context.Context
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *RedisCacheSuite) TearDownSuite() {
	_ = s.redis.Client.Close()
	_ = s.redis.Container.Terminate(s.ctx)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
	s.next = NewMemory()
	s.cache = NewRedisCache(s.next, s.redis.Client, time.Hour)
}

func (s *RedisCacheSuite) TestTerminalResultsAreCached() {
	result := models.NewJobResult("job-1")
	result.Status = models.StatusCompleted
	s.Require().NoError(s.cache.Save(s.ctx, result))

	exists, err := s.redis.Client.Exists(s.ctx, cacheKeyPrefix+"job-1").Result()
	s.Require().NoError(err)
	s.EqualValues(1, exists)

	got, err := s.cache.Get(s.ctx, "job-1")
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, got.Status)
}

func (s *RedisCacheSuite) TestInFlightResultsAreNotCached() {
	result := models.NewJobResult("job-2")
	result.Status = models.StatusInProgress
	s.Require().NoError(s.cache.Save(s.ctx, result))

	exists, err := s.redis.Client.Exists(s.ctx, cacheKeyPrefix+"job-2").Result()
	s.Require().NoError(err)
	s.EqualValues(0, exists)

	// The store of record still serves the in-flight result.
	got, err := s.cache.Get(s.ctx, "job-2")
	s.Require().NoError(err)
	s.Equal(models.StatusInProgress, got.Status)
}

func (s *RedisCacheSuite) TestCacheMissFallsThrough() {
	result := models.NewJobResult("job-3")
	s.Require().NoError(s.next.Save(s.ctx, result))

	got, err := s.cache.Get(s.ctx, "job-3")
	s.Require().NoError(err)
	s.Equal("job-3", got.JobID)
}

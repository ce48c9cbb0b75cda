package game

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisSequenceTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	seq    *RedisSequence
}

func (s *RedisSequenceTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s.seq = NewRedisSequence(s.client)
}

func (s *RedisSequenceTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisSequenceTestSuite(t *testing.T) {
	suite.Run(t, new(RedisSequenceTestSuite))
}

func (s *RedisSequenceTestSuite) TestNextSeedsOnlyOnce() {
	ctx := context.Background()

	n, err := s.seq.Next(ctx, "2024-05-01", 3)
	s.Require().NoError(err)
	s.Equal(4, n)

	// a later seed never rewinds an existing counter
	n, err = s.seq.Next(ctx, "2024-05-01", 0)
	s.Require().NoError(err)
	s.Equal(5, n)
}

func (s *RedisSequenceTestSuite) TestNextIsPerDay() {
	ctx := context.Background()

	_, err := s.seq.Next(ctx, "2024-05-01", 0)
	s.Require().NoError(err)
	n, err := s.seq.Next(ctx, "2024-05-02", 0)
	s.Require().NoError(err)

	s.Equal(1, n)
	s.True(s.mr.Exists("games:seq:2024-05-01"))
	s.Equal(sequenceTTL, s.mr.TTL("games:seq:2024-05-02"))
}

func (s *RedisSequenceTestSuite) TestNextExpires() {
	ctx := context.Background()

	_, err := s.seq.Next(ctx, "2024-05-01", 0)
	s.Require().NoError(err)
	s.mr.FastForward(sequenceTTL + time.Second)

	n, err := s.seq.Next(ctx, "2024-05-01", 2)
	s.Require().NoError(err)
	s.Equal(3, n)
}

func (s *RedisSequenceTestSuite) TestNextFailsWhenRedisIsDown() {
	s.mr.Close()

	_, err := s.seq.Next(context.Background(), "2024-05-01", 0)
	s.Error(err)
}

func (s *RedisSequenceTestSuite) TestMemorySequence() {
	ctx := context.Background()
	seq := NewMemorySequence()

	n, _ := seq.Next(ctx, "2024-05-01", 2)
	s.Equal(3, n)
	n, _ = seq.Next(ctx, "2024-05-01", 0)
	s.Equal(4, n)
	n, _ = seq.Next(ctx, "2024-05-02", 0)
	s.Equal(1, n)
	s.Len(seq.counts, 1)
}

package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// DatasetVersionKey returns the counter key bumped on every score-store
// mutation. Derived-view cache keys embed the current counter value, so a
// bump implicitly invalidates every cached projection.
func (r *CacheKeyStruct) DatasetVersionKey() string {
	return "dataset:version"
}

// RankingsKey returns the cache key for the all-rounds rankings projection
// at a given dataset version.
func (r *CacheKeyStruct) RankingsKey(version int64) string {
	return fmt.Sprintf("rankings:v%d", version)
}

// RankingsForRoundKey returns the cache key for a single round's rankings
// at a given dataset version.
func (r *CacheKeyStruct) RankingsForRoundKey(version int64, round int) string {
	return fmt.Sprintf("rankings:v%d:round:%d", version, round)
}

// StudentSeriesKey returns the cache key for a student's score series at a
// given dataset version.
func (r *CacheKeyStruct) StudentSeriesKey(version int64, studentID int) string {
	return fmt.Sprintf("series:v%d:student:%d", version, studentID)
}

// ChangesChannel returns the Redis PubSub channel carrying change events
// for the WebSocket change feed.
func (r *CacheKeyStruct) ChangesChannel() string {
	return "changes"
}

var CacheKey = NewCacheKeyStruct()

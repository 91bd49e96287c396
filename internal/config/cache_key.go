package config

import (
	"fmt"
	"net/url"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AttemptCounterKey returns the counter key holding the latest attempt number
// of a learner on a resource within a test.
func (r *CacheKeyStruct) AttemptCounterKey(testID, userSourcedID, resourceSourcedID string) string {
	return fmt.Sprintf("test:%s:user:%s:resource:%s:attempt",
		testID, url.QueryEscape(userSourcedID), url.QueryEscape(resourceSourcedID))
}

// TestPayloadKey returns the cache key for a test's definition and question bank.
func (r *CacheKeyStruct) TestPayloadKey(testID string) string {
	return fmt.Sprintf("test:%s:payload", testID)
}

var CacheKey = NewCacheKeyStruct()

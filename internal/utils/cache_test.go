package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheSetGet(t *testing.T) {
	c := GetCache()
	c.Set("test:key", "value", time.Minute)

	assert.Equal(t, "value", c.Get("test:key"))
}

func TestCacheExpiry(t *testing.T) {
	c := GetCache()
	c.Set("test:expiring", 42, 10*time.Millisecond)

	assert.Equal(t, 42, c.Get("test:expiring"))

	time.Sleep(20 * time.Millisecond)
	assert.Nil(t, c.Get("test:expiring"))
}

func TestCacheDelete(t *testing.T) {
	c := GetCache()
	c.Set("test:deleted", "x", time.Minute)
	c.Delete("test:deleted")

	assert.Nil(t, c.Get("test:deleted"))
}

func TestCacheMiss(t *testing.T) {
	assert.Nil(t, GetCache().Get("test:never-set"))
}

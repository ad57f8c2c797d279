package ratelimit

import (
	"testing"
	"time"

	"github.com/aristath/reconcache/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInstance domain.InstanceKey = "inst-1"

func TestUpdate_SourceDefaultsToWebsocketForUserData(t *testing.T) {
	c := New()
	defer c.Dispose()

	c.Update(testInstance, domain.RateLimitClientUserData, nil)
	c.Update(testInstance, domain.RateLimitClientREST, nil)

	entryUD, ok := c.base.Cache.Get(domain.RateLimitKey{Instance: testInstance, Client: domain.RateLimitClientUserData})
	require.True(t, ok)
	assert.Equal(t, "websocket", entryUD.Source)

	entryRest, ok := c.base.Cache.Get(domain.RateLimitKey{Instance: testInstance, Client: domain.RateLimitClientREST})
	require.True(t, ok)
	assert.Equal(t, "rest", entryRest.Source)
}

func TestGetSummary_ComputesRemainingAndResetIn(t *testing.T) {
	c := New()
	defer c.Dispose()

	c.Update(testInstance, domain.RateLimitClientREST, []domain.RateLimitRecord{
		{RateLimitType: domain.RateLimitTypeRequestWeight, Interval: domain.RateLimitIntervalMinute, IntervalNum: 1, Count: 400, Limit: 2400},
	})

	summaries := c.GetSummary(testInstance, domain.RateLimitClientREST)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2000, summaries[0].Remaining)
	assert.Greater(t, summaries[0].ResetInMs, int64(0))
	assert.LessOrEqual(t, summaries[0].ResetInMs, int64(60000))
}

func TestGetSummary_MissingReturnsNil(t *testing.T) {
	c := New()
	defer c.Dispose()
	assert.Nil(t, c.GetSummary(testInstance, domain.RateLimitClientREST))
}

func TestGetRateLimits_DefaultsWhenAbsent(t *testing.T) {
	c := New()
	defer c.Dispose()

	snapshot := c.GetRateLimits(testInstance)
	assert.Equal(t, LimitUsage{Used: 0, Limit: 2400}, snapshot.RequestWeight)
	assert.Equal(t, LimitUsage{Used: 0, Limit: 300}, snapshot.Orders)
}

func TestGetRateLimits_CollapsesAcrossClients(t *testing.T) {
	c := New()
	defer c.Dispose()

	c.Update(testInstance, domain.RateLimitClientREST, []domain.RateLimitRecord{
		{RateLimitType: domain.RateLimitTypeRequestWeight, Interval: domain.RateLimitIntervalMinute, IntervalNum: 1, Count: 100, Limit: 2400},
	})
	c.Update(testInstance, domain.RateLimitClientWebSocket, []domain.RateLimitRecord{
		{RateLimitType: domain.RateLimitTypeOrders, Interval: domain.RateLimitIntervalSecond, IntervalNum: 10, Count: 5, Limit: 300},
	})

	snapshot := c.GetRateLimits(testInstance)
	assert.Equal(t, 100, snapshot.RequestWeight.Used)
	assert.Equal(t, 5, snapshot.Orders.Used)
}

func TestMsUntilNextWindowBoundary_Day(t *testing.T) {
	now := time.Date(2026, 1, 1, 23, 59, 0, 0, time.UTC)
	ms := msUntilNextWindowBoundary(now, domain.RateLimitIntervalDay, 1)
	assert.Equal(t, int64(60000), ms)
}

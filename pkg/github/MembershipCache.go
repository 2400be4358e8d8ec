/*
 * Copyright (c) 2024. Devtron Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package github

import (
	"fmt"
	"sync"
	"time"

	"github.com/devtron-labs/dco-sensor/internals"
	"github.com/devtron-labs/dco-sensor/internals/middleware"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// MembershipCache caches organization membership lookups keyed by
// (organization, username). Entries expire after the configured TTL and
// concurrent lookups for the same key are coalesced into a single upstream
// request.
type MembershipCache struct {
	logger  *zap.SugaredLogger
	ttl     time.Duration
	mutex   sync.RWMutex
	entries map[string]membershipCacheEntry
	group   singleflight.Group
	cron    *cron.Cron
}

type membershipCacheEntry struct {
	isMember  bool
	expiresAt time.Time
}

func NewMembershipCache(logger *zap.SugaredLogger, configuration *internals.Configuration) (*MembershipCache, error) {
	cache := &MembershipCache{
		logger:  logger,
		ttl:     time.Duration(configuration.MembershipCacheTtlMin) * time.Minute,
		entries: make(map[string]membershipCacheEntry),
	}

	cronLogger := &CronLoggerImpl{logger: logger}
	c := cron.New(
		cron.WithChain(
			cron.SkipIfStillRunning(cronLogger),
			cron.Recover(cronLogger)))
	c.Start()
	_, err := c.AddFunc(fmt.Sprintf("@every %dm", configuration.MembershipCacheSweepMin), cache.Purge)
	if err != nil {
		logger.Errorw("error in scheduling membership cache sweep", "err", err)
		return nil, err
	}
	cache.cron = c
	return cache, nil
}

// Get returns the cached membership result for the key, fetching it at most
// once per TTL window regardless of how many lookups race on the same key.
func (c *MembershipCache) Get(org string, username string, fetch func() (bool, error)) (bool, error) {
	key := org + "/" + username

	c.mutex.RLock()
	entry, found := c.entries[key]
	c.mutex.RUnlock()
	if found && time.Now().Before(entry.expiresAt) {
		middleware.MembershipCacheRequestCounter.WithLabelValues("hit").Inc()
		return entry.isMember, nil
	}

	middleware.MembershipCacheRequestCounter.WithLabelValues("miss").Inc()
	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		// another caller may have refreshed the entry while we were waiting
		c.mutex.RLock()
		entry, found := c.entries[key]
		c.mutex.RUnlock()
		if found && time.Now().Before(entry.expiresAt) {
			return entry.isMember, nil
		}

		isMember, err := fetch()
		if err != nil {
			return false, err
		}
		c.mutex.Lock()
		c.entries[key] = membershipCacheEntry{isMember: isMember, expiresAt: time.Now().Add(c.ttl)}
		c.mutex.Unlock()
		return isMember, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// Purge drops all expired entries. Scheduled on the cache cron.
func (c *MembershipCache) Purge() {
	now := time.Now()
	c.mutex.Lock()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	remaining := len(c.entries)
	c.mutex.Unlock()
	c.logger.Debugw("membership cache sweep done", "entries", remaining)
}

func (c *MembershipCache) StopCron() {
	c.cron.Stop()
}

type CronLoggerImpl struct {
	logger *zap.SugaredLogger
}

func (impl *CronLoggerImpl) Info(msg string, keysAndValues ...interface{}) {
	impl.logger.Infow(msg, keysAndValues...)
}

func (impl *CronLoggerImpl) Error(err error, msg string, keysAndValues ...interface{}) {
	keysAndValues = append([]interface{}{"err", err}, keysAndValues...)
	impl.logger.Errorw(msg, keysAndValues...)
}

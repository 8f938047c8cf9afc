package gcache

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/groupcache/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func init() {
	viper.SetDefault("cache.stat.initial", time.Minute) // Wait before the first report
	viper.SetDefault("cache.stat.sleep", time.Minute*5) // Between reports after the first
}

func RegisterGroup(g *groupcache.Group) {
	gLock.Lock()
	defer gLock.Unlock()
	groups[g.Name()] = g
}

func RegisterPendingGroup(f GroupFunc) error {
	pLock.Lock()
	defer pLock.Unlock()

	if pendingDone {
		return ErrPendingGroupsCreated
	}

	pendingGroupsF = append(pendingGroupsF, f)
	return nil
}

// initPendingGroupF runs the pending group init if not already run
func (c *SharedGCache) initPendingGroupF() {
	log := c.log

	pLock.Lock()
	defer pLock.Unlock()

	if pendingDone {
		return
	}

	for _, gF := range pendingGroupsF {
		g := gF(log, c)
		RegisterGroup(g)
		log.WithField("group.name", g.Name()).Trace("Registered group")
	}
	pendingDone = true
}

// registerGroupF called from init to queue up a group to be created once the cache exists
func registerGroupF(groupName string, defaultCacheSizeMB int64, ttl time.Duration, groupGetterF GroupGetterFunc) {
	if defaultCacheSizeMB <= 0 {
		defaultCacheSizeMB = 16
	}
	cacheSizeKey := fmt.Sprintf("group.%s.bytes", groupName)
	ttlKey := fmt.Sprintf("group.%s.ttl", groupName)
	viper.SetDefault(cacheSizeKey, 1024*1024*defaultCacheSizeMB)
	viper.SetDefault(ttlKey, ttl)

	err := RegisterPendingGroup(func(log *logrus.Entry, sgc *SharedGCache) *groupcache.Group {
		log = log.WithFields(logrus.Fields{
			"group.name":       groupName,
			"cache.size.bytes": viper.GetInt64(cacheSizeKey),
		})
		log.Debug("Creating new group")
		ret := groupcache.NewGroup(
			groupName,
			viper.GetInt64(cacheSizeKey),
			groupcache.GetterFunc(func(ctx context.Context, key string, dest groupcache.Sink) error {
				log := log.WithField("groupcache.key", key)
				log.Trace("Running group getter")
				res, err := groupGetterF(ctx, log, sgc, key)
				cacheMetricsRegistry().observeGetter(groupName, err)
				if err != nil {
					log.WithError(err).Error("Problem running getter")
					return err
				}
				if err := dest.SetBytes(res, time.Now().Add(viper.GetDuration(ttlKey))); err != nil {
					log.WithError(err).Error("Problem returning data")
					return err
				}

				log.Trace("Ran getter successfully")
				return nil
			}),
		)
		// Log the group's stats every once in a while
		go sgc.logCacheStats(log, ret)
		return ret
	})
	if err != nil {
		panic(fmt.Sprintf("Problem setting up group %s: %v", groupName, err))
	}
}

// logCacheStats runs forever, exporting the group's stats as metrics and logging them every cache.stat.sleep
func (c *SharedGCache) logCacheStats(log *logrus.Entry, group *groupcache.Group) {
	sleepPeriod := viper.GetDuration("cache.stat.sleep")
	log = log.WithField("sleep.period", sleepPeriod)
	m := cacheMetricsRegistry()
	time.Sleep(viper.GetDuration("cache.stat.initial"))
	for {
		m.observeStats(group)
		log := log.WithFields(logrus.Fields{
			"group.stats.gets": group.Stats.Gets.Get(),
			"group.stats.hits": group.Stats.CacheHits.Get(),
			"group.stats.main": group.CacheStats(groupcache.MainCache),
			"group.stats.hot":  group.CacheStats(groupcache.HotCache),
		})

		if peers, err := c.FetchPeers(); err != nil {
			log = log.WithError(err)
		} else {
			m.peers.Set(float64(len(peers)))
			log = log.WithField("group.peers.count", len(peers))
		}

		log.Info("Cache stats")
		time.Sleep(sleepPeriod)
	}
}

func (c *SharedGCache) GetGroupByName(groupName string) (*groupcache.Group, error) {
	pLock.Lock()
	done := pendingDone
	pLock.Unlock()
	if !done {
		return nil, ErrPendingGroupsNotCreated
	}

	gLock.Lock()
	defer gLock.Unlock()

	grp, ok := groups[groupName]
	if !ok {
		return nil, ErrNoSuchGroup
	}

	return grp, nil
}

// GetAllGroups returns a list of all groupcache groups
func (c *SharedGCache) GetAllGroups() ([]*groupcache.Group, error) {
	pLock.Lock()
	done := pendingDone
	pLock.Unlock()
	if !done {
		return nil, ErrPendingGroupsNotCreated
	}

	gLock.Lock()
	defer gLock.Unlock()

	ret := make([]*groupcache.Group, 0, len(groups))
	for _, v := range groups {
		ret = append(ret, v)
	}
	return ret, nil
}

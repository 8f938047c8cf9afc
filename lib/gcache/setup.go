package gcache

import (
	"context"
	"errors"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/mailgun/groupcache/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// SharedGCache is this node's membership in the groupcache cluster. Peers find each other via a redis set.
type SharedGCache struct {
	lock      *sync.Mutex
	log       *logrus.Entry
	pool      *groupcache.HTTPPool
	myURI     string
	myAddr    string
	myPort    int
	rClient   *redis.Client
	peerDebug bool
}

type GroupFunc func(log *logrus.Entry, sgc *SharedGCache) *groupcache.Group
type GroupGetterFunc func(ctx context.Context, log *logrus.Entry, sgc *SharedGCache, key string) ([]byte, error)

var (
	cache                      *SharedGCache
	cLock                      = &sync.Mutex{}
	groups                     = make(map[string]*groupcache.Group)
	gLock                      = &sync.Mutex{}
	pendingGroupsF             = make([]GroupFunc, 0)
	pLock                      = &sync.Mutex{}
	pendingDone                bool
	ErrPendingGroupsCreated    = errors.New("pending groups already created")
	ErrPendingGroupsNotCreated = errors.New("pending groups not created yet")
	ErrNoSuchGroup             = errors.New("requested group doesn't exist")
	ErrNoGlobalCache           = errors.New("global groupcache not set up")
)

func init() {
	viper.SetDefault("groupcache.peers.key", "peers")
}

func NewSharedGCache(log *logrus.Entry, rClient *redis.Client) (*SharedGCache, error) {
	ret := SharedGCache{
		lock:      &sync.Mutex{},
		log:       log,
		rClient:   rClient,
		peerDebug: viper.GetBool("debug.peers") && viper.GetBool("debug"),
	}

	if err := ret.createPool(); err != nil {
		return nil, err
	}

	return &ret, nil
}

// NewGlobalSharedGCache creates the process wide cache and builds all registered groups
func NewGlobalSharedGCache(log *logrus.Entry, rClient *redis.Client) (*SharedGCache, error) {
	c, err := NewSharedGCache(log, rClient)
	if err != nil {
		return nil, err
	}

	cLock.Lock()
	cache = c
	cLock.Unlock()

	c.initPendingGroupF()

	return c, nil
}

// GlobalCache fetches the main, global, shared gcache
func GlobalCache() (*SharedGCache, error) {
	cLock.Lock()
	defer cLock.Unlock()
	if cache == nil {
		return nil, ErrNoGlobalCache
	}
	return cache, nil
}

package df

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// RedisPools hands out one lazily connected client per named pool (each pool is its own redis db)
type RedisPools struct {
	pools     map[string]*RedisPool
	poolsLock *sync.Mutex
	log       *logrus.Entry
}

type RedisPool struct {
	Name       string `json:"name"`
	parent     *RedisPools
	client     *redis.Client
	clientLock *sync.Mutex
}

var (
	redisPools      *RedisPools
	ErrOutOfRetries = errors.New("out of retries")
	ErrNoRedisURL   = errors.New("no redis url configured")
)

func init() {
	viper.SetDefault("redis.retries", 6)
	viper.SetDefault(MakeCfgKey(RPoolGroupCache, "db"), RPoolGroupCacheDB)
	viper.SetDefault(MakeCfgKey(RPoolMonitoring, "db"), RPoolMonitoringDB)
	viper.SetDefault(MakeCfgKey(RPoolSnapshots, "db"), RPoolSnapshotsDB)
}

func GlobalInit(log *logrus.Entry) {
	SetGlobalRedisPool(NewRedisPools(log))
}

func NewRedisPools(log *logrus.Entry) *RedisPools {
	return &RedisPools{
		pools:     make(map[string]*RedisPool),
		poolsLock: &sync.Mutex{},
		log:       log,
	}
}

func (p *RedisPools) newRedisPool(name string) *RedisPool {
	return &RedisPool{
		Name:       name,
		parent:     p,
		clientLock: &sync.Mutex{},
	}
}

// GetGlobal fetches the global redis client pooling
func GetGlobal() *RedisPools {
	if redisPools == nil {
		panic("GetGlobal called too early")
	}
	return redisPools
}

func SetGlobalRedisPool(rp *RedisPools) {
	if redisPools != nil {
		Log.Warn("Replacing global redis pools")
	}
	redisPools = rp
}

// GetCreatePool fetch the pool, create if needed
func (p *RedisPools) GetCreatePool(name string) *RedisPool {
	p.poolsLock.Lock()
	defer p.poolsLock.Unlock()

	if _, ok := p.pools[name]; !ok {
		p.pools[name] = p.newRedisPool(name)
	}

	return p.pools[name]
}

func (p *RedisPool) TestClient(ctx context.Context, client *redis.Client) bool {
	return client.Ping(ctx).Err() == nil
}

// GetClient returns the pool's client, reconnecting once if retry is set and the old one went bad
func (p *RedisPool) GetClient(retry bool) (*redis.Client, error) {
	p.clientLock.Lock()
	defer p.clientLock.Unlock()

	ctx := context.Background()

	if p.client != nil && p.TestClient(ctx, p.client) {
		return p.client, nil
	}
	if p.client != nil && !retry {
		return nil, ErrOutOfRetries
	}

	c, err := p.MakeClient(ctx, retry)
	if err != nil {
		return nil, err
	}
	p.client = c
	return p.client, nil
}

// MakeClient creates a new, tested client - doesn't persist it
func (p *RedisPool) MakeClient(ctx context.Context, retry bool) (*redis.Client, error) {
	log := p.parent.log.WithField("redis.pool", p.Name)
	parsedRedisURL, err := ParseRedisURL()
	if err != nil {
		log.WithError(err).Error("Problem getting parsed URL")
		return nil, err
	}
	passwd, _ := parsedRedisURL.User.Password()

	opts := redis.Options{
		Addr:       parsedRedisURL.Host,
		Password:   passwd,
		DB:         viper.GetInt(p.CfgKey("db")),
		MaxRetries: viper.GetInt("redis.retries"),
	}
	if parsedRedisURL.Scheme == "rediss" {
		opts.TLSConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	rdb := redis.NewClient(&opts)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		if retry {
			log.WithError(err).Warn("Redis ping failed - retrying once")
			return p.MakeClient(ctx, false)
		}
		return nil, err
	}

	return rdb, nil
}

func (p *RedisPool) CfgKey(last string) string {
	return MakeCfgKey(p.Name, last)
}

func MakeCfgKey(name string, last string) string {
	return fmt.Sprintf("redis.%s.%s", name, last)
}

// QuickClient is a shortcut to get a client from the given name
func QuickClient(name string, retry bool) (*redis.Client, error) {
	return GetGlobal().GetCreatePool(name).GetClient(retry)
}

// ParseRedisURL returns a parsed copy of the redis url - redis.url from config, else REDIS_URL
func ParseRedisURL() (*url.URL, error) {
	rawURL := viper.GetString("redis.url")
	if rawURL == "" {
		rawURL = os.Getenv("REDIS_URL")
	}
	if rawURL == "" {
		return nil, ErrNoRedisURL
	}
	log := Log.WithField("url.host", redactedHost(rawURL))

	parsedRedisURL, err := url.Parse(rawURL)
	if err != nil {
		log.WithError(err).Error("Failed to parse Redis URL")
		return nil, err
	}

	if _, ok := parsedRedisURL.User.Password(); !ok {
		log.Warn("No redis password")
	}

	return parsedRedisURL, nil
}

func redactedHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unparsable"
	}
	return u.Host
}

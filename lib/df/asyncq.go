package df

import (
	"crypto/tls"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/viper"
)

var aClient *asynq.Client

func init() {
	viper.SetDefault("asynq.rdb", 1)
	viper.SetDefault("redis.dialtimeout", time.Second*5)
	viper.SetDefault("redis.readtimeout", time.Second*15)
	viper.SetDefault("redis.writetimeout", time.Second*15)
	viper.SetDefault("redis.poolsize", 120)
}

// BuildAsyncQRedis makes the redis connection options asynq clients, servers and schedulers share
func BuildAsyncQRedis() asynq.RedisClientOpt {
	opts := asynq.RedisClientOpt{
		DB:           viper.GetInt("asynq.rdb"),
		DialTimeout:  viper.GetDuration("redis.dialtimeout"),
		ReadTimeout:  viper.GetDuration("redis.readtimeout"),
		WriteTimeout: viper.GetDuration("redis.writetimeout"),
		PoolSize:     viper.GetInt("redis.poolsize"),
	}

	parsedRedisURL, err := ParseRedisURL()
	if err != nil {
		Log.WithError(err).Error("Falling back to default redis address for asynq")
		return opts
	}
	opts.Addr = parsedRedisURL.Host
	opts.Password, _ = parsedRedisURL.User.Password()
	if parsedRedisURL.Scheme == "rediss" {
		opts.TLSConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}
	return opts
}

// CreateAsyncQClient creates a brand-new client - use GetAsyncQClient normally
func CreateAsyncQClient() *asynq.Client {
	return asynq.NewClient(BuildAsyncQRedis())
}

// GetAsyncQClient returns the shared asynq client
func GetAsyncQClient() *asynq.Client {
	if aClient == nil {
		aClient = CreateAsyncQClient()
	}
	return aClient
}

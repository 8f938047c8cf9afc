package gcache

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fragforce/fragdonate/lib/handler_global"
	"github.com/fragforce/fragdonate/lib/utils"
	"github.com/gin-gonic/gin"
	"github.com/mailgun/groupcache/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	InsecureToken = "INSECURE"
	TokenKey      = "Authorization"
	PoolPath      = "/_groupcache/"
)

type SecuredHeaderTransport struct {
	http.RoundTripper
	Token string
}

func init() {
	viper.SetDefault("groupcache.token", InsecureToken)
	viper.SetDefault("groupcache.advertise", "") // "", "wan" or an explicit address
	viper.SetDefault("groupcache.lookup.timeout", 10*time.Second)
}

func (ct *SecuredHeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Add(TokenKey, fmt.Sprintf("Bearer %s", ct.Token))
	return ct.RoundTripper.RoundTrip(req)
}

// GetPool returns pool to register to "/_groupcache/" web handler
func (c *SharedGCache) GetPool() *groupcache.HTTPPool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.pool
}

func (c *SharedGCache) createPool() error {
	log := c.log

	ctx, canc := context.WithTimeout(context.Background(), viper.GetDuration("groupcache.lookup.timeout"))
	myIP, err := utils.AdvertiseAddr(ctx, viper.GetString("groupcache.advertise"))
	canc()
	if err != nil {
		log.WithError(err).Error("Problem getting the address to advertise")
		return err
	}

	myPort := viper.GetInt("port") + 1
	myURI := fmt.Sprintf("http://%s:%d", myIP, myPort)
	log = log.WithFields(logrus.Fields{
		"my.ip":   myIP,
		"my.port": myPort,
		"my.uri":  myURI,
	})
	log.Trace("Have my uri built")

	c.lock.Lock()
	c.myURI = myURI
	c.myAddr = myIP
	c.myPort = myPort
	c.lock.Unlock()

	peers, err := c.FetchPeers()
	if err != nil {
		log.WithError(err).Warn("Starting without peers")
	}
	peers = append([]string{myURI}, peers...)

	pool := groupcache.NewHTTPPoolOpts(myURI, &groupcache.HTTPPoolOptions{
		BasePath: PoolPath,
		Transport: func(ctx context.Context) http.RoundTripper {
			if !viper.GetBool("debug") && viper.GetString("groupcache.token") == InsecureToken {
				log.Warn("INSECURE GROUPCACHE TOKEN! Please ensure 'groupcache.token' is set to a random value. ")
			}

			return &SecuredHeaderTransport{
				RoundTripper: http.DefaultTransport,
				Token:        viper.GetString("groupcache.token"),
			}
		},
	})
	pool.Set(peers...)

	c.lock.Lock()
	c.pool = pool
	c.lock.Unlock()

	return nil
}

// FetchPeers returns the peer list from redis and kicks off liveness checks of each
func (c *SharedGCache) FetchPeers() ([]string, error) {
	log := c.log.WithFields(logrus.Fields{
		"peers.key":    viper.GetString("groupcache.peers.key"),
		"peers.my.uri": c.myURI,
	})
	res, err := c.rClient.SMembers(context.Background(), viper.GetString("groupcache.peers.key")).Result()
	if err != nil {
		log.WithError(err).Error("Problem fetching the groupcache peer list")
		return res, err
	}
	if c.peerDebug {
		log.WithField("peers.pre", res).Debug("Fetched the groupcache peer list from redis")
	}

	// Won't help current but will help next time
	for _, peer := range res {
		if peer == c.myURI {
			continue
		}
		go c.checkPeer(log, peer)
	}

	return res, nil
}

// checkPeer checks if the given peer is up. If not, removes it from redis.
func (c *SharedGCache) checkPeer(log *logrus.Entry, uri string) {
	log = log.WithField("peer.uri", uri)

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/alive", uri), nil)
	if err != nil {
		log.WithError(err).Error("Problem creating request - Removing")
		c.removePeerLogged(log, uri)
		return
	}
	req.Header.Set(TokenKey, fmt.Sprintf("Bearer %s", viper.GetString("groupcache.token")))

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.WithError(err).Info("Problem running request - Removing")
		c.removePeerLogged(log, uri)
		return
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		log.Trace("Done checking peer - it's ok")
		return
	}
	log.WithField("status.code", res.StatusCode).Info("Problem with status code - Removing")
	c.removePeerLogged(log, uri)
}

func (c *SharedGCache) removePeerLogged(log *logrus.Entry, uri string) {
	if err := c.removePeer(uri); err != nil {
		log.WithError(err).Info("Error removing peer from peer list in redis")
	}
}

// removePeer removes a peer from the redis based peer list
func (c *SharedGCache) removePeer(peerURI string) error {
	log := c.log.WithFields(logrus.Fields{
		"peers.key": viper.GetString("groupcache.peers.key"),
		"peers.uri": peerURI,
	})
	if err := c.rClient.SRem(context.Background(), viper.GetString("groupcache.peers.key"), peerURI).Err(); err != nil {
		log.WithError(err).Error("Problem removing peer from the groupcache peer list")
		return err
	}
	log.Trace("Removed peer from groupcache peer list")
	return nil
}

// addMyPeer adds ourselves to the redis based peer list
func (c *SharedGCache) addMyPeer() error {
	log := c.log.WithFields(logrus.Fields{
		"peers.key":    viper.GetString("groupcache.peers.key"),
		"peers.my.uri": c.myURI,
	})

	if err := c.rClient.SAdd(context.Background(), viper.GetString("groupcache.peers.key"), c.myURI).Err(); err != nil {
		log.WithError(err).Error("Problem adding ourself to groupcache peer list")
		return err
	}
	log.Trace("Added ourselves to groupcache peer list")
	return nil
}

// Shutdown takes us out of the peer list
func (c *SharedGCache) Shutdown() error {
	return c.removePeer(c.myURI)
}

// StartRun serves the groupcache pool on port+1 in the background and announces us to the other peers
func (c *SharedGCache) StartRun(r *gin.Engine) error {
	log := c.log

	// Let someone pass in a gin engine if they already have one
	if r == nil {
		r = gin.New()
		r.Use(gin.Recovery())
	}

	r.Any(PoolPath+"*path", c.GroupCacheHandler)
	handler_global.RegisterGlobalHandlers(r) // Globals only - not web ones too

	go func() {
		if err := r.Run(fmt.Sprintf("0.0.0.0:%d", c.myPort)); err != nil {
			log.WithError(err).Fatal("Problem running groupcache GIN")
		}
	}()

	if err := c.addMyPeer(); err != nil {
		log.WithError(err).Error("Problem adding myself to peer list")
		return err
	}

	return nil
}

// GroupCacheHandler register via gin to "/_groupcache/"
func (c *SharedGCache) GroupCacheHandler(ctx *gin.Context) {
	if !ValidToken(ctx.GetHeader(TokenKey)) {
		c.log.WithField("remote.addr", ctx.ClientIP()).Info("Rejected groupcache request with bad token")
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"ok":    false,
			"error": "Forbidden",
		})
		return
	}

	c.GetPool().ServeHTTP(ctx.Writer, ctx.Request)
}

// ValidToken checks an Authorization header value against groupcache.token
func ValidToken(header string) bool {
	token := strings.TrimPrefix(header, "Bearer ")
	want := viper.GetString("groupcache.token")
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(want)) == 1
}

package kdb

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/viper"
)

var ErrBadTrustedCert = errors.New("invalid kafka trusted cert")

func init() {
	viper.SetDefault("kafka.conn.timeout", 10*time.Second)
	viper.SetDefault("kafka.conn.idle", 5*time.Minute)
	viper.SetDefault("kafka.write.timeout", 2*time.Minute)
}

// newTLSConfig builds mutual TLS from the runtime.kafka_* keys. nil, nil when no certs are configured.
func newTLSConfig() (*tls.Config, error) {
	log := df.Log

	trusted := viper.GetString("runtime.kafka_trusted_cert")
	if trusted == "" {
		log.Debug("No kafka trusted cert - not using TLS")
		return nil, nil
	}

	roots := x509.NewCertPool()
	if ok := roots.AppendCertsFromPEM([]byte(trusted)); !ok {
		log.WithError(ErrBadTrustedCert).Error("Invalid kafka trusted cert")
		return nil, ErrBadTrustedCert
	}

	cert, err := tls.X509KeyPair(
		[]byte(viper.GetString("runtime.kafka_client_cert")),
		[]byte(viper.GetString("runtime.kafka_client_cert_key")),
	)
	if err != nil {
		log.WithError(err).Error("Problem loading kafka client key pair")
		return nil, err
	}

	t := tls.Config{
		Certificates:       []tls.Certificate{cert},
		InsecureSkipVerify: true, // Hostnames always wrong - use cert func
		RootCAs:            roots,
		MinVersion:         tls.VersionTLS12,
		Renegotiation:      tls.RenegotiateNever,
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			vOpts := x509.VerifyOptions{Roots: roots}
			for _, rawCert := range rawCerts {
				c, err := x509.ParseCertificate(rawCert)
				if err != nil {
					return err
				}
				if _, err := c.Verify(vOpts); err != nil {
					return err
				}
			}
			return nil
		},
	}

	log.Trace("Created tls config")
	return &t, nil
}

func newKafkaTransport(ctx context.Context) (*kafka.Transport, error) {
	log := df.Log.WithContext(ctx)

	tlsConfig, err := newTLSConfig()
	if err != nil {
		log.WithError(err).Error("Problem creating new tls config")
		return nil, err
	}

	t := &kafka.Transport{
		DialTimeout: viper.GetDuration("kafka.conn.timeout"),
		IdleTimeout: viper.GetDuration("kafka.conn.idle"),
		ClientID: fmt.Sprintf(
			"%v-%v",
			viper.GetString("runtime.app_name"),
			viper.GetString("runtime.dyno_id"),
		),
		TLS:     tlsConfig,
		Context: ctx,
	}

	log.Trace("Created new kafka transport")
	return t, nil
}

// parseBrokers turns kafka.urls (kafka+ssl://host:port) into host:port addrs
func parseBrokers(kURLs []string) ([]string, error) {
	addrs := make([]string, 0, len(kURLs))
	for _, kURL := range kURLs {
		u, err := url.ParseRequestURI(kURL)
		if err != nil {
			df.Log.WithError(err).WithField("url.raw", kURL).Error("Problem making url into url")
			return nil, err
		}
		addrs = append(addrs, u.Host)
	}
	return addrs, nil
}

func NewKafkaWriter(ctx context.Context, topic string) (*kafka.Writer, error) {
	log := df.Log.WithField("kafka.topic", topic).WithContext(ctx)

	transport, err := newKafkaTransport(ctx)
	if err != nil {
		log.WithError(err).Error("Problem creating kafka transport")
		return nil, err
	}

	addrs, err := parseBrokers(viper.GetStringSlice("kafka.urls"))
	if err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           viper.GetDuration("kafka.write.timeout"),
		RequiredAcks:           kafka.RequireAll,
		Transport:              transport,
		AllowAutoTopicCreation: false, // We can't do this in Heroku
	}

	log.WithField("kafka.brokers", addrs).Trace("Created kafka writer obj")
	return writer, nil
}

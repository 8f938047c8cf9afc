package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withLookup(t *testing.T, body string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	orig := viper.GetString("wan.iplookup")
	viper.Set("wan.iplookup", srv.URL)
	t.Cleanup(func() { viper.Set("wan.iplookup", orig) })
}

func TestGetExternalIP(t *testing.T) {
	withLookup(t, `{"ip": "203.0.113.7", "message": "ok"}`)

	ip, err := GetExternalIP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", ip)
}

func TestGetExternalIPEmpty(t *testing.T) {
	withLookup(t, `{"message": "rate limited"}`)

	_, err := GetExternalIP(context.Background())
	assert.ErrorContains(t, err, "rate limited")
}

func TestAdvertiseAddr(t *testing.T) {
	withLookup(t, `{"ip": "203.0.113.8"}`)

	ip, err := AdvertiseAddr(context.Background(), "10.1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "10.1.2.3", ip)

	ip, err = AdvertiseAddr(context.Background(), AdvertiseWAN)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.8", ip)
}

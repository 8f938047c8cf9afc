package gcache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/fragforce/fragdonate/lib/eventdetails"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/ptdave20/donordrive"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubEvents(t *testing.T, events []donordrive.Event, err error) {
	t.Helper()
	orig := eventLister
	eventLister = func() ([]donordrive.Event, error) { return events, err }
	t.Cleanup(func() { eventLister = orig })
}

func TestBuildEventDetailsConfigWins(t *testing.T) {
	ev := &donordrive.Event{
		EventId: 552,
		Name:    "Extra Life 2022",
		Links:   map[string]string{"donate": "https://dd.example/donate", "rules": "https://dd.example/rules"},
	}
	cfg := EventConfig{
		DonateURL:       "https://fragforce.org/donate",
		MinimumDonation: 5,
		Step:            1,
	}

	ed := BuildEventDetails(ev, cfg, nil)

	assert.Equal(t, "Extra Life 2022", ed.ReceiverName)
	assert.Equal(t, "https://fragforce.org/donate", ed.DonateURL)
	assert.Equal(t, "https://dd.example/rules", ed.RulesURL)
	assert.Equal(t, "", ed.PrizesURL)
	assert.True(t, ed.MaximumDonation.IsUnbounded())
	assert.NotNil(t, ed.AvailableIncentives)
	assert.NotNil(t, ed.Prizes)
}

func TestBuildEventDetailsCatalogIsCopied(t *testing.T) {
	catalog := &eventdetails.EventDetails{
		AvailableIncentives: map[string]eventdetails.Incentive{"1": {ID: 1, Name: "Goal"}},
		Prizes:              []eventdetails.Prize{{ID: 1}, {ID: 2}},
	}

	ed := BuildEventDetails(nil, EventConfig{MaximumDonation: 500}, catalog)
	catalog.Prizes[0].ID = 99
	catalog.AvailableIncentives["2"] = eventdetails.Incentive{}

	assert.Equal(t, eventdetails.Bound(500), ed.MaximumDonation)
	assert.Equal(t, 1, ed.Prizes[0].ID)
	assert.Len(t, ed.AvailableIncentives, 1)
}

func TestFindEvent(t *testing.T) {
	stubEvents(t, []donordrive.Event{{EventId: 1, Name: "one"}, {EventId: 2, Name: "two"}}, nil)

	ev, err := FindEvent(2)
	require.NoError(t, err)
	assert.Equal(t, "two", ev.Name)

	_, err = FindEvent(3)
	assert.True(t, errors.Is(err, ErrNoSuchEvent))
}

func TestFetchEventDetailsJSON(t *testing.T) {
	stubEvents(t, nil, errors.New("donordrive down"))

	catalog := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(catalog, []byte(`
availableIncentives:
  "7":
    id: 7
    name: Play one handed
prizes:
  - id: 1
    name: Mug
`), 0o644))

	viper.Set(EventCfgKey(77, "receivername"), "Fragforce")
	viper.Set(EventCfgKey(77, "catalog"), catalog)
	t.Cleanup(func() {
		viper.Set(EventCfgKey(77, "receivername"), nil)
		viper.Set(EventCfgKey(77, "catalog"), nil)
	})

	data, err := FetchEventDetailsJSON(logrus.NewEntry(logrus.New()), 77)
	require.NoError(t, err)

	cached, err := df.NewCachedEventDetailsFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, 77, cached.EventID)
	assert.Equal(t, data, cached.RawData)
	assert.Equal(t, "Fragforce", cached.EventDetails.ReceiverName)
	assert.Equal(t, eventdetails.DefaultMinimumDonation, cached.EventDetails.MinimumDonation)
	assert.Equal(t, eventdetails.DefaultStep, cached.EventDetails.Step)
	assert.True(t, cached.EventDetails.MaximumDonation.IsUnbounded())
	assert.Equal(t, "Play one handed", cached.EventDetails.AvailableIncentives["7"].Name)
	assert.Equal(t, "Mug", cached.EventDetails.Prizes[0].Name)
}

func TestValidToken(t *testing.T) {
	viper.Set("groupcache.token", "s3cret")
	t.Cleanup(func() { viper.Set("groupcache.token", InsecureToken) })

	assert.True(t, ValidToken("Bearer s3cret"))
	assert.False(t, ValidToken("Bearer nope"))
	assert.False(t, ValidToken(""))

	viper.Set("groupcache.token", "")
	assert.False(t, ValidToken(""))
	assert.False(t, ValidToken("Bearer "))
}

func TestObserveGetter(t *testing.T) {
	m := cacheMetricsRegistry()
	before := testutil.ToFloat64(m.getter.WithLabelValues("TestGroup", "error"))

	m.observeGetter("TestGroup", errors.New("boom"))
	m.observeGetter("TestGroup", nil)

	assert.Equal(t, before+1, testutil.ToFloat64(m.getter.WithLabelValues("TestGroup", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.getter.WithLabelValues("TestGroup", "ok")))
}

package gcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/fragforce/fragdonate/lib/eventdetails"
	"github.com/mailgun/groupcache/v2"
	"github.com/ptdave20/donordrive"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	GroupEventDetails = "EventDetails"
)

var (
	ErrNoSuchEvent = errors.New("no such donordrive event")
	// eventLister is swapped out in tests
	eventLister = donordrive.GetEvents
)

func init() {
	viper.SetDefault("donordrive.url", donordrive.ExtraLifeUrl)
	registerGroupF(GroupEventDetails, 64, time.Minute*5, eventDetailsGroup)
}

// EventConfig is what the operator configures per event under event.<id>
type EventConfig struct {
	ReceiverName    string
	PrizesURL       string
	RulesURL        string
	DonateURL       string
	MinimumDonation float64
	MaximumDonation float64 // <= 0 is unbounded
	Step            float64
	Catalog         string // yaml/json file with availableIncentives and prizes
}

func EventCfgKey(eventID int, last string) string {
	return fmt.Sprintf("event.%d.%s", eventID, last)
}

// GetEventConfig reads event.<id>.* from viper
func GetEventConfig(eventID int) EventConfig {
	min := viper.GetFloat64(EventCfgKey(eventID, "minimumdonation"))
	if !viper.IsSet(EventCfgKey(eventID, "minimumdonation")) {
		min = eventdetails.DefaultMinimumDonation
	}
	step := viper.GetFloat64(EventCfgKey(eventID, "step"))
	if !viper.IsSet(EventCfgKey(eventID, "step")) {
		step = eventdetails.DefaultStep
	}
	return EventConfig{
		ReceiverName:    viper.GetString(EventCfgKey(eventID, "receivername")),
		PrizesURL:       viper.GetString(EventCfgKey(eventID, "prizesurl")),
		RulesURL:        viper.GetString(EventCfgKey(eventID, "rulesurl")),
		DonateURL:       viper.GetString(EventCfgKey(eventID, "donateurl")),
		MinimumDonation: min,
		MaximumDonation: viper.GetFloat64(EventCfgKey(eventID, "maximumdonation")),
		Step:            step,
		Catalog:         viper.GetString(EventCfgKey(eventID, "catalog")),
	}
}

// BuildEventDetails merges what DonorDrive knows about an event with the operator's config and catalog.
// Config wins over DonorDrive where both have a value.
func BuildEventDetails(ev *donordrive.Event, cfg EventConfig, catalog *eventdetails.EventDetails) eventdetails.EventDetails {
	ret := eventdetails.EventDetails{
		ReceiverName:    cfg.ReceiverName,
		PrizesURL:       cfg.PrizesURL,
		RulesURL:        cfg.RulesURL,
		DonateURL:       cfg.DonateURL,
		MinimumDonation: cfg.MinimumDonation,
		MaximumDonation: eventdetails.Unbounded,
		Step:            cfg.Step,
	}
	if cfg.MaximumDonation > 0 {
		ret.MaximumDonation = eventdetails.Bound(cfg.MaximumDonation)
	}

	if ev != nil {
		if ret.ReceiverName == "" {
			ret.ReceiverName = ev.Name
		}
		if ret.DonateURL == "" {
			ret.DonateURL = ev.Links["donate"]
		}
		if ret.PrizesURL == "" {
			ret.PrizesURL = ev.Links["prizes"]
		}
		if ret.RulesURL == "" {
			ret.RulesURL = ev.Links["rules"]
		}
	}

	if catalog != nil {
		ret.AvailableIncentives = eventdetails.CloneIncentives(catalog.AvailableIncentives)
		ret.Prizes = eventdetails.ClonePrizes(catalog.Prizes)
	} else {
		ret.AvailableIncentives = map[string]eventdetails.Incentive{}
		ret.Prizes = []eventdetails.Prize{}
	}
	return ret
}

// FindEvent looks the event up in the DonorDrive event listing
func FindEvent(eventID int) (*donordrive.Event, error) {
	donordrive.SetBaseUrl(viper.GetString("donordrive.url"))
	events, err := eventLister()
	if err != nil {
		return nil, err
	}
	for idx := range events {
		if events[idx].EventId == eventID {
			return &events[idx], nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrNoSuchEvent, eventID)
}

func eventDetailsGroup(ctx context.Context, log *logrus.Entry, sgc *SharedGCache, key string) ([]byte, error) {
	eventID, err := strconv.Atoi(key)
	if err != nil {
		log.WithError(err).Error("Problem converting event id from str to int")
		return nil, err
	}
	log = log.WithField("event.id", eventID)

	return FetchEventDetailsJSON(log, eventID)
}

// FetchEventDetailsJSON builds the cached event details for eventID straight from the source (no cache)
func FetchEventDetailsJSON(log *logrus.Entry, eventID int) ([]byte, error) {
	cfg := GetEventConfig(eventID)

	log.Debug("Going to fetch event from donordrive")
	ev, err := FindEvent(eventID)
	if err != nil {
		// Config alone is enough to run a donate page
		log.WithError(err).Warn("Problem fetching event from donordrive - using config only")
		ev = nil
	} else {
		log = log.WithField("event.name", ev.Name)
	}

	var catalog *eventdetails.EventDetails
	if cfg.Catalog != "" {
		c, err := eventdetails.LoadFile(cfg.Catalog)
		if err != nil {
			log.WithError(err).WithField("catalog", cfg.Catalog).Error("Problem loading catalog")
			return nil, err
		}
		catalog = &c
	}

	cached := df.CachedEventDetails{
		EventID:      eventID,
		EventDetails: BuildEventDetails(ev, cfg, catalog),
		FetchedAt:    time.Now().UTC(),
	}
	res, err := json.Marshal(&cached)
	if err != nil {
		log.WithError(err).Error("Problem marshaling event details into json")
		return nil, err
	}
	log.Debug("Built event details")
	return res, nil
}

// GetEventDetails reads through the EventDetails group
func (c *SharedGCache) GetEventDetails(ctx context.Context, eventID int) (*df.CachedEventDetails, error) {
	log := c.log.WithField("event.id", eventID)

	grp, err := c.GetGroupByName(GroupEventDetails)
	if err != nil {
		log.WithError(err).Error("Problem getting gca group by name")
		return nil, err
	}

	var data []byte
	if err := grp.Get(ctx, strconv.Itoa(eventID), groupcache.AllocatingByteSliceSink(&data)); err != nil {
		log.WithError(err).Error("Couldn't get entry from event details group cache")
		return nil, err
	}

	return df.NewCachedEventDetailsFromJSON(data)
}

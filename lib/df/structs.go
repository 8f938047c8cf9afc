package df

import (
	"encoding/json"
	"time"

	"github.com/fragforce/fragdonate/lib/eventdetails"
)

type CachedEventDetails struct {
	EventID      int                       `json:"event-id"`
	EventDetails eventdetails.EventDetails `json:"event-details"`
	FetchedAt    time.Time                 `json:"fetched-at"` // Use GetFetchedAt()
	RawData      []byte                    `json:"-"`          // Raw copy of data - just in case
}

func (c *CachedEventDetails) GetFetchedAt() string {
	return c.FetchedAt.UTC().Format(time.RFC3339Nano)
}

// Action wraps the cached details as a store action
func (c *CachedEventDetails) Action() eventdetails.LoadEventDetails {
	return eventdetails.LoadEventDetails{EventDetails: c.EventDetails}
}

// NewCachedEventDetailsFromJSON decodes a CachedEventDetails and keeps the raw bytes on it
func NewCachedEventDetailsFromJSON(data []byte) (*CachedEventDetails, error) {
	ret := CachedEventDetails{
		EventDetails: eventdetails.EventDetails{MaximumDonation: eventdetails.Unbounded},
	}
	if err := json.Unmarshal(data, &ret); err != nil {
		return nil, err
	}
	ret.RawData = data
	return &ret, nil
}

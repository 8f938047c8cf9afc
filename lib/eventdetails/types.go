package eventdetails

import (
	"math"
	"time"
)

const (
	DefaultMinimumDonation = 1.0
	DefaultStep            = 0.01
)

// EventDetails is everything the donate page needs to know about the event being donated to
type EventDetails struct {
	ReceiverName        string               `json:"receiverName" yaml:"receiverName"`
	PrizesURL           string               `json:"prizesUrl" yaml:"prizesUrl"`
	RulesURL            string               `json:"rulesUrl" yaml:"rulesUrl"`
	DonateURL           string               `json:"donateUrl" yaml:"donateUrl"`
	MinimumDonation     float64              `json:"minimumDonation" yaml:"minimumDonation"`
	MaximumDonation     Bound                `json:"maximumDonation" yaml:"maximumDonation"`
	Step                float64              `json:"step" yaml:"step"`
	AvailableIncentives map[string]Incentive `json:"availableIncentives" yaml:"availableIncentives"`
	Prizes              []Prize              `json:"prizes" yaml:"prizes"`
}

// Incentive is something a donor can put money towards - a goal or a bid war.
// Nothing in this package looks inside one.
type Incentive struct {
	ID          int               `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	RunName     string            `json:"runname,omitempty" yaml:"runname,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Goal        *float64          `json:"goal,omitempty" yaml:"goal,omitempty"` // nil for bid wars
	Amount      float64           `json:"amount" yaml:"amount"`
	State       string            `json:"state,omitempty" yaml:"state,omitempty"`
	Options     []IncentiveOption `json:"options,omitempty" yaml:"options,omitempty"`
	Custom      bool              `json:"custom,omitempty" yaml:"custom,omitempty"` // donors may write in their own option
}

type IncentiveOption struct {
	ID          int     `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Amount      float64 `json:"amount" yaml:"amount"`
}

// Prize is an entry in the giveaway list. Order in EventDetails.Prizes is display order.
type Prize struct {
	ID           int        `json:"id" yaml:"id"`
	Name         string     `json:"name" yaml:"name"`
	Category     string     `json:"category,omitempty" yaml:"category,omitempty"`
	Image        string     `json:"image,omitempty" yaml:"image,omitempty"`
	Description  string     `json:"description,omitempty" yaml:"description,omitempty"`
	MinimumBid   float64    `json:"minimumbid" yaml:"minimumbid"`
	MaximumBid   float64    `json:"maximumbid,omitempty" yaml:"maximumbid,omitempty"`
	SumDonations bool       `json:"sumdonations,omitempty" yaml:"sumdonations,omitempty"`
	StartTime    *time.Time `json:"starttime,omitempty" yaml:"starttime,omitempty"`
	EndTime      *time.Time `json:"endtime,omitempty" yaml:"endtime,omitempty"`
	Provided     string     `json:"provided,omitempty" yaml:"provided,omitempty"`
}

// Bound is a donation limit that may be unbounded (+Inf)
type Bound float64

// Unbounded is the maximum used when an event doesn't cap donations
var Unbounded = Bound(math.Inf(1))

func (b Bound) IsUnbounded() bool {
	return math.IsInf(float64(b), 1)
}

// Allows reports if amount is at or under the bound
func (b Bound) Allows(amount float64) bool {
	return amount <= float64(b)
}

// Default returns the state used before any event details have been loaded
func Default() *EventDetails {
	return &EventDetails{
		MinimumDonation:     DefaultMinimumDonation,
		MaximumDonation:     Unbounded,
		Step:                DefaultStep,
		AvailableIncentives: map[string]Incentive{},
		Prizes:              []Prize{},
	}
}

package eventdetails

// Type is the wire tag of an action
type Type string

const (
	TypeLoadEventDetails Type = "LOAD_EVENT_DETAILS"
)

// Action is anything that can be dispatched at the store. The set is closed - see the types below.
type Action interface {
	Type() Type
	action()
}

// LoadEventDetails replaces the whole state with EventDetails
type LoadEventDetails struct {
	EventDetails EventDetails `json:"eventDetails"`
}

func (LoadEventDetails) Type() Type { return TypeLoadEventDetails }
func (LoadEventDetails) action()    {}

// Unrecognized is an action meant for some other part of the app. It never changes event details.
type Unrecognized struct {
	Kind Type `json:"type"`
}

func (u Unrecognized) Type() Type { return u.Kind }
func (Unrecognized) action()      {}

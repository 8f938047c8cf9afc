package eventdetails

// Reduce returns the state that follows state once action is applied.
// A nil state is treated as Default(). Actions that don't touch event details
// return state itself so callers can compare pointers to spot no-ops.
func Reduce(state *EventDetails, action Action) *EventDetails {
	if state == nil {
		state = Default()
	}

	switch a := action.(type) {
	case LoadEventDetails:
		return load(a.EventDetails)
	case *LoadEventDetails:
		if a == nil {
			return state
		}
		return load(a.EventDetails)
	default:
		return state
	}
}

// load takes the payload wholesale but never keeps the payload's containers
func load(ed EventDetails) *EventDetails {
	ed.AvailableIncentives = CloneIncentives(ed.AvailableIncentives)
	ed.Prizes = ClonePrizes(ed.Prizes)
	return &ed
}

// CloneIncentives is a shallow copy - the Incentive values are copied, anything they point at isn't
func CloneIncentives(src map[string]Incentive) map[string]Incentive {
	dst := make(map[string]Incentive, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// ClonePrizes is a shallow, order preserving copy
func ClonePrizes(src []Prize) []Prize {
	dst := make([]Prize, len(src))
	copy(dst, src)
	return dst
}

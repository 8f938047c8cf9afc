package evdb

import (
	"encoding/json"

	"github.com/fragforce/fragdonate/lib/df"
)

func NewBaseMonitor(monName string) *BaseMonitor {
	return &BaseMonitor{
		MonitorName: monName,
	}
}

func NewEventMonitor(eventID int) *EventMonitor {
	return &EventMonitor{
		BaseMonitor: NewBaseMonitor(df.MonitorNameEvent),
		EventID:     eventID,
	}
}

func NewEventMonitorFromJSON(data []byte) (*EventMonitor, error) {
	ret := EventMonitor{}
	if err := json.Unmarshal(data, &ret); err != nil {
		return nil, err
	}
	if ret.BaseMonitor == nil {
		ret.BaseMonitor = NewBaseMonitor(df.MonitorNameEvent)
	}
	return &ret, nil
}

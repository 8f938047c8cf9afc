package evdb

type BaseMonitor struct {
	MonitorName string `json:"monitor-name"`
}

// EventMonitor marks an event as one the workers should keep refreshing
type EventMonitor struct {
	*BaseMonitor
	EventID int `json:"event-id"`
}

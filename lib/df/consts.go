package df

const (
	// 	Monitor types - Names
	MonitorNameEvent = "Event"
	// 	Request Types - URL Pattern
	RTypeEvent = "event"
	//	Redis Pool Names & Redis Database Numbers
	//	The defaults are set in `df/redis.go`
	RPoolGroupCache   = "groupcache"
	RPoolGroupCacheDB = 2
	RPoolMonitoring   = "monitoring"
	RPoolMonitoringDB = 3
	RPoolSnapshots    = "snapshots"
	RPoolSnapshotsDB  = 4
	//	Kafka topic config keys - see `kdb/topics.go`
	KTopicEventDetails = "eventdetails"
	KTopicActions      = "actions"
	//	Kafka header keys
	KHeaderKeyEventID      = "event-id"
	KHeaderKeyReceiverName = "receiver-name"
	KHeaderKeyFetchedAt    = "fetched-at"
	KHeaderKeyActionType   = "action-type"
)

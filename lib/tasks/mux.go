package tasks

import "github.com/hibiken/asynq"

// GetMux maps names to handlers
func GetMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskEventDetailsRefreshAll, HandleEventDetailsRefreshAllTask)
	mux.HandleFunc(TaskEventDetailsRefresh, HandleEventDetailsRefreshTask)
	mux.HandleFunc(TaskEventDetailsLoad, HandleEventDetailsLoadTask)
	return mux
}

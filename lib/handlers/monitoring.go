package handlers

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/fragforce/fragdonate/lib/evdb"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RegisterTypeResponse struct {
	*BaseResponse
}

type RTypeEventRequest struct {
	EventID int    `json:"event-id" binding:"required,min=1"`
	Active  string `json:"active"` // Go duration, empty for event.active
}

type TypeHandlerF func(rType string, c *gin.Context, log *logrus.Entry) (int, error)

// EventMonitorF switches monitoring on - swapped out in tests
type EventMonitorF func(c *gin.Context, eventID int, active time.Duration) error

var (
	ErrNoSuchType                  = errors.New("no such register type")
	typeHandlers                   = make(map[string]TypeHandlerF)
	typeHandlersLock               = &sync.Mutex{}
	setEventMonitor  EventMonitorF = func(c *gin.Context, eventID int, active time.Duration) error {
		return evdb.NewEventMonitor(eventID).SetUpdateMonitoring(c, active)
	}
)

func init() {
	RegisterTypeHandler(df.RTypeEvent, RTypeEventHandler)
}

func RTypeEventHandler(rType string, c *gin.Context, log *logrus.Entry) (int, error) {
	er := RTypeEventRequest{}
	if err := c.ShouldBindJSON(&er); err != nil {
		log.WithError(err).Info("Problem binding JSON in request")
		return http.StatusBadRequest, err
	}
	log = log.WithField("event.id", er.EventID)

	var active time.Duration
	if er.Active != "" {
		d, err := time.ParseDuration(er.Active)
		if err != nil {
			log.WithError(err).Info("Bad active duration")
			return http.StatusBadRequest, err
		}
		active = d
	}

	if err := setEventMonitor(c, er.EventID, active); err != nil {
		log.WithError(err).Error("Problem enabling monitoring")
		return http.StatusInternalServerError, err
	}

	return http.StatusOK, nil
}

func RegisterTypeHandler(name string, f TypeHandlerF) {
	typeHandlersLock.Lock()
	defer typeHandlersLock.Unlock()

	typeHandlers[name] = f
}

func getTypeHandler(name string) (TypeHandlerF, bool) {
	typeHandlersLock.Lock()
	defer typeHandlersLock.Unlock()

	f, ok := typeHandlers[name]
	return f, ok
}

func RegisterType(c *gin.Context) {
	rType := c.Param("rtype")
	log := df.Log.WithFields(logrus.Fields{
		"register.type": rType,
	}).WithContext(c)

	handlerF, ok := getTypeHandler(rType)
	if !ok {
		log.WithError(ErrNoSuchType).Info("Invalid register type requested")
		c.JSON(http.StatusNotFound, NewErrorResp(ErrNoSuchType, "Invalid register type requested"))
		return
	}

	scode, err := handlerF(rType, c, log)
	// If not set then just assume 200 or 500
	if scode == 0 {
		scode = http.StatusOK
		if err != nil {
			scode = http.StatusInternalServerError
		}
	}
	log = log.WithField("ret.status.code", scode)
	if err != nil {
		log.WithError(err).Info("Problem registering")
		c.JSON(scode, NewErrorResp(err, "Problem registering"))
		return
	}

	log.Trace("All done")
	c.JSON(scode, RegisterTypeResponse{
		BaseResponse: NewBaseResp(),
	})
}

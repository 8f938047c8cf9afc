package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/fragforce/fragdonate/lib/eventdetails"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ActionPublisher records dispatched actions somewhere else (kafka in production)
type ActionPublisher interface {
	PublishAction(ctx context.Context, eventID int, action eventdetails.Action) error
}

// EventDetails serves one event's store
type EventDetails struct {
	EventID   int
	Store     *eventdetails.Store
	Publisher ActionPublisher // optional
}

type EventDetailsResponse struct {
	*BaseResponse
	EventID      int                        `json:"event-id"`
	EventDetails *eventdetails.EventDetails `json:"eventDetails"`
}

type DispatchResponse struct {
	*BaseResponse
	Changed      bool                       `json:"changed"`
	EventDetails *eventdetails.EventDetails `json:"eventDetails"`
}

func NewEventDetails(eventID int, store *eventdetails.Store, publisher ActionPublisher) *EventDetails {
	return &EventDetails{
		EventID:   eventID,
		Store:     store,
		Publisher: publisher,
	}
}

func (h *EventDetails) GetEventDetails(c *gin.Context) {
	c.JSON(http.StatusOK, EventDetailsResponse{
		BaseResponse: NewBaseResp(),
		EventID:      h.EventID,
		EventDetails: h.Store.State(),
	})
}

func (h *EventDetails) DispatchAction(c *gin.Context) {
	log := df.Log.WithField("event.id", h.EventID).WithContext(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.WithError(err).Info("Problem reading request body")
		c.JSON(http.StatusBadRequest, NewErrorResp(err, "Couldn't read body"))
		return
	}

	action, err := eventdetails.DecodeAction(body)
	if err != nil {
		log.WithError(err).Info("Problem decoding action")
		c.JSON(http.StatusBadRequest, NewErrorResp(err, "Invalid action"))
		return
	}
	log = log.WithField("action.type", action.Type())

	state, changed := h.Store.Dispatch(action)

	if h.Publisher != nil {
		if err := h.Publisher.PublishAction(c, h.EventID, action); err != nil {
			// Best effort - the dispatch already happened
			log.WithError(err).Warn("Problem publishing action")
		}
	}

	log.WithFields(logrus.Fields{
		"changed": changed,
	}).Trace("All done")
	c.JSON(http.StatusOK, DispatchResponse{
		BaseResponse: NewBaseResp(),
		Changed:      changed,
		EventDetails: state,
	})
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fragforce/fragdonate/lib/eventdetails"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	published []eventdetails.Action
	err       error
}

func (f *fakePublisher) PublishAction(ctx context.Context, eventID int, action eventdetails.Action) error {
	f.published = append(f.published, action)
	return f.err
}

const testToken = "test-t0ken"

func newTestRouter(t *testing.T, pub ActionPublisher) (*gin.Engine, *EventDetails) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	orig := viper.GetString("groupcache.token")
	viper.Set("groupcache.token", testToken)
	t.Cleanup(func() { viper.Set("groupcache.token", orig) })

	r := gin.New()
	h := NewEventDetails(552, eventdetails.NewStore(logrus.NewEntry(logrus.New())), pub)
	RegisterEventDetailsHandlers(r, h)
	RegisterMonitoringHandlers(r)
	return r, h
}

func doAs(r http.Handler, token, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	return doAs(r, testToken, method, path, body)
}

type detailsBody struct {
	Ok           bool            `json:"ok"`
	Message      string          `json:"message"`
	Error        string          `json:"error"`
	EventID      int             `json:"event-id"`
	Changed      bool            `json:"changed"`
	EventDetails json.RawMessage `json:"eventDetails"`
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) (detailsBody, eventdetails.EventDetails) {
	t.Helper()
	body := detailsBody{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	if len(body.EventDetails) == 0 {
		return body, eventdetails.EventDetails{}
	}
	ed, err := eventdetails.DecodeEventDetails(body.EventDetails)
	require.NoError(t, err)
	return body, ed
}

func TestGetEventDetailsDefault(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/event/details", "")
	require.Equal(t, http.StatusOK, w.Code)

	body, ed := decodeBody(t, w)
	assert.True(t, body.Ok)
	assert.Equal(t, 552, body.EventID)
	assert.Contains(t, string(body.EventDetails), `"maximumDonation":null`)
	assert.Contains(t, string(body.EventDetails), `"availableIncentives":{}`)
	assert.Contains(t, string(body.EventDetails), `"prizes":[]`)
	assert.Equal(t, *eventdetails.Default(), ed)
}

func TestDispatchLoadEventDetails(t *testing.T) {
	pub := &fakePublisher{}
	r, h := newTestRouter(t, pub)

	w := do(r, http.MethodPost, "/event/actions", `{
		"type": "LOAD_EVENT_DETAILS",
		"eventDetails": {
			"receiverName": "Fragforce",
			"donateUrl": "https://fragforce.org/donate",
			"minimumDonation": 5,
			"maximumDonation": 500,
			"step": 1,
			"availableIncentives": {"1": {"id": 1, "name": "Goal"}},
			"prizes": [{"id": 2, "name": "b"}, {"id": 1, "name": "a"}]
		}
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body, ed := decodeBody(t, w)
	assert.True(t, body.Changed)
	assert.Equal(t, "Fragforce", ed.ReceiverName)
	assert.Equal(t, eventdetails.Bound(500), ed.MaximumDonation)
	assert.Equal(t, "b", ed.Prizes[0].Name)
	assert.Equal(t, "Fragforce", h.Store.State().ReceiverName)
	require.Len(t, pub.published, 1)
	assert.Equal(t, eventdetails.TypeLoadEventDetails, pub.published[0].Type())

	w = do(r, http.MethodGet, "/event/details", "")
	_, ed = decodeBody(t, w)
	assert.Equal(t, "Fragforce", ed.ReceiverName)
}

func TestDispatchOtherActionIsNoop(t *testing.T) {
	pub := &fakePublisher{err: errors.New("kafka down")}
	r, h := newTestRouter(t, pub)
	before := h.Store.State()

	w := do(r, http.MethodPost, "/event/actions", `{"type": "SET_DONATION_AMOUNT", "amount": 5}`)
	require.Equal(t, http.StatusOK, w.Code)

	body, _ := decodeBody(t, w)
	assert.False(t, body.Changed)
	assert.Same(t, before, h.Store.State())
	assert.Len(t, pub.published, 1)
}

func TestDispatchBadAction(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	for _, in := range []string{`{"eventDetails": {}}`, `{`, `{"type": "LOAD_EVENT_DETAILS", "eventDetails": {"step": "x"}}`} {
		w := do(r, http.MethodPost, "/event/actions", in)
		assert.Equal(t, http.StatusBadRequest, w.Code, in)
		body, _ := decodeBody(t, w)
		assert.False(t, body.Ok)
		assert.NotEmpty(t, body.Error)
	}
}

func TestRegisterEventMonitor(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	type call struct {
		id     int
		active time.Duration
	}
	var calls []call
	orig := setEventMonitor
	setEventMonitor = func(c *gin.Context, eventID int, active time.Duration) error {
		calls = append(calls, call{eventID, active})
		return nil
	}
	t.Cleanup(func() { setEventMonitor = orig })

	w := do(r, http.MethodPost, "/monitor/event", `{"event-id": 552, "active": "2h"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []call{{552, 2 * time.Hour}}, calls)

	w = do(r, http.MethodPost, "/monitor/event", `{"event-id": 0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/monitor/event", `{"event-id": 1, "active": "forever"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/monitor/team", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	setEventMonitor = func(c *gin.Context, eventID int, active time.Duration) error {
		return errors.New("redis down")
	}
	w = do(r, http.MethodPost, "/monitor/event", `{"event-id": 3}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Len(t, calls, 1)
}

func TestMutatingRoutesNeedToken(t *testing.T) {
	pub := &fakePublisher{}
	r, h := newTestRouter(t, pub)
	before := h.Store.State()

	called := false
	orig := setEventMonitor
	setEventMonitor = func(c *gin.Context, eventID int, active time.Duration) error {
		called = true
		return nil
	}
	t.Cleanup(func() { setEventMonitor = orig })

	load := `{"type": "LOAD_EVENT_DETAILS", "eventDetails": {"receiverName": "someone else", "donateUrl": "https://elsewhere.example"}}`
	for _, token := range []string{"", "wrong"} {
		w := doAs(r, token, http.MethodPost, "/event/actions", load)
		assert.Equal(t, http.StatusForbidden, w.Code, token)
		body, _ := decodeBody(t, w)
		assert.False(t, body.Ok)
		assert.Equal(t, ErrBadToken.Error(), body.Error)

		w = doAs(r, token, http.MethodPost, "/monitor/event", `{"event-id": 552}`)
		assert.Equal(t, http.StatusForbidden, w.Code, token)
	}

	assert.Same(t, before, h.Store.State())
	assert.Empty(t, pub.published)
	assert.False(t, called)

	w := doAs(r, "", http.MethodGet, "/event/details", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

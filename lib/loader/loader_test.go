package loader

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/fragforce/fragdonate/lib/evdb"
	"github.com/fragforce/fragdonate/lib/eventdetails"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshots struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeSnapshots) get(ctx context.Context, eventID int) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

func snapshot(t *testing.T, receiver string) []byte {
	t.Helper()
	data, err := json.Marshal(&df.CachedEventDetails{
		EventID: 1,
		EventDetails: eventdetails.EventDetails{
			ReceiverName:    receiver,
			MaximumDonation: eventdetails.Unbounded,
			Prizes:          []eventdetails.Prize{{ID: 1}},
		},
		FetchedAt: time.Now(),
	})
	require.NoError(t, err)
	return data
}

func newTestLoader(f *fakeSnapshots) (*Loader, *eventdetails.Store) {
	log := logrus.NewEntry(logrus.New())
	store := eventdetails.NewStore(log)
	return NewLoader(log, store, 1, f.get), store
}

func TestPollLoadsChangedSnapshots(t *testing.T) {
	f := &fakeSnapshots{data: snapshot(t, "first")}
	l, store := newTestLoader(f)

	loaded, err := l.Poll(context.Background())
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "first", store.State().ReceiverName)
	assert.True(t, store.State().MaximumDonation.IsUnbounded())
	assert.Len(t, store.State().Prizes, 1)

	before := store.State()
	loaded, err = l.Poll(context.Background())
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Same(t, before, store.State())

	f.data = snapshot(t, "second")
	loaded, err = l.Poll(context.Background())
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "second", store.State().ReceiverName)
}

func TestPollErrors(t *testing.T) {
	f := &fakeSnapshots{err: evdb.ErrNoSnapshot}
	l, store := newTestLoader(f)

	_, err := l.Poll(context.Background())
	assert.True(t, errors.Is(err, evdb.ErrNoSnapshot))
	assert.Equal(t, eventdetails.Default(), store.State())

	f.err = nil
	f.data = []byte("{broken")
	_, err = l.Poll(context.Background())
	assert.Error(t, err)
	assert.Equal(t, eventdetails.Default(), store.State())
}

func TestRunStopsOnCancel(t *testing.T) {
	f := &fakeSnapshots{data: snapshot(t, "run")}
	l, store := newTestLoader(f)
	l.Interval = time.Millisecond

	ctx, canc := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return store.State().ReceiverName == "run" }, time.Second, time.Millisecond)
	canc()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loader didn't stop")
	}
}

func TestPollRestoresOverwrittenState(t *testing.T) {
	f := &fakeSnapshots{data: snapshot(t, "real")}
	l, store := newTestLoader(f)

	_, err := l.Poll(context.Background())
	require.NoError(t, err)

	action, err := eventdetails.DecodeAction([]byte(`{"type":"LOAD_EVENT_DETAILS","eventDetails":{"receiverName":"someone else","donateUrl":"https://elsewhere.example"}}`))
	require.NoError(t, err)
	store.Dispatch(action)
	require.Equal(t, "someone else", store.State().ReceiverName)

	loaded, err := l.Poll(context.Background())
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "real", store.State().ReceiverName)
	assert.Equal(t, "", store.State().DonateURL)

	before := store.State()
	loaded, err = l.Poll(context.Background())
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Same(t, before, store.State())
}

func TestNewLoaderBadInterval(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		viper.Set("loader.interval", d)
		l, _ := newTestLoader(&fakeSnapshots{})
		assert.Equal(t, DefaultInterval, l.Interval, d)
	}
	viper.Set("loader.interval", DefaultInterval)
}

func TestRunZeroIntervalDoesNotPanic(t *testing.T) {
	f := &fakeSnapshots{data: snapshot(t, "zero")}
	l, store := newTestLoader(f)
	l.Interval = 0

	ctx, canc := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return store.State().ReceiverName == "zero" }, time.Second, time.Millisecond)
	canc()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loader didn't stop")
	}
}

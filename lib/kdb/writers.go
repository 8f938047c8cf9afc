package kdb

import (
	"context"
	"sync"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/segmentio/kafka-go"
)

type AllWriters struct {
	writers map[string]*kafka.Writer
	lock    *sync.Mutex
}

// W aka Writers is a globally shared set of topic:Writer instances
var W = AllWriters{
	lock:    &sync.Mutex{},
	writers: map[string]*kafka.Writer{},
}

// Get or create the requested writer for the given topic - ctx is only used for new connections!
func (w *AllWriters) Get(ctx context.Context, topic string) (*kafka.Writer, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if wr, ok := w.writers[topic]; ok {
		return wr, nil
	}
	wr, err := NewKafkaWriter(ctx, topic)
	if err != nil {
		return nil, err
	}
	w.writers[topic] = wr
	return wr, nil
}

// Publish writes msgs to the named topic (a df.KTopic* name, not the final topic)
func (w *AllWriters) Publish(ctx context.Context, name string, msgs ...kafka.Message) error {
	topic := MakeTopicName(name)
	log := df.Log.WithField("kafka.topic", topic).WithContext(ctx)

	wr, err := w.Get(ctx, topic)
	if err != nil {
		log.WithError(err).Error("Problem getting kafka writer")
		return err
	}
	if err := wr.WriteMessages(ctx, msgs...); err != nil {
		log.WithError(err).Error("Problem writing messages to kafka")
		return err
	}
	log.WithField("kafka.messages", len(msgs)).Trace("Published")
	return nil
}

func (w *AllWriters) Close() error {
	w.lock.Lock()
	defer w.lock.Unlock()
	var final error
	for topic, wr := range w.writers {
		log := df.Log.WithField("kafka.writer.topic", topic)
		if err := wr.Close(); err != nil {
			final = err
			log.WithError(err).Error("Problem closing kafka writer")
		} else {
			log.Debug("Closed kafka writer successfully")
		}
		delete(w.writers, topic)
	}
	return final
}

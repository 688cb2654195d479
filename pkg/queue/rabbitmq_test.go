package queue

import (
	"context"
	"errors"
	"testing"

	"blop-post/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAcknowledger struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func TestHandleDelivery_Ack(t *testing.T) {
	ack := &fakeAcknowledger{}
	msg := amqp.Delivery{
		Acknowledger: ack,
		Body:         []byte(`{"type":"post.deleted","post_id":"1","image":"http://x/uploads/post/a.png"}`),
	}

	var got PostEvent
	handleDelivery(context.Background(), msg, func(_ context.Context, e PostEvent) error {
		got = e
		return nil
	}, logger.NewNop())

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	assert.Equal(t, EventPostDeleted, got.Type)
	assert.Equal(t, "1", got.PostID)
}

func TestHandleDelivery_MalformedBodyDropped(t *testing.T) {
	ack := &fakeAcknowledger{}
	msg := amqp.Delivery{Acknowledger: ack, Body: []byte("{not json")}

	called := false
	handleDelivery(context.Background(), msg, func(context.Context, PostEvent) error {
		called = true
		return nil
	}, logger.NewNop())

	assert.False(t, called)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)
}

func TestHandleDelivery_HandlerErrorRequeuesOnce(t *testing.T) {
	failing := func(context.Context, PostEvent) error { return errors.New("storage down") }
	body := []byte(`{"type":"post.deleted","post_id":"1"}`)

	first := &fakeAcknowledger{}
	handleDelivery(context.Background(), amqp.Delivery{Acknowledger: first, Body: body}, failing, logger.NewNop())
	require.True(t, first.nacked)
	assert.True(t, first.requeued)

	second := &fakeAcknowledger{}
	handleDelivery(context.Background(), amqp.Delivery{Acknowledger: second, Body: body, Redelivered: true}, failing, logger.NewNop())
	require.True(t, second.nacked)
	assert.False(t, second.requeued)
}

func TestPostEvent_ReleasedImage(t *testing.T) {
	assert.Equal(t, "a", PostEvent{Type: EventPostDeleted, Image: "a"}.ReleasedImage())
	assert.Equal(t, "old", PostEvent{Type: EventPostImageReplaced, Image: "new", PreviousImage: "old"}.ReleasedImage())
	assert.Empty(t, PostEvent{Type: EventPostCreated, Image: "a"}.ReleasedImage())
}

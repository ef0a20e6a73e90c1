package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tightknit/bandsync/model"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	msg := model.SyncMessage{
		Seq:     123456,
		Section: 3,
		Bar:     17,
		Beat:    2,
		Command: model.CmdStart,
		Chord:   8,
	}

	decoded, err := Unmarshal(Marshal(msg))
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(msg, decoded)
}

func TestUnmarshalRejectsShortFrame(t *testing.T) {
	_, err := Unmarshal([]byte{'y', 1, 2})
	assert.ErrorIs(t, err, ErrShortFrame)
}

func TestUnmarshalRejectsForeignFrame(t *testing.T) {
	buf := Marshal(model.SyncMessage{})
	buf[0] = 'q'
	_, err := Unmarshal(buf)
	assert.ErrorIs(t, err, ErrUnknownFrame)
}

func TestOriginTagRoundTripsAndIsNotPartOfTheMessage(t *testing.T) {
	msg := model.SyncMessage{Seq: 9, Command: model.CmdStart}
	buf := Marshal(msg)
	stampOrigin(buf, 0xdeadbeef)

	assert := assert.New(t)
	assert.Equal(uint32(0xdeadbeef), frameOrigin(buf))
	decoded, err := Unmarshal(buf)
	assert.NoError(err)
	assert.Equal(msg, decoded)
}

func TestOriginTagsDifferPerChannel(t *testing.T) {
	// a shared tag would make units drop each other's frames as their own
	assert.NotEqual(t, newOrigin(), newOrigin())
}

func TestHubDeliversInOrderToOthers(t *testing.T) {
	hub := NewHub()
	sender := hub.Endpoint(4)
	receiver := hub.Endpoint(4)

	sender.Broadcast(model.SyncMessage{Seq: 1})
	sender.Broadcast(model.SyncMessage{Seq: 2})

	assert := assert.New(t)
	msg, ok, err := receiver.Poll()
	assert.NoError(err)
	assert.True(ok)
	assert.Equal(uint32(1), msg.Seq)

	msg, ok, _ = receiver.Poll()
	assert.True(ok)
	assert.Equal(uint32(2), msg.Seq)

	_, ok, _ = receiver.Poll()
	assert.False(ok)
}

func TestHubDoesNotEchoToSender(t *testing.T) {
	hub := NewHub()
	sender := hub.Endpoint(4)
	hub.Endpoint(4)

	sender.Broadcast(model.SyncMessage{Seq: 1})

	_, ok, _ := sender.Poll()
	assert.False(t, ok)
}

func TestHubDropsOnDemand(t *testing.T) {
	hub := NewHub()
	sender := hub.Endpoint(4)
	receiver := hub.Endpoint(4)

	hub.DropNext(1)
	sender.Broadcast(model.SyncMessage{Seq: 1})
	sender.Broadcast(model.SyncMessage{Seq: 2})

	assert := assert.New(t)
	msg, ok, _ := receiver.Poll()
	assert.True(ok)
	assert.Equal(uint32(2), msg.Seq)
}

func TestHubDropsWhenReceiverFull(t *testing.T) {
	hub := NewHub()
	sender := hub.Endpoint(1)
	receiver := hub.Endpoint(1)

	sender.Broadcast(model.SyncMessage{Seq: 1})
	sender.Broadcast(model.SyncMessage{Seq: 2})

	assert := assert.New(t)
	msg, ok, _ := receiver.Poll()
	assert.True(ok)
	assert.Equal(uint32(1), msg.Seq)
	_, ok, _ = receiver.Poll()
	assert.False(ok)
}

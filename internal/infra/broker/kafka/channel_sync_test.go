package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/commands"
	availabilityhandlers "staybook/internal/app/handlers/availability"
	"staybook/internal/infra/inbox"
)

type captureBus struct {
	dispatched []commands.Command
	err        error
}

func (b *captureBus) Dispatch(_ context.Context, cmd commands.Command) (any, error) {
	b.dispatched = append(b.dispatched, cmd)
	return nil, b.err
}

func syncMessage(value string, headers ...*sarama.RecordHeader) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{
		Topic:     "channel.blocks",
		Partition: 1,
		Offset:    42,
		Value:     []byte(value),
		Headers:   headers,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChannelSyncAppliesBlocks(t *testing.T) {
	t.Parallel()

	bus := &captureBus{}
	h := ChannelSyncHandler{Bus: bus, Inbox: inbox.NewMemoryStore(), Logger: discardLogger()}

	msg := syncMessage(`{
		"property_id": "river-loft",
		"source": "airbnb",
		"blocks": [
			{"check_in": "2026-10-01", "check_out": "2026-10-05"},
			{"check_in": "not-a-date", "check_out": "2026-10-12"},
			{"check_in": "2026-10-20", "check_out": "2026-10-22"}
		]
	}`)
	require.NoError(t, h.Handle(context.Background(), msg))

	require.Len(t, bus.dispatched, 1)
	cmd, ok := bus.dispatched[0].(availabilityhandlers.ApplyChannelBlocksCommand)
	require.True(t, ok)
	require.Equal(t, "river-loft", cmd.PropertyID)
	require.Equal(t, "airbnb", cmd.Source)
	// The malformed range is dropped, valid ones survive.
	require.Len(t, cmd.Ranges, 2)
	require.Equal(t, 4, cmd.Ranges[0].Nights())
}

func TestChannelSyncSkipsDuplicateDeliveries(t *testing.T) {
	t.Parallel()

	bus := &captureBus{}
	h := ChannelSyncHandler{Bus: bus, Inbox: inbox.NewMemoryStore(), Logger: discardLogger()}
	msg := syncMessage(`{"property_id": "river-loft", "source": "airbnb", "blocks": []}`)

	require.NoError(t, h.Handle(context.Background(), msg))
	require.NoError(t, h.Handle(context.Background(), msg))
	require.Len(t, bus.dispatched, 1)
}

func TestChannelSyncPrefersCloudEventsID(t *testing.T) {
	t.Parallel()

	bus := &captureBus{}
	h := ChannelSyncHandler{Bus: bus, Inbox: inbox.NewMemoryStore(), Logger: discardLogger()}

	first := syncMessage(`{"property_id": "river-loft", "source": "airbnb", "blocks": []}`,
		&sarama.RecordHeader{Key: []byte("ce_id"), Value: []byte("evt-1")})
	require.NoError(t, h.Handle(context.Background(), first))

	// Same event redelivered at a different offset is still a duplicate.
	redelivered := syncMessage(`{"property_id": "river-loft", "source": "airbnb", "blocks": []}`,
		&sarama.RecordHeader{Key: []byte("ce_id"), Value: []byte("evt-1")})
	redelivered.Offset = 99
	require.NoError(t, h.Handle(context.Background(), redelivered))
	require.Len(t, bus.dispatched, 1)
}

func TestChannelSyncDropsMalformedMessages(t *testing.T) {
	t.Parallel()

	bus := &captureBus{}
	h := ChannelSyncHandler{Bus: bus, Logger: discardLogger()}

	require.NoError(t, h.Handle(context.Background(), syncMessage(`{not json`)))
	require.NoError(t, h.Handle(context.Background(), syncMessage(`{"source": "airbnb"}`)))
	require.Empty(t, bus.dispatched)
}

func TestChannelSyncReturnsDispatchErrorForRedelivery(t *testing.T) {
	t.Parallel()

	bus := &captureBus{err: errors.New("store down")}
	h := ChannelSyncHandler{Bus: bus, Logger: discardLogger()}

	err := h.Handle(context.Background(), syncMessage(`{"property_id": "river-loft", "source": "airbnb", "blocks": []}`))
	require.Error(t, err)
}

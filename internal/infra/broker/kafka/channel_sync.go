package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"staybook/internal/app/commands"
	availabilityhandlers "staybook/internal/app/handlers/availability"
	"staybook/internal/domain/shared/daterange"
)

// channelBlocksMessage is the wire shape of one external calendar sync:
// every currently-blocked range of the property on that channel.
type channelBlocksMessage struct {
	PropertyID string `json:"property_id"`
	Source     string `json:"source"`
	Blocks     []struct {
		CheckIn  string `json:"check_in"`
		CheckOut string `json:"check_out"`
	} `json:"blocks"`
}

// Inbox tracks already-processed message IDs so redeliveries are skipped.
type Inbox interface {
	Seen(ctx context.Context, messageID string) (bool, error)
}

// ChannelSyncHandler ingests channel-block feeds and replaces the channel
// blocks of the affected calendar. Malformed messages are dropped after
// logging; the feed re-sends full state on the next sync anyway.
type ChannelSyncHandler struct {
	Bus    commands.Bus
	Inbox  Inbox
	Logger *slog.Logger
}

func (h ChannelSyncHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	if h.Inbox != nil {
		seen, err := h.Inbox.Seen(ctx, messageID(msg))
		if err != nil {
			return fmt.Errorf("channel sync: inbox check: %w", err)
		}
		if seen {
			h.log().Debug("channel sync: duplicate message skipped", "topic", msg.Topic, "offset", msg.Offset)
			return nil
		}
	}

	var payload channelBlocksMessage
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		h.log().Warn("channel sync: malformed message dropped", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}
	if payload.PropertyID == "" {
		h.log().Warn("channel sync: message without property dropped", "topic", msg.Topic, "offset", msg.Offset)
		return nil
	}
	cmd := availabilityhandlers.ApplyChannelBlocksCommand{
		PropertyID: payload.PropertyID,
		Source:     payload.Source,
	}
	for _, block := range payload.Blocks {
		dr, err := daterange.ParseISO(block.CheckIn, block.CheckOut)
		if err != nil {
			h.log().Warn("channel sync: invalid range dropped",
				"property_id", payload.PropertyID, "check_in", block.CheckIn, "check_out", block.CheckOut, "error", err)
			continue
		}
		cmd.Ranges = append(cmd.Ranges, dr)
	}
	if _, err := h.Bus.Dispatch(ctx, cmd); err != nil {
		return fmt.Errorf("channel sync: apply blocks for %s: %w", payload.PropertyID, err)
	}
	h.log().Info("channel sync applied", "property_id", payload.PropertyID, "source", payload.Source, "ranges", len(cmd.Ranges))
	return nil
}

// messageID prefers the CloudEvents id header and falls back to the
// topic/partition/offset coordinate, which is stable across redeliveries.
func messageID(msg *sarama.ConsumerMessage) string {
	for _, header := range msg.Headers {
		if header != nil && string(header.Key) == "ce_id" && len(header.Value) > 0 {
			return string(header.Value)
		}
	}
	return fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
}

func (h ChannelSyncHandler) log() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ MessageHandler = ChannelSyncHandler{}

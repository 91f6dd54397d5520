package availability

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainproperties "staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
)

const (
	blockRangeKey    = "availability.block_range"
	releaseBlockKey  = "availability.release_block"
	channelBlocksKey = "availability.apply_channel_blocks"
)

// BlockRangeCommand adds a host block (owner stay, maintenance).
type BlockRangeCommand struct {
	PropertyID string
	CheckIn    string
	CheckOut   string
	Reference  string
}

func (c BlockRangeCommand) Key() string { return blockRangeKey }

type BlockRangeResult struct {
	Reference string `json:"reference"`
}

type BlockRangeHandler struct {
	Factory uow.Factory
	Outbox  outbox.Outbox
}

func (h *BlockRangeHandler) Handle(ctx context.Context, cmd BlockRangeCommand) (*BlockRangeResult, error) {
	dr, err := daterange.ParseISO(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	committed := false
	if owned {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	cal, err := loadOrCreateCalendar(ctx, unit, domainproperties.PropertyID(cmd.PropertyID))
	if err != nil {
		return nil, err
	}
	ref := cmd.Reference
	if ref == "" {
		ref = "host-" + cmd.CheckIn
	}
	if err := cal.BlockRange(dr, domainavailability.ReasonHost, ref, time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Availability().Save(ctx, cal); err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, h.Outbox, nil, &cal.EventRecorder); err != nil {
		return nil, err
	}
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &BlockRangeResult{Reference: ref}, nil
}

var _ commands.Handler[BlockRangeCommand, *BlockRangeResult] = (*BlockRangeHandler)(nil)

// ReleaseBlockCommand removes a block by its reference.
type ReleaseBlockCommand struct {
	PropertyID string
	Reference  string
}

func (c ReleaseBlockCommand) Key() string { return releaseBlockKey }

type ReleaseBlockHandler struct {
	Factory uow.Factory
	Outbox  outbox.Outbox
}

func (h *ReleaseBlockHandler) Handle(ctx context.Context, cmd ReleaseBlockCommand) (struct{}, error) {
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{})
	if err != nil {
		return struct{}{}, err
	}
	committed := false
	if owned {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	cal, err := unit.Availability().Calendar(ctx, domainproperties.PropertyID(cmd.PropertyID))
	if err != nil {
		return struct{}{}, err
	}
	if err := cal.Release(cmd.Reference, time.Now()); err != nil {
		return struct{}{}, err
	}
	if err := unit.Availability().Save(ctx, cal); err != nil {
		return struct{}{}, err
	}
	if err := outbox.Drain(ctx, h.Outbox, nil, &cal.EventRecorder); err != nil {
		return struct{}{}, err
	}
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return struct{}{}, err
		}
		committed = true
	}
	return struct{}{}, nil
}

var _ commands.Handler[ReleaseBlockCommand, struct{}] = (*ReleaseBlockHandler)(nil)

// ApplyChannelBlocksCommand replaces a property's channel-imported blocks
// with the ranges of the latest external calendar sync.
type ApplyChannelBlocksCommand struct {
	PropertyID string
	Source     string
	Ranges     []daterange.DateRange
}

func (c ApplyChannelBlocksCommand) Key() string { return channelBlocksKey }

type ApplyChannelBlocksHandler struct {
	Factory uow.Factory
	Outbox  outbox.Outbox
}

func (h *ApplyChannelBlocksHandler) Handle(ctx context.Context, cmd ApplyChannelBlocksCommand) (struct{}, error) {
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{})
	if err != nil {
		return struct{}{}, err
	}
	committed := false
	if owned {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	cal, err := loadOrCreateCalendar(ctx, unit, domainproperties.PropertyID(cmd.PropertyID))
	if err != nil {
		return struct{}{}, err
	}
	cal.ReplaceChannelBlocks(cmd.Ranges, cmd.Source, time.Now())
	if err := unit.Availability().Save(ctx, cal); err != nil {
		return struct{}{}, err
	}
	if err := outbox.Drain(ctx, h.Outbox, nil, &cal.EventRecorder); err != nil {
		return struct{}{}, err
	}
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return struct{}{}, err
		}
		committed = true
	}
	return struct{}{}, nil
}

var _ commands.Handler[ApplyChannelBlocksCommand, struct{}] = (*ApplyChannelBlocksHandler)(nil)

func loadOrCreateCalendar(ctx context.Context, unit uow.UnitOfWork, id domainproperties.PropertyID) (*domainavailability.Calendar, error) {
	cal, err := unit.Availability().Calendar(ctx, id)
	if err != nil {
		if errors.Is(err, domainavailability.ErrCalendarMissing) {
			return domainavailability.NewCalendar(id), nil
		}
		return nil, err
	}
	return cal, nil
}

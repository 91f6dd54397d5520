package guests

import (
	"context"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainguests "staybook/internal/domain/guests"
)

type ListGuestsQuery struct {
	Limit  int
	Offset int
}

func (q ListGuestsQuery) Key() string { return "guests.list" }

type ListGuestsHandler struct {
	Factory uow.Factory
}

func (h *ListGuestsHandler) Handle(ctx context.Context, query ListGuestsQuery) ([]dto.GuestView, error) {
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	if owned {
		defer func() { _ = unit.Rollback(ctx) }()
	}
	limit := query.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	items, err := unit.Guests().List(ctx, limit, query.Offset)
	if err != nil {
		return nil, err
	}
	return dto.MapGuests(items), nil
}

type GetGuestQuery struct {
	GuestID string
}

func (q GetGuestQuery) Key() string { return "guests.get" }

type GetGuestHandler struct {
	Factory uow.Factory
}

func (h *GetGuestHandler) Handle(ctx context.Context, query GetGuestQuery) (dto.GuestView, error) {
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.GuestView{}, err
	}
	if owned {
		defer func() { _ = unit.Rollback(ctx) }()
	}
	guest, err := unit.Guests().ByID(ctx, domainguests.GuestID(query.GuestID))
	if err != nil {
		return dto.GuestView{}, err
	}
	return dto.MapGuest(guest), nil
}

var (
	_ queries.Handler[ListGuestsQuery, []dto.GuestView] = (*ListGuestsHandler)(nil)
	_ queries.Handler[GetGuestQuery, dto.GuestView]     = (*GetGuestHandler)(nil)
)

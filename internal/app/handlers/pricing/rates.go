package pricing

import (
	"context"
	"errors"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainpricing "staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
	"staybook/internal/domain/shared/money"
)

const (
	getRatesKey    = "pricing.rates.get"
	updateRatesKey = "pricing.rates.update"
)

type GetRateCardQuery struct {
	PropertyID string
}

func (q GetRateCardQuery) Key() string { return getRatesKey }

type GetRateCardHandler struct {
	Factory uow.Factory
}

func (h *GetRateCardHandler) Handle(ctx context.Context, q GetRateCardQuery) (dto.RateCardView, error) {
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.RateCardView{}, err
	}
	if owned {
		defer unit.Rollback(ctx)
	}
	card, err := unit.Rates().ByProperty(ctx, domainproperties.PropertyID(q.PropertyID))
	if err != nil {
		return dto.RateCardView{}, err
	}
	if card == nil {
		return dto.RateCardView{}, domainpricing.ErrRateCardMissing
	}
	return dto.MapRateCard(card), nil
}

var _ queries.Handler[GetRateCardQuery, dto.RateCardView] = (*GetRateCardHandler)(nil)

// UpdateRateCardCommand is the whole admin rates form.
type UpdateRateCardCommand struct {
	PropertyID       string
	NightlyRateMinor int64
	CleaningFeeMinor int64
	Currency         string
	MinStayNights    int
}

func (c UpdateRateCardCommand) Key() string { return updateRatesKey }

type UpdateRateCardHandler struct {
	Factory uow.Factory
}

func (h *UpdateRateCardHandler) Handle(ctx context.Context, cmd UpdateRateCardCommand) (dto.RateCardView, error) {
	nightly, err := money.New(cmd.NightlyRateMinor, cmd.Currency)
	if err != nil {
		return dto.RateCardView{}, err
	}
	cleaning, err := money.New(cmd.CleaningFeeMinor, cmd.Currency)
	if err != nil {
		return dto.RateCardView{}, err
	}
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{})
	if err != nil {
		return dto.RateCardView{}, err
	}
	committed := false
	if owned {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	card, err := unit.Rates().ByProperty(ctx, domainproperties.PropertyID(cmd.PropertyID))
	if err != nil && !errors.Is(err, domainpricing.ErrRateCardMissing) {
		return dto.RateCardView{}, err
	}
	if card == nil {
		card = &domainpricing.RateCard{PropertyID: domainproperties.PropertyID(cmd.PropertyID)}
	}
	card.NightlyRate = nightly
	card.CleaningFee = cleaning
	card.MinStayNights = cmd.MinStayNights
	if err := card.Validate(); err != nil {
		return dto.RateCardView{}, err
	}
	if err := unit.Rates().Save(ctx, card); err != nil {
		return dto.RateCardView{}, err
	}
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return dto.RateCardView{}, err
		}
		committed = true
	}
	return dto.MapRateCard(card), nil
}

var _ commands.Handler[UpdateRateCardCommand, dto.RateCardView] = (*UpdateRateCardHandler)(nil)

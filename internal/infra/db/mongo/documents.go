package mongo

import (
	"errors"
	"time"

	domainrange "staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

// ErrConcurrentUpdate signals an optimistic-version conflict on save.
var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

func newRangeDocument(r domainrange.DateRange) rangeDocument {
	return rangeDocument{CheckIn: r.CheckIn.UnixMilli(), CheckOut: r.CheckOut.UnixMilli()}
}

func (d rangeDocument) toRange() domainrange.DateRange {
	return domainrange.DateRange{CheckIn: timestampToTime(d.CheckIn), CheckOut: timestampToTime(d.CheckOut)}
}

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: m.Currency}
}

func (d moneyDocument) toMoney() money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

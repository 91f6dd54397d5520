package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainpricing "staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
)

type RateRepository struct {
	col *mongo.Collection
}

func NewRateRepository(db *mongo.Database) *RateRepository {
	return &RateRepository{col: db.Collection("agg_rate_card")}
}

func (r *RateRepository) ByProperty(ctx context.Context, id domainproperties.PropertyID) (*domainpricing.RateCard, error) {
	var doc rateCardDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainpricing.ErrRateCardMissing
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *RateRepository) Save(ctx context.Context, card *domainpricing.RateCard) error {
	doc := rateCardDocument{
		ID:            string(card.PropertyID),
		NightlyRate:   newMoneyDocument(card.NightlyRate),
		CleaningFee:   newMoneyDocument(card.CleaningFee),
		MinStayNights: card.MinStayNights,
		Version:       card.Version + 1,
	}
	filter := bson.M{"_id": doc.ID, "version": card.Version}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	card.Version = doc.Version
	return nil
}

type rateCardDocument struct {
	ID            string        `bson:"_id"`
	NightlyRate   moneyDocument `bson:"nightly_rate"`
	CleaningFee   moneyDocument `bson:"cleaning_fee"`
	MinStayNights int           `bson:"min_stay_nights"`
	Version       int64         `bson:"version"`
}

func (d rateCardDocument) toAggregate() *domainpricing.RateCard {
	return &domainpricing.RateCard{
		PropertyID:    domainproperties.PropertyID(d.ID),
		NightlyRate:   d.NightlyRate.toMoney(),
		CleaningFee:   d.CleaningFee.toMoney(),
		MinStayNights: d.MinStayNights,
		Version:       d.Version,
	}
}

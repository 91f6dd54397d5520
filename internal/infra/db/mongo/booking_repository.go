package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staybook/internal/domain/booking"
	domainguests "staybook/internal/domain/guests"
	domainpricing "staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "created_at", Value: -1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &BookingRepository{col: col}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) List(ctx context.Context, limit, offset int) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetSkip(int64(offset))
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{}, opts)
}

func (r *BookingRepository) ListByProperty(ctx context.Context, id domainproperties.PropertyID) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"property_id": string(id)}, opts)
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domainbooking.Booking, error) {
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
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
	b.Version = doc.Version
	return nil
}

type bookingDocument struct {
	ID         string         `bson:"_id"`
	PropertyID string         `bson:"property_id"`
	GuestID    string         `bson:"guest_id"`
	Range      rangeDocument  `bson:"range"`
	Guests     int            `bson:"guests"`
	Quote      quoteDocument  `bson:"quote"`
	State      string         `bson:"state"`
	Note       string         `bson:"note"`
	CreatedAt  int64          `bson:"created_at"`
	UpdatedAt  int64          `bson:"updated_at"`
	Version    int64          `bson:"version"`
}

type quoteDocument struct {
	Nights    int                `bson:"nights"`
	Currency  string             `bson:"currency"`
	LineItems []lineItemDocument `bson:"line_items"`
	Total     moneyDocument      `bson:"total"`
}

type lineItemDocument struct {
	Kind   string        `bson:"kind"`
	Label  string        `bson:"label"`
	Amount moneyDocument `bson:"amount"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	q := quoteDocument{
		Nights:   b.Quote.Nights,
		Currency: b.Quote.Currency,
		Total:    newMoneyDocument(b.Quote.Total),
	}
	for _, li := range b.Quote.LineItems {
		q.LineItems = append(q.LineItems, lineItemDocument{Kind: string(li.Kind), Label: li.Label, Amount: newMoneyDocument(li.Amount)})
	}
	return bookingDocument{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID),
		GuestID:    string(b.GuestID),
		Range:      newRangeDocument(b.Range),
		Guests:     b.Guests,
		Quote:      q,
		State:      string(b.State),
		Note:       b.Note,
		CreatedAt:  b.CreatedAt.UnixMilli(),
		UpdatedAt:  b.UpdatedAt.UnixMilli(),
		Version:    b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	quote := domainpricing.Quote{
		PropertyID: domainproperties.PropertyID(d.PropertyID),
		Range:      d.Range.toRange(),
		Guests:     d.Guests,
		Nights:     d.Quote.Nights,
		Currency:   d.Quote.Currency,
		Total:      d.Quote.Total.toMoney(),
	}
	for _, li := range d.Quote.LineItems {
		quote.LineItems = append(quote.LineItems, domainpricing.LineItem{
			Kind:   domainpricing.LineKind(li.Kind),
			Label:  li.Label,
			Amount: li.Amount.toMoney(),
		})
	}
	return &domainbooking.Booking{
		ID:         domainbooking.BookingID(d.ID),
		PropertyID: domainproperties.PropertyID(d.PropertyID),
		GuestID:    domainguests.GuestID(d.GuestID),
		Range:      d.Range.toRange(),
		Guests:     d.Guests,
		Quote:      quote,
		State:      domainbooking.BookingState(d.State),
		Note:       d.Note,
		CreatedAt:  timestampToTime(d.CreatedAt),
		UpdatedAt:  timestampToTime(d.UpdatedAt),
		Version:    d.Version,
	}
}

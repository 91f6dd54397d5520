package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staybook/internal/domain/booking"
	domainproperties "staybook/internal/domain/properties"
	domainreviews "staybook/internal/domain/reviews"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	col := db.Collection("agg_review")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "created_at", Value: -1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &ReviewRepository{col: col}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	var doc reviewDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreviews.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) ListByProperty(ctx context.Context, id domainproperties.PropertyID, approvedOnly bool, limit, offset int) ([]*domainreviews.Review, error) {
	filter := bson.M{"property_id": string(id)}
	if approvedOnly {
		filter["state"] = string(domainreviews.StateApproved)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetSkip(int64(offset))
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainreviews.Review
	for cursor.Next(ctx) {
		var doc reviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	doc := newReviewDocument(review)
	filter := bson.M{"_id": doc.ID, "version": review.Version}
	doc.Version = review.Version + 1
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
	review.Version = doc.Version
	return nil
}

type reviewDocument struct {
	ID         string `bson:"_id"`
	BookingID  string `bson:"booking_id"`
	PropertyID string `bson:"property_id"`
	AuthorName string `bson:"author_name"`
	Rating     int    `bson:"rating"`
	Text       string `bson:"text"`
	State      string `bson:"state"`
	CreatedAt  int64  `bson:"created_at"`
	UpdatedAt  int64  `bson:"updated_at"`
	Version    int64  `bson:"version"`
}

func newReviewDocument(r *domainreviews.Review) reviewDocument {
	return reviewDocument{
		ID:         string(r.ID),
		BookingID:  string(r.BookingID),
		PropertyID: string(r.PropertyID),
		AuthorName: r.AuthorName,
		Rating:     r.Rating,
		Text:       r.Text,
		State:      string(r.State),
		CreatedAt:  r.CreatedAt.UnixMilli(),
		UpdatedAt:  r.UpdatedAt.UnixMilli(),
		Version:    r.Version,
	}
}

func (d reviewDocument) toAggregate() *domainreviews.Review {
	return &domainreviews.Review{
		ID:         domainreviews.ReviewID(d.ID),
		BookingID:  domainbooking.BookingID(d.BookingID),
		PropertyID: domainproperties.PropertyID(d.PropertyID),
		AuthorName: d.AuthorName,
		Rating:     d.Rating,
		Text:       d.Text,
		State:      domainreviews.ReviewState(d.State),
		CreatedAt:  timestampToTime(d.CreatedAt),
		UpdatedAt:  timestampToTime(d.UpdatedAt),
		Version:    d.Version,
	}
}

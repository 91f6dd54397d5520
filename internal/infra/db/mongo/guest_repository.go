package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainguests "staybook/internal/domain/guests"
)

type GuestRepository struct {
	col *mongo.Collection
}

func NewGuestRepository(db *mongo.Database) *GuestRepository {
	col := db.Collection("agg_guest")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &GuestRepository{col: col}
}

func (r *GuestRepository) ByID(ctx context.Context, id domainguests.GuestID) (*domainguests.Guest, error) {
	var doc guestDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainguests.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *GuestRepository) ByEmail(ctx context.Context, email string) (*domainguests.Guest, error) {
	var doc guestDocument
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainguests.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *GuestRepository) List(ctx context.Context, limit, offset int) ([]*domainguests.Guest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "email", Value: 1}}).SetSkip(int64(offset))
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainguests.Guest
	for cursor.Next(ctx) {
		var doc guestDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func (r *GuestRepository) Save(ctx context.Context, guest *domainguests.Guest) error {
	doc := newGuestDocument(guest)
	filter := bson.M{"_id": doc.ID, "version": guest.Version}
	doc.Version = guest.Version + 1
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
	guest.Version = doc.Version
	return nil
}

type guestDocument struct {
	ID        string `bson:"_id"`
	FullName  string `bson:"full_name"`
	Email     string `bson:"email"`
	Phone     string `bson:"phone"`
	Notes     string `bson:"notes"`
	Bookings  int    `bson:"bookings"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
	Version   int64  `bson:"version"`
}

func newGuestDocument(g *domainguests.Guest) guestDocument {
	return guestDocument{
		ID:        string(g.ID),
		FullName:  g.FullName,
		Email:     g.Email,
		Phone:     g.Phone,
		Notes:     g.Notes,
		Bookings:  g.Bookings,
		CreatedAt: g.CreatedAt.UnixMilli(),
		UpdatedAt: g.UpdatedAt.UnixMilli(),
		Version:   g.Version,
	}
}

func (d guestDocument) toAggregate() *domainguests.Guest {
	return &domainguests.Guest{
		ID:        domainguests.GuestID(d.ID),
		FullName:  d.FullName,
		Email:     d.Email,
		Phone:     d.Phone,
		Notes:     d.Notes,
		Bookings:  d.Bookings,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
}

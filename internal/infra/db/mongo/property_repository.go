package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperties "staybook/internal/domain/properties"
)

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	col := db.Collection("agg_property")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &PropertyRepository{col: col}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperties.PropertyID) (*domainproperties.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainproperties.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PropertyRepository) BySlug(ctx context.Context, slug string) (*domainproperties.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainproperties.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PropertyRepository) List(ctx context.Context, publishedOnly bool) ([]*domainproperties.Property, error) {
	filter := bson.M{}
	if publishedOnly {
		filter["state"] = string(domainproperties.StatePublished)
	}
	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "slug", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainproperties.Property
	for cursor.Next(ctx) {
		var doc propertyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperties.Property) error {
	doc := newPropertyDocument(p)
	filter := bson.M{"_id": doc.ID, "version": p.Version}
	doc.Version = p.Version + 1
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
	p.Version = doc.Version
	return nil
}

type propertyDocument struct {
	ID         string   `bson:"_id"`
	Slug       string   `bson:"slug"`
	Name       string   `bson:"name"`
	Summary    string   `bson:"summary"`
	Headline   string   `bson:"headline"`
	MaxGuests  int      `bson:"max_guests"`
	Bedrooms   int      `bson:"bedrooms"`
	Bathrooms  int      `bson:"bathrooms"`
	Amenities  []string `bson:"amenities"`
	HouseRules []string `bson:"house_rules"`
	Photos     []string `bson:"photos"`
	State      string   `bson:"state"`
	CreatedAt  int64    `bson:"created_at"`
	UpdatedAt  int64    `bson:"updated_at"`
	Version    int64    `bson:"version"`
}

func newPropertyDocument(p *domainproperties.Property) propertyDocument {
	return propertyDocument{
		ID:         string(p.ID),
		Slug:       p.Slug,
		Name:       p.Name,
		Summary:    p.Summary,
		Headline:   p.Headline,
		MaxGuests:  p.MaxGuests,
		Bedrooms:   p.Bedrooms,
		Bathrooms:  p.Bathrooms,
		Amenities:  p.Amenities,
		HouseRules: p.HouseRules,
		Photos:     p.Photos,
		State:      string(p.State),
		CreatedAt:  p.CreatedAt.UnixMilli(),
		UpdatedAt:  p.UpdatedAt.UnixMilli(),
		Version:    p.Version,
	}
}

func (d propertyDocument) toAggregate() *domainproperties.Property {
	return &domainproperties.Property{
		ID:         domainproperties.PropertyID(d.ID),
		Slug:       d.Slug,
		Name:       d.Name,
		Summary:    d.Summary,
		Headline:   d.Headline,
		MaxGuests:  d.MaxGuests,
		Bedrooms:   d.Bedrooms,
		Bathrooms:  d.Bathrooms,
		Amenities:  d.Amenities,
		HouseRules: d.HouseRules,
		Photos:     d.Photos,
		State:      domainproperties.PropertyState(d.State),
		CreatedAt:  timestampToTime(d.CreatedAt),
		UpdatedAt:  timestampToTime(d.UpdatedAt),
		Version:    d.Version,
	}
}

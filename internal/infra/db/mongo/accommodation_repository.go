package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainacc "stayinn/internal/domain/accommodations"
)

type AccommodationRepository struct {
	col *mongo.Collection
}

func NewAccommodationRepository(db *mongo.Database) *AccommodationRepository {
	col := db.Collection("agg_accommodation")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "host_id", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &AccommodationRepository{col: col}
}

func (r *AccommodationRepository) ByID(ctx context.Context, id domainacc.ID) (*domainacc.Accommodation, error) {
	var doc accommodationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainacc.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *AccommodationRepository) ListAll(ctx context.Context) ([]*domainacc.Accommodation, error) {
	return r.find(ctx, bson.M{})
}

func (r *AccommodationRepository) ListByHost(ctx context.Context, host domainacc.HostID) ([]*domainacc.Accommodation, error) {
	return r.find(ctx, bson.M{"host_id": string(host)})
}

// Search pushes the static predicates into the query; date filtering runs
// upstream against the schedules.
func (r *AccommodationRepository) Search(ctx context.Context, params domainacc.SearchParams) ([]*domainacc.Accommodation, error) {
	filter := bson.M{}
	if params.Location != "" {
		filter["location"] = bson.M{"$regex": primitive.Regex{Pattern: regexEscape(params.Location), Options: "i"}}
	}
	if params.Guests > 0 {
		filter["min_guests"] = bson.M{"$lte": params.Guests}
		filter["max_guests"] = bson.M{"$gte": params.Guests}
	}
	return r.find(ctx, filter)
}

func (r *AccommodationRepository) Save(ctx context.Context, acc *domainacc.Accommodation) error {
	doc := newAccommodationDocument(acc)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *AccommodationRepository) Delete(ctx context.Context, id domainacc.ID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	return err
}

func (r *AccommodationRepository) find(ctx context.Context, filter bson.M) ([]*domainacc.Accommodation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	out := make([]*domainacc.Accommodation, 0)
	for cursor.Next(ctx) {
		var doc accommodationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		acc, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, cursor.Err()
}

type accommodationDocument struct {
	ID        string `bson:"_id"`
	HostID    string `bson:"host_id"`
	Name      string `bson:"name"`
	Location  string `bson:"location"`
	Amenities []int  `bson:"amenities"`
	MinGuests int    `bson:"min_guests"`
	MaxGuests int    `bson:"max_guests"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
}

func newAccommodationDocument(acc *domainacc.Accommodation) accommodationDocument {
	return accommodationDocument{
		ID:        string(acc.ID),
		HostID:    string(acc.Host),
		Name:      acc.Name,
		Location:  acc.Location,
		Amenities: domainacc.AmenitiesAsInts(acc.Amenities),
		MinGuests: acc.MinGuests,
		MaxGuests: acc.MaxGuests,
		CreatedAt: acc.CreatedAt.UnixMilli(),
		UpdatedAt: acc.UpdatedAt.UnixMilli(),
	}
}

func (d accommodationDocument) toAggregate() (*domainacc.Accommodation, error) {
	amenities, err := domainacc.AmenitiesFromInts(d.Amenities)
	if err != nil {
		return nil, err
	}
	return &domainacc.Accommodation{
		ID:        domainacc.ID(d.ID),
		Host:      domainacc.HostID(d.HostID),
		Name:      d.Name,
		Location:  d.Location,
		Amenities: amenities,
		MinGuests: d.MinGuests,
		MaxGuests: d.MaxGuests,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}, nil
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func regexEscape(s string) string {
	const specials = `\.+*?()|[]{}^$`
	out := make([]rune, 0, len(s))
	for _, r := range s {
		for _, sp := range specials {
			if r == sp {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, r)
	}
	return string(out)
}

package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainacc "stayinn/internal/domain/accommodations"
	domainrat "stayinn/internal/domain/ratings"
)

type RatingRepository struct {
	col *mongo.Collection
}

func NewRatingRepository(db *mongo.Database) *RatingRepository {
	col := db.Collection("agg_rating")
	// One live rating per rater and subject.
	unique := mongo.IndexModel{
		Keys:    bson.D{{Key: "rater_id", Value: 1}, {Key: "kind", Value: 1}, {Key: "subject_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	subject := mongo.IndexModel{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "subject_id", Value: 1}}}
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{unique, subject})
	return &RatingRepository{col: col}
}

func (r *RatingRepository) ByID(ctx context.Context, id domainrat.ID) (*domainrat.Rating, error) {
	var doc ratingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrat.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *RatingRepository) ByRaterAndSubject(ctx context.Context, raterID string, kind domainrat.SubjectKind, subjectID string) (*domainrat.Rating, error) {
	filter := bson.M{"rater_id": raterID, "kind": string(kind), "subject_id": subjectID}
	var doc ratingDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrat.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *RatingRepository) ListByRater(ctx context.Context, raterID string, kind domainrat.SubjectKind) ([]*domainrat.Rating, error) {
	return r.find(ctx, bson.M{"rater_id": raterID, "kind": string(kind)})
}

func (r *RatingRepository) ListBySubject(ctx context.Context, kind domainrat.SubjectKind, subjectID string) ([]*domainrat.Rating, error) {
	return r.find(ctx, bson.M{"kind": string(kind), "subject_id": subjectID})
}

func (r *RatingRepository) Save(ctx context.Context, rating *domainrat.Rating) error {
	doc := newRatingDocument(rating)
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainrat.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *RatingRepository) Delete(ctx context.Context, id domainrat.ID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	return err
}

func (r *RatingRepository) find(ctx context.Context, filter bson.M) ([]*domainrat.Rating, error) {
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	out := make([]*domainrat.Rating, 0)
	for cursor.Next(ctx) {
		var doc ratingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type ratingDocument struct {
	ID              string `bson:"_id"`
	Kind            string `bson:"kind"`
	SubjectID       string `bson:"subject_id"`
	RaterID         string `bson:"rater_id"`
	RaterUsername   string `bson:"rater_username"`
	HostID          string `bson:"host_id"`
	AccommodationID string `bson:"accommodation_id,omitempty"`
	Rate            int    `bson:"rate"`
	Time            int64  `bson:"time"`
}

func newRatingDocument(rating *domainrat.Rating) ratingDocument {
	return ratingDocument{
		ID:              string(rating.ID),
		Kind:            string(rating.Kind),
		SubjectID:       rating.SubjectID(),
		RaterID:         rating.RaterID,
		RaterUsername:   rating.RaterUsername,
		HostID:          string(rating.HostID),
		AccommodationID: string(rating.AccommodationID),
		Rate:            rating.Rate,
		Time:            rating.Time.UnixMilli(),
	}
}

func (d ratingDocument) toAggregate() *domainrat.Rating {
	return &domainrat.Rating{
		ID:              domainrat.ID(d.ID),
		Kind:            domainrat.SubjectKind(d.Kind),
		RaterID:         d.RaterID,
		RaterUsername:   d.RaterUsername,
		HostID:          domainacc.HostID(d.HostID),
		AccommodationID: domainacc.ID(d.AccommodationID),
		Rate:            d.Rate,
		Time:            timestampToTime(d.Time),
	}
}

package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainacc "stayinn/internal/domain/accommodations"
	domainrat "stayinn/internal/domain/ratings"
)

type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	col := db.Collection("host_notifications")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "host_id", Value: 1}, {Key: "time", Value: -1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &NotificationRepository{col: col}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *domainrat.Notification) error {
	doc := notificationDocument{
		ID:     n.ID,
		HostID: string(n.HostID),
		Text:   n.Text,
		Time:   n.Time.UnixMilli(),
	}
	_, err := r.col.InsertOne(ctx, doc)
	return err
}

func (r *NotificationRepository) ListByHost(ctx context.Context, hostID domainacc.HostID) ([]*domainrat.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"host_id": string(hostID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	out := make([]*domainrat.Notification, 0)
	for cursor.Next(ctx) {
		var doc notificationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, &domainrat.Notification{
			ID:     doc.ID,
			HostID: domainacc.HostID(doc.HostID),
			Text:   doc.Text,
			Time:   timestampToTime(doc.Time),
		})
	}
	return out, cursor.Err()
}

type notificationDocument struct {
	ID     string `bson:"_id"`
	HostID string `bson:"host_id"`
	Text   string `bson:"text"`
	Time   int64  `bson:"time"`
}

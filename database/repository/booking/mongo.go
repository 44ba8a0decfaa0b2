package bookingRepo

import (
	"context"
	"time"

	"tablecall/database"
	"tablecall/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a BookingRepository backed by MongoDB.
func NewMongoBookingRepo() BookingRepository {
	db := database.MongoClient.Database("tablecall")
	return &mongoBookingRepo{
		coll: db.Collection("bookings"),
	}
}

func (r *mongoBookingRepo) Create(ctx context.Context, booking *models.Booking) (string, error) {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if booking.Status == "" {
		booking.Status = models.StatusPending
	}
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, booking)
	if err != nil {
		return "", err
	}
	return booking.ID, nil
}

func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *mongoBookingRepo) GetByCallID(ctx context.Context, callID string) (*models.Booking, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"restaurant_call_id": callID},
		bson.M{"confirmation_call_id": callID},
	}}
	var booking models.Booking
	err := r.coll.FindOne(ctx, filter).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Update runs read-validate-replace rather than a partial $set so the
// transition guard in applyUpdate stays the single authority.
func (r *mongoBookingRepo) Update(ctx context.Context, id string, input UpdateInput) (*models.Booking, error) {
	booking, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyUpdate(booking, input); err != nil {
		return nil, err
	}
	booking.UpdatedAt = time.Now().UTC()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": id}, booking)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return booking, nil
}

func (r *mongoBookingRepo) List(ctx context.Context) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

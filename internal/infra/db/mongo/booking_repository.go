package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "campusx/internal/domain/booking"
	domainoffering "campusx/internal/domain/offering"
	"campusx/internal/domain/shared/day"
	domainuser "campusx/internal/domain/user"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("bookings")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) List(ctx context.Context, query domainbooking.Query) ([]*domainbooking.Booking, error) {
	query = query.Normalized()

	filter := bson.M{}
	if query.RequesterID != "" {
		filter["requester_id"] = string(query.RequesterID)
	}
	if query.OfferingID != "" {
		filter["offering_id"] = string(query.OfferingID)
	}
	if query.OwnerID != "" {
		filter["owner_id"] = string(query.OwnerID)
	}
	if len(query.Statuses) > 0 {
		statuses := make([]string, 0, len(query.Statuses))
		for _, s := range query.Statuses {
			statuses = append(statuses, string(s))
		}
		filter["status"] = bson.M{"$in": statuses}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(query.Limit)).
		SetSkip(int64(query.Offset))

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

func (r *BookingRepository) ExistsActive(ctx context.Context, requesterID domainuser.ID, offeringID domainoffering.ID, occ domainoffering.Occurrence) (bool, error) {
	filter := bson.M{
		"requester_id": string(requesterID),
		"offering_id":  string(offeringID),
		"slot":         occ.Slot,
		"date":         occ.Day.String(),
		"status": bson.M{"$in": []string{
			string(domainbooking.StatusRequested),
			string(domainbooking.StatusApproved),
		}},
	}
	count, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type bookingDocument struct {
	ID                 string `bson:"_id"`
	RequesterID        string `bson:"requester_id"`
	OfferingID         string `bson:"offering_id"`
	OwnerID            string `bson:"owner_id"`
	Slot               string `bson:"slot"`
	Date               string `bson:"date"`
	Status             string `bson:"status"`
	CancelledBy        string `bson:"cancelled_by,omitempty"`
	CancellationReason string `bson:"cancellation_reason,omitempty"`
	CreatedAt          int64  `bson:"created_at"`
	UpdatedAt          int64  `bson:"updated_at"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:                 string(b.ID),
		RequesterID:        string(b.RequesterID),
		OfferingID:         string(b.OfferingID),
		OwnerID:            string(b.OwnerID),
		Slot:               b.Slot,
		Date:               b.Day.String(),
		Status:             string(b.Status),
		CancelledBy:        string(b.CancelledBy),
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt.UnixMilli(),
		UpdatedAt:          b.UpdatedAt.UnixMilli(),
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:                 domainbooking.ID(d.ID),
		RequesterID:        domainuser.ID(d.RequesterID),
		OfferingID:         domainoffering.ID(d.OfferingID),
		OwnerID:            domainuser.ID(d.OwnerID),
		Slot:               d.Slot,
		Day:                day.Day(d.Date),
		Status:             domainbooking.Status(d.Status),
		CancelledBy:        domainuser.ID(d.CancelledBy),
		CancellationReason: d.CancellationReason,
		CreatedAt:          timestampToTime(d.CreatedAt),
		UpdatedAt:          timestampToTime(d.UpdatedAt),
	}
}

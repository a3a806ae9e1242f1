package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainoffering "campusx/internal/domain/offering"
	"campusx/internal/domain/shared/day"
	domainuser "campusx/internal/domain/user"
)

type OfferingRepository struct {
	col *mongo.Collection
}

func NewOfferingRepository(db *mongo.Database) *OfferingRepository {
	return &OfferingRepository{col: db.Collection("offerings")}
}

func (r *OfferingRepository) ByID(ctx context.Context, id domainoffering.ID) (*domainoffering.Offering, error) {
	var doc offeringDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainoffering.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *OfferingRepository) ByOwner(ctx context.Context, ownerID domainuser.ID, limit, offset int) ([]*domainoffering.Offering, error) {
	return r.List(ctx, domainoffering.Filter{OwnerID: ownerID, Limit: limit, Offset: offset})
}

func (r *OfferingRepository) List(ctx context.Context, filter domainoffering.Filter) ([]*domainoffering.Offering, error) {
	query := bson.M{}
	if filter.OwnerID != "" {
		query["owner_id"] = string(filter.OwnerID)
	}
	if filter.Duration != "" {
		query["duration"] = filter.Duration
	}
	if len(filter.Tags) > 0 {
		query["tags"] = bson.M{"$in": filter.Tags}
	}
	if len(filter.Slots) > 0 {
		query["slots"] = bson.M{"$in": filter.Slots}
	}

	sortField := "created_at"
	if filter.SortBy == domainoffering.SortByCompleted {
		sortField = "completed_count"
	}
	order := -1
	if filter.Ascending {
		order = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: order}})
	if filter.Limit > 0 {
		opts = opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts = opts.SetSkip(int64(filter.Offset))
	}

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainoffering.Offering
	for cursor.Next(ctx) {
		var doc offeringDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

// Save writes the owner-editable fields. The booked-occurrence list and the
// completed counter are excluded so an owner edit can never clobber what
// the booking engine committed concurrently.
func (r *OfferingRepository) Save(ctx context.Context, off *domainoffering.Offering) error {
	doc := newOfferingDocument(off)
	update := bson.M{
		"$set": bson.M{
			"owner_id":    doc.OwnerID,
			"title":       doc.Title,
			"description": doc.Description,
			"tags":        doc.Tags,
			"slots":       doc.Slots,
			"duration":    doc.Duration,
			"image":       doc.Image,
			"updated_at":  doc.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"booked_slots":    []occurrenceDocument{},
			"completed_count": 0,
			"created_at":      doc.CreatedAt,
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, update, opts)
	return err
}

func (r *OfferingRepository) Delete(ctx context.Context, id domainoffering.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainoffering.ErrNotFound
	}
	return nil
}

// AddOccurrence inserts the pair with a conditional update: the filter
// matches only when the pair is absent, so two concurrent claims for the
// same (slot, day) cannot both succeed.
func (r *OfferingRepository) AddOccurrence(ctx context.Context, id domainoffering.ID, occ domainoffering.Occurrence) error {
	filter := bson.M{
		"_id": string(id),
		"booked_slots": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"slot": occ.Slot,
			"date": occ.Day.String(),
		}}},
	}
	update := bson.M{"$push": bson.M{"booked_slots": occurrenceDocument{
		Slot: occ.Slot,
		Date: occ.Day.String(),
	}}}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the offering is gone or the pair is already held.
		if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Err(); errors.Is(err, mongo.ErrNoDocuments) {
			return domainoffering.ErrNotFound
		}
		return domainoffering.ErrOccurrenceTaken
	}
	return nil
}

func (r *OfferingRepository) RemoveOccurrence(ctx context.Context, id domainoffering.ID, occ domainoffering.Occurrence) error {
	update := bson.M{"$pull": bson.M{"booked_slots": bson.M{
		"slot": occ.Slot,
		"date": occ.Day.String(),
	}}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainoffering.ErrNotFound
	}
	return nil
}

func (r *OfferingRepository) IncrementCompleted(ctx context.Context, id domainoffering.ID) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{"$inc": bson.M{"completed_count": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainoffering.ErrNotFound
	}
	return nil
}

type occurrenceDocument struct {
	Slot string `bson:"slot"`
	Date string `bson:"date"`
}

type offeringDocument struct {
	ID             string               `bson:"_id"`
	OwnerID        string               `bson:"owner_id"`
	Title          string               `bson:"title"`
	Description    string               `bson:"description"`
	Tags           []string             `bson:"tags,omitempty"`
	Slots          []string             `bson:"slots"`
	Duration       string               `bson:"duration"`
	Image          string               `bson:"image,omitempty"`
	CompletedCount int                  `bson:"completed_count"`
	BookedSlots    []occurrenceDocument `bson:"booked_slots"`
	CreatedAt      int64                `bson:"created_at"`
	UpdatedAt      int64                `bson:"updated_at"`
}

func newOfferingDocument(o *domainoffering.Offering) offeringDocument {
	booked := make([]occurrenceDocument, 0, len(o.Booked))
	for _, occ := range o.Booked {
		booked = append(booked, occurrenceDocument{Slot: occ.Slot, Date: occ.Day.String()})
	}
	return offeringDocument{
		ID:             string(o.ID),
		OwnerID:        string(o.OwnerID),
		Title:          o.Title,
		Description:    o.Description,
		Tags:           o.Tags,
		Slots:          o.Slots,
		Duration:       o.Duration,
		Image:          o.Image,
		CompletedCount: o.CompletedCount,
		BookedSlots:    booked,
		CreatedAt:      o.CreatedAt.UnixMilli(),
		UpdatedAt:      o.UpdatedAt.UnixMilli(),
	}
}

func (d offeringDocument) toAggregate() *domainoffering.Offering {
	booked := make([]domainoffering.Occurrence, 0, len(d.BookedSlots))
	for _, occ := range d.BookedSlots {
		booked = append(booked, domainoffering.Occurrence{Slot: occ.Slot, Day: day.Day(occ.Date)})
	}
	return &domainoffering.Offering{
		ID:             domainoffering.ID(d.ID),
		OwnerID:        domainuser.ID(d.OwnerID),
		Title:          d.Title,
		Description:    d.Description,
		Tags:           d.Tags,
		Slots:          d.Slots,
		Duration:       d.Duration,
		Image:          d.Image,
		CompletedCount: d.CompletedCount,
		Booked:         booked,
		CreatedAt:      timestampToTime(d.CreatedAt),
		UpdatedAt:      timestampToTime(d.UpdatedAt),
	}
}

package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainreview "campusx/internal/domain/review"
	domainuser "campusx/internal/domain/user"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection("reviews")}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreview.ID) (*domainreview.Review, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *ReviewRepository) ByAuthorAndProfile(ctx context.Context, authorID, profileID domainuser.ID) (*domainreview.Review, error) {
	return r.findOne(ctx, bson.M{
		"author_id":  string(authorID),
		"profile_id": string(profileID),
	})
}

func (r *ReviewRepository) findOne(ctx context.Context, filter bson.M) (*domainreview.Review, error) {
	var doc reviewDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreview.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) List(ctx context.Context, filter domainreview.Filter) ([]*domainreview.Review, error) {
	query := bson.M{}
	if filter.ProfileID != "" {
		query["profile_id"] = string(filter.ProfileID)
	}
	if filter.AuthorID != "" {
		query["author_id"] = string(filter.AuthorID)
	}
	if filter.Rating != 0 {
		query["rating"] = filter.Rating
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
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

	var out []*domainreview.Review
	for cursor.Next(ctx) {
		var doc reviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func (r *ReviewRepository) Save(ctx context.Context, rev *domainreview.Review) error {
	doc := newReviewDocument(rev)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *ReviewRepository) Delete(ctx context.Context, id domainreview.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainreview.ErrNotFound
	}
	return nil
}

type reviewDocument struct {
	ID        string `bson:"_id"`
	ProfileID string `bson:"profile_id"`
	AuthorID  string `bson:"author_id"`
	Rating    int    `bson:"rating"`
	Message   string `bson:"message,omitempty"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
}

func newReviewDocument(r *domainreview.Review) reviewDocument {
	return reviewDocument{
		ID:        string(r.ID),
		ProfileID: string(r.ProfileID),
		AuthorID:  string(r.AuthorID),
		Rating:    r.Rating,
		Message:   r.Message,
		CreatedAt: r.CreatedAt.UnixMilli(),
		UpdatedAt: r.UpdatedAt.UnixMilli(),
	}
}

func (d reviewDocument) toAggregate() *domainreview.Review {
	return &domainreview.Review{
		ID:        domainreview.ID(d.ID),
		ProfileID: domainuser.ID(d.ProfileID),
		AuthorID:  domainuser.ID(d.AuthorID),
		Rating:    d.Rating,
		Message:   d.Message,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}

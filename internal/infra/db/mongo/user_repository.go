package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainuser "campusx/internal/domain/user"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	return r.findOne(ctx, bson.M{"email": domainuser.NormalizeEmail(email)})
}

func (r *UserRepository) ByUsername(ctx context.Context, username string) (*domainuser.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) ByResetToken(ctx context.Context, token string) (*domainuser.User, error) {
	return r.findOne(ctx, bson.M{"reset_token": token})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domainuser.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainuser.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save writes the profile and credential fields only. Coins, rating and
// total_ratings are owned by the booking and review engines and change
// through CreditCoins, DebitCoinsClamped and SetRating, so a stale read
// followed by Save cannot roll an in-flight credit back.
func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	doc := newUserDocument(u)
	update := bson.M{
		"$set": bson.M{
			"email":           doc.Email,
			"username":        doc.Username,
			"full_name":       doc.FullName,
			"password_hash":   doc.PasswordHash,
			"role":            doc.Role,
			"city":            doc.City,
			"bio":             doc.Bio,
			"profile_picture": doc.ProfilePicture,
			"active":          doc.Active,
			"reset_token":     doc.ResetToken,
			"reset_expires":   doc.ResetExpires,
			"updated_at":      doc.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"coins":         doc.Coins,
			"rating":        doc.Rating,
			"total_ratings": doc.TotalRatings,
			"created_at":    doc.CreatedAt,
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		return domainuser.ErrEmailAlreadyUsed
	}
	return err
}

func (r *UserRepository) List(ctx context.Context, filter domainuser.Filter) ([]*domainuser.User, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = string(filter.Role)
	}
	if filter.City != "" {
		query["city"] = filter.City
	}
	if filter.Active != nil {
		query["active"] = *filter.Active
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

	var out []*domainuser.User
	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func (r *UserRepository) CreditCoins(ctx context.Context, id domainuser.ID, amount int64) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{"$inc": bson.M{"coins": amount}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainuser.ErrNotFound
	}
	return nil
}

// DebitCoinsClamped uses a pipeline update so the subtraction and the floor
// apply in one atomic server-side step.
func (r *UserRepository) DebitCoinsClamped(ctx context.Context, id domainuser.ID, amount int64) error {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"coins": bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$coins", amount}}}},
		}}},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainuser.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetRating(ctx context.Context, id domainuser.ID, rating float64, total int) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{"$set": bson.M{
		"rating":        rating,
		"total_ratings": total,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainuser.ErrNotFound
	}
	return nil
}

type userDocument struct {
	ID             string  `bson:"_id"`
	Email          string  `bson:"email"`
	Username       string  `bson:"username"`
	FullName       string  `bson:"full_name"`
	PasswordHash   string  `bson:"password_hash"`
	Role           string  `bson:"role"`
	City           string  `bson:"city,omitempty"`
	Bio            string  `bson:"bio,omitempty"`
	ProfilePicture string  `bson:"profile_picture,omitempty"`
	Coins          int64   `bson:"coins"`
	Rating         float64 `bson:"rating"`
	TotalRatings   int     `bson:"total_ratings"`
	Active         bool    `bson:"active"`
	ResetToken     string  `bson:"reset_token,omitempty"`
	ResetExpires   int64   `bson:"reset_expires,omitempty"`
	CreatedAt      int64   `bson:"created_at"`
	UpdatedAt      int64   `bson:"updated_at"`
}

func newUserDocument(u *domainuser.User) userDocument {
	doc := userDocument{
		ID:             string(u.ID),
		Email:          u.Email,
		Username:       u.Username,
		FullName:       u.FullName,
		PasswordHash:   u.PasswordHash,
		Role:           string(u.Role),
		City:           u.City,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		Coins:          u.Coins,
		Rating:         u.Rating,
		TotalRatings:   u.TotalRatings,
		Active:         u.Active,
		ResetToken:     u.ResetToken,
		CreatedAt:      u.CreatedAt.UnixMilli(),
		UpdatedAt:      u.UpdatedAt.UnixMilli(),
	}
	if !u.ResetExpires.IsZero() {
		doc.ResetExpires = u.ResetExpires.UnixMilli()
	}
	return doc
}

func (d userDocument) toAggregate() *domainuser.User {
	u := &domainuser.User{
		ID:             domainuser.ID(d.ID),
		Email:          d.Email,
		Username:       d.Username,
		FullName:       d.FullName,
		PasswordHash:   d.PasswordHash,
		Role:           domainuser.Role(d.Role),
		City:           d.City,
		Bio:            d.Bio,
		ProfilePicture: d.ProfilePicture,
		Coins:          d.Coins,
		Rating:         d.Rating,
		TotalRatings:   d.TotalRatings,
		Active:         d.Active,
		ResetToken:     d.ResetToken,
		CreatedAt:      timestampToTime(d.CreatedAt),
		UpdatedAt:      timestampToTime(d.UpdatedAt),
	}
	if d.ResetExpires != 0 {
		u.ResetExpires = timestampToTime(d.ResetExpires)
	}
	return u
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

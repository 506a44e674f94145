package mongo

import (
	"context"
	"errors"
	"time"

	"fitstudio/studio-app/internal/domain"
	"fitstudio/studio-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const membershipCollectionName = "memberships"

// mongoMembershipRepository implements repository.MembershipRepository.
type mongoMembershipRepository struct {
	collection *mongo.Collection
}

// NewMongoMembershipRepository creates a new membership repository backed by MongoDB.
func NewMongoMembershipRepository(db *mongo.Database) repository.MembershipRepository {
	return &mongoMembershipRepository{
		collection: db.Collection(membershipCollectionName),
	}
}

// Create inserts a new membership. The unique index on userId makes a second
// concurrent creation for the same user fail with ErrConflict instead of
// producing a duplicate.
func (r *mongoMembershipRepository) Create(ctx context.Context, membership *domain.Membership) (primitive.ObjectID, error) {
	if membership.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("membership requires a userId")
	}
	if !domain.ValidPlan(membership.PlanType) {
		return primitive.NilObjectID, errors.New("membership requires a valid plan type")
	}

	membership.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if membership.StartDate.IsZero() {
		membership.StartDate = now
	}
	membership.CreatedAt = now
	membership.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, membership)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted membership ID")
	}
	return insertedID, nil
}

// GetByUserID retrieves the membership belonging to a user.
func (r *mongoMembershipRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Membership, error) {
	var membership domain.Membership
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&membership)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &membership, nil
}

// GetByUserIDs retrieves memberships for a set of users in one query,
// for the roster list's eager join.
func (r *mongoMembershipRepository) GetByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]domain.Membership, error) {
	if len(userIDs) == 0 {
		return []domain.Membership{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"userId": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var memberships []domain.Membership
	if err = cursor.All(ctx, &memberships); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return memberships, nil
}

// Update modifies plan, duration and active flag. StartDate is immutable
// after creation and deliberately not part of the update document.
func (r *mongoMembershipRepository) Update(ctx context.Context, membership *domain.Membership) error {
	if membership.ID == primitive.NilObjectID {
		return errors.New("membership ID is required for update")
	}

	update := bson.M{"$set": bson.M{
		"planType":     membership.PlanType,
		"durationDays": membership.DurationDays,
		"isActive":     membership.IsActive,
		"updatedAt":    time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": membership.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByUserID removes the membership belonging to a user, if any.
func (r *mongoMembershipRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID})
	return err
}

// EnsureMembershipIndexes creates necessary indexes for the memberships
// collection. The unique userId index is the membership-exclusivity
// guarantee; do not remove it.
func EnsureMembershipIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

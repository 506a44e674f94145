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

const instructorCollectionName = "instructors"

// mongoInstructorRepository implements repository.InstructorRepository.
type mongoInstructorRepository struct {
	collection *mongo.Collection
}

// NewMongoInstructorRepository creates a new instructor repository backed by MongoDB.
func NewMongoInstructorRepository(db *mongo.Database) repository.InstructorRepository {
	return &mongoInstructorRepository{
		collection: db.Collection(instructorCollectionName),
	}
}

// Create inserts a new instructor record.
func (r *mongoInstructorRepository) Create(ctx context.Context, instructor *domain.Instructor) (primitive.ObjectID, error) {
	if instructor.UserID == primitive.NilObjectID || instructor.Specialty == "" {
		return primitive.NilObjectID, errors.New("instructor requires a userId and a specialty")
	}

	instructor.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	instructor.CreatedAt = now
	instructor.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, instructor)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted instructor ID")
	}
	return insertedID, nil
}

// GetByID retrieves an instructor by ID.
func (r *mongoInstructorRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Instructor, error) {
	var instructor domain.Instructor
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&instructor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &instructor, nil
}

// GetByUserID retrieves the instructor record linked to a user, if any.
func (r *mongoInstructorRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Instructor, error) {
	var instructor domain.Instructor
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&instructor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &instructor, nil
}

// List retrieves all instructors, sorted by specialty.
func (r *mongoInstructorRepository) List(ctx context.Context) ([]domain.Instructor, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "specialty", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var instructors []domain.Instructor
	if err = cursor.All(ctx, &instructors); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return instructors, nil
}

// Update modifies an existing instructor.
func (r *mongoInstructorRepository) Update(ctx context.Context, instructor *domain.Instructor) error {
	if instructor.ID == primitive.NilObjectID {
		return errors.New("instructor ID is required for update")
	}

	update := bson.M{"$set": bson.M{
		"specialty":      instructor.Specialty,
		"bio":            instructor.Bio,
		"photoObjectKey": instructor.PhotoObjectKey,
		"updatedAt":      time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": instructor.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an instructor. Routines and exercises owned by it are
// removed by the service-level cascade.
func (r *mongoInstructorRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByUserID removes the instructor record linked to a user, if any.
func (r *mongoInstructorRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID})
	return err
}

// EnsureInstructorIndexes creates necessary indexes for the instructors collection.
func EnsureInstructorIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

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

const routineCollectionName = "routines"

// mongoRoutineRepository implements repository.RoutineRepository.
type mongoRoutineRepository struct {
	collection *mongo.Collection
}

// NewMongoRoutineRepository creates a new routine repository backed by MongoDB.
func NewMongoRoutineRepository(db *mongo.Database) repository.RoutineRepository {
	return &mongoRoutineRepository{
		collection: db.Collection(routineCollectionName),
	}
}

// Create inserts a new routine.
func (r *mongoRoutineRepository) Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error) {
	if routine.Name == "" || routine.InstructorID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("routine requires a name and an instructorId")
	}

	routine.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	routine.CreatedAt = now
	routine.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, routine)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted routine ID")
	}
	return insertedID, nil
}

// GetByID retrieves a routine by ID.
func (r *mongoRoutineRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error) {
	var routine domain.Routine
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&routine)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &routine, nil
}

// List retrieves all routines, sorted by name.
func (r *mongoRoutineRepository) List(ctx context.Context) ([]domain.Routine, error) {
	return r.find(ctx, bson.M{})
}

// ListByInstructorID retrieves all routines owned by an instructor.
func (r *mongoRoutineRepository) ListByInstructorID(ctx context.Context, instructorID primitive.ObjectID) ([]domain.Routine, error) {
	return r.find(ctx, bson.M{"instructorId": instructorID})
}

// ListByClientID retrieves all routines a profile is enrolled in.
func (r *mongoRoutineRepository) ListByClientID(ctx context.Context, profileID primitive.ObjectID) ([]domain.Routine, error) {
	return r.find(ctx, bson.M{"clientIds": profileID})
}

func (r *mongoRoutineRepository) find(ctx context.Context, filter bson.M) ([]domain.Routine, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var routines []domain.Routine
	if err = cursor.All(ctx, &routines); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return routines, nil
}

// Update modifies the mutable routine fields. The enrollment set is managed
// only through the atomic AddClientIfAbsent/RemoveClientIfPresent pair.
func (r *mongoRoutineRepository) Update(ctx context.Context, routine *domain.Routine) error {
	if routine.ID == primitive.NilObjectID {
		return errors.New("routine ID is required for update")
	}

	update := bson.M{"$set": bson.M{
		"name":            routine.Name,
		"description":     routine.Description,
		"instructorId":    routine.InstructorID,
		"durationMinutes": routine.DurationMinutes,
		"updatedAt":       time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": routine.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a routine. Its exercises are removed by the service-level cascade.
func (r *mongoRoutineRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByInstructorID removes all routines owned by an instructor.
func (r *mongoRoutineRepository) DeleteByInstructorID(ctx context.Context, instructorID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"instructorId": instructorID})
	return err
}

// Exists reports whether a routine with the given ID is present.
func (r *mongoRoutineRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddClientIfAbsent adds the profile to the routine's enrollment set as one
// atomic operation. The $ne guard means the update matches only when the
// pair is absent; concurrent duplicates cannot both match.
func (r *mongoRoutineRepository) AddClientIfAbsent(ctx context.Context, routineID, profileID primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": routineID, "clientIds": bson.M{"$ne": profileID}}
	update := bson.M{
		"$addToSet": bson.M{"clientIds": profileID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// RemoveClientIfPresent removes the profile from the routine's enrollment
// set as one atomic operation; it matches only when the pair exists.
func (r *mongoRoutineRepository) RemoveClientIfPresent(ctx context.Context, routineID, profileID primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": routineID, "clientIds": profileID}
	update := bson.M{
		"$pull": bson.M{"clientIds": profileID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// RemoveClientFromAll pulls the profile out of every routine's enrollment
// set. Used by the user deletion cascade.
func (r *mongoRoutineRepository) RemoveClientFromAll(ctx context.Context, profileID primitive.ObjectID) error {
	filter := bson.M{"clientIds": profileID}
	update := bson.M{
		"$pull": bson.M{"clientIds": profileID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// EnsureRoutineIndexes creates necessary indexes for the routines collection.
func EnsureRoutineIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "instructorId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "clientIds", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dygon/bus-tracking/internal/core/domain"
	"github.com/dygon/bus-tracking/internal/core/ports"
)

const collectionVehicles = "vehicles"

// VehicleRepository implements ports.VehicleRepository using MongoDB.
// Documents are keyed by vehicle_number.
type VehicleRepository struct {
	col *mongo.Collection
}

var _ ports.VehicleRepository = (*VehicleRepository)(nil)

func NewVehicleRepository(db *mongo.Database) *VehicleRepository {
	return &VehicleRepository{col: db.Collection(collectionVehicles)}
}

// Upsert creates or replaces the document for s.VehicleNumber.
func (r *VehicleRepository) Upsert(ctx context.Context, s domain.VehicleState) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}

	filter := bson.M{"vehicle_number": s.VehicleNumber}
	_, err := r.col.ReplaceOne(ctx, filter, s, options.Replace().SetUpsert(true))
	return err
}

// FindByStatus returns every persisted vehicle with the given status.
func (r *VehicleRepository) FindByStatus(ctx context.Context, status domain.VehicleStatus) ([]domain.VehicleState, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"status": string(status)})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.VehicleState
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes one vehicle and reports whether a document existed.
func (r *VehicleRepository) Delete(ctx context.Context, vehicleNumber string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"vehicle_number": vehicleNumber})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// DeleteAll empties the collection and returns the number of removed documents.
func (r *VehicleRepository) DeleteAll(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *VehicleRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{})
}

// EnsureIndexes creates the unique vehicle_number index and a status index
// used by recovery.
func (r *VehicleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "vehicle_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

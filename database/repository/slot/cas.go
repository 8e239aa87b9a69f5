// File: database/repository/slot/cas.go
package slotRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mariiahub/models"
)

// casUpdate applies a version-guarded update: the filter includes the version
// the caller read, the update bumps it. A matched count of zero means either
// the slot changed under us or it never existed; the two are disambiguated
// with a follow-up existence check so callers get a precise error.
func (r *mongoSlotRepo) casUpdate(ctx context.Context, slotID string, version int64, update bson.M) error {
	filter := bson.M{"id": slotID, "version": version}

	set, _ := update["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
	}
	update["$set"] = set
	update["$inc"] = bson.M{"version": 1}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		err := r.coll.FindOne(ctx, bson.M{"id": slotID}).Err()
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrVersionMismatch
	}
	return nil
}

func (r *mongoSlotRepo) PlaceHold(ctx context.Context, slotID string, version int64, hold *models.ReservationHold) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.casUpdate(ctx, slotID, version, bson.M{
		"$set": bson.M{
			"available": false,
			"hold":      hold,
		},
	})
}

func (r *mongoSlotRepo) ClearHold(ctx context.Context, slotID string, version int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.casUpdate(ctx, slotID, version, bson.M{
		"$set": bson.M{
			"available": true,
			"hold":      nil,
		},
	})
}

func (r *mongoSlotRepo) UpdateHoldExpiry(ctx context.Context, slotID string, version int64, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.casUpdate(ctx, slotID, version, bson.M{
		"$set": bson.M{
			"hold.expiresAt": expiresAt,
		},
	})
}

func (r *mongoSlotRepo) FindExpiredHolds(ctx context.Context, now time.Time, limit int64) ([]models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"hold":           bson.M{"$ne": nil},
		"hold.expiresAt": bson.M{"$lte": now},
		"bookingId":      bson.M{"$in": bson.A{nil, ""}},
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var slots []models.TimeSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

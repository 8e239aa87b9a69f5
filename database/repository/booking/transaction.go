// File: database/repository/booking/transaction.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"mariiahub/models"
)

// Finalize converts a held slot into a permanent booking. The booking insert
// and the slot flip commit or abort together; a partial write here is exactly
// the "paid with no booking" state the reconciliation queue exists for.
func (repo *mongoBookingRepo) Finalize(ctx context.Context, booking *models.Booking, slotVersion int64) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		if _, err := repo.bookingColl.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}

		// The slot stays unavailable: the hold is consumed, not released.
		filter := bson.M{"id": booking.SlotID, "version": slotVersion}
		update := bson.M{
			"$set": bson.M{
				"available": false,
				"hold":      nil,
				"bookingId": booking.ID,
			},
			"$inc": bson.M{"version": 1},
		}
		res, err := repo.slotColl.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("consume slot failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrSlotMismatch
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if err == ErrSlotMismatch {
			return err
		}
		return fmt.Errorf("finalize transaction failed: %w", err)
	}

	return nil
}

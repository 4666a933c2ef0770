/* settings.go
 * Contains the methods for interacting with the settings collection
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"errors"
	"llaves-bot/api/logic"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const finalFormatKey = "final_format"

// GetFinalFormat returns the stored final format. Cycles never configured are returned as 0.
func (s *Store) GetFinalFormat(ctx context.Context) (logic.FinalFormat, error) {
	var format logic.FinalFormat
	err := s.Collections.Settings.FindOne(ctx, bson.M{"_id": finalFormatKey}).Decode(&format)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return logic.FinalFormat{}, nil
		}
		return logic.FinalFormat{}, unavailable("get final format", err)
	}
	return format, nil
}

// SetFinalFormat stores the final format of both cycles
func (s *Store) SetFinalFormat(ctx context.Context, format logic.FinalFormat) error {
	update := bson.M{"$set": bson.M{"basico": format.Basico, "superior": format.Superior}}
	_, err := s.Collections.Settings.UpdateOne(ctx, bson.M{"_id": finalFormatKey}, update, options.Update().SetUpsert(true))
	if err != nil {
		return unavailable("set final format", err)
	}
	return nil
}

/* store.go
 * Contains the store struct and NewStore function. The methods for this package were split into files by
 * collection: matches, teams, settings and counters. Each of these files contain methods for interacting with that
 * part of the database
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"fmt"
	"llaves-bot/api/shared"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Collections struct {
		Matches  *mongo.Collection
		Teams    *mongo.Collection
		Settings *mongo.Collection
		Counters *mongo.Collection
	}
}

// Function for initialising Store. Connects to the db and sets the collection values
// Preconditions: Receives a context, the database name and the mongo URI
// Postconditions: Returns pointer to the Store object, or error if it occurs
func NewStore(ctx context.Context, dbName string, mongoURI string) (*Store, error) {
	if dbName == "" || mongoURI == "" {
		return nil, fmt.Errorf("dbName and mongoURI cannot be empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, unavailable("connect", err)
	}
	db := client.Database(dbName)

	s := &Store{
		Client:   client,
		Database: db,
	}
	s.Collections.Matches = db.Collection("matches")
	s.Collections.Teams = db.Collection("teams")
	s.Collections.Settings = db.Collection("settings")
	s.Collections.Counters = db.Collection("counters")
	return s, nil
}

// EnsureIndexes creates the slot index used by upserts and the team name index used by roster imports
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.Collections.Matches.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "cycle", Value: 1}, {Key: "round", Value: 1}, {Key: "bracket_position", Value: 1}},
	})
	if err != nil {
		return unavailable("create match index", err)
	}
	_, err = s.Collections.Teams.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}, {Key: "course", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return unavailable("create team index", err)
	}
	return nil
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Disconnect(ctx)
}

// unavailable wraps a driver failure so callers can tell it apart with errors.Is(err, shared.ErrStoreUnavailable)
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", shared.ErrStoreUnavailable, op, err)
}

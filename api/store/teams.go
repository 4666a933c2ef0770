/* teams.go
 * Contains the methods for interacting with the teams collection
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"llaves-bot/api/shared"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListTeams returns the teams of a cycle ordered by course then name. An empty cycle returns every team.
func (s *Store) ListTeams(ctx context.Context, cycle shared.Cycle) ([]shared.Team, error) {
	filter := bson.M{}
	if cycle != "" {
		filter["cycle"] = cycle
	}
	opts := options.Find().SetSort(bson.D{{Key: "course", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := s.Collections.Teams.Find(ctx, filter, opts)
	if err != nil {
		return nil, unavailable("find teams", err)
	}
	defer cursor.Close(ctx)

	var teams []shared.Team
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, unavailable("decode teams", err)
	}
	return teams, nil
}

// SaveTeams stores teams keyed by name and course. Teams already on the roster keep their id.
// Preconditions: Receives the teams to store, ids are ignored
// Postconditions: Returns the number of new teams, or a store error
func (s *Store) SaveTeams(ctx context.Context, teams []shared.Team) (int, error) {
	inserted := 0
	for _, team := range teams {
		filter := bson.M{"name": team.Name, "course": team.Course}
		update := bson.M{
			"$set":         bson.M{"cycle": team.Cycle},
			"$setOnInsert": bson.M{"_id": primitive.NewObjectID().Hex()},
		}
		res, err := s.Collections.Teams.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		if err != nil {
			return inserted, unavailable("save team", err)
		}
		if res.UpsertedCount > 0 {
			inserted++
		}
	}
	return inserted, nil
}

// teamsByID loads the teams referenced by a set of matches
func (s *Store) teamsByID(ctx context.Context, ids []shared.TeamID) (map[shared.TeamID]shared.Team, error) {
	teams := make(map[shared.TeamID]shared.Team, len(ids))
	if len(ids) == 0 {
		return teams, nil
	}

	cursor, err := s.Collections.Teams.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, unavailable("find match teams", err)
	}
	defer cursor.Close(ctx)

	var found []shared.Team
	if err := cursor.All(ctx, &found); err != nil {
		return nil, unavailable("decode match teams", err)
	}
	for _, t := range found {
		teams[t.ID] = t
	}
	return teams, nil
}

// Package store persists the active grid's state in MongoDB. Persistence is
// observational: a cycle never depends on it, and a write failure is the
// caller's to log, not a reason to stop trading.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "grid_states"

// State is the single active-grid document.
type State struct {
	Symbol       string    `bson:"symbol" json:"symbol"`
	Positions    int       `bson:"positions" json:"positions"`
	TotalAmount  float64   `bson:"totalAmount" json:"total_amount"`
	MinDistance  float64   `bson:"minDistance" json:"min_distance"`
	MaxDistance  float64   `bson:"maxDistance" json:"max_distance"`
	Active       bool      `bson:"active" json:"active"`
	CurrentPrice string    `bson:"currentPrice,omitempty" json:"current_price,omitempty"`
	OrderIDs     []string  `bson:"orderIds,omitempty" json:"order_ids,omitempty"`
	LastUpdate   time.Time `bson:"lastUpdate" json:"last_update"`
}

type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// ErrNoActiveGrid means no grid is currently marked active.
var ErrNoActiveGrid = errors.New("no active grid")

func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return &Store{
		client: client,
		coll:   client.Database(database).Collection(collectionName),
	}, nil
}

// SaveState upserts the active grid document for the symbol.
func (s *Store) SaveState(ctx context.Context, state State) error {
	state.Active = true
	state.LastUpdate = time.Now().UTC()
	opts := options.Replace().SetUpsert(true)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"active": true}, state, opts)
	return err
}

// ActiveState returns the currently active grid, or ErrNoActiveGrid.
func (s *Store) ActiveState(ctx context.Context) (State, error) {
	var state State
	err := s.coll.FindOne(ctx, bson.M{"active": true}).Decode(&state)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return State{}, ErrNoActiveGrid
	}
	if err != nil {
		return State{}, err
	}
	return state, nil
}

// Deactivate marks the active grid stopped, keeping the document for history.
func (s *Store) Deactivate(ctx context.Context) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"active": true},
		bson.M{"$set": bson.M{"active": false, "lastUpdate": time.Now().UTC()}})
	return err
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

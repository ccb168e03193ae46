package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"ticket-bot/ticket"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore persists tickets in a MongoDB collection. The partial
// unique index on (user_id, family) filtered to open documents plays
// the same role as the SQLite partial index: AddTicket is the atomic
// uniqueness gate.
type MongoStore struct {
	client  *mongo.Client
	tickets *mongo.Collection
}

func NewMongoStore(uri, dbName string) (*MongoStore, error) {
	if uri == "" || dbName == "" {
		return nil, fmt.Errorf("database.mongodb.uri and database.mongodb.database must be set in config.json to use driver=mongodb")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	coll := client.Database(dbName).Collection("tickets")

	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "channel_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "family", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(ticket.StatusOpen)}),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create indexes: %w", err)
	}

	log.Printf("[DB] MongoDB initialised (database %s)", dbName)
	return &MongoStore{client: client, tickets: coll}, nil
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *MongoStore) AddTicket(t ticket.Ticket) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := m.tickets.InsertOne(ctx, t)
	if mongo.IsDuplicateKeyError(err) {
		// Disambiguate which unique index fired.
		count, cerr := m.tickets.CountDocuments(ctx, bson.M{"id": t.ID})
		if cerr == nil && count > 0 {
			return ticket.ErrDuplicateID
		}
		return ticket.ErrDuplicateOpen
	}
	return err
}

func (m *MongoStore) GetTicketByChannelID(channelID string) (*ticket.Ticket, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var t ticket.Ticket
	err := m.tickets.FindOne(ctx, bson.M{"channel_id": channelID}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, ticket.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (m *MongoStore) OpenTicketForUser(userID string, family ticket.Family) (*ticket.Ticket, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var t ticket.Ticket
	err := m.tickets.FindOne(ctx, bson.M{
		"user_id": userID,
		"family":  string(family),
		"status":  string(ticket.StatusOpen),
	}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, ticket.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (m *MongoStore) UpdateTicketDetails(id int, d ticket.Details) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	set := bson.M{}
	if d.Package != "" {
		set["details.package"] = d.Package
	}
	if d.Price != "" {
		set["details.price"] = d.Price
	}
	if d.Quantity != 0 {
		set["details.quantity"] = d.Quantity
	}
	if d.Duration != "" {
		set["details.duration"] = d.Duration
	}
	if d.BotType != "" {
		set["details.bot_type"] = d.BotType
	}
	for k, v := range d.Form {
		set["details.form."+k] = v
	}
	if len(set) == 0 {
		return nil
	}

	res, err := m.tickets.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ticket.ErrNotFound
	}
	return nil
}

func (m *MongoStore) CloseTicket(id int, closedAt time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := m.tickets.UpdateOne(ctx,
		bson.M{"id": id, "status": string(ticket.StatusOpen)},
		bson.M{"$set": bson.M{"status": string(ticket.StatusClosed), "closed_at": closedAt.UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	count, err := m.tickets.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if count == 0 {
		return ticket.ErrNotFound
	}
	// Already closed: no-op by contract.
	return nil
}

func (m *MongoStore) ReadAll() ([]ticket.Ticket, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.tickets.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var all []ticket.Ticket
	return all, cursor.All(ctx, &all)
}

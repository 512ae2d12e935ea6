package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDB struct {
	Client *mongo.Client
	DBName string
	URL    string
}

func New(url, dbName string) *MongoDB {
	return &MongoDB{
		URL:    url,
		DBName: dbName,
	}
}

func (m *MongoDB) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.URL))
	if err != nil {
		return err
	}
	m.Client = client
	if err := m.Client.Ping(ctx, nil); err != nil {
		return err
	}

	return m.ensureIndexes(ctx)
}

// ensureIndexes creates the unique email index backing the
// duplicate-registration check.
func (m *MongoDB) ensureIndexes(ctx context.Context) error {
	users := m.Client.Database(m.DBName).Collection("users")
	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (m *MongoDB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

func (m *MongoDB) Database() *mongo.Database {
	return m.Client.Database(m.DBName)
}

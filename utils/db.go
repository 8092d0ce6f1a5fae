package utils

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB connects to MongoDB using MONGODB_URI and verifies the
// connection with a ping
func ConnectDB() *mongo.Client {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatal("Error connecting to MongoDB: ", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal("MongoDB ping failed: ", err)
	}

	log.Println("Connected to MongoDB")
	return client
}

// DatabaseName returns the configured database name
func DatabaseName() string {
	name := os.Getenv("DB_NAME")
	if name == "" {
		name = "medtrap"
	}
	return name
}

// EnsureIndexes creates the unique and text indexes the API relies on.
// Creation is idempotent; existing indexes are left alone.
func EnsureIndexes(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := client.Database(DatabaseName())
	unique := options.Index().SetUnique(true)

	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "drugLicenseNo", Value: 1}}, Options: unique},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("companies").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "licenseNumber", Value: 1}}, Options: unique},
		{Keys: bson.D{
			{Key: "name", Value: "text"},
			{Key: "shortName", Value: "text"},
			{Key: "description", Value: "text"},
			{Key: "specializations", Value: "text"},
		}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("medicines").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "name", Value: "text"},
			{Key: "genericName", Value: "text"},
			{Key: "brandName", Value: "text"},
			{Key: "description", Value: "text"},
			{Key: "category", Value: "text"},
		}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("stockists").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "licenseNumber", Value: 1}}, Options: unique},
		{Keys: bson.D{
			{Key: "name", Value: "text"},
			{Key: "address.city", Value: "text"},
			{Key: "address.state", Value: "text"},
			{Key: "specializations", Value: "text"},
		}},
	})
	return err
}

package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"storefront/internal/config"
)

var Client *mongo.Client

// Connect establishes the MongoDB connection and verifies it with a ping.
func Connect() *mongo.Database {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.AppEnv.MongoURI))
	if err != nil {
		log.Fatalf("[DB] [ERROR] Failed to connect to MongoDB: %v", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("[DB] [ERROR] Failed to ping MongoDB: %v", err)
	}

	Client = client
	log.Println("[DB] [INFO] Connected to MongoDB")
	return client.Database(config.AppEnv.DBName)
}

func Disconnect() {
	if Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Client.Disconnect(ctx); err != nil {
		log.Printf("[DB] [ERROR] Failed to disconnect from MongoDB: %v", err)
	}
}

package client

import (
	"context"
	"fmt"
	"time"

	"surfaura/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetMongo connects and pings within connTimeout. On failure the client is
// left without a Mongo handle so the service can keep serving everything
// that does not need the database.
func (c *Client) SetMongo(ctx context.Context, log *logger.Logger, mongoURI string, connTimeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, connTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(mongoURI).
		SetServerSelectionTimeout(connTimeout))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		if disconnectErr := client.Disconnect(context.Background()); disconnectErr != nil {
			log.Warn("Failed to release MongoDB client after ping failure", "error", disconnectErr)
		}
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info("Successfully connected to MongoDB")
	c.Mongo = client
	return nil
}

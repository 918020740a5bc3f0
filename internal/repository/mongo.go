package repository

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	serverSelectionTimeout = 5 * time.Second
	socketTimeout          = 45 * time.Second
	connectMaxElapsed      = 1 * time.Minute
)

// ConnectMongo dials the cluster and verifies it with a ping, retrying with
// exponential backoff for up to a minute before giving up. A cluster that
// never comes up is a startup failure, not something to spin on forever.
func ConnectMongo(ctx context.Context, uri string, logger *zap.SugaredLogger) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(serverSelectionTimeout).
		SetSocketTimeout(socketTimeout)

	var client *mongo.Client
	operation := func() error {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		c, err := mongo.Connect(connectCtx, opts)
		if err != nil {
			return err
		}
		if err := c.Ping(connectCtx, nil); err != nil {
			_ = c.Disconnect(context.Background())
			return err
		}
		client = c
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = connectMaxElapsed
	notify := func(err error, next time.Duration) {
		logger.Warnf("mongo connect failed, retrying in %s: %v", next, err)
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, err
	}
	logger.Info("mongo connected")
	return client, nil
}

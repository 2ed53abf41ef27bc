// Package mongo connects the optional document store used for video lists.
package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

const DefaultDatabase = "bytesolver"

type Config struct {
	URI      string
	Database string
}

type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, log *logger.Logger, cfg Config) (*Client, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, fmt.Errorf("mongo: missing URI")
	}
	name := strings.TrimSpace(cfg.Database)
	if name == "" {
		name = DefaultDatabase
	}

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	log.With("client", "Mongo").Info("Connected to MongoDB", "host", clusterHost(uri), "database", name)
	return &Client{client: client, db: client.Database(name)}, nil
}

func (c *Client) Database() *mongo.Database { return c.db }

func (c *Client) Ping(ctx context.Context) error { return c.client.Ping(ctx, nil) }

func (c *Client) Close(ctx context.Context) error { return c.client.Disconnect(ctx) }

// clusterHost strips credentials and the path from a connection string.
func clusterHost(uri string) string {
	rest := uri
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		rest = rest[i+1:]
	}
	if i := strings.IndexAny(rest, "/?"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// Package database opens connections to the SQL Server and MongoDB backends.
package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/ubuntu/decorate"

	// Registers the "sqlserver" driver.
	_ "github.com/microsoft/go-mssqldb"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectSQL opens a SQL Server pool and checks it answers.
func ConnectSQL(ctx context.Context, connString string) (db *sql.DB, err error) {
	defer decorate.OnError(&err, "could not connect to SQL Server")

	db, err = sql.Open("sqlserver", connString)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	slog.Debug("Connected to SQL Server")
	return db, nil
}

// ConnectMongo creates a MongoDB client and checks the primary answers.
func ConnectMongo(ctx context.Context, connString string) (client *mongo.Client, err error) {
	defer decorate.OnError(&err, "could not connect to MongoDB")

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err = mongo.Connect(connectCtx, options.Client().ApplyURI(connString))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	slog.Debug("Connected to MongoDB")
	return client, nil
}

package mongoclient

import (
	"context"
	"crypto/tls"
	"runtime"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/x-xyz/marketengine/base/log"
)

const (
	mgSocketTimeout  = 60 * time.Second
	mgConnectTimeout = 15 * time.Second
)

// Client wraps mongo.Client with the database every repository works on
type Client struct {
	DbName string
	*mongo.Client
}

// MustConnectMongoClient panics when ConnectMongoClient fails
func MustConnectMongoClient(uri, authDBName, dbName string, ssl, setSafe bool, poolSizeMultiplier float64) *Client {
	cli, err := ConnectMongoClient(uri, authDBName, dbName, ssl, setSafe, poolSizeMultiplier)
	if err != nil {
		log.Log().WithFields(log.Fields{"mongoURI": uri, "err": err}).Panic("fail to dial Mongo")
	}
	return cli
}

// ConnectMongoClient dials uri and pings the primary.
// Settlement relies on multi-document transactions, so a standalone server
// is accepted but logged as a warning.
func ConnectMongoClient(uri, authDBName, dbName string, ssl, setSafe bool, poolSizeMultiplier float64) (*Client, error) {
	connSetting, err := connstring.Parse(uri)
	if err != nil {
		log.Log().WithFields(log.Fields{"dbName": dbName, "err": err}).Error("fail to parse connstring")
		return nil, err
	}
	fields := log.Fields{"mongoHosts": connSetting.Hosts, "dbName": dbName}

	opts := clientOptions(uri, authDBName, connSetting, ssl, setSafe, poolSizeMultiplier)

	ctx, cancel := context.WithTimeout(context.Background(), mgConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		log.Log().WithFields(fields).WithField("err", err).Error("fail to connect mongo db")
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Log().WithFields(fields).WithField("err", err).Error("fail to ping mongo db")
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	if connSetting.ReplicaSet == "" && len(connSetting.Hosts) == 1 {
		log.Log().WithFields(fields).Warn("no replica set configured, settlement transactions may be rejected")
	}

	log.Log().WithFields(fields).Info("mongo connected")
	return &Client{
		Client: client,
		DbName: dbName,
	}, nil
}

func clientOptions(uri, authDBName string, cs connstring.ConnString, ssl, setSafe bool, poolSizeMultiplier float64) *options.ClientOptions {
	opts := options.Client().ApplyURI(uri).
		SetSocketTimeout(mgSocketTimeout).
		SetRetryWrites(true).
		SetRegistry(Registry())

	// credentials without authSource authenticate against authDBName
	if cs.Username != "" && cs.AuthSource == "" {
		opts.SetAuth(options.Credential{
			AuthMechanism:           cs.AuthMechanism,
			AuthMechanismProperties: cs.AuthMechanismProperties,
			Username:                cs.Username,
			Password:                cs.Password,
			PasswordSet:             cs.PasswordSet,
			AuthSource:              authDBName,
		})
	}

	// the multiplier sizes the whole deployment, every host gets its own pool
	hosts := len(cs.Hosts)
	if hosts == 0 {
		hosts = 1
	}
	poolSize := int(float64(runtime.NumCPU()) * poolSizeMultiplier)
	poolSize = (poolSize + hosts - 1) / hosts
	if poolSize < 1 {
		poolSize = 1
	}
	opts.SetMinPoolSize(uint64(poolSize / 4))
	opts.SetMaxPoolSize(uint64(poolSize))
	log.Log().WithField("poolSize", poolSize).Info("mongo driver pool size")

	if ssl {
		opts.SetTLSConfig(&tls.Config{})
	}
	if setSafe {
		opts.SetWriteConcern(writeconcern.New(writeconcern.WMajority()))
	}
	return opts
}

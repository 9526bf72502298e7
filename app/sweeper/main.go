package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/database/mongoclient"
	"github.com/x-xyz/marketengine/base/log"
	"github.com/x-xyz/marketengine/base/sweeper"
	"github.com/x-xyz/marketengine/service/query"
	bid_repository "github.com/x-xyz/marketengine/stores/bid/repository"
	listing_repository "github.com/x-xyz/marketengine/stores/listing/repository"
)

var (
	configFile = pflag.String("config", "infra/configs/config.yaml", "path of the yaml config")
	once       = pflag.Bool("once", false, "run a single sweep and exit")
)

func init() {
	pflag.Parse()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(*configFile)
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if err := log.Init(viper.GetBool(`debug`)); err != nil {
		panic(err)
	}
}

func main() {
	defer log.Sync()

	context, cancel := ctx.WithCancel(ctx.Background())
	defer cancel()

	mongoClient := mongoclient.MustConnectMongoClient(
		viper.GetString("mongo.uri"),
		viper.GetString("mongo.authDBName"),
		viper.GetString("mongo.dbName"),
		viper.GetBool("mongo.enableSSL"),
		true,
		1,
	)
	q := query.New(mongoClient, viper.GetBool("mongo.checkIndex"))

	expirySweeper := sweeper.NewExpirySweeper(&sweeper.ExpirySweeperCfg{
		ListingRepo: listing_repository.New(q),
		BidRepo:     bid_repository.NewBid(q),
		OfferRepo:   bid_repository.NewOffer(q),
		Transactor:  q,
		Interval:    viper.GetDuration("sweeper.interval"),
		BatchSize:   viper.GetInt32("sweeper.batch"),
		Workers:     viper.GetInt("sweeper.workers"),
	})

	if *once {
		res, err := expirySweeper.RunOnce(context)
		if err != nil {
			context.WithField("err", err).Error("sweeper.RunOnce failed")
			os.Exit(1)
		}
		context.WithFields(log.Fields{
			"bids":     res.Bids,
			"offers":   res.Offers,
			"listings": res.Listings,
		}).Info("sweep done")
		return
	}

	expirySweeper.Start(context)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	context.WithField("signal", sig).Info("received signal")

	cancel()
	expirySweeper.Wait()
	context.Info("sweeper stopped")
}

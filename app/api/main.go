package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gomodule/redigo/redis"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/database/mongoclient"
	"github.com/x-xyz/marketengine/base/database/redisclient"
	"github.com/x-xyz/marketengine/base/log"
	pricefomatter "github.com/x-xyz/marketengine/base/price_fomatter"
	"github.com/x-xyz/marketengine/base/sweeper"
	bValidator "github.com/x-xyz/marketengine/base/validator"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/keys"
	mmiddleware "github.com/x-xyz/marketengine/middleware"
	"github.com/x-xyz/marketengine/service/cache"
	"github.com/x-xyz/marketengine/service/cache/provider"
	"github.com/x-xyz/marketengine/service/cache/provider/compound"
	"github.com/x-xyz/marketengine/service/cache/provider/primitive"
	redisCache "github.com/x-xyz/marketengine/service/cache/provider/redis"
	"github.com/x-xyz/marketengine/service/query"
	"github.com/x-xyz/marketengine/service/wallet"
	activity_delivery "github.com/x-xyz/marketengine/stores/activity/delivery/http"
	activity_repository "github.com/x-xyz/marketengine/stores/activity/repository"
	activity_usecase "github.com/x-xyz/marketengine/stores/activity/usecase"
	auth_delivery "github.com/x-xyz/marketengine/stores/auth/delivery/http"
	auth_middleware "github.com/x-xyz/marketengine/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/x-xyz/marketengine/stores/auth/usecase"
	bid_delivery "github.com/x-xyz/marketengine/stores/bid/delivery/http"
	bid_repository "github.com/x-xyz/marketengine/stores/bid/repository"
	bid_usecase "github.com/x-xyz/marketengine/stores/bid/usecase"
	collection_delivery "github.com/x-xyz/marketengine/stores/collection/delivery/http"
	collection_repository "github.com/x-xyz/marketengine/stores/collection/repository"
	collection_usecase "github.com/x-xyz/marketengine/stores/collection/usecase"
	hc_delivery "github.com/x-xyz/marketengine/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/marketengine/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/marketengine/stores/healthcheck/usecase"
	listing_delivery "github.com/x-xyz/marketengine/stores/listing/delivery/http"
	listing_repository "github.com/x-xyz/marketengine/stores/listing/repository"
	listing_usecase "github.com/x-xyz/marketengine/stores/listing/usecase"
	relationship_delivery "github.com/x-xyz/marketengine/stores/relationship/delivery/http"
	relationship_repository "github.com/x-xyz/marketengine/stores/relationship/repository"
	relationship_usecase "github.com/x-xyz/marketengine/stores/relationship/usecase"
	settlement_delivery "github.com/x-xyz/marketengine/stores/settlement/delivery/http"
	settlement_repository "github.com/x-xyz/marketengine/stores/settlement/repository"
	settlement_usecase "github.com/x-xyz/marketengine/stores/settlement/usecase"
)

var configFile = pflag.String("config", "infra/configs/config.yaml", "path of the yaml config")

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

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	defer log.Sync()

	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init mongo client
	context.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	checkIndex := viper.GetBool("mongo.checkIndex")

	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient, checkIndex)

	if viper.GetBool("mongo.ensureIndexes") {
		ensureIndexes(context, q)
	}

	// init cache layers
	context.Info("init cache")
	cacheSize := viper.GetInt("cache.size")
	cacheTTL := viper.GetDuration("cache.ttl")
	layers := []provider.Provider{primitive.NewPrimitive("registry", cacheSize)}
	httpLayers := []provider.Provider{primitive.NewPrimitive("http", cacheSize)}

	var redisPool *redis.Pool
	if viper.GetString("cache.provider") == "redis" {
		redisPool = redisclient.MustConnectRedis(viper.GetString("redis_cache.uri"), viper.GetString("redis_cache.password"), redisclient.RedisParam{
			PoolMultiplier: viper.GetFloat64("redis_cache.poolMultiplier"),
			Retry:          true,
		})
		layers = append(layers, redisCache.NewRedis(redisPool))
		httpLayers = append(httpLayers, redisCache.NewRedis(redisPool))
	}
	registryCache := compound.NewCompound(layers)
	httpCache := compound.NewCompound(httpLayers)

	walletClient := wallet.NewClient(&wallet.ClientCfg{
		HttpClient: http.Client{},
		BaseUrl:    viper.GetString("wallet.baseUrl"),
		ApiKey:     viper.GetString("wallet.apiKey"),
		Timeout:    viper.GetDuration("wallet.timeout"),
	})

	// construct repository, usecase and delivery
	hcRepo := hc_repo.New(mongoClient, redisPool)
	listingRepo := listing_repository.New(q)
	bidRepo := bid_repository.NewBid(q)
	offerRepo := bid_repository.NewOffer(q)
	saleRepo := settlement_repository.NewSale(q)
	royaltyRepo := settlement_repository.NewRoyalty(q)
	activityRepo := activity_repository.New(q)
	tokenRepo := collection_repository.NewToken(q)
	royaltyConfigRepo := collection_repository.NewRoyalty(q)
	favoriteRepo := relationship_repository.NewFavorite(q)
	followRepo := relationship_repository.NewFollow(q)

	priceFormatter := pricefomatter.NewPriceFormatter(&pricefomatter.PriceFormatterCfg{
		Precisions:       precisions(viper.GetStringMap("settlement.precision")),
		DefaultPrecision: viper.GetInt32("settlement.defaultPrecision"),
	})

	platformFeeRate, err := decimal.NewFromString(viper.GetString("settlement.platformFeeRate"))
	if err != nil {
		context.WithField("err", err).Panic("invalid settlement.platformFeeRate")
	}

	hc := hc_usecase.New(hcRepo)
	activity := activity_usecase.New(activityRepo)
	registry := collection_usecase.New(&collection_usecase.RegistryCfg{
		TokenRepo:   tokenRepo,
		RoyaltyRepo: royaltyConfigRepo,
		TokenCache: cache.New(cache.ServiceConfig{
			Ttl:   cacheTTL,
			Pfx:   keys.PfxRegistryToken,
			Cache: registryCache,
		}),
		RoyaltyCache: cache.New(cache.ServiceConfig{
			Ttl:   cacheTTL,
			Pfx:   keys.PfxRegistryRoyalty,
			Cache: registryCache,
		}),
	})
	processor := settlement_usecase.NewProcessor(&settlement_usecase.ProcessorCfg{
		PlatformFeeRate: platformFeeRate,
		PriceFormatter:  priceFormatter,
	})
	listing := listing_usecase.New(&listing_usecase.ListingUseCaseCfg{
		ListingRepo:    listingRepo,
		BidRepo:        bidRepo,
		OfferRepo:      offerRepo,
		SaleRepo:       saleRepo,
		RoyaltyRepo:    royaltyRepo,
		Transactor:     q,
		Registry:       registry,
		Processor:      processor,
		ActivityUC:     activity,
		PriceFormatter: priceFormatter,
	})
	bid := bid_usecase.New(&bid_usecase.BidUseCaseCfg{
		ListingRepo:    listingRepo,
		BidRepo:        bidRepo,
		OfferRepo:      offerRepo,
		Transactor:     q,
		Registry:       registry,
		ActivityUC:     activity,
		PriceFormatter: priceFormatter,
	})
	sale := settlement_usecase.New(&settlement_usecase.SaleUseCaseCfg{
		SaleRepo:    saleRepo,
		RoyaltyRepo: royaltyRepo,
		Transactor:  q,
		ActivityUC:  activity,
		Wallet:      walletClient,
	})
	favorite := relationship_usecase.NewFavorite(&relationship_usecase.FavoriteUseCaseCfg{
		FavoriteRepo: favoriteRepo,
		ListingRepo:  listingRepo,
	})
	follow := relationship_usecase.NewFollow(followRepo)
	auth := auth_usecase.New(viper.GetString("auth.jwtSecret"), viper.GetDuration("auth.tokenTTL"))

	auth_middleware := auth_middleware.New(auth, viper.GetStringSlice("auth.adminIds"))

	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth, auth_middleware)
	listing_delivery.New(e, listing, auth_middleware)
	bid_delivery.New(e, bid, auth_middleware)
	settlement_delivery.New(e, sale, auth_middleware)
	activity_delivery.New(e, activity, httpCache)
	relationship_delivery.New(e, favorite, follow, auth_middleware)
	collection_delivery.New(e, registry, auth_middleware, httpCache)

	sweeperCtx, stopSweeper := ctx.WithCancel(context)
	var expirySweeper *sweeper.ExpirySweeper
	if viper.GetBool("sweeper.enabled") {
		expirySweeper = sweeper.NewExpirySweeper(&sweeper.ExpirySweeperCfg{
			ListingRepo: listingRepo,
			BidRepo:     bidRepo,
			OfferRepo:   offerRepo,
			Transactor:  q,
			Interval:    viper.GetDuration("sweeper.interval"),
			BatchSize:   viper.GetInt32("sweeper.batch"),
			Workers:     viper.GetInt("sweeper.workers"),
		})
		expirySweeper.Start(sweeperCtx)
	}

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")

	stopSweeper()
	if expirySweeper != nil {
		expirySweeper.Wait()
	}

	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}

func ensureIndexes(context ctx.Ctx, q query.Mongo) {
	tables := map[domain.Table][]query.Index{
		domain.TableListings:       listing_repository.Indexes,
		domain.TableBids:           bid_repository.BidIndexes,
		domain.TableOffers:         bid_repository.OfferIndexes,
		domain.TableSales:          settlement_repository.SaleIndexes,
		domain.TableRoyalties:      settlement_repository.RoyaltyIndexes,
		domain.TableActivities:     activity_repository.Indexes,
		domain.TableTokens:         collection_repository.TokenIndexes,
		domain.TableRoyaltyConfigs: collection_repository.RoyaltyIndexes,
		domain.TableFavorites:      relationship_repository.FavoriteIndexes,
		domain.TableCreatorFollows: relationship_repository.FollowIndexes,
	}
	for table, indexes := range tables {
		if err := q.EnsureIndexes(context, table, indexes); err != nil {
			context.WithField("err", err).WithField("table", table).Panic("q.EnsureIndexes failed")
		}
	}
}

// precisions reads settlement.precision, a map of currency to decimal places
func precisions(raw map[string]interface{}) map[string]int32 {
	res := make(map[string]int32, len(raw))
	for cur, v := range raw {
		switch p := v.(type) {
		case int:
			res[cur] = int32(p)
		case int64:
			res[cur] = int32(p)
		case float64:
			res[cur] = int32(p)
		}
	}
	return res
}

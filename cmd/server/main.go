package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskboard/api"
	"taskboard/auth"
	"taskboard/board"
	"taskboard/repair"
	"taskboard/store"
)

func main() {
	_ = godotenv.Load()
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	connStr := os.Getenv("STORAGE_CONNECTION_STRING")
	tasksTableName := os.Getenv("TASKS_TABLE")
	contactsTableName := os.Getenv("CONTACTS_TABLE")
	repairQueueName := os.Getenv("REPAIR_QUEUE")
	if connStr == "" || tasksTableName == "" || contactsTableName == "" || repairQueueName == "" {
		log.Fatal("missing storage config")
	}
	backend, err := store.NewTables(connStr, map[string]string{
		"tasks":    tasksTableName,
		"contacts": contactsTableName,
	})
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	redisConn := os.Getenv("REDIS_CONNECTION_STRING")
	if redisConn == "" {
		log.Fatal("missing redis config")
	}
	rc := redis.NewClient(parseRedisOptions(redisConn))
	bus := store.NewBus(rc)

	repairTTL := time.Minute
	if v := os.Getenv("REPAIR_DEDUPE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid REPAIR_DEDUPE_TTL: %v", err)
		}
		repairTTL = d
	}
	queue, err := repair.NewAzureQueue(connStr, repairQueueName)
	if err != nil {
		log.Fatalf("repair queue: %v", err)
	}
	reconciler := repair.NewReconciler(repair.NewDeduper(rc, repairTTL), queue)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go repair.NewWorker(queue, backend, bus).Run(workerCtx)

	var authn *auth.Auth
	if os.Getenv("AUTH_TEST_MODE") == "1" {
		secret := os.Getenv("TEST_JWT_SECRET")
		if secret == "" {
			log.Fatal("TEST_JWT_SECRET must be set when AUTH_TEST_MODE=1")
		}
		authn = auth.NewTestAuth([]byte(secret))
	} else {
		jwtAudience := os.Getenv("AUTH0_AUDIENCE")
		domain := os.Getenv("AUTH0_DOMAIN")
		if jwtAudience == "" || domain == "" {
			log.Fatal("missing Auth0 config")
		}
		jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", domain)
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		authn = auth.New(jwks, jwtAudience, "https://"+domain+"/")
	}

	hub := board.NewHub(backend, bus, reconciler)

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	logger := log.New()
	api.Register(e, hub, authn, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("SERVER_PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}

// parseRedisOptions accepts either a redis URL or the comma-separated
// "host:port,password=...,ssl=true" form used by managed offerings.
func parseRedisOptions(connStr string) *redis.Options {
	opts, err := redis.ParseURL(connStr)
	if err == nil {
		return opts
	}
	parts := strings.Split(connStr, ",")
	opts = &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.ToLower(kv[1]) == "true" {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}

// internal/platform/di/container.go
package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	fsadapter "milkmaster/internal/adapters/out/firestore"
	httpout "milkmaster/internal/adapters/out/http"
	"milkmaster/internal/adapters/out/kv"
	mailout "milkmaster/internal/adapters/out/mail"
	redisadapter "milkmaster/internal/adapters/out/redis"
	"milkmaster/internal/adapters/out/storage"
	"milkmaster/internal/application/usecase"
	"milkmaster/internal/auth"
	"milkmaster/internal/domain/identity"
	appcfg "milkmaster/internal/infra/config"

	pgadapter "milkmaster/internal/adapters/out/db"
)

// Container owns external clients and wires the usecases.
//
// Cart storage and the identity resolver are strict (return error);
// Firebase Auth, Secret Manager and the mail channel are best-effort
// (warn + degrade).
type Container struct {
	Config *appcfg.Config

	// Clients (owned; Close-managed)
	Firestore     *firestore.Client
	Redis         *redis.Client
	DB            *sql.DB
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client

	Store    kv.Store
	Resolver identity.Resolver

	Carts    *usecase.CartUsecase
	Checkout *usecase.CheckoutUsecase
}

func NewContainer(ctx context.Context) (*Container, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("di: config is nil")
	}

	c := &Container{Config: cfg}

	clientOpts := gcpClientOptions(cfg)

	// 1) Cart storage backend (strict).
	if err := c.initStore(ctx, clientOpts); err != nil {
		return nil, err
	}

	// 2) Optional: Secret Manager client (SendGrid key lookup).
	{
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[di] WARN: secretmanager.NewClient failed: %v (secret-backed config disabled)", err)
			sm = nil
		}
		c.SecretManager = sm
	}

	// 3) Optional: Firebase App/Auth for token verification.
	{
		fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, clientOpts...)
		if err != nil {
			log.Printf("[di] WARN: firebase app init failed: %v", err)
		} else {
			c.FirebaseApp = fbApp
			authClient, err := fbApp.Auth(ctx)
			if err != nil {
				log.Printf("[di] WARN: firebase auth init failed: %v", err)
			} else {
				c.FirebaseAuth = authClient
				log.Printf("[di] Firebase Auth initialized")
			}
		}
	}

	// 4) Identity resolver: claim-decoding resolver over client
	// storage, upgraded with Firebase verification when available.
	base := auth.NewResolver(c.Store)
	if c.FirebaseAuth != nil {
		c.Resolver = auth.NewFirebaseResolver(c.FirebaseAuth, base)
	} else {
		c.Resolver = base
	}

	// 5) Outbound HTTP clients against the storefront API.
	profiles := httpout.NewProfileClient(cfg.APIBaseURL)
	stock := httpout.NewStockClient(cfg.APIBaseURL)
	orders := httpout.NewOrderClient(cfg.APIBaseURL)
	payments := httpout.NewPaymentClient(cfg.APIBaseURL)

	// 6) Mail channel (best-effort).
	var mailer usecase.OTPMailer
	if key := c.resolveSendGridKey(ctx); key != "" {
		mailer = mailout.NewOTPMailer(mailout.NewSendGridClient(key), cfg.MailFrom)
		log.Printf("[di] OTP mailer initialized from=%s", cfg.MailFrom)
	} else {
		log.Printf("[di] WARN: no SendGrid API key configured; OTP mail relay disabled")
	}

	// 7) Usecases.
	c.Carts = usecase.NewCartUsecase(storage.NewCartRepositoryKV(c.Store), c.Resolver)
	c.Checkout = usecase.NewCheckoutUsecase(usecase.CheckoutDeps{
		Carts:    c.Carts,
		Identity: c.Resolver,
		Profiles: profiles,
		Cache:    base,
		Stock:    stock,
		Orders:   orders,
		Cards:    payments,
		OTPs:     payments,
		Mailer:   mailer,
		NewID:    uuid.NewString,
	})

	log.Printf("[di] Container initialized storage=%s api=%s", cfg.CartStorage, cfg.APIBaseURL)
	return c, nil
}

func (c *Container) initStore(ctx context.Context, clientOpts []option.ClientOption) error {
	backend := strings.ToLower(strings.TrimSpace(c.Config.CartStorage))
	switch backend {
	case "", "memory":
		c.Store = kv.NewMemory()
		log.Printf("[di] cart storage: in-memory")
		return nil

	case "firestore":
		fsClient, err := firestore.NewClient(ctx, c.Config.FirestoreProjectID, clientOpts...)
		if err != nil {
			return fmt.Errorf("di: firestore.NewClient failed (project=%s): %w", c.Config.FirestoreProjectID, err)
		}
		c.Firestore = fsClient
		c.Store = fsadapter.NewKVRepositoryFS(fsClient)
		log.Printf("[di] cart storage: firestore project=%s", c.Config.FirestoreProjectID)
		return nil

	case "redis":
		if c.Config.RedisAddr == "" {
			return errors.New("di: CART_STORAGE=redis but REDIS_ADDR is empty")
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.Config.RedisAddr,
			Password: c.Config.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("di: redis ping failed (addr=%s): %w", c.Config.RedisAddr, err)
		}
		c.Redis = rdb
		c.Store = redisadapter.NewKVRepositoryRedis(rdb, "milkmaster")
		log.Printf("[di] cart storage: redis addr=%s", c.Config.RedisAddr)
		return nil

	case "postgres":
		if c.Config.DatabaseURL == "" {
			return errors.New("di: CART_STORAGE=postgres but DATABASE_URL is empty")
		}
		db, err := sql.Open("postgres", c.Config.DatabaseURL)
		if err != nil {
			return fmt.Errorf("di: sql.Open failed: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return fmt.Errorf("di: postgres ping failed: %w", err)
		}
		c.DB = db
		c.Store = pgadapter.NewKVRepositoryPG(db)
		log.Printf("[di] cart storage: postgres")
		return nil

	default:
		return fmt.Errorf("di: unknown CART_STORAGE=%q (want memory|firestore|redis|postgres)", backend)
	}
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Firestore != nil {
		_ = c.Firestore.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
	if c.SecretManager != nil {
		_ = c.SecretManager.Close()
	}
	return nil
}

func gcpClientOptions(cfg *appcfg.Config) []option.ClientOption {
	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	if credFile == "" {
		log.Printf("[di] Using Application Default Credentials (no credentials file configured)")
		return nil
	}
	log.Printf("[di] Using credentials file for GCP clients")
	return []option.ClientOption{option.WithCredentialsFile(credFile)}
}

package main

import (
	"context"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/repository/memory"
	"backend/internal/repository/postgres"
	"backend/internal/service"
	"backend/internal/websocket"
	"backend/pkg/idgen"
)

type stores struct {
	requests  repository.RequestRepository
	audit     repository.AuditRepository
	workflow  repository.WorkflowRepository
	txManager repository.TransactionManager
}

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "approval-engine").Logger()

	if err := godotenv.Load("configs/.env"); err != nil {
		log.Debug().Msg("no configs/.env file found")
	}

	st, err := buildStores(log)
	if err != nil {
		log.Fatal().Err(err).Msg("store initialization failed")
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	ids := idgen.NewUUID()
	secret := middleware.GetJWTSecret()

	// Set up dependencies (Repository -> Service -> Handler)
	requestService := service.NewRequestService(st.requests, st.workflow, st.audit, st.txManager, wsHub, ids, log)
	workflowService := service.NewWorkflowService(st.workflow, st.requests, st.audit, st.txManager, wsHub, ids, log)
	auditService := service.NewAuditService(st.audit)
	sessionService := service.NewSessionService(st.audit, secret, ids, log)

	requestHandler := handler.NewRequestHandler(requestService)
	workflowHandler := handler.NewWorkflowHandler(workflowService)
	auditHandler := handler.NewAuditHandler(auditService)
	sessionHandler := handler.NewSessionHandler(sessionService)

	// Set up Gin Router
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket event feed
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, secret)
	})

	// API Routing
	requestHandler.RegisterRoutes(router.Group(""))
	workflowHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	sessionHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Info().Str("port", port).Msg("server listening")
	if err := router.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// buildStores picks the storage backend. With DB_DSN set the engine runs
// against postgres; otherwise it uses the seeded in-memory stores, which is
// the intended default for the simulation frontend.
func buildStores(log zerolog.Logger) (stores, error) {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Info().Msg("using in-memory stores with seed dataset")

		requestStore := memory.NewRequestStore()
		memory.SeedRequests(requestStore)

		return stores{
			requests:  requestStore,
			audit:     memory.NewAuditStore(),
			workflow:  memory.NewWorkflowStore(memory.DefaultWorkflow()),
			txManager: memory.NewTxManager(),
		}, nil
	}

	db, err := database.NewConnection(dsn)
	if err != nil {
		return stores{}, err
	}
	if err := database.EnsureWorkflow(context.Background(), db, memory.DefaultWorkflow()); err != nil {
		return stores{}, err
	}
	log.Info().Msg("connected to postgres store")

	return stores{
		requests:  postgres.NewRequestStore(db),
		audit:     postgres.NewAuditStore(db),
		workflow:  postgres.NewWorkflowStore(db),
		txManager: postgres.NewTxManager(db),
	}, nil
}

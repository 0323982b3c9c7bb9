package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/pharma-crm/internal/infra/database"
	"github.com/xavierca1/pharma-crm/internal/infra/http/handlers"
	"github.com/xavierca1/pharma-crm/internal/infra/http/middleware"
	"github.com/xavierca1/pharma-crm/internal/infra/integration/leadfeed"
	"github.com/xavierca1/pharma-crm/internal/infra/integration/sms"
	"github.com/xavierca1/pharma-crm/internal/infra/mail"
	"github.com/xavierca1/pharma-crm/internal/infra/queue"
	"github.com/xavierca1/pharma-crm/internal/infra/worker"
	"github.com/xavierca1/pharma-crm/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("❌ database connection failed: %v", err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		envOr("RABBITMQ_USER", "guest"),
		envOr("RABBITMQ_PASS", "guest"),
		envOr("RABBITMQ_HOST", "localhost"),
		envOr("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		log.Fatalf("❌ rabbitmq connection failed: %v", err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Repositories
	leadRepo := database.NewLeadRepository(db)
	commentRepo := database.NewCommentRepository(db)
	notificationRepo := database.NewNotificationRepository(db)
	auditRepo := database.NewAuditLogRepository(db)
	userRepo := database.NewUserRepository(db)
	pincodeRepo := database.NewPincodeRepository(db)

	// 2. Gateways and adapters
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	mailSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"),
		envInt("MAIL_PORT", 587),
		os.Getenv("MAIL_FROM"),
		mail.ParseCredentials(os.Getenv("MAIL_CREDENTIALS")),
	)
	smsClient := sms.NewClient()
	feedClient := leadfeed.NewClient(os.Getenv("LEAD_FEED_API_KEY"), os.Getenv("LEAD_FEED_URL"))

	// 3. Welcome email worker (consumes the queue and sends via SMTP)
	mailWorker := queue.NewWorker(rabbitMQ.Ch, mailSender)
	go mailWorker.Start(queue.QueueName)

	// 4. Use cases
	ingestUC := usecase.NewIngestLeadUseCase(leadRepo, userRepo, notificationRepo, auditRepo, producer)
	importUC := usecase.NewBulkImportUseCase(ingestUC, userRepo, pincodeRepo, notificationRepo, auditRepo)
	sweepUC := usecase.NewRunDeduplicationUseCase(leadRepo, commentRepo, userRepo, notificationRepo, auditRepo)
	updateUC := usecase.NewUpdateLeadDetailsUseCase(leadRepo, userRepo, pincodeRepo, auditRepo)
	statusUC := usecase.NewUpdateLeadStatusUseCase(leadRepo, userRepo, auditRepo)
	assignUC := usecase.NewAssignLeadUseCase(leadRepo, userRepo, notificationRepo, auditRepo)

	// 5. Background workers
	if feedClient.Configured() {
		feedWorker := worker.NewFeedPollWorker(feedClient, ingestUC,
			time.Duration(envInt("LEAD_FEED_POLL_MINUTES", 5))*time.Minute)
		go feedWorker.Start(ctx)
	} else {
		log.Println("⚠️ LEAD_FEED_URL not set, feed polling disabled")
	}

	reminderWorker := worker.NewFollowupReminderWorker(leadRepo, userRepo, notificationRepo, smsClient,
		time.Duration(envInt("FOLLOWUP_TICK_SECONDS", 60))*time.Second)
	go reminderWorker.Start(ctx)

	// 6. Handlers
	leadHandler := handlers.NewLeadHandler(ingestUC, updateUC, statusUC, assignUC, leadRepo, userRepo, auditRepo)
	importHandler := handlers.NewImportHandler(importUC)
	webhookHandler := handlers.NewWebhookHandler(ingestUC)
	dedupHandler := handlers.NewDedupHandler(sweepUC)
	commentHandler := handlers.NewCommentHandler(commentRepo, leadRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	// 7. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-User-ID", "X-Webhook-Token"},
	}))
	r.Use(middleware.Metrics)
	r.Use(middleware.Auth)

	r.Post("/leads", leadHandler.Create)
	r.Get("/leads", leadHandler.List)
	r.Get("/leads/{id}", leadHandler.Get)
	r.Put("/leads/{id}", leadHandler.UpdateDetails)
	r.Patch("/leads/{id}/status", leadHandler.UpdateStatus)
	r.Post("/leads/{id}/assign", leadHandler.Assign)
	r.Delete("/leads/{id}", leadHandler.Delete)
	r.Get("/leads/{id}/comments", commentHandler.List)
	r.Post("/leads/{id}/comments", commentHandler.Add)

	r.Post("/leads/import", importHandler.Handle)
	r.Post("/webhook/leads", webhookHandler.Handle)
	r.Post("/admin/deduplicate", dedupHandler.Handle)

	r.Get("/notifications", notificationHandler.List)
	r.Post("/notifications/{id}/read", notificationHandler.MarkRead)

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := ":" + envOr("PORT", "8080")
	log.Printf("🔥 PharmaCRM server listening on %s", port)
	http.ListenAndServe(port, r)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

package main

import (
	"log"

	api "vida-backend/cmd/api"
	authDelivery "vida-backend/internal/auth/delivery"
	authdomain "vida-backend/internal/auth/domain"
	authRepo "vida-backend/internal/auth/repository"
	chatDelivery "vida-backend/internal/chat/delivery"
	chatdomain "vida-backend/internal/chat/domain"
	chatRepo "vida-backend/internal/chat/repository"
	chatUsecase "vida-backend/internal/chat/usecase"
	inboundDelivery "vida-backend/internal/inbound/delivery"
	"vida-backend/internal/inbound"
	"vida-backend/internal/notification"
	recordsdomain "vida-backend/internal/records/domain"
	recordsRepo "vida-backend/internal/records/repository"
	reminderdomain "vida-backend/internal/reminder/domain"
	reminderRepo "vida-backend/internal/reminder/repository"
	"vida-backend/internal/reminder/scheduler"
	reminderUsecase "vida-backend/internal/reminder/usecase"
	"vida-backend/pkg/ai"
	"vida-backend/pkg/config"
	"vida-backend/pkg/database"
	"vida-backend/pkg/fcm"
	"vida-backend/pkg/mailer"
	"vida-backend/pkg/sms"
	"vida-backend/pkg/sse"
	"vida-backend/pkg/whatsapp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.PushToken{},
		&chatdomain.Conversation{},
		&chatdomain.ChatMessage{},
		&reminderdomain.Reminder{},
		&recordsdomain.Goal{},
		&recordsdomain.Journal{},
		&recordsdomain.CalendarEvent{},
		&recordsdomain.LifeArea{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	pushTokenRepository := authRepo.NewPushTokenRepository(db)
	conversationRepository := chatRepo.NewConversationRepository(db)
	messageRepository := chatRepo.NewMessageRepository(db)
	reminderRepository := reminderRepo.NewGormReminderRepository(db)
	goalRepository := recordsRepo.NewGormGoalRepository(db)
	journalRepository := recordsRepo.NewGormJournalRepository(db)
	eventRepository := recordsRepo.NewGormCalendarEventRepository(db)
	lifeAreaRepository := recordsRepo.NewGormLifeAreaRepository(db)

	// Initialize SSE Manager
	sseManager := sse.NewManager()
	go sseManager.Run()

	// Initialize AI client
	aiClient, err := ai.NewClient(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:  cfg.GeminiAPIKey,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	})
	if err != nil {
		log.Fatal("Failed to initialize AI client:", err)
	}
	log.Printf("AI client initialized with provider: %s", cfg.AIProvider)

	// Initialize FCM client (optional, push disabled without it)
	var fcmClient *fcm.Client
	if cfg.FirebaseCredentials != "" {
		fcmClient, err = fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		}
	} else {
		log.Println("[WARN] No Firebase credentials configured, push disabled")
	}

	// Initialize email transport (optional)
	var emailSender notification.EmailSender
	if cfg.SMTPHost != "" {
		emailSender = mailer.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		log.Println("[WARN] No SMTP host configured, email disabled")
	}

	// Initialize SMS client (optional)
	var smsClient *sms.Client
	if cfg.TwilioAccountSID != "" {
		smsClient = sms.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
	} else {
		log.Println("[WARN] No Twilio credentials configured, SMS disabled")
	}

	// Initialize WhatsApp bridge (optional)
	var bridge *whatsapp.Bridge
	if cfg.WhatsAppEnabled {
		bridge, err = whatsapp.NewBridge(cfg.DatabaseURL)
		if err != nil {
			log.Printf("[WARN] Failed to initialize WhatsApp bridge: %v", err)
			bridge = nil
		}
	}

	// Initialize the intent-extraction pipeline
	pipeline := chatUsecase.NewPipelineService(
		conversationRepository,
		messageRepository,
		reminderRepository,
		goalRepository,
		journalRepository,
		eventRepository,
		lifeAreaRepository,
		aiClient,
	)

	// Initialize the notification dispatcher; nil senders are skipped
	var pushClient notification.PushClient
	if fcmClient != nil {
		pushClient = fcmClient
	}
	var smsSender notification.SMSSender
	if smsClient != nil {
		smsSender = smsClient
	}
	var whatsappSender notification.WhatsAppSender
	if bridge != nil {
		whatsappSender = bridge
	}
	dispatcher := notification.NewDispatcher(
		pushTokenRepository,
		conversationRepository,
		messageRepository,
		pushClient,
		emailSender,
		smsSender,
		whatsappSender,
		sseManager,
	)

	// Start the scheduler ticks
	intervalService := reminderUsecase.NewIntervalService(aiClient)
	notifScheduler := scheduler.NewScheduler(
		reminderRepository,
		goalRepository,
		eventRepository,
		userRepository,
		messageRepository,
		dispatcher,
		intervalService,
	)
	notifScheduler.Start()
	defer notifScheduler.Stop()

	// Wire inbound channel adapters
	resolver := inbound.NewResolver(userRepository)
	var smsReplier inboundDelivery.SMSReplier
	if smsClient != nil {
		smsReplier = smsClient
	}
	var whatsappReplier inboundDelivery.WhatsAppReplier
	if bridge != nil {
		whatsappReplier = bridge
	}
	webhookHandler := inboundDelivery.NewWebhookHandler(resolver, pipeline, smsReplier, whatsappReplier)

	if bridge != nil {
		webhookHandler.ListenBridge(bridge)
		if err := bridge.Connect(); err != nil {
			log.Printf("[WARN] WhatsApp bridge not connected: %v", err)
		}
		defer bridge.Disconnect()
	}

	// Initialize HTTP handlers
	chatHandler := chatDelivery.NewChatHandler(pipeline, conversationRepository, messageRepository)
	tokenHandler := authDelivery.NewTokenHandler(pushTokenRepository)
	handler := api.NewHandler(cfg, sseManager, chatHandler, tokenHandler, webhookHandler)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

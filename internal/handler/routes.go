package handler

import (
	"net/http"

	httpadapter "github.com/ClareAI/astra-outbound-caller/internal/adapters/http"
	"github.com/ClareAI/astra-outbound-caller/internal/cache"
	"github.com/ClareAI/astra-outbound-caller/internal/config"
	"github.com/ClareAI/astra-outbound-caller/internal/core/tool"
	"github.com/ClareAI/astra-outbound-caller/internal/prompts"
	"github.com/ClareAI/astra-outbound-caller/internal/services/call"
	"github.com/ClareAI/astra-outbound-caller/internal/services/crm"
	"github.com/ClareAI/astra-outbound-caller/internal/services/messaging"
	"github.com/ClareAI/astra-outbound-caller/internal/services/session"
	"github.com/ClareAI/astra-outbound-caller/pkg/logger"
	"github.com/ClareAI/astra-outbound-caller/pkg/redis"
	"github.com/ClareAI/astra-outbound-caller/pkg/twilio"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Dependencies are the services behind the HTTP surface
type Dependencies struct {
	Calls     CallInitiator
	Statuses  StatusProcessor
	Tools     LocalToolExecutor
	Messenger MessageSender
	Tagger    ContactTagger
	Validator SignatureValidator // required when signature checks are on
}

// HandlerManager manages all handlers and their initialization
type HandlerManager struct {
	config         *config.CallerConfig
	deps           Dependencies
	callHandler    *CallHandler
	smsHandler     *SMSHandler
	contactHandler *ContactHandler
	redisSvc       *redis.RedisService
}

// NewHandlerManager builds every service from cfg and the handlers on top
func NewHandlerManager(cfg *config.CallerConfig) (*HandlerManager, error) {
	twilioClient := twilio.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber, config.MessagingTimeout, cfg.SMSMaxPrice)
	messenger := messaging.NewService(twilioClient, config.MessagingTimeout)

	tagURL := cfg.TagWebhookURL
	if tagURL == "" {
		tagURL = cfg.URL("/api/add-contact")
	}
	tools := tool.NewManager()
	if err := tools.RegisterTool(tool.NewSendSMSTool(cfg.URL("/api/sms-webhook"), messenger.Send)); err != nil {
		return nil, err
	}
	if err := tools.RegisterTool(tool.NewAddContactTool(tagURL)); err != nil {
		return nil, err
	}

	script, err := prompts.LoadScript(cfg.ScriptPath)
	if err != nil {
		return nil, err
	}

	voiceAI := httpadapter.NewVoiceAIClient(cfg.VoiceAIBaseURL, cfg.VoiceAIAPIKey, config.VoiceAITimeout)
	sessions := session.NewFactory(voiceAI, script, tools, session.Settings{
		Model:       cfg.VoiceAIModel,
		Voice:       cfg.VoiceAIVoice,
		Temperature: cfg.VoiceAITemperature,
	})

	crmClient := httpadapter.NewCRMClient(cfg.CRMBaseURL, cfg.CRMAPIKey, cfg.CRMLocationID, cfg.CRMAPIVersion, config.CRMTimeout)
	tagger := crm.NewTagger(crmClient)

	// Optional call-attempt store
	var attempts call.AttemptStore
	var redisSvc *redis.RedisService
	if cfg.RedisEnabled() {
		redisSvc, err = redis.NewRedisService(&redis.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			logger.Base().Warn("failed to initialize redis, running without call-attempt store", zap.Error(err))
			redisSvc = nil
		} else {
			attempts = cache.NewCallCache(redisSvc, cfg.CallCacheTTL)
			logger.Base().Info("call-attempt store enabled", zap.Duration("ttl", cfg.CallCacheTTL))
		}
	}

	orchestrator := call.NewOrchestrator(sessions, twilioClient, attempts, call.Options{
		StatusCallbackURL: cfg.URL("/call-status"),
		MachineDetection:  cfg.MachineDetection,
		DialTimeout:       config.DialTimeout,
		Limiter:           rate.NewLimiter(rate.Limit(cfg.DialRatePerSecond), cfg.DialBurst),
	})

	statuses := call.NewStatusHandler(tagger, attempts, cfg.MachineDetection)

	hm := newHandlerManager(cfg, Dependencies{
		Calls:     orchestrator,
		Statuses:  statuses,
		Tools:     tools,
		Messenger: messenger,
		Tagger:    tagger,
		Validator: twilioClient,
	})
	hm.redisSvc = redisSvc

	logger.Base().Info("services initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("tag_webhook_url", tagURL),
		zap.Bool("machine_detection", cfg.MachineDetection),
		zap.Float64("dial_rate_per_second", cfg.DialRatePerSecond))
	return hm, nil
}

func newHandlerManager(cfg *config.CallerConfig, deps Dependencies) *HandlerManager {
	return &HandlerManager{
		config:         cfg,
		deps:           deps,
		callHandler:    NewCallHandler(deps.Calls, deps.Statuses),
		smsHandler:     NewSMSHandler(deps.Tools, deps.Messenger),
		contactHandler: NewContactHandler(deps.Tagger),
	}
}

// SetupAllRoutes sets up all routes with middleware
func (hm *HandlerManager) SetupAllRoutes(router *mux.Router) {
	// Apply global middleware
	router.Use(CORSMiddleware)
	router.Use(LoggingMiddleware)

	router.HandleFunc("/health", handleHealth).Methods(http.MethodGet, http.MethodHead)

	router.HandleFunc("/initiate-call", hm.callHandler.HandleInitiateCall).Methods(http.MethodGet, http.MethodPost)
	router.Handle("/call-status", hm.callStatusHandler()).Methods(http.MethodPost)
	router.HandleFunc("/send-sms", hm.smsHandler.HandleSendSMS).Methods(http.MethodPost)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/sms-webhook", hm.smsHandler.HandleSMSWebhook).Methods(http.MethodPost)
	apiRouter.HandleFunc("/add-contact", hm.contactHandler.HandleAddContact).Methods(http.MethodGet, http.MethodPost)

	// CORS preflight for every path
	router.PathPrefix("/").HandlerFunc(handleCORS).Methods(http.MethodOptions)

	logger.Base().Info("all application routes registered")
}

func (hm *HandlerManager) callStatusHandler() http.Handler {
	h := http.Handler(http.HandlerFunc(hm.callHandler.HandleCallStatus))
	if hm.config.TwilioValidateSignatures && hm.deps.Validator != nil {
		logger.Base().Info("twilio signature validation enabled for /call-status")
		return TwilioSignatureMiddleware(hm.deps.Validator, hm.config.BaseURL)(h)
	}
	return h
}

// Close releases the Redis connection when one was opened
func (hm *HandlerManager) Close() {
	if hm.redisSvc != nil {
		if err := hm.redisSvc.Close(); err != nil {
			logger.Base().Warn("failed to close redis", zap.Error(err))
		}
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeStatusOK(w)
}

// handleCORS answers preflight requests
func handleCORS(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

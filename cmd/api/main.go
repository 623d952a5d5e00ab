package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"blockbet-backend/internal/config"
	"blockbet-backend/internal/handlers"
	"blockbet-backend/internal/logging"
	"blockbet-backend/internal/middleware"
	"blockbet-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.Env)

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisService.Close()

	jwtService := services.NewJWTService(cfg)
	hub := services.NewHub(logger)
	audit := services.NewAuditLog(cfg.LogDir, logger)

	ledger := services.NewLedger(redisService, logger)
	blockFeed := services.NewBlockFeed(cfg, logger)

	gameService := services.NewGameService(ledger, blockFeed, redisService, hub, audit, redisService, logger)
	accountService := services.NewAccountService(ledger, audit, redisService, logger)
	withdrawalService := services.NewWithdrawalService(ledger, redisService, audit, redisService, cfg.MinWithdrawal, logger)
	giftCodeService := services.NewGiftCodeService(ledger, redisService, hub, audit, redisService, logger)
	adminService := services.NewAdminService(ledger, redisService, redisService, redisService, audit, redisService, logger)
	activityFeed := services.NewActivityFeed(hub, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go giftCodeService.AutoDrop(ctx)
	go activityFeed.Run(ctx)

	authHandler := handlers.NewAuthHandler(jwtService)
	gameHandler := handlers.NewGameHandler(gameService, accountService)
	accountHandler := handlers.NewAccountHandler(accountService, withdrawalService, giftCodeService)
	adminHandler := handlers.NewAdminHandler(adminService, withdrawalService, giftCodeService, redisService)
	wsHandler := handlers.NewWebSocketHandler(hub, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/auth/login", authHandler.Login)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	protected.Use(middleware.RateLimitMiddleware(redisService))
	{
		protected.GET("/me", accountHandler.GetProfile)
		protected.POST("/bank", accountHandler.LinkBank)
		protected.POST("/bonus", accountHandler.ClaimDailyBonus)
		protected.POST("/giftcode/redeem", accountHandler.RedeemGiftCode)
		protected.POST("/withdrawals", accountHandler.CreateWithdrawal)

		protected.GET("/ws", wsHandler.HandleWebSocket)

		game := protected.Group("/game")
		{
			game.POST("/stake", gameHandler.AddStake)
			game.POST("/stake/all", gameHandler.StakeAll)
			game.POST("/stake/reset", gameHandler.ResetStake)
			game.POST("/bet", gameHandler.PlaceBet)
			game.GET("/balance", gameHandler.GetBalance)
			game.GET("/history", gameHandler.GetHistory)
		}
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtService))
	admin.Use(middleware.AdminMiddleware(cfg.AdminID))
	{
		admin.GET("/stats", adminHandler.GetStats)
		admin.GET("/top", adminHandler.GetTopBalances)

		admin.GET("/accounts/:id", adminHandler.GetAccount)
		admin.GET("/accounts/:id/transactions", adminHandler.GetTransactions)
		admin.POST("/accounts/:id/deposit", adminHandler.Deposit)
		admin.POST("/accounts/:id/adjust", adminHandler.AdjustBalance)
		admin.POST("/accounts/:id/ban", adminHandler.Ban)
		admin.POST("/accounts/:id/unban", adminHandler.Unban)
		admin.POST("/accounts/:id/winrate", adminHandler.SetWinRate)
		admin.POST("/accounts/:id/profile", adminHandler.EditProfile)
		admin.POST("/accounts/:id/reset-wagered", adminHandler.ResetWagered)

		admin.GET("/withdrawals", adminHandler.ListWithdrawals)
		admin.POST("/withdrawals/:id/approve", adminHandler.ApproveWithdrawal)
		admin.POST("/withdrawals/:id/reject", adminHandler.RejectWithdrawal)

		admin.GET("/giftcodes", adminHandler.ListGiftCodes)
		admin.POST("/giftcodes", adminHandler.CreateGiftCode)
		admin.DELETE("/giftcodes/:code", adminHandler.DeleteGiftCode)

		admin.POST("/settings/winrate", adminHandler.SetGlobalWinRate)
		admin.POST("/settings/payout", adminHandler.SetPayoutRate)
		admin.POST("/settings/maintenance", adminHandler.SetMaintenanceMode)
	}

	logger.Info().Str("port", cfg.Port).Msg("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

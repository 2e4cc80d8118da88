// @title Lingua Tutor 后端 API
// @version 1.0
// @description 语言学习导师平台的后端服务：学习档案、课程生成、学习进度与语音合成。

// @contact.name API支持
// @contact.email support@example.com

// @host localhost:3001
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"fmt"
	"lingua_tutor_backend/internal/app"
	"lingua_tutor_backend/internal/config"
	"lingua_tutor_backend/pkg/database"
	"lingua_tutor_backend/pkg/logger"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "lingua-tutor",
	Short: "Language tutor backend",
	// 不带子命令时直接启动服务
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Log.Sync()

		db, err := database.InitDB(&cfg.Database, false)
		if err != nil {
			return fmt.Errorf("init database: %w", err)
		}
		return database.Migrate(db)
	},
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.InitLogger(cfg)
	return cfg, nil
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Log.Sync()

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to initialize application", zap.Error(err))
		return err
	}
	return application.Run(ctx)
}

func main() {
	// .env 可选，不存在时仅使用系统环境变量
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&configDir, "config", "configs", "directory containing config.yaml")
	rootCmd.AddCommand(serveCmd, migrateCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

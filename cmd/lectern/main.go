package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/lectern/lectern/internal/profile"
	"github.com/lectern/lectern/internal/version"
	"github.com/lectern/lectern/plugin/generator"
	"github.com/lectern/lectern/server"
	"github.com/lectern/lectern/server/service/chat"
	"github.com/lectern/lectern/store"
	"github.com/lectern/lectern/store/db"
)

const greetingBanner = `lectern - course assistant server`

var rootCmd = &cobra.Command{
	Use:   "lectern",
	Short: "An HTTP API server for course content and AI-assisted chat",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		instanceProfile := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			Data:    viper.GetString("data"),
			Driver:  viper.GetString("driver"),
			DSN:     viper.GetString("dsn"),
			Version: version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			return fmt.Errorf("failed to create db driver: %w", err)
		}

		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		generatorService, err := generator.NewService(instanceProfile)
		if err != nil {
			return fmt.Errorf("failed to create generator: %w", err)
		}

		orchestrator := chat.NewOrchestrator(storeInstance, generatorService, chat.Config{
			FallbackReply:     instanceProfile.FallbackReply,
			GenerationTimeout: instanceProfile.GeneratorTimeout,
		})

		s := server.NewServer(instanceProfile, storeInstance, orchestrator)

		fmt.Println(greetingBanner)
		slog.Info("starting",
			slog.String("version", instanceProfile.Version),
			slog.String("driver", instanceProfile.Driver),
			slog.String("generator", instanceProfile.GeneratorProvider),
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return s.Start(gctx)
		})
		g.Go(func() error {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			select {
			case <-sig:
				slog.Info("shutdown signal received")
			case <-gctx.Done():
			}
			s.Shutdown(context.Background())
			cancel()
			return nil
		})

		if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8002, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("lectern")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("failed to run server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ikkim/lego-inventory-backend/config"
	"github.com/ikkim/lego-inventory-backend/internal/app/model"
	"github.com/ikkim/lego-inventory-backend/internal/app/repository"
	"github.com/ikkim/lego-inventory-backend/internal/app/service"
	"github.com/ikkim/lego-inventory-backend/internal/db"
	"github.com/ikkim/lego-inventory-backend/internal/sequence"
	"github.com/ikkim/lego-inventory-backend/internal/storage"
	"github.com/ikkim/lego-inventory-backend/pkg/logger"
	redisClient "github.com/ikkim/lego-inventory-backend/pkg/redis"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// services is what the import commands run against
type services struct {
	sets   service.LegoSetService
	orders service.OrderService
	close  func()
}

type openFunc func(ctx context.Context) (*services, error)

func main() {
	if err := newRootCmd(openServices).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(open openFunc) *cobra.Command {
	root := &cobra.Command{
		Use:          "importer",
		Short:        "Load marketplace order exports and set part lists into the inventory",
		SilenceUsage: true,
	}
	root.AddCommand(newOrdersCmd(open), newSetCmd(open))
	return root
}

func newOrdersCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "orders <file.xlsx>",
		Short: "Import an order export; orders already stored are skipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			result, err := svc.orders.ImportOrdersFromSpreadsheet(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d orders, skipped %d %v\n",
				result.CreatedCount, result.SkippedCount, result.SkippedOrders)
			return nil
		},
	}
}

func newSetCmd(open openFunc) *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "set <file.xlsx>",
		Short: "Create a set from a parts workbook, or replace the parts of the set with that name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			set, err := svc.sets.ImportSetFromSpreadsheet(cmd.Context(), name, description, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %q saved with %d parts\n", set.SetID, set.SetName, len(set.Parts))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Set name (required)")
	cmd.Flags().StringVar(&description, "description", "", "Set description")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// openServices connects with the server's configuration so codes come from the same sequence
func openServices(ctx context.Context) (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Initialize(logger.Config{Level: "warn", Format: "console"})

	conn, err := db.Connect(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn); err != nil {
		_ = db.Close(conn)
		return nil, err
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		if rdb, err = redisClient.NewClient(&cfg.Redis); err != nil {
			_ = db.Close(conn)
			return nil, err
		}
	}

	svc := build(conn, rdb, cfg)
	svc.close = func() {
		_ = redisClient.Close(rdb)
		_ = db.Close(conn)
	}
	return svc, nil
}

func build(conn *gorm.DB, rdb *redis.Client, cfg *config.Config) *services {
	partRepo := repository.NewPartRepository(conn)
	setRepo := repository.NewLegoSetRepository(conn)

	images := storage.NewImageStore(&cfg.Images, &cfg.S3)
	codes := sequence.New(cfg.Sequence.Backend, conn, rdb, model.LegoSetSequence,
		sequence.SeedFromLatestCode(setRepo.LatestSetCode))
	partService := service.NewPartService(partRepo, images, cfg.Images.RootFolder)

	return &services{
		sets:   service.NewLegoSetService(setRepo, partRepo, partService, codes, images, cfg.Images.RootFolder),
		orders: service.NewOrderService(repository.NewOrderRepository(conn)),
		close:  func() {},
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"golang-divergence-signals/internal/query/config"
	"golang-divergence-signals/internal/query/formatter"
	"golang-divergence-signals/internal/query/repository"
	"golang-divergence-signals/internal/query/service"
	"golang-divergence-signals/pkg/logger"
	"golang-divergence-signals/pkg/postgres"
	"golang-divergence-signals/pkg/telegram"
	"golang-divergence-signals/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath    string
	dateFlag      string
	startDateFlag string
	endDateFlag   string
	stockCodes    []string
	minConfidence float64
	endPriceEntry bool
	outputFormats []string
	outputFile    string
	pushMessage   bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query historical divergence signals for a date or date range",
	Run:   runQuery,
}

func runQuery(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	startDate, endDate, err := resolveDates()
	if err != nil {
		appLogger.Fatal("Invalid date flags", zap.Error(err))
	}

	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	eventRepo := repository.NewDivergenceEventRepository(db.DB)
	priceRepo := repository.NewDailyPriceRepository(db.DB)
	querySvc := service.NewQueryService(eventRepo, priceRepo, appLogger)

	opts := service.QueryOptions{
		StartDate:      startDate,
		EndDate:        endDate,
		StockCodes:     stockCodes,
		MinConfidence:  minConfidence,
		UseNextDayOpen: !endPriceEntry,
	}
	if len(opts.StockCodes) == 0 {
		opts.StockCodes = cfg.Query.StockCodes
	}
	if !cmd.Flags().Changed("min-confidence") {
		opts.MinConfidence = cfg.Query.MinConfidence
	}

	ctx := context.Background()
	signals, stats, err := querySvc.FetchSignals(ctx, opts)
	if err != nil {
		appLogger.Fatal("Signal query failed", zap.Error(err))
	}

	if stats.PriceMisses > 0 {
		appLogger.Warn("Some signals excluded for missing next-day bars",
			logger.IntField("excluded", stats.PriceMisses))
	}

	meta := formatter.QueryMeta{
		StartDate:      opts.StartDate,
		EndDate:        opts.EndDate,
		StockCodes:     opts.StockCodes,
		MinConfidence:  opts.MinConfidence,
		UseNextDayOpen: opts.UseNextDayOpen,
		GeneratedAt:    utils.TimeNowCST(),
	}

	for _, format := range outputFormats {
		switch format {
		case "console":
			fmt.Println(formatter.FormatConsole(signals))

		case "csv":
			path := outputFile
			if path == "" {
				path = fmt.Sprintf("./signals/query_%s_%s.csv",
					utils.FormatDate(opts.StartDate), utils.TimeNowCST().Format("20060102_150405"))
			}
			if err := formatter.WriteCSV(signals, path); err != nil {
				appLogger.Error("CSV export failed", zap.Error(err))
				continue
			}
			fmt.Printf("CSV saved: %s (%d signals)\n", path, len(signals))

		case "json":
			doc, err := formatter.WriteJSON(signals, meta, outputFile)
			if err != nil {
				appLogger.Error("JSON export failed", zap.Error(err))
				continue
			}
			if outputFile == "" {
				fmt.Println(doc)
			} else {
				fmt.Printf("JSON saved: %s (%d signals)\n", outputFile, len(signals))
			}

		default:
			appLogger.Warn("Unknown output format", logger.Field("format", format))
		}
	}

	if pushMessage {
		notifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxMessagesPerMinute)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", zap.Error(err))
		}
		if err := notifier.SendMessage(ctx, formatter.FormatMessage(signals, meta)); err != nil {
			appLogger.Fatal("Failed to push signals", zap.Error(err))
		}
		fmt.Println("Signals pushed to Telegram")
	}
}

// resolveDates turns the --date / --start-date / --end-date flags into a
// query range. --date wins and collapses the range to a single day.
func resolveDates() (time.Time, time.Time, error) {
	if dateFlag != "" {
		d, err := utils.ParseDate(dateFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --date: %w", err)
		}
		return d, d, nil
	}

	if startDateFlag == "" || endDateFlag == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("either --date or both --start-date and --end-date must be set")
	}

	start, err := utils.ParseDate(startDateFlag)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --start-date: %w", err)
	}
	end, err := utils.ParseDate(endDateFlag)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --end-date: %w", err)
	}
	return start, end, nil
}

func main() {
	rootCmd := &cobra.Command{Use: "signal-query"}

	queryCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")
	queryCmd.Flags().StringVar(&dateFlag, "date", "", "Single query date (YYYY-MM-DD)")
	queryCmd.Flags().StringVar(&startDateFlag, "start-date", "", "Range start date (YYYY-MM-DD)")
	queryCmd.Flags().StringVar(&endDateFlag, "end-date", "", "Range end date (YYYY-MM-DD)")
	queryCmd.Flags().StringSliceVar(&stockCodes, "stock-code", nil, "Restrict the query to these stock codes")
	queryCmd.Flags().Float64Var(&minConfidence, "min-confidence", 0.0, "Minimum confidence threshold (0.0-1.0)")
	queryCmd.Flags().BoolVar(&endPriceEntry, "end-price-entry", false, "Use the divergence end price instead of next-day open as entry price")
	queryCmd.Flags().StringSliceVarP(&outputFormats, "output", "o", []string{"console"}, "Output formats: console, csv, json")
	queryCmd.Flags().StringVar(&outputFile, "output-file", "", "Output file path for csv/json")
	queryCmd.Flags().BoolVar(&pushMessage, "push", false, "Push the result summary to Telegram")

	rootCmd.AddCommand(queryCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing signal-query CLI: %s\n", err)
		os.Exit(1)
	}
}

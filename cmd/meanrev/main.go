package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"meanrev/internal/config"
	"meanrev/internal/engine"
	"meanrev/internal/repository"
)

const dateLayout = "2006-01-02"

func main() {
	configPath := flag.String("config", "config.yaml", "path to the strategy parameter file")
	startFlag := flag.String("start", "", "first trading date (YYYY-MM-DD)")
	endFlag := flag.String("end", "", "last trading date (YYYY-MM-DD)")
	tradesOut := flag.String("trades", "trades.csv", "trade report output path")
	equityOut := flag.String("equity", "equity.csv", "equity curve output path")
	flag.Parse()

	// .env is optional; a missing file is fine in deployed environments.
	_ = godotenv.Load()

	start, err := time.Parse(dateLayout, *startFlag)
	if err != nil {
		log.Fatalf("invalid -start: %v", err)
	}
	end, err := time.Parse(dateLayout, *endFlag)
	if err != nil {
		log.Fatalf("invalid -end: %v", err)
	}
	if end.Before(start) {
		log.Fatal("-end must not be before -start")
	}

	params, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	db, err := repository.NewDatabase(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	eng := engine.NewEngine(&db, params, logger)
	if err := eng.Run(context.Background(), start, end); err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}

	if err := eng.WriteTradeReportCSV(*tradesOut); err != nil {
		logger.Fatal("write trade report", zap.Error(err))
	}
	if err := eng.WriteEquityCurveCSV(*equityOut); err != nil {
		logger.Fatal("write equity curve", zap.Error(err))
	}

	printDiagnostics(eng.Diagnostics())
	printSummary(eng.Summary())
}

func printDiagnostics(diag engine.Diagnostics) {
	fmt.Println("Diagnostics:")
	counts := diag.Counts()
	for _, name := range engine.CounterNames {
		fmt.Printf("  %-15s %d\n", name, counts[name])
	}
}

func printSummary(s engine.Summary) {
	fmt.Println("Performance:")
	fmt.Printf("  initial value     %.2f\n", s.InitialValue)
	fmt.Printf("  final value       %.2f\n", s.FinalValue)
	fmt.Printf("  total return      %.4f\n", s.TotalReturn)
	fmt.Printf("  annualized return %.4f\n", s.AnnualizedReturn)
	fmt.Printf("  max drawdown      %.4f\n", s.MaxDrawdown)
	fmt.Printf("  sharpe            %.4f\n", s.Sharpe)
	fmt.Printf("  trades            %d\n", s.Trades)
	fmt.Printf("  win rate          %.4f\n", s.WinRate)
	fmt.Printf("  avg win           %.2f\n", s.AvgWin)
	fmt.Printf("  avg loss          %.2f\n", s.AvgLoss)
}

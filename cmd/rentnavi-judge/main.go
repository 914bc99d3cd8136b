package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/na2kera/ai-rent-navi/constants"
	"github.com/na2kera/ai-rent-navi/internal/common"
	"github.com/na2kera/ai-rent-navi/internal/form"
	"github.com/na2kera/ai-rent-navi/internal/history"
	"github.com/na2kera/ai-rent-navi/internal/prediction"
)

// rentnavi-judge runs one judgment from the command line: validate the
// flags as form input, call the prediction service and print the verdict.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	var (
		prefecture = flag.String("prefecture", "東京都", "都道府県")
		city       = flag.String("city", "", "市区町村")
		station    = flag.String("station", "", "最寄り駅")
		distance   = flag.String("distance", "", "駅からの徒歩分数")
		area       = flag.String("area", "", "面積 (m2)")
		age        = flag.String("age", "", "築年数")
		structure  = flag.String("structure", "", "構造コード (1-5)")
		layout     = flag.String("layout", "", "間取りコード (1-12)")
		rent       = flag.String("rent", "", "現在の家賃 (円)")
		noRecord   = flag.Bool("no-record", false, "判定結果を履歴に残さない")
	)
	flag.Parse()

	state := form.NewStateFromValues(form.Values{
		form.FieldPrefecture:          *prefecture,
		form.FieldCity:                *city,
		form.FieldNearestStation:      *station,
		form.FieldDistanceFromStation: *distance,
		form.FieldArea:                *area,
		form.FieldAge:                 *age,
		form.FieldStructure:           *structure,
		form.FieldLayout:              *layout,
		form.FieldRent:                *rent,
	})

	input, err := state.Submit()
	if err != nil {
		var vf *form.ValidationFailed
		if errors.As(err, &vf) {
			for field, msg := range vf.Errors {
				fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
			}
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := prediction.NewClient(cfg.Prediction, logger)
	result, err := client.Predict(ctx, input)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("予測家賃: %s\n", constants.FormatYen(int64(result.PredictedRent)))
	fmt.Printf("適正範囲: %s 〜 %s\n",
		constants.FormatYen(int64(result.ReasonableRange.Min)),
		constants.FormatYen(int64(result.ReasonableRange.Max)))
	fmt.Printf("差額: %s\n", constants.FormatYen(int64(result.Difference)))
	fmt.Println(result.Message)

	if *noRecord {
		return
	}
	store, err := history.Open(ctx, cfg.History, logger)
	if err != nil {
		logger.Warn("history store unavailable", "error", err)
		return
	}
	defer store.Close()
	if _, err := store.Append(ctx, input, result); err != nil {
		logger.Warn("failed to record judgement", "error", err)
	}
}

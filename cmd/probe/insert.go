package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/banglehouse/bangles-backend/config"
	"github.com/banglehouse/bangles-backend/internal/db"
	"github.com/banglehouse/bangles-backend/internal/diagnostics"
	"github.com/banglehouse/bangles-backend/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	insertTable   string
	insertData    string
	insertFormat  string
	insertTimeout time.Duration
)

var errProbeFailed = errors.New("insert probe failed")

var insertCmd = &cobra.Command{
	Use:   "insert",
	Short: "Diagnose why inserts into a table fail",
	Long: `Runs table_exists, columns, select, insert_sample, read_back and
delete_sample against --table using the --data row. Every step runs even
after a failure. Exits non-zero when any step fails.`,
	Example: `  probe insert --table bangles --data '{"name":"Probe","price":1,"sizes":["2.4"]}'`,
	RunE:    runInsert,
}

func init() {
	insertCmd.Flags().StringVarP(&insertTable, "table", "t", "", "table to probe")
	insertCmd.Flags().StringVarP(&insertData, "data", "d", "{}", "sample row as a JSON object")
	insertCmd.Flags().StringVarP(&insertFormat, "output", "o", "text", "output format: text or json")
	insertCmd.Flags().DurationVar(&insertTimeout, "timeout", 30*time.Second, "overall probe timeout")
	_ = insertCmd.MarkFlagRequired("table")
}

func runInsert(cmd *cobra.Command, args []string) error {
	sample, err := parseSample(insertData)
	if err != nil {
		return err
	}
	if insertFormat != "text" && insertFormat != "json" {
		return fmt.Errorf("unknown output format %q", insertFormat)
	}

	// Keep stdout for the report
	logger.Initialize(logger.Config{Level: "warn", Format: "console", Output: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	conn, err := db.Open(&cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := conn.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), insertTimeout)
	defer cancel()

	report := diagnostics.NewProber(conn).ProbeInsert(ctx, insertTable, sample)
	if err := writeReport(cmd.OutOrStdout(), report, insertFormat); err != nil {
		return err
	}
	if !report.OK() {
		return errProbeFailed
	}
	return nil
}

func parseSample(data string) (map[string]interface{}, error) {
	var sample map[string]interface{}
	if err := json.Unmarshal([]byte(data), &sample); err != nil {
		return nil, fmt.Errorf("--data must be a JSON object: %w", err)
	}
	if sample == nil {
		return nil, errors.New("--data must be a JSON object")
	}
	return sample, nil
}

func writeReport(w io.Writer, report *diagnostics.Report, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(w, "Insert probe: %s\n", report.Table)
	for _, step := range report.Steps {
		status := "ok"
		switch {
		case step.Skipped:
			status = "skip"
		case !step.OK:
			status = "FAIL"
		}
		fmt.Fprintf(w, "  %-14s %-4s %8s", step.Step, status, step.Duration.Round(time.Microsecond))
		if step.Detail != "" {
			fmt.Fprintf(w, "  %s", step.Detail)
		}
		if step.Error != "" {
			fmt.Fprintf(w, "  [%s] %s", step.Code, step.Error)
		}
		fmt.Fprintln(w)
	}
	if len(report.MissingColumns) > 0 {
		fmt.Fprintf(w, "Columns not in table: %v\n", report.MissingColumns)
	}
	if len(report.RequiredColumns) > 0 {
		fmt.Fprintf(w, "Required columns missing from sample: %v\n", report.RequiredColumns)
	}
	if report.OK() {
		fmt.Fprintln(w, "All steps passed.")
	} else {
		fmt.Fprintf(w, "%d step(s) failed.\n", len(report.Failed()))
	}
	return nil
}

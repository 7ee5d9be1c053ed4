package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/GoSim-25-26J-441/tagnet-backend/internal/logger"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/domain"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/graph"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/layout"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/normalize"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/pivot"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	strict   bool
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "tagnet",
		Short:         "Build tag co-occurrence graphs and monthly series from exported rows",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVar(&opts.strict, "strict", false, "fail when every input row is malformed")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level for dropped-row reports")

	cmd.AddCommand(newGraphCmd(opts), newMonthlyCmd(opts))
	return cmd
}

func (o *rootOptions) normalizer() (*normalize.Normalizer, error) {
	lg, err := logger.New("development", o.logLevel)
	if err != nil {
		return nil, err
	}
	return normalize.New(lg, normalize.Options{Strict: o.strict}), nil
}

func newGraphCmd(root *rootOptions) *cobra.Command {
	var (
		rowsPath        string
		withLayout      bool
		iterations      int
		requireNonEmpty bool
	)
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Assemble a graph from co-occurrence rows ({tag1, tag2, count})",
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows []domain.CooccurrenceRow
			if err := readRows(cmd, rowsPath, &rows); err != nil {
				return err
			}
			n, err := root.normalizer()
			if err != nil {
				return err
			}
			pairs, _, err := n.Cooccurrence(rows)
			if err != nil {
				return err
			}
			g, err := graph.Assemble(pairs, graph.AssembleOptions{RequireNonEmpty: requireNonEmpty})
			if err != nil {
				return err
			}
			if !withLayout {
				return writeJSON(cmd.OutOrStdout(), g)
			}

			pg, err := layout.NewCoordinator(layout.NewForceEngine(iterations), nil).Apply(cmd.Context(), g)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), pg)
		},
	}
	cmd.Flags().StringVar(&rowsPath, "rows", "-", "JSON file of rows, - for stdin")
	cmd.Flags().BoolVar(&withLayout, "layout", false, "add x/y positions with the force engine")
	cmd.Flags().IntVar(&iterations, "iterations", 300, "force engine iterations")
	cmd.Flags().BoolVar(&requireNonEmpty, "require-nonempty", false, "fail when no valid rows remain")
	return cmd
}

func newMonthlyCmd(root *rootOptions) *cobra.Command {
	var (
		rowsPath string
		format   string
	)
	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Pivot monthly rows ({tag, yearMonth, count}) into one record per month",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "csv" {
				return fmt.Errorf("unknown format %q", format)
			}
			var rows []domain.MonthlyRow
			if err := readRows(cmd, rowsPath, &rows); err != nil {
				return err
			}
			n, err := root.normalizer()
			if err != nil {
				return err
			}
			counts, _, err := n.Monthly(rows)
			if err != nil {
				return err
			}
			records := pivot.Pivot(counts)
			if format == "csv" {
				return writeCSV(cmd.OutOrStdout(), records)
			}
			return writeJSON(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().StringVar(&rowsPath, "rows", "-", "JSON file of rows, - for stdin")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or csv")
	return cmd
}

func readRows(cmd *cobra.Command, path string, dst interface{}) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode rows: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeCSV emits one column per tag; months without a count for a tag get
// an empty cell.
func writeCSV(w io.Writer, records []domain.MonthlyRecord) error {
	tags := pivot.Tags(records)
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{domain.YearMonthKey}, tags...)); err != nil {
		return err
	}
	for _, rec := range records {
		line := make([]string, 0, len(tags)+1)
		line = append(line, rec.YearMonth)
		for _, t := range tags {
			if c, ok := rec.Get(t); ok {
				line = append(line, strconv.FormatInt(c, 10))
			} else {
				line = append(line, "")
			}
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}


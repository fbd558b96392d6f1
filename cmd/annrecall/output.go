package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/annrecall"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("invalid output %q, want one of [text, json, yaml]", format)
}

func writeReport(w io.Writer, r *annrecall.Report, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case outputText:
		return writeText(w, r)
	}
	return checkFormat(format)
}

func writeText(w io.Writer, r *annrecall.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "metric:\t%s\n", r.Metric)
	fmt.Fprintf(tw, "selector:\t%s\n", r.Selector)
	fmt.Fprintf(tw, "vectors:\t%d x %d\n", r.Vectors, r.Dimension)
	fmt.Fprintf(tw, "trials:\t%d (seed %d, effort %d)\n", r.NumTrials, r.BaseSeed, r.SearchEffort)
	fmt.Fprintf(tw, "query latency:\tp50 %s  p90 %s  p99 %s  max %s\n",
		r.Latency.P50, r.Latency.P90, r.Latency.P99, r.Latency.Max)
	fmt.Fprintf(tw, "elapsed:\t%s\n\n", r.Elapsed)

	fmt.Fprintln(tw, "LEVEL\tRECALL\tSTDDEV")
	for _, ls := range r.Levels {
		fmt.Fprintf(tw, "recall@%d\t%.4f\t%.4f\n", ls.Level, ls.Mean, ls.StdDev)
	}
	return tw.Flush()
}

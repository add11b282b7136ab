package main

import (
	"os"

	"github.com/spf13/cobra"

	"rsmgr/internal/metrics"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Dump process metrics (cache hit rate, search latency, install outcomes) in Prometheus text format",
	RunE: func(cmd *cobra.Command, args []string) error {
		return metrics.WriteText(os.Stdout)
	},
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/railbirdlabs/railbird/internal/pipeline"
	"github.com/railbirdlabs/railbird/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve chunk uploads and playback lookups over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	cmd.Flags().String("addr", ":5050", "Listen address")
	cmd.Flags().Float64("interval", 1.5, "Default seconds between sampled frames")
	cmd.Flags().Int("workers", 8, "Default analysis worker pool size")
	cmd.Flags().String("state", "state", "Directory holding the four JSON stores")
	cmd.Flags().String("audio", "audio", "Directory holding synthesized clips")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	interval, _ := cmd.Flags().GetFloat64("interval")
	workers, _ := cmd.Flags().GetInt("workers")
	stateDir, _ := cmd.Flags().GetString("state")
	audioDir, _ := cmd.Flags().GetString("audio")

	cfg, err := baseConfig()
	if err != nil {
		return err
	}
	cfg.IntervalSecs = interval
	cfg.MaxWorkers = workers
	cfg.StateDir = stateDir
	cfg.AudioDir = audioDir
	cfg.Logf = logf(cmd)

	srv := server.New(cfg, pipeline.Run)
	return srv.Router().Run(addr)
}

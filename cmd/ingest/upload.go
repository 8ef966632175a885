package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"i4e-backend/internal/app"

	"github.com/spf13/cobra"
)

type uploadOptions struct {
	file    string
	userID  int64
	timeout time.Duration
}

func newUploadCmd(g *globals) *cobra.Command {
	var opts uploadOptions

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Run the bulk career upload on a local .xlsx or .csv file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Spreadsheet to ingest (required)")
	cmd.Flags().Int64Var(&opts.userID, "user-id", 0, "User recorded as creator of the rows (required)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Minute, "Abort the upload after this long")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}

func runUpload(cmd *cobra.Command, g *globals, opts uploadOptions) error {
	if opts.userID <= 0 {
		return fmt.Errorf("invalid --user-id %d", opts.userID)
	}
	data, err := os.ReadFile(opts.file)
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.file, err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	c, err := app.NewContainer(ctx, g.cfg, g.log)
	if err != nil {
		return err
	}
	defer c.Close()
	go c.Hub.Run(ctx)

	res, err := c.BulkUpload.Upload(ctx, opts.userID, data)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(res); encErr != nil {
		return encErr
	}
	if err != nil {
		return fmt.Errorf("upload %s failed after %d rows: %w", res.UploadID, len(res.Rows), err)
	}

	g.log.Info("bulk upload finished", "upload_id", res.UploadID, "rows", len(res.Rows))
	return nil
}

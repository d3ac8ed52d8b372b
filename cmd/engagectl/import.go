package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dashboard-engagement/server/internal/dto"
	"dashboard-engagement/server/internal/repository"
	"dashboard-engagement/server/internal/service"
	"dashboard-engagement/server/pkg/redis"
)

type importOptions struct {
	req   dto.ImportAttendanceRequest
	apply bool
}

func newImportCmd(e *env) *cobra.Command {
	opts := importOptions{req: dto.ImportAttendanceRequest{ImportType: dto.ImportTypeEventAttendance}}

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import one event's attendance CSV (dry-run unless --apply)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, e, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.req.Title, "title", "", "event title (required)")
	cmd.Flags().StringVar(&opts.req.StartsAt, "starts-at", "", "event start, e.g. 2025-11-21T17:30 (required)")
	cmd.Flags().StringVar(&opts.req.EventKind, "kind", "", "social or nonsocial (required)")
	cmd.Flags().StringVar(&opts.req.EventType, "type", "", "event type")
	cmd.Flags().StringVar(&opts.req.Location, "location", "", "event location")
	cmd.Flags().StringVar(&opts.req.Committee, "committee", "", "hosting committee")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "write to the database (default is dry-run)")

	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("starts-at")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func runImport(cmd *cobra.Command, e *env, opts importOptions, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	db, err := e.openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)

	// invalidate the server's cached analytics after a real import
	var cache service.Cache
	if opts.apply && e.cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(&e.cfg.Redis, e.logger)
		if err != nil {
			e.logger.Warn("redis unavailable, cached analytics will expire on their own", zap.Error(err))
		} else {
			defer rdb.Close()
			cache = rdb
		}
	}

	svc := service.NewImportService(repository.NewRepository(db), cache, e.logger)
	result, err := svc.ImportAttendance(cmd.Context(), &opts.req,
		service.ImportFile{Name: filepath.Base(path), Content: f},
		service.ImportOptions{DryRun: !opts.apply, ImportedBy: "engagectl"},
	)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if !opts.apply {
		fmt.Fprintln(cmd.ErrOrStderr(), "dry run: nothing written, re-run with --apply to import")
	}
	return nil
}

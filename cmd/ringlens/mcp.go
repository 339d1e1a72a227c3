package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/ringlens/internal/adapters/mcp"
	service "github.com/okian/ringlens/internal/app"
	"github.com/okian/ringlens/pkg/logger"
)

func mcpCmd(e *env) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve an export directory to MCP clients over stdio",
		Long: `Load every CSV in --dir and expose it through MCP tools
(list_files, get_overview, get_rows, get_charts) on stdin/stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			uploads, err := service.CollectPaths([]string{dir})
			if err != nil {
				return err
			}

			svc := newService(ctx, e)
			defer svc.Close()

			res, err := svc.Ingest(ctx, uploads, service.Lenient)
			if err != nil {
				return err
			}
			for _, fe := range res.Failures {
				e.log.Warn(ctx, "file skipped", logger.String("file", fe.File), logger.Error(fe.Err))
			}

			e.log.Info(ctx, "serving mcp over stdio", logger.String("dir", dir), logger.Int("files", res.Session.Len()))
			return mcp.NewServer(svc, Version).Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "directory holding the exported CSV files")
	return cmd
}

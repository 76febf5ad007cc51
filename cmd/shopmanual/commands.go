// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noahsarkproj/shopmanual/internal/catalogue"
	"github.com/noahsarkproj/shopmanual/internal/schema"
	"github.com/noahsarkproj/shopmanual/internal/server"
	"github.com/noahsarkproj/shopmanual/internal/tool"
)

const shutdownTimeout = 5 * time.Second

var (
	serveHTTP    string
	serveLoad    bool
	parseFormat  string
	parseDiag    bool
	lookupIn     string
	fetchMapDest string
	pullQuery    map[string]string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Shop Manual tools over MCP",
	Long: `Starts an MCP server exposing parse_structure, audit_structure,
audit_quantum_candidate and lookup_entry. Uses stdio unless --http is set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Parse a structure file and print its atoms and features",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

var lookupCmd = &cobra.Command{
	Use:   "lookup PART_ID",
	Short: "Print the first Shop Manual entry with the given PartID",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

var fetchMapCmd = &cobra.Command{
	Use:   "fetch-map EMDB_ID",
	Short: "Download a cryo-EM density map from EMDB",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetchMap,
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch entries from the remote catalogue into the Shop Manual",
	Args:  cobra.NoArgs,
	RunE:  runPull,
}

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Validate a Shop Manual JSON file against the entry schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	serveCmd.Flags().StringVar(&serveHTTP, "http", "", "Serve streamable HTTP on this address instead of stdio")
	serveCmd.Flags().BoolVar(&serveLoad, "load", false, "Preload the Shop Manual from the output path")

	parseCmd.Flags().StringVar(&parseFormat, "format", "", "Format hint: pdb, json or yaml (default from extension)")
	parseCmd.Flags().BoolVar(&parseDiag, "diagnostics", false, "Report skipped atom lines")

	lookupCmd.Flags().StringVar(&lookupIn, "in", "", "Shop Manual to search (default: output path)")

	fetchMapCmd.Flags().StringVar(&fetchMapDest, "dest", "", "Destination file (default: emd_<id>.map.gz)")

	pullCmd.Flags().StringToStringVar(&pullQuery, "query", nil, "Query parameters, e.g. --query PartID=MAG-001")
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	v, err := schema.NewValidator()
	if err != nil {
		return err
	}

	manual := catalogue.New()
	if serveLoad {
		if err := manual.LoadFile(cfg.OutputPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	// stdout carries the MCP stream in stdio mode.
	auditor, err := newAuditor(cfg, manual, io.Discard)
	if err != nil {
		return err
	}
	srv := server.New(tool.NewTools(auditor, v))

	if serveHTTP != "" {
		ln, err := net.Listen("tcp", serveHTTP)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", serveHTTP, err)
		}
		handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
			return srv
		}, nil)
		logger.Info("Shop Manual MCP server listening", zap.String("addr", ln.Addr().String()))
		return serveUntilDone(ctx, &http.Server{Handler: handler}, ln)
	}

	logger.Info("Shop Manual MCP server starting (stdio)", zap.Int("entries", manual.Len()))
	return srv.Run(ctx, &mcp.StdioTransport{})
}

// serveUntilDone serves on ln until ctx is cancelled, then shuts hs down,
// waiting up to shutdownTimeout for open requests.
func serveUntilDone(ctx context.Context, hs *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- hs.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down Shop Manual MCP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format := parseFormat
	if format == "" {
		format = filepath.Ext(path)
	}

	_, out, err := tool.ParseStructure(context.Background(), nil, tool.InputParseStructure{
		Content:     string(data),
		Format:      format,
		SourceID:    path,
		Diagnostics: parseDiag || cfg.Parser.CollectDiagnostics,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd, out)
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := lookupIn
	if path == "" {
		path = cfg.OutputPath
	}

	manual := catalogue.New()
	if err := manual.LoadFile(path); err != nil {
		return err
	}
	entry, ok := manual.Lookup(args[0])
	if !ok {
		return fmt.Errorf("no catalogue entry with PartID %q in %s", args[0], path)
	}
	return writeJSON(cmd, entry)
}

func runFetchMap(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id := args[0]
	dest := fetchMapDest
	if dest == "" {
		dest = fmt.Sprintf("emd_%s.map.gz", id)
	}

	data, err := newFetchClient(cfg).FetchEMDB(ctx, id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved EMDB map %s as '%s' (%d bytes).\n", id, dest, len(data))
	return nil
}

func runPull(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newRemoteClient(cfg)
	if err != nil {
		return err
	}
	manual, err := client.PullCatalogue(ctx, pullQuery)
	if err != nil {
		return err
	}
	if err := manual.SaveFile(cfg.OutputPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pulled %d entries into '%s'.\n", manual.Len(), cfg.OutputPath)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	v, err := schema.NewValidator()
	if err != nil {
		return err
	}
	if err := v.ValidateCatalogueJSON(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	manual := catalogue.New()
	if err := manual.LoadJSON(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "'%s' is a valid Shop Manual (%d entries).\n", path, manual.Len())
	return nil
}

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/iyZAIRI/tazuna-bot/internal/config"
	"github.com/iyZAIRI/tazuna-bot/internal/fetch"
	"github.com/iyZAIRI/tazuna-bot/internal/logging"
	"github.com/iyZAIRI/tazuna-bot/internal/masterdb"
	"github.com/iyZAIRI/tazuna-bot/internal/umadb"
	"github.com/iyZAIRI/tazuna-bot/internal/web"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI flags
var (
	configPath string
	dbPath     string
	verbosity  int

	port int
	bind string

	fetchDataDir  string
	fetchURL      string
	fetchMetaURL  string
	fetchSchedule string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tazuna",
		Short: "Tazuna - game data snapshot lookup service",
		Long:  `Tazuna serves character, skill, race and support card lookups from a local master database snapshot.`,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "tazuna.yaml", "Settings file path")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "./data/master.mdb", "Snapshot path (or set TAZUNA_DB)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the lookup API server",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (required, or set PORT env var)")
	serveCmd.Flags().StringVarP(&bind, "bind", "b", "", "IP address to bind to (e.g., 127.0.0.1, 0.0.0.0)")

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the snapshot from the public mirror",
		RunE:  runFetch,
	}
	fetchCmd.Flags().StringVar(&fetchDataDir, "data-dir", "./data", "Directory to store the snapshot")
	fetchCmd.Flags().StringVar(&fetchURL, "url", "", "Override the snapshot URL")
	fetchCmd.Flags().StringVar(&fetchMetaURL, "meta-url", "", "Override the meta file URL")
	fetchCmd.Flags().StringVar(&fetchSchedule, "schedule", "", "Cron expression for periodic downloads (e.g. \"0 4 * * *\")")

	tablesCmd := &cobra.Command{
		Use:   "tables [table]",
		Short: "List snapshot tables, or show one table's schema",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTables,
	}

	rootCmd.AddCommand(serveCmd, fetchCmd, tablesCmd, &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tazuna %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads settings and configures logging; shared by all
// subcommands.
func setup() *config.Loader {
	loader, err := config.Load(configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", configPath).Msg("Failed to load settings; using defaults")
		loader = &config.Loader{}
	}

	if dbPath == "./data/master.mdb" {
		if envDB := os.Getenv("TAZUNA_DB"); envDB != "" {
			dbPath = envDB
		} else {
			dbPath = loader.String("snapshot.path", dbPath)
		}
	}

	var level string
	switch verbosity {
	case 0:
		level = loader.String("log.level", "info")
	case 1:
		level = "debug"
	default:
		level = "trace"
	}
	logging.Apply(level, loader, logging.FilePathForSnapshot(dbPath))

	return loader
}

func runServe(cmd *cobra.Command, args []string) error {
	loader := setup()

	if port == 0 {
		if envPort := os.Getenv("PORT"); envPort != "" {
			if _, err := fmt.Sscanf(envPort, "%d", &port); err != nil {
				return fmt.Errorf("invalid PORT environment variable %q: %w", envPort, err)
			}
		}
	}
	if port == 0 {
		port = loader.Int("server.port", 0)
	}
	if port == 0 {
		return fmt.Errorf("--port flag, PORT environment variable or server.port setting is required")
	}

	if bind == "" {
		bind = loader.String("server.bind", "")
	}
	if bind != "" {
		if ip := net.ParseIP(bind); ip == nil {
			return fmt.Errorf("invalid bind address: %s", bind)
		}
	}

	log.Info().
		Str("version", version).
		Int("port", port).
		Str("bind", bind).
		Str("snapshot", dbPath).
		Msg("Starting Tazuna")

	// Each manager owns its own snapshot handle. A failed load is not
	// fatal; the manager retries on the next access and the API keeps
	// answering with empty results until the snapshot appears.
	managers := web.Managers{
		Characters: umadb.NewCharacterManager(dbPath),
		Skills:     umadb.NewSkillManager(dbPath),
		Races:      umadb.NewRaceManager(dbPath),
		Supports:   umadb.NewSupportCardManager(dbPath),
	}
	defer managers.Close()

	if err := managers.Characters.Load(); err != nil {
		log.Warn().Err(err).Msg("Character data unavailable; serving empty results")
	}
	if err := managers.Skills.Load(); err != nil {
		log.Warn().Err(err).Msg("Skill data unavailable; serving empty results")
	}
	if err := managers.Races.Load(); err != nil {
		log.Warn().Err(err).Msg("Race data unavailable; serving empty results")
	}
	if err := managers.Supports.Load(); err != nil {
		log.Warn().Err(err).Msg("Support card data unavailable; serving empty results")
	}

	watcher, err := web.NewSnapshotWatcher(dbPath)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize snapshot watcher")
	} else {
		if err := watcher.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start snapshot watcher")
		} else {
			defer watcher.Stop()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := web.NewServer(managers, port, bind)
	return server.Start(ctx)
}

func runFetch(cmd *cobra.Command, args []string) error {
	loader := setup()

	if fetchURL == "" {
		fetchURL = loader.String("fetch.url", "")
	}
	if fetchMetaURL == "" {
		fetchMetaURL = loader.String("fetch.meta_url", "")
	}
	if fetchSchedule == "" {
		fetchSchedule = loader.String("fetch.schedule", "")
	}

	downloader := fetch.New(fetchDataDir, fetchURL, fetchMetaURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := downloader.Download(ctx); err != nil {
		return err
	}

	if fetchSchedule == "" {
		return nil
	}

	scheduler := fetch.NewScheduler(downloader)
	if err := scheduler.Start(fetchSchedule); err != nil {
		return fmt.Errorf("invalid fetch schedule %q: %w", fetchSchedule, err)
	}
	defer scheduler.Stop()

	<-ctx.Done()
	return nil
}

func runTables(cmd *cobra.Command, args []string) error {
	setup()

	reader := masterdb.New(dbPath)
	if err := reader.Connect(); err != nil {
		return fmt.Errorf("failed to open snapshot (try `tazuna fetch` first): %w", err)
	}
	defer reader.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if len(args) == 1 {
		cols := reader.TableSchema(args[0])
		if cols == nil {
			return fmt.Errorf("table not found: %s", args[0])
		}
		fmt.Fprintln(w, "COLUMN\tTYPE\tNOT NULL\tPK")
		for _, col := range cols {
			fmt.Fprintf(w, "%s\t%s\t%v\t%v\n", col.Name, col.Type, col.NotNull, col.PK)
		}
		return nil
	}

	fmt.Fprintln(w, "TABLE\tROWS")
	for _, table := range reader.Tables() {
		count := int64(0)
		rows := reader.Query(fmt.Sprintf("SELECT COUNT(*) AS count FROM %q", table))
		if len(rows) == 1 {
			count = rows[0].IntOr("count", 0)
		}
		fmt.Fprintf(w, "%s\t%d\n", table, count)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kadirbelkuyu/dbddl/internal/app"
	"github.com/kadirbelkuyu/dbddl/internal/config"
	_ "github.com/kadirbelkuyu/dbddl/internal/dialects"
	"github.com/kadirbelkuyu/dbddl/pkg/logger"

	"github.com/spf13/cobra"
)

const appName = "Database DDL Generator"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const asciiBanner = `
 ____  ____  ____  ____  _
|  _ \| __ )|  _ \|  _ \| |
| | | |  _ \| | | | | | | |
| |_| | |_) | |_| | |_| | |___
|____/|____/|____/|____/|_____|
`

var rootCmd = &cobra.Command{
	Use:   "dbddl",
	Short: "Generate dialect-specific DDL from a database schema",
	Long:  `A CLI that turns a schema document, or a live PostgreSQL catalog, into CREATE TABLE, index and foreign key scripts for HSQLDB, PostgreSQL and generic SQL-92.`,
	RunE:  runInteractive,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate DDL scripts for one or more dialects",
	RunE:  runGenerate,
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Write a schema document from a PostgreSQL catalog",
	RunE:  runExtract,
}

var dialectsCmd = &cobra.Command{
	Use:   "dialects",
	Short: "List the available dialects",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app.ListDialects(cmd.OutOrStdout())
	},
}

var typesCmd = &cobra.Command{
	Use:   "types <dialect>",
	Short: "Show how a dialect maps the SQL type codes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.ListTypes(cmd.OutOrStdout(), args[0])
	},
}

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Launch the guided interactive workflow",
	RunE:  runInteractive,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dbddl %s\n", version)
	},
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the configuration file (default ./"+config.DefaultConfigFile+" when present)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")

	generateCmd.Flags().StringSlice("dialect", nil, "Target dialects, comma separated (see 'dbddl dialects')")
	generateCmd.Flags().Bool("quote-identifiers", false, "Quote every identifier")
	generateCmd.Flags().Bool("include-drops", false, "Emit DROP TABLE statements before the CREATE statements")
	generateCmd.Flags().String("catalog", "", "Catalog used to qualify table names")
	generateCmd.Flags().String("schema", "", "Default schema used to qualify table names")
	generateCmd.Flags().StringSlice("tables", nil, "Generate only these tables")
	generateCmd.Flags().String("input", "", "Schema document to read instead of the source database")
	generateCmd.Flags().String("output", "", "Script file; several dialects get one file each (default stdout)")
	generateCmd.Flags().String("terminator", ";", "Statement terminator")
	addSourceFlags(generateCmd)

	extractCmd.Flags().String("output", "", "Schema document to write (default stdout)")
	addSourceFlags(extractCmd)

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(dialectsCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(interactiveCmd)
	rootCmd.AddCommand(versionCmd)

	cobra.OnInitialize(func() {
		rootCmd.SilenceUsage = true
		rootCmd.SilenceErrors = true
	})
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("source-host", "", "Source PostgreSQL host")
	cmd.Flags().Int("source-port", 0, "Source PostgreSQL port")
	cmd.Flags().String("source-database", "", "Source database name")
	cmd.Flags().String("source-user", "", "Source database user")
	cmd.Flags().String("source-password", "", "Source database password")
	cmd.Flags().String("source-sslmode", "", "Source SSL mode")
	cmd.Flags().String("source-schema", "", "Schema to read from the source database")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("cannot load config: %w", err)
	}
	return cfg, logger.NewLogger(cfg.Verbose), nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	service := app.NewService(log, cmd.OutOrStdout())
	outputs, err := service.Generate(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	app.RenderWarnings(cmd.ErrOrStderr(), outputs)
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	service := app.NewService(log, cmd.OutOrStdout())
	_, err = service.ExtractTo(cmd.Context(), cfg.Source, cfg.Output)
	return err
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	application := app.NewApplication(os.Stdin, cmd.OutOrStdout(), cfg, log, printBanner)
	return application.RunInteractive(cmd.Context())
}

func printBanner() {
	fmt.Print(asciiBanner)
	fmt.Println(appName)
	fmt.Println(strings.Repeat("-", len(appName)))
}

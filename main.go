// ABOUTME: Entry point for the leadflow MCP server and CLI
// ABOUTME: Loads config, wires the store, scoring engine, and events, then routes commands
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/harperreed/leadflow/cli"
	"github.com/harperreed/leadflow/config"
	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/events"
	"github.com/harperreed/leadflow/notify"
	"github.com/harperreed/leadflow/pipeline"
	"github.com/harperreed/leadflow/scoring"
	"go.uber.org/zap"
)

const version = "0.2.0"

type commandFunc func(ctx context.Context, args []string) error

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config file (default: ~/.config/leadflow/config.yaml)")
	dbPath := flag.String("db-path", "", "Database path (overrides config)")
	initOnly := flag.Bool("init", false, "Initialize database and exit")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("leadflow version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 && !*initOnly {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	if len(args) > 0 && args[0] == "config" {
		if err := cli.ConfigCommand(args[1:], cfg, *configPath, os.Stdout); err != nil {
			log.Fatalf("Error: %v", err)
		}
		return
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if *initOnly {
		fmt.Printf("Database initialized at %s\n", cfg.DBPath)
		return
	}

	var publisher events.Publisher = events.NewInMemoryBus(logger)
	var redisPub *events.RedisPublisher
	if cfg.Redis.URL != "" {
		redisPub, err = events.NewRedisPublisher(cfg.Redis.URL, cfg.Redis.Channel, logger)
		if err != nil {
			log.Fatalf("Failed to configure redis: %v", err)
		}
		defer func() { _ = redisPub.Close() }()
		publisher = events.Multi(publisher, redisPub)
	}

	command, commandArgs := args[0], args[1:]

	// MCP speaks JSON-RPC on stdout, so notifications go to the log instead.
	var notifier notify.Notifier = notify.NewConsole(os.Stdout)
	if command == "mcp" {
		notifier = notify.NewLogNotifier(logger)
	}

	store := db.NewStore(database)
	app := &cli.App{
		Store: store,
		Engine: scoring.NewEngine(store,
			scoring.WithNotifier(notifier),
			scoring.WithPublisher(publisher),
			scoring.WithLogger(logger),
			scoring.WithConcurrency(cfg.Scoring.Concurrency),
			scoring.WithRateLimit(cfg.Scoring.MaxUpdatesPerSecond),
		),
		Mover:       pipeline.NewMover(store, notifier, publisher, logger),
		Publisher:   publisher,
		Out:         os.Stdout,
		In:          os.Stdin,
		Interactive: cli.StdinIsTerminal(),
	}

	switch command {
	case "mcp":
		logger.Info("starting MCP server", zap.String("db", cfg.DBPath))
		if err := cli.MCPCommand(ctx, app, version); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}

	case "watch":
		if redisPub == nil {
			log.Fatalf("Error: watch requires redis.url in the config or %sREDIS_URL", config.EnvPrefix)
		}
		if err := cli.WatchCommand(ctx, redisPub, os.Stdout); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "crm":
		if len(commandArgs) == 0 {
			fmt.Println("Error: crm requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		crmCommands := map[string]commandFunc{
			"add-contact":          app.AddContactCommand,
			"list-contacts":        app.ListContactsCommand,
			"update-contact":       app.UpdateContactCommand,
			"bulk-update-contacts": app.BulkUpdateContactsCommand,
			"delete-contact":       app.DeleteContactCommand,
			"add-company":          app.AddCompanyCommand,
			"list-companies":       app.ListCompaniesCommand,
			"show-company":         app.ShowCompanyCommand,
			"update-company":       app.UpdateCompanyCommand,
			"delete-company":       app.DeleteCompanyCommand,
			"add-deal":             app.AddDealCommand,
			"list-deals":           app.ListDealsCommand,
			"move-deal":            app.MoveDealCommand,
			"delete-deal":          app.DeleteDealCommand,
			"log-activity":         app.LogActivityCommand,
			"list-activities":      app.ListActivitiesCommand,
			"complete-activity":    app.CompleteActivityCommand,
			"score":                app.ScoreCommand,
			"rescore":              app.RescoreCommand,
			"scoring-config":       app.ScoringConfigCommand,
		}
		run(ctx, cfg, crmCommands, commandArgs[0], commandArgs[1:])

	case "viz":
		if len(commandArgs) == 0 {
			fmt.Println("Error: viz requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		vizCommands := map[string]commandFunc{
			"dashboard": app.VizDashboardCommand,
			"pipeline":  app.VizPipelineCommand,
		}
		name, rest := commandArgs[0], commandArgs[1:]
		if name == "graph" {
			if len(rest) == 0 {
				fmt.Println("Error: viz graph requires a type (pipeline or leads)")
				os.Exit(1)
			}
			vizCommands = map[string]commandFunc{
				"pipeline": app.VizGraphPipelineCommand,
				"leads":    app.VizGraphLeadsCommand,
			}
			name, rest = rest[0], rest[1:]
		}
		run(ctx, cfg, vizCommands, name, rest)

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// run executes one subcommand under the configured store timeout. Commands that
// rescore every contact are left unbounded.
func run(ctx context.Context, cfg *config.Config, commands map[string]commandFunc, name string, args []string) {
	cmd, ok := commands[name]
	if !ok {
		fmt.Printf("Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if cfg.StoreTimeout > 0 && !rescoresAll(name, args) {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
	}

	if err := cmd(ctx, args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func rescoresAll(name string, args []string) bool {
	switch name {
	case "rescore":
		return hasFlag(args, "all")
	case "scoring-config":
		return hasFlag(args, "recalculate")
	}
	return false
}

func hasFlag(args []string, name string) bool {
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			continue
		}
		flagName, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if flagName == name {
			return !hasValue || value != "false"
		}
	}
	return false
}

func printUsage() {
	fmt.Printf(`leadflow v%s - CRM with lead scoring and a deal pipeline

USAGE:
  leadflow [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config file (default: ~/.config/leadflow/config.yaml)
  --db-path <path>       Database path (default: ~/.local/share/leadflow/leadflow.db)
  --init                 Initialize database and exit

COMMANDS:
  mcp                    Start MCP server on stdio
  crm                    CRM management commands
  viz                    Visualization commands
  config init [--force]  Write a default config file
  config show            Print the effective config
  watch                  Print change events from other processes (needs redis)

CRM COMMANDS:
  leadflow crm add-contact    Add a contact (lead score is calculated)
    --name <name>               Contact name (required)
    --company, --email, --phone, --address, --notes, --tags
    --type <type>               lead, customer, or partner (default: lead)
    --industry <industry>       technology, healthcare, finance, retail,
                                manufacturing, education, or other
    --company-size <size>       startup, small, medium, large, or enterprise
    --engagement-level <level>  high, medium, or low

  leadflow crm list-contacts  List contacts
    --query <text>              Search by name, company, or email
    --type <type>               Filter by contact type
    --company <name>            Only contacts at this company
    --sort <field>              name, company, or created
    --limit <n>                 Max results (default: 50)

  leadflow crm update-contact [flags] <id>       Update passed fields only
    --clear <fields>            Comma-separated fields to clear
  leadflow crm bulk-update-contacts [flags] <id>...
  leadflow crm delete-contact [--yes] <id>

  leadflow crm add-company    Add a company
    --name <name>               Company name (required)
    --industry, --company-size, --website, --contact-email,
    --phone-number, --address, --description, --tags
  leadflow crm list-companies [--query <text>] [--industry <industry>] [--sort name|industry|created]
  leadflow crm show-company <id>          Company details and its contacts
  leadflow crm update-company [flags] <id>
  leadflow crm delete-company [--yes] <id>

  leadflow crm add-deal       Add a deal
    --title <title>             Deal title (required)
    --value <n>                 Deal value
    --stage <stage>             Stage (default: Lead)
    --contact <id>              Contact ID
    --close-date <YYYY-MM-DD>   Expected close date

  leadflow crm list-deals [--stage <stage>] [--contact <id>]
  leadflow crm move-deal <id> <stage>
  leadflow crm delete-deal [--yes] <id>

  leadflow crm log-activity --type <type> --title <title> [--due <date>] [--contact <id>] [--deal <id>]
  leadflow crm list-activities [--pending] [--contact <id>] [--deal <id>]
  leadflow crm complete-activity [--outcome <text>] <id>

  leadflow crm score <id>                 Explain a contact's lead score
  leadflow crm rescore <id> | --all       Recalculate stored lead scores
  leadflow crm scoring-config             Print the scoring config as YAML
    --file <path>               Replace it from a YAML file
    --reset                     Restore the defaults
    --recalculate               Rescore every contact after saving

VIZ COMMANDS:
  leadflow viz dashboard                  Leads, pipeline, and overdue activities
  leadflow viz pipeline                   Deal count and value per stage
  leadflow viz graph pipeline [--output <file>]
  leadflow viz graph leads [--min-score <n>] [--output <file>]

STAGES:
  Lead, Qualified, Proposal, Negotiation, Closed Won, Closed Lost

`, version)
}

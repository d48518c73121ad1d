package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sibyllinesoft/contractver/pkg/config"
	"github.com/sibyllinesoft/contractver/pkg/contract"
	"github.com/sibyllinesoft/contractver/pkg/manager"
	"github.com/sibyllinesoft/contractver/pkg/observability"
	"github.com/sibyllinesoft/contractver/pkg/storage"
)

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
}

// NewRootCommand creates the root command
func NewRootCommand() *Command {
	root := &Command{
		Name:        "contractver",
		Description: "Contract versioning and compatibility engine",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("contractver", flag.ExitOnError),
	}

	root.Subcommands["analyze"] = newAnalyzeCommand()
	root.Subcommands["bump"] = newBumpCommand()
	root.Subcommands["check"] = newCheckCommand()
	root.Subcommands["plan"] = newPlanCommand()
	root.Subcommands["migrate"] = newMigrateCommand()
	root.Subcommands["history"] = newHistoryCommand()
	root.Subcommands["matrix"] = newMatrixCommand()

	return root
}

// Execute runs the command
func (c *Command) Execute() error {
	args := os.Args[1:]
	if len(args) == 0 {
		return c.usage()
	}

	if args[0] == "-h" || args[0] == "--help" {
		return c.usage()
	}

	if subcmd, ok := c.Subcommands[args[0]]; ok {
		return subcmd.Run(args[1:])
	}

	return fmt.Errorf("unknown command: %s", args[0])
}

// usage prints the command usage
func (c *Command) usage() error {
	fmt.Printf("Usage: %s <command> [args]\n\n", c.Name)
	fmt.Printf("Commands:\n")
	for name, cmd := range c.Subcommands {
		fmt.Printf("  %-10s %s\n", name, cmd.Description)
	}
	return nil
}

// environment is the wiring every command shares: configuration, the file
// stores and the restored manager.
type environment struct {
	cfg       *config.Config
	contracts *storage.FileContractStore
	snapshots *storage.FileSnapshotStore
	manager   *manager.Manager
	logger    *observability.Logger
}

// loadEnvironment builds the engine from CONTRACTVER_* configuration. The
// manager is restored from the snapshot file when one exists; otherwise it
// is seeded from the latest version present in the contract store.
func loadEnvironment() (*environment, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stderr)

	contracts, err := storage.NewFileContractStore(cfg.Storage.ContractRoot, logger)
	if err != nil {
		return nil, err
	}
	snapshots, err := storage.NewFileSnapshotStore(cfg.Storage.SnapshotPath)
	if err != nil {
		return nil, err
	}

	var tagger manager.Tagger
	if cfg.Git.Enabled {
		tagger = manager.NewGitTagger(cfg.Git, ".", logger)
	}

	env := &environment{
		cfg:       cfg,
		contracts: contracts,
		snapshots: snapshots,
		logger:    logger,
	}

	if snapshot, err := snapshots.Load(); err == nil {
		env.manager = manager.New(cfg, snapshot.CurrentVersion, snapshot.Contracts[snapshot.CurrentVersion.String()], tagger, logger, nil)
		if err := env.manager.Import(snapshot); err != nil {
			return nil, fmt.Errorf("restoring snapshot: %w", err)
		}
		return env, nil
	}

	versions, err := contracts.Versions()
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("no versions found under %s and no snapshot at %s", cfg.Storage.ContractRoot, cfg.Storage.SnapshotPath)
	}

	latest := versions[len(versions)-1]
	set, err := contracts.Contracts(latest)
	if err != nil {
		return nil, err
	}
	env.manager = manager.New(cfg, latest, set, tagger, logger, nil)

	// Register the older versions so compatibility queries can see them.
	if len(versions) > 1 {
		snapshot := env.manager.Export()
		var imported []manager.HistoryEntry
		for _, v := range versions[:len(versions)-1] {
			older, err := contracts.Contracts(v)
			if err != nil {
				return nil, err
			}
			snapshot.Contracts[v.String()] = older
			imported = append(imported, manager.HistoryEntry{
				ID:        uuid.NewString(),
				Version:   v,
				Author:    "store",
				Message:   "imported from contract store",
				Contracts: contract.SortedIDs(older),
			})
		}
		snapshot.History = append(imported, snapshot.History...)
		if err := env.manager.Import(snapshot); err != nil {
			return nil, err
		}
	}
	return env, nil
}

// save persists the manager state back to the snapshot file.
func (e *environment) save() error {
	return e.snapshots.Save(e.manager.Export())
}

// readContractDir loads every YAML contract definition in a directory,
// keyed by contract ID (falling back to the file name).
func readContractDir(dir string) (map[string]*contract.Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract directory: %w", err)
	}

	set := make(map[string]*contract.Definition)
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		var def contract.Definition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}
		if def.ID == "" {
			def.ID = strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		}
		set[def.ID] = &def
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no contract files found in %s", dir)
	}
	return set, nil
}

// printChanges renders an analyzed change list.
func printChanges(changes []contract.Change) {
	for _, c := range changes {
		fmt.Printf("[%s/%s] %s: %s\n", c.Impact, c.Severity, c.Path, c.Description)
		if c.Details.Diff != "" {
			fmt.Printf("  diff: %s\n", c.Details.Diff)
		}
		if c.Details.MigrationRequired {
			fmt.Printf("  migration required\n")
		}
	}
}

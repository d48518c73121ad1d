package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sibyllinesoft/contractver/pkg/semver"
)

func newAnalyzeCommand() *Command {
	cmd := &Command{
		Name:        "analyze",
		Description: "Analyze contract changes between two versions",
		Flags:       flag.NewFlagSet("analyze", flag.ExitOnError),
		Run:         runAnalyze,
	}

	cmd.Flags.String("from", "", "Source version (defaults to current)")
	cmd.Flags.String("to", "", "Target version, or a directory of contract files via --dir")
	cmd.Flags.String("dir", "", "Directory of proposed contract YAML files")
	cmd.Flags.String("format", "text", "Output format: text, json")

	return cmd
}

func runAnalyze(args []string) error {
	flags := flag.NewFlagSet("analyze", flag.ExitOnError)
	fromText := flags.String("from", "", "Source version (defaults to current)")
	toText := flags.String("to", "", "Target version")
	dir := flags.String("dir", "", "Directory of proposed contract YAML files")
	format := flags.String("format", "text", "Output format: text, json")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if *toText == "" && *dir == "" {
		return fmt.Errorf("either --to or --dir is required")
	}

	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	from := env.manager.CurrentVersion()
	if *fromText != "" {
		if from, err = semver.Parse(*fromText); err != nil {
			return err
		}
	}
	source, err := env.manager.ContractsFor(from)
	if err != nil {
		return err
	}

	target := source
	if *dir != "" {
		if target, err = readContractDir(*dir); err != nil {
			return err
		}
	} else {
		to, err := semver.Parse(*toText)
		if err != nil {
			return err
		}
		if target, err = env.manager.ContractsFor(to); err != nil {
			return err
		}
	}

	decision := env.manager.AnalyzeChanges(source, target)

	if *format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(decision.Analysis)
	}

	fmt.Printf("Differences: %d\n", len(decision.Analysis.Differences))
	printChanges(decision.Analysis.Differences)
	fmt.Printf("\nImpact: %s\n", decision.Impact)
	fmt.Printf("Required bump: %s (next version %s)\n", decision.BumpType, decision.NextVersion)
	if !decision.Analysis.Compatible {
		fmt.Println("Verdict: INCOMPATIBLE")
	} else {
		fmt.Println("Verdict: compatible")
	}
	return nil
}

package cli

import (
	"flag"
	"fmt"

	"github.com/sibyllinesoft/contractver/pkg/semver"
)

func newCheckCommand() *Command {
	cmd := &Command{
		Name:        "check",
		Description: "Check whether upgrading to a version is safe",
		Flags:       flag.NewFlagSet("check", flag.ExitOnError),
		Run:         runCheck,
	}

	cmd.Flags.String("to", "", "Target version (required)")

	return cmd
}

func runCheck(args []string) error {
	flags := flag.NewFlagSet("check", flag.ExitOnError)
	toText := flags.String("to", "", "Target version (required)")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if *toText == "" {
		return fmt.Errorf("--to is required")
	}
	to, err := semver.Parse(*toText)
	if err != nil {
		return err
	}

	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	check, err := env.manager.CheckCompatibility(to)
	if err != nil {
		return err
	}

	fmt.Printf("Upgrade %s -> %s\n", env.manager.CurrentVersion(), to)
	for _, w := range check.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	if len(check.BreakingChanges) > 0 {
		fmt.Printf("\nBreaking changes:\n")
		printChanges(check.BreakingChanges)
	}
	if check.MigrationRequired {
		fmt.Println("\nMigration required.")
	}
	if !check.Safe {
		return fmt.Errorf("upgrade to %s is not safe", to)
	}
	fmt.Println("\nSafe to upgrade.")
	return nil
}

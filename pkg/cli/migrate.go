package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/sibyllinesoft/contractver/pkg/semver"
)

func newMigrateCommand() *Command {
	cmd := &Command{
		Name:        "migrate",
		Description: "Execute a migration to a version",
		Flags:       flag.NewFlagSet("migrate", flag.ExitOnError),
		Run:         runMigrate,
	}

	cmd.Flags.String("to", "", "Target version (required)")
	cmd.Flags.Bool("dry-run", false, "Run validations only, apply nothing")

	return cmd
}

func runMigrate(args []string) error {
	flags := flag.NewFlagSet("migrate", flag.ExitOnError)
	toText := flags.String("to", "", "Target version (required)")
	dryRun := flags.Bool("dry-run", false, "Run validations only, apply nothing")

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

	result, err := env.manager.Migrate(context.Background(), to, *dryRun)
	if err != nil {
		return err
	}

	for _, step := range result.CompletedSteps {
		fmt.Printf("completed: %s\n", step)
	}
	if result.Success {
		if *dryRun {
			fmt.Println("Dry run succeeded.")
		} else {
			fmt.Println("Migration succeeded.")
		}
		return nil
	}
	if result.RollbackRequired {
		fmt.Println("Migration failed; rollback required.")
	}
	return fmt.Errorf("migration failed: %w", result.Err)
}

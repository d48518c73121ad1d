package cli

import (
	"flag"
	"fmt"

	"github.com/sibyllinesoft/contractver/pkg/semver"
)

func newPlanCommand() *Command {
	cmd := &Command{
		Name:        "plan",
		Description: "Generate a migration path to a version",
		Flags:       flag.NewFlagSet("plan", flag.ExitOnError),
		Run:         runPlan,
	}

	cmd.Flags.String("to", "", "Target version (required)")

	return cmd
}

func runPlan(args []string) error {
	flags := flag.NewFlagSet("plan", flag.ExitOnError)
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

	path, err := env.manager.PlanMigration(to)
	if err != nil {
		return err
	}

	fmt.Printf("Migration %s -> %s\n", path.FromVersion, path.ToVersion)
	fmt.Printf("Complexity: %s  Automated: %t  Estimated duration: %s\n\n", path.Complexity, path.Automated, path.EstimatedDuration)
	for i, step := range path.Steps {
		fmt.Printf("%2d. [%s] %s\n", i+1, step.Type, step.Name)
		fmt.Printf("    %s\n", step.Operation)
		if len(step.Dependencies) > 0 {
			fmt.Printf("    depends on: %v\n", step.Dependencies)
		}
		if !step.Rollback.Possible {
			fmt.Printf("    rollback: impossible\n")
		} else if step.Rollback.DataLossRisk {
			fmt.Printf("    rollback: possible (data loss risk)\n")
		}
	}
	if len(path.Prerequisites) > 0 {
		fmt.Printf("\nPrerequisites:\n")
		for _, p := range path.Prerequisites {
			fmt.Printf("  - %s\n", p)
		}
	}
	if len(path.Risks) > 0 {
		fmt.Printf("\nRisks:\n")
		for _, r := range path.Risks {
			fmt.Printf("  - %s\n", r)
		}
	}
	return nil
}

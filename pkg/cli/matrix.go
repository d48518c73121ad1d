package cli

import (
	"flag"
	"fmt"

	"github.com/sibyllinesoft/contractver/pkg/semver"
)

func newMatrixCommand() *Command {
	cmd := &Command{
		Name:        "matrix",
		Description: "Show the compatibility matrix for the current version",
		Flags:       flag.NewFlagSet("matrix", flag.ExitOnError),
		Run:         runMatrix,
	}

	return cmd
}

func runMatrix(args []string) error {
	flags := flag.NewFlagSet("matrix", flag.ExitOnError)
	if err := flags.Parse(args); err != nil {
		return err
	}

	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	matrix := env.manager.Matrix()
	fmt.Printf("Source version: %s\n\n", matrix.SourceVersion)
	printBucket("Compatible", matrix.Compatible)
	printBucket("Deprecated", matrix.Deprecated)
	printBucket("Unsupported", matrix.Unsupported)

	if len(matrix.MigrationPaths) > 0 {
		fmt.Printf("Migration paths:\n")
		for target, path := range matrix.MigrationPaths {
			fmt.Printf("  -> %s: %d step(s), %s complexity, ~%s\n", target, len(path.Steps), path.Complexity, path.EstimatedDuration)
		}
	}
	return nil
}

func printBucket(name string, versions []semver.Version) {
	fmt.Printf("%s (%d):\n", name, len(versions))
	for _, v := range versions {
		fmt.Printf("  %s\n", v)
	}
	fmt.Println()
}

package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/sibyllinesoft/contractver/pkg/manager"
	"github.com/sibyllinesoft/contractver/pkg/semver"
)

func newBumpCommand() *Command {
	cmd := &Command{
		Name:        "bump",
		Description: "Record a new version for a proposed contract set",
		Flags:       flag.NewFlagSet("bump", flag.ExitOnError),
		Run:         runBump,
	}

	cmd.Flags.String("dir", "", "Directory of proposed contract YAML files (required)")
	cmd.Flags.String("author", "", "Author of the change (required)")
	cmd.Flags.String("message", "", "Change message (required)")
	cmd.Flags.String("type", "", "Override bump type: major, minor, patch, prerelease")

	return cmd
}

func runBump(args []string) error {
	flags := flag.NewFlagSet("bump", flag.ExitOnError)
	dir := flags.String("dir", "", "Directory of proposed contract YAML files (required)")
	author := flags.String("author", "", "Author of the change (required)")
	message := flags.String("message", "", "Change message (required)")
	typeText := flags.String("type", "", "Override bump type")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if *dir == "" || *author == "" || *message == "" {
		return fmt.Errorf("--dir, --author and --message are required")
	}

	var custom *semver.BumpType
	if *typeText != "" {
		bump, err := semver.ParseBumpType(*typeText)
		if err != nil {
			return err
		}
		custom = &bump
	}

	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	proposed, err := readContractDir(*dir)
	if err != nil {
		return err
	}

	entry, err := env.manager.BumpVersion(context.Background(), proposed, *author, *message, custom)
	if err != nil {
		var compatErr *manager.CompatibilityError
		if errors.As(err, &compatErr) {
			return fmt.Errorf("bump rejected by strict compatibility: %s (use --type %s)", compatErr.Reason, compatErr.Required)
		}
		return err
	}

	if err := env.contracts.SaveContracts(entry.Version, proposed); err != nil {
		return err
	}
	if err := env.save(); err != nil {
		return err
	}

	fmt.Printf("Recorded version %s (%d change(s))\n", entry.Version, len(entry.Changes))
	return nil
}

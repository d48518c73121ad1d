package cli

import (
	"flag"
	"fmt"
	"strings"
)

func newHistoryCommand() *Command {
	cmd := &Command{
		Name:        "history",
		Description: "Show the version history",
		Flags:       flag.NewFlagSet("history", flag.ExitOnError),
		Run:         runHistory,
	}

	return cmd
}

func runHistory(args []string) error {
	flags := flag.NewFlagSet("history", flag.ExitOnError)
	if err := flags.Parse(args); err != nil {
		return err
	}

	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	current := env.manager.CurrentVersion()
	for _, entry := range env.manager.History() {
		marker := " "
		if entry.Version.Equal(current) {
			marker = "*"
		}
		line := fmt.Sprintf("%s %-12s %s", marker, entry.Version, entry.Message)
		if entry.Author != "" {
			line += fmt.Sprintf(" (%s)", entry.Author)
		}
		if len(entry.Contracts) > 0 {
			line += fmt.Sprintf(" [%s]", strings.Join(entry.Contracts, ", "))
		}
		fmt.Println(line)
	}
	return nil
}

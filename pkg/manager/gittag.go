package manager

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sibyllinesoft/contractver/pkg/config"
	"github.com/sibyllinesoft/contractver/pkg/observability"
	"github.com/sibyllinesoft/contractver/pkg/semver"
)

// GitTagger tags versions by shelling out to the git CLI in a repository
// directory. Respects the tagPrefix, createTags and pushTags settings.
type GitTagger struct {
	cfg    config.GitConfig
	dir    string
	logger *observability.Logger
}

// NewGitTagger creates a tagger operating on the repository at dir.
func NewGitTagger(cfg config.GitConfig, dir string, logger *observability.Logger) *GitTagger {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &GitTagger{cfg: cfg, dir: dir, logger: logger}
}

// Tag creates an annotated tag for version and optionally pushes it.
func (t *GitTagger) Tag(ctx context.Context, version semver.Version, message string) error {
	if !t.cfg.Enabled || !t.cfg.CreateTags {
		return nil
	}

	name := t.cfg.TagPrefix + version.String()
	if err := t.run(ctx, "tag", "-a", name, "-m", message); err != nil {
		return fmt.Errorf("creating tag %s: %w", name, err)
	}
	t.logger.WithField("tag", name).Info("version tagged")

	if !t.cfg.PushTags {
		return nil
	}
	if err := t.run(ctx, "push", "origin", name); err != nil {
		return fmt.Errorf("pushing tag %s: %w", name, err)
	}
	return nil
}

func (t *GitTagger) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", t.dir}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

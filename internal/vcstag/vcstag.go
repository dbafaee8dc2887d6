// Package vcstag backs the vcs_tag() free function (§4.D, supplemented
// from original_source/src/tools/vcs_tag.cpp): render a template,
// substituting the repository's current description, and never fail
// configure even when the source tree isn't a git checkout.
package vcstag

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// Describe returns `git describe --tags --always --dirty` run in
// sourceRoot, or the literal "unknown" if git isn't available or the
// tree isn't a repository — vcs_tag() must never abort configuration.
func Describe(sourceRoot string) string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, "git", "describe", "--tags", "--always", "--dirty")
	cmd.Dir = sourceRoot
	out, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

// RenderCommand returns the shell command line a CUSTOM rule runs to
// substitute @VCS_TAG@ into the target's input template.
func RenderCommand(tag string) string {
	return "sed -e 's/@VCS_TAG@/" + strings.ReplaceAll(tag, "/", `\/`) + "/g' @INPUT@ > @OUTPUT@"
}

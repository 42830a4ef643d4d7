package git

import (
	"context"
	"fmt"
)

// aliases maps git alias names to the arbor command they run
var aliases = [][2]string{
	{"smartlog", "smartlog"},
	{"sl", "smartlog"},
	{"hide", "hide"},
	{"unhide", "unhide"},
	{"prev", "prev"},
	{"next", "next"},
	{"restack", "restack"},
	{"undo", "undo"},
	{"move", "move"},
}

// InstallAliases adds local git aliases so the workflow commands read as
// git subcommands (git sl, git undo, ...).
func (r *Repository) InstallAliases(ctx context.Context) error {
	for _, alias := range aliases {
		name, command := alias[0], alias[1]
		if err := r.SetLocalConfig(ctx, "alias."+name, "!arbor "+command); err != nil {
			return fmt.Errorf("failed to install alias %s: %w", name, err)
		}
	}
	return nil
}

// UninstallAliases removes the aliases InstallAliases added. Aliases the
// user has since repointed elsewhere are left alone.
func (r *Repository) UninstallAliases(ctx context.Context) error {
	for _, alias := range aliases {
		name, command := alias[0], alias[1]
		current, err := r.LocalConfig(ctx, "alias."+name)
		if err != nil || current != "!arbor "+command {
			continue
		}
		if err := r.UnsetLocalConfig(ctx, "alias."+name); err != nil {
			return fmt.Errorf("failed to remove alias %s: %w", name, err)
		}
	}
	return nil
}

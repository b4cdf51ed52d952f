//go:build darwin

package netstat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"os/user"
)

// runLsof executes lsof and returns its stdout. Swappable in tests.
// Stderr is discarded; lsof warns about inaccessible file systems on a
// healthy run.
var runLsof = func(ctx context.Context) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "lsof", "-nP", "-iTCP", "-iUDP", "-F", "pcuPnT")
	cmd.Stderr = io.Discard
	return cmd.Output()
}

// snapshot enumerates sockets via lsof field output, the same backend the
// system's netstat UI uses. lsof exits non-zero when it finds nothing, so
// an error with empty output is treated as an empty table.
func snapshot(ctx context.Context) ([]Binding, error) {
	out, err := runLsof(ctx)
	if err != nil && len(bytes.TrimSpace(out)) == 0 {
		if _, ok := err.(*exec.ExitError); ok {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to run lsof: %w", err)
	}

	bindings := parseLsofFields(bytes.NewReader(out))
	usernames := make(map[string]string)
	for i := range bindings {
		bindings[i].User = lookupUser(bindings[i].User, usernames)
	}
	return bindings, nil
}

// lookupUser resolves the numeric uid from lsof's u field to a username.
func lookupUser(uid string, cache map[string]string) string {
	if uid == "" {
		return ""
	}
	if name, ok := cache[uid]; ok {
		return name
	}
	name := uid
	if u, err := user.LookupId(uid); err == nil {
		name = u.Username
	}
	cache[uid] = name
	return name
}

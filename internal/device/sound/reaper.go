package sound

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/oshokin/pomodoro-alarm/internal/config"
	"github.com/oshokin/pomodoro-alarm/internal/logger"
)

// writePID records the running player.
func (p *Player) writePID(ctx context.Context, pid int) {
	if p.pidFile == "" {
		return
	}

	data := []byte(strconv.Itoa(pid))
	if err := os.WriteFile(filepath.Clean(p.pidFile), data, config.DefaultFilePermissions); err != nil {
		logger.DebugKV(ctx, "Failed to write player pid file", "error", err)
	}
}

// clearPID removes the pid file.
func (p *Player) clearPID(ctx context.Context) {
	if p.pidFile == "" {
		return
	}

	if err := os.Remove(filepath.Clean(p.pidFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.DebugKV(ctx, "Failed to remove player pid file", "error", err)
	}
}

// ReapOrphan kills a player left running by a previous daemon and removes the pid file.
// It reports whether a process was killed.
func (p *Player) ReapOrphan(ctx context.Context) (bool, error) {
	if p.pidFile == "" {
		return false, nil
	}

	ctx = logger.WithName(ctx, "sound")

	contents, err := os.ReadFile(filepath.Clean(p.pidFile))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("read pid file: %w", err)
	}

	defer p.clearPID(ctx)

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid <= 0 || pid == os.Getpid() {
		return false, nil
	}

	process, err := ps.FindProcess(pid)
	if err != nil {
		return false, fmt.Errorf("find process %d: %w", pid, err)
	}

	// The pid may have been reused by an unrelated program.
	if process == nil || process.Executable() != filepath.Base(p.command) {
		return false, nil
	}

	runningProcess, err := os.FindProcess(pid)
	if err != nil {
		return false, fmt.Errorf("find process %d: %w", pid, err)
	}

	if err = runningProcess.Kill(); err != nil {
		return false, fmt.Errorf("kill orphaned player %d: %w", pid, err)
	}

	logger.InfoKV(ctx, "Orphaned player killed", "pid", pid)

	return true, nil
}

package sound

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/pomodoro-alarm/internal/config"
	"github.com/oshokin/pomodoro-alarm/internal/logger"
	"github.com/oshokin/pomodoro-alarm/internal/runner"
)

const (
	// releaseTimeout bounds how long Release waits for the player to exit.
	releaseTimeout = 2 * time.Second
	// maxDefaultFailures stops the loop after the default sound keeps failing.
	maxDefaultFailures = 3
	// retryDelay spaces out restarts after a failed run.
	retryDelay = 500 * time.Millisecond
)

var (
	// ErrNoSound is returned when neither the asset nor any fallback sound is readable.
	ErrNoSound = errors.New("no playable sound")
	// errOutsideAssets is returned for asset references escaping the assets directory.
	errOutsideAssets = errors.New("asset outside assets directory")
	// errReleaseTimeout is returned when the player does not exit in time.
	errReleaseTimeout = errors.New("player did not exit in time")
)

// Player starts one looping player process per Play call.
type Player struct {
	// command is the player executable.
	command string
	// args are placed before the sound file.
	args []string
	// assetsDir is the root of bundled assets.
	assetsDir string
	// defaultSound is the configured fallback sound file.
	defaultSound string
	// systemSound is tried when the configured fallback is missing or fails.
	systemSound string
	// pidFile records the running player pid; empty disables it.
	pidFile string
}

// New creates a player from configuration.
func New(cfg config.SoundConfig) *Player {
	return &Player{
		command:      cfg.Command,
		args:         cfg.Args,
		assetsDir:    cfg.AssetsDir,
		defaultSound: cfg.DefaultSound,
		systemSound:  config.DefaultSound,
		pidFile:      cfg.PIDFile,
	}
}

var _ runner.Player = (*Player)(nil)

// Play resolves the asset and starts the looping player. An empty asset plays the default sound.
func (p *Player) Play(ctx context.Context, asset string) (runner.Handle, error) {
	ctx = logger.WithName(ctx, "sound")

	file, err := p.resolve(asset)
	if err != nil {
		logger.WarnKV(ctx, "Asset unavailable, using default sound", "asset", asset, "error", err)

		file = p.nextFallback("")
	} else if !readable(file) {
		logger.WarnKV(ctx, "Default sound unavailable, using system sound", "file", file)

		file = p.nextFallback(file)
	}

	if file == "" {
		return nil, fmt.Errorf("fallback sounds %q: %w", p.fallbacks(), ErrNoSound)
	}

	if _, err = exec.LookPath(p.command); err != nil {
		return nil, fmt.Errorf("find player %q: %w", p.command, err)
	}

	loopCtx, cancel := context.WithCancel(ctx)

	playback := &Playback{
		player: p,
		cancel: cancel,
		done:   make(chan struct{}),
		file:   file,
	}

	go playback.loop(loopCtx)

	logger.InfoKV(ctx, "Sound started", "file", file)

	return playback, nil
}

// resolve maps an "assets/..." reference to a readable file under the assets directory.
func (p *Player) resolve(asset string) (string, error) {
	if asset == "" {
		return p.defaultSound, nil
	}

	root, err := filepath.Abs(p.assetsDir)
	if err != nil {
		return "", fmt.Errorf("resolve assets directory: %w", err)
	}

	file := filepath.Join(root, filepath.FromSlash(asset))

	rel, err := filepath.Rel(root, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", asset, errOutsideAssets)
	}

	if !readable(file) {
		return "", fmt.Errorf("%q: %w", asset, os.ErrNotExist)
	}

	return file, nil
}

// fallbacks lists the fallback sounds in the order they are tried.
func (p *Player) fallbacks() []string {
	chain := make([]string, 0, 2)

	for _, file := range []string{p.defaultSound, p.systemSound} {
		if file != "" && !slices.Contains(chain, file) {
			chain = append(chain, file)
		}
	}

	return chain
}

// nextFallback returns the first readable fallback after file, empty when none is left.
// A file outside the chain starts from the first fallback.
func (p *Player) nextFallback(file string) string {
	chain := p.fallbacks()

	if i := slices.Index(chain, file); i >= 0 {
		chain = chain[i+1:]
	}

	for _, candidate := range chain {
		if readable(candidate) {
			return candidate
		}
	}

	return ""
}

// readable reports whether the path is a regular file that can be opened.
func readable(path string) bool {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return false
	}

	defer f.Close()

	info, err := f.Stat()

	return err == nil && info.Mode().IsRegular()
}

// Playback is a running sound loop.
type Playback struct {
	// player holds the command configuration.
	player *Player
	// cancel stops the loop and kills the current process.
	cancel context.CancelFunc
	// done is closed when the loop exits.
	done chan struct{}
	// mu protects file.
	mu sync.Mutex
	// file is the sound currently being played.
	file string
}

// File returns the sound currently being played.
func (pb *Playback) File() string {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	return pb.file
}

// Playing reports whether the loop is still running. It turns false once the loop gives up.
func (pb *Playback) Playing() bool {
	select {
	case <-pb.done:
		return false
	default:
		return true
	}
}

// Release stops playback and waits for the player to exit.
func (pb *Playback) Release(ctx context.Context) error {
	pb.cancel()

	wait := time.NewTimer(releaseTimeout)
	defer wait.Stop()

	select {
	case <-pb.done:
		return nil
	case <-wait.C:
		return errReleaseTimeout
	case <-ctx.Done():
		return fmt.Errorf("wait for player: %w", ctx.Err())
	}
}

// loop restarts the player each time the sound ends until cancelled.
func (pb *Playback) loop(ctx context.Context) {
	defer close(pb.done)
	defer pb.player.clearPID(ctx)

	defaultFailures := 0

	for ctx.Err() == nil {
		file := pb.File()
		started := time.Now()

		err := pb.player.runOnce(ctx, file)
		if ctx.Err() != nil {
			return
		}

		if err == nil {
			defaultFailures = 0

			// A player returning instantly would otherwise spin.
			if time.Since(started) < retryDelay {
				sleep(ctx, retryDelay)
			}

			continue
		}

		if next := pb.player.nextFallback(file); next != "" {
			logger.WarnKV(ctx, "Player failed, falling back", "file", file, "next", next, "error", err)

			pb.mu.Lock()
			pb.file = next
			pb.mu.Unlock()

			defaultFailures = 0

			continue
		}

		defaultFailures++
		if defaultFailures >= maxDefaultFailures {
			logger.ErrorKV(ctx, "Fallback sounds keep failing, giving up", "file", file, "error", err)

			return
		}

		sleep(ctx, retryDelay)
	}
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// runOnce plays the file to completion.
func (p *Player) runOnce(ctx context.Context, file string) error {
	args := append(append([]string(nil), p.args...), file)

	//nolint:gosec // The player command comes from the operator's configuration.
	cmd := exec.CommandContext(ctx, p.command, args...)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start player: %w", err)
	}

	p.writePID(ctx, cmd.Process.Pid)

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("player exited: %w", err)
	}

	return nil
}

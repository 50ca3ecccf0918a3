// Package procman finds running processes by name and signals them.
package procman

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"toolbox/internal/logging"
)

// ErrNoProcessesFound is returned when no process matches a name.
var ErrNoProcessesFound = errors.New("procman: no matching processes found")

// DefaultSignal is sent by KillAllByName when no signal is given.
const DefaultSignal = syscall.SIGINT

// Process describes a running process.
type Process struct {
	PID      int32
	Name     string
	Username string
	Created  time.Time
}

// Source enumerates and signals processes.
type Source interface {
	List(ctx context.Context) ([]Process, error)
	Signal(ctx context.Context, pid int32, sig syscall.Signal) error
}

// SystemSource reads the host process table.
type SystemSource struct{}

// List returns every process whose name can be read. Processes that exit
// mid-scan are skipped.
func (SystemSource) List(ctx context.Context) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		info := Process{PID: p.Pid, Name: name}
		if user, err := p.UsernameWithContext(ctx); err == nil {
			info.Username = user
		}
		if ms, err := p.CreateTimeWithContext(ctx); err == nil {
			info.Created = time.UnixMilli(ms)
		}
		out = append(out, info)
	}
	return out, nil
}

// Signal sends sig to pid.
func (SystemSource) Signal(ctx context.Context, pid int32, sig syscall.Signal) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return err
	}
	return p.SendSignalWithContext(ctx, sig)
}

// Manager runs lookups against a Source.
type Manager struct {
	src Source
}

// NewManager returns a Manager over src; nil means SystemSource.
func NewManager(src Source) *Manager {
	if src == nil {
		src = SystemSource{}
	}
	return &Manager{src: src}
}

// FindAllByName returns processes whose name contains name, ordered by PID.
func (m *Manager) FindAllByName(ctx context.Context, name string, caseSensitive bool) ([]Process, error) {
	if name == "" {
		return nil, errors.New("procman: empty process name")
	}
	all, err := m.src.List(ctx)
	if err != nil {
		return nil, err
	}

	needle := name
	if !caseSensitive {
		needle = strings.ToLower(name)
	}
	var found []Process
	for _, p := range all {
		hay := p.Name
		if !caseSensitive {
			hay = strings.ToLower(hay)
		}
		if strings.Contains(hay, needle) {
			found = append(found, p)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].PID < found[j].PID })

	logging.ProcessDebug("found %d processes matching %q", len(found), name)
	return found, nil
}

// KillAll sends sig to each process and joins the failures.
func (m *Manager) KillAll(ctx context.Context, procs []Process, sig syscall.Signal) error {
	var errs []error
	for _, p := range procs {
		if err := m.src.Signal(ctx, p.PID, sig); err != nil {
			logging.ProcessWarn("signal %v to %d (%s) failed: %v", sig, p.PID, p.Name, err)
			errs = append(errs, fmt.Errorf("pid %d (%s): %w", p.PID, p.Name, err))
			continue
		}
		logging.Process("sent %v to %d (%s)", sig, p.PID, p.Name)
	}
	return errors.Join(errs...)
}

// KillAllByName signals every process matching name except the caller and
// returns the processes that were targeted.
func (m *Manager) KillAllByName(ctx context.Context, name string, caseSensitive bool, sig syscall.Signal) ([]Process, error) {
	found, err := m.FindAllByName(ctx, name, caseSensitive)
	if err != nil {
		return nil, err
	}
	self := int32(os.Getpid())
	targets := found[:0]
	for _, p := range found {
		if p.PID != self {
			targets = append(targets, p)
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoProcessesFound, name)
	}
	return targets, m.KillAll(ctx, targets, sig)
}

var defaultManager = NewManager(nil)

// FindAllByName searches the host process table.
func FindAllByName(ctx context.Context, name string, caseSensitive bool) ([]Process, error) {
	return defaultManager.FindAllByName(ctx, name, caseSensitive)
}

// KillAll signals procs on the host.
func KillAll(ctx context.Context, procs []Process, sig syscall.Signal) error {
	return defaultManager.KillAll(ctx, procs, sig)
}

// KillAllByName signals every matching host process except the caller.
func KillAllByName(ctx context.Context, name string, caseSensitive bool, sig syscall.Signal) ([]Process, error) {
	return defaultManager.KillAllByName(ctx, name, caseSensitive, sig)
}

package procman

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	procs   []Process
	failPID int32
	sent    map[int32]syscall.Signal
}

func (f *fakeSource) List(context.Context) ([]Process, error) {
	return f.procs, nil
}

func (f *fakeSource) Signal(_ context.Context, pid int32, sig syscall.Signal) error {
	if pid == f.failPID {
		return errors.New("operation not permitted")
	}
	if f.sent == nil {
		f.sent = make(map[int32]syscall.Signal)
	}
	f.sent[pid] = sig
	return nil
}

func newFake() *fakeSource {
	return &fakeSource{procs: []Process{
		{PID: 30, Name: "Firefox"},
		{PID: 10, Name: "firefox-bin"},
		{PID: 20, Name: "bash"},
		{PID: int32(os.Getpid()), Name: "firefox-test"},
	}}
}

func TestFindAllByName(t *testing.T) {
	m := NewManager(newFake())

	found, err := m.FindAllByName(context.Background(), "FIREFOX", false)
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, int32(10), found[0].PID)

	found, err = m.FindAllByName(context.Background(), "Firefox", true)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int32(30), found[0].PID)

	found, err = m.FindAllByName(context.Background(), "zsh", false)
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = m.FindAllByName(context.Background(), "", false)
	assert.Error(t, err)
}

func TestKillAllByNameSkipsSelf(t *testing.T) {
	src := newFake()
	m := NewManager(src)

	killed, err := m.KillAllByName(context.Background(), "firefox", false, DefaultSignal)
	require.NoError(t, err)
	assert.Len(t, killed, 2)
	assert.Equal(t, map[int32]syscall.Signal{10: syscall.SIGINT, 30: syscall.SIGINT}, src.sent)
}

func TestKillAllByNameNoMatch(t *testing.T) {
	m := NewManager(newFake())
	_, err := m.KillAllByName(context.Background(), "chrome", false, DefaultSignal)
	assert.ErrorIs(t, err, ErrNoProcessesFound)
}

func TestKillAllAggregatesFailures(t *testing.T) {
	src := newFake()
	src.failPID = 10
	m := NewManager(src)

	err := m.KillAll(context.Background(), []Process{{PID: 10, Name: "a"}, {PID: 20, Name: "b"}}, syscall.SIGTERM)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pid 10 (a)")
	assert.Equal(t, syscall.SIGTERM, src.sent[20])
}

func TestSystemSourceFindsSelf(t *testing.T) {
	procs, err := SystemSource{}.List(context.Background())
	if err != nil {
		t.Skipf("process table unavailable: %v", err)
	}
	self := int32(os.Getpid())
	for _, p := range procs {
		if p.PID == self {
			assert.NotEmpty(t, p.Name)
			return
		}
	}
	t.Skip("own process not visible in process table")
}

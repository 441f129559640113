package daemon

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Supervisor keeps a single child process running until its context is
// canceled, restarting it after startDelay whenever it exits.
type Supervisor struct {
	name       string
	path       string
	args       []string
	env        []string
	startDelay time.Duration
	pid        atomic.Int32
}

func NewSupervisor(name, path string, args, env []string) *Supervisor {
	return &Supervisor{
		name:       name,
		path:       path,
		args:       args,
		env:        env,
		startDelay: 5 * time.Second,
	}
}

// Run blocks until ctx is canceled.
func (s *Supervisor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.startDelay):
		}

		log.Infof("starting %s", s.name)
		cmd := exec.CommandContext(ctx, s.path, s.args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if len(s.env) > 0 {
			cmd.Env = append(os.Environ(), s.env...)
		}

		if err := cmd.Start(); err != nil {
			log.Errorf("failed to start %s: %v", s.name, err)
			continue
		}
		s.pid.Store(int32(cmd.Process.Pid))

		err := cmd.Wait()
		s.pid.Store(0)
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			log.Warnf("%s exited: %v", s.name, err)
		}
	}
}

// Reload asks the running child to re-read its config via SIGHUP.
func (s *Supervisor) Reload() error {
	pid := s.pid.Load()
	if pid == 0 {
		return fmt.Errorf("%s is not running", s.name)
	}
	return unix.Kill(int(pid), unix.SIGHUP)
}

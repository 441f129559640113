package daemon

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/altnet-labs/vpsnetd/config"
	"github.com/altnet-labs/vpsnetd/netsync"
	"github.com/altnet-labs/vpsnetd/rendering"
	"github.com/altnet-labs/vpsnetd/utils"
)

// Options configures a Daemon.
type Options struct {
	// ConfigPath is re-read on SIGHUP.
	ConfigPath  string
	TemplateDir string

	KeaPath   string
	RadvdPath string

	// Rendered config destinations. Temp files are used when empty.
	KeaConfPath   string
	RadvdConfPath string

	// Interval between reconcile passes.
	Interval time.Duration
	// Settle is how long to wait after a change before SIGHUPing the
	// children, so kea/radvd pick up interfaces that just appeared.
	Settle time.Duration
}

// Daemon reconciles kernel network state with the configured guest
// layout and keeps the kea and radvd processes fed and running.
type Daemon struct {
	opts     Options
	renderer *rendering.Renderer

	mu  sync.Mutex
	cfg *config.Config

	kea   *Supervisor
	radvd *Supervisor

	keaConf   string
	radvdConf string
	tempConfs []string
}

func New(cfg *config.Config, opts Options) (*Daemon, error) {
	renderer, err := rendering.New(opts.TemplateDir)
	if err != nil {
		return nil, err
	}

	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.Settle <= 0 {
		opts.Settle = 10 * time.Second
	}

	return &Daemon{opts: opts, renderer: renderer, cfg: cfg}, nil
}

// Run blocks until ctx is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.prepareConfFiles(); err != nil {
		return err
	}
	defer d.removeTempConfs()

	if _, err := d.reconcile(true); err != nil {
		return errors.Wrap(err, "initial reconcile failed")
	}

	d.kea = NewSupervisor("kea", d.opts.KeaPath,
		[]string{"-c", d.keaConf}, []string{"KEA_PIDFILE_DIR=/run"})
	d.radvd = NewSupervisor("radvd", d.opts.RadvdPath,
		[]string{"--nodaemon", "--logmethod=stderr", "-C", d.radvdConf}, nil)

	go d.kea.Run(ctx)
	go d.radvd.Run(ctx)
	go d.reloadOnHUP(ctx)

	ticker := time.NewTicker(d.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		changed, err := d.reconcile(false)
		if err != nil {
			log.Errorf("reconcile failed: %v", err)
			continue
		}
		if !changed {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.opts.Settle):
		}
		if err := d.kea.Reload(); err != nil {
			log.Warnf("failed to reload kea: %v", err)
		}
		if err := d.radvd.Reload(); err != nil {
			log.Warnf("failed to reload radvd: %v", err)
		}
	}
}

// reconcile converges kernel state and, when anything changed (or on
// the first pass), rewrites the kea and radvd configs.
func (d *Daemon) reconcile(first bool) (bool, error) {
	d.mu.Lock()
	cfg := d.cfg
	d.mu.Unlock()

	state, err := netsync.Read(int(cfg.RTProto))
	if err != nil {
		return false, err
	}
	parent, err := netsync.LinkIndexByName(cfg.Interface)
	if err != nil {
		return false, err
	}

	actions, ifaces := netsync.Plan(cfg.VPS, state)
	if len(actions) == 0 && !first {
		return false, nil
	}

	log.Infof("updating interfaces (%d changes)", len(actions))
	for _, a := range actions {
		log.Debugf("  %s", a)
	}
	if err := netsync.Apply(int(cfg.RTProto), parent, actions); err != nil {
		return false, err
	}

	kea, err := d.renderer.Kea(ifaces)
	if err != nil {
		return false, err
	}
	if err := utils.CreateFile(d.keaConf, string(kea)); err != nil {
		return false, errors.Wrap(err, "failed to write kea config")
	}

	radvd, err := d.renderer.Radvd(ifaces)
	if err != nil {
		return false, err
	}
	if err := utils.CreateFile(d.radvdConf, string(radvd)); err != nil {
		return false, errors.Wrap(err, "failed to write radvd config")
	}

	return true, nil
}

func (d *Daemon) reloadOnHUP(ctx context.Context) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, unix.SIGHUP)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
		}

		cfg, err := config.Load(d.opts.ConfigPath)
		if err != nil {
			log.Errorf("config reload failed, keeping previous config: %v", err)
			continue
		}
		d.mu.Lock()
		d.cfg = cfg
		d.mu.Unlock()
		log.Info("config reloaded")
	}
}

func (d *Daemon) prepareConfFiles() error {
	var err error
	if d.keaConf, err = d.confFile(d.opts.KeaConfPath, "kea"); err != nil {
		return err
	}
	d.radvdConf, err = d.confFile(d.opts.RadvdConfPath, "radvd")
	return err
}

func (d *Daemon) confFile(path, prefix string) (string, error) {
	if path != "" {
		return path, nil
	}
	f, err := os.CreateTemp("", prefix)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create %s config file", prefix)
	}
	defer f.Close()
	d.tempConfs = append(d.tempConfs, f.Name())
	return f.Name(), nil
}

func (d *Daemon) removeTempConfs() {
	for _, f := range d.tempConfs {
		if err := os.Remove(f); err != nil {
			log.Debugf("failed to remove %s: %v", f, err)
		}
	}
}

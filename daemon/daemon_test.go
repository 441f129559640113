package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/altnet-labs/vpsnetd/config"
)

func TestNewAppliesDefaults(t *testing.T) {
	d, err := New(&config.Config{Interface: "eth0"}, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.opts.Interval != 5*time.Second {
		t.Errorf("interval default: got %v", d.opts.Interval)
	}
	if d.opts.Settle != 10*time.Second {
		t.Errorf("settle default: got %v", d.opts.Settle)
	}
}

func TestConfFilePaths(t *testing.T) {
	dir := t.TempDir()
	fixed := filepath.Join(dir, "kea.conf")

	d, err := New(&config.Config{Interface: "eth0"}, Options{KeaConfPath: fixed})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.prepareConfFiles(); err != nil {
		t.Fatalf("prepareConfFiles: %v", err)
	}

	if d.keaConf != fixed {
		t.Errorf("fixed path not honored: got %s", d.keaConf)
	}
	if d.radvdConf == "" {
		t.Fatal("no radvd temp file created")
	}
	if _, err := os.Stat(d.radvdConf); err != nil {
		t.Errorf("radvd temp file missing: %v", err)
	}

	d.removeTempConfs()
	if _, err := os.Stat(d.radvdConf); !os.IsNotExist(err) {
		t.Errorf("radvd temp file not cleaned up")
	}
	// the fixed path is owned by the operator and must survive cleanup
	if len(d.tempConfs) != 1 {
		t.Errorf("expected only the radvd conf to be temporary, got %v", d.tempConfs)
	}
}

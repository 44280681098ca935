// Package backup copies the SQLite database file to a timestamped artifact
// and prunes old copies. It is best-effort by contract: Run reports a
// boolean, logs the detail, and never panics across its boundary.
package backup

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	filePrefix = "kasir_backup_"
	fileSuffix = ".db"
)

type Manager struct {
	Source string // primary database file
	Dir    string // backup directory, created on demand
	Keep   int    // retained copies, most recent first

	events chan struct{}
	now    func() time.Time
}

func NewManager(source, dir string, keep int) *Manager {
	if keep <= 0 {
		keep = 10
	}
	return &Manager{
		Source: source,
		Dir:    dir,
		Keep:   keep,
		events: make(chan struct{}, 1),
		now:    time.Now,
	}
}

// Run performs one backup: copy, size verification, then retention pruning.
// Every failure path is logged and collapsed into the returned boolean.
func (m *Manager) Run() bool {
	src, err := os.Stat(m.Source)
	if err != nil {
		log.Printf("[Backup] database tidak ditemukan: %s", m.Source)
		return false
	}
	if src.Size() == 0 {
		log.Println("[Backup] database kosong, backup dibatalkan")
		return false
	}
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		log.Printf("[Backup] gagal membuat folder backup: %v", err)
		return false
	}

	name := fmt.Sprintf("%s%s%s", filePrefix, m.now().Format("20060102_150405"), fileSuffix)
	dest := filepath.Join(m.Dir, name)
	if err := copyFile(m.Source, dest); err != nil {
		log.Printf("[Backup] gagal menyalin database: %v", err)
		return false
	}

	copied, err := os.Stat(dest)
	if err != nil || copied.Size() != src.Size() {
		log.Println("[Backup] ukuran backup tidak sesuai, file dihapus")
		_ = os.Remove(dest)
		return false
	}
	log.Printf("[Backup] %s (%.1f KB)", dest, float64(copied.Size())/1024)

	m.prune()
	return true
}

// prune deletes everything beyond the Keep most recent backups. The
// timestamp format is fixed-width, so lexicographic order is chronological.
func (m *Manager) prune() {
	entries, err := os.ReadDir(m.Dir)
	if err != nil {
		log.Printf("[Backup] gagal membaca folder backup: %v", err)
		return
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), filePrefix) && strings.HasSuffix(e.Name(), fileSuffix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) <= m.Keep {
		return
	}
	for _, old := range names[:len(names)-m.Keep] {
		if err := os.Remove(filepath.Join(m.Dir, old)); err != nil {
			log.Printf("[Backup] gagal hapus backup lama %s: %v", old, err)
			continue
		}
		log.Printf("[Backup] hapus backup lama: %s", old)
	}
}

// Trigger requests a backup without blocking the caller; coalesces while a
// previous request is still pending.
func (m *Manager) Trigger() {
	select {
	case m.events <- struct{}{}:
	default:
	}
}

// Start drains trigger events on a background goroutine until ctx is done,
// keeping the copy off the checkout request path.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.events:
				m.Run()
			}
		}
	}()
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := in.Close(); cerr != nil {
			_ = cerr
		}
	}()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

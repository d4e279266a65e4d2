package objects

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FilterStats keeps the pools whose key contains any include substring.
// No includes keeps everything. The result is sorted by key.
func FilterStats(stats []PoolStats, includes ...string) []PoolStats {
	out := make([]PoolStats, 0, len(stats))
	for _, s := range stats {
		if matchesAny(s.Key, includes) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func matchesAny(key string, includes []string) bool {
	if len(includes) == 0 {
		return true
	}
	for _, inc := range includes {
		if inc != "" && strings.Contains(key, inc) {
			return true
		}
	}
	return false
}

// WriteReport writes one line per pool:
//
//	Road/Segment/Medium--- : InitialCnt:__4 | CurrentCnt:__1 | MaxInPool:__4 | Alloc:__6 | Delivered:_12 | Recycled:__9
func WriteReport(w io.Writer, stats []PoolStats, includes ...string) error {
	rows := FilterStats(stats, includes...)
	width := 0
	for _, s := range rows {
		if len(s.Key) > width {
			width = len(s.Key)
		}
	}

	p := message.NewPrinter(language.English)
	for _, s := range rows {
		line := fmt.Sprintf("%s : InitialCnt:%s | CurrentCnt:%s | MaxInPool:%s | Alloc:%s | Delivered:%s | Recycled:%s\n",
			s.Key+strings.Repeat("-", width-len(s.Key)),
			pad(p, s.InitialCount),
			pad(p, s.CurrentCount),
			pad(p, s.HighWaterMark),
			pad(p, s.TotalAllocated),
			pad(p, s.TotalDelivered),
			pad(p, s.TotalRecycled),
		)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// DumpReport writes the report to a timestamped file in dir and returns its path.
func DumpReport(dir string, now time.Time, stats []PoolStats, includes ...string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dump dir: %w", err)
	}
	path := filepath.Join(dir, "ObjectPool-"+now.Format("20060102-150405")+".txt")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create dump %s: %w", path, err)
	}
	if err := WriteReport(f, stats, includes...); err != nil {
		f.Close()
		return "", fmt.Errorf("write dump %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close dump %s: %w", path, err)
	}
	return path, nil
}

func pad(p *message.Printer, n int) string {
	s := p.Sprintf("%d", n)
	if len(s) < 3 {
		s = strings.Repeat("_", 3-len(s)) + s
	}
	return s
}

package backup

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joshuapare/mcpkit/pkg/types"
)

// DefaultPruneAge is how far back pruning reaches when the caller gives
// no age.
const DefaultPruneAge = 30 * 24 * time.Hour

// ParseAge parses a retention age such as "30d", "2w", "24h" or "60m". A
// bare number is taken as days.
func ParseAge(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty duration (use forms like 30d, 1w, 24h, 60m)")
	}

	unit := 24 * time.Hour
	num := s
	switch s[len(s)-1] {
	case 'd':
		num = s[:len(s)-1]
	case 'w':
		unit = 7 * 24 * time.Hour
		num = s[:len(s)-1]
	case 'h':
		unit = time.Hour
		num = s[:len(s)-1]
	case 'm':
		unit = time.Minute
		num = s[:len(s)-1]
	}
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid duration %q (use forms like 30d, 1w, 24h, 60m)", s)
	}
	return time.Duration(n) * unit, nil
}

// PruneOlderThan removes every snapshot created before now-age and
// returns the removed entries, oldest last.
func (s *Store) PruneOlderThan(age time.Duration) ([]Entry, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	cutoff := s.now().UTC().Add(-age)

	var removed []Entry
	for _, e := range entries {
		if e.Metadata.CreatedAt.Before(cutoff) {
			if err := os.Remove(e.Path); err != nil {
				return removed, &types.Error{Kind: types.ErrKindBackup, Msg: fmt.Sprintf("remove snapshot %s", e.Path), Err: err}
			}
			removed = append(removed, e)
		}
	}
	return removed, nil
}

// PruneKeep keeps the n newest snapshots and removes the rest.
func (s *Store) PruneKeep(n int) ([]Entry, error) {
	if n < 0 {
		n = 0
	}
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(entries) <= n {
		return nil, nil
	}

	var removed []Entry
	for _, e := range entries[n:] {
		if err := os.Remove(e.Path); err != nil {
			return removed, &types.Error{Kind: types.ErrKindBackup, Msg: fmt.Sprintf("remove snapshot %s", e.Path), Err: err}
		}
		removed = append(removed, e)
	}
	return removed, nil
}

// AgeString renders how long ago t was in coarse human terms.
func AgeString(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%d day(s) ago", int(d.Hours()/24))
	case d >= time.Hour:
		return fmt.Sprintf("%d hour(s) ago", int(d.Hours()))
	case d >= time.Minute:
		return fmt.Sprintf("%d minute(s) ago", int(d.Minutes()))
	default:
		return "just now"
	}
}

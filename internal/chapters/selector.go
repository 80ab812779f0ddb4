package chapters

import (
	"fmt"
	"strconv"
	"strings"
)

// Jobs numbers every discovered chapter URL in discovery order.
func Jobs(urls []string) []Job {
	out := make([]Job, len(urls))
	for i, u := range urls {
		out[i] = Job{Index: i + 1, URL: u, Total: len(urls)}
	}

	return out
}

// Filter keeps the jobs named by a range ("5-12") or a list ("1,3,5").
// A range wins over a list; with neither, every job is kept.
func Filter(all []Job, rng, list string) []Job {
	if rng != "" {
		return FilterRange(all, rng)
	}
	if list != "" {
		return FilterList(all, list)
	}

	return all
}

// FilterRange keeps jobs start..end (1-based, inclusive). An end past the
// last chapter is clamped; a malformed range keeps nothing.
func FilterRange(all []Job, rng string) []Job {
	start, end, err := parseRange(rng)
	if err != nil || start > len(all) {
		return nil
	}

	return all[start-1 : min(end, len(all))]
}

func FilterList(all []Job, list string) []Job {
	var out []Job
	seen := map[int]bool{}

	for p := range strings.SplitSeq(list, ",") {
		idx, err := atoi(p)
		if err != nil || idx <= 0 || idx > len(all) || seen[idx] {
			continue
		}

		seen[idx] = true
		out = append(out, all[idx-1])
	}

	return out
}

// ValidateSelection rejects range and list values Filter could never match,
// so typos surface before any network work starts.
func ValidateSelection(rng, list string) error {
	if rng != "" {
		if _, _, err := parseRange(rng); err != nil {
			return err
		}
	}

	if list != "" {
		for p := range strings.SplitSeq(list, ",") {
			if idx, err := atoi(p); err != nil || idx <= 0 {
				return fmt.Errorf("invalid chapter %q in list %q", strings.TrimSpace(p), list)
			}
		}
	}

	return nil
}

func parseRange(rng string) (start, end int, err error) {
	parts := strings.Split(rng, "-")
	if len(parts) == 2 {
		s, err1 := atoi(parts[0])
		e, err2 := atoi(parts[1])
		if err1 == nil && err2 == nil && s > 0 && s <= e {
			return s, e, nil
		}
	}

	return 0, 0, fmt.Errorf("invalid range %q (want start-end, e.g. 5-12)", rng)
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

package gitstate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/doeshing/gitflow-ai/internal/domain"
)

// statusReport is the parsed form of `git status --porcelain=v2 --branch -z`.
type statusReport struct {
	oid        string
	head       string
	detached   bool
	initial    bool
	upstream   string
	ahead      int
	behind     int
	staged     []domain.FileChange
	unstaged   []domain.FileChange
	untracked  []string
	conflicted []string
}

func parseStatus(raw string) (statusReport, error) {
	var report statusReport
	records := strings.Split(raw, "\x00")

	for i := 0; i < len(records); i++ {
		record := records[i]
		if record == "" {
			continue
		}
		switch record[0] {
		case '#':
			if err := report.parseHeader(record); err != nil {
				return statusReport{}, err
			}
		case '1':
			parts := strings.SplitN(record, " ", 9)
			if len(parts) != 9 {
				return statusReport{}, fmt.Errorf("malformed status entry %q", record)
			}
			report.addChange(parts[1], parts[8], "")
		case '2':
			parts := strings.SplitN(record, " ", 10)
			if len(parts) != 10 || i+1 >= len(records) {
				return statusReport{}, fmt.Errorf("malformed rename entry %q", record)
			}
			i++
			report.addChange(parts[1], parts[9], records[i])
		case 'u':
			parts := strings.SplitN(record, " ", 11)
			if len(parts) != 11 {
				return statusReport{}, fmt.Errorf("malformed unmerged entry %q", record)
			}
			report.conflicted = append(report.conflicted, parts[10])
		case '?':
			report.untracked = append(report.untracked, strings.TrimPrefix(record, "? "))
		case '!':
			// ignored files are never requested
		default:
			return statusReport{}, fmt.Errorf("unknown status record %q", record)
		}
	}
	return report, nil
}

func (r *statusReport) parseHeader(record string) error {
	fields := strings.Fields(record)
	if len(fields) < 3 {
		return nil
	}
	switch fields[1] {
	case "branch.oid":
		r.oid = fields[2]
		r.initial = fields[2] == "(initial)"
	case "branch.head":
		r.head = fields[2]
		r.detached = fields[2] == "(detached)"
	case "branch.upstream":
		r.upstream = fields[2]
	case "branch.ab":
		if len(fields) < 4 {
			return fmt.Errorf("malformed ahead/behind header %q", record)
		}
		ahead, err := strconv.Atoi(strings.TrimPrefix(fields[2], "+"))
		if err != nil {
			return fmt.Errorf("parse ahead count: %w", err)
		}
		behind, err := strconv.Atoi(strings.TrimPrefix(fields[3], "-"))
		if err != nil {
			return fmt.Errorf("parse behind count: %w", err)
		}
		r.ahead, r.behind = ahead, behind
	}
	return nil
}

func (r *statusReport) addChange(xy, path, origPath string) {
	if len(xy) != 2 {
		return
	}
	if kind, ok := changeKind(xy[0]); ok {
		r.staged = append(r.staged, newChange(path, kind, origPath))
	}
	if kind, ok := changeKind(xy[1]); ok {
		r.unstaged = append(r.unstaged, newChange(path, kind, origPath))
	}
}

func newChange(path string, kind domain.ChangeKind, origPath string) domain.FileChange {
	change := domain.FileChange{Path: path, Kind: kind}
	if kind == domain.ChangeRenamed || kind == domain.ChangeCopied {
		change.OrigPath = origPath
	}
	return change
}

func changeKind(code byte) (domain.ChangeKind, bool) {
	switch code {
	case 'M':
		return domain.ChangeModified, true
	case 'T':
		return domain.ChangeTypeChanged, true
	case 'A':
		return domain.ChangeAdded, true
	case 'D':
		return domain.ChangeDeleted, true
	case 'R':
		return domain.ChangeRenamed, true
	case 'C':
		return domain.ChangeCopied, true
	default:
		return "", false
	}
}

func (r statusReport) branchName() string {
	if r.detached {
		return domain.DetachedHeadName
	}
	return r.head
}

func (r statusReport) tracking() *domain.Tracking {
	if r.upstream == "" {
		return nil
	}
	return &domain.Tracking{Upstream: r.upstream, Ahead: r.ahead, Behind: r.behind}
}

func parseRemotes(raw string) []domain.Remote {
	var remotes []domain.Remote
	seen := map[string]bool{}
	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if len(fields) >= 3 && fields[2] != "(fetch)" {
			continue
		}
		if seen[fields[0]] {
			continue
		}
		seen[fields[0]] = true
		remotes = append(remotes, domain.Remote{Name: fields[0], URL: fields[1]})
	}
	return remotes
}

package model

import (
	"path/filepath"
	"strings"
)

// ChangeKind qualifies a change on a path
type ChangeKind string

// Change kinds, as displayed to the user
const (
	ChangeNew      ChangeKind = "new"
	ChangeModified ChangeKind = "modified"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeRenamed  ChangeKind = "renamed"
	ChangeCopied   ChangeKind = "copied"
	ChangeUnmerged ChangeKind = "unmerged"
)

// PathChange is a single change on some path of a checkout
type PathChange struct {
	Path string     `json:"path" yaml:"path"`
	From string     `json:"from,omitempty" yaml:"from,omitempty"`
	Kind ChangeKind `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// StatusReport is the source-control status of a component's checkout
type StatusReport struct {
	Head      string       `json:"head" yaml:"head"`
	Staged    []PathChange `json:"staged,omitempty" yaml:"staged,omitempty"`
	Unstaged  []PathChange `json:"unstaged,omitempty" yaml:"unstaged,omitempty"`
	Untracked []PathChange `json:"untracked,omitempty" yaml:"untracked,omitempty"`
}

// Clean tells if there is nothing to report
func (r StatusReport) Clean() bool {
	return len(r.Staged) == 0 && len(r.Unstaged) == 0 && len(r.Untracked) == 0
}

// Clone the report
func (r StatusReport) Clone() StatusReport {
	return StatusReport{
		Head:      r.Head,
		Staged:    append([]PathChange(nil), r.Staged...),
		Unstaged:  append([]PathChange(nil), r.Unstaged...),
		Untracked: append([]PathChange(nil), r.Untracked...),
	}
}

// SuppressUntrackedUnder removes untracked paths which fall under one of the given
// directories, relative to the checkout root. Such directories are owned by child components.
func (r *StatusReport) SuppressUntrackedUnder(dirs []string) {
	if len(dirs) == 0 {
		return
	}
	kept := r.Untracked[:0]
	for _, change := range r.Untracked {
		if !underAny(change.Path, dirs) {
			kept = append(kept, change)
		}
	}
	r.Untracked = kept
}

func underAny(path string, dirs []string) bool {
	p := filepath.ToSlash(filepath.Clean(path))
	for _, dir := range dirs {
		d := strings.TrimSuffix(filepath.ToSlash(filepath.Clean(dir)), "/")
		if d == "" || d == "." {
			continue
		}
		if p == d || strings.HasPrefix(p, d+"/") {
			return true
		}
	}
	return false
}

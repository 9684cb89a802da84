// Package dedupe groups fingerprinted files into duplicate sets.
package dedupe

import (
	"flackit/internal/fingerprint"
)

// DuplicateGroup is a set of files sharing one audio-content signature. Files
// appear in the order they were added. ExactSets partitions the group by
// exact-byte hash; members of one set are byte-for-byte identical, members of
// different sets hold the same audio inside different containers.
type DuplicateGroup struct {
	AudioSignature string     `json:"audio_signature"`
	Files          []string   `json:"files"`
	ExactSets      [][]string `json:"exact_sets"`
}

// Report is the outcome of one grouping pass. Unfingerprinted lists files
// whose identity could not be resolved; they never join a group.
type Report struct {
	Groups          []DuplicateGroup `json:"groups"`
	Unfingerprinted []string         `json:"unfingerprinted,omitempty"`
}

type member struct {
	path string
	hash string
}

type group struct {
	signature string
	members   []member
}

// Grouper accumulates fingerprints and emits duplicate groups. Insertion
// order is preserved everywhere: across groups, within a group, and within
// an exact set.
type Grouper struct {
	order   []*group
	byAudio map[string]*group
	failed  []string
}

// New returns an empty grouper.
func New() *Grouper {
	return &Grouper{byAudio: make(map[string]*group)}
}

// Add records a successfully fingerprinted file.
func (g *Grouper) Add(path string, fp fingerprint.Fingerprint) {
	key := fp.AudioHex()
	grp, ok := g.byAudio[key]
	if !ok {
		grp = &group{signature: key}
		g.byAudio[key] = grp
		g.order = append(g.order, grp)
	}
	grp.members = append(grp.members, member{path: path, hash: fp.ByteHex()})
}

// AddUnfingerprinted records a file whose identity could not be resolved.
func (g *Grouper) AddUnfingerprinted(path string) {
	g.failed = append(g.failed, path)
}

// Report returns the duplicate groups seen so far. Signatures held by a
// single file are not duplicates and are dropped.
func (g *Grouper) Report() Report {
	rep := Report{Unfingerprinted: g.failed}
	for _, grp := range g.order {
		if len(grp.members) < 2 {
			continue
		}
		dup := DuplicateGroup{AudioSignature: grp.signature}
		exact := make(map[string]int)
		for _, m := range grp.members {
			dup.Files = append(dup.Files, m.path)
			idx, ok := exact[m.hash]
			if !ok {
				idx = len(dup.ExactSets)
				exact[m.hash] = idx
				dup.ExactSets = append(dup.ExactSets, nil)
			}
			dup.ExactSets[idx] = append(dup.ExactSets[idx], m.path)
		}
		rep.Groups = append(rep.Groups, dup)
	}
	return rep
}

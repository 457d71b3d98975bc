// Package domain contains the core domain models for the build pipeline.
package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// BuildTarget identifies a logical deliverable requested by the caller.
type BuildTarget string

const (
	// TargetFrontend is the compiled and chunked UI bundle.
	TargetFrontend BuildTarget = "frontend"
	// TargetBackend is the packaged backend service source tree.
	TargetBackend BuildTarget = "backend"
	// TargetAIModels is the prepared AI model artifact set.
	TargetAIModels BuildTarget = "ai-models"
	// TargetContainer is the deployable container image set.
	TargetContainer BuildTarget = "container"
	// TargetAll expands to every other target.
	TargetAll BuildTarget = "all"
)

// allTargets is the canonical expansion order for TargetAll.
var allTargets = []BuildTarget{TargetFrontend, TargetBackend, TargetAIModels, TargetContainer}

// ParseTargets converts raw target names into BuildTargets.
// Unknown names are rejected; duplicates are collapsed.
func ParseTargets(names []string) ([]BuildTarget, error) {
	if len(names) == 0 {
		return nil, ErrNoTargetsSpecified
	}

	seen := make(map[BuildTarget]bool, len(names))
	targets := make([]BuildTarget, 0, len(names))
	for _, name := range names {
		t := BuildTarget(name)
		switch t {
		case TargetFrontend, TargetBackend, TargetAIModels, TargetContainer, TargetAll:
		default:
			return nil, zerr.With(ErrUnknownTarget, "target", name)
		}
		if !seen[t] {
			seen[t] = true
			targets = append(targets, t)
		}
	}
	return targets, nil
}

// ExpandTargets resolves TargetAll and returns the requested targets in
// canonical order. The result is stable for identical input sets.
func ExpandTargets(targets []BuildTarget) []BuildTarget {
	requested := make(map[BuildTarget]bool, len(targets))
	for _, t := range targets {
		if t == TargetAll {
			for _, all := range allTargets {
				requested[all] = true
			}
			continue
		}
		requested[t] = true
	}

	expanded := make([]BuildTarget, 0, len(requested))
	for _, t := range allTargets {
		if requested[t] {
			expanded = append(expanded, t)
		}
	}
	return expanded
}

// ContainsTarget reports whether target is present in targets.
func ContainsTarget(targets []BuildTarget, target BuildTarget) bool {
	return slices.Contains(targets, target)
}

// Package cache implements the content-addressable build result cache.
package cache

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/farm-framework/forge/internal/core/domain"
	"github.com/farm-framework/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

// Keyer derives deterministic cache keys for build tasks.
//
// A key digests the task's executor kind, sorted dependency list, canonical
// configuration serialization, and a snapshot digest per declared input. Two
// tasks with identical configuration and identical input snapshots produce
// identical keys; any difference in either produces a different key. Keys are
// stable across process restarts.
type Keyer struct {
	snapshotter ports.InputSnapshotter
}

// NewKeyer creates a new Keyer.
func NewKeyer(snapshotter ports.InputSnapshotter) *Keyer {
	return &Keyer{snapshotter: snapshotter}
}

// Key computes the cache key for a task.
func (k *Keyer) Key(task *domain.BuildTask) (string, error) {
	hasher := xxhash.New()

	k.hashTaskDefinition(task, hasher)

	if err := k.hashConfig(task, hasher); err != nil {
		return "", err
	}

	if err := k.hashInputs(task, hasher); err != nil {
		return "", err
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

// hashTaskDefinition hashes the executor kind and dependency list. The task
// name is deliberately excluded: two tasks with identical configuration and
// inputs must share a key regardless of how they are labeled.
func (k *Keyer) hashTaskDefinition(task *domain.BuildTask, hasher *xxhash.Digest) {
	_, _ = hasher.WriteString(task.Kind.String())
	_, _ = hasher.Write([]byte{0}) // Separator

	deps := make([]string, len(task.Dependencies))
	copy(deps, task.Dependencies)
	slices.Sort(deps)
	for _, dep := range deps {
		_, _ = hasher.WriteString(dep)
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0}) // Section separator
}

// hashConfig hashes the canonical serialization of the task configuration.
// encoding/json serializes struct fields in declaration order and sorts map
// keys, so equal configs always digest identically.
func (k *Keyer) hashConfig(task *domain.BuildTask, hasher *xxhash.Digest) error {
	data, err := json.Marshal(task.Config)
	if err != nil {
		return zerr.Wrap(err, "failed to serialize task config")
	}
	_, _ = hasher.Write(data)
	_, _ = hasher.Write([]byte{0})
	return nil
}

// hashInputs hashes a snapshot digest per declared input, in sorted path
// order. A missing input digests to a fixed marker so an input appearing
// later changes the key without making key computation itself fail.
func (k *Keyer) hashInputs(task *domain.BuildTask, hasher *xxhash.Digest) error {
	inputs := make([]string, len(task.Inputs))
	copy(inputs, task.Inputs)
	slices.Sort(inputs)

	for _, input := range inputs {
		_, _ = hasher.WriteString(input)
		_, _ = hasher.Write([]byte{0})

		digest, err := k.snapshotter.Snapshot(input)
		if err != nil {
			_, _ = hasher.WriteString("absent")
			_, _ = hasher.Write([]byte{0})
			continue
		}

		if err := binary.Write(hasher, binary.LittleEndian, digest); err != nil {
			return zerr.Wrap(err, "failed to write digest")
		}
	}
	return nil
}

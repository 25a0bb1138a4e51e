// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package workload converts a list of object descriptors into one of three
// ordered action streams (copier, note-taker, editor) that the simulator
// plays back against an allocator.
package workload

import (
	"math/rand"

	"github.com/eldipa/xoz/ingest"
)

// Mode selects which ordered action stream Synthesize produces.
type Mode int

const (
	Copier Mode = iota
	Notetaker
	Editor
)

// Action is one step of the workload: a creation or a deletion of one
// object. On re-insert the synthesizer mints a fresh ObjID, so the
// re-inserted object is a distinct entity from the one that was deleted;
// InsertGeneration counts how many times the original object's lineage has
// been re-inserted.
type Action struct {
	IsDelete         bool
	ObjID            int64
	InsertGeneration int
}

// Params configures a synthesizer pass.
type Params struct {
	// WindowW is the note-taker shuffle window width, in actions.
	WindowW int

	// DelProb and DelImgProb are the editor's per-action deletion
	// probabilities (image objects use DelImgProb), each clamped to
	// [0, 0.9] before use.
	DelProb    float64
	DelImgProb float64

	// ReinsertChgSzFactor (rf) bounds the random perturbation applied to
	// a re-inserted object's data_sz, as a fraction of BlockSize.
	ReinsertChgSzFactor float64
	BlockSize           int64

	Mode Mode

	// Reinsert enables the editor's re-insertion of deleted objects. If
	// false, a deletion is never followed by a re-insert action.
	Reinsert bool
}

// Synthesize builds the action stream for params.Mode from objects, using
// one *rand.Rand seeded from seed for every randomized pass, so the same
// seed, objects, and params always reproduce the same stream. It returns
// the stream together with a catalog of every object referenced by it,
// including the ones minted by the editor's re-insertions.
func Synthesize(objects []ingest.Object, seed int64, params Params) ([]Action, map[int64]ingest.Object) {
	rnd := rand.New(rand.NewSource(seed))

	catalog := make(map[int64]ingest.Object, len(objects))
	var nextID int64
	for _, o := range objects {
		catalog[o.ObjID] = o
		if o.ObjID >= nextID {
			nextID = o.ObjID + 1
		}
	}

	actions := copierActions(objects)
	if params.Mode == Copier {
		return actions, catalog
	}

	actions = notetakerActions(actions, params.WindowW, rnd)
	if params.Mode == Notetaker {
		return actions, catalog
	}

	actions = editorActions(actions, catalog, &nextID, rnd, params)
	return actions, catalog
}

func copierActions(objects []ingest.Object) []Action {
	actions := make([]Action, len(objects))
	for i, o := range objects {
		actions[i] = Action{ObjID: o.ObjID}
	}
	return actions
}

// notetakerActions shuffles overlapping windows of width windowW, starting
// a new window every windowW/2 actions, simulating the local re-ordering a
// note-taker's editor produces.
func notetakerActions(actions []Action, windowW int, rnd *rand.Rand) []Action {
	out := append([]Action(nil), actions...)
	if windowW < 2 {
		return out
	}

	step := windowW / 2
	for b := 0; b < len(out); b += step {
		end := b + windowW
		if end > len(out) {
			end = len(out)
		}

		window := out[b:end]
		rnd.Shuffle(len(window), func(i, j int) {
			window[i], window[j] = window[j], window[i]
		})
	}

	return out
}

func clampProb(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 0.9 {
		return 0.9
	}
	return p
}

// editorActions scans left-to-right and, with per-action probability,
// deletes an object at a random future position and optionally re-inserts
// a perturbed copy of it at a further random position.
func editorActions(actions []Action, catalog map[int64]ingest.Object, nextID *int64, rnd *rand.Rand, params Params) []Action {
	out := append([]Action(nil), actions...)
	gen := make(map[int64]int, len(catalog))
	delProb := clampProb(params.DelProb)
	delImgProb := clampProb(params.DelImgProb)

	for i := 0; i < len(out); i++ {
		act := out[i]
		if act.IsDelete {
			continue
		}

		obj, ok := catalog[act.ObjID]
		if !ok {
			continue
		}

		prob := delProb
		if obj.ObjType == ingest.Image {
			prob = delImgProb
		}

		if rnd.Float64() >= prob {
			continue
		}

		L := len(out)
		if L-i-2 < 1 {
			continue // no room for both a future delete and a reinsert position
		}
		delix := i + 1 + rnd.Intn(L-i-2)

		if L-delix-1 < 1 {
			continue // no room for a future re-insert position
		}
		reinsertix := delix + 1 + rnd.Intn(L-delix-1)

		out = insertAt(out, delix, Action{IsDelete: true, ObjID: act.ObjID})

		if !params.Reinsert {
			continue
		}

		newGen := gen[act.ObjID] + 1
		newObj := obj
		newObj.ObjID = *nextID
		*nextID++
		newObj.DataSz = perturbDataSz(obj.DataSz, params.ReinsertChgSzFactor, params.BlockSize, rnd)

		catalog[newObj.ObjID] = newObj
		gen[newObj.ObjID] = newGen

		out = insertAt(out, reinsertix+1, Action{ObjID: newObj.ObjID, InsertGeneration: newGen})
	}

	return out
}

// perturbDataSz jitters dataSz by a uniformly random amount in
// [-rf*blockSize, rf*blockSize], floored at 1 byte.
func perturbDataSz(dataSz int64, rf float64, blockSize int64, rnd *rand.Rand) int64 {
	span := rf * float64(blockSize)
	delta := int64((rnd.Float64()*2 - 1) * span)

	newSz := dataSz + delta
	if newSz < 1 {
		newSz = 1
	}
	return newSz
}

func insertAt(s []Action, pos int, a Action) []Action {
	s = append(s, Action{})
	copy(s[pos+1:], s[pos:])
	s[pos] = a
	return s
}

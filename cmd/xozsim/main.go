// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command xozsim drives the block-space allocator family against a
// workload synthesized from a real object feed, and reports fragmentation
// statistics (and, optionally, fragmentation maps) for the run.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/eldipa/xoz/ingest"
	"github.com/eldipa/xoz/internal/blkspace"
	"github.com/eldipa/xoz/simulator"
	"github.com/eldipa/xoz/stats"
	"github.com/eldipa/xoz/workload"
)

const blockSize = 512

type showMapFlags []string

func (s *showMapFlags) String() string { return fmt.Sprint([]string(*s)) }

func (s *showMapFlags) Set(v string) error {
	switch v {
	case "objs", "types", "pages":
		*s = append(*s, v)
		return nil
	default:
		return fmt.Errorf("unknown --show-map value %q (want objs, types or pages)", v)
	}
}

func main() {
	var (
		seed             = flag.Int64("seed", 31416, "random seed")
		rerunUntilBug    = flag.Bool("rerun-until-bug", false, "keep re-running with new seeds until an invariant fails")
		noteTakerBackW   = flag.Int("w", 12, "note-taker shuffle window width")
		dp               = flag.Float64("dp", 0.8, "probability to delete a draw")
		idp              = flag.Float64("idp", 0.08, "probability to delete an image draw")
		rf               = flag.Float64("rf", 0.25, "reinsert size-change factor, as a fraction of block size")
		allocatorName    = flag.String("a", "kr", "allocator: mono, kr, halving-kr, linear-kr")
		sample           = flag.String("s", "ph-01", "sample id to filter the object feed by")
		coalescing       = flag.Bool("coalescing", false, "enable free-list coalescing in the KR allocator")
		writerModel      = flag.String("m", "editor", "writer model: copier, notetaker, editor")
		noReinsert       = flag.Bool("no-reinsert", false, "disable re-insertion of deleted objects in the editor model")
		contract         = flag.Bool("contract", true, "contract the backing space after each dealloc")
		trace            = flag.Bool("trace", false, "emit a trace line per simulator event")
		maxExtCnt        = flag.Int64("max-ext-cnt", 8, "max extent count for the linear-probe allocator")
		minFrSplitRemain = flag.Int64("min-fr-split-remain", 1, "minimum leftover remainder, in blocks, the KR allocator accepts when splitting a hole")
		csvPath          = flag.String("csv", "", "path to the object-feed CSV (required)")
		backingFilePath  = flag.String("backing-file", "", "mirror the run onto this file on disk (optional)")
	)

	var showMap showMapFlags
	flag.Var(&showMap, "show-map", "render a fragmentation map after the run: objs, types, pages (repeatable)")

	flag.IntVar(noteTakerBackW, "note-taker-back-w", 12, "alias for -w")
	flag.StringVar(allocatorName, "allocator", "kr", "alias for -a")
	flag.StringVar(sample, "sample", "ph-01", "alias for -s")
	flag.StringVar(writerModel, "writer-model", "editor", "alias for -m")
	noContract := flag.Bool("no-contract", false, "do not contract the backing space after each dealloc (overrides --contract)")

	flag.Parse()

	if *csvPath == "" {
		log.Fatal("xozsim: --csv is required")
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("xozsim: %v", err)
	}
	defer f.Close()

	objects, err := ingest.ReadCSV(f, *sample)
	if err != nil {
		log.Fatalf("xozsim: %v", err)
	}

	if len(objects) == 0 {
		log.Fatalf("xozsim: no objects for sample %q", *sample)
	}

	mode, err := parseWriterModel(*writerModel)
	if err != nil {
		log.Fatal(err)
	}

	params := workload.Params{
		WindowW:             *noteTakerBackW,
		DelProb:             *dp,
		DelImgProb:          *idp,
		ReinsertChgSzFactor: *rf,
		BlockSize:           blockSize,
		Mode:                mode,
		Reinsert:            !*noReinsert,
	}

	run := func(seed int64) error {
		return runOnce(seed, objects, params, *allocatorName, *coalescing, *maxExtCnt, *minFrSplitRemain, *contract && !*noContract, *trace, showMap, *backingFilePath)
	}

	if *rerunUntilBug {
		badSeed, err := workload.RerunUntilBug(*seed, run)
		if err != nil {
			log.Printf("xozsim: reproduced failure with seed %d: %v", badSeed, err)
			os.Exit(1)
		}
		return
	}

	if err := run(*seed); err != nil {
		log.Printf("xozsim: %v", err)
		os.Exit(1)
	}
}

func parseWriterModel(name string) (workload.Mode, error) {
	switch name {
	case "copier":
		return workload.Copier, nil
	case "notetaker":
		return workload.Notetaker, nil
	case "editor":
		return workload.Editor, nil
	default:
		return 0, fmt.Errorf("xozsim: unknown writer model %q", name)
	}
}

func buildAllocator(name string, cfg blkspace.Config, coalescing bool, maxExtCnt, minFrSplitRemain int64) (blkspace.Allocator, error) {
	switch name {
	case "mono":
		return blkspace.NewMonotonicAllocator(cfg), nil
	case "kr":
		return blkspace.NewKRAllocator(cfg, coalescing, minFrSplitRemain), nil
	case "halving-kr":
		return blkspace.NewHalvingAllocator(cfg, blkspace.NewKRAllocator(cfg, coalescing, minFrSplitRemain)), nil
	case "linear-kr":
		return blkspace.NewLinearAllocator(cfg, blkspace.NewKRAllocator(cfg, coalescing, minFrSplitRemain), maxExtCnt), nil
	default:
		return nil, fmt.Errorf("xozsim: unknown allocator %q", name)
	}
}

func runOnce(seed int64, objects []ingest.Object, params workload.Params, allocatorName string, coalescing bool, maxExtCnt, minFrSplitRemain int64, contract, trace bool, showMap showMapFlags, backingFilePath string) error {
	cfg := blkspace.Config{BlockSize: blockSize}

	allocator, err := buildAllocator(allocatorName, cfg, coalescing, maxExtCnt, minFrSplitRemain)
	if err != nil {
		log.Fatal(err)
	}

	actions, catalog := workload.Synthesize(objects, seed, params)

	var traceW io.Writer
	if trace {
		traceW = os.Stdout
	}

	sim := simulator.New(cfg, allocator, traceW)

	if backingFilePath != "" {
		bf, err := os.OpenFile(backingFilePath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			log.Fatalf("xozsim: %v", err)
		}
		defer bf.Close()

		backing, err := simulator.NewBackingFile(bf, cfg)
		if err != nil {
			log.Fatalf("xozsim: %v", err)
		}
		sim.SetBackingFile(backing)
	}

	if err := sim.Run(actions, catalog, contract); err != nil {
		return err
	}

	report(sim, catalog, showMap)
	return nil
}

func report(sim *simulator.Simulator, catalog map[int64]ingest.Object, showMap showMapFlags) {
	objByID := make(map[int64]stats.ObjInfo, len(sim.ObjByID()))
	for id, o := range sim.ObjByID() {
		objByID[id] = stats.ObjInfo{DataSz: o.DataSz, ObjType: o.ObjType, PageNo: o.PageNo}
	}

	for _, which := range showMap {
		switch which {
		case "objs":
			stats.RenderObjIDs(os.Stdout, sim.Space())
		case "types":
			stats.RenderObjTypes(os.Stdout, sim.Space(), objByID)
		case "pages":
			stats.RenderPages(os.Stdout, sim.Space(), objByID)
		}
	}

	s := stats.Compute(sim.Space(), objByID, blockSize)
	fmt.Printf("Block cnt: %d\n", s.TotalBlkCnt)
	fmt.Printf("Useful data size: %d kb\n", s.TotalDataSz/1024)
	fmt.Printf("Free block cnt: %d (at end: %d)\n", s.FreeBlkCnt, s.FreeBlkAtEndCnt)
	fmt.Printf("External frag: %.2f%% of blocks are freed/unused\n", s.ExternalFragPct)
	fmt.Printf("Internal frag: %.2f%% of data is reserved but wasted\n", s.InternalFragPct)
	fmt.Printf("Minimum theoretical blk cnt: %d\n", s.MinTheoreticalBlkCnt)
}

// vecunit loads a roster of units into a native VecUnit, copies and indexes it, then releases
// everything and checks the heap for leaks.
//
// Usage:
//
//	vecunit [-config heap.toml] [-units units.toml] [-defrag] [-stats] [-detailed] [-profile cpu|mem]
//
// Profiles are written to the working directory and can be read with go tool pprof.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pkg/profile"
	"github.com/vkngwrapper/battlecode/bc"
	"github.com/vkngwrapper/battlecode/internal/config"
	"github.com/vkngwrapper/battlecode/native"
	"golang.org/x/exp/slog"
)

var defaultRoster = []native.UnitData{
	{
		ID: 1, Team: native.TeamRed, Type: native.UnitTypeWorker, Health: 100, MaxHealth: 100,
		Location: native.Location{Kind: native.LocationOnMap, Planet: native.PlanetEarth, X: 3, Y: 4},
	},
	{
		ID: 2, Team: native.TeamRed, Type: native.UnitTypeFactory, Health: 300, MaxHealth: 300,
		Location: native.Location{Kind: native.LocationOnMap, Planet: native.PlanetEarth, X: 5, Y: 5},
	},
	{
		ID: 3, Team: native.TeamRed, Type: native.UnitTypeKnight, Health: 250, MaxHealth: 250,
		Location: native.Location{Kind: native.LocationInGarrison, Garrison: 2},
	},
	{
		ID: 4, Team: native.TeamBlue, Type: native.UnitTypeRanger, Health: 140, MaxHealth: 200,
		Location: native.Location{Kind: native.LocationInSpace},
	},
}

type options struct {
	configPath string
	unitsPath  string
	defrag     bool
	stats      bool
	detailed   bool
	profile    string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("vecunit", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var opts options
	flags.StringVar(&opts.configPath, "config", "", "TOML file with [heap] and [log] settings")
	flags.StringVar(&opts.unitsPath, "units", "", "TOML file with [[unit]] tables; a built-in roster is used if empty")
	flags.BoolVar(&opts.defrag, "defrag", false, "release the original vector and compact the heap before printing statistics")
	flags.BoolVar(&opts.stats, "stats", false, "print heap statistics as json before releasing the vector")
	flags.BoolVar(&opts.detailed, "detailed", false, "include every block's suballocations in the statistics")
	flags.StringVar(&opts.profile, "profile", "", "write a 'cpu' or 'mem' profile to the working directory")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	switch opts.profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook, profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook, profile.Quiet).Stop()
	default:
		fmt.Fprintf(stderr, "unknown profile '%s': expected 'cpu' or 'mem'\n", opts.profile)
		return 2
	}

	if err := runVecUnit(opts, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "vecunit: %v\n", err)
		return 1
	}

	return 0
}

func runVecUnit(opts options, stdout, stderr io.Writer) error {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return err
		}
	}

	logger, err := cfg.Logger(stderr)
	if err != nil {
		return err
	}

	heapOptions, err := cfg.HeapOptions()
	if err != nil {
		return err
	}

	roster := defaultRoster
	if opts.unitsPath != "" {
		loaded, err := config.LoadRoster(opts.unitsPath)
		if err != nil {
			return err
		}
		roster = loaded.Units
	}

	heap, err := native.NewHeap(logger, heapOptions)
	if err != nil {
		return err
	}

	err = exercise(heap, roster, opts, stdout)
	if err != nil {
		logger.Error("VecUnit run failed", slog.Any("error", err))
	}

	return errors.CombineErrors(err, heap.Destroy())
}

func exercise(heap *native.Heap, roster []native.UnitData, opts options, stdout io.Writer) error {
	vec := bc.NewVecUnit(heap)
	defer vec.Delete()
	if !vec.Valid() {
		return errors.New("the heap could not create a VecUnit")
	}

	for _, data := range roster {
		unit := bc.NewUnit(heap, data)
		if !unit.Valid() {
			return errors.Newf("the heap could not create unit %d", data.ID)
		}

		err := vec.Push(unit)
		unit.Delete()
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "vec (%d): %s\n", vec.Size(), vec)

	clone, ok := vec.Clone()
	if !ok {
		return errors.New("the heap could not copy the VecUnit")
	}
	defer clone.Delete()

	fmt.Fprintf(stdout, "clone (%d): %s\n", clone.Size(), clone)

	for i := uint64(0); i < clone.Size(); i++ {
		unit, ok := clone.Get(i)
		if !ok {
			return errors.Newf("the heap could not copy element %d", i)
		}

		fmt.Fprintf(stdout, "[%d] %s\n", i, unit)
		unit.Delete()
	}

	if _, ok := clone.Get(clone.Size()); !ok {
		fmt.Fprintf(stdout, "[%d] absent\n", clone.Size())
	}

	if opts.defrag {
		vec.Delete()

		stats, err := heap.Defragment(native.DefragmentationInfo{})
		if err != nil {
			return err
		}

		fmt.Fprintf(stdout, "defrag: moved %d objects (%d bytes), freed %d blocks (%d bytes)\n",
			stats.AllocationsMoved, stats.BytesMoved, stats.BlocksFreed, stats.BytesFreed)
	}

	if opts.stats {
		fmt.Fprintln(stdout, heap.BuildStatsString(opts.detailed))
	}

	return nil
}

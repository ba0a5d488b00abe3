// Command synth packs a synthetic polycrystalline microstructure described by
// a gcfg file and writes the voxel volume, a grain table and diagnostic charts.
//
//	synth -config run.gcfg -out volume.vtk -grains grains.csv -plot charts
//	synth -example > run.gcfg
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/pack"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/report"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/stats"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/voxel"
)

func main() {
	var (
		configPath, out, table, plotDir string
		example, verbose                bool
	)
	flag.StringVar(&configPath, "config", "", "Configuration file describing the domain and phases.")
	flag.StringVar(&out, "out", "", "Path of the legacy VTK volume to write.")
	flag.StringVar(&table, "grains", "", "Path of the CSV grain table to write.")
	flag.StringVar(&plotDir, "plot", "", "Directory to write per phase diagnostic charts into.")
	flag.BoolVar(&verbose, "v", false, "Log optimizer progress to stderr.")
	flag.BoolVar(&example, "example", false, "Print an example configuration file to stdout.")
	flag.Parse()

	if example {
		fmt.Print(stats.ExampleConfig)
		return
	}
	if configPath == "" {
		log.Fatal("Must supply a configuration file with -config.")
	}

	c, err := stats.ReadConfig(configPath)
	if err != nil {
		log.Fatal(err.Error())
	}
	raw, err := c.Phases()
	if err != nil {
		log.Fatal(err.Error())
	}
	phases, err := stats.Prepare(stats.Phases(raw))
	if err != nil {
		log.Fatal(err.Error())
	}

	cfg := pack.ConfigFromDomain(c.Domain)
	if verbose {
		cfg.Logger = log.New(os.Stderr, "synth: ", log.Ltime)
	}
	if out != "" {
		cfg.Sink = voxel.VTKSink{Path: out}
	}
	opt, err := pack.New(phases, cfg)
	if err != nil {
		log.Fatal(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	res, err := opt.Run(ctx)
	if err != nil {
		if errors.Is(err, pack.ErrStalled) && table != "" && len(res.Grains) > 0 {
			// Keep what was generated for inspection.
			if werr := writeFile(table, func(w io.Writer) error { return voxel.WriteGrainTable(w, res.Grains) }); werr != nil {
				log.Print(werr)
			}
		}
		log.Fatal(err.Error())
	}
	for _, s := range res.Stalls {
		log.Printf("warning: %v", s)
	}
	log.Printf("%d grains, filling error %d, %d contested voxels, %d fragments removed, mean KAM %.3g°",
		len(res.Grains), res.FillingError, res.Assignment.Contested, res.Assignment.Fragments, res.Volume.MeanKAM())

	if table != "" {
		err = writeFile(table, func(w io.Writer) error { return voxel.WriteGrainTable(w, res.Grains) })
		if err != nil {
			log.Fatal(err.Error())
		}
	}
	if plotDir != "" {
		if err := writeCharts(plotDir, phases, res.Scores); err != nil {
			log.Fatal(err.Error())
		}
	}
}

func writeCharts(dir string, phases []stats.Phase, scores []pack.PhaseScore) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	charts := map[string]func(io.Writer, *stats.Phase, pack.PhaseScore) error{
		"size":           report.SizeHistogram,
		"neighbors":      report.NeighborHistogram,
		"misorientation": report.Misorientation,
	}
	for i := range scores {
		ph := &phases[i]
		for name, draw := range charts {
			path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", ph.Name, name))
			err := writeFile(path, func(w io.Writer) error { return draw(w, ph, scores[i]) })
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jeff-blank/svg2vd/pkg/config"
	"github.com/jeff-blank/svg2vd/pkg/drawable"
	"github.com/jeff-blank/svg2vd/pkg/naming"
	"github.com/jeff-blank/svg2vd/pkg/report"
	log "github.com/sirupsen/logrus"
)

func main() {

	configFile := flag.String("conf", "svg2vd.yml", "configuration file")
	logDebug := flag.Bool("d", false, "debug-level logging")
	inDir := flag.String("in", "", "input directory (overrides general.input_dir)")
	outDir := flag.String("out", "", "output directory (overrides general.output_dir)")
	workers := flag.Int("j", 0, "parallel conversions (overrides general.workers)")
	flag.Parse()

	if *logDebug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	cfg := config.New(*configFile)
	if len(*inDir) > 0 {
		cfg.General["input_dir"] = *inDir
	}
	if len(*outDir) > 0 {
		cfg.General["output_dir"] = *outDir
	}
	if *workers > 0 {
		cfg.General["workers"] = fmt.Sprint(*workers)
	}

	var rec report.Recorder
	dbh, err := report.DbConnect(cfg.DbParam)
	if err != nil {
		log.Fatal(err)
	}
	if dbh != nil {
		defer dbh.Close()
		dbRec, err := report.NewDBRecorder(dbh, cfg.DbParam["table"])
		if err != nil {
			log.Fatal(err)
		}
		defer dbRec.Close()
		rec = dbRec
	}

	rpt, err := run(cfg, rec)
	if err != nil {
		log.Fatal(err)
	}
	if rpt == nil {
		return
	}
	rpt.Summary(os.Stdout)
	if len(rpt.Failed()) > 0 {
		os.Exit(1)
	}
}

type job struct {
	source string
	target string
}

// run converts every matching file. It returns a nil report when there was
// nothing to convert.
func run(cfg *config.Config, rec report.Recorder) (*report.Report, error) {
	inDir := cfg.General["input_dir"]
	outDir := cfg.General["output_dir"]

	svgFiles, err := filepath.Glob(filepath.Join(inDir, cfg.General["glob"]))
	if err != nil {
		return nil, fmt.Errorf("glob '%s': %w", cfg.General["glob"], err)
	}
	if len(svgFiles) == 0 {
		fmt.Printf("No SVG files found in %s/ directory\n", inDir)
		return nil, nil
	}
	sort.Strings(svgFiles)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory '%s': %w", outDir, err)
	}

	fmt.Printf("Found %d SVG files\n", len(svgFiles))
	fmt.Printf("Converting to %s/\n\n", outDir)

	namer := naming.New(cfg.Naming)
	emitter := drawable.New(cfg.Drawable.Width, cfg.Drawable.Height)

	jobs := make([]job, 0, len(svgFiles))
	seen := make(map[string]string)
	for _, svgFile := range svgFiles {
		outputName := namer.FileName(svgFile)
		if prev, dup := seen[outputName]; dup {
			log.Warnf("%s and %s both map to %s; the latter wins", filepath.Base(prev), filepath.Base(svgFile), outputName)
		}
		seen[outputName] = svgFile
		fmt.Printf("Converting: %s -> %s\n", filepath.Base(svgFile), outputName)
		jobs = append(jobs, job{svgFile, filepath.Join(outDir, outputName)})
	}

	rpt := report.New(rec)
	convert := func(j job) {
		err := convertFile(emitter, j.source, j.target)
		if err != nil && !errors.Is(err, drawable.ErrEmptyGeometry) {
			log.Warnf("%s: %v", j.source, err)
		}
		rpt.Add(report.Result{
			Source: filepath.Base(j.source),
			Target: filepath.Base(j.target),
			Err:    err,
		})
	}

	// files sharing a target are written up front, in order, so the pool
	// never races on one output and the last source still wins
	last := make(map[string]int)
	for i, j := range jobs {
		last[j.target] = i
	}
	for i, j := range jobs {
		if last[j.target] != i {
			convert(j)
		}
	}

	queue := make(chan job)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				convert(j)
			}
		}()
	}
	for i, j := range jobs {
		if last[j.target] == i {
			queue <- j
		}
	}
	close(queue)
	wg.Wait()

	return rpt, nil
}

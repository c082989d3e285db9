// CreaseStack computes the flat-folded states of an origami crease pattern.
//
// It reads a crease pattern, checks local flat-foldability, folds the paper
// and enumerates the valid layer orders, then prints a summary and writes
// the requested exports.
//
// Build:
//
//	go build -o creasestack ./cmd/creasestack
//
// Examples:
//
//	creasestack -o bird.fold -o bird.pdf bird.cp
//	creasestack -template "waterbomb base" -full -o wb.png
//	creasestack -profile quick -compare pattern.dxf
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/piwi3910/CreaseStack/internal/engine"
	"github.com/piwi3910/CreaseStack/internal/export"
	"github.com/piwi3910/CreaseStack/internal/foldformat"
	"github.com/piwi3910/CreaseStack/internal/importer"
	"github.com/piwi3910/CreaseStack/internal/logging"
	"github.com/piwi3910/CreaseStack/internal/model"
	"github.com/piwi3910/CreaseStack/internal/project"
)

const pngSize = 800

type outputList []string

func (o *outputList) String() string { return strings.Join(*o, ",") }

func (o *outputList) Set(v string) error {
	*o = append(*o, v)
	return nil
}

type options struct {
	configPath   string
	templateName string
	profileName  string
	name         string
	full         bool
	compare      bool
	verbose      bool
	timeout      time.Duration
	outputs      outputList
	labels       string
	input        string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("creasestack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", project.DefaultConfigPath(), "app config file")
	fs.StringVar(&opts.templateName, "template", "", "use a built-in or saved template instead of an input file")
	fs.StringVar(&opts.profileName, "profile", "", "settings profile (Default, Quick, Exhaustive, ...)")
	fs.StringVar(&opts.name, "name", "", "project name used in reports")
	fs.BoolVar(&opts.full, "full", false, "enumerate every layer order instead of stopping at the first")
	fs.BoolVar(&opts.compare, "compare", false, "also compare the default what-if scenarios")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging")
	fs.DurationVar(&opts.timeout, "timeout", 0, "overall time limit (0 = none)")
	fs.Var(&opts.outputs, "o", "output file, format from extension (.fold .pdf .xlsx .dxf .cp .png .crease); repeatable")
	fs.StringVar(&opts.labels, "labels", "", "write per-model summary labels to this PDF")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: creasestack [flags] [pattern.cp|.csv|.xlsx|.dxf|.fold|.crease]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch {
	case fs.NArg() > 1:
		return opts, fmt.Errorf("expected one input file, got %d", fs.NArg())
	case fs.NArg() == 1:
		opts.input = fs.Arg(0)
	}
	if (opts.input == "") == (opts.templateName == "") {
		return opts, errors.New("give either an input file or -template")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	config, err := project.LoadAppConfig(opts.configPath)
	if err != nil {
		fmt.Fprintln(stderr, "warning:", err)
		config = model.DefaultAppConfig()
	}
	level := logging.ParseLevel(config.LogLevel)
	if opts.verbose {
		level = slog.LevelDebug
	}
	logging.UseStderr(level)

	proj, err := loadProject(opts, config)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	if opts.name != "" {
		proj.Name = opts.name
	}

	if opts.profileName != "" {
		custom, err := project.LoadCustomProfiles(project.DefaultProfilesPath())
		if err != nil {
			fmt.Fprintln(stderr, "warning:", err)
		}
		p, ok := project.FindProfile(custom, opts.profileName)
		if !ok {
			fmt.Fprintf(stderr, "error: unknown profile %q\n", opts.profileName)
			return 1
		}
		proj.Settings = p.Settings
	}
	if opts.full {
		proj.Settings.FullEstimation = true
	}

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := engine.New(proj.Settings).Compute(ctx, proj.CreasePattern)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	logging.Logger().Info("computation finished", "elapsed", time.Since(start), "models", len(result.Models))

	summary := result.Summary()
	proj.Summary = &summary
	printResult(stdout, proj, result)

	if opts.compare {
		printComparison(stdout, engine.CompareScenarios(ctx, engine.BuildDefaultScenarios(proj.Settings), proj.CreasePattern))
	}

	code := 0
	for _, out := range opts.outputs {
		if err := writeOutput(out, proj, result); err != nil {
			fmt.Fprintln(stderr, "error:", err)
			code = 1
			continue
		}
		fmt.Fprintln(stdout, "wrote", out)
		if strings.EqualFold(filepath.Ext(out), project.Extension) {
			config.AddRecentProject(out, 10)
			if err := project.SaveAppConfig(opts.configPath, config); err != nil {
				fmt.Fprintln(stderr, "warning:", err)
			}
		}
	}
	if opts.labels != "" {
		if err := export.ExportLabels(opts.labels, proj.Name, result); err != nil {
			fmt.Fprintln(stderr, "error:", err)
			code = 1
		} else {
			fmt.Fprintln(stdout, "wrote", opts.labels)
		}
	}
	return code
}

// loadProject builds the working project from a template or an input file.
// Saved projects keep their own settings; everything else starts from the
// app config defaults.
func loadProject(opts options, config model.AppConfig) (model.Project, error) {
	if opts.templateName != "" {
		store, err := project.AllTemplates(project.DefaultTemplatePath(), config.DefaultPaperSize)
		if err != nil {
			logging.Logger().Warn("custom templates unavailable", "error", err)
		}
		t, ok := project.FindTemplate(store, opts.templateName)
		if !ok {
			return model.Project{}, fmt.Errorf("unknown template %q (have: %s)", opts.templateName, strings.Join(store.Names(), ", "))
		}
		return t.ToProject(t.Name), nil
	}

	ext := strings.ToLower(filepath.Ext(opts.input))
	if ext == project.Extension {
		return project.Load(opts.input)
	}

	proj := model.NewProject()
	proj.Name = strings.TrimSuffix(filepath.Base(opts.input), filepath.Ext(opts.input))
	config.ApplyToSettings(&proj.Settings)

	if ext == ".fold" {
		doc, err := foldformat.LoadFile(opts.input)
		if err != nil {
			return proj, err
		}
		cp, err := foldformat.CreasePatternOf(doc)
		if err != nil {
			return proj, fmt.Errorf("failed to read FOLD edges: %w", err)
		}
		cp.PaperSize = importer.PaperExtent(cp.Lines)
		proj.CreasePattern = cp
		return proj, nil
	}

	var res importer.ImportResult
	switch ext {
	case ".cp":
		res = importer.ImportCP(opts.input)
	case ".csv", ".tsv", ".txt":
		res = importer.ImportCSV(opts.input)
	case ".xlsx":
		res = importer.ImportExcel(opts.input)
	case ".dxf":
		res = importer.ImportDXF(opts.input)
	default:
		return proj, fmt.Errorf("unsupported input format %q", ext)
	}
	for _, w := range res.Warnings {
		logging.Logger().Warn("import", "file", opts.input, "warning", w)
	}
	if !res.OK() {
		return proj, fmt.Errorf("failed to import %s: %s", opts.input, strings.Join(res.Errors, "; "))
	}
	proj.CreasePattern = res.CreasePattern
	return proj, nil
}

func printResult(w io.Writer, proj model.Project, result *engine.ComputationResult) {
	counts := proj.CreasePattern.CountByType()
	fmt.Fprintf(w, "%s: %d lines (%d mountain, %d valley, %d cut, %d auxiliary)\n",
		proj.Name, len(proj.CreasePattern.Lines),
		counts[model.LineMountain], counts[model.LineValley], counts[model.LineCut], counts[model.LineAuxiliary])

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tFACES\tSUBFACES\tLOCAL\tPATTERNS\tSTATUS")
	for i, mr := range result.Models {
		subfaces := "-"
		if mr.SubFaces != nil {
			subfaces = fmt.Sprint(len(mr.SubFaces.SubFaces))
		}
		status := mr.Status()
		if mr.FoldError != "" {
			status += " (" + mr.FoldError + ")"
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n", i+1, len(mr.Model.Faces), subfaces,
			okText(mr.Check.OK), export.FormatCount(mr.Count()), status)
	}
	tw.Flush()

	for i, mr := range result.Models {
		for _, v := range mr.Check.Violations {
			fmt.Fprintf(w, "  model %d: %s at vertex %d (%.4g, %.4g)\n", i+1, v.Rule, v.Vertex, v.Position[0], v.Position[1])
		}
	}
	fmt.Fprintf(w, "Foldable patterns: %s (%s)\n", export.FormatCount(result.FoldablePatternCount), result.Status())
}

func printComparison(w io.Writer, results []engine.ComparisonResult) {
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tFACES\tPATTERNS\tSTATUS")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.Scenario.Name, r.Summary.Faces,
			export.FormatCount(int64(r.Summary.FoldablePatternCount)), r.Summary.Status)
	}
	tw.Flush()
}

func okText(ok bool) string {
	if ok {
		return "ok"
	}
	return "fail"
}

func writeOutput(path string, proj model.Project, result *engine.ComputationResult) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".fold":
		return writeFold(path, result)
	case ".pdf":
		return export.ExportPDF(path, proj.Name, proj.CreasePattern, result, proj.Settings)
	case ".xlsx":
		return export.ExportXLSX(path, proj.CreasePattern, result)
	case ".dxf":
		return export.ExportDXF(path, proj.CreasePattern)
	case ".cp":
		return export.ExportCP(path, proj.CreasePattern)
	case ".png":
		return writePNG(path, proj, result)
	case project.Extension:
		return project.Save(path, proj)
	default:
		return fmt.Errorf("unsupported output format %q", ext)
	}
}

// writeFold writes one FOLD file per model with its first layer order.
// Extra models get a numeric suffix.
func writeFold(path string, result *engine.ComputationResult) error {
	if len(result.Models) == 0 {
		return errors.New("no models to export")
	}
	base := strings.TrimSuffix(path, filepath.Ext(path))
	for i, mr := range result.Models {
		out := path
		if i > 0 {
			out = fmt.Sprintf("%s-%d.fold", base, i+1)
		}
		if err := foldformat.SaveFile(out, foldformat.FromModel(mr.Model, mr.FirstRelation())); err != nil {
			return err
		}
	}
	return nil
}

// writePNG renders the first model folded when a layer order exists and
// the crease pattern otherwise.
func writePNG(path string, proj model.Project, result *engine.ComputationResult) error {
	img := export.RenderCreasePattern(proj.CreasePattern, pngSize)
	if len(result.Models) > 0 {
		if mr := result.Models[0]; mr.Model.Folded && mr.FirstRelation() != nil {
			img = export.RenderFolded(mr.Model, mr.FirstRelation(), pngSize)
		}
	}
	data, err := export.EncodePNG(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

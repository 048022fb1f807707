package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/nyxdynamics/ahss/internal/api"
	"github.com/nyxdynamics/ahss/internal/config"
	"github.com/nyxdynamics/ahss/internal/records"
	"github.com/nyxdynamics/ahss/internal/report"
	"github.com/nyxdynamics/ahss/internal/screening"
	ahssserver "github.com/nyxdynamics/ahss/internal/server"
	"github.com/nyxdynamics/ahss/internal/trajectory"
)

// ─── Servers ─────────────────────────────────────────────────────────────────

func runServe(cfg config.Config, logger *slog.Logger) error {
	s, cleanup, err := ahssserver.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	return server.ServeStdio(s)
}

func runHTTP(cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("http", flag.ExitOnError)
	addr := fs.String("addr", cfg.HTTPAddr, "listen address")
	_ = fs.Parse(args)

	cat, err := ahssserver.LoadCatalog(cfg)
	if err != nil {
		return err
	}

	// A nil Records (not a nil *records.Store) disables the history endpoints.
	var rec api.Records
	store, err := records.New(records.Config{DataDir: cfg.DataDir})
	if err != nil {
		logger.Warn("records disabled", "data_dir", cfg.DataDir, "error", err)
	} else {
		rec = store
		defer store.Close()
	}

	srv := api.NewServer(cfg, cat, trajectory.NewModel(trajectory.DefaultParameters()), rec, logger)
	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", httpServer.Addr, "version", ahssserver.Version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("ahss stopped")
	return nil
}

// ─── Screening ───────────────────────────────────────────────────────────────

func runForm(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("form", flag.ExitOnError)
	pdfPath := fs.String("pdf", "", "write the form as PDF to this file")
	_ = fs.Parse(args)

	cat, err := ahssserver.LoadCatalog(cfg)
	if err != nil {
		return err
	}
	if *pdfPath != "" {
		return writeFile(*pdfPath, func(w io.Writer) error {
			return report.FormPDF(cat, cfg.FontPath, w)
		})
	}
	text, err := report.Form(cat)
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}

type screeningOutput struct {
	clientID string
	pdfPath  string
	save     bool
}

func runScore(cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	file := fs.String("file", "", "YAML administration with client_id and responses (required)")
	clientID := fs.String("client", "", "client ID, overrides the file's client_id")
	pdfPath := fs.String("pdf", "", "also write the clinical report as PDF")
	save := fs.Bool("save", false, "save the screening to the client's history")
	_ = fs.Parse(args)

	if *file == "" {
		return errors.New("-file is required")
	}
	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	adm, err := screening.LoadResponses(f)
	if err != nil {
		return err
	}
	if *clientID != "" {
		adm.ClientID = *clientID
	}

	cat, err := ahssserver.LoadCatalog(cfg)
	if err != nil {
		return err
	}
	return finishScreening(os.Stdout, cfg, logger, cat, adm.Responses, screeningOutput{clientID: adm.ClientID, pdfPath: *pdfPath, save: *save})
}

func finishScreening(w io.Writer, cfg config.Config, logger *slog.Logger, cat screening.Catalog, responses screening.ResponseSet, o screeningOutput) error {
	res, err := screening.Score(cat, responses)
	if err != nil {
		return err
	}
	in := screening.InterpretResult(res)

	data := report.NewClinicalData(o.clientID, cat, in, time.Now())
	text, err := report.Clinical(data)
	if err != nil {
		return err
	}
	fmt.Fprint(w, text)

	if o.pdfPath != "" {
		if err := writeFile(o.pdfPath, func(w io.Writer) error {
			return report.ClinicalPDF(data, cfg.FontPath, w)
		}); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", o.pdfPath)
	}

	if o.save {
		if o.clientID == "" {
			return errors.New("-save needs a client ID")
		}
		store, err := records.New(records.Config{DataDir: cfg.DataDir})
		if err != nil {
			return err
		}
		defer store.Close()
		saved, err := store.SaveScreening(o.clientID, responses, in)
		if err != nil {
			return err
		}
		logger.Info("screening saved", "id", saved.ID, "client_id", o.clientID)
		fmt.Fprintf(os.Stderr, "Saved screening %s\n", saved.ID)
	}
	return nil
}

func runInterpret(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("interpret", flag.ExitOnError)
	temporal := fs.Float64("temporal", -1, "temporal subscale score; omit when not assessed")

	// The total may come before or after the flags.
	var raw string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		raw, args = args[0], args[1:]
	}
	_ = fs.Parse(args)
	if raw == "" {
		raw = fs.Arg(0)
	}
	if raw == "" {
		return errors.New("usage: ahss interpret <total> [-temporal n]")
	}
	total, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("total score %q is not a number", raw)
	}

	var subscales map[screening.Domain]float64
	if *temporal >= 0 {
		subscales = map[screening.Domain]float64{screening.DomainTemporal: *temporal}
	}
	in := screening.Interpret(total, subscales)

	fmt.Printf("\nScore: %s\n", strconv.FormatFloat(total, 'f', -1, 64))
	fmt.Printf("Risk Level: %s\n", strings.ToUpper(string(in.RiskLevel)))
	fmt.Printf("Interpretation: %s\n", in.Summary)
	fmt.Printf("Intervention Window: %s\n", in.WindowNote)
	fmt.Println("\nRecommendations:")
	for _, r := range in.Recommendations {
		fmt.Printf("  - %s\n", r)
	}
	return nil
}

// ─── Trajectories ────────────────────────────────────────────────────────────

type runFlags struct {
	caseName    *string
	profilePath *string
	months      *int
	start       *int
	seed        *int64
}

func addRunFlags(fs *flag.FlagSet, cfg config.Config) runFlags {
	return runFlags{
		caseName:    fs.String("case", "moderate_risk", "reference case: moderate_risk, high_risk or severe_risk"),
		profilePath: fs.String("profile", "", "YAML profile file; overrides -case"),
		months:      fs.Int("months", cfg.DurationMonths, "simulation horizon in months"),
		start:       fs.Int("start", cfg.InterventionMonth, "month the intervention starts"),
		seed:        fs.Int64("seed", cfg.Seed, "random seed, 0 = from the clock"),
	}
}

func (f runFlags) profile() (trajectory.Profile, error) {
	if *f.profilePath != "" {
		return trajectory.LoadProfileFile(*f.profilePath)
	}
	p, ok := trajectory.Cases()[*f.caseName]
	if !ok {
		return trajectory.Profile{}, fmt.Errorf("unknown case %q", *f.caseName)
	}
	return p, nil
}

func (f runFlags) resolvedSeed() int64 {
	if *f.seed != 0 {
		return *f.seed
	}
	return time.Now().UnixNano()
}

func runSimulate(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	rf := addRunFlags(fs, cfg)
	intervention := fs.String("intervention", "", "psychoeducation, cognitive_reframe, advocacy or combined; empty for none")
	every := fs.Int("every", 3, "print every Nth month")
	_ = fs.Parse(args)

	p, err := rf.profile()
	if err != nil {
		return err
	}
	var iv *trajectory.Intervention
	if *intervention != "" {
		iv = &trajectory.Intervention{Type: trajectory.InterventionType(*intervention), StartMonth: *rf.start}
	}
	seed := rf.resolvedSeed()

	tr, err := trajectory.NewModel(trajectory.DefaultParameters()).Simulate(p, *rf.months, iv, trajectory.NewSeededSource(seed))
	if err != nil {
		return err
	}

	policy := string(trajectory.NoIntervention)
	if iv != nil {
		policy = fmt.Sprintf("%s from month %d", iv.Type, iv.StartMonth)
	}
	fmt.Printf("Policy: %s\nHorizon: %d months\nSeed: %d\n\n", policy, *rf.months, seed)
	printTrajectory(os.Stdout, tr, *every)
	printFinal(os.Stdout, tr.Final)
	return nil
}

func printTrajectory(w io.Writer, tr trajectory.Trajectory, every int) {
	if every < 1 {
		every = 1
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Month\tMental health\tAlgorithmic\tShame\tAvoidance\tRejections\t")
	last := len(tr.Months) - 1
	for i, m := range tr.Months {
		if i%every != 0 && i != last {
			continue
		}
		s := tr.At(i)
		fmt.Fprintf(tw, "%d\t%.1f\t%.1f\t%.1f\t%.2f\t%d\t\n", m, s.MentalHealth, s.AlgorithmicScore, s.Shame, s.Avoidance, s.Rejections)
	}
	_ = tw.Flush()
}

func printFinal(w io.Writer, f trajectory.Summary) {
	fmt.Fprintf(w, "\nFinal mental health: %.1f\n", f.MentalHealth)
	fmt.Fprintf(w, "Final algorithmic score: %.1f\n", f.AlgorithmicScore)
	fmt.Fprintf(w, "Meets depression criteria: %t\n", f.MeetsDepressionCriteria)
}

func runCompare(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	rf := addRunFlags(fs, cfg)
	_ = fs.Parse(args)

	if *rf.months < 1 {
		return fmt.Errorf("-months must be at least 1 to compare policies, got %d", *rf.months)
	}
	p, err := rf.profile()
	if err != nil {
		return err
	}
	return printComparison(os.Stdout, p, trajectory.CompareOptions{
		Months:     *rf.months,
		StartMonth: *rf.start,
		Seed:       rf.resolvedSeed(),
	})
}

func printComparison(w io.Writer, p trajectory.Profile, opts trajectory.CompareOptions) error {
	c, err := trajectory.NewModel(trajectory.DefaultParameters()).Compare(context.Background(), p, opts)
	if err != nil {
		return err
	}
	table, err := report.ComparisonTable(c)
	if err != nil {
		return err
	}
	fmt.Fprint(w, table)
	if best, ok := c.Best(); ok {
		fmt.Fprintf(w, "\nHighest final mental health: %s (%.1f)\n", best.Policy, best.Trajectory.Final.MentalHealth)
	}
	return nil
}

// ─── Demo ────────────────────────────────────────────────────────────────────

func runDemo(cfg config.Config) error {
	rule := strings.Repeat("=", 70)

	fmt.Println(rule)
	fmt.Println("AHSS DEMONSTRATION")
	fmt.Println(rule)

	cat, err := ahssserver.LoadCatalog(cfg)
	if err != nil {
		return err
	}
	res, err := screening.Score(cat, screening.SampleResponses())
	if err != nil {
		return err
	}
	text, err := report.Clinical(report.NewClinicalData("DEMO-001", cat, screening.InterpretResult(res), time.Now()))
	if err != nil {
		return err
	}
	fmt.Print(text)

	p := trajectory.Cases()["moderate_risk"]
	fmt.Printf("\n--- MODERATE RISK CASE ---\n")
	fmt.Printf("Baseline Mental Health: %s\n", strconv.FormatFloat(p.BaselineMentalHealth, 'f', -1, 64))
	fmt.Printf("Baseline Algorithmic Score: %s\n", strconv.FormatFloat(p.BaselineAlgorithmicScore, 'f', -1, 64))
	fmt.Printf("Vulnerability Factors: %s\n", strings.Join(p.VulnerabilityFactors, ", "))
	fmt.Printf("Protective Factors: %s\n\n", strings.Join(p.ProtectiveFactors, ", "))

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if err := printComparison(os.Stdout, p, trajectory.CompareOptions{
		Months:     cfg.DurationMonths,
		StartMonth: cfg.InterventionMonth,
		Seed:       seed,
	}); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(rule)
	fmt.Println("Printable form:         ahss form")
	fmt.Println("Score a saved form:     ahss score -file answers.yaml")
	fmt.Println("Serve to an assistant:  ahss serve")
	fmt.Println(rule)
	return nil
}

// writeFile creates path and removes it again if fn fails.
func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

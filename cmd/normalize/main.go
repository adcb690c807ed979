// Command normalize fetches a hechos document, runs it through the same
// normalization as the service and writes the resulting events as JSON. It
// prints per-category stats and, with -check, fails when records were dropped
// or canonical fields could not be resolved.
//
// Usage:
//
//	go run ./cmd/normalize \
//	  -in data/hechos.json \
//	  -out normalized.json \
//	  -timezone America/Argentina/Buenos_Aires \
//	  -check
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/couchcryptid/hechos-map-service/internal/adapter/source"
	"github.com/couchcryptid/hechos-map-service/internal/config"
	"github.com/couchcryptid/hechos-map-service/internal/domain"
	"golang.org/x/text/language"
)

// check tracks pass/fail for one validation rule.
type check struct {
	name   string
	errors []string
}

func (c *check) errorf(format string, args ...any) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

func (c *check) passed() bool { return len(c.errors) == 0 }

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "data URL or path: http(s)://, s3://bucket/key, file:// or a local path")
	out := flag.String("out", "", "output path for normalized events (default stdout)")
	tz := flag.String("timezone", "Local", "IANA zone used to read instants as calendar dates")
	candidatesFile := flag.String("candidates", "", "YAML file with extra key spellings per field")
	timeout := flag.Duration("timeout", 30*time.Second, "fetch timeout for remote sources")
	strict := flag.Bool("check", false, "exit non-zero when records are dropped or fields unresolved")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -in")
	}

	loc, err := loadLocation(*tz)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", *tz, err)
	}
	extra, err := config.LoadCandidates(*candidatesFile)
	if err != nil {
		return err
	}
	candidates, err := domain.DefaultCandidates().Extend(extra)
	if err != nil {
		return fmt.Errorf("key candidates: %w", err)
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	fetcher, err := source.New(ctx, *in, *timeout, logger)
	if err != nil {
		return err
	}
	data, err := fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", *in, err)
	}

	raws, err := domain.DecodeDocument(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", *in, err)
	}
	normalizer := domain.Normalizer{Candidates: candidates, Dates: domain.DateNormalizer{Location: loc}}
	c := normalizer.NormalizeCollection(raws)
	log.Printf("received %d records, kept %d, dropped %d", c.Received, len(c.Events), c.Dropped)

	if err := writeEvents(*out, c.Events); err != nil {
		return fmt.Errorf("writing events: %w", err)
	}
	if *out != "" {
		log.Printf("wrote events: %s", *out)
	}

	printStats(c)

	if !*strict {
		return nil
	}
	checks := []*check{
		checkResolution(c),
		checkCoordinates(c),
		checkDates(c.Events),
		checkIDs(c.Events),
	}
	return report(checks)
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

func writeEvents(path string, events []domain.Event) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(events)
}

func printStats(c domain.Collection) {
	counts := map[string]int{}
	var withEventDate, withCreationDate int
	for i := range c.Events {
		e := &c.Events[i]
		counts[e.Categoria]++
		if !e.FechaAcontecimiento.IsZero() {
			withEventDate++
		}
		if !e.FechaCreacion.IsZero() {
			withCreationDate++
		}
	}

	fmt.Fprintln(os.Stderr, "\n=== Stats ===")
	fmt.Fprintf(os.Stderr, "Events: %d\n", len(c.Events))
	fmt.Fprintf(os.Stderr, "With event date: %d, with creation date: %d\n", withEventDate, withCreationDate)
	fmt.Fprintf(os.Stderr, "Categories (%d):\n", len(counts))
	for _, cat := range domain.Categories(c.Events, language.Spanish) {
		fmt.Fprintf(os.Stderr, "  %-30s %d\n", cat, counts[cat])
	}
	if n := counts[""]; n > 0 {
		fmt.Fprintf(os.Stderr, "  %-30s %d\n", "(none)", n)
	}

	for _, f := range domain.Fields {
		key, ok := c.KeyMap.Key(f)
		if !ok {
			key = "-"
		}
		fmt.Fprintf(os.Stderr, "  field %-20s <- %s\n", f, key)
	}
}

func checkResolution(c domain.Collection) *check {
	ch := &check{name: "every canonical field resolved"}
	if c.Received == 0 {
		return ch
	}
	for _, f := range c.KeyMap.Unresolved() {
		ch.errorf("no source key for %s", f)
	}
	return ch
}

func checkCoordinates(c domain.Collection) *check {
	ch := &check{name: "every record has coordinates"}
	if c.Dropped > 0 {
		ch.errorf("%d of %d records dropped without lat/long", c.Dropped, c.Received)
	}
	return ch
}

func checkDates(events []domain.Event) *check {
	ch := &check{name: "every event has a date"}
	for i := range events {
		if events[i].BestDate().IsZero() {
			ch.errorf("event %q has neither event nor creation date", events[i].ID)
		}
	}
	return ch
}

func checkIDs(events []domain.Event) *check {
	ch := &check{name: "ids present and unique"}
	seen := map[string]int{}
	for i := range events {
		id := events[i].ID
		if id == "" {
			ch.errorf("event at index %d has no id", i)
			continue
		}
		seen[id]++
	}
	dups := make([]string, 0)
	for id, n := range seen {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	sort.Strings(dups)
	for _, id := range dups {
		ch.errorf("id %q appears %d times", id, seen[id])
	}
	return ch
}

func report(checks []*check) error {
	fmt.Fprintln(os.Stderr)
	failed := 0
	for _, ch := range checks {
		status := "PASS"
		if !ch.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(ch.errors))
			failed++
		}
		fmt.Fprintf(os.Stderr, "  %-32s %s\n", ch.name, status)
	}
	for _, ch := range checks {
		if ch.passed() {
			continue
		}
		fmt.Fprintf(os.Stderr, "\n--- %s ---\n", ch.name)
		for i, e := range ch.errors {
			if i == 10 {
				fmt.Fprintf(os.Stderr, "  ... and %d more\n", len(ch.errors)-10)
				break
			}
			fmt.Fprintf(os.Stderr, "  %s\n", e)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	return nil
}

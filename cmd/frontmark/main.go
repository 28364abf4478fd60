package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dgallion1/frontmark/internal/frontmatter"
	"github.com/dgallion1/frontmark/internal/parser"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "frontmark",
		Usage: "Lint and extract YAML frontmatter from markdown files",
		Commands: []*cli.Command{
			lintCmd(),
			extractCmd(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func lintCmd() *cli.Command {
	var jobs int
	return &cli.Command{
		Name:      "lint",
		Usage:     "Check markdown files for frontmatter problems",
		ArgsUsage: "<glob>...",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "jobs",
				Aliases:     []string{"j"},
				Usage:       "number of files to lint in parallel",
				Value:       8,
				Destination: &jobs,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() == 0 {
				return fmt.Errorf("at least one glob is required")
			}

			var files []string
			seen := make(map[string]bool)
			for _, pattern := range c.Args().Slice() {
				matches, err := doublestar.FilepathGlob(pattern)
				if err != nil {
					return fmt.Errorf("bad glob %q: %w", pattern, err)
				}
				for _, m := range matches {
					if !seen[m] {
						seen[m] = true
						files = append(files, m)
					}
				}
			}
			if len(files) == 0 {
				return fmt.Errorf("no files matched")
			}

			var mu sync.Mutex
			findings := 0

			g, ctx := errgroup.WithContext(ctx)
			g.SetLimit(jobs)
			for _, file := range files {
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					data, err := os.ReadFile(file)
					if err != nil {
						return fmt.Errorf("read %s: %w", file, err)
					}
					diags := frontmatter.Lint(parser.ParseDocument(data))
					if len(diags) == 0 {
						return nil
					}
					mu.Lock()
					findings += len(diags)
					for _, d := range diags {
						fmt.Printf("%s: %s\n%s\n", file, d.Message(), d.Render())
					}
					mu.Unlock()
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if findings > 0 {
				fmt.Fprintf(os.Stderr, "%d problem(s) in %d file(s)\n", findings, len(files))
				os.Exit(1)
			}
			fmt.Fprintf(os.Stderr, "%d file(s) clean\n", len(files))
			return nil
		},
	}
}

func extractCmd() *cli.Command {
	var asJSON bool
	return &cli.Command{
		Name:      "extract",
		Usage:     "Extract metadata from a document",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print metadata as JSON instead of YAML",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("exactly one file is required")
			}
			file := c.Args().First()

			p, err := parser.ForFile(file)
			if err != nil {
				return err
			}
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			meta, err := p.Extract(f, file)
			if err != nil {
				return err
			}

			out := map[string]any{
				"title":  meta.Title,
				"format": meta.Format,
				"fields": meta.Fields,
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			raw, err := yaml.Marshal(out)
			if err != nil {
				return err
			}
			os.Stdout.Write(raw)
			return nil
		},
	}
}

package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is the books.yml import format:
//
//	books:
//	  - isbn: "9780441013593"
//	    title: Dune
//	    author: Frank Herbert
//	    shelf: {x: 1, y: 2}
type Catalog struct {
	Books []CatalogEntry `yaml:"books"`
}

type CatalogEntry struct {
	ISBN   string `yaml:"isbn"`
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
	Shelf  struct {
		X int `yaml:"x"`
		Y int `yaml:"y"`
	} `yaml:"shelf"`
}

func ParseCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog parse: %w", err)
	}
	return &c, nil
}

// Validate checks every entry has an isbn, title and author, and a shelf
// inside an xSize by ySize grid.
func (c *Catalog) Validate(xSize, ySize int) error {
	var errs []error
	seen := map[string]bool{}
	for i, e := range c.Books {
		isbn := strings.TrimSpace(e.ISBN)
		where := fmt.Sprintf("book %d", i+1)
		if isbn != "" {
			where += " (" + isbn + ")"
		}
		switch {
		case isbn == "":
			errs = append(errs, fmt.Errorf("%s: isbn is required", where))
		case seen[isbn]:
			errs = append(errs, fmt.Errorf("%s: duplicate isbn", where))
		}
		seen[isbn] = true
		if strings.TrimSpace(e.Title) == "" || strings.TrimSpace(e.Author) == "" {
			errs = append(errs, fmt.Errorf("%s: title and author are required", where))
		}
		if e.Shelf.X < 0 || e.Shelf.X >= xSize || e.Shelf.Y < 0 || e.Shelf.Y >= ySize {
			errs = append(errs, fmt.Errorf("%s: shelf (%d, %d) is outside the %dx%d grid", where, e.Shelf.X, e.Shelf.Y, xSize, ySize))
		}
	}
	return errors.Join(errs...)
}

// Import upserts every catalog entry in one transaction and returns how
// many were written.
func (s *Store) Import(ctx context.Context, c *Catalog) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	for _, e := range c.Books {
		b := &Book{
			ISBN:   strings.TrimSpace(e.ISBN),
			Title:  strings.TrimSpace(e.Title),
			Author: strings.TrimSpace(e.Author),
			X:      e.Shelf.X,
			Y:      e.Shelf.Y,
		}
		if err := upsert(ctx, tx, b); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return len(c.Books), nil
}

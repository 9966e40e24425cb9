package migration

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/duka/backend/migrations"
)

const migrationUpTemplate = `-- Migration: {{.Name}}
-- Created: {{.Timestamp}}
-- Description: {{.Description}}

`

const migrationDownTemplate = `-- Migration: {{.Name}} (Rollback)
-- Created: {{.Timestamp}}

`

var (
	migrationFileRe = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)
	nameSeparatorRe = regexp.MustCompile(`[\s\-_]+`)
	nameInvalidRe   = regexp.MustCompile(`[^a-z0-9_]`)
)

// MigrationFile represents a migration file pair
type MigrationFile struct {
	Version     uint64
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes the next sequentially numbered migration pair,
// e.g. 000002_add_supplier.up.sql.
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	base := sanitizeName(name)
	if base == "" {
		return nil, fmt.Errorf("invalid migration name %q", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}
	var version uint64 = 1
	if len(existing) > 0 {
		version = existing[len(existing)-1].Version + 1
	}

	prefix := fmt.Sprintf("%06d_%s", version, base)
	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   time.Now().Format(time.RFC3339),
		UpPath:      filepath.Join(dir, prefix+".up.sql"),
		DownPath:    filepath.Join(dir, prefix+".down.sql"),
	}

	if err := writeTemplate(mf.UpPath, migrationUpTemplate, mf); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := writeTemplate(mf.DownPath, migrationDownTemplate, mf); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return mf, nil
}

func writeTemplate(path, tmplContent string, data *MigrationFile) error {
	tmpl, err := template.New("migration").Parse(tmplContent)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if err := tmpl.Execute(f, data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// sanitizeName lowercases name and joins its words with underscores
func sanitizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nameSeparatorRe.ReplaceAllString(s, "_")
	s = nameInvalidRe.ReplaceAllString(s, "")
	return strings.Trim(s, "_")
}

// ListMigrations returns the migrations found in dir, ordered by version.
// Only versions with an up file are listed.
func ListMigrations(dir string) ([]MigrationFile, error) {
	return listMigrations(dirFS(dir))
}

// ListEmbedded lists the migrations compiled into the binary
func ListEmbedded() ([]MigrationFile, error) {
	return listMigrations(migrations.FS)
}

func listMigrations(fsys fs.FS) ([]MigrationFile, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []MigrationFile{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	files := make([]MigrationFile, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := migrationFileRe.FindStringSubmatch(entry.Name())
		if match == nil || match[3] != "up" {
			continue
		}
		version, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			continue
		}
		files = append(files, MigrationFile{
			Version: version,
			Name:    match[2],
			UpPath:  entry.Name(),
		})
	}
	slices.SortFunc(files, func(a, b MigrationFile) int {
		return cmp.Compare(a.Version, b.Version)
	})
	return files, nil
}

func dirFS(dir string) fs.FS {
	return os.DirFS(dir)
}

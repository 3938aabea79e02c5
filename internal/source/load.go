package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/insightdelivered/ledger-insights/internal/ledger"
	"github.com/insightdelivered/ledger-insights/internal/models"
)

// LoadFile reads one ledger sheet, choosing the reader by file extension:
// .pdf goes through ExtractLedgerText, anything else is read as
// tab-delimited text.
func LoadFile(ctx context.Context, path string) (Table, error) {
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := ExtractLedgerText(ctx, path)
		if err != nil {
			return Table{}, err
		}
		t, err := ReadTSV(strings.NewReader(text))
		if err != nil {
			return Table{}, fmt.Errorf("%s: %w", path, err)
		}
		return t, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to open ledger %q: %w", path, err)
	}
	defer f.Close()

	t, err := ReadTSV(f)
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// FileProvider loads ledgers from files on disk.
type FileProvider struct {
	// Paths maps a ledger kind to its file. Blank paths are ignored.
	Paths map[models.LedgerKind]string
	// Files are read with their kind auto-detected from the header row.
	Files []string
	// Kind, when set, is used for every entry of Files instead of
	// auto-detection.
	Kind models.LedgerKind
	// Optional skips entries of Paths whose file does not exist.
	Optional bool
	Logger   *logrus.Logger
}

// Load reads every configured file. A kind given twice has its rows
// appended in load order. The lend ledger is never loaded directly; it is
// derived from the main ledger.
func (p *FileProvider) Load(ctx context.Context) (map[models.LedgerKind][]models.RawRow, error) {
	out := make(map[models.LedgerKind][]models.RawRow)

	for _, kind := range models.LedgerKinds {
		path := p.Paths[kind]
		if path == "" {
			continue
		}
		t, err := LoadFile(ctx, path)
		if err != nil && p.Optional && errors.Is(err, fs.ErrNotExist) {
			p.log().WithFields(logrus.Fields{"kind": kind, "path": path}).Warn("Ledger file not found, skipping")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s ledger: %w", kind, err)
		}
		p.log().WithFields(logrus.Fields{"kind": kind, "path": path, "rows": len(t.Rows)}).Debug("Loaded ledger")
		out[kind] = append(out[kind], t.Rows...)
	}

	for _, path := range p.Files {
		t, err := LoadFile(ctx, path)
		if err != nil {
			return nil, err
		}
		kind := p.Kind
		if kind == "" {
			kind, err = ledger.AutoDetect(t.Headers)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
		p.log().WithFields(logrus.Fields{"kind": kind, "path": path, "rows": len(t.Rows)}).Debug("Loaded ledger")
		out[kind] = append(out[kind], t.Rows...)
	}

	return out, nil
}

func (p *FileProvider) log() logrus.FieldLogger {
	if p.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return l
	}
	return p.Logger
}

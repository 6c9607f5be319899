package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"logmux/internal/model"
	"logmux/internal/util"
)

var ErrNoEntries = errors.New("no entries")

// Format selects the on-disk representation.
type Format string

const (
	NDJSON Format = "ndjson"
	CSV    Format = "csv"
)

// FormatFor picks the format from the file extension; anything that is
// not .csv is written as NDJSON.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return CSV
	}
	return NDJSON
}

type Options struct {
	Redact bool
}

var columns = []string{"seq", "ts", "source", "stream", "text"}

// ToFile writes entries to path in the format implied by its extension.
func ToFile(path string, entries []model.LogEntry, opt Options) error {
	if len(entries) == 0 {
		return ErrNoEntries
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	bw := bufio.NewWriter(f)
	if FormatFor(path) == CSV {
		err = WriteCSV(bw, entries, opt)
	} else {
		err = WriteNDJSON(bw, entries, opt)
	}
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

func text(e model.LogEntry, opt Options) string {
	if opt.Redact {
		return util.RedactPII(e.Text)
	}
	return e.Text
}

func WriteCSV(w io.Writer, entries []model.LogEntry, opt Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			strconv.FormatUint(e.Seq, 10),
			e.Time.Format(time.RFC3339Nano),
			e.SourceName,
			string(e.Stream),
			text(e, opt),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteNDJSON(w io.Writer, entries []model.LogEntry, opt Options) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, e := range entries {
		e.Text = text(e, opt)
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/c360/orthomerge/errors"
	"github.com/c360/orthomerge/pkg/toolexec"
)

// BlastClient drives NCBI BLAST+ through makeblastdb and blastn/blastp.
type BlastClient struct {
	MakeBlastDB string
	Program     string
	DBType      string // nucl or prot
	EValue      float64
	Threads     int
	Runner      *toolexec.Runner
	Logger      *slog.Logger
}

// BuildDatabase indexes fastaPath in place and returns the database path,
// which is the FASTA path itself.
func (c *BlastClient) BuildDatabase(ctx context.Context, fastaPath string) (string, error) {
	args := []string{"-in", fastaPath, "-dbtype", c.dbType(), "-out", fastaPath}
	if err := c.runner().Run(ctx, nil, c.MakeBlastDB, args...); err != nil {
		return "", err
	}
	c.logger().Info("Built search database", "path", fastaPath, "dbtype", c.dbType())
	return fastaPath, nil
}

// Search queries every sequence of the database against the database itself.
// The XML report is staged in a temporary file next to the database.
func (c *BlastClient) Search(ctx context.Context, databasePath string) ([]Report, error) {
	out, err := os.CreateTemp(filepath.Dir(databasePath), "search-*.xml")
	if err != nil {
		return nil, errors.WrapFatal(err, "BlastClient", "Search", "create report file")
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	args := []string{
		"-query", databasePath,
		"-db", databasePath,
		"-outfmt", "5",
		"-evalue", strconv.FormatFloat(c.EValue, 'g', -1, 64),
		"-num_threads", strconv.Itoa(max(c.Threads, 1)),
		"-out", outPath,
	}
	if err := c.runner().Run(ctx, nil, c.Program, args...); err != nil {
		return nil, err
	}

	fh, err := os.Open(outPath)
	if err != nil {
		return nil, errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrExternalTool, err),
			"BlastClient", "Search", "open report")
	}
	defer fh.Close()

	reports, err := DecodeXML(fh)
	if err != nil {
		return nil, err
	}
	c.logger().Info("Similarity search finished", "program", c.Program, "queries", len(reports))
	return reports, nil
}

func (c *BlastClient) dbType() string {
	if c.DBType == "" {
		return "nucl"
	}
	return c.DBType
}

func (c *BlastClient) runner() *toolexec.Runner {
	if c.Runner == nil {
		return &toolexec.Runner{Logger: c.Logger}
	}
	return c.Runner
}

func (c *BlastClient) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

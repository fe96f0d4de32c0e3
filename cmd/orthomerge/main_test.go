package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/orthomerge/orthologize"
)

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--version"}, &stdout, &stderr)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout.String(), "orthomerge version "+Version)
}

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-h"}, &stdout, &stderr)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stderr.String(), "Exit codes")
}

func TestRunInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--bogus"}},
		{"bad log level", []string{"--log-level=trace"}},
		{"bad log format", []string{"--log-format=xml"}},
		{"missing config file", []string{"--config=/nonexistent/orthomerge.yaml"}},
		{"no work dir", []string{"--manifest=list.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ORTHOMERGE_WORK_DIR", "")
			t.Setenv("ORTHOMERGE_MANIFEST", "")
			var stdout, stderr bytes.Buffer
			assert.Equal(t, exitInvalid, run(tt.args, &stdout, &stderr))
		})
	}
}

func TestRunValidate(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	code := run([]string{"--work-dir", dir, "--manifest", "list.txt", "--workers", "2", "--validate"}, &stdout, &stderr)
	assert.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stderr.String(), "Configuration is valid")
}

func TestRunMissingManifest(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	code := run([]string{"--work-dir", dir, "--manifest", "absent.txt"}, &stdout, &stderr)
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, stderr.String(), "input manifest not found")
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

const blastXML = `<?xml version="1.0"?>
<BlastOutput>
  <BlastOutput_iterations>
%s
  </BlastOutput_iterations>
</BlastOutput>
`

func iteration(query string, targets ...string) string {
	var hits strings.Builder
	for _, t := range targets {
		fmt.Fprintf(&hits, `<Hit><Hit_def>%s</Hit_def><Hit_accession>%s</Hit_accession><Hit_hsps><Hsp>
<Hsp_query-from>1</Hsp_query-from><Hsp_query-to>10</Hsp_query-to>
<Hsp_hit-from>1</Hsp_hit-from><Hsp_hit-to>10</Hsp_hit-to></Hsp></Hit_hsps></Hit>`, t, t)
	}
	return fmt.Sprintf(`<Iteration><Iteration_query-def>%s</Iteration_query-def><Iteration_hits>%s</Iteration_hits></Iteration>`,
		query, hits.String())
}

// TestRunEndToEnd drives the binary's run loop with shell stand-ins for
// makeblastdb, blastn and muscle.
func TestRunEndToEnd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	work := t.TempDir()
	tools := t.TempDir()

	seqs := map[string]string{"1": "ACGTACGTAC", "2": "ACGTACGTAC", "3": "TTTTGGGGCC"}
	for id, seq := range seqs {
		require.NoError(t, os.WriteFile(filepath.Join(work, id+".fa"), []byte(">"+id+"\n"+seq+"\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(work, "list.txt"), []byte("1.fa\n2.fa\n3.fa\n1.fa\n"), 0o644))

	xmlPath := filepath.Join(tools, "report.xml")
	xml := fmt.Sprintf(blastXML, iteration("1", "1", "2")+iteration("2", "2", "1")+iteration("3", "3"))
	require.NoError(t, os.WriteFile(xmlPath, []byte(xml), 0o644))

	outArg := `while [ $# -gt 0 ]; do case "$1" in -out) out="$2";; -in1) a="$2";; -in2) b="$2";; esac; shift; done
`
	makeblastdb := writeScript(t, tools, "makeblastdb", "exit 0\n")
	blastn := writeScript(t, tools, "blastn", outArg+`cp "`+xmlPath+`" "$out"`+"\n")
	muscle := writeScript(t, tools, "muscle", outArg+`cat "$a" "$b" > "$out"`+"\n")

	metrics := filepath.Join(work, "orthomerge.prom")
	cfgPath := filepath.Join(tools, "orthomerge.yaml")
	cfgYAML := fmt.Sprintf(`work_dir: %s
manifest: list.txt
max_distance: 0.2
search:
  makeblastdb: %s
  program: %s
  timeout: 1m
aligner:
  path: %s
metrics:
  textfile: %s
`, work, makeblastdb, blastn, muscle, metrics)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-c", cfgPath, "--log-format=json"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	var summary orthologize.Summary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	assert.Equal(t, 2, summary.Clusters)
	assert.Equal(t, 1, summary.MergesAccepted)
	assert.NotEmpty(t, summary.RunID)

	results, err := os.ReadFile(filepath.Join(work, "merged.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(work, "cluster1.fa")+"\n"+filepath.Join(work, "3.fa")+"\n", string(results))

	merged, err := os.ReadFile(filepath.Join(work, "cluster1.fa"))
	require.NoError(t, err)
	assert.Equal(t, ">1\nACGTACGTAC\n", string(merged), "identical rows collapse to the first")

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "orthomerge_clustering_clusters_total 2")
}

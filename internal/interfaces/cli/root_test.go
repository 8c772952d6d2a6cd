package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaratCompare/pkg/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--log-level", "error", "--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "caratctl", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"slug", "enumerate", "describe", "sitemap", "prerender", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestNewRootCommand_GlobalFlags(t *testing.T) {
	pf := NewRootCommand().PersistentFlags()
	cases := map[string]string{"config": "c", "output": "o", "verbose": "v", "log-level": "", "no-color": "", "timeout": ""}
	for name, short := range cases {
		f := pf.Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, short, f.Shorthand, name)
	}
	assert.Equal(t, "text", pf.Lookup("output").DefValue)
}

func TestRoot_InvalidOutputFormat(t *testing.T) {
	_, err := execute(t, "-o", "yaml", "version")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestRoot_MissingConfigFile(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "version")
	assert.Error(t, err)
}

func TestGetCLIContext_Missing(t *testing.T) {
	_, err := GetCLIContext(&cobra.Command{})
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "-o", "json", "version")
	require.NoError(t, err)

	var info BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestSlugEncode(t *testing.T) {
	out, err := execute(t, "slug", "encode", "1.5", "oval", "1", "round")
	require.NoError(t, err)
	assert.Equal(t, "1.5-oval-vs-1-round\n", out)

	out, err = execute(t, "slug", "encode", "1.5", "oval", "1", "round", "--canonical")
	require.NoError(t, err)
	assert.Equal(t, "1-round-vs-1.5-oval\n", out)
}

func TestSlugEncode_Invalid(t *testing.T) {
	_, err := execute(t, "slug", "encode", "1", "square", "1", "round")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, err = execute(t, "slug", "encode", "9", "round", "1", "round", "--canonical")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidSlug))

	_, err = execute(t, "slug", "encode", "1", "round")
	assert.Error(t, err)
}

func TestSlugDecode(t *testing.T) {
	out, err := execute(t, "-o", "json", "slug", "decode", "1.5-oval-vs-1-round")
	require.NoError(t, err)

	var got DecodedSlug
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, DecodedSlug{
		Slug:          "1.5-oval-vs-1-round",
		Carat1:        1.5,
		Shape1:        "oval",
		Carat2:        1,
		Shape2:        "round",
		CanonicalSlug: "1-round-vs-1.5-oval",
	}, got)

	out, err = execute(t, "-o", "table", "slug", "decode", "1-round-vs-1.5-oval")
	require.NoError(t, err)
	assert.Contains(t, out, "Shape")
	assert.Contains(t, out, "oval")
}

func TestSlugDecode_Invalid(t *testing.T) {
	for _, slug := range []string{"1-round", "1-square-vs-1-round", "5-round-vs-1-round"} {
		_, err := execute(t, "slug", "decode", slug)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidSlug), slug)
	}
}

func TestEnumerate(t *testing.T) {
	out, err := execute(t, "enumerate")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 1200)
	assert.Equal(t, "0.5-round-vs-0.75-round", lines[0])

	out, err = execute(t, "enumerate", "--limit", "2", "-o", "json")
	require.NoError(t, err)
	var items []entryJSON
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)
	assert.Equal(t, entryJSON{Slug: "0.5-round-vs-0.75-round", Tier: "round", Priority: 0.9}, items[0])

	out, err = execute(t, "enumerate", "--limit", "3", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Priority")
	assert.Contains(t, out, "0.5-round-vs-0.75-round")
}

func TestEnumerate_NegativeLimit(t *testing.T) {
	_, err := execute(t, "enumerate", "--limit", "-1")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestDescribe(t *testing.T) {
	out, err := execute(t, "describe", "1-round-vs-1.5-round", "--meta")
	require.NoError(t, err)
	assert.Equal(t, "Compare 1ct round vs 1.5ct round. The 1.5ct round is 30% larger. See actual size with measurements.\n", out)

	out, err = execute(t, "-o", "json", "describe", "1-round-vs-1.5-round")
	require.NoError(t, err)
	var d Description
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	require.NotNil(t, d.PercentDifference)
	assert.Equal(t, 30, *d.PercentDifference)
	assert.False(t, d.Missing)
	assert.Contains(t, d.Text, "7.4mm × 7.4mm")
}

func TestDescribe_MissingDimensions(t *testing.T) {
	out, err := execute(t, "-o", "json", "describe", "0.6-round-vs-1-oval")
	require.NoError(t, err)
	var d Description
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.True(t, d.Missing)
	assert.Nil(t, d.PercentDifference)
	assert.NotEmpty(t, d.Text)
}

func TestDescribe_InvalidSlug(t *testing.T) {
	_, err := execute(t, "describe", "round-vs-oval")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidSlug))
}

func TestSitemap_Stdout(t *testing.T) {
	out, err := execute(t, "sitemap", "--base-url", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 1227, strings.Count(out, "<url>"))
	assert.Contains(t, out, "<loc>https://example.com/compare/0.5-round-vs-0.75-round</loc>")
}

func TestSitemap_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitemap.xml")
	out, err := execute(t, "sitemap", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "OK: sitemap written to "+path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<loc>https://www.caratcompare.co/</loc>")
}

func TestPrerender_Dir(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "-o", "json", "prerender", "--out", dir)
	require.NoError(t, err)

	var sum RunSummary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, 1+10+16+1200, sum.Pages)
	assert.Equal(t, "sitemap.xml", sum.SitemapKey)

	for _, key := range []string{"index.html", "oval.html", "carat/1.5.html", "compare/1-round-vs-1.5-round.html", "sitemap.xml", "manifest.json"} {
		_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
		assert.NoError(t, err, key)
	}
}

func TestPrerender_BackendsRequired(t *testing.T) {
	_, err := execute(t, "prerender", "--publish")
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))

	_, err = execute(t, "prerender", "--request")
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))

	_, err = execute(t, "prerender", "--publish", "--request")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestPrintTable_FallsBackToText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printTable(&buf, "plain"))
	assert.Equal(t, "plain\n", buf.String())
}

func TestPrintError_IncludesCode(t *testing.T) {
	cmd := &cobra.Command{}
	var errOut bytes.Buffer
	cmd.SetErr(&errOut)

	PrintError(cmd, errors.New(errors.ErrCodeInvalidSlug, "bad slug").WithDetail("x-vs-y"))
	PrintError(cmd, nil)

	assert.Contains(t, errOut.String(), "[CMP_001]")
	assert.Contains(t, errOut.String(), "x-vs-y")
	assert.Equal(t, 1, strings.Count(errOut.String(), "\n"))
}

func TestRoot_MissingConfigIsConfigError(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "version")
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigError))
}

func TestOutputFormats_Sorted(t *testing.T) {
	assert.Equal(t, []string{"json", "table", "text"}, outputFormats())
}

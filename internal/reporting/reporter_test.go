// internal/reporting/reporter_test.go
package reporting

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/beevik/etree"
	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// seedRun records the scenario most report tests start from: three passes,
// one failure with a screenshot and error detail.
func seedRun(t *testing.T, r *Recorder) {
	t.Helper()
	ok := r.Open("test_valid_login", "valid credentials")
	require.NoError(t, ok.LogStep("Navigate to login page"))
	require.NoError(t, ok.CompleteStep("Navigate to login page"))
	require.NoError(t, ok.Pass("Login succeeded", "screenshots/success/SUCCESS_test_valid_login_a.png"))

	require.NoError(t, r.Open("test_add_item", "").Pass("ok", ""))
	require.NoError(t, r.Open("test_badge", "").Pass("ok", ""))

	bad := r.Open("test_locked_user", "locked user sees an <error>")
	require.NoError(t, bad.Fail("assertion failed", "screenshots/failure/FAILURE_test_locked_user_b.png", "expected \"locked out\" & got nothing"))
}

func TestNewFactory(t *testing.T) {
	for _, format := range []string{FormatHTML, FormatJSON, FormatJUnit} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out."+format)
			r, err := New(format, path)
			require.NoError(t, err)
			assert.FileExists(t, path)
			assert.NoError(t, r.Close())

			r, err = New(format, "stdout")
			require.NoError(t, err)
			assert.NoError(t, r.Close(), "closing stdout is a no-op")
		})
	}

	t.Run("unsupported format creates nothing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.sarif")
		r, err := New("sarif", path)
		require.Error(t, err)
		assert.Nil(t, r)
		assert.Contains(t, err.Error(), "unsupported output format: sarif")
		assert.NoFileExists(t, path)
	})

	t.Run("unwritable path", func(t *testing.T) {
		_, err := New(FormatJSON, filepath.Join(t.TempDir(), "missing", "dir", "x.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create output file")
	})
}

func TestSaveJSONReport(t *testing.T) {
	dir := t.TempDir()
	r, _ := newRecorder(t, dir)
	seedRun(t, r)

	path, err := r.SaveJSONReport()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`Playwright_Report_\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.json$`), filepath.Base(path))
	assert.Equal(t, dir, filepath.Dir(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	keys := []string{`"test_results"`, `"performance_metrics"`, `"screenshots"`, `"execution_summary"`, `"system_info"`}
	last := -1
	for _, k := range keys {
		idx := bytes.Index(raw, []byte(k))
		require.GreaterOrEqual(t, idx, 0, "missing %s", k)
		assert.Greater(t, idx, last, "%s out of order", k)
		last = idx
	}

	var doc struct {
		TestResults []struct {
			ID          string           `json:"test_id"`
			Name        string           `json:"test_name"`
			Status      string           `json:"status"`
			Steps       []map[string]any `json:"steps"`
			Screenshots []struct {
				Type string `json:"type"`
				Path string `json:"path"`
			} `json:"screenshots"`
			ErrorDetails string `json:"error_details"`
		} `json:"test_results"`
		Screenshots      map[string]int    `json:"screenshots"`
		ExecutionSummary ExecutionSummary  `json:"execution_summary"`
		SystemInfo       map[string]string `json:"system_info"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	require.Len(t, doc.TestResults, 4)
	first := doc.TestResults[0]
	assert.Equal(t, "test_valid_login", first.Name)
	assert.Equal(t, "PASSED", first.Status)
	require.Len(t, first.Steps, 1)
	assert.Equal(t, "COMPLETED", first.Steps[0]["status"])
	require.Len(t, first.Screenshots, 1)
	assert.Equal(t, "SUCCESS", first.Screenshots[0].Type)

	assert.Equal(t, "FAILED", doc.TestResults[3].Status)
	assert.Contains(t, doc.TestResults[3].ErrorDetails, "locked out")

	s := doc.ExecutionSummary
	assert.Equal(t, 4, s.TotalTests)
	assert.Equal(t, 3, s.PassedTests)
	assert.Equal(t, 1, s.FailedTests)
	assert.InDelta(t, 75.0, s.PassPercentage, 1e-9)

	assert.Equal(t, 1, doc.Screenshots["success"])
	assert.Equal(t, 1, doc.Screenshots["failure"])
	assert.Equal(t, 2, doc.Screenshots["total"])

	assert.Equal(t, r.RunID(), doc.SystemInfo["run_id"])
	assert.Equal(t, "qa", doc.SystemInfo["test_environment"])
	assert.Equal(t, "5000ms", doc.SystemInfo["performance_threshold"])
}

func TestSaveJSONReportStepDurations(t *testing.T) {
	r, clock := newRecorder(t, t.TempDir())
	clock.step = 0

	tc := r.Open("test_instant_step", "")
	require.NoError(t, tc.LogStep("done at once"))
	require.NoError(t, tc.CompleteStep("done at once"))
	require.NoError(t, tc.LogStep("never finished"))
	require.NoError(t, tc.Fail("stopped", "", "require failed"))

	path, err := r.SaveJSONReport()
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		TestResults []struct {
			Steps []map[string]any `json:"steps"`
		} `json:"test_results"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc.TestResults, 1)
	steps := doc.TestResults[0].Steps
	require.Len(t, steps, 2)

	assert.Equal(t, "COMPLETED", steps[0]["status"])
	require.Contains(t, steps[0], "duration_ms", "a zero-length completed step still has a duration")
	assert.EqualValues(t, 0, steps[0]["duration_ms"])

	assert.Equal(t, "RUNNING", steps[1]["status"])
	assert.NotContains(t, steps[1], "duration_ms")
}

func TestSaveJSONReportEmptyRun(t *testing.T) {
	r, _ := newRecorder(t, t.TempDir())
	path, err := r.SaveJSONReport()
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, []any{}, doc["test_results"])
	assert.EqualValues(t, 0, doc["execution_summary"].(map[string]any)["pass_percentage"])
}

// findAll collects element nodes matching pred.
func findAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && pred(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func TestGenerateHTMLReport(t *testing.T) {
	dir := t.TempDir()
	r, _ := newRecorder(t, dir)
	seedRun(t, r)

	path, err := r.GenerateHTMLReport()
	require.NoError(t, err)
	assert.Regexp(t, `^Playwright_Enhanced_Report_\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.html$`, filepath.Base(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	doc, err := html.Parse(f)
	require.NoError(t, err)

	byID := func(id string) string {
		nodes := findAll(doc, func(n *html.Node) bool { return attr(n, "id") == id })
		require.Len(t, nodes, 1, id)
		return text(nodes[0])
	}
	assert.Contains(t, byID("total"), "4")
	assert.Contains(t, byID("passed"), "3")
	assert.Contains(t, byID("failed"), "1")
	assert.Contains(t, byID("pass-rate"), "75.0%")

	items := findAll(doc, func(n *html.Node) bool { return strings.HasPrefix(attr(n, "class"), "test-item") })
	require.Len(t, items, 4)
	assert.Equal(t, "test-item passed", attr(items[0], "class"))
	assert.Equal(t, "test-item failed", attr(items[3], "class"))
	assert.Contains(t, text(items[3]), "locked user sees an <error>", "text is escaped, not injected")

	imgs := findAll(doc, func(n *html.Node) bool { return n.Data == "img" })
	require.Len(t, imgs, 2)
	assert.Equal(t, "screenshots/success/SUCCESS_test_valid_login_a.png", attr(imgs[0], "src"))

	perf := findAll(items[0], func(n *html.Node) bool { return attr(n, "class") == "performance-good" })
	assert.NotEmpty(t, perf)
}

func TestReportsAreNewFilesPerCall(t *testing.T) {
	dir := t.TempDir()
	r, clock := newRecorder(t, dir)
	clock.step = 0

	first, err := r.GenerateHTMLReport()
	require.NoError(t, err)
	second, err := r.GenerateHTMLReport()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(second, "_2.html"), second)
}

func TestSaveJUnitReport(t *testing.T) {
	r, _ := newRecorder(t, t.TempDir())
	seedRun(t, r)
	require.NoError(t, r.Open("test_sort", "").Skip("skipped", "engine lacks select"))

	path, err := r.SaveJUnitReport()
	require.NoError(t, err)
	assert.Regexp(t, `^Playwright_JUnit_.*\.xml$`, filepath.Base(path))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromFile(path))

	suite := doc.FindElement("/testsuites/testsuite")
	require.NotNil(t, suite)
	assert.Equal(t, "5", suite.SelectAttrValue("tests", ""))
	assert.Equal(t, "1", suite.SelectAttrValue("failures", ""))
	assert.Equal(t, "1", suite.SelectAttrValue("skipped", ""))

	cases := suite.SelectElements("testcase")
	require.Len(t, cases, 5)
	failure := cases[3].SelectElement("failure")
	require.NotNil(t, failure)
	assert.Equal(t, "assertion failed", failure.SelectAttrValue("message", ""))
	assert.Contains(t, failure.Text(), "locked out")

	skipped := cases[4].SelectElement("skipped")
	require.NotNil(t, skipped)
	assert.Equal(t, "engine lacks select", skipped.SelectAttrValue("message", ""))

	out := cases[0].SelectElement("system-out")
	require.NotNil(t, out)
	assert.Contains(t, out.Text(), "[COMPLETED] Navigate to login page")
	assert.Contains(t, out.Text(), "[[ATTACHMENT|screenshots/success/")

	props := suite.FindElements("properties/property")
	assert.NotEmpty(t, props)
	assert.Equal(t, "run_id", props[0].SelectAttrValue("name", ""))
}

func TestRunningTestsAreNotReported(t *testing.T) {
	r, _ := newRecorder(t, t.TempDir())
	r.Open("still_running", "")
	require.NoError(t, r.Open("done", "").Pass("ok", ""))

	rep := r.Snapshot()
	require.Len(t, rep.Results, 1)
	assert.Equal(t, "done", rep.Results[0].Name)
	assert.Equal(t, 2, rep.Stats.Total)
}

func TestHeadline(t *testing.T) {
	assert.Equal(t, "Operating System", headline("operating_system"))
	assert.Equal(t, "Run Id", headline("run_id"))
	assert.Equal(t, "", headline(""))
}

// internal/reporting/junit.go
package reporting

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

type junitReporter struct {
	w io.WriteCloser
}

func seconds(ms float64) string {
	return strconv.FormatFloat(ms/1000, 'f', 3, 64)
}

// JUnitDocument builds the JUnit XML tree for the report.
func (r *Report) JUnitDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	var failures, skipped int
	for _, rec := range r.Results {
		switch rec.Status {
		case StatusFailed:
			failures++
		case StatusSkipped:
			skipped++
		}
	}
	tests := strconv.Itoa(len(r.Results))

	suites := doc.CreateElement("testsuites")
	suites.CreateAttr("name", r.EngineLabel)
	suites.CreateAttr("tests", tests)
	suites.CreateAttr("failures", strconv.Itoa(failures))
	suites.CreateAttr("skipped", strconv.Itoa(skipped))
	suites.CreateAttr("time", seconds(r.Stats.TotalExecutionMs))

	suite := suites.CreateElement("testsuite")
	suite.CreateAttr("name", r.EngineLabel)
	suite.CreateAttr("tests", tests)
	suite.CreateAttr("failures", strconv.Itoa(failures))
	suite.CreateAttr("errors", "0")
	suite.CreateAttr("skipped", strconv.Itoa(skipped))
	suite.CreateAttr("time", seconds(r.Stats.TotalExecutionMs))
	suite.CreateAttr("timestamp", r.GeneratedAt.UTC().Format(time.RFC3339))
	if r.SystemInfo != nil {
		host, _ := r.SystemInfo.Get("hostname")
		suite.CreateAttr("hostname", host)
		props := suite.CreateElement("properties")
		for pair := r.SystemInfo.Oldest(); pair != nil; pair = pair.Next() {
			p := props.CreateElement("property")
			p.CreateAttr("name", pair.Key)
			p.CreateAttr("value", pair.Value)
		}
	}

	for _, rec := range r.Results {
		tc := suite.CreateElement("testcase")
		tc.CreateAttr("name", rec.Name)
		tc.CreateAttr("classname", r.EngineLabel)
		tc.CreateAttr("time", seconds(rec.DurationMs))

		switch rec.Status {
		case StatusFailed:
			f := tc.CreateElement("failure")
			f.CreateAttr("message", rec.ResultMessage)
			f.CreateAttr("type", "AssertionError")
			if rec.ErrorDetails != "" {
				f.SetText(rec.ErrorDetails)
			}
		case StatusSkipped:
			s := tc.CreateElement("skipped")
			msg := rec.SkipReason
			if msg == "" {
				msg = rec.ResultMessage
			}
			s.CreateAttr("message", msg)
		}

		if len(rec.Steps) > 0 || len(rec.Screenshots) > 0 {
			var b strings.Builder
			for _, s := range rec.Steps {
				b.WriteString("[" + string(s.Status) + "] " + s.Description)
				if s.Status == StepCompleted {
					b.WriteString(" (" + strconv.FormatFloat(s.Millis(), 'f', 0, 64) + "ms)")
				}
				b.WriteByte('\n')
			}
			for _, s := range rec.Screenshots {
				b.WriteString("[[ATTACHMENT|" + s.Path + "]]\n")
			}
			tc.CreateElement("system-out").SetText(b.String())
		}
	}

	doc.Indent(2)
	return doc
}

func (j *junitReporter) Write(r *Report) error {
	_, err := r.JUnitDocument().WriteTo(j.w)
	return err
}

func (j *junitReporter) Close() error {
	return j.w.Close()
}

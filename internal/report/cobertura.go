package report

import (
	"encoding/xml"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/cobertura/internal/model"
)

const (
	xmlProlog  = `<?xml version="1.0"?>`
	xmlDoctype = `<!DOCTYPE coverage SYSTEM 'http://cobertura.sourceforge.net/xml/coverage-04.dtd'>`
	xmlIndent  = "    "

	// schemaVersion is the Cobertura DTD version the document declares.
	schemaVersion = "1.9"
)

// CoberturaWriter renders a coverage tree as a Cobertura coverage-04 XML
// document: prolog, DOCTYPE, then the coverage element tree with 4-space
// indentation.
//
// Design decision: The document is marshaled through shadow structs
// rather than hand-written element by element. encoding/xml guarantees
// every start tag gets a matching end tag and escapes attribute values
// and character data, so a malformed path or symbol name can never break
// the document. The whole report is buffered and written in a single
// call; a failed write never leaves a truncated file that parses as a
// smaller report.
type CoberturaWriter struct {
	baseWriter
	clock func() time.Time
}

// CoberturaOption configures a CoberturaWriter.
type CoberturaOption func(*CoberturaWriter)

// WithClock sets the time source for the report timestamp attribute.
// The default is time.Now; tests inject a fixed clock to pin output.
func WithClock(clock func() time.Time) CoberturaOption {
	return func(w *CoberturaWriter) {
		w.clock = clock
	}
}

// NewCoberturaWriter creates a CoberturaWriter that writes to output.
func NewCoberturaWriter(output io.Writer, opts ...CoberturaOption) *CoberturaWriter {
	w := &CoberturaWriter{
		baseWriter: newBaseWriter(output),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the full document and writes it to the output in a
// single call. Returns the number of bytes written.
func (w *CoberturaWriter) Write(coverage *model.Coverage) (int, error) {
	doc, err := w.encode(coverage)
	if err != nil {
		return 0, err
	}
	return w.output.Write(doc)
}

func (w *CoberturaWriter) encode(coverage *model.Coverage) ([]byte, error) {
	body, err := xml.MarshalIndent(coverageElement(coverage, w.timestamp()), "", xmlIndent)
	if err != nil {
		return nil, err
	}

	doc := make([]byte, 0, len(xmlProlog)+len(xmlDoctype)+len(body)+2)
	doc = append(doc, xmlProlog...)
	doc = append(doc, '\n')
	doc = append(doc, xmlDoctype...)
	doc = append(doc, '\n')
	doc = append(doc, body...)
	return doc, nil
}

// timestamp returns seconds since the Unix epoch as a decimal string,
// clamped to "0" when the clock reads before the epoch.
func (w *CoberturaWriter) timestamp() string {
	secs := w.clock().Unix()
	if secs < 0 {
		secs = 0
	}
	return strconv.FormatInt(secs, 10)
}

// The shadow structs below mirror the coverage-04 schema one element per
// struct. encoding/xml emits attributes and children in field order, so
// the field order here is the attribute order in the document.

type coverageXML struct {
	XMLName         xml.Name    `xml:"coverage"`
	LinesCovered    int         `xml:"lines-covered,attr"`
	LinesValid      int         `xml:"lines-valid,attr"`
	LineRate        string      `xml:"line-rate,attr"`
	BranchesCovered int         `xml:"branches-covered,attr"`
	BranchesValid   int         `xml:"branches-valid,attr"`
	BranchRate      string      `xml:"branch-rate,attr"`
	Complexity      string      `xml:"complexity,attr"`
	Version         string      `xml:"version,attr"`
	Timestamp       string      `xml:"timestamp,attr"`
	Sources         sourcesXML  `xml:"sources"`
	Packages        packagesXML `xml:"packages"`
}

type sourcesXML struct {
	Sources []string `xml:"source"`
}

type packagesXML struct {
	Packages []packageXML `xml:"package"`
}

type packageXML struct {
	Name       string     `xml:"name,attr"`
	LineRate   string     `xml:"line-rate,attr"`
	BranchRate string     `xml:"branch-rate,attr"`
	Complexity string     `xml:"complexity,attr"`
	Classes    classesXML `xml:"classes"`
}

type classesXML struct {
	Classes []classXML `xml:"class"`
}

type classXML struct {
	Name       string     `xml:"name,attr"`
	Filename   string     `xml:"filename,attr"`
	LineRate   string     `xml:"line-rate,attr"`
	BranchRate string     `xml:"branch-rate,attr"`
	Complexity string     `xml:"complexity,attr"`
	Methods    methodsXML `xml:"methods"`
	Lines      linesXML   `xml:"lines"`
}

type methodsXML struct {
	Methods []methodXML `xml:"method"`
}

type methodXML struct {
	Name       string   `xml:"name,attr"`
	Signature  string   `xml:"signature,attr"`
	LineRate   string   `xml:"line-rate,attr"`
	BranchRate string   `xml:"branch-rate,attr"`
	Complexity string   `xml:"complexity,attr"`
	Lines      linesXML `xml:"lines"`
}

type linesXML struct {
	Lines []lineXML `xml:"line"`
}

type lineXML struct {
	Number     int            `xml:"number,attr"`
	Hits       uint64         `xml:"hits,attr"`
	Branch     string         `xml:"branch,attr,omitempty"`
	Conditions *conditionsXML `xml:"conditions,omitempty"`
}

type conditionsXML struct {
	Conditions []conditionXML `xml:"condition"`
}

type conditionXML struct {
	Number   int    `xml:"number,attr"`
	Type     string `xml:"type,attr"`
	Coverage string `xml:"coverage,attr"`
}

func coverageElement(coverage *model.Coverage, timestamp string) coverageXML {
	stats := coverage.Stats()
	root := coverageXML{
		LinesCovered:    stats.LinesCovered,
		LinesValid:      stats.LinesValid,
		LineRate:        formatRate(stats.LineRate()),
		BranchesCovered: stats.BranchesCovered,
		BranchesValid:   stats.BranchesValid,
		BranchRate:      formatRate(stats.BranchRate()),
		Complexity:      "0",
		Version:         schemaVersion,
		Timestamp:       timestamp,
	}
	root.Sources.Sources = coverage.Sources
	for i := range coverage.Packages {
		root.Packages.Packages = append(root.Packages.Packages, packageElement(&coverage.Packages[i]))
	}
	return root
}

func packageElement(pkg *model.Package) packageXML {
	stats := pkg.Stats()
	out := packageXML{
		Name:       pkg.Name,
		LineRate:   formatRate(stats.LineRate()),
		BranchRate: formatRate(stats.BranchRate()),
		Complexity: "0",
	}
	for i := range pkg.Classes {
		out.Classes.Classes = append(out.Classes.Classes, classElement(&pkg.Classes[i]))
	}
	return out
}

// classElement renders one class: methods first, then the class-level
// lines no function claimed.
func classElement(class *model.Class) classXML {
	stats := class.Stats()
	out := classXML{
		Name:       class.Name,
		Filename:   class.Filename,
		LineRate:   formatRate(stats.LineRate()),
		BranchRate: formatRate(stats.BranchRate()),
		Complexity: "0",
		Lines:      linesElement(class.Lines),
	}
	for i := range class.Methods {
		out.Methods.Methods = append(out.Methods.Methods, methodElement(&class.Methods[i]))
	}
	return out
}

func methodElement(method *model.Method) methodXML {
	stats := method.Stats()
	return methodXML{
		Name:       method.Name,
		Signature:  method.Signature,
		LineRate:   formatRate(stats.LineRate()),
		BranchRate: formatRate(stats.BranchRate()),
		Complexity: "0",
		Lines:      linesElement(method.Lines),
	}
}

func linesElement(lines []model.Line) linesXML {
	var out linesXML
	for _, line := range lines {
		out.Lines = append(out.Lines, lineElement(line))
	}
	return out
}

func lineElement(line model.Line) lineXML {
	out := lineXML{
		Number: line.Number,
		Hits:   line.Hits,
	}
	if line.Kind != model.LineBranch {
		return out
	}

	out.Branch = "true"
	out.Conditions = &conditionsXML{}
	for _, condition := range line.Conditions {
		out.Conditions.Conditions = append(out.Conditions.Conditions, conditionXML{
			Number:   condition.Number,
			Type:     condition.Type,
			Coverage: formatRate(condition.Coverage),
		})
	}
	return out
}

// formatRate renders a rate in its shortest decimal form: "0.75", "1",
// "0". Counts stay integers; only rates and condition coverage use this.
func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}

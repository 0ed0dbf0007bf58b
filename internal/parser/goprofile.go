package parser

import (
	"bytes"
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/cover"

	"github.com/nao1215/cobertura/internal/model"
)

// parseGoProfile decodes a go test -coverprofile file. Coverage blocks
// expand to per-line hit counts; when blocks overlap on a line, the larger
// count wins. Function names and start lines come from parsing the source
// files themselves, so a file that cannot be found under the source root
// reports no functions and all its lines stay at class level.
func (p *Parser) parseGoProfile(data []byte) ([]model.FileCoverage, error) {
	profiles, err := cover.ParseProfilesFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse go cover profile: %w", err)
	}

	var files []model.FileCoverage
	for _, profile := range profiles {
		relPath := p.relPath(profile.FileName)
		if !p.keep(relPath) {
			continue
		}

		result := model.NewCoverageResult()
		for _, block := range profile.Blocks {
			hits := uint64(block.Count)
			for number := block.StartLine; number <= block.EndLine; number++ {
				if existing, ok := result.Lines[number]; !ok || hits > existing {
					result.Lines[number] = hits
				}
			}
		}

		path := profile.FileName
		if source := p.findSource(profile.FileName); source != "" {
			path = source
			if functions := sourceFunctions(source, result.Lines); functions != nil {
				result.Functions = functions
			}
		}

		files = append(files, model.FileCoverage{
			Path:    path,
			RelPath: relPath,
			Result:  result,
		})
	}
	return files, nil
}

// findSource resolves a profile file name, which for Go profiles is an
// import-path-shaped name such as example.com/mod/pkg/file.go, to a file
// under the source root. Leading path elements are dropped one at a time
// until something exists.
func (p *Parser) findSource(fileName string) string {
	if filepath.IsAbs(fileName) {
		if info, err := os.Stat(fileName); err == nil && !info.IsDir() {
			return fileName
		}
		return ""
	}
	root := p.sourceRoot
	if root == "" {
		root = "."
	}
	rest := fileName
	for {
		candidate := filepath.Join(root, filepath.FromSlash(rest))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		i := strings.IndexByte(rest, '/')
		if i < 0 {
			return ""
		}
		rest = rest[i+1:]
	}
}

// sourceFunctions lists the top-level functions of a Go source file keyed
// by name, methods as Type.Name. Executed is taken from the hit count on
// the function's first line, where go test's first block for the function
// starts. Returns nil when the file cannot be parsed.
func sourceFunctions(path string, lines map[int]uint64) map[string]model.FunctionCoverage {
	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, path, nil, 0)
	if err != nil {
		return nil
	}

	functions := make(map[string]model.FunctionCoverage)
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}
		start := fset.Position(fn.Pos()).Line
		functions[funcName(fn)] = model.FunctionCoverage{
			Start:    start,
			Executed: lines[start] > 0,
		}
	}
	return functions
}

func funcName(fn *ast.FuncDecl) string {
	name := fn.Name.Name
	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		if recv := receiverName(fn.Recv.List[0].Type); recv != "" {
			return recv + "." + name
		}
	}
	return name
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	}
	return ""
}

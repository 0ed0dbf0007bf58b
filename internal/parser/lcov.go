package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/nao1215/cobertura/internal/model"
)

// parseLCOV decodes an LCOV tracefile. Each SF section becomes one
// FileCoverage. Record types the converter has no use for (TN, LF, LH,
// FNF, FNH, BRF, BRH and anything unknown) are skipped. Hit counts that
// do not parse count as zero; a record whose line number does not parse,
// or that appears before any SF record, fails the whole file.
func (p *Parser) parseLCOV(data []byte, name string) ([]model.FileCoverage, error) {
	var (
		files   []model.FileCoverage
		current *model.FileCoverage
	)

	flush := func() {
		if current == nil {
			return
		}
		if p.keep(current.RelPath) {
			files = append(files, *current)
		}
		current = nil
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "end_of_record" {
			flush()
			continue
		}

		tag, rest, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		switch tag {
		case "SF":
			// geninfo always closes sections, but a tracefile cut
			// together by hand may not. Start over either way.
			flush()
			path := strings.TrimSpace(rest)
			file := model.FileCoverage{
				Path:    path,
				RelPath: p.relPath(path),
				Result:  model.NewCoverageResult(),
			}
			current = &file
		case "DA":
			if current == nil {
				return nil, recordErr(name, lineNum, ErrRecordOutsideFile)
			}
			fields := strings.Split(rest, ",")
			number, err := strconv.Atoi(strings.TrimSpace(fields[0]))
			if err != nil {
				return nil, recordErr(name, lineNum, ErrMalformedRecord)
			}
			var hits uint64
			if len(fields) > 1 {
				hits, _ = strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 64)
			}
			current.Result.Lines[number] += hits
		case "BRDA":
			if current == nil {
				return nil, recordErr(name, lineNum, ErrRecordOutsideFile)
			}
			fields := strings.Split(rest, ",")
			if len(fields) < 4 {
				return nil, recordErr(name, lineNum, ErrMalformedRecord)
			}
			number, err := strconv.Atoi(strings.TrimSpace(fields[0]))
			if err != nil {
				return nil, recordErr(name, lineNum, ErrMalformedRecord)
			}
			taken := false
			if s := strings.TrimSpace(fields[3]); s != "-" {
				n, _ := strconv.ParseUint(s, 10, 64)
				taken = n > 0
			}
			current.Result.Branches[number] = append(current.Result.Branches[number], taken)
		case "FN":
			if current == nil {
				return nil, recordErr(name, lineNum, ErrRecordOutsideFile)
			}
			numberStr, fnName, found := strings.Cut(rest, ",")
			if !found {
				return nil, recordErr(name, lineNum, ErrMalformedRecord)
			}
			start, err := strconv.Atoi(strings.TrimSpace(numberStr))
			if err != nil {
				return nil, recordErr(name, lineNum, ErrMalformedRecord)
			}
			// Newer lcov writes FN:<start>,<end>,<name>.
			if endStr, tail, found := strings.Cut(fnName, ","); found {
				if _, err := strconv.Atoi(strings.TrimSpace(endStr)); err == nil {
					fnName = tail
				}
			}
			fn := current.Result.Functions[fnName]
			fn.Start = start
			current.Result.Functions[fnName] = fn
		case "FNDA":
			if current == nil {
				return nil, recordErr(name, lineNum, ErrRecordOutsideFile)
			}
			hitsStr, fnName, found := strings.Cut(rest, ",")
			if !found {
				return nil, recordErr(name, lineNum, ErrMalformedRecord)
			}
			hits, _ := strconv.ParseUint(strings.TrimSpace(hitsStr), 10, 64)
			fn := current.Result.Functions[fnName]
			fn.Executed = fn.Executed || hits > 0
			current.Result.Functions[fnName] = fn
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read coverage profile: %w", err)
	}
	flush()
	return files, nil
}

func recordErr(name string, line int, err error) error {
	return fmt.Errorf("%s line %d: %w", name, line, err)
}

package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/identity"
)

type ruleClass int

const (
	classComplexity ruleClass = iota
	classMaxLines
)

// lintRule declares how the message of one lint rule is read
type lintRule struct {
	class    ruleClass
	pattern  *regexp.Regexp
	offender domain.OffenderKind
}

var (
	tooManyLines = regexp.MustCompile(`too many lines \((\d+)\)(?:\. Maximum allowed is (\d+))?`)

	lintRules = map[string]lintRule{
		"complexity": {
			class:   classComplexity,
			pattern: regexp.MustCompile(`complexity of (\d+)`),
		},
		"sonarjs/cognitive-complexity": {
			class:   classComplexity,
			pattern: regexp.MustCompile(`Cognitive Complexity from (\d+)`),
		},
		"max-depth": {
			class:   classComplexity,
			pattern: regexp.MustCompile(`nested too deeply \((\d+)\)`),
		},
		"max-params": {
			class:   classComplexity,
			pattern: regexp.MustCompile(`too many parameters \((\d+)\)`),
		},
		"@typescript-eslint/max-params": {
			class:   classComplexity,
			pattern: regexp.MustCompile(`too many parameters \((\d+)\)`),
		},
		"max-statements": {
			class:   classComplexity,
			pattern: regexp.MustCompile(`too many statements \((\d+)\)`),
		},
		"max-nested-callbacks": {
			class:   classComplexity,
			pattern: regexp.MustCompile(`nested callbacks \((\d+)\)`),
		},
		"max-lines": {
			class:    classMaxLines,
			pattern:  tooManyLines,
			offender: domain.OffenderKindFile,
		},
		"max-lines-per-function": {
			class:    classMaxLines,
			pattern:  tooManyLines,
			offender: domain.OffenderKindFunction,
		},
	}
)

// KnownRule reports whether ruleID contributes to the violation slices
func KnownRule(ruleID string) bool {
	_, ok := lintRules[ruleID]
	return ok
}

// Violations splits lint messages into complexity findings and line-limit
// offenders. Unknown rules are ignored. When a line-limit message carries no
// parsable limit, the configured threshold for its kind is used.
func Violations(lint *domain.LintReport, res *identity.Resolver, limits domain.Thresholds) ([]domain.ComplexFunction, []domain.MaxLineOffender) {
	functions := []domain.ComplexFunction{}
	offenders := []domain.MaxLineOffender{}
	if lint == nil {
		return functions, offenders
	}

	for _, f := range lint.Files {
		var (
			id       domain.FileIdentity
			resolved bool
			ok       bool
		)
		for _, msg := range f.Messages {
			rule, known := lintRules[msg.RuleID]
			if !known {
				continue
			}
			if !resolved {
				id, ok = identify(res, f.FilePath)
				resolved = true
			}
			if !ok {
				break
			}

			switch rule.class {
			case classComplexity:
				cf := domain.ComplexFunction{
					File:    id,
					Line:    msg.Line,
					RuleID:  msg.RuleID,
					Message: msg.Message,
				}
				if n, found := firstNumber(rule.pattern, msg.Message); found {
					cf.Metric = domain.IntPtr(n)
				}
				functions = append(functions, cf)

			case classMaxLines:
				observed, limit, found := lineLimit(rule.pattern, msg.Message)
				if !found {
					continue
				}
				if limit == 0 {
					limit = configuredLimit(rule.offender, limits)
				}
				o := domain.MaxLineOffender{
					File:  id,
					Kind:  rule.offender,
					Value: observed,
					Limit: limit,
				}
				if rule.offender == domain.OffenderKindFunction {
					o.Line = msg.Line
				}
				offenders = append(offenders, o)
			}
		}
	}

	sortComplexFunctions(functions)
	sortOffenders(offenders)
	return functions, offenders
}

func firstNumber(re *regexp.Regexp, msg string) (int, bool) {
	m := re.FindStringSubmatch(msg)
	if len(m) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// lineLimit parses observed and limit in that order. A missing limit is
// returned as zero.
func lineLimit(re *regexp.Regexp, msg string) (observed, limit int, ok bool) {
	m := re.FindStringSubmatch(msg)
	if len(m) < 2 {
		return 0, 0, false
	}
	observed, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	if len(m) > 2 && strings.TrimSpace(m[2]) != "" {
		limit, _ = strconv.Atoi(m[2])
	}
	return observed, limit, true
}

func configuredLimit(kind domain.OffenderKind, limits domain.Thresholds) int {
	if kind == domain.OffenderKindFunction {
		return limits.MaxFunctionLines
	}
	return limits.MaxFileLines
}

// sortComplexFunctions orders by metric descending with unmeasured findings
// last, then by file, line and rule
func sortComplexFunctions(cs []domain.ComplexFunction) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		switch {
		case a.Metric != nil && b.Metric == nil:
			return true
		case a.Metric == nil && b.Metric != nil:
			return false
		case a.Metric != nil && *a.Metric != *b.Metric:
			return *a.Metric > *b.Metric
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.RuleID < b.RuleID
	})
}

func sortOffenders(offs []domain.MaxLineOffender) {
	sort.SliceStable(offs, func(i, j int) bool {
		a, b := offs[i], offs[j]
		if a.Value != b.Value {
			return a.Value > b.Value
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Line < b.Line
	})
}

package query

import (
	"geoq/common"
	"geoq/feature"
	"geoq/index"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"regexp"
	"strings"
)

// Compiled patterns are shared between expressions, since the same patterns are usually used over and over again.
var regexCache = index.NewLruCache[string, *regexp.Regexp](64)

type FilterExpression interface {
	Applies(feature feature.Feature) (bool, error)
	Print(indent int)
}

type NegatedFilterExpression struct {
	baseExpression FilterExpression
}

func NewNegatedFilterExpression(baseExpression FilterExpression) *NegatedFilterExpression {
	return &NegatedFilterExpression{baseExpression: baseExpression}
}

func (f NegatedFilterExpression) Applies(feature feature.Feature) (bool, error) {
	sigolo.Tracef("NegatedFilterExpression")
	applies, err := f.baseExpression.Applies(feature)
	if err != nil {
		return false, err
	}
	return !applies, nil
}

func (f NegatedFilterExpression) Print(indent int) {
	sigolo.Debugf("%s%s", spacing(indent), LogicOpNot.String())
	f.baseExpression.Print(indent + 2)
}

func (f NegatedFilterExpression) GetBaseExpression() FilterExpression {
	return f.baseExpression
}

type LogicalFilterExpression struct {
	statementA FilterExpression
	statementB FilterExpression
	operator   LogicalOperator
}

func NewLogicalFilterExpression(statementA FilterExpression, statementB FilterExpression, operator LogicalOperator) *LogicalFilterExpression {
	return &LogicalFilterExpression{
		statementA: statementA,
		statementB: statementB,
		operator:   operator,
	}
}

func (f LogicalFilterExpression) Applies(feature feature.Feature) (bool, error) {
	sigolo.Tracef("LogicalFilterExpression: Operator %s", f.operator.String())

	if f.operator == LogicOpOr || f.operator == LogicOpAnd {
		aApplies, err := f.statementA.Applies(feature)
		if err != nil || (f.operator == LogicOpAnd && !aApplies) {
			// Error or early exit for "and" expressions where statementA doesn't apply
			return false, err
		}
		if f.operator == LogicOpOr && aApplies {
			return true, nil
		}

		return f.statementB.Applies(feature)
	}

	return false, errors.Errorf("Operator %s not supported in LogicalFilterExpression", f.operator.String())
}

func (f LogicalFilterExpression) Print(indent int) {
	sigolo.Debugf("%sLogicalFilter:", spacing(indent))
	f.statementA.Print(indent + 2)
	sigolo.Debugf("%s%s", spacing(indent), f.operator.String())
	f.statementB.Print(indent + 2)
}

func (f LogicalFilterExpression) GetParameter() (FilterExpression, FilterExpression, LogicalOperator) {
	return f.statementA, f.statementB, f.operator
}

// AttributeFilterExpression compares an attribute with a fixed value. Two numbers are compared numerically, everything
// else in natural order, which means that "10" is greater than "9". Features without the attribute never match.
type AttributeFilterExpression struct {
	key      string
	value    feature.Value
	operator BinaryOperator
}

func NewAttributeFilterExpression(key string, value feature.Value, operator BinaryOperator) *AttributeFilterExpression {
	return &AttributeFilterExpression{
		key:      key,
		value:    value,
		operator: operator,
	}
}

func (f AttributeFilterExpression) Applies(feature feature.Feature) (bool, error) {
	if sigolo.ShouldLogTrace() {
		sigolo.Tracef("AttributeFilterExpression: %s%s%s", f.key, f.operator.String(), f.value.String())
	}

	attribute, ok := feature.GetAttribute(f.key)
	if !ok {
		return false, nil
	}

	return f.operator.evaluate(compareValues(attribute, f.value))
}

func (f AttributeFilterExpression) Print(indent int) {
	sigolo.Debugf("%s%s: %s%s%s", spacing(indent), "AttributeFilterExpression", f.key, f.operator.String(), f.value.String())
}

func (f AttributeFilterExpression) GetParameter() (string, feature.Value, BinaryOperator) {
	return f.key, f.value, f.operator
}

func compareValues(a feature.Value, b feature.Value) int {
	numberA, aIsNumber := a.Number()
	numberB, bIsNumber := b.Number()
	if aIsNumber && bIsNumber {
		if numberA < numberB {
			return -1
		} else if numberA > numberB {
			return 1
		}
		return 0
	}
	return common.CompareNatural(a.String(), b.String())
}

type KeyFilterExpression struct {
	key         string
	shouldBeSet bool
}

func NewKeyFilterExpression(key string, shouldBeSet bool) *KeyFilterExpression {
	return &KeyFilterExpression{
		key:         key,
		shouldBeSet: shouldBeSet,
	}
}

func (f KeyFilterExpression) Applies(feature feature.Feature) (bool, error) {
	if sigolo.ShouldLogTrace() {
		sigolo.Tracef("KeyFilterExpression: HasKey(%s)=%v?", f.key, f.shouldBeSet)
	}

	_, ok := feature.GetAttribute(f.key)
	return ok == f.shouldBeSet, nil
}

func (f KeyFilterExpression) Print(indent int) {
	sigolo.Debugf("%s%s: %s (shouldBeSet=%v)", spacing(indent), "KeyFilterExpression", f.key, f.shouldBeSet)
}

func (f KeyFilterExpression) GetParameter() (string, bool) {
	return f.key, f.shouldBeSet
}

// RegexFilterExpression matches the textual representation of an attribute against a regular expression. The pattern
// is not anchored, so "caf" matches "Cafe Blue" when the pattern is "(?i)caf".
type RegexFilterExpression struct {
	key   string
	regex *regexp.Regexp
}

func NewRegexFilterExpression(key string, pattern string) (*RegexFilterExpression, error) {
	regex, ok := regexCache.Get(pattern)
	if !ok {
		var err error
		regex, err = regexp.Compile(pattern)
		if err != nil {
			return nil, common.WrapQueryError(err, "search", "invalid regular expression '%s'", pattern)
		}
		regexCache.Put(pattern, regex)
	}

	return &RegexFilterExpression{
		key:   key,
		regex: regex,
	}, nil
}

func (f RegexFilterExpression) Applies(feature feature.Feature) (bool, error) {
	if sigolo.ShouldLogTrace() {
		sigolo.Tracef("RegexFilterExpression: %s~%s", f.key, f.regex.String())
	}

	attribute, ok := feature.GetAttribute(f.key)
	if !ok {
		return false, nil
	}

	return f.regex.MatchString(attribute.String()), nil
}

func (f RegexFilterExpression) Print(indent int) {
	sigolo.Debugf("%s%s: %s~\"%s\"", spacing(indent), "RegexFilterExpression", f.key, f.regex.String())
}

func (f RegexFilterExpression) GetParameter() (string, string) {
	return f.key, f.regex.String()
}

func spacing(indent int) string {
	return strings.Repeat(" ", indent)
}

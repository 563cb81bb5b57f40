package parser

import (
	"fmt"
	"geoq/feature"
	"geoq/geometry"
	"geoq/query"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"math"
	"slices"
	"strconv"
	"strings"
)

var (
	bboxLocationExpression       = "bbox"
	radiusLocationExpression     = "radius"
	containingLocationExpression = "containing"
	nearestLocationExpression    = "nearest"
	allLocationExpression        = "all"
	locationExpressions          = []string{bboxLocationExpression, radiusLocationExpression, containingLocationExpression, nearestLocationExpression, allLocationExpression}

	objectTypePointsExpression   = "points"
	objectTypeShapesExpression   = "shapes"
	objectTypeEntitiesExpression = "entities"
)

// Parser turns the token stream of a query string into a query. Each parse function starts at the first token of the
// construct it parses and leaves the parser at the last token of that construct.
type Parser struct {
	token []*Token
	index int
}

// ParseQueryString parses queries like
//
//	bbox(1.2, 103.6, 1.5, 104.1).points{ amenity=cafe AND name~"(?i)blue" }
//	containing(1.35, 103.8).shapes{ }
func ParseQueryString(queryString string) (*query.Query, error) {
	runes := []rune(strings.Trim(queryString, "\n\r\t "))
	lexer := Lexer{
		input: runes,
		index: 0,
	}

	token, err := lexer.read()
	if err != nil {
		return nil, err
	}

	if sigolo.ShouldLogTrace() {
		sigolo.Tracef("Found %d token", len(token))
		for _, t := range token {
			sigolo.Tracef("  %s", t.String())
		}
	}

	parser := Parser{
		token: token,
		index: 0,
	}
	return parser.parse()
}

func (p *Parser) moveToNextToken() *Token {
	p.index++
	if sigolo.ShouldLogTrace() {
		sigolo.Traceb(1, "Moved to next token: %+v", p.currentToken())
	}
	return p.currentToken()
}

func (p *Parser) peekNextToken() *Token {
	if p.index+1 >= len(p.token) {
		return nil
	}
	return p.token[p.index+1]
}

func (p *Parser) hasNextToken() bool {
	return p.peekNextToken() != nil
}

func (p *Parser) getNextTokenStartPosition() int {
	if p.hasNextToken() {
		return p.peekNextToken().startPosition
	} else if p.currentToken() != nil {
		// No next token, so the start position of this hypothetical next token is right behind the current one.
		return p.currentToken().startPosition + len(p.currentToken().lexeme)
	}
	return -1
}

func (p *Parser) currentToken() *Token {
	if p.index >= len(p.token) {
		return nil
	}
	return p.token[p.index]
}

// moveToNextTokenOfKind moves to the next token and returns an error if there is none or if it's of another kind.
func (p *Parser) moveToNextTokenOfKind(kind TokenKind) (*Token, error) {
	if !p.hasNextToken() {
		return nil, ParsingTokenStreamEndAtPosition(p.getNextTokenStartPosition(), fmt.Sprintf("'%s'", kind.Lexeme()))
	}
	token := p.moveToNextToken()
	if token.kind != kind {
		return nil, ParsingErrorExpectedTokenKind(token.startPosition, token.lexeme, token.kind, kind)
	}
	return token, nil
}

func (p *Parser) parse() (*query.Query, error) {
	var topLevelStatements []query.Statement

	for p.currentToken() != nil {
		statement, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		topLevelStatements = append(topLevelStatements, *statement)
		p.moveToNextToken()
	}

	if len(topLevelStatements) == 0 {
		return nil, ParsingTokenStreamEndAtPosition(0, "location expression")
	}

	return query.NewQuery(topLevelStatements), nil
}

func (p *Parser) parseStatement() (*query.Statement, error) {
	// We start with a fresh statement, so the first thing we expect is a location expression (e.g. "bbox")
	locationExpression, err := p.parseLocationExpression()
	if err != nil {
		return nil, err
	}

	// Then a '.'
	_, err = p.moveToNextTokenOfKind(TokenKindExpressionSeparator)
	if err != nil {
		return nil, err
	}

	// Then object type (e.g. "points")
	_, err = p.moveToNextTokenOfKind(TokenKindKeyword)
	if err != nil {
		return nil, err
	}
	objectType, err := p.parseObjectType()
	if err != nil {
		return nil, err
	}

	// Then "{"
	_, err = p.moveToNextTokenOfKind(TokenKindOpeningBraces)
	if err != nil {
		return nil, err
	}

	// Then an optional filter expression
	var filterExpression query.FilterExpression
	if nextToken := p.peekNextToken(); nextToken == nil || nextToken.kind != TokenKindClosingBraces {
		filterExpression, err = p.parseNextFilterExpressions()
		if err != nil {
			return nil, err
		}
	}

	// Then finally "}"
	_, err = p.moveToNextTokenOfKind(TokenKindClosingBraces)
	if err != nil {
		return nil, err
	}

	return query.NewStatement(locationExpression, objectType, filterExpression), nil
}

func (p *Parser) parseLocationExpression() (query.LocationExpression, error) {
	token := p.currentToken()
	if token == nil {
		return nil, ParsingTokenStreamEndAtPosition(p.getNextTokenStartPosition(), "location expression")
	}
	if token.kind != TokenKindKeyword || !slices.Contains(locationExpressions, token.lexeme) {
		return nil, ParsingErrorExpectedButFound(fmt.Sprintf("location expression (one of: %s)", strings.Join(locationExpressions, ", ")), token.startPosition, token.lexeme, token.kind)
	}

	var locationExpression query.LocationExpression
	var err error

	switch token.lexeme {
	case bboxLocationExpression:
		locationExpression, err = p.parseBboxLocationExpression()
	case radiusLocationExpression:
		locationExpression, err = p.parseRadiusLocationExpression()
	case containingLocationExpression:
		locationExpression, err = p.parseContainingLocationExpression()
	case nearestLocationExpression:
		locationExpression, err = p.parseNearestLocationExpression()
	default:
		locationExpression = query.NewAllLocationExpression()
	}

	if err != nil {
		return nil, err
	}

	return locationExpression, nil
}

// parseNumberArguments parses "(n1, n2, ...)" with exactly the given amount of numbers. The current token must be the
// name of the function, e.g. "bbox".
func (p *Parser) parseNumberArguments(functionName string, count int) ([]float64, error) {
	_, err := p.moveToNextTokenOfKind(TokenKindOpeningParenthesis)
	if err != nil {
		return nil, err
	}

	var arguments []float64
	for i := 0; i < count; i++ {
		if !p.hasNextToken() {
			return nil, ParsingTokenStreamEndAtPosition(p.getNextTokenStartPosition(), fmt.Sprintf("number as argument %d of %s-expression", i+1, functionName))
		}
		token := p.moveToNextToken()
		value, err := strconv.ParseFloat(token.lexeme, 64)
		if token.kind != TokenKindNumber || err != nil {
			return nil, ParsingErrorExpectedButFound(fmt.Sprintf("number as argument %d of %s-expression", i+1, functionName), token.startPosition, token.lexeme, token.kind)
		}
		arguments = append(arguments, value)
	}

	_, err = p.moveToNextTokenOfKind(TokenKindClosingParenthesis)
	if err != nil {
		return nil, err
	}

	return arguments, nil
}

// parseBboxLocationExpression parses "bbox(minLat, minLon, maxLat, maxLon)".
func (p *Parser) parseBboxLocationExpression() (*query.BboxLocationExpression, error) {
	token := p.currentToken()
	if token.kind != TokenKindKeyword || token.lexeme != bboxLocationExpression {
		return nil, ParsingErrorExpectedButFound("start of BBOX-Expression with 'bbox' keyword", token.startPosition, token.lexeme, token.kind)
	}

	coordinates, err := p.parseNumberArguments(bboxLocationExpression, 4)
	if err != nil {
		return nil, err
	}

	bbox, err := geometry.NewBoundingBox(coordinates[0], coordinates[1], coordinates[2], coordinates[3])
	if err != nil {
		return nil, err
	}

	return query.NewBboxLocationExpression(bbox), nil
}

// parseRadiusLocationExpression parses "radius(lat, lon, km)".
func (p *Parser) parseRadiusLocationExpression() (*query.RadiusLocationExpression, error) {
	token := p.currentToken()
	arguments, err := p.parseNumberArguments(radiusLocationExpression, 3)
	if err != nil {
		return nil, err
	}

	center, err := geometry.NewPoint(arguments[0], arguments[1])
	if err != nil {
		return nil, err
	}
	if arguments[2] < 0 {
		return nil, ParsingErrorExpectedButFound("non-negative radius", token.startPosition, strconv.FormatFloat(arguments[2], 'f', -1, 64), TokenKindNumber)
	}

	return query.NewRadiusLocationExpression(center, arguments[2]), nil
}

// parseContainingLocationExpression parses "containing(lat, lon)".
func (p *Parser) parseContainingLocationExpression() (*query.ContainingLocationExpression, error) {
	arguments, err := p.parseNumberArguments(containingLocationExpression, 2)
	if err != nil {
		return nil, err
	}

	point, err := geometry.NewPoint(arguments[0], arguments[1])
	if err != nil {
		return nil, err
	}

	return query.NewContainingLocationExpression(point), nil
}

// parseNearestLocationExpression parses "nearest(lat, lon, k)".
func (p *Parser) parseNearestLocationExpression() (*query.NearestLocationExpression, error) {
	token := p.currentToken()
	arguments, err := p.parseNumberArguments(nearestLocationExpression, 3)
	if err != nil {
		return nil, err
	}

	point, err := geometry.NewPoint(arguments[0], arguments[1])
	if err != nil {
		return nil, err
	}
	k := arguments[2]
	if k < 0 || k != math.Trunc(k) {
		return nil, ParsingErrorExpectedButFound("non-negative integer as number of neighbors", token.startPosition, strconv.FormatFloat(k, 'f', -1, 64), TokenKindNumber)
	}

	return query.NewNearestLocationExpression(point, int(k)), nil
}

func (p *Parser) parseObjectType() (query.ObjectType, error) {
	token := p.currentToken()
	expected := fmt.Sprintf("object type (%s, %s or %s)", objectTypePointsExpression, objectTypeShapesExpression, objectTypeEntitiesExpression)

	switch token.lexeme {
	case objectTypePointsExpression:
		return query.ObjectPoints, nil
	case objectTypeShapesExpression:
		return query.ObjectShapes, nil
	case objectTypeEntitiesExpression:
		return query.ObjectEntities, nil
	}

	return -1, ParsingErrorExpectedButFound(expected, token.startPosition, token.lexeme, token.kind)
}

func (p *Parser) parseNextFilterExpressions() (query.FilterExpression, error) {
	expression, err := p.parseNextExpression()
	if err != nil {
		return nil, err
	}

	for {
		if !p.hasNextToken() {
			return nil, ParsingTokenStreamEndAtPosition(p.getNextTokenStartPosition(), "filter expression or '}'")
		}

		// Closing parentheses and braces are handles by calling functions
		token := p.peekNextToken()
		if token.kind == TokenKindClosingBraces || token.kind == TokenKindClosingParenthesis {
			break
		}

		token = p.moveToNextToken()

		// Expect AND, OR or '}' after expression
		if token.kind != TokenKindKeyword {
			return nil, ParsingErrorExpectedButFound("'}', ')', 'AND' or 'OR'", token.startPosition, token.lexeme, token.kind)
		}

		switch token.lexeme {
		case "AND":
			// Exit recursion to create correct hierarchy of AND/OR operators
			var secondExpression query.FilterExpression
			secondExpression, err = p.parseNextExpression()
			if err != nil {
				return nil, err
			}

			expression = query.NewLogicalFilterExpression(expression, secondExpression, query.LogicOpAnd)
		case "OR":
			// Enter recursion to create correct hierarchy of AND/OR operators
			var secondExpression query.FilterExpression
			secondExpression, err = p.parseNextFilterExpressions()
			if err != nil {
				return nil, err
			}

			expression = query.NewLogicalFilterExpression(expression, secondExpression, query.LogicOpOr)
		default:
			return nil, ParsingErrorExpectedButFound("'AND' or 'OR'", token.startPosition, token.lexeme, token.kind)
		}
	}

	return expression, nil
}

func (p *Parser) parseNextExpression() (query.FilterExpression, error) {
	if !p.hasNextToken() {
		return nil, ParsingTokenStreamEndAtPosition(p.getNextTokenStartPosition(), "filter expression")
	}

	token := p.moveToNextToken()
	switch token.kind {
	case TokenKindOpeningParenthesis:
		expression, err := p.parseNextFilterExpressions()
		if err != nil {
			return nil, err
		}

		// Then a ")" is expected
		_, err = p.moveToNextTokenOfKind(TokenKindClosingParenthesis)
		if err != nil {
			return nil, err
		}
		return expression, nil
	case TokenKindOperator:
		if token.lexeme != "!" {
			return nil, ParsingErrorExpectedButFound("'!' to start a new expression", token.startPosition, token.lexeme, token.kind)
		}
		return p.parseNegatedExpression()
	case TokenKindKeyword, TokenKindString:
		// General keyword, meaning a new expression starts, such as "amenity=cafe".
		return p.parseNormalExpression(token)
	}

	return nil, ParsingErrorExpectedButFound("filter expression", token.startPosition, token.lexeme, token.kind)
}

func (p *Parser) parseNegatedExpression() (query.FilterExpression, error) {
	if !p.hasNextToken() {
		return nil, ParsingTokenStreamEndAtPosition(p.getNextTokenStartPosition(), "start of new expression after '!'")
	}

	token := p.peekNextToken()
	if token.kind != TokenKindOpeningParenthesis {
		return nil, ParsingErrorExpectedButFound("'(' after '!'", token.startPosition, token.lexeme, token.kind)
	}

	expression, err := p.parseNextExpression()
	if err != nil {
		return nil, err
	}

	return query.NewNegatedFilterExpression(expression), nil
}

func (p *Parser) parseNormalExpression(token *Token) (query.FilterExpression, error) {
	// We're on the key (e.g. "amenity" in "amenity=cafe")
	key := token.lexeme
	keyPos := token.startPosition

	// Parse operator (e.g. "=" in "amenity=cafe")
	if !p.hasNextToken() {
		return nil, ParsingTokenStreamEndAtPosition(p.getNextTokenStartPosition(), "binary operator after key "+key)
	}
	p.moveToNextToken()
	binaryOperator, err := p.parseBinaryOperator(key, keyPos)
	if err != nil {
		return nil, err
	}
	binaryOperatorToken := p.currentToken()

	// Parse value (e.g. "cafe" in "amenity=cafe")
	if !p.hasNextToken() {
		return nil, ParsingTokenStreamEndAtPosition(p.getNextTokenStartPosition(), "value after key "+key+binaryOperatorToken.lexeme)
	}
	valueToken := p.moveToNextToken()
	if valueToken.kind != TokenKindKeyword && valueToken.kind != TokenKindNumber && valueToken.kind != TokenKindString && valueToken.kind != TokenKindWildcard {
		return nil, ParsingErrorExpectedButFound("value after key "+key+binaryOperatorToken.lexeme, valueToken.startPosition, valueToken.lexeme, valueToken.kind)
	}

	switch {
	case valueToken.kind == TokenKindWildcard:
		if binaryOperator != query.BinOpEqual && binaryOperator != query.BinOpNotEqual {
			return nil, ParsingErrorExpectedButFound("'=' or '!=' operator when using wildcard", binaryOperatorToken.startPosition, binaryOperatorToken.lexeme, binaryOperatorToken.kind)
		}
		return query.NewKeyFilterExpression(key, binaryOperator == query.BinOpEqual), nil
	case binaryOperator == query.BinOpMatches:
		if valueToken.kind == TokenKindNumber {
			return nil, ParsingErrorExpectedButFound("regular expression after '~'", valueToken.startPosition, valueToken.lexeme, valueToken.kind)
		}
		regexExpression, err := query.NewRegexFilterExpression(key, valueToken.lexeme)
		if err != nil {
			return nil, err
		}
		return regexExpression, nil
	case valueToken.kind == TokenKindNumber:
		number, err := strconv.ParseFloat(valueToken.lexeme, 64)
		if err != nil {
			return nil, ParsingErrorExpectedButFound("valid number", valueToken.startPosition, valueToken.lexeme, valueToken.kind)
		}
		return query.NewAttributeFilterExpression(key, feature.Number(number), binaryOperator), nil
	}

	return query.NewAttributeFilterExpression(key, feature.Text(valueToken.lexeme), binaryOperator), nil
}

func (p *Parser) parseBinaryOperator(previousLexeme string, previousLexemePos int) (query.BinaryOperator, error) {
	token := p.currentToken()
	if token.kind != TokenKindOperator {
		return query.BinOpInvalid, ParsingErrorExpectedButFound("binary operator", token.startPosition, token.lexeme, token.kind)
	}

	switch token.lexeme {
	case "=":
		return query.BinOpEqual, nil
	case "!=":
		return query.BinOpNotEqual, nil
	case ">":
		return query.BinOpGreater, nil
	case ">=":
		return query.BinOpGreaterEqual, nil
	case "<":
		return query.BinOpLower, nil
	case "<=":
		return query.BinOpLowerEqual, nil
	case "~":
		return query.BinOpMatches, nil
	default:
		return query.BinOpInvalid, errors.Errorf("Expected binary operator (e.g. '>=') after '%s' (position %d) but found kind=%s with lexeme=%s", previousLexeme, previousLexemePos, token.kind.String(), token.lexeme)
	}
}

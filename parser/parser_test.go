package parser

import (
	"geoq/common"
	"geoq/feature"
	"geoq/geometry"
	"geoq/query"
	"geoq/util"
	"testing"
)

func TestParser_currentAndNextToken(t *testing.T) {
	// Arrange
	parser := &Parser{
		token: []*Token{
			{kind: TokenKindKeyword, lexeme: "bbox", startPosition: 0},
			{kind: TokenKindNumber, lexeme: "123", startPosition: 4},
		},
		index: 0,
	}

	// Act & Assert
	token := parser.currentToken()
	util.AssertEqual(t, parser.token[0], token)

	token = parser.peekNextToken()
	util.AssertEqual(t, parser.token[1], token)
	token = parser.moveToNextToken()
	util.AssertEqual(t, parser.token[1], token)

	token = parser.currentToken()
	util.AssertEqual(t, parser.token[1], token)
	token = parser.peekNextToken()
	util.AssertNil(t, token)
	token = parser.moveToNextToken()
	util.AssertNil(t, token)
}

func TestParser_parseBboxLocationExpression(t *testing.T) {
	// Arrange
	parser := &Parser{
		token: []*Token{
			{kind: TokenKindKeyword, lexeme: "bbox", startPosition: 0},
			{kind: TokenKindOpeningParenthesis, lexeme: "(", startPosition: 4},
			{kind: TokenKindNumber, lexeme: "1.1", startPosition: 5},
			{kind: TokenKindNumber, lexeme: "2.2", startPosition: 9},
			{kind: TokenKindNumber, lexeme: "3", startPosition: 13},
			{kind: TokenKindNumber, lexeme: "4.567", startPosition: 15},
			{kind: TokenKindClosingParenthesis, lexeme: ")", startPosition: 21},
			{kind: TokenKindKeyword, lexeme: "foobar", startPosition: 22},
		},
		index: 0,
	}

	// Act
	expression, err := parser.parseBboxLocationExpression()

	// Assert
	util.AssertNil(t, err)
	util.AssertNotNil(t, expression)
	expectedBbox, _ := geometry.NewBoundingBox(1.1, 2.2, 3, 4.567)
	util.AssertEqual(t, expectedBbox, expression.GetBbox())
	util.AssertEqual(t, 6, parser.index)
}

func TestParser_parseBboxLocationExpression_invalidNumberTokens(t *testing.T) {
	// Arrange
	parser := &Parser{
		token: []*Token{
			{kind: TokenKindKeyword, lexeme: "bbox", startPosition: 0},
			{kind: TokenKindOpeningParenthesis, lexeme: "(", startPosition: 4},
			{kind: TokenKindNumber, lexeme: "1.1", startPosition: 5},
			{kind: TokenKindKeyword, lexeme: "foo", startPosition: 9},
			{kind: TokenKindNumber, lexeme: "3", startPosition: 13},
			{kind: TokenKindNumber, lexeme: "4", startPosition: 15},
			{kind: TokenKindClosingParenthesis, lexeme: ")", startPosition: 16},
		},
		index: 0,
	}

	// Act
	expression, err := parser.parseBboxLocationExpression()

	// Assert
	util.AssertNil(t, expression)
	util.AssertTrue(t, IsParsingError(err))
	util.AssertErrorContains(t, "number as argument 2 of bbox-expression at position 9", err)
}

func TestParser_parseBboxLocationExpression_invalidCoordinates(t *testing.T) {
	// Arrange
	parser := &Parser{
		token: []*Token{
			{kind: TokenKindKeyword, lexeme: "bbox", startPosition: 0},
			{kind: TokenKindOpeningParenthesis, lexeme: "(", startPosition: 4},
			{kind: TokenKindNumber, lexeme: "3", startPosition: 5},
			{kind: TokenKindNumber, lexeme: "0", startPosition: 7},
			{kind: TokenKindNumber, lexeme: "1", startPosition: 9},
			{kind: TokenKindNumber, lexeme: "1", startPosition: 11},
			{kind: TokenKindClosingParenthesis, lexeme: ")", startPosition: 12},
		},
		index: 0,
	}

	// Act
	_, err := parser.parseBboxLocationExpression()

	// Assert
	util.AssertTrue(t, common.IsValidationError(err))
}

func TestParser_parseLocationExpression(t *testing.T) {
	// Arrange
	parser := &Parser{
		token: []*Token{
			{kind: TokenKindKeyword, lexeme: "nearest", startPosition: 0},
			{kind: TokenKindOpeningParenthesis, lexeme: "(", startPosition: 7},
			{kind: TokenKindNumber, lexeme: "1.3", startPosition: 8},
			{kind: TokenKindNumber, lexeme: "103.8", startPosition: 13},
			{kind: TokenKindNumber, lexeme: "5", startPosition: 20},
			{kind: TokenKindClosingParenthesis, lexeme: ")", startPosition: 21},
		},
		index: 0,
	}

	// Act
	expression, err := parser.parseLocationExpression()

	// Assert
	util.AssertNil(t, err)
	nearestExpression, ok := expression.(*query.NearestLocationExpression)
	util.AssertTrue(t, ok)
	point, k := nearestExpression.GetParameter()
	util.AssertEqual(t, geometry.MustNewPoint(1.3, 103.8), point)
	util.AssertEqual(t, 5, k)
	util.AssertEqual(t, 5, parser.index)
}

func TestParser_parseLocationExpression_unknownKeyword(t *testing.T) {
	// Arrange
	parser := &Parser{
		token: []*Token{
			{kind: TokenKindKeyword, lexeme: "polygon", startPosition: 0},
			{kind: TokenKindOpeningParenthesis, lexeme: "(", startPosition: 7},
		},
		index: 0,
	}

	// Act
	expression, err := parser.parseLocationExpression()

	// Assert
	util.AssertNil(t, expression)
	util.AssertTrue(t, IsParsingError(err))
	util.AssertErrorContains(t, "location expression (one of: bbox, radius, containing, nearest, all)", err)
}

func TestParser_parseObjectType(t *testing.T) {
	for lexeme, expected := range map[string]query.ObjectType{
		"points":   query.ObjectPoints,
		"shapes":   query.ObjectShapes,
		"entities": query.ObjectEntities,
	} {
		// Arrange
		parser := &Parser{
			token: []*Token{{kind: TokenKindKeyword, lexeme: lexeme, startPosition: 0}},
			index: 0,
		}

		// Act
		objectType, err := parser.parseObjectType()

		// Assert
		util.AssertNil(t, err)
		util.AssertEqual(t, expected, objectType)
	}

	parser := &Parser{
		token: []*Token{{kind: TokenKindKeyword, lexeme: "nodes", startPosition: 0}},
		index: 0,
	}
	_, err := parser.parseObjectType()
	util.AssertTrue(t, IsParsingError(err))
}

func TestParser_parseBinaryOperator(t *testing.T) {
	for lexeme, expected := range map[string]query.BinaryOperator{
		"=":  query.BinOpEqual,
		"!=": query.BinOpNotEqual,
		">":  query.BinOpGreater,
		">=": query.BinOpGreaterEqual,
		"<":  query.BinOpLower,
		"<=": query.BinOpLowerEqual,
		"~":  query.BinOpMatches,
	} {
		// Arrange
		parser := &Parser{
			token: []*Token{{kind: TokenKindOperator, lexeme: lexeme, startPosition: 0}},
			index: 0,
		}

		// Act
		operator, err := parser.parseBinaryOperator("foo", 0)

		// Assert
		util.AssertNil(t, err)
		util.AssertEqual(t, expected, operator)
	}
}

func TestParser_parseBinaryOperator_invalidToken(t *testing.T) {
	// Arrange
	parser := &Parser{
		token: []*Token{
			{kind: TokenKindOperator, lexeme: "!", startPosition: 3},
			{kind: TokenKindKeyword, lexeme: "bar", startPosition: 4},
		},
		index: 0,
	}

	// Act
	operator, err := parser.parseBinaryOperator("foo", 0)

	// Assert
	util.AssertEqual(t, query.BinOpInvalid, operator)
	util.AssertNotNil(t, err)

	parser.index = 1
	_, err = parser.parseBinaryOperator("foo", 0)
	util.AssertTrue(t, IsParsingError(err))
}

func TestParser_parseNextExpression_simpleAttributeFilter(t *testing.T) {
	// Arrange
	parser := &Parser{
		token: []*Token{
			{kind: TokenKindOpeningBraces, lexeme: "{", startPosition: 0},
			{kind: TokenKindKeyword, lexeme: "amenity", startPosition: 1},
			{kind: TokenKindOperator, lexeme: "=", startPosition: 8},
			{kind: TokenKindKeyword, lexeme: "cafe", startPosition: 9},
			{kind: TokenKindClosingBraces, lexeme: "}", startPosition: 13},
		},
		index: 0,
	}

	// Act
	expression, err := parser.parseNextExpression()

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, query.NewAttributeFilterExpression("amenity", feature.Text("cafe"), query.BinOpEqual), expression)
	util.AssertEqual(t, 3, parser.index)
}

func TestParser_parseNextExpression_numberValue(t *testing.T) {
	// Arrange
	parser := &Parser{
		token: []*Token{
			{kind: TokenKindOpeningBraces, lexeme: "{", startPosition: 0},
			{kind: TokenKindKeyword, lexeme: "height", startPosition: 1},
			{kind: TokenKindOperator, lexeme: ">=", startPosition: 7},
			{kind: TokenKindNumber, lexeme: "2.5", startPosition: 9},
		},
		index: 0,
	}

	// Act
	expression, err := parser.parseNextExpression()

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, query.NewAttributeFilterExpression("height", feature.Number(2.5), query.BinOpGreaterEqual), expression)
}

func TestParser_parseNextExpression_simpleKeyFilter(t *testing.T) {
	// Arrange
	parser := &Parser{
		token: []*Token{
			{kind: TokenKindOpeningBraces, lexeme: "{", startPosition: 0},
			{kind: TokenKindKeyword, lexeme: "name", startPosition: 1},
			{kind: TokenKindOperator, lexeme: "!=", startPosition: 5},
			{kind: TokenKindWildcard, lexeme: "*", startPosition: 7},
		},
		index: 0,
	}

	// Act
	expression, err := parser.parseNextExpression()

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, query.NewKeyFilterExpression("name", false), expression)
	util.AssertEqual(t, 3, parser.index)
}

func TestParser_parseNextExpression_regexFilter(t *testing.T) {
	// Arrange
	parser := &Parser{
		token: []*Token{
			{kind: TokenKindOpeningBraces, lexeme: "{", startPosition: 0},
			{kind: TokenKindKeyword, lexeme: "name", startPosition: 1},
			{kind: TokenKindOperator, lexeme: "~", startPosition: 5},
			{kind: TokenKindString, lexeme: "(?i)^caf", startPosition: 6},
		},
		index: 0,
	}

	// Act
	expression, err := parser.parseNextExpression()

	// Assert
	util.AssertNil(t, err)
	regexExpression, ok := expression.(*query.RegexFilterExpression)
	util.AssertTrue(t, ok)
	key, pattern := regexExpression.GetParameter()
	util.AssertEqual(t, "name", key)
	util.AssertEqual(t, "(?i)^caf", pattern)
}

func TestParser_parseNextExpression_invalidAttributeFilter(t *testing.T) {
	// Arrange
	parser := &Parser{
		token: []*Token{
			{kind: TokenKindOpeningBraces, lexeme: "{", startPosition: 0},
			{kind: TokenKindKeyword, lexeme: "amenity", startPosition: 1},
			{kind: TokenKindOperator, lexeme: "=", startPosition: 8},
			{kind: TokenKindOpeningParenthesis, lexeme: "(", startPosition: 9},
		},
		index: 0,
	}

	// Act
	expression, err := parser.parseNextExpression()

	// Assert
	util.AssertNil(t, expression)
	util.AssertTrue(t, IsParsingError(err))
}

func TestParser_parseNextExpression_negatedFilter(t *testing.T) {
	// Arrange
	parser := &Parser{
		token: []*Token{
			{kind: TokenKindOpeningBraces, lexeme: "{", startPosition: 0},
			{kind: TokenKindOperator, lexeme: "!", startPosition: 1},
			{kind: TokenKindOpeningParenthesis, lexeme: "(", startPosition: 2},
			{kind: TokenKindKeyword, lexeme: "amenity", startPosition: 3},
			{kind: TokenKindOperator, lexeme: "=", startPosition: 10},
			{kind: TokenKindKeyword, lexeme: "cafe", startPosition: 11},
			{kind: TokenKindClosingParenthesis, lexeme: ")", startPosition: 15},
			{kind: TokenKindClosingBraces, lexeme: "}", startPosition: 16},
		},
		index: 0,
	}

	// Act
	expression, err := parser.parseNextExpression()

	// Assert
	util.AssertNil(t, err)
	expectedExpression := query.NewNegatedFilterExpression(query.NewAttributeFilterExpression("amenity", feature.Text("cafe"), query.BinOpEqual))
	util.AssertEqual(t, expectedExpression, expression)
	util.AssertEqual(t, 6, parser.index)
}

func TestParser_parseNextExpression_invalidNegatedFilter(t *testing.T) {
	// Arrange
	parser := &Parser{
		token: []*Token{
			{kind: TokenKindOpeningBraces, lexeme: "{", startPosition: 0},
			{kind: TokenKindOperator, lexeme: "!", startPosition: 1},
			{kind: TokenKindKeyword, lexeme: "amenity", startPosition: 2},
			{kind: TokenKindOperator, lexeme: "=", startPosition: 9},
			{kind: TokenKindKeyword, lexeme: "cafe", startPosition: 10},
		},
		index: 0,
	}

	// Act
	expression, err := parser.parseNextExpression()

	// Assert
	util.AssertNil(t, expression)
	util.AssertErrorContains(t, "Expected '(' after '!' at position 2", err)
}

func TestParser_parseNextExpression_expressionInsideParenthesesMissingClose(t *testing.T) {
	// Arrange
	parser := &Parser{
		token: []*Token{
			{kind: TokenKindOpeningBraces, lexeme: "{", startPosition: 0},
			{kind: TokenKindOpeningParenthesis, lexeme: "(", startPosition: 1},
			{kind: TokenKindKeyword, lexeme: "a", startPosition: 2},
			{kind: TokenKindOperator, lexeme: "=", startPosition: 3},
			{kind: TokenKindKeyword, lexeme: "b", startPosition: 4},
			{kind: TokenKindClosingBraces, lexeme: "}", startPosition: 5},
		},
		index: 0,
	}

	// Act
	expression, err := parser.parseNextExpression()

	// Assert
	util.AssertNil(t, expression)
	util.AssertTrue(t, IsParsingError(err))
}

func TestParseQueryString_precedence(t *testing.T) {
	// Act
	q, err := ParseQueryString("all.entities{ a=1 OR b=2 AND c=3 }")

	// Assert
	util.AssertNil(t, err)
	util.AssertLen(t, 1, q.GetStatements())

	statement := q.GetStatements()[0]
	util.AssertEqual(t, query.ObjectEntities, statement.GetObjectType())

	orExpression, ok := statement.GetFilterExpression().(*query.LogicalFilterExpression)
	util.AssertTrue(t, ok)
	first, second, operator := orExpression.GetParameter()
	util.AssertEqual(t, query.LogicOpOr, operator)
	util.AssertEqual(t, query.NewAttributeFilterExpression("a", feature.Number(1), query.BinOpEqual), first)

	andExpression, ok := second.(*query.LogicalFilterExpression)
	util.AssertTrue(t, ok)
	_, _, operator = andExpression.GetParameter()
	util.AssertEqual(t, query.LogicOpAnd, operator)
}

func TestParseQueryString_errors(t *testing.T) {
	for _, queryString := range []string{
		"",
		"bbox(1, 2, 3).points{}",
		"all.nodes{}",
		"all.points{ a=1",
		"all.points{ a=* AND b>* }",
		"all.points{ !a=1 }",
		"nearest(1, 2, 1.5).points{}",
		"radius(1, 2, -3).points{}",
		"all.points{} all",
	} {
		// Act
		q, err := ParseQueryString(queryString)

		// Assert
		util.AssertNil(t, q)
		util.AssertTrue(t, IsParsingError(err))
	}

	_, err := ParseQueryString(`all.points{ name~"(" }`)
	util.AssertTrue(t, common.IsQueryError(err))

	_, err = ParseQueryString("bbox(3, 0, 1, 1).points{}")
	util.AssertTrue(t, common.IsValidationError(err))

	_, err = ParseQueryString("all.points{ a#1 }")
	util.AssertErrorContains(t, "Unexpected character '#'", err)
}

func TestParseQueryString_execute(t *testing.T) {
	// Arrange
	shape, err := geometry.NewPolygon(
		geometry.MustNewPoint(1, 1),
		geometry.MustNewPoint(1, 3),
		geometry.MustNewPoint(3, 3),
		geometry.MustNewPoint(3, 1),
	)
	util.AssertNil(t, err)
	shapeEntity, err := feature.NewShapeEntity(5, shape, map[string]feature.Value{"landuse": feature.Category("park")})
	util.AssertNil(t, err)

	collection := query.NewCollection([]feature.Feature{
		feature.NewPointEntity(1, geometry.MustNewPoint(1, 1), map[string]feature.Value{"amenity": feature.Category("cafe"), "name": feature.Text("Cafe Blue")}),
		feature.NewPointEntity(2, geometry.MustNewPoint(1.5, 1.5), map[string]feature.Value{"amenity": feature.Category("cafe"), "name": feature.Text("Red")}),
		feature.NewPointEntity(3, geometry.MustNewPoint(10, 10), map[string]feature.Value{"amenity": feature.Category("cafe"), "name": feature.Text("Blue Moon")}),
		feature.NewPointEntity(4, geometry.MustNewPoint(1.2, 1.2), map[string]feature.Value{"amenity": feature.Category("bench")}),
		shapeEntity,
	}, query.DefaultConfig())

	q, err := ParseQueryString(`
// cafes in the box
bbox(0, 0, 2, 2).points{ amenity=cafe AND name~"(?i)blue" }
containing(2.5, 2.5).shapes{}
`)
	util.AssertNil(t, err)

	// Act
	result, err := q.Execute(collection)

	// Assert
	util.AssertNil(t, err)
	ids := query.MapValues(result, func(f feature.Feature) uint64 { return f.GetID() })
	util.AssertEqual(t, []uint64{1, 5}, ids)
}

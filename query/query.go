package query

import (
	"geoq/feature"
	"github.com/hauke96/sigolo/v2"
	"time"
)

// Query consists of top-level statements whose results are concatenated in the order of the statements.
type Query struct {
	topLevelStatements []Statement
}

func NewQuery(topLevelStatements []Statement) *Query {
	return &Query{topLevelStatements: topLevelStatements}
}

func (q *Query) Execute(collection *Collection[feature.Feature]) (*Collection[feature.Feature], error) {
	sigolo.Debug("Start query")
	queryStartTime := time.Now()

	var result []feature.Feature

	for _, statement := range q.topLevelStatements {
		statementResult, err := statement.Execute(collection)
		if err != nil {
			return nil, err
		}
		result = append(result, statementResult.items...)
	}

	queryDuration := time.Since(queryStartTime)
	sigolo.Infof("Executed query with %d statements in %s and found %d entities", len(q.topLevelStatements), queryDuration, len(result))

	return collection.derive(result), nil
}

func (q *Query) GetStatements() []Statement {
	return q.topLevelStatements
}

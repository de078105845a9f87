package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilderDollarStyle(t *testing.T) {
	q := NewBuilder(DollarStyle{}).
		Write("SELECT * FROM t WHERE a = ").WriteParam(1).
		Write(" AND b = ").WriteParam("x").
		Query()

	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", q.Text)
	assert.Equal(t, []any{1, "x"}, q.Params)
}

func TestBuilderQuestionStyle(t *testing.T) {
	q := NewBuilder(QuestionStyle{}).
		Write("SELECT * FROM t WHERE a = ").WriteParam(1).
		Write(" AND b = ").WriteParam("x").
		Query()

	assert.Equal(t, "SELECT * FROM t WHERE a = ? AND b = ?", q.Text)
	assert.Len(t, q.Params, 2)
}

func TestTruncated(t *testing.T) {
	q := Query{Text: strings.Repeat("a", 50)}

	assert.Equal(t, q.Text, q.Truncated(0))
	assert.Equal(t, q.Text, q.Truncated(100))
	assert.Equal(t, strings.Repeat("a", 10)+"...", q.Truncated(10))
}

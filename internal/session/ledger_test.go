package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contextly/internal/model"
)

func TestLedger_AppendReturnsCallOrder(t *testing.T) {
	var l Ledger
	for i := 0; i < 5; i++ {
		assert.Equal(t, i, l.Append(model.QAPair{Question: "q", Answer: "a"}))
	}
	assert.Equal(t, 5, l.Len())
}

func TestLedger_Get(t *testing.T) {
	var l Ledger
	l.Append(model.QAPair{Question: "Q1", Answer: "A1"})
	l.Append(model.QAPair{Question: "Q2", Answer: "A2"})

	p, err := l.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Q2", p.Question)

	for _, idx := range []int{-1, 2, 100} {
		_, err := l.Get(idx)
		assert.ErrorIs(t, err, model.ErrIndexOutOfRange)
	}
}

func TestLedger_EntriesAreImmutable(t *testing.T) {
	var l Ledger
	src := model.QAPair{Question: "Q", Answer: "A", Sources: []model.Source{{ChunkID: 1, Score: 0.5}}}
	l.Append(src)

	src.Sources[0].ChunkID = 99
	got, _ := l.Get(0)
	got.Sources[0].ChunkID = 42
	all := l.All()
	all[0].Answer = "changed"

	stored, _ := l.Get(0)
	assert.Equal(t, "A", stored.Answer)
	assert.Equal(t, 1, stored.Sources[0].ChunkID)
}

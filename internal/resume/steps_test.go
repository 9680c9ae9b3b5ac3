package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceStep_NonLinear(t *testing.T) {
	d := NewDraft()

	d, err := AdvanceStep(d, len(Steps)-1)
	require.NoError(t, err)
	assert.Equal(t, len(Steps)-1, d.Step)

	d, err = AdvanceStep(d, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Step)
}

func TestAdvanceStep_OutOfRange(t *testing.T) {
	d := NewDraft()
	for _, target := range []int{-1, len(Steps)} {
		got, err := AdvanceStep(d, target)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, d, got)
	}
}

func TestProgress(t *testing.T) {
	d := NewDraft()
	d.Document.Personal.Name = "Asha"
	d.Document.Experience = []Experience{{Organization: "Acme"}}
	d.Document.Skills = "SQL"
	d.Step = 2

	progress := Progress(d)
	require.Len(t, progress, len(Steps))

	byKey := map[string]StepStatus{}
	for _, p := range progress {
		byKey[p.Key] = p
	}
	assert.True(t, byKey["personal"].Complete)
	assert.False(t, byKey["summary"].Complete)
	assert.False(t, byKey["experience"].Complete)
	assert.True(t, byKey["experience"].Current)
	assert.True(t, byKey["skills"].Complete)
	assert.True(t, byKey["template"].Complete, "new drafts start on the default template")
}

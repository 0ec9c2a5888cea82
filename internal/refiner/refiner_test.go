package refiner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLetter_PrefersLastStandaloneLetter(t *testing.T) {
	text := "Let's eliminate B and D.\nThe answer is clearly among A and C.\nC\n"
	out := ExtractLetter(text, "")
	assert.Equal(t, "C", out.Text)
	assert.False(t, out.UsedFallback)
}

func TestExtractLetter_FallsBackToAnswerPhrase(t *testing.T) {
	text := "After careful elimination, the answer is D, no other option fits."
	out := ExtractLetter(text, "")
	assert.Equal(t, "D", out.Text)
}

func TestExtractLetter_FallsBackToHighestScoringChoice(t *testing.T) {
	out := ExtractLetter("I am not sure what the answer is.", "B) Paris")
	assert.Equal(t, "B", out.Text)
	assert.True(t, out.UsedFallback)
	assert.Equal(t, "FORMAT_FALLBACK", out.FallbackKind)
}

func TestExtractGSM8K_KeepsExistingFooter(t *testing.T) {
	out := ExtractGSM8K("Step 1: 16-3=13\nStep 2: 13-4=9\n#### 9")
	assert.Equal(t, "Step 1: 16-3=13\nStep 2: 13-4=9\n#### 9", out.Text)
}

func TestExtractGSM8K_NormalizesThousandsSeparatorInFooter(t *testing.T) {
	out := ExtractGSM8K("Total revenue is #### 1,200")
	assert.Contains(t, out.Text, "#### 1200")
}

func TestExtractGSM8K_AppendsFromLastNumericToken(t *testing.T) {
	out := ExtractGSM8K("Janet sells the remaining 9 eggs for $18")
	assert.Contains(t, out.Text, "#### 18")
}

func TestExtractGSM8K_FallsBackWhenNoNumberFound(t *testing.T) {
	out := ExtractGSM8K("I could not determine the answer.")
	assert.True(t, out.UsedFallback)
}

func TestExtractCode_FindsFunctionInFencedBlock(t *testing.T) {
	text := "Here is the implementation:\n```python\ndef has_close_elements(numbers, threshold):\n    return True\n```\n"
	out, err := ExtractCode(context.Background(), text, "has_close_elements")
	require.NoError(t, err)
	assert.Contains(t, out.Text, "def has_close_elements")
	assert.False(t, out.UsedFallback)
}

func TestExtractCode_FallsBackWhenNameDoesNotMatch(t *testing.T) {
	text := "```python\ndef wrong_name(x):\n    return x\n```"
	out, err := ExtractCode(context.Background(), text, "has_close_elements")
	require.NoError(t, err)
	assert.True(t, out.UsedFallback)
}

func TestExtractRanking_DedupesPreservingFirstOccurrence(t *testing.T) {
	out := ExtractRanking("Most relevant: passage 3, then passage 1, then passage 3 again, then 7")
	assert.Equal(t, "3,1,7", out.Text)
}

func TestExtractRanking_FallsBackWhenNoIntegers(t *testing.T) {
	out := ExtractRanking("none of these passages are relevant")
	assert.True(t, out.UsedFallback)
}

package class

import (
	"errors"
	"io"
	"math/big"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codeRegex = regexp.MustCompile(`^[A-Z0-9]{1,4}-[A-Z0-9]{6}$`)

// mockRandInt makes randIntFunc return the given values in a loop.
func mockRandInt(t *testing.T, values ...int64) {
	orig := randIntFunc
	t.Cleanup(func() { randIntFunc = orig })

	var i int
	randIntFunc = func(_ io.Reader, max *big.Int) (*big.Int, error) {
		v := values[i%len(values)]
		i++
		return big.NewInt(v % max.Int64()), nil
	}
}

func TestGenerateCode(t *testing.T) {
	tests := []struct {
		subject    string
		wantPrefix string
	}{
		{"Mathematics", "MATH-"},
		{"math", "MATH-"},
		{"Art", "ART-"},
		{"  c o mputing", "COMP-"},
		{"3D Design", "3DDE-"},
		{"C++ Programming", "CPRO-"},
		{"P.E.", "PE-"},
		{"Éducation civique", "DUCA-"},
		{"!!!", codeFallbackPrefix + "-"},
		{"日本語", codeFallbackPrefix + "-"},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			code, err := GenerateCode(tt.subject)
			require.NoError(t, err)
			assert.Regexp(t, codeRegex, code)
			assert.Equal(t, tt.wantPrefix, code[:len(tt.wantPrefix)])
		})
	}
}

func TestGenerateCode_suffix(t *testing.T) {
	mockRandInt(t, 0, 25, 26, 35, 1, 36)

	code, err := GenerateCode("Biology")
	require.NoError(t, err)
	assert.Equal(t, "BIOL-AZ09BA", code)
}

func TestGenerateCode_randError(t *testing.T) {
	orig := randIntFunc
	t.Cleanup(func() { randIntFunc = orig })
	randIntFunc = func(io.Reader, *big.Int) (*big.Int, error) {
		return nil, errors.New("no entropy")
	}

	_, err := GenerateCode("Biology")
	assert.EqualError(t, err, "no entropy")
}

package class

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"
)

const (
	codePrefixLen = 4
	codeSuffixLen = 6
	codeAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	codeFallbackPrefix = "CLS"
)

var randIntFunc = rand.Int // mockable

// GenerateCode builds a class code: the first 4 ASCII letters or digits of the subject,
// upper-cased, followed by a dash and 6 random alphanumeric characters, eg. "MATH-7Q2ZK1".
// Subjects with fewer usable characters give a shorter prefix, and subjects with none
// get codeFallbackPrefix.
func GenerateCode(subject string) (string, error) {
	prefix := make([]rune, 0, codePrefixLen)
	for _, r := range subject {
		if len(prefix) == codePrefixLen {
			break
		}
		r = unicode.ToUpper(r)
		if !strings.ContainsRune(codeAlphabet, r) {
			continue
		}
		prefix = append(prefix, r)
	}
	if len(prefix) == 0 {
		prefix = []rune(codeFallbackPrefix)
	}

	var b strings.Builder
	b.WriteString(string(prefix))
	b.WriteByte('-')
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeSuffixLen; i++ {
		n, err := randIntFunc(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

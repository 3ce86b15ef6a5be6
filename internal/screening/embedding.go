package screening

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/pgvector/pgvector-go"
	"github.com/yoockh/talentpool/internal/models"
)

// Embed maps text to a fixed-width, L2-normalised bag-of-words vector using
// the hashing trick. Résumés and job descriptions share the same space, so
// cosine distance between them is a rough topical match.
func Embed(text string) pgvector.Vector {
	vec := make([]float32, models.EmbeddingDims)

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	for _, tok := range tokens {
		if len(tok) < 2 {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum32()
		idx := int(sum % uint32(models.EmbeddingDims))
		// sign bit spreads collisions around zero
		if sum&(1<<31) != 0 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return pgvector.NewVector(vec)
}

package embedding

import (
	"doc-tutor/internal/errs"
)

// normalizeVector flattens the possible backend response shapes into a single
// []float32. Accepted shapes: a flat vector, a batch of vectors (first entry
// taken), JSON-decoded float64 variants of both, and an object carrying the
// vector under an "embedding" or "embeddings" field. Anything else, including
// an empty vector, is an unrecognized-shape error.
func normalizeVector(resp any) ([]float32, error) {
	switch v := resp.(type) {
	case []float32:
		return nonEmpty(v)
	case [][]float32:
		if len(v) == 0 {
			return nil, errs.New(errs.KindEmbedding, "embedding response contained no vectors")
		}
		return nonEmpty(v[0])
	case []float64:
		return nonEmpty(toFloat32(v))
	case [][]float64:
		if len(v) == 0 {
			return nil, errs.New(errs.KindEmbedding, "embedding response contained no vectors")
		}
		return nonEmpty(toFloat32(v[0]))
	case []any:
		return normalizeUntyped(v)
	case map[string]any:
		for _, key := range []string{"embedding", "embeddings"} {
			if field, ok := v[key]; ok {
				return normalizeVector(field)
			}
		}
		return nil, errs.New(errs.KindEmbedding, "embedding response object has no embedding field")
	default:
		return nil, errs.Newf(errs.KindEmbedding, "unrecognized embedding response shape %T", resp)
	}
}

// normalizeUntyped handles JSON-decoded arrays, which arrive as []any holding
// either float64 elements or nested []any vectors.
func normalizeUntyped(v []any) ([]float32, error) {
	if len(v) == 0 {
		return nil, errs.New(errs.KindEmbedding, "embedding response contained no vectors")
	}
	if nested, ok := v[0].([]any); ok {
		return normalizeUntyped(nested)
	}
	out := make([]float32, len(v))
	for i, elem := range v {
		f, ok := elem.(float64)
		if !ok {
			return nil, errs.Newf(errs.KindEmbedding, "unrecognized embedding element type %T", elem)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func nonEmpty(v []float32) ([]float32, error) {
	if len(v) == 0 {
		return nil, errs.New(errs.KindEmbedding, "embedding response vector is empty")
	}
	return v, nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

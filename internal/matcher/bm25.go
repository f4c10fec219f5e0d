package matcher

import "math"

// bm25Index is an Okapi BM25 index over a fixed set of tokenized documents.
// It is never modified after construction.
type bm25Index struct {
	k1       float64
	b        float64
	docFreqs []map[string]int
	docLens  []float64
	avgdl    float64
	idf      map[string]float64
}

func newBM25Index(docs [][]string, k1, b, epsilon float64) *bm25Index {
	idx := &bm25Index{
		k1:       k1,
		b:        b,
		docFreqs: make([]map[string]int, len(docs)),
		docLens:  make([]float64, len(docs)),
		idf:      make(map[string]float64),
	}

	// vocabulary keeps first-seen order so the idf average is summed deterministically
	var vocabulary []string
	docCount := make(map[string]int)
	totalLen := 0

	for i, doc := range docs {
		freqs := make(map[string]int, len(doc))
		for _, term := range doc {
			if _, seen := docCount[term]; !seen && freqs[term] == 0 {
				vocabulary = append(vocabulary, term)
			}
			freqs[term]++
		}
		for term := range freqs {
			docCount[term]++
		}

		idx.docFreqs[i] = freqs
		idx.docLens[i] = float64(len(doc))
		totalLen += len(doc)
	}

	if len(docs) > 0 {
		idx.avgdl = float64(totalLen) / float64(len(docs))
	}

	n := float64(len(docs))
	idfSum := 0.0
	var negative []string
	for _, term := range vocabulary {
		df := float64(docCount[term])
		value := math.Log(n-df+0.5) - math.Log(df+0.5)
		idx.idf[term] = value
		idfSum += value
		if value < 0 {
			negative = append(negative, term)
		}
	}

	// terms present in more than half of the documents get a small positive floor
	if len(vocabulary) > 0 {
		floor := epsilon * idfSum / float64(len(vocabulary))
		for _, term := range negative {
			idx.idf[term] = floor
		}
	}

	return idx
}

// scores returns one score per document, in document order.
func (idx *bm25Index) scores(query []string) []float64 {
	out := make([]float64, len(idx.docFreqs))

	for _, term := range query {
		idf, ok := idx.idf[term]
		if !ok {
			continue
		}
		for i, freqs := range idx.docFreqs {
			tf := float64(freqs[term])
			if tf == 0 {
				continue
			}
			norm := idx.k1 * (1 - idx.b + idx.b*idx.docLens[i]/idx.avgdl)
			out[i] += idf * (tf * (idx.k1 + 1) / (tf + norm))
		}
	}

	return out
}

package retrieval

// stopwords is the fixed stop-word set dropped during query tokenization.
// Deliberately small: issue descriptions are short and domain terms must
// survive ("blind", "curve", "night" are all meaningful here).
var stopwords = map[string]struct{}{
	"the":   {},
	"a":     {},
	"an":    {},
	"is":    {},
	"are":   {},
	"was":   {},
	"were":  {},
	"be":    {},
	"been":  {},
	"at":    {},
	"to":    {},
	"for":   {},
	"and":   {},
	"or":    {},
	"in":    {},
	"on":    {},
	"of":    {},
	"by":    {},
	"with":  {},
	"from":  {},
	"there": {},
	"this":  {},
	"that":  {},
	"it":    {},
	"its":   {},
	"has":   {},
	"have":  {},
	"near":  {},
	"due":   {},
}

package c99js

// Interner deduplicates identifier lexemes, keyword spellings, and
// string-literal text into single stored instances so that equal
// strings compare equal in one map lookup instead of repeated byte
// comparison.
type Interner struct {
	strs []string
	ids  map[string]int
}

func NewInterner() *Interner {
	return &Interner{ids: map[string]int{}}
}

// Intern returns a stable small integer ID for s, allocating a new one
// the first time s is seen.
func (in *Interner) Intern(s string) int {
	if id, ok := in.ids[s]; ok {
		return id
	}
	id := len(in.strs)
	in.strs = append(in.strs, s)
	in.ids[s] = id
	return id
}

// Lookup returns the string for a previously interned id.
func (in *Interner) Lookup(id int) string {
	return in.strs[id]
}

package index

import "sort"

// DocID identifies a document within one corpus.
type DocID uint64

// PostingList holds the documents containing a term, unique and sorted
// ascending.
type PostingList []DocID

// TermEntry pairs a term with its postings, in index order.
type TermEntry struct {
	Term     string
	Postings PostingList
}

// Contains reports whether id is in the list.
func (p PostingList) Contains(id DocID) bool {
	i := sort.Search(len(p), func(i int) bool { return p[i] >= id })
	return i < len(p) && p[i] == id
}

// Clone returns a copy that shares no memory with p.
func (p PostingList) Clone() PostingList {
	out := make(PostingList, len(p))
	copy(out, p)
	return out
}

// Normalize sorts ids ascending and reports whether any duplicate was found.
// Duplicates are left in place so callers can reject the input.
func Normalize(ids []DocID) (PostingList, bool) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for i := 1; i < len(ids); i++ {
		if ids[i] == ids[i-1] {
			return ids, true
		}
	}
	return ids, false
}

// Max returns the largest id, or 0 for an empty list.
func (p PostingList) Max() DocID {
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1]
}

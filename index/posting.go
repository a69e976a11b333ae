package index

// PostingEntry records that a document contains a token.
type PostingEntry struct {
	DocID uint32 // Position of the document in the indexed slice
}

// PostingList is a slice of PostingEntry, kept in ascending DocID order.
type PostingList []PostingEntry

package types

// WorkItem identifies one unit of work. The identifier doubles as the raw
// payload file base name and as the provenance value in destination tables.
type WorkItem struct {
	ID  string
	URL string
}

// Record is one flat row produced by an extractor, keyed by column name.
// A nil value is a SQL NULL.
type Record map[string]interface{}

func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

const ProvenanceColumn = "source_file"

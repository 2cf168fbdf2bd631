package domain

type RecordError struct {
	Identifier string `json:"identifier"`
	Message    string `json:"error"`
}

// BatchResult is the aggregate outcome of one sync run. A fresh value is
// built per run; results are never merged across runs.
type BatchResult struct {
	Total      int           `json:"total"`
	Created    int           `json:"created"`
	Updated    int           `json:"updated"`
	Registered int           `json:"registered"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Errors     []RecordError `json:"errors,omitempty"`
}

// Fail records a per-record failure keyed by the record's natural key.
func (r *BatchResult) Fail(identifier string, err error) {
	r.Failed++
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.Errors = append(r.Errors, RecordError{Identifier: identifier, Message: msg})
}

package types

import "fmt"

// LogKey is a stable identifier of a simulation event. It is the contract with
// the text-rendering collaborator; the core never produces user-facing strings.
type LogKey string

// Params is the parameter mapping of a log record.
type Params map[string]any

// Parameter names for nested reasons carried by compound records.
const (
	ParamReasonKey    = "reasonKey"
	ParamReasonParams = "reasonParams"
)

// LogRecord is a symbolic event record emitted whenever an engine makes a decision.
type LogRecord struct {
	Key    LogKey `json:"logKey"`
	Params Params `json:"params"`
}

// NewLogRecord creates a record. A nil params map is replaced by an empty one.
func NewLogRecord(key LogKey, params Params) LogRecord {
	if params == nil {
		params = Params{}
	}
	return LogRecord{Key: key, Params: params}
}

// WithReason attaches a nested reason key and parameters to the record.
func (r LogRecord) WithReason(key LogKey, params Params) LogRecord {
	if params == nil {
		params = Params{}
	}
	out := r.Copy()
	out.Params[ParamReasonKey] = key
	out.Params[ParamReasonParams] = params
	return out
}

// Reason returns the nested reason of a compound record.
func (r LogRecord) Reason() (LogKey, Params, bool) {
	key, ok := r.Params[ParamReasonKey].(LogKey)
	if !ok {
		return "", nil, false
	}
	params, _ := r.Params[ParamReasonParams].(Params)
	return key, params, true
}

// Step returns the step parameter of the record, if present.
func (r LogRecord) Step() (Step, bool) {
	s, ok := r.Params["step"].(Step)
	return s, ok
}

// Copy returns a copy whose params map (and nested reason params) can be
// mutated independently.
func (r LogRecord) Copy() LogRecord {
	return LogRecord{Key: r.Key, Params: r.Params.Copy()}
}

func (r LogRecord) String() string {
	return fmt.Sprintf("%s %v", r.Key, map[string]any(r.Params))
}

// Copy copies the mapping, descending into nested Params.
func (p Params) Copy() Params {
	if p == nil {
		return nil
	}
	cp := make(Params, len(p))
	for k, v := range p {
		if nested, ok := v.(Params); ok {
			v = nested.Copy()
		}
		cp[k] = v
	}
	return cp
}

// CopyLog copies a slice of records.
func CopyLog(records []LogRecord) []LogRecord {
	if records == nil {
		return nil
	}
	cp := make([]LogRecord, len(records))
	for i, r := range records {
		cp[i] = r.Copy()
	}
	return cp
}

// Keys returns the keys of a record slice in order.
func Keys(records []LogRecord) []LogKey {
	keys := make([]LogKey, len(records))
	for i, r := range records {
		keys[i] = r.Key
	}
	return keys
}

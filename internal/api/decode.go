package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/scrapedash/scrapedash/internal/model"
)

// rawObject defers decoding so every field can be checked against the
// expected shape instead of silently defaulting.
type rawObject map[string]json.RawMessage

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

func decodeJob(op string, obj rawObject) (model.Job, error) {
	bad := func(format string, args ...any) (model.Job, error) {
		return model.Job{}, &PayloadError{Op: op, Reason: fmt.Sprintf(format, args...)}
	}
	if obj == nil {
		return bad("job is not an object")
	}

	var job model.Job
	if err := stringField(obj, "id", &job.ID); err != nil || job.ID == "" {
		return bad("id must be a non-empty string")
	}
	if err := stringField(obj, "location", &job.Location); err != nil {
		return bad("location: %v", err)
	}
	if raw, ok := obj["radius"]; ok && !isNull(raw) {
		r, err := numberText(raw)
		if err != nil {
			return bad("radius: %v", err)
		}
		if job.Radius, err = strconv.ParseFloat(r, 64); err != nil {
			return bad("radius: %v", err)
		}
	}

	var status, typ string
	if err := stringField(obj, "status", &status); err != nil || !model.JobStatus(status).Valid() {
		return bad("unknown status %s", obj["status"])
	}
	job.Status = model.JobStatus(status)
	if err := stringField(obj, "type", &typ); err != nil || !model.JobType(typ).Valid() {
		return bad("unknown type %s", obj["type"])
	}
	job.Type = model.JobType(typ)

	var created string
	if err := stringField(obj, "createdAt", &created); err != nil {
		return bad("createdAt: %v", err)
	}
	t, err := model.ParseTimestamp(created)
	if err != nil {
		return bad("createdAt: %v", err)
	}
	job.CreatedAt = t

	if raw, ok := obj["completedAt"]; ok && !isNull(raw) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return bad("completedAt must be a string")
		}
		if s != "" {
			ct, err := model.ParseTimestamp(s)
			if err != nil {
				return bad("completedAt: %v", err)
			}
			job.CompletedAt = &ct
		}
	}

	if raw, ok := obj["results"]; ok && !isNull(raw) {
		results, err := decodeResults(op, raw)
		if err != nil {
			return model.Job{}, err
		}
		job.Results = results
	}
	return job, nil
}

func decodeResults(op string, raw json.RawMessage) ([]model.Result, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &PayloadError{Op: op, Reason: "results is not an array"}
	}
	results := make([]model.Result, 0, len(items))
	for i, item := range items {
		var obj rawObject
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			return nil, &PayloadError{Op: op, Reason: fmt.Sprintf("result %d is not an object", i)}
		}
		r, err := decodeResult(obj)
		if err != nil {
			return nil, &PayloadError{Op: op, Reason: fmt.Sprintf("result %d: %v", i, err)}
		}
		results = append(results, r)
	}
	return results, nil
}

func decodeResult(obj rawObject) (model.Result, error) {
	var r model.Result
	if err := stringField(obj, "name", &r.Name); err != nil {
		return r, fmt.Errorf("name: %w", err)
	}
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"address", &r.Address},
		{"rating", &r.Rating},
		{"reviews", &r.Reviews},
		{"type", &r.Type},
		{"phone", &r.Phone},
		{"emails", &r.Emails},
	} {
		v, err := text(obj[f.key])
		if err != nil {
			return r, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = v
	}
	if raw, ok := obj["website"]; ok && !isNull(raw) {
		v, err := text(raw)
		if err != nil {
			return r, fmt.Errorf("website: %w", err)
		}
		if v != "" {
			r.Website = &v
		}
	}
	return r, nil
}

// stringField requires key to be present and hold a JSON string.
func stringField(obj rawObject, key string, dst *string) error {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return fmt.Errorf("missing")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("must be a string")
	}
	return nil
}

// text renders a scalar as its display string. Numbers keep their literal
// form, null is empty and a list of strings is joined with ", ".
func text(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	raw = bytes.TrimSpace(raw)
	switch raw[0] {
	case '"':
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	case '[':
		var parts []string
		if err := json.Unmarshal(raw, &parts); err != nil {
			return "", fmt.Errorf("must be a list of strings")
		}
		return strings.Join(parts, ", "), nil
	case '{':
		return "", fmt.Errorf("unexpected object")
	}
	return numberText(raw)
}

func numberText(raw json.RawMessage) (string, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("must be a number")
	}
	return n.String(), nil
}

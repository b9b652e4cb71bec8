package feedback

import (
	"encoding/json"
	"fmt"
)

// Topic is the canonical {name, score, explanation} triple every stored weak
// topic is built from, regardless of what shape the worker sent.
type Topic struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// The worker is a third-party no-code integration; its payload shape is not
// contractually guaranteed. These defaults fill whatever it leaves out.
const (
	DefaultTopicName   = "Identified Topic"
	DefaultScore       = 50
	elementName        = "Topic"
	elementExplanation = "Identified by AI"
)

// Normalize converts an arbitrary feedback value into canonical topics. It is
// total: any input, including nil, malformed JSON strings, nested objects,
// arrays and scalars, yields a list of length >= 0 and never an error.
//
// Fallback order:
//  1. a string is parsed as JSON; on parse failure it becomes the explanation
//     of a single synthesized topic
//  2. an object carrying a "weakTopics" array uses that array
//  3. an array is used directly
//  4. any other object synthesizes exactly one topic from its fields
//  5. a scalar becomes the explanation of a single synthesized topic
func Normalize(value any) []Topic {
	if s, ok := value.(string); ok {
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			return []Topic{{Name: DefaultTopicName, Score: DefaultScore, Explanation: s}}
		}
		return normalizeParsed(parsed)
	}
	return normalizeParsed(value)
}

// NormalizeRaw is Normalize for an undecoded JSON value, e.g. the feedback
// field of a webhook body. An empty or unparseable raw value yields no topics.
func NormalizeRaw(raw json.RawMessage) []Topic {
	if len(raw) == 0 {
		return nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return []Topic{{Name: DefaultTopicName, Score: DefaultScore, Explanation: string(raw)}}
	}
	return Normalize(value)
}

func normalizeParsed(value any) []Topic {
	switch v := value.(type) {
	case nil:
		return nil
	case map[string]any:
		if list, ok := v["weakTopics"].([]any); ok {
			return CoerceList(list)
		}
		return []Topic{topicFromObject(v)}
	case []any:
		return CoerceList(v)
	default:
		return []Topic{{Name: DefaultTopicName, Score: DefaultScore, Explanation: stringify(v)}}
	}
}

// CoerceList converts the elements of a resolved topic array. Elements are
// field-flexible: several synonymous key spellings are accepted for each of
// name, score and explanation, each with its own default.
func CoerceList(items []any) []Topic {
	topics := make([]Topic, 0, len(items))
	for _, item := range items {
		switch el := item.(type) {
		case map[string]any:
			topics = append(topics, Topic{
				Name:        stringField(el, elementName, "name", "topic_name", "topicName", "topic"),
				Score:       scoreField(el, "score", "confidence_score", "confidenceScore"),
				Explanation: stringField(el, elementExplanation, "explanation", "ai_explanation", "aiExplanation", "description"),
			})
		case string:
			topics = append(topics, Topic{Name: DefaultTopicName, Score: DefaultScore, Explanation: el})
		default:
			topics = append(topics, Topic{Name: DefaultTopicName, Score: DefaultScore, Explanation: stringify(el)})
		}
	}
	return topics
}

// CoerceRawList is CoerceList for an undecoded array, e.g. an explicit
// weakTopics field. Anything that is not a JSON array yields no topics.
func CoerceRawList(raw json.RawMessage) []Topic {
	if len(raw) == 0 {
		return nil
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return CoerceList(items)
}

// topicFromObject synthesizes the single topic for a non-array object
// (fallback step 4). Without an explanation field the serialized object
// itself becomes the explanation, so nothing the worker said is lost.
func topicFromObject(obj map[string]any) Topic {
	explanation := stringField(obj, "", "explanation", "description")
	if explanation == "" {
		if encoded, err := json.Marshal(obj); err == nil {
			explanation = string(encoded)
		}
	}
	return Topic{
		Name:        stringField(obj, DefaultTopicName, "topic", "name"),
		Score:       scoreField(obj, "score", "confidenceScore"),
		Explanation: explanation,
	}
}

func stringField(obj map[string]any, fallback string, keys ...string) string {
	for _, key := range keys {
		if v, ok := obj[key]; ok {
			switch s := v.(type) {
			case string:
				if s != "" {
					return s
				}
			case nil:
			default:
				return stringify(s)
			}
		}
	}
	return fallback
}

func scoreField(obj map[string]any, keys ...string) float64 {
	for _, key := range keys {
		v, ok := obj[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f
			}
		case string:
			var f float64
			if _, err := fmt.Sscanf(n, "%f", &f); err == nil {
				return f
			}
		}
	}
	return DefaultScore
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		// trim the ".000000" that %f would add to integral scores
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%v", s)
	default:
		return fmt.Sprintf("%v", v)
	}
}

package plan

import "strings"

// Translator rewrites the first occurrence of From with To in every origin.
type Translator struct {
	From string
	To   string
}

// NewTranslator validates the both-or-neither rule. It returns nil, nil when
// neither side is set.
func NewTranslator(from, to string, fromSet, toSet bool) (*Translator, error) {
	if fromSet != toSet {
		return nil, configError("neither or both of translate-from and translate-to must be set")
	}
	if !fromSet {
		return nil, nil
	}
	if from == "" {
		return nil, configError("translate-from must not be empty")
	}
	return &Translator{From: from, To: to}, nil
}

// Apply returns a new mapping with every group key and record origin
// rewritten, plus the origins (before rewriting) that did not contain From.
// Groups whose rewritten origins coincide are merged with the mapping's own
// dedup policy, keeping first-seen order.
func (t *Translator) Apply(groups *Groups) (*Groups, []string) {
	if t == nil {
		return groups, nil
	}
	out := NewGroups(groups.Scoped())
	var unmatched []string
	for _, group := range groups.All() {
		if !strings.Contains(group.Origin, t.From) {
			unmatched = append(unmatched, group.Origin)
		}
		for _, rec := range group.Records {
			rec.Origin = t.rewrite(rec.Origin)
			out.Add(rec)
		}
	}
	return out, unmatched
}

func (t *Translator) rewrite(origin string) string {
	return strings.Replace(origin, t.From, t.To, 1)
}

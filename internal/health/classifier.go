package health

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/alterego/alterego/internal/types"
)

// statusHeading is the localized status label. Its presence together with a
// localized synonym is enough to imply a tag.
const statusHeading = "ステータス"

// ClassifierRule is one independent predicate over normalized document text.
// A match implies Tag.
type ClassifierRule struct {
	Tag   types.LifecycleTag
	Name  string
	Match func(doc string) bool
}

// tagVocabulary lists how one tag is spelled in documents.
type tagVocabulary struct {
	tag      types.LifecycleTag
	values   []string // lowercase tag values as written after a label
	synonyms []string // localized words implying the tag
}

// vocabulary is in precedence order.
var vocabulary = []tagVocabulary{
	{tag: types.TagProposed, values: []string{"proposed"}, synonyms: []string{"提案中"}},
	{tag: types.TagAccepted, values: []string{"accepted"}, synonyms: []string{"承認済み"}},
	{tag: types.TagDeprecated, values: []string{"deprecated"}, synonyms: []string{"廃止"}},
	{tag: types.TagSuperseded, values: []string{"superseded", "superseeded"}, synonyms: []string{"置き換え", "置換済み"}},
}

// labelPattern matches the status label in either language.
const labelPattern = `(?:\bstatus|` + statusHeading + `)`

// textFolder folds width variants that authors type interchangeably.
// The full-width opening parenthesis is deliberately kept.
var textFolder = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"：", ":",
	"　", " ",
	"＊", "*",
	"＃", "#",
)

// normalizeText prepares a document for rule matching: NFC composition,
// width folding and ASCII case folding.
func normalizeText(text string) string {
	return strings.ToLower(textFolder.Replace(norm.NFC.String(text)))
}

// StatusClassifier determines the lifecycle tag of a decision record using
// an ordered rule table.
type StatusClassifier struct {
	rules []ClassifierRule
}

// NewStatusClassifier creates a classifier with the default rule table.
func NewStatusClassifier() *StatusClassifier {
	return &StatusClassifier{rules: DefaultRules()}
}

// NewStatusClassifierWithRules creates a classifier with a custom rule
// table. Rules are evaluated in the given order.
func NewStatusClassifierWithRules(rules []ClassifierRule) *StatusClassifier {
	return &StatusClassifier{rules: rules}
}

// Rules returns the rule table in evaluation order.
func (c *StatusClassifier) Rules() []ClassifierRule {
	return c.rules
}

// Classify returns the tag of the first matching rule, or Unknown.
func (c *StatusClassifier) Classify(text string) types.LifecycleTag {
	tag, _ := c.Explain(text)
	return tag
}

// Explain is Classify that also reports which rule matched. The rule name
// is empty for Unknown.
func (c *StatusClassifier) Explain(text string) (types.LifecycleTag, string) {
	doc := normalizeText(text)
	for _, rule := range c.rules {
		if rule.Match(doc) {
			return rule.Tag, rule.Name
		}
	}
	return types.TagUnknown, ""
}

// Classify classifies text with the default rule table.
func Classify(text string) types.LifecycleTag {
	return defaultClassifier.Classify(text)
}

var defaultClassifier = NewStatusClassifier()

// DefaultRules builds the rule table: for each tag in precedence order, the
// label line, heading, bold label, parenthetical and localized synonym
// rules.
func DefaultRules() []ClassifierRule {
	var rules []ClassifierRule
	for _, v := range vocabulary {
		// Values may be wrapped in bold or code markup: **accepted**, `accepted`
		value := "(?:\\*\\*|`)?(?:" + strings.Join(quoteAll(v.values), "|") + `)\b`

		rules = append(rules,
			regexRule(v.tag, "label", labelPattern+`[ \t]*:[ \t]*`+value),
			regexRule(v.tag, "heading", `(?m)^#{1,6}[ \t]*`+labelPattern+`[ \t]*\n[ \t]*(?:[-*][ \t]+)?`+value),
			regexRule(v.tag, "bold", `\*\*`+labelPattern+`[ \t]*:?[ \t]*\*\*[ \t]*:?[ \t]*`+value),
			regexRule(v.tag, "parenthetical", value+`（`),
		)

		if len(v.synonyms) > 0 {
			rules = append(rules, synonymRule(v.tag, v.synonyms))
		}
	}
	return rules
}

func regexRule(tag types.LifecycleTag, name, pattern string) ClassifierRule {
	re := regexp.MustCompile(pattern)
	return ClassifierRule{
		Tag:   tag,
		Name:  name,
		Match: re.MatchString,
	}
}

func synonymRule(tag types.LifecycleTag, synonyms []string) ClassifierRule {
	return ClassifierRule{
		Tag:  tag,
		Name: "localized-synonym",
		Match: func(doc string) bool {
			if !strings.Contains(doc, statusHeading) {
				return false
			}
			for _, s := range synonyms {
				if strings.Contains(doc, s) {
					return true
				}
			}
			return false
		},
	}
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = regexp.QuoteMeta(v)
	}
	return out
}

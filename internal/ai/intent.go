package ai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/Helmus101/confluence/internal/entity"
)

// IntentParser turns a free-text query into a structured filter. On failure it
// returns the zero SearchIntent; callers treat that as "match nothing".
type IntentParser interface {
	Analyze(ctx context.Context, query string) entity.SearchIntent
}

// AIIntentParser asks the provider to build the filter.
type AIIntentParser struct {
	completer Completer
	logger    *zap.Logger
}

// NewAIIntentParser wires a provider backed parser.
func NewAIIntentParser(completer Completer, logger *zap.Logger) *AIIntentParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIIntentParser{completer: completer, logger: logger.Named("intent")}
}

// Analyze returns the provider's filter, or an empty intent on any failure.
func (p *AIIntentParser) Analyze(ctx context.Context, query string) entity.SearchIntent {
	intent, err := p.AnalyzeIntent(ctx, query)
	if err != nil {
		p.logger.Warn("intent analysis failed", zap.Error(err))
		return entity.SearchIntent{}
	}
	return intent
}

// AnalyzeIntent is Analyze with provider failures reported. An empty intent
// with a nil error means the provider understood the query and found no filter.
func (p *AIIntentParser) AnalyzeIntent(ctx context.Context, query string) (entity.SearchIntent, error) {
	if strings.TrimSpace(query) == "" {
		return entity.SearchIntent{}, nil
	}
	if p.completer == nil {
		return entity.SearchIntent{}, errNoProvider
	}
	reply, err := p.completer.Complete(ctx, intentSystemPrompt, intentPrompt(query))
	if err != nil {
		return entity.SearchIntent{}, fmt.Errorf("intent call: %w", err)
	}
	parsed, err := decodeJSON[struct {
		Company   *string `json:"company"`
		Industry  *string `json:"industry"`
		Role      *string `json:"role"`
		Seniority *string `json:"seniority"`
		Location  *string `json:"location"`
	}](reply)
	if err != nil {
		return entity.SearchIntent{}, fmt.Errorf("intent reply: %w", err)
	}
	return entity.SearchIntent{
		Company:   deref(clean(parsed.Company)),
		Industry:  deref(clean(parsed.Industry)),
		Role:      deref(clean(parsed.Role)),
		Seniority: deref(lowerClean(parsed.Seniority)),
		Location:  deref(clean(parsed.Location)),
	}, nil
}

var errNoProvider = errors.New("no ai provider configured")

var (
	intentStopwords = regexp.MustCompile(`(?i)\b(find|search|looking|look|for|me|my|someone|somebody|people|person|who|works?|working|anyone|a|an|the|please|want|need|to|connect|with|contacts?|intro|introduction)\b`)
	intentLocation  = regexp.MustCompile(`(?i)\b(?:in|based in|located in)\s+([\p{L}][\p{L}\s-]*)$`)
	intentCompany   = regexp.MustCompile(`(?i)\b(?:at|from)\s+([\p{L}\p{N}][\p{L}\p{N}&.\s-]*?)(?:\s+in\s+|$)`)
)

var seniorityVocabulary = map[string]string{
	"intern":     "intern",
	"interns":    "intern",
	"internship": "intern",
	"junior":     "junior",
	"jr":         "junior",
	"entry":      "junior",
	"mid":        "mid",
	"senior":     "senior",
	"sr":         "senior",
	"lead":       "senior",
	"manager":    "manager",
	"managers":   "manager",
	"director":   "director",
	"directors":  "director",
	"vp":         "director",
	"head":       "director",
}

var roleVocabulary = map[string]string{
	"engineer":   "engineer",
	"engineers":  "engineer",
	"developer":  "developer",
	"developers": "developer",
	"designer":   "designer",
	"designers":  "designer",
	"analyst":    "analyst",
	"analysts":   "analyst",
	"pm":         "product",
	"product":    "product",
	"recruiter":  "recruiter",
	"recruiters": "recruiter",
	"founder":    "founder",
	"founders":   "founder",
	"consultant": "consultant",
	"scientist":  "scientist",
	"marketing":  "marketing",
	"sales":      "sales",
}

// KeywordIntentParser is the local heuristic used without a provider. It
// recognises "in <location>", "at <company>", seniority words, role words and
// the industry tags; any leftover words are taken as the company.
type KeywordIntentParser struct{}

// Analyze parses the query without network calls.
func (KeywordIntentParser) Analyze(_ context.Context, query string) entity.SearchIntent {
	query = strings.TrimSpace(query)
	if query == "" {
		return entity.SearchIntent{}
	}

	var intent entity.SearchIntent
	if m := intentLocation.FindStringSubmatchIndex(query); m != nil {
		intent.Location = titleCase(query[m[2]:m[3]])
		query = strings.TrimSpace(query[:m[0]])
	}
	if m := intentCompany.FindStringSubmatchIndex(query); m != nil {
		intent.Company = strings.TrimSpace(query[m[2]:m[3]])
		query = strings.TrimSpace(query[:m[0]] + " " + query[m[3]:])
	}

	rest := intentStopwords.ReplaceAllString(query, " ")
	var leftovers []string
	for _, word := range strings.Fields(rest) {
		lower := strings.ToLower(strings.Trim(word, ",.;:!?"))
		if lower == "" {
			continue
		}
		if s, ok := seniorityVocabulary[lower]; ok && intent.Seniority == "" {
			intent.Seniority = s
			continue
		}
		if r, ok := roleVocabulary[lower]; ok && intent.Role == "" {
			intent.Role = r
			continue
		}
		if isIndustryTag(lower) && intent.Industry == "" {
			intent.Industry = lower
			continue
		}
		leftovers = append(leftovers, strings.Trim(word, ",.;:!?"))
	}
	if intent.Company == "" && len(leftovers) > 0 {
		intent.Company = strings.Join(leftovers, " ")
	}
	return intent
}

func isIndustryTag(word string) bool {
	for _, tag := range industryTags {
		if tag != "other" && word == tag {
			return true
		}
	}
	return false
}

// FallibleIntentParser is an IntentParser that can tell a failed analysis
// apart from one that legitimately found nothing.
type FallibleIntentParser interface {
	AnalyzeIntent(ctx context.Context, query string) (entity.SearchIntent, error)
}

// FallbackIntentParser uses Primary and runs Fallback only when Primary fails.
// A Primary that cannot report failures is treated as failed when it returns
// an empty intent.
type FallbackIntentParser struct {
	Primary  IntentParser
	Fallback IntentParser
	Logger   *zap.Logger
}

// Analyze returns Primary's intent, or Fallback's when Primary failed.
func (p FallbackIntentParser) Analyze(ctx context.Context, query string) entity.SearchIntent {
	if p.Primary != nil {
		if fallible, ok := p.Primary.(FallibleIntentParser); ok {
			intent, err := fallible.AnalyzeIntent(ctx, query)
			if err == nil {
				return intent
			}
			if p.Logger != nil {
				p.Logger.Warn("intent provider failed, using keyword parser", zap.Error(err))
			}
		} else if intent := p.Primary.Analyze(ctx, query); !intent.Empty() {
			return intent
		}
	}
	if p.Fallback != nil {
		return p.Fallback.Analyze(ctx, query)
	}
	return entity.SearchIntent{}
}

// NewIntentParser returns the provider parser with the keyword fallback, or the
// keyword parser alone when no provider is configured.
func NewIntentParser(completer Completer, logger *zap.Logger) IntentParser {
	if completer == nil {
		return KeywordIntentParser{}
	}
	primary := NewAIIntentParser(completer, logger)
	return FallbackIntentParser{
		Primary:  primary,
		Fallback: KeywordIntentParser{},
		Logger:   primary.logger,
	}
}

func titleCase(value string) string {
	parts := strings.Fields(value)
	for i, p := range parts {
		r := []rune(strings.ToLower(p))
		if len(r) == 0 {
			continue
		}
		parts[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(parts, " ")
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

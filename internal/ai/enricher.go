package ai

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/Helmus101/confluence/internal/entity"
	"github.com/Helmus101/confluence/internal/logger"
)

// Enricher derives structured attributes from a contact's raw text. It never
// fails: on any error the result has nil fields and Confidence 0.
type Enricher interface {
	Enrich(ctx context.Context, rawText string) entity.EnrichedData
}

// IndustryClassifier maps a company name to one of the fixed industry tags.
type IndustryClassifier interface {
	ClassifyIndustry(ctx context.Context, company string) string
}

// defaultConfidence applies when the provider omits a confidence value.
const defaultConfidence = 0.5

type enrichmentReply struct {
	Name             *string  `json:"name"`
	Email            *string  `json:"email"`
	Phone            *string  `json:"phone"`
	Company          *string  `json:"company"`
	Title            *string  `json:"title"`
	Industry         *string  `json:"industry"`
	Seniority        *string  `json:"seniority"`
	Location         *string  `json:"location"`
	CompanySize      *string  `json:"companySize"`
	FundingStage     *string  `json:"fundingStage"`
	YearsExperience  *float64 `json:"yearsExperience"`
	Skills           []string `json:"skills"`
	Education        *string  `json:"education"`
	University       *string  `json:"university"`
	Degree           *string  `json:"degree"`
	Major            *string  `json:"major"`
	GraduationYear   *float64 `json:"graduationYear"`
	RecentRoleChange *bool    `json:"recentRoleChange"`
	IndustryFit      *string  `json:"industryFit"`
	LinkedInSummary  *string  `json:"linkedinSummary"`
	Confidence       *float64 `json:"confidence"`
}

// ContactEnricher is the Completer backed Enricher and IndustryClassifier.
type ContactEnricher struct {
	completer Completer
	logger    *zap.Logger
}

var (
	_ Enricher           = (*ContactEnricher)(nil)
	_ IndustryClassifier = (*ContactEnricher)(nil)
)

// NewContactEnricher wires an enricher. A nil completer makes every call degrade.
func NewContactEnricher(completer Completer, logger *zap.Logger) *ContactEnricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactEnricher{completer: completer, logger: logger.Named("enricher")}
}

// Enrich asks the provider for a profile and scales confidence to 0-100.
func (e *ContactEnricher) Enrich(ctx context.Context, rawText string) entity.EnrichedData {
	if e.completer == nil || strings.TrimSpace(rawText) == "" {
		return entity.EnrichedData{}
	}

	reply, err := e.completer.Complete(ctx, enrichSystemPrompt, enrichPrompt(rawText))
	if err != nil {
		e.logger.Warn("enrichment call failed", zap.Error(err))
		return entity.EnrichedData{}
	}
	parsed, err := decodeJSON[enrichmentReply](reply)
	if err != nil {
		e.logger.Warn("enrichment reply not parseable",
			zap.Error(err), zap.String("reply", logger.Truncate(reply, 200)))
		return entity.EnrichedData{}
	}

	return entity.EnrichedData{
		Name:       clean(parsed.Name),
		Email:      clean(parsed.Email),
		Phone:      clean(parsed.Phone),
		Company:    clean(parsed.Company),
		Title:      clean(parsed.Title),
		Industry:   clean(parsed.Industry),
		Seniority:  lowerClean(parsed.Seniority),
		Location:   clean(parsed.Location),
		Confidence: ScaleConfidence(parsed.Confidence),
		Extended: entity.Extended{
			CompanySize:      clean(parsed.CompanySize),
			FundingStage:     clean(parsed.FundingStage),
			YearsExperience:  roundInt(parsed.YearsExperience),
			Skills:           cleanList(parsed.Skills),
			Education:        clean(parsed.Education),
			University:       clean(parsed.University),
			Degree:           clean(parsed.Degree),
			Major:            clean(parsed.Major),
			GraduationYear:   roundInt(parsed.GraduationYear),
			RecentRoleChange: parsed.RecentRoleChange,
			IndustryFit:      clean(parsed.IndustryFit),
			LinkedInSummary:  clean(parsed.LinkedInSummary),
		},
	}
}

// ClassifyIndustry returns one of the industry tags, "other" on any failure.
func (e *ContactEnricher) ClassifyIndustry(ctx context.Context, company string) string {
	if e.completer == nil || strings.TrimSpace(company) == "" {
		return "other"
	}
	reply, err := e.completer.Complete(ctx, industrySystemPrompt, industryPrompt(company))
	if err != nil {
		e.logger.Warn("industry classification failed", zap.String("company", company), zap.Error(err))
		return "other"
	}
	parsed, err := decodeJSON[struct {
		Industry string `json:"industry"`
	}](reply)
	if err != nil {
		return "other"
	}
	tag := strings.ToLower(strings.TrimSpace(parsed.Industry))
	for _, known := range industryTags {
		if tag == known {
			return tag
		}
	}
	return "other"
}

// ScaleConfidence converts a provider confidence into an integer percentage.
// Values in [0,1] are fractions, larger values are taken as percentages
// already, and a missing value counts as 0.5.
func ScaleConfidence(value *float64) int {
	v := defaultConfidence
	if value != nil && !math.IsNaN(*value) {
		v = *value
	}
	if v > 1 {
		v /= 100
	}
	pct := int(math.Round(v * 100))
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}

func clean(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" || strings.EqualFold(v, "null") || strings.EqualFold(v, "unknown") {
		return nil
	}
	return &v
}

func lowerClean(value *string) *string {
	v := clean(value)
	if v == nil {
		return nil
	}
	lower := strings.ToLower(*v)
	return &lower
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func roundInt(value *float64) *int {
	if value == nil || math.IsNaN(*value) {
		return nil
	}
	v := int(math.Round(*value))
	return &v
}

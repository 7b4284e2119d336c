package ai

import (
	"fmt"
	"strings"
)

const (
	enrichSystemPrompt = "You extract structured professional profiles from free text. Reply with one JSON object only and fill every field you can support from the text."

	intentSystemPrompt = "You turn a networking search query into a structured filter. Reply with one JSON object only. Omit or null any field the query does not mention."

	industrySystemPrompt = "You classify companies into a fixed industry list. Reply with one JSON object only."

	messageSystemPrompt = "You write short, warm, professional introduction emails. Reply with one JSON object only."
)

// industryTags is the closed vocabulary used by ClassifyIndustry.
var industryTags = []string{
	"fintech", "consulting", "luxury", "retail", "software",
	"ai-startup", "edtech", "healthtech", "government", "other",
}

func enrichPrompt(raw string) string {
	return fmt.Sprintf(`Extract a professional profile from the contact text below.

Contact text:
%s

Return JSON with these keys (use null when unknown):
{
  "name": string,
  "email": string,
  "phone": string,
  "company": string,
  "title": string,
  "industry": string,
  "seniority": one of "intern", "junior", "mid", "senior", "manager", "director",
  "location": string,
  "companySize": string such as "1-10", "11-50", "51-200", "201-1000", "1000+",
  "fundingStage": string such as "seed", "series-a", "series-b", "public",
  "yearsExperience": integer,
  "skills": array of strings,
  "education": string,
  "university": string,
  "degree": string,
  "major": string,
  "graduationYear": integer,
  "recentRoleChange": boolean,
  "industryFit": string,
  "linkedinSummary": two or three sentences summarising the person's background,
  "confidence": number between 0 and 1 describing how sure you are
}

Example input: "Sarah Chen, Senior PM at Stripe, Stanford MBA 2019, based in San Francisco"
Example output: {"name":"Sarah Chen","company":"Stripe","title":"Senior Product Manager","industry":"fintech","seniority":"senior","location":"San Francisco","university":"Stanford","degree":"MBA","graduationYear":2019,"confidence":0.85}`, raw)
}

func intentPrompt(query string) string {
	return fmt.Sprintf(`Convert this search query into a filter.

Query: %q

Return JSON with the keys "company", "industry", "role", "seniority" and "location".
Seniority must be one of "intern", "junior", "mid", "senior", "manager", "director" when present.

Example query: "fintech intern in Paris"
Example output: {"industry":"fintech","seniority":"intern","location":"Paris"}`, query)
}

func industryPrompt(company string) string {
	return fmt.Sprintf(`Which industry does the company %q belong to?
Choose exactly one of: %s.
Return JSON: {"industry": "<tag>"}`, company, strings.Join(industryTags, ", "))
}

func connectorMessagePrompt(in ConnectorMessageInput) string {
	return fmt.Sprintf(`Write a message from %s asking %s for an introduction to someone at %s.

Reason for the request: %s
Requester background: %s

Keep the body under 250 characters. Return JSON: {"subject": string, "body": string}`,
		in.RequesterName, in.ConnectorName, in.TargetCompany, in.Reason, orDefault(in.RequesterBackground, "not provided"))
}

func forwardMessagePrompt(in ForwardMessageInput) string {
	return fmt.Sprintf(`Write a message from %s introducing %s to %s at %s.

What %s is looking for: %s

Keep the body under 250 characters. Return JSON: {"subject": string, "body": string}`,
		in.ConnectorName, in.RequesterName, orDefault(in.TargetName, "a colleague"), in.TargetCompany,
		in.RequesterName, in.RequesterPitch)
}

package scoring

// Tables holds the curated keyword lookup data the engine matches
// against. Injected rather than compiled in so markets can swap their
// own company and title lists without touching the algorithm.
type Tables struct {
	BigTechCompanies   []string
	NotableCompanies   []string
	TopTechCompanies   []string
	GraduateTitles     []string
	FrontendTitles     []string
	EngineerTitles     []string
	NegativeTitles     []string
	SeniorTitles       []string
	SponsorshipPhrases []string
	PrimaryLocations   []string
	SecondaryLocations []string
}

// DefaultTables returns the curated AU-market tables.
func DefaultTables() Tables {
	return Tables{
		BigTechCompanies: []string{
			"google", "amazon", "aws", "microsoft", "apple", "meta",
			"netflix", "nvidia", "openai", "anthropic",
		},
		NotableCompanies: []string{
			"canva", "atlassian", "afterpay", "wisetech", "xero",
			"rea group", "seek", "culture amp", "safetyculture",
			"airwallex", "telstra", "commonwealth bank",
		},
		TopTechCompanies: []string{
			"stripe", "shopify", "datadog", "cloudflare", "databricks",
			"snowflake", "elastic", "gitlab", "hashicorp", "twilio",
		},
		GraduateTitles: []string{
			"graduate", "grad ", "junior", "entry level", "full stack",
			"full-stack", "fullstack",
		},
		FrontendTitles: []string{
			"frontend", "front end", "front-end", "react", "web developer",
		},
		EngineerTitles: []string{
			"software engineer", "software developer", "backend",
			"back end", "back-end", "developer",
		},
		NegativeTitles: []string{
			"recruiter", "recruitment", "sales", "marketing", "account manager",
			"civil engineer", "mechanical engineer", "electrical engineer",
			"support engineer", "field engineer", "customer success",
		},
		SeniorTitles: []string{
			"senior", "lead", "principal", "staff", "head of", "manager",
			"director", "architect",
		},
		SponsorshipPhrases: []string{
			"visa sponsorship", "sponsorship available", "485", "work rights",
			"international applicants", "relocation support",
		},
		PrimaryLocations:   []string{"adelaide"},
		SecondaryLocations: []string{"sydney", "melbourne"},
	}
}

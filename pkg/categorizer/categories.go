package categorizer

// Category names. The set is closed; General doubles as the fallback.
const (
	CareerOpportunities = "Career Opportunities"
	TechResources       = "Tech Resources"
	Learning            = "Learning"
	Inspiration         = "Inspiration"
	IndustryNews        = "Industry News"
	General             = "General"
)

// DefaultCategory is returned whenever categorization cannot run.
const DefaultCategory = General

// Category is a folder name and the prototype sentence that stands in for it
// in embedding space.
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// categories is ordered; ties between scores go to the earlier entry.
var categories = []Category{
	{
		Name:        CareerOpportunities,
		Description: "Job listings, employment openings, hiring announcements, internship programs, recruitment drives, how to apply for roles, interview processes, and career advancement paths focusing on available positions and job search strategies.",
	},
	{
		Name:        TechResources,
		Description: "Technical tutorials, coding guides, software development practices, programming languages (Python, JavaScript, Java, Go, Rust), data science, artificial intelligence, machine learning, deep learning, web development frameworks, cybersecurity, cloud computing, and specific technical tools or platforms. Content for engineers, developers, and IT professionals focused on technical skills and knowledge.",
	},
	{
		Name:        Learning,
		Description: "Educational content, academic subjects, skill development (non-tech specific, e.g., communication, leadership), online courses, study techniques, personal development, general knowledge expansion, and research methodologies. Broader learning and self-improvement.",
	},
	{
		Name:        Inspiration,
		Description: "Motivational stories, leadership insights, personal success journeys, inspiring quotes, mental resilience, mindset development, and content designed to encourage perseverance, growth and positivity.",
	},
	{
		Name:        IndustryNews,
		Description: "Current events, economic trends, market analysis, business updates, company news, mergers and acquisitions, financial reports, stock market insights, and general news across various sectors like finance, healthcare, retail, marketing, etc. Focus on market and business developments.",
	},
	{
		Name:        General,
		Description: "Miscellaneous topics, personal life updates, daily experiences, broad social commentary, community discussions, lighthearted content, or anything that does not fit into professional, technical, career, or specific industry news categories. This is the catch-all for diverse, non-specialized, and general interest posts.",
	},
}

// Categories returns a copy of the fixed category set in order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Names returns the category names in order.
func Names() []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return names
}

// IsCategory reports whether name belongs to the fixed set.
func IsCategory(name string) bool {
	for _, c := range categories {
		if c.Name == name {
			return true
		}
	}
	return false
}

package entity

// QAEntry is a canonical question with its pre-authored answer.
type QAEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Corpus is the ordered question bank. An entry's position is its document index.
type Corpus []QAEntry

// Questions returns the questions in corpus order
func (c Corpus) Questions() []string {
	questions := make([]string, len(c))
	for i, entry := range c {
		questions[i] = entry.Question
	}
	return questions
}

// MatchResult describes the outcome of scoring a query against the corpus
type MatchResult struct {
	Index  int
	Score  float64
	Entry  QAEntry
	Scores []float64
}

// DefaultCorpus is the built-in question bank used when no corpus file is configured.
var DefaultCorpus = Corpus{
	{
		Question: "What does the eligibility verification agent (EVA) do?",
		Answer:   "EVA automates the process of verifying a patient’s eligibility and benefits information in real-time, eliminating manual data entry errors and reducing claim rejections.",
	},
	{
		Question: "What does the claims processing agent (CAM) do?",
		Answer:   "CAM streamlines the submission and management of claims, improving accuracy, reducing manual intervention, and accelerating reimbursements.",
	},
	{
		Question: "How does the payment posting agent (PHIL) work?",
		Answer:   "PHIL automates the posting of payments to patient accounts, ensuring fast, accurate reconciliation of payments and reducing administrative burden.",
	},
	{
		Question: "Tell me about Thoughtful AI's Agents.",
		Answer:   "Thoughtful AI provides a suite of AI-powered automation agents designed to streamline healthcare processes. These include Eligibility Verification (EVA), Claims Processing (CAM), and Payment Posting (PHIL), among others.",
	},
	{
		Question: "What are the benefits of using Thoughtful AI's agents?",
		Answer:   "Using Thoughtful AI's Agents can significantly reduce administrative costs, improve operational efficiency, and reduce errors in critical processes like claims management and payment posting.",
	},
}

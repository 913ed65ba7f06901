package domain

// QuestionBank returns the fixed entrepreneurship quiz. The bank is immutable;
// callers receive a fresh slice on every call.
func QuestionBank() []Question {
	bank := make([]Question, len(quizQuestions))
	copy(bank, quizQuestions)
	return bank
}

var quizQuestions = []Question{
	{
		ID:     1,
		Prompt: "If you have ₹1000 to start a small business, what would be your first priority?",
		Options: []string{
			"Buy as much inventory as possible",
			"Research the market and customer needs first",
			"Start selling immediately to make quick money",
			"Keep the money safe until you're sure",
		},
		Correct:  1,
		Category: "problem-solving",
	},
	{
		ID:     2,
		Prompt: "A customer complains about your product. What's your best response?",
		Options: []string{
			"Ignore them - they're just being difficult",
			"Listen carefully and try to understand their concern",
			"Give them their money back immediately",
			"Argue that your product is fine",
		},
		Correct:  1,
		Category: "problem-solving",
	},
	{
		ID:     3,
		Prompt: "You notice your business is losing customers. What would you do first?",
		Options: []string{
			"Lower your prices immediately",
			"Ask customers why they're leaving",
			"Blame it on bad luck",
			"Close the business",
		},
		Correct:  1,
		Category: "problem-solving",
	},
	{
		ID:     4,
		Prompt: "What motivates you most about starting your own business?",
		Options: []string{
			"Making lots of money quickly",
			"Being my own boss and creating something meaningful",
			"Having an easy job",
			"Impressing others",
		},
		Correct:  1,
		Category: "entrepreneurship",
	},
	{
		ID:     5,
		Prompt: "How do you view failure in business?",
		Options: []string{
			"Something to avoid at all costs",
			"A learning opportunity to improve",
			"A sign to give up",
			"Someone else's fault",
		},
		Correct:  1,
		Category: "entrepreneurship",
	},
	{
		ID:     6,
		Prompt: "You have a great business idea but lack some skills. What do you do?",
		Options: []string{
			"Give up on the idea",
			"Learn the skills or find someone who has them",
			"Start anyway and hope for the best",
			"Wait for someone else to help",
		},
		Correct:  1,
		Category: "entrepreneurship",
	},
	{
		ID:     7,
		Prompt: "Your business is growing but you're overwhelmed with work. What's your solution?",
		Options: []string{
			"Work longer hours until you burn out",
			"Plan and organize better, possibly delegate tasks",
			"Stop taking new customers",
			"Complain about being too busy",
		},
		Correct:  1,
		Category: "problem-solving",
	},
	{
		ID:     8,
		Prompt: "What's most important for long-term business success?",
		Options: []string{
			"Having the cheapest prices",
			"Building trust and relationships with customers",
			"Making quick profits",
			"Having the fanciest office",
		},
		Correct:  1,
		Category: "entrepreneurship",
	},
}

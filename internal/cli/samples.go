package cli

import "brainscore-quiz-service/internal/domain"

// sampleQuizzes is the starter content loaded by `seed` and by start when storage.seed is set.
func sampleQuizzes() []domain.QuizInput {
	return []domain.QuizInput{
		{
			Slug:        "frontend-basics",
			Title:       "Frontend Basics",
			Description: "HTML, CSS, and JS fundamentals.",
			Type:        domain.QuizTypeText,
			Questions: []domain.Question{
				{
					Text:         "Which HTML tag is used to include JavaScript code?",
					Options:      []string{"<javascript>", "<script>", "<code>", "<js>"},
					CorrectIndex: 1,
				},
				{
					Text:         "Which CSS property is used to change the text color?",
					Options:      []string{"font-style", "text-color", "color", "font-color"},
					CorrectIndex: 2,
				},
				{
					Text:         "Which of these is NOT a semantic HTML tag?",
					Options:      []string{"<article>", "<footer>", "<bold>", "<section>"},
					CorrectIndex: 2,
				},
			},
		},
		{
			Slug:        "javascript-essentials",
			Title:       "JavaScript Essentials",
			Description: "Variables, types, and core JS concepts.",
			Type:        domain.QuizTypeText,
			Questions: []domain.Question{
				{
					Text:         "Which keyword declares a constant variable?",
					Options:      []string{"let", "const", "var", "static"},
					CorrectIndex: 1,
				},
				{
					Text:         "What is the result of typeof null in JavaScript?",
					Options:      []string{`"null"`, `"object"`, `"undefined"`, `"number"`},
					CorrectIndex: 1,
				},
				{
					Text:         "Which array method creates a new array with elements that pass a test?",
					Options:      []string{"map()", "forEach()", "filter()", "reduce()"},
					CorrectIndex: 2,
				},
			},
		},
		{
			Slug:        "react-fundamentals",
			Title:       "React Fundamentals",
			Description: "Components, props, and hooks.",
			Type:        domain.QuizTypeText,
			Questions: []domain.Question{
				{
					Text:         "Which hook is used to manage state in a function component?",
					Options:      []string{"useEffect", "useState", "useMemo", "useRef"},
					CorrectIndex: 1,
				},
				{
					Text: "Props in React are:",
					Options: []string{
						"Mutable data",
						"Used only with class components",
						"Read-only inputs to a component",
						"Only for styling",
					},
					CorrectIndex: 2,
				},
				{
					Text: "What should be used as a key when rendering a list?",
					Options: []string{
						"The array index, always",
						"Random number",
						"A unique stable identifier",
						"CSS class name",
					},
					CorrectIndex: 2,
				},
			},
		},
	}
}

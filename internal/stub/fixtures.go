package stub

import "github.com/linguaflow/delivery-client/internal/models"

// SampleReadingTest is a small two-part reading fixture exercising most
// question shapes, with answer keys for stub grading.
func SampleReadingTest() *models.Test {
	return &models.Test{
		ID:       "test-reading-1",
		Title:    "Academic Reading Practice 1",
		Skill:    models.SkillReading,
		Duration: 40,
		Parts: []models.Part{
			{
				ID:      "part-1",
				Name:    "Passage 1",
				Passage: "The honeybee waggle dance encodes both direction and distance to a food source.",
				Groups: []models.QuestionGroup{
					{
						ID:       "group-1",
						Type:     models.SingleChoice,
						Title:    "Choose the correct letter, A, B or C.",
						Quantity: 1,
						Questions: []models.Question{
							{
								ID:       "q1",
								Sequence: 1,
								Prompt:   "What does the waggle dance communicate?",
								Options: []models.Option{
									{ID: "o1", Key: "A", Text: "the location of food"},
									{ID: "o2", Key: "B", Text: "the age of the dancer"},
									{ID: "o3", Key: "C", Text: "the size of the hive"},
								},
								CorrectAnswers: []string{"A"},
							},
						},
					},
					{
						ID:       "group-2",
						Type:     models.TrueFalseNG,
						Title:    "Do the following statements agree with the information in the passage?",
						Quantity: 2,
						Questions: []models.Question{
							{
								ID:             "q2",
								Sequence:       2,
								Prompt:         "The dance encodes distance.",
								CorrectAnswers: []string{models.TokenTrue},
							},
							{
								ID:             "q3",
								Sequence:       3,
								Prompt:         "Only young bees perform the dance.",
								CorrectAnswers: []string{models.TokenNotGiven},
							},
						},
					},
				},
			},
			{
				ID:      "part-2",
				Name:    "Passage 2",
				Passage: "Summary completion follows.",
				Groups: []models.QuestionGroup{
					{
						ID:       "group-3",
						Type:     models.FillBlank,
						Title:    "Complete the summary using the list of words below.",
						Quantity: 2,
						Questions: []models.Question{
							{
								ID:       "q4",
								Sequence: 4,
								Prompt:   "Bees communicate through [4] and return to the hive carrying [5].",
								Options: []models.Option{
									{ID: "o4", Key: "A", Text: "movement"},
									{ID: "o5", Key: "B", Text: "nectar"},
									{ID: "o6", Key: "C", Text: "silence"},
								},
								CorrectAnswers: []string{"A"},
							},
							{
								ID:       "q5",
								Sequence: 5,
								Prompt:   "Bees communicate through [4] and return to the hive carrying [5].",
								Options: []models.Option{
									{ID: "o7", Key: "A", Text: "movement"},
									{ID: "o8", Key: "B", Text: "nectar"},
									{ID: "o9", Key: "C", Text: "silence"},
								},
								CorrectAnswers: []string{"B"},
							},
						},
					},
					{
						ID:       "group-4",
						Type:     models.MultiChoice,
						Title:    "Choose TWO letters, A-D.",
						Quantity: 1,
						Questions: []models.Question{
							{
								ID:       "q6",
								Sequence: 6,
								Prompt:   "Which TWO factors does the passage mention?",
								Options: []models.Option{
									{ID: "o10", Key: "A", Text: "temperature"},
									{ID: "o11", Key: "B", Text: "daylight"},
									{ID: "o12", Key: "C", Text: "wind speed"},
									{ID: "o13", Key: "D", Text: "rainfall"},
								},
								CorrectAnswers: []string{"A", "B"},
							},
						},
					},
				},
			},
		},
	}
}

// SampleSpeakingTest is a two-part speaking fixture: one question in the
// first part, two in the second.
func SampleSpeakingTest() *models.Test {
	return &models.Test{
		ID:       "test-speaking-1",
		Title:    "Speaking Practice 1",
		Skill:    models.SkillSpeaking,
		Duration: 15,
		Parts: []models.Part{
			{
				ID:   "sp-part-1",
				Name: "Part 1",
				Groups: []models.QuestionGroup{
					{
						ID:       "sp-group-1",
						Type:     models.ShortAnswer,
						Title:    "Introduction and interview",
						Quantity: 1,
						Questions: []models.Question{
							{ID: "sq1", Sequence: 1, Prompt: "Describe your hometown."},
						},
					},
				},
			},
			{
				ID:   "sp-part-2",
				Name: "Part 2",
				Groups: []models.QuestionGroup{
					{
						ID:       "sp-group-2",
						Type:     models.ShortAnswer,
						Title:    "Individual long turn",
						Quantity: 2,
						Questions: []models.Question{
							{ID: "sq2", Sequence: 2, Prompt: "Describe a book you enjoyed."},
							{ID: "sq3", Sequence: 3, Prompt: "Explain why you would recommend it."},
						},
					},
				},
			},
		},
	}
}
